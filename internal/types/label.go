package types

import (
	"fmt"
	"strings"

	"latebind/internal/diag"
)

var keywordKinds = map[string]Kind{
	"void":    KindVoid,
	"object":  KindObject,
	"bool":    KindBool,
	"char":    KindChar,
	"sbyte":   KindInt8,
	"byte":    KindUint8,
	"short":   KindInt16,
	"ushort":  KindUint16,
	"int":     KindInt32,
	"uint":    KindUint32,
	"long":    KindInt64,
	"ulong":   KindUint64,
	"float":   KindFloat32,
	"double":  KindFloat64,
	"decimal": KindDecimal,
	"string":  KindString,
	// Go spellings
	"any":     KindObject,
	"rune":    KindChar,
	"int8":    KindInt8,
	"uint8":   KindUint8,
	"int16":   KindInt16,
	"uint16":  KindUint16,
	"int32":   KindInt32,
	"uint32":  KindUint32,
	"int64":   KindInt64,
	"uint64":  KindUint64,
	"float32": KindFloat32,
	"float64": KindFloat64,
}

// Name renders id the way it is written in type names ("int[]", "int?",
// "List<string>").
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<none>"
	}
	switch tt.Kind {
	case KindArray:
		return in.Name(tt.Elem) + "[]"
	case KindNullable:
		return in.Name(tt.Elem) + "?"
	case KindGenericParam:
		info, _ := in.ParamInfo(id)
		return info.Name
	case KindClass, KindStruct, KindInterface:
		info, _ := in.Nominal(id)
		var list []TypeID
		switch {
		case info.Def != NoTypeID:
			list = info.Args
		case len(info.Params) > 0:
			list = info.Params
		default:
			return info.Name
		}
		return info.Name + "<" + in.NameList(list) + ">"
	default:
		return tt.Kind.String()
	}
}

// NameList joins the names of ids with ", ".
func (in *Interner) NameList(ids []TypeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = in.Name(id)
	}
	return strings.Join(parts, ", ")
}

// ParseName resolves a type name such as "int", "long[]", "int?",
// "Dictionary<string, int[]>". Nominal names must already be defined.
func (in *Interner) ParseName(s string) (TypeID, error) {
	p := nameParser{in: in, src: s}
	id, err := p.parseType()
	if err != nil {
		return NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return NoTypeID, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return id, nil
}

// MustParse is ParseName for static tables; it panics on error.
func (in *Interner) MustParse(s string) TypeID {
	id, err := in.ParseName(s)
	if err != nil {
		panic(err)
	}
	return id
}

type nameParser struct {
	in  *Interner
	src string
	pos int
}

func (p *nameParser) errorf(format string, args ...any) error {
	return diag.Errorf(diag.CfgUnknownType, "type name %q: %s", p.src, fmt.Sprintf(format, args...))
}

func (p *nameParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *nameParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9' && p.pos > start) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *nameParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *nameParser) parseType() (TypeID, error) {
	name := p.ident()
	if name == "" {
		return NoTypeID, p.errorf("expected a type name at offset %d", p.pos)
	}
	var id TypeID
	if kind, ok := keywordKinds[name]; ok {
		id = p.in.Builtin(kind)
	} else {
		named, ok := p.in.Named(name)
		if !ok {
			return NoTypeID, p.errorf("unknown type %q", name)
		}
		id = named
	}
	if p.peek('<') {
		p.pos++
		var args []TypeID
		for {
			arg, err := p.parseType()
			if err != nil {
				return NoTypeID, err
			}
			args = append(args, arg)
			if p.peek(',') {
				p.pos++
				continue
			}
			if p.peek('>') {
				p.pos++
				break
			}
			return NoTypeID, p.errorf("expected ',' or '>' at offset %d", p.pos)
		}
		inst, err := p.in.Instantiate(id, args)
		if err != nil {
			return NoTypeID, err
		}
		id = inst
	}
	for {
		switch {
		case p.peek('?'):
			p.pos++
			id = p.in.Nullable(id)
		case p.peek('['):
			p.pos++
			if !p.peek(']') {
				return NoTypeID, p.errorf("expected ']' at offset %d", p.pos)
			}
			p.pos++
			id = p.in.Array(id)
		default:
			return id, nil
		}
	}
}
