package overload

import "strings"

// Flags select which members a request may bind to.
type Flags uint16

const (
	Public Flags = 1 << iota
	NonPublic
	Static
	Instance
	// ExplicitCoercion admits narrowing, downcasts and explicit operators
	// when nothing binds implicitly.
	ExplicitCoercion
	// CreateInstance restricts resolution to constructors; failure is
	// terminal.
	CreateInstance
	// Accessors restricts resolution to the property and field phases.
	Accessors
)

// DefaultFlags binds public static and instance members.
const DefaultFlags = Public | Static | Instance

// normalize fills in the visibility and static/instance defaults.
func (f Flags) normalize() Flags {
	if f&(Public|NonPublic) == 0 {
		f |= Public
	}
	if f&(Static|Instance) == 0 {
		f |= Static | Instance
	}
	return f
}

func (f Flags) String() string {
	if f == 0 {
		return "default"
	}
	var parts []string
	for _, item := range []struct {
		flag Flags
		name string
	}{
		{Public, "public"}, {NonPublic, "non-public"}, {Static, "static"}, {Instance, "instance"},
		{ExplicitCoercion, "explicit"}, {CreateInstance, "create"}, {Accessors, "accessors"},
	} {
		if f&item.flag != 0 {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlag maps a flag name used in config and probe files to its value.
func ParseFlag(name string) (Flags, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "public":
		return Public, true
	case "non-public", "nonpublic", "private":
		return NonPublic, true
	case "static":
		return Static, true
	case "instance":
		return Instance, true
	case "explicit":
		return ExplicitCoercion, true
	case "create", "ctor", "new":
		return CreateInstance, true
	case "accessors", "property", "field":
		return Accessors, true
	}
	return 0, false
}
