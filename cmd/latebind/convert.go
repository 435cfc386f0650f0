package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latebind/internal/conv"
	"latebind/internal/host"
	"latebind/internal/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <target> <source>",
	Short: "Show whether and how a source type converts to a target type",
	Example: `  latebind convert long int
  latebind convert Fahrenheit Celsius
  latebind convert "int?" short`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := app.engine
		in := e.Types()
		target, err := in.ParseName(args[0])
		if err != nil {
			return err
		}
		source, err := in.ParseName(args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s -> %s\n", in.Name(source), in.Name(target))
		printVerdict(out, "implicit", e.IsImplicitlyConvertible(target, source))
		printVerdict(out, "explicit", e.IsExplicitlyConvertible(target, source))
		if c, ok := e.Classify(target, source, true); ok {
			fmt.Fprintf(out, "  %-9s %s (%s, cost %d)\n", "plan", describeConversion(in, c), tierName(c.Tier()), c.Cost())
		}
		return nil
	},
}

func printVerdict(w io.Writer, label string, ok bool) {
	verdict := color.RedString("no")
	if ok {
		verdict = color.GreenString("yes")
	}
	fmt.Fprintf(w, "  %-9s %s\n", label, verdict)
}

func tierName(t conv.Tier) string {
	switch t {
	case conv.TierExact:
		return "exact"
	case conv.TierImplicit:
		return "implicit"
	default:
		return "explicit"
	}
}

// describeConversion renders c with its nested steps, e.g.
// "op_Implicit[widen] via Celsius.op_Implicit(double)".
func describeConversion(in *types.Interner, c conv.Conversion) string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	var inner []string
	for _, n := range []*conv.Conversion{c.Pre, c.Elem, c.Post} {
		if n != nil && !n.IsIdentity() {
			inner = append(inner, describeConversion(in, *n))
		}
	}
	if len(inner) > 0 {
		b.WriteString("[" + strings.Join(inner, ", ") + "]")
	}
	if c.Operator != nil {
		b.WriteString(" via " + host.Signature(in, c.Operator))
	}
	return b.String()
}
