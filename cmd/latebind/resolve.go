package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latebind/internal/binder"
	"latebind/internal/diag"
	"latebind/internal/overload"
	"latebind/internal/thunk"
	"latebind/internal/types"
)

var (
	resolveReturn string
	resolveFlags  []string
	resolveInvoke []string
	resolveDoCall bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveReturn, "return", "", "expected result type (void discards the result)")
	resolveCmd.Flags().StringSliceVar(&resolveFlags, "flags", nil, "binding flags (public,non-public,static,instance,explicit,create,accessors)")
	resolveCmd.Flags().StringSliceVar(&resolveInvoke, "invoke", nil, "argument values; arrays are ';' separated")
	resolveCmd.Flags().BoolVar(&resolveDoCall, "call", false, "invoke the thunk even when it takes no arguments")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <type> <member> [arg-type...]",
	Short: "Resolve a member for an argument shape and show the compiled plan",
	Example: `  latebind resolve Calculator Add int int --invoke 3,4
  latebind resolve Person "" string int
  latebind resolve Thermometer Report Celsius`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := app.engine.Types()
		t, err := in.ParseName(args[0])
		if err != nil {
			return err
		}
		shape := overload.Shape{}
		for _, a := range args[2:] {
			id, err := in.ParseName(a)
			if err != nil {
				return err
			}
			shape.Args = append(shape.Args, id)
		}
		if resolveReturn != "" {
			if shape.Return, err = in.ParseName(resolveReturn); err != nil {
				return err
			}
		}
		flags, err := parseFlagList(resolveFlags)
		if err != nil {
			return err
		}

		end := app.timer.Track("resolve")
		th, err := app.engine.Resolve(binder.OfType(t), args[1], shape, flags)
		if err != nil {
			end("failed")
			printError(cmd.ErrOrStderr(), fmt.Sprintf("%s.%s(%s)", args[0], args[1], in.NameList(shape.Args)), err)
			return errSilent
		}
		end(th.Plan().String())
		printPlan(cmd.OutOrStdout(), in, th.Plan())

		if len(resolveInvoke) == 0 && !resolveDoCall {
			return nil
		}
		values, err := parseValues(in, shape.Args, resolveInvoke)
		if err != nil {
			return err
		}
		endCall := app.timer.Track("invoke")
		result, err := th.Invoke(values...)
		endCall("")
		if err != nil {
			printError(cmd.ErrOrStderr(), th.Plan().String(), err)
			return errSilent
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", color.GreenString("result:"), result)
		return nil
	},
}

func printPlan(w io.Writer, in *types.Interner, p *thunk.Plan) {
	b := p.Binding()
	fmt.Fprintf(w, "%s %s\n", color.CyanString("member:"), p)
	fmt.Fprintf(w, "%s %s, %s form", color.CyanString("mode:  "), b.Mode, b.Form)
	if b.Expanded {
		fmt.Fprint(w, ", expanded")
	}
	if b.Defaults > 0 {
		fmt.Fprintf(w, ", %d default(s)", b.Defaults)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", color.CyanString("steps: "), strings.Join(p.Steps(), " -> "))
	fmt.Fprintf(w, "%s %s\n", color.CyanString("yields:"), in.Name(b.ResultType(in)))
}

func printError(w io.Writer, subject string, err error) {
	d := diag.FromError(subject, err)
	fmt.Fprintf(w, "%s %s %s: %s\n", color.RedString(d.Code.ID()), d.Subject, d.Code.Title(), d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  %s %s\n", color.YellowString("note:"), n)
	}
}
