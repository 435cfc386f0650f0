package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latebind/internal/plans"
	"latebind/internal/probe"
)

var (
	plansSave   bool
	plansOut    string
	plansLoad   string
	plansFormat string
)

func init() {
	plansCmd.Flags().BoolVar(&plansSave, "save", false, "write the snapshot ([plans].snapshot or the user cache directory)")
	plansCmd.Flags().StringVar(&plansOut, "out", "", "write the snapshot to this path")
	plansCmd.Flags().StringVar(&plansLoad, "load", "", "print a previously saved snapshot instead of running probes")
	plansCmd.Flags().StringVar(&plansFormat, "format", "pretty", "output format (pretty|json)")
}

var plansCmd = &cobra.Command{
	Use:   "plans [probes.toml]",
	Short: "Compile the plans a probe batch needs and print or save the plan cache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(plansFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", plansFormat)
		}
		var snap *plans.Snapshot
		switch {
		case plansLoad != "":
			var err error
			if snap, err = plans.Read(plansLoad); err != nil {
				return err
			}
		case len(args) == 1:
			probes, err := probe.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := runProbes(cmd, args[0], probes, false); err != nil {
				return err
			}
			snap = app.engine.Snapshot()
		default:
			return fmt.Errorf("nothing to show: pass a probe file or --load")
		}

		if path, err := snapshotPath(); err != nil {
			return err
		} else if path != "" {
			if err := plans.Write(path, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", path)
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		printSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func snapshotPath() (string, error) {
	switch {
	case plansOut != "":
		return plansOut, nil
	case !plansSave:
		return "", nil
	case app.cfg.Plans.Snapshot != "":
		return app.cfg.Plans.Snapshot, nil
	default:
		return plans.DefaultPath("latebind")
	}
}

func printSnapshot(w io.Writer, s *plans.Snapshot) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(s.Summary()))
	for _, r := range s.Records {
		fmt.Fprintf(w, "  %s %s\n", color.CyanString(r.Member), color.HiBlackString("(%s, %s)", r.Form, r.Mode))
		fmt.Fprintf(w, "    args (%s)", strings.Join(r.Args, ", "))
		if r.Return != "" {
			fmt.Fprintf(w, " -> %s", r.Return)
		}
		fmt.Fprintf(w, "\n    steps %s\n", strings.Join(r.Steps, " -> "))
	}
}
