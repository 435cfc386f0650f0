package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latebind/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "latebind",
	Short:         "Late-bound member resolution and invocation thunks",
	Long:          `latebind resolves member accesses against a host type registry, plans argument coercions and runs the resulting thunks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		return setupApp(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to latebind.toml (default: search upwards from the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.Bool("explicit", false, "allow explicit conversions when matching arguments")
	flags.Bool("non-public", false, "include non-public members")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug), overrides [trace].level")
	flags.String("trace-mode", "", "trace storage mode (stream|ring|both), overrides [trace].mode")
	flags.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring|both")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	flags.String("cpu-profile", "", "write CPU profile to file")
	flags.String("mem-profile", "", "write heap profile to file on exit")
	flags.String("runtime-trace", "", "write runtime trace to file")
}

func main() {
	err := rootCmd.Execute()
	teardownApp(rootCmd)
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		os.Exit(1)
	}
}

// errSilent signals a failure that has already been reported.
var errSilent = errors.New("")
