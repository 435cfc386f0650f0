package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latebind/internal/diag"
	"latebind/internal/diagfmt"
	"latebind/internal/probe"
	"latebind/internal/trace"
	"latebind/internal/ui"
)

var (
	checkJobs    int
	checkUI      string
	checkVerbose bool
	checkFormat  string
)

func init() {
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "max parallel probes (0=auto)")
	checkCmd.Flags().StringVar(&checkUI, "ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().BoolVar(&checkVerbose, "verbose", false, "print every probe, not only failures")
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "diagnostics format (pretty|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <probes.toml>",
	Short: "Run a batch of probes and report the ones whose outcome differs from the expectation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkFormat != "pretty" && checkFormat != "json" {
			return fmt.Errorf("unknown format %q (want pretty|json)", checkFormat)
		}
		view, err := parseTTYSwitch("ui", checkUI)
		if err != nil {
			return err
		}
		probes, err := probe.Load(args[0])
		if err != nil {
			return err
		}
		results, err := runProbes(cmd, args[0], probes, view.enabled(os.Stdout))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if checkVerbose {
			for _, r := range results {
				printResult(out, r)
			}
		}
		maxDiags, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		bag := probe.Report(results, maxDiags)
		if err := printDiagnostics(cmd.ErrOrStderr(), bag); err != nil {
			return err
		}
		passed := 0
		for _, r := range results {
			if r.Passed() {
				passed++
			}
		}
		summary := fmt.Sprintf("%d/%d probe(s) passed", passed, len(results))
		if passed < len(results) {
			fmt.Fprintln(out, color.RedString(summary))
			return errSilent
		}
		fmt.Fprintln(out, color.GreenString(summary))
		return nil
	},
}

// runProbes runs the batch, rendering progress with the TUI when asked.
func runProbes(cmd *cobra.Command, title string, probes []probe.Probe, useTUI bool) ([]probe.Result, error) {
	span := trace.BeginFrom(cmd.Context(), trace.ScopeDriver, "check").WithExtra("file", title)
	ctx := trace.WithSpan(cmd.Context(), span)
	end := app.timer.Track("probes")
	defer func() { span.End(""); end(fmt.Sprintf("%d probe(s)", len(probes))) }()

	opts := probe.Options{Jobs: checkJobs}
	if !useTUI {
		return probe.Run(ctx, app.engine, probes, opts)
	}

	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name()
	}
	events := make(chan ui.Event, len(probes))
	opts.OnResult = func(r probe.Result) {
		ev := ui.Event{Index: r.Index, Status: ui.StatusPass, Detail: r.Member}
		if d, failed := r.Diagnostic(); failed {
			ev.Status, ev.Detail = ui.StatusFail, d.Code.ID()
		}
		events <- ev
	}
	type outcome struct {
		results []probe.Result
		err     error
	}
	done := make(chan outcome, 1)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		res, err := probe.Run(runCtx, app.engine, probes, opts)
		close(events)
		done <- outcome{res, err}
	}()
	program := tea.NewProgram(ui.NewProgressModel(title, names, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		cancel()
	}
	o := <-done
	if uiErr != nil {
		return o.results, uiErr
	}
	return o.results, o.err
}

func printResult(w io.Writer, r probe.Result) {
	status := color.GreenString("pass")
	if !r.Passed() {
		status = color.RedString("fail")
	}
	line := fmt.Sprintf("%s %-32s", status, r.Probe.Name())
	switch {
	case r.Err != nil:
		line += " " + diag.CodeOf(r.Err).ID()
	case r.Member != "":
		line += " " + r.Member + " [" + strings.Join(r.Steps, " -> ") + "]"
	}
	if r.Invoked && r.Err == nil {
		line += fmt.Sprintf(" = %v", r.Value)
	}
	fmt.Fprintf(w, "%s (%s)\n", line, r.Elapsed)
}

func printDiagnostics(w io.Writer, bag *diag.Bag) error {
	if checkFormat == "json" {
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{IncludeNotes: true})
	}
	diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true})
	return nil
}
