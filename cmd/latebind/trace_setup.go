package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"latebind/internal/config"
	"latebind/internal/trace"
)

// setupTracing merges the trace flags over [trace] from the config file
// and installs the tracer in the command context. The returned cleanup
// dumps the ring in ring mode, then flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg config.Config) (trace.Tracer, func(), error) {
	root := cmd.Root().PersistentFlags()

	traceOutput, err := root.GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.GetString("trace-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.GetString("trace-mode")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.GetInt("trace-ring-size")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if levelStr != "" {
		cfg.Trace.Level = levelStr
	}
	if modeStr != "" {
		cfg.Trace.Mode = modeStr
	}
	if traceOutput != "" {
		cfg.Trace.Output = traceOutput
		// --trace alone turns tracing on
		if levelStr == "" && cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	tc, err := cfg.Tracer()
	if err != nil {
		return nil, nil, err
	}
	tc.RingSize = ringSize
	tc.Heartbeat = heartbeatInterval

	if tc.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return trace.Nop, func() {}, nil
	}

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}
	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := trace.Finish(tracer, tc); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}
