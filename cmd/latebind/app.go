package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"latebind/internal/binder"
	"latebind/internal/config"
	"latebind/internal/observ"
	"latebind/internal/overload"
	"latebind/internal/sample"
)

// appState is shared by all subcommands of one invocation.
type appState struct {
	cfg     config.Config
	engine  *binder.Engine
	lib     *sample.Library
	timer   *observ.Timer
	cleanup func()
}

var app *appState

func setupApp(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()
	st := &appState{timer: observ.NewTimer(), cleanup: func() {}}

	endConfig := st.timer.Track("config")
	cfgPath, err := root.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath != "" {
		st.cfg, err = config.Load(cfgPath)
	} else {
		st.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	endConfig(st.cfg.Path)

	if explicit, _ := root.GetBool("explicit"); explicit {
		st.cfg.Resolve.Explicit = true
	}
	if nonPublic, _ := root.GetBool("non-public"); nonPublic {
		st.cfg.Resolve.NonPublic = true
	}

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	tracer, stopTrace, err := setupTracing(cmd, st.cfg)
	if err != nil {
		stopProf()
		return err
	}
	cleanup := func() {
		stopTrace()
		stopProf()
	}
	st.cleanup = cleanup

	endEngine := st.timer.Track("engine")
	st.engine, err = binder.New(binder.Options{
		OperatorCacheSize: st.cfg.Cache.Operators,
		PlanCacheSize:     st.cfg.Cache.Plans,
		Flags:             st.cfg.Flags(),
		Tracer:            tracer,
	})
	if err != nil {
		cleanup()
		return err
	}
	if st.lib, err = sample.Install(st.engine.Registry()); err != nil {
		cleanup()
		return err
	}
	endEngine(fmt.Sprintf("%d types", st.engine.Types().Len()))

	app = st
	return nil
}

func teardownApp(cmd *cobra.Command) {
	if app == nil {
		return
	}
	app.cleanup()
	if show, _ := cmd.Root().PersistentFlags().GetBool("timings"); show {
		fmt.Fprint(cmd.ErrOrStderr(), app.timer.Summary())
	}
}

// parseFlagList turns a comma separated list such as "explicit,non-public"
// into resolution flags.
func parseFlagList(names []string) (overload.Flags, error) {
	var flags overload.Flags
	for _, name := range names {
		f, ok := overload.ParseFlag(name)
		if !ok {
			return 0, fmt.Errorf("unknown binding flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}
