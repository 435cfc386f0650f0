package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ttySwitch is the value of an auto|on|off flag such as --color or --ui.
type ttySwitch uint8

const (
	ttyAuto ttySwitch = iota
	ttyOn
	ttyOff
)

func parseTTYSwitch(flag, value string) (ttySwitch, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return ttyAuto, nil
	case "on":
		return ttyOn, nil
	case "off":
		return ttyOff, nil
	}
	return ttyAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto against whether f is a terminal.
func (s ttySwitch) enabled(f *os.File) bool {
	switch s {
	case ttyOn:
		return true
	case ttyOff:
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	sw, err := parseTTYSwitch("color", value)
	if err != nil {
		return err
	}
	color.NoColor = !sw.enabled(os.Stdout)
	return nil
}
