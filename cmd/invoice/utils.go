package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jesses-code-adventures/invoice/internal/formatter"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

// formatFlag only accepts formats the registry can render.
type formatFlag struct {
	registry *formatter.Registry
	value    string
}

var _ pflag.Value = (*formatFlag)(nil)

func newFormatFlag(registry *formatter.Registry, def string) *formatFlag {
	return &formatFlag{registry: registry, value: def}
}

func (f *formatFlag) String() string {
	return f.value
}

func (f *formatFlag) Set(v string) error {
	if _, err := f.registry.Get(v); err != nil {
		return err
	}
	f.value = strings.ToLower(v)
	return nil
}

func (f *formatFlag) Type() string {
	return "format"
}

func addFormatFlag(cmd *cobra.Command, registry *formatter.Registry) *formatFlag {
	f := newFormatFlag(registry, "pdf")
	cmd.Flags().Var(f, "format", fmt.Sprintf("Output format (%s)", strings.Join(registry.Names(), ", ")))
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return registry.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return f
}

// changed returns a pointer to value when the flag was given on the command line.
func changed[T any](cmd *cobra.Command, name string, value T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func changedDate(cmd *cobra.Command, name, value string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	d, err := service.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return service.ParseDate(value)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func derefOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

// indent sets off the continuation lines of a multi-line value.
func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n    ")
}
