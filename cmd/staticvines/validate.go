package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coder-hombre/static-vines/pkg/cli"
	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

type validateOptions struct {
	*rootOptions
	writeDefault bool
}

// validateResult is the resolved view of a valid configuration.
type validateResult struct {
	Path        string            `json:"path" yaml:"path"`
	Written     bool              `json:"written,omitempty" yaml:"written,omitempty"`
	Growth      map[string]bool   `json:"growth" yaml:"growth"`
	ExtraBlocks map[string]string `json:"extra_blocks,omitempty" yaml:"extra_blocks,omitempty"`
	Watch       bool              `json:"watch" yaml:"watch"`
	Resync      string            `json:"resync_schedule,omitempty" yaml:"resync_schedule,omitempty"`
	Admin       string            `json:"admin,omitempty" yaml:"admin,omitempty"`
}

func (r validateResult) Text() string {
	var sb strings.Builder
	if r.Written {
		fmt.Fprintf(&sb, "✓ Wrote default configuration to %s\n", r.Path)
	}
	fmt.Fprintf(&sb, "✓ Configuration valid: %s\n\n", r.Path)

	sb.WriteString("Growth suppression:\n")
	for _, c := range vine.Known {
		state := "growth allowed"
		if r.Growth[c.String()] {
			state = "suppressed"
		}
		fmt.Fprintf(&sb, "  %-18s %s\n", c.String(), state)
	}

	if len(r.ExtraBlocks) > 0 {
		sb.WriteString("\nExtra blocks:\n")
		ids := make([]string, 0, len(r.ExtraBlocks))
		for id := range r.ExtraBlocks {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(&sb, "  %s -> %s\n", id, r.ExtraBlocks[id])
		}
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Watch: %t\n", r.Watch)
	if r.Resync != "" {
		fmt.Fprintf(&sb, "Resync: %s\n", r.Resync)
	}
	if r.Admin != "" {
		fmt.Fprintf(&sb, "Admin: %s\n", r.Admin)
	}
	return sb.String()
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Load a configuration file, apply defaults and STATICVINES_ environment
overrides, validate it and print the resolved suppression flags.

Omitted growth keys default to true (growth suppressed).

Examples:
  # Validate the default file
  staticvines validate

  # Create a commented default file if none exists, then validate it
  staticvines validate --config /etc/staticvines.yaml --write-default

  # Machine-readable output
  staticvines validate -o json`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	cmd.Flags().BoolVar(&opts.writeDefault, "write-default", false, "write a default configuration file if none exists")
	return cmd
}

func (o *validateOptions) run(cmd *cobra.Command, args []string) error {
	var written bool
	if o.writeDefault {
		var err error
		written, err = config.WriteDefault(o.configPath)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	flags, err := cfg.Flags()
	if err != nil {
		return cli.WrapConfigError(o.configPath, err)
	}

	res := validateResult{
		Path:        o.configPath,
		Written:     written,
		Growth:      flags.Named(),
		ExtraBlocks: cfg.Growth.ExtraBlocks,
		Watch:       cfg.Reload.Watch,
		Resync:      cfg.Reload.ResyncSchedule,
	}
	if cfg.Admin.Enabled {
		res.Admin = cfg.Admin.ListenAddress
	}
	return o.print(cmd, res)
}
