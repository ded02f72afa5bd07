package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

type classifyOptions struct {
	*rootOptions
	useConfig bool
}

// classification is one classified block id.
type classification struct {
	Input       string `json:"input" yaml:"input"`
	BlockID     string `json:"block_id" yaml:"block_id"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Suppressed  *bool  `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

type classifyResult []classification

func (r classifyResult) Text() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tCATEGORY\tGROWTH\tDESCRIPTION")
	for _, c := range r {
		growth := "-"
		if c.Suppressed != nil {
			growth = "allowed"
			if *c.Suppressed {
				growth = "suppressed"
			}
		}
		id := c.BlockID
		if id == "" {
			id = c.Input + " (invalid)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, c.Category, growth, c.Description)
	}
	_ = tw.Flush()
	return sb.String()
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "classify <block-id>...",
		Short: "Show the vine category of block ids",
		Long: `Classify block ids the way the growth engine does. Ids without a namespace
get "minecraft:". With --use-config, extra blocks from the configuration are
included and the current suppression flag is shown for each block.

Examples:
  staticvines classify minecraft:cave_vines kelp_plant
  staticvines classify --use-config examplemod:glow_vine`,
		Args: cobra.MinimumNArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().BoolVar(&opts.useConfig, "use-config", false, "load extra blocks and flags from the configuration file")
	return cmd
}

func (o *classifyOptions) run(cmd *cobra.Command, args []string) error {
	classifier := vine.DefaultClassifier()
	var flags *policy.Flags
	if o.useConfig {
		cfg, err := o.loadConfig()
		if err != nil {
			return err
		}
		if classifier, err = cfg.Classifier(); err != nil {
			return err
		}
		if flags, err = cfg.Flags(); err != nil {
			return err
		}
	}

	out := make(classifyResult, 0, len(args))
	for _, arg := range args {
		id := vine.NormalizeID(arg)
		cat := classifier.ClassifyID(id)
		c := classification{
			Input:       arg,
			BlockID:     id,
			Category:    cat.String(),
			Description: cat.Description(),
		}
		if flags != nil && cat != vine.Unknown {
			suppressed := policy.ShouldSuppress(cat, flags)
			c.Suppressed = &suppressed
		}
		out = append(out, c)
	}
	return o.print(cmd, out)
}
