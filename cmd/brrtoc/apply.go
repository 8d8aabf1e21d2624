package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

func applyCmd(opts *options) *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "apply [FILE|-]",
		Short: "Cut a document with a known template",
		Long: `Apply a template to a document and print the headings it matches.

Without --template the template remembered by "scan --remember" is used.
Templates are either literal lines such as "Chapter *", where * matches any
run of characters and ? exactly one, or a regular expression written as
/pattern/flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template != "" {
				if _, err := autotoc.CompileErr(template); err != nil {
					return err
				}
			}

			text, source, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if template == "" {
				store, hash, err := openState(source)
				if err != nil {
					return fmt.Errorf("no --template given: %w", err)
				}
				template = store.GetTemplate(hash)
				if template == "" {
					return fmt.Errorf("no template remembered for %s", source)
				}
			}

			items, ok := autotoc.Apply(text, template)
			if !ok {
				return fmt.Errorf("%w: %s", autotoc.ErrInvalidTemplate, template)
			}
			return outputTo(cmd.OutOrStdout(), OutputFormat(opts.outputFormat), newTOCOutput(source, text, template, items))
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "template to apply")
	return cmd
}
