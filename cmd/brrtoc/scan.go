package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metcalfc/brrtoc/internal/autotoc"
	"github.com/metcalfc/brrtoc/internal/logging"
)

var errNoTOC = errors.New("no table of contents detected")

func scanCmd(opts *options) *cobra.Command {
	var remember bool

	cmd := &cobra.Command{
		Use:   "scan [FILE|-]",
		Short: "Detect the table of contents of a document",
		Long: `Scan a document for chapter headings and print the best template
together with the headings it selects.

Reads stdin when FILE is omitted or "-". Detection parameters come from the
detector section of the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, source, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			det := autotoc.New(opts.cfg.Detector)
			var res *autotoc.Result
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case resp := <-det.DetectAsync(text):
				res = resp.Result
			}
			if res == nil {
				return fmt.Errorf("%s: %w", source, errNoTOC)
			}

			if remember {
				store, hash, err := openState(source)
				if err != nil {
					return err
				}
				if err := store.SetTemplate(hash, res.Template); err != nil {
					return fmt.Errorf("failed to save template: %w", err)
				}
				logging.Logger().Info("template remembered", "source", source, "template", res.Template)
			}

			out := newTOCOutput(source, text, res.Template, res.Items)
			out.Beauty = res.Beauty
			return outputTo(cmd.OutOrStdout(), OutputFormat(opts.outputFormat), out)
		},
	}

	cmd.Flags().BoolVar(&remember, "remember", false, "store the detected template for this file")
	return cmd
}
