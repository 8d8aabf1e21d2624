package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/metcalfc/brrtoc/internal/config"
	"github.com/metcalfc/brrtoc/internal/logging"
)

// options holds the persistent flags and the config they resolve to.
type options struct {
	cfgFile      string
	outputFormat string
	verbose      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "brrtoc",
		Short: "Detect the table of contents of plain text documents",
		Long: `brrtoc finds chapter headings in text that has no markup.

It proposes heading patterns such as "Chapter 12", "第十二章" or lines that
start with the same symbol, scores how well each one cuts the document and
prints the winning template together with the headings it selects.

A template can be stored and re-applied later without running detection:
  brrtoc scan book.txt --remember
  brrtoc apply book.txt`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			format, err := parseOutputFormat(opts.outputFormat)
			if err != nil {
				return err
			}
			opts.outputFormat = string(format)

			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&opts.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/brr/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&opts.outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&opts.verbose, "verbose", "v", false, "log detection details to stderr",
	)

	rootCmd.AddCommand(scanCmd(opts))
	rootCmd.AddCommand(applyCmd(opts))
	rootCmd.AddCommand(configCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}
