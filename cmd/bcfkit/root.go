package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bcfkit/internal/convert"
	"bcfkit/internal/version"
)

func newRootCommand() *cobra.Command {
	var configFlag, logLevelFlag, logFormatFlag string
	var source, target, bcfVersion string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "bcfkit -s <source> -t <target> [-b 2.1|3.0]",
		Short: "Convert BCF archives to JSON directories and back",
		Long: `Convert a BCF archive (.bcfzip) into a directory of JSON units, or a JSON
directory back into an archive. The direction follows the source: a
directory is read as JSON, a file as an archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := ctx.options(logger)
			if err != nil {
				return err
			}

			var dispatcher *convert.Dispatcher
			if cmd.Flags().Changed("bcfVersion") {
				v, err := version.Parse(bcfVersion)
				if err != nil {
					return fmt.Errorf("--bcfVersion: %w", err)
				}
				if dispatcher, err = convert.NewForVersion(v, opts); err != nil {
					return err
				}
			} else {
				dispatcher = convert.New(opts)
			}

			source = strings.TrimSpace(source)
			target = strings.TrimSpace(target)
			if err := dispatcher.Convert(cmd.Context(), source, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s (BCF %s)\n", source, target, dispatcher.Version())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Override logging.format (console, json)")

	rootCmd.Flags().StringVarP(&source, "source", "s", "", "Archive file or JSON directory to convert")
	rootCmd.Flags().StringVarP(&target, "target", "t", "", "Output archive file or JSON directory")
	rootCmd.Flags().StringVarP(&bcfVersion, "bcfVersion", "b", version.V21.String(), "Schema generation; when given, sources of the other generation are rejected")
	_ = rootCmd.MarkFlagRequired("source")
	_ = rootCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
