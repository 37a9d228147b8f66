package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bcfkit/internal/convert"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "detect --source <path>",
		Short: "Print the schema generation of an archive or JSON directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := ctx.options(logger)
			if err != nil {
				return err
			}
			v, err := convert.New(opts).GetVersion(cmd.Context(), strings.TrimSpace(source))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Archive file or JSON directory")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
