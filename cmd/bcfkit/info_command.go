package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bcfkit/internal/convert"
	"bcfkit/internal/model"
)

var topicHeaders = []string{"GUID", "Title", "Type", "Status", "Author", "Created", "Comments", "Viewpoints"}

var topicAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "info --source <path>",
		Short: "List the topics of an archive or JSON directory",
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
			g, err := convert.New(opts).BuildFromFile(cmd.Context(), strings.TrimSpace(source))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			topics := g.Topics()
			rows := topicRows(topics)
			if isTerminal(out) {
				fmt.Fprintf(out, "BCF %s, %d topic(s)\n", g.SchemaVersion(), len(topics))
				fmt.Fprintln(out, renderTable(topicHeaders, rows, topicAligns))
				return nil
			}
			fmt.Fprint(out, renderPlain(topicHeaders, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Archive file or JSON directory")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func topicRows(topics []model.TopicSummary) [][]string {
	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, []string{
			t.GUID,
			t.Title,
			t.Type,
			t.Status,
			t.Author,
			t.Created,
			strconv.Itoa(t.Comments),
			strconv.Itoa(t.Viewpoints),
		})
	}
	return rows
}
