package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/export"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(cmd, ctx)
			if err != nil {
				return err
			}
			list, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if list == nil {
					list = []*catalog.Conversion{}
				}
				return writeJSON(cmd, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet.")
				return nil
			}

			body := make([][]string, 0, len(list))
			for _, c := range list {
				body = append(body, []string{
					shortID(c.ID),
					c.Filename,
					c.Sequence,
					itoa(c.RowCount),
					humanize.Bytes(uint64(c.Size)),
					c.Status,
					humanize.Time(c.CreatedAt),
				})
			}
			headers := []string{"ID", "File", "Sequence", "Rows", "Size", "Status", "When"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, body, aligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of conversions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryDeleteCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	var extended bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the rows of a past conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			svc, err := historyService(cmd, ctx)
			if err != nil {
				return err
			}
			c, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("conversion %s not found", args[0])
			}
			if c.Status != catalog.StatusCompleted {
				return fmt.Errorf("conversion %s is %s", args[0], c.Status)
			}
			out := cmd.OutOrStdout()
			if f == export.FormatCSV && isTerminal(out) {
				_, err := fmt.Fprintln(out, renderRows(c.Rows, extended))
				return err
			}
			return export.Write(out, c.Rows, export.Options{Format: f, Extended: extended, Title: c.Sequence, FPS: c.FPS})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json, edl")
	cmd.Flags().BoolVar(&extended, "extended", false, "Add Title and StockID columns to CSV output")
	return cmd
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a conversion from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(cmd, ctx)
			if err != nil {
				return err
			}
			ok, err := svc.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("conversion not found")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func historyService(cmd *cobra.Command, ctx *commandContext) (*catalog.Service, error) {
	logger := ctx.logger(cmd.ErrOrStderr())
	repo, err := ctx.catalogRepo(logger)
	if err != nil {
		return nil, err
	}
	return catalog.NewService(repo, logger), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

