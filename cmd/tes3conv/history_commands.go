package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tes3conv/internal/convert"
	"tes3conv/internal/history"
)

const defaultHistoryLimit = 20

var errHistoryDisabled = errors.New("conversion history is disabled (set [history] enabled = true)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the conversion journal",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func withHistory(cmd *cobra.Command, ctx *commandContext, fn func(*history.Store) error) error {
	defer ctx.close()
	store, err := ctx.ensureHistory(cmd.Context())
	if err != nil {
		return err
	}
	if store == nil {
		return errHistoryDisabled
	}
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var direction string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := history.Filter{Limit: limit}
			switch strings.ToLower(strings.TrimSpace(status)) {
			case "":
			case string(history.StatusSucceeded), "ok":
				filter.Status = history.StatusSucceeded
			case string(history.StatusFailed):
				filter.Status = history.StatusFailed
			default:
				return fmt.Errorf("--status: unknown status %q (want succeeded or failed)", status)
			}
			if direction != "" {
				dir, err := convert.ParseDirection(direction)
				if err != nil {
					return fmt.Errorf("--direction: %w", err)
				}
				filter.Direction = dir.String()
			}

			return withHistory(cmd, ctx, func(store *history.Store) error {
				entries, err := store.Recent(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No conversions recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&status, "status", "", "Only show succeeded or failed conversions")
	cmd.Flags().StringVar(&direction, "direction", "", "Only show one direction (json or esp)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")
	return cmd
}

func renderHistoryTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := string(e.Status)
		if e.ErrorKind != "" {
			status += " (" + e.ErrorKind + ")"
		}
		rows = append(rows, []string{
			humanize.Time(e.FinishedAt),
			e.InputPath,
			directionLabel(e.Direction),
			status,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	return tableView{
		Headers: []string{"Finished", "Input", "Direction", "Status", "Duration"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	}.render()
}

func directionLabel(stored string) string {
	dir, err := convert.ParseDirection(stored)
	if err != nil {
		return stored
	}
	return dir.Label()
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show one conversion in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				entry, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no conversion with request id %s", args[0])
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Request:   %s\n", entry.RequestID)
				fmt.Fprintf(out, "Input:     %s\n", entry.InputPath)
				fmt.Fprintf(out, "Output:    %s\n", entry.OutputPath)
				if entry.BackupPath != "" {
					fmt.Fprintf(out, "Backup:    %s\n", entry.BackupPath)
				}
				fmt.Fprintf(out, "Direction: %s\n", directionLabel(entry.Direction))
				fmt.Fprintf(out, "Localized: %s\n", yesNo(entry.Localized))
				fmt.Fprintf(out, "Status:    %s\n", entry.Status)
				if entry.ErrorKind != "" {
					fmt.Fprintf(out, "Error:     %s: %s\n", entry.ErrorKind, entry.ErrorMessage)
				}
				fmt.Fprintf(out, "Progress:  %s\n", formatProgress(entry.Progress))
				fmt.Fprintf(out, "Started:   %s\n", entry.StartedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Duration:  %s\n", entry.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func formatProgress(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the conversion journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:     %d\n", stats.Total)
				fmt.Fprintf(out, "Succeeded: %d\n", stats.Succeeded)
				fmt.Fprintf(out, "Failed:    %d\n", stats.Failed)
				if len(stats.ByKind) == 0 {
					return nil
				}
				kinds := make([]string, 0, len(stats.ByKind))
				for kind := range stats.ByKind {
					kinds = append(kinds, kind)
				}
				sort.Strings(kinds)
				rows := make([][]string, 0, len(kinds))
				for _, kind := range kinds {
					rows = append(rows, []string{kind, fmt.Sprintf("%d", stats.ByKind[kind])})
				}
				fmt.Fprintln(out, tableView{
					Headers: []string{"Failure kind", "Count"},
					Rows:    rows,
					Aligns:  []columnAlignment{alignLeft, alignRight},
				}.render())
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = ctx.configValue().History.RetentionDays
			}
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			return withHistory(cmd, ctx, func(store *history.Store) error {
				removed, err := store.PruneOlderThan(cmd.Context(), days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %d days\n", removed, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (default from config)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
				return nil
			})
		},
	}
}
