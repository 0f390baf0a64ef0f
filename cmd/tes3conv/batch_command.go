package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tes3conv/internal/batch"
	"tes3conv/internal/convert"
	"tes3conv/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags conversionFlags
	var direction string
	var workers int
	var recursive bool

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Convert many plugins or JSON documents concurrently",
		Long: "Convert every file named on the command line and every .esp, .esm and .json\n" +
			"file found in the named directories. Failures are reported per file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			cfg := ctx.configValue()
			opts := flags.resolve(cmd, cfg)

			expand := batch.ExpandOptions{Recursive: recursive}
			if direction != "" {
				parsed, err := convert.ParseDirection(direction)
				if err != nil {
					return fmt.Errorf("--direction: %w", err)
				}
				expand.Direction = &parsed
			}
			items, err := batch.Expand(args, expand)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No convertible files found")
				return nil
			}

			pipeline, err := ctx.newPipeline(cmd, opts.Encoding, opts.Backup)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Conversion.Workers
			}

			out := cmd.OutOrStdout()
			printer := newProgressPrinter(out, "batch")
			runner, err := batch.NewRunner(batch.Options{
				Pipeline:  pipeline,
				Logger:    logger,
				Workers:   workers,
				LockDir:   filepath.Join(cfg.Paths.LogDir, "locks"),
				Localize:  opts.Localize,
				Compact:   opts.Compact,
				Overwrite: opts.Overwrite,
				OnProgress: func(u batch.Update) {
					if printer.live || u.Value == convert.ProgressDone || u.Value == convert.ProgressFailed {
						printer.update(u.Percent)
					}
				},
			})
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context(), items)
			printer.finish()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderBatchSummary(summary))
			fmt.Fprintf(out, "Converted %d of %d files in %s\n",
				summary.Succeeded, len(summary.Outcomes), summary.Duration.Round(time.Millisecond))
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", summary.Failed, len(summary.Outcomes))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&direction, "direction", "", "Force the direction (json or esp) instead of detecting it per file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversions (default from config)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	return cmd
}

func renderBatchSummary(summary batch.Summary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		status := "ok"
		detail := o.Result.OutputPath
		if o.Err != nil {
			status = services.Kind(o.Err)
			detail = o.Err.Error()
		}
		rows = append(rows, []string{
			o.Item.InputPath,
			o.Item.Direction.Label(),
			status,
			o.Result.Duration().Round(time.Millisecond).String(),
			detail,
		})
	}
	return tableView{
		Headers: []string{"Input", "Direction", "Status", "Duration", "Output / Error"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		Footer: []string{
			fmt.Sprintf("%d files", len(summary.Outcomes)),
			"",
			fmt.Sprintf("%d ok, %d failed", summary.Succeeded, summary.Failed),
			summary.Duration.Round(time.Millisecond).String(),
			"",
		},
	}.render()
}
