package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tes3conv/internal/convert"
	"tes3conv/internal/services"
)

func newConvertCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newDirectionalCommand(ctx, "to-json <plugin>", "Convert an ESP/ESM plugin to JSON", convert.ToText),
		newDirectionalCommand(ctx, "to-esp <json>", "Convert a JSON document to an ESP plugin", convert.ToBinary),
		newAutoConvertCommand(ctx),
	}
}

func newDirectionalCommand(ctx *commandContext, use, short string, dir convert.Direction) *cobra.Command {
	var flags conversionFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConversion(cmd, ctx, &flags, args[0], dir)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAutoConvertCommand(ctx *commandContext) *cobra.Command {
	var flags conversionFlags
	var direction string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a plugin or JSON document, picking the direction from the extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := convert.DetectDirection(args[0])
			if direction != "" {
				parsed, err := convert.ParseDirection(direction)
				if err != nil {
					return fmt.Errorf("--direction: %w", err)
				}
				dir = parsed
			}
			return runConversion(cmd, ctx, &flags, args[0], dir)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&direction, "direction", "", "Force the direction (json or esp)")
	return cmd
}

func runConversion(cmd *cobra.Command, ctx *commandContext, flags *conversionFlags, input string, dir convert.Direction) error {
	defer ctx.close()

	opts := flags.resolve(cmd, ctx.configValue())
	pipeline, err := ctx.newPipeline(cmd, opts.Encoding, opts.Backup)
	if err != nil {
		return err
	}

	req := convert.Request{
		InputPath: input,
		Direction: dir,
		Localize:  opts.Localize,
		Compact:   opts.Compact,
		Overwrite: opts.Overwrite,
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", dir.Label(), input)

	printer := newProgressPrinter(out, filepath.Base(input))
	job := convert.Start(cmd.Context(), pipeline, req)
	for value := range job.Progress() {
		printer.update(value)
	}
	printer.finish()

	res, err := job.Wait()
	if err != nil {
		fmt.Fprintln(out, "File conversion error")
		fmt.Fprintf(out, "  Kind: %s\n", services.Kind(err))
		fmt.Fprintf(out, "  Hint: %s\n", convert.Hint(err))
		return err
	}
	fmt.Fprintln(out, "Conversion completed successfully")
	fmt.Fprintf(out, "  Output: %s\n", res.OutputPath)
	if res.BackupPath != "" {
		fmt.Fprintf(out, "  Backup: %s\n", res.BackupPath)
	}
	fmt.Fprintf(out, "  Localized: %s\n", yesNo(res.Localized))
	return nil
}
