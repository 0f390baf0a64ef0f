package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tes3conv/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that tes3conv's directories and settings are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			configPath := ctx.configPath
			if !ctx.configExists {
				configPath = "(defaults)"
			}
			writeStatusSection(out, "Configuration", []statusLine{
				{Label: "Config file", Message: configPath},
				{Label: "Plugin encoding", Message: cfg.Conversion.PluginEncoding},
				{Label: "Localize", Message: yesNo(cfg.Conversion.Localize)},
				{Label: "Workers", Message: fmt.Sprintf("%d", cfg.Conversion.Workers)},
				{Label: "History", Message: yesNo(cfg.History.Enabled)},
			}, colorize)
			fmt.Fprintln(out)

			results := preflight.RunAll(cfg)
			writeStatusSection(out, "Checks", checkLines(results), colorize)

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}
