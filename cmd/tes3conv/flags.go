package main

import (
	"github.com/spf13/cobra"

	"tes3conv/internal/config"
)

// conversionFlags mirrors the [conversion] config section. Flags left unset
// fall back to the configured defaults.
type conversionFlags struct {
	localize   bool
	noLocalize bool
	compact    bool
	overwrite  bool
	backup     bool
	encoding   string
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.localize, "localize", true, "Rewrite Cyrillic text between native and 1C forms")
	cmd.Flags().BoolVar(&f.noLocalize, "no-localize", false, "Disable Cyrillic rewriting")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "Write single-line JSON")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace existing output files")
	cmd.Flags().BoolVar(&f.backup, "backup", false, "Copy an output that is about to be replaced to <output>.bak")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Plugin string encoding (default from config)")
	cmd.MarkFlagsMutuallyExclusive("localize", "no-localize")
}

// resolvedConversion is the effective set of options for one invocation.
type resolvedConversion struct {
	Localize  bool
	Compact   bool
	Overwrite bool
	Backup    bool
	Encoding  string
}

func (f *conversionFlags) resolve(cmd *cobra.Command, cfg *config.Config) resolvedConversion {
	out := resolvedConversion{Encoding: f.encoding}
	if cfg != nil {
		out.Localize = cfg.Conversion.Localize
		out.Compact = cfg.Conversion.Compact
		out.Overwrite = cfg.Conversion.Overwrite
		out.Backup = cfg.Conversion.BackupExisting
		if out.Encoding == "" {
			out.Encoding = cfg.Conversion.PluginEncoding
		}
	}
	flags := cmd.Flags()
	if flags.Changed("localize") {
		out.Localize = f.localize
	}
	if flags.Changed("no-localize") && f.noLocalize {
		out.Localize = false
	}
	if flags.Changed("compact") {
		out.Compact = f.compact
	}
	if flags.Changed("overwrite") {
		out.Overwrite = f.overwrite
	}
	if flags.Changed("backup") {
		out.Backup = f.backup
	}
	return out
}
