package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"tes3conv/internal/config"
)

func resolveWith(t *testing.T, cfg *config.Config, args ...string) resolvedConversion {
	t.Helper()
	var flags conversionFlags
	var got resolvedConversion
	cmd := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			got = flags.resolve(cmd, cfg)
			return nil
		},
	}
	flags.register(cmd)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return got
}

func TestConversionFlagsResolve(t *testing.T) {
	cfg := config.Default()
	cfg.Conversion.Compact = true
	cfg.Conversion.BackupExisting = true

	got := resolveWith(t, &cfg)
	if !got.Localize || !got.Compact || got.Overwrite || !got.Backup {
		t.Fatalf("config defaults not applied: %+v", got)
	}
	if got.Encoding != cfg.Conversion.PluginEncoding {
		t.Fatalf("encoding = %q, want %q", got.Encoding, cfg.Conversion.PluginEncoding)
	}

	got = resolveWith(t, &cfg, "--no-localize", "--compact=false", "--overwrite", "--backup=false", "--encoding", "cp1252")
	if got.Localize || got.Compact || !got.Overwrite || got.Backup || got.Encoding != "cp1252" {
		t.Fatalf("flags did not override config: %+v", got)
	}

	cfg.Conversion.Localize = false
	if got := resolveWith(t, &cfg, "--localize"); !got.Localize {
		t.Fatal("--localize should override a disabled config default")
	}
}

func TestProgressPrinterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	printer := newProgressPrinter(&buf, "mod.esp")
	if printer.live {
		t.Fatal("a buffer is not a terminal")
	}
	for _, v := range []float64{33, -1} {
		printer.update(v)
	}
	printer.finish()
	if got, want := buf.String(), "mod.esp  33%\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
