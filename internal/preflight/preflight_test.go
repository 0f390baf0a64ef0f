package preflight_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tes3conv/internal/preflight"
	"tes3conv/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDir(t *testing.T) {
	dir := t.TempDir()
	if result := preflight.CheckOutputDir(dir, 1); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := preflight.CheckOutputDir(dir, ^uint64(0))
	if result.Passed {
		t.Fatal("expected failure when requiring more space than exists")
	}
	if !strings.Contains(result.Detail, "free") {
		t.Fatalf("detail should mention free space, got %q", result.Detail)
	}
}

func TestCheckInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.esp")
	if err := os.WriteFile(path, []byte("TES3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := preflight.CheckInputFile(path); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := preflight.CheckInputFile(dir); result.Passed {
		t.Fatal("expected failure for directory input")
	}
	if result := preflight.CheckInputFile(filepath.Join(dir, "missing.esp")); result.Passed {
		t.Fatal("expected failure for missing input")
	}
}

func TestCheckEncoding(t *testing.T) {
	if result := preflight.CheckEncoding("enc", "cp1251"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := preflight.CheckEncoding("enc", "klingon"); result.Passed {
		t.Fatal("expected failure for unknown encoding")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := preflight.RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	if results := preflight.RunAll(cfg); len(results) != 2 {
		t.Fatalf("expected 2 results without history, got %d", len(results))
	}

	if preflight.RunAll(nil) != nil {
		t.Fatal("nil config should produce no results")
	}
}
