package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nonexistent")
	dst := filepath.Join(dir, "dst.bin")

	err := CopyFileVerified(src, dst)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("expected no destination file, got %v", statErr)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content = %q, want new", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %o, want 644", info.Mode().Perm())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	if err := WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLockOutputExcludesSecondHolder(t *testing.T) {
	lockDir := t.TempDir()
	output := filepath.Join(t.TempDir(), "plugin.json")

	first, err := LockOutput(context.Background(), lockDir, output)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if !strings.HasPrefix(first.Path(), lockDir) {
		t.Fatalf("lock file %q not under %q", first.Path(), lockDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := LockOutput(ctx, lockDir, output); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while lock held, got %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	second, err := LockOutput(context.Background(), lockDir, output)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	if second.Path() != first.Path() {
		t.Fatalf("same output should map to the same lock file: %q vs %q", second.Path(), first.Path())
	}
	_ = second.Unlock()
}

func TestLockOutputDistinctPaths(t *testing.T) {
	lockDir := t.TempDir()
	dir := t.TempDir()

	a, err := LockOutput(context.Background(), lockDir, filepath.Join(dir, "a.esp"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Unlock()
	b, err := LockOutput(context.Background(), lockDir, filepath.Join(dir, "b.esp"))
	if err != nil {
		t.Fatalf("distinct outputs should not contend: %v", err)
	}
	defer b.Unlock()
	if a.Path() == b.Path() {
		t.Fatal("distinct outputs share a lock file")
	}
}

func TestNilOutputLock(t *testing.T) {
	var l *OutputLock
	if err := l.Unlock(); err != nil {
		t.Fatalf("nil unlock: %v", err)
	}
	if l.Path() != "" {
		t.Fatal("nil lock should have empty path")
	}
}
