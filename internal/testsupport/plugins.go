package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tes3conv/internal/plugin"
)

// SampleGreeting is the Cyrillic display name carried by SamplePlugin.
const SampleGreeting = "Привет"

// SamplePlugin returns a small object set: a header with one master, an NPC
// whose name is SampleGreeting, and a book with multi-line text.
func SamplePlugin(t testing.TB) plugin.ObjectSet {
	t.Helper()

	codec := MustCodec(t)
	header, err := codec.NewHeader(plugin.HeaderInfo{
		Version:     1.3,
		Author:      "tes3conv",
		Description: "fixture",
		Masters:     []string{"Morrowind.esm"},
	})
	if err != nil {
		t.Fatalf("build header: %v", err)
	}
	return plugin.ObjectSet{
		header,
		{
			Tag: "NPC_",
			Fields: []plugin.Field{
				plugin.TextField("NAME", "guard_01"),
				plugin.TextField("FNAM", SampleGreeting),
				plugin.DataField("NPDT", []byte{1, 0, 2, 0, 0xff}),
			},
		},
		{
			Tag: "BOOK",
			Fields: []plugin.Field{
				plugin.TextField("NAME", "bk_notes"),
				plugin.TextField("TEXT", "Строка один\r\nLine two"),
			},
		},
	}
}

// MustCodec returns a windows-1251 plugin codec.
func MustCodec(t testing.TB) *plugin.Codec {
	t.Helper()

	codec, err := plugin.NewCodec(plugin.DefaultEncoding)
	if err != nil {
		t.Fatalf("plugin.NewCodec: %v", err)
	}
	return codec
}

// WritePlugin saves set as a binary plugin at path, creating parent
// directories.
func WritePlugin(t testing.TB, path string, set plugin.ObjectSet) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := MustCodec(t).Save(path, set); err != nil {
		t.Fatalf("save plugin %s: %v", path, err)
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the contents of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
