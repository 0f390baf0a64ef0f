package convert

import "testing"

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input string
		dir   Direction
		want  string
	}{
		{`C:\data\plugin.esm`, ToText, `C:\data\plugin.json`},
		{`C:\data\plugin.esm`, ToBinary, `C:\data\plugin.esp`},
		{"/mods/plugin.esp", ToText, "/mods/plugin.json"},
		{"/mods/plugin.json", ToBinary, "/mods/plugin.esp"},
		{"/mods/PLUGIN.JSON", ToBinary, "/mods/PLUGIN.esp"},
		{"plugin", ToText, "plugin.json"},
		{"plugin.", ToText, "plugin.json"},
		{"archive.tar.esm", ToText, "archive.tar.json"},
		{".esp", ToText, ".esp.json"},
		{`C:\mods.v2\plugin`, ToBinary, `C:\mods.v2\plugin.esp`},
		{"/mods.d/plugin", ToText, "/mods.d/plugin.json"},
		{`mixed/dir\file.esm`, ToText, `mixed/dir\file.json`},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.dir); got != tt.want {
			t.Errorf("OutputPath(%q, %v) = %q, want %q", tt.input, tt.dir, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"json", ToText},
		{"TEXT", ToText},
		{" to_text ", ToText},
		{"esp", ToBinary},
		{"plugin", ToBinary},
		{"binary", ToBinary},
		{"to_binary", ToBinary},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := ParseDirection("yaml"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		path string
		want Direction
	}{
		{"plugin.json", ToBinary},
		{`C:\mods\Plugin.JSON`, ToBinary},
		{"plugin.esp", ToText},
		{"plugin.esm", ToText},
		{"plugin", ToText},
		{"/tmp/json/plugin.esp", ToText},
	}
	for _, tt := range tests {
		if got := DetectDirection(tt.path); got != tt.want {
			t.Errorf("DetectDirection(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDirectionLabels(t *testing.T) {
	if ToText.String() != "to_text" || ToBinary.String() != "to_binary" {
		t.Fatalf("unexpected labels %q %q", ToText, ToBinary)
	}
	if ToText.Extension() != "json" || ToBinary.Extension() != "esp" {
		t.Fatal("unexpected extensions")
	}
	if Direction(9).String() != "direction(9)" {
		t.Fatalf("unexpected label for unknown direction: %q", Direction(9))
	}
}
