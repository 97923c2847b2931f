package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	got, err := outputPath(dir, "Acme/Labs")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "Acme_Labs_ip_strategy.md"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	file := filepath.Join(dir, "custom.md")
	got, err = outputPath(file, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if got != file {
		t.Errorf("expected %s, got %s", file, got)
	}

	if err := os.WriteFile(file, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = outputPath(file, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if got != file {
		t.Errorf("existing file should be overwritten in place, got %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		if _, err := newLogger(level); err != nil {
			t.Errorf("level %q: %v", level, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
