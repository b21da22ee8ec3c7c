package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCommand(t *testing.T, run func(*cobra.Command, []string) error, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := run(cmd, args)
	return out.String(), err
}

func TestGroceryCmdArgs(t *testing.T) {
	out, err := runCommand(t, runGrocery, "", "2 onions", "chicken breast, salt")
	if err != nil {
		t.Fatalf("runGrocery: %v", err)
	}
	want := "Vegetables\n  - 2 onions\nMeat & Fish\n  - chicken breast\nSpices & Herbs\n  - salt\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestGroceryCmdStdin(t *testing.T) {
	out, err := runCommand(t, runGrocery, "mystery powder;apples\n")
	if err != nil {
		t.Fatalf("runGrocery: %v", err)
	}
	if !strings.HasPrefix(out, "Fruits\n  - apples\n") {
		t.Errorf("expected Fruits first, got %q", out)
	}
	if !strings.HasSuffix(out, "Other\n  - mystery powder\n") {
		t.Errorf("expected Other last, got %q", out)
	}
}

func TestGroceryCmdEmpty(t *testing.T) {
	if _, err := runCommand(t, runGrocery, " ,; \n"); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestMigrateCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("SHAREARECIPE_DB_PATH", dbPath)
	configPath = ""

	out, err := runCommand(t, runMigrate, "")
	if err != nil {
		t.Fatalf("runMigrate: %v", err)
	}
	if !strings.Contains(out, "schema version 2") {
		t.Errorf("unexpected output %q", out)
	}
}
