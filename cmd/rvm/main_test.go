package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompileThenRunRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	blob := filepath.Join(dir, "prog.rvmc")

	writeSource(t, src, "mov ra, 2\nadd ra, ra\nhalt")

	if err := run([]string{"compile", "-file", src, "-out", blob}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := run([]string{"run", "-file", blob}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestInterpretRunsSourceDirectly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	writeSource(t, src, "mov ra, 1\nhalt")

	if err := run([]string{"interpret", "-file", src}); err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
}

func TestInterpretWithUnknownPluginFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	writeSource(t, src, "halt")

	err := run([]string{"interpret", "-file", src, "-plugin", "nonexistent"})
	if err == nil {
		t.Fatal("expected an error for an unknown plugin name")
	}
}

func TestInterpretWithLifePluginRuns(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.s")
	writeSource(t, src, "life ra\nhalt")

	if err := run([]string{"interpret", "-file", src, "-plugin", "life"}); err != nil {
		t.Fatalf("interpret with life plugin failed: %v", err)
	}
}

func TestRunMissingSubcommandFails(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatal("expected an error with no subcommand")
	}
}

func writeSource(t *testing.T, path, src string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
}
