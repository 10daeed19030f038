package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutAndRemoveCommands(t *testing.T) {
	root := filepath.Join(t.TempDir(), "content")

	out, _, err := runCLI(t, "--content-root", root, "put", "facility_name.txt", "Game Lab")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	path := filepath.Join(root, "facility_name.txt")
	if !strings.Contains(out, path) {
		t.Fatalf("expected output to name %s, got %q", path, out)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "Game Lab" {
		t.Fatalf("expected written file, got %q (%v)", data, err)
	}

	out, _, err = runCLI(t, "--content-root", root, "rm", "facility_name.txt", "text_daily")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "removed "+path) || !strings.Contains(out, filepath.Join(root, "text_daily")+" not present") {
		t.Fatalf("unexpected remove output %q", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
}

func TestPutReadsStdinAtomically(t *testing.T) {
	root := t.TempDir()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("[app_live]\nrender_window=800;480\n"))
	cmd.SetArgs([]string{"--env-file", "", "--content-root", root, "put", "--atomic", "config.ini"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "config.ini"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "[app_live]") {
		t.Fatalf("unexpected config content %q", data)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only config.ini, got %d entries", len(entries))
	}
}

func TestPutRejectsUnwatchedNames(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"notes.txt", "../facility_name.txt", filepath.Join("sub", "text_daily")} {
		if _, _, err := runCLI(t, "--content-root", root, "put", name, "x"); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected nothing written, got %d entries", len(entries))
	}
}
