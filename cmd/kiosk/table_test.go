package main

import (
	"strings"
	"testing"
)

func TestRenderTableKeepsHeaderCase(t *testing.T) {
	out := renderTable([]tableColumn{
		{title: "Watcher"},
		{title: "Total", align: alignRight},
	}, [][]string{{"content", "3"}, {"config"}})

	if !strings.Contains(out, "Watcher") || strings.Contains(out, "WATCHER") {
		t.Fatalf("expected mixed-case header\n%s", out)
	}
	if !strings.Contains(out, "config") {
		t.Fatalf("expected short row to render\n%s", out)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 6 {
		t.Fatalf("expected border, header, separator, two rows and border, got %d lines\n%s", len(lines), out)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
