package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"generate", "attach", "stop", "deploy", "preview", "sessions", "config", "version"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestConfigInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"config", "init", "--path", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Fatalf("expected written path in output, got %q", out.String())
	}
}

func TestGenerateRequiresServer(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{
		"generate", "an app",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
	})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "no server configured") {
		t.Fatalf("expected missing server error, got %v", err)
	}
}
