package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"serve": false, "analyze": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	orig := cfgPath
	cfgPath = filepath.Join(t.TempDir(), "absent.yaml")
	defer func() { cfgPath = orig }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Name != "fintel" {
		t.Fatalf("expected default name fintel, got %q", cfg.Name)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  transport: http\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	orig := cfgPath
	cfgPath = path
	defer func() { cfgPath = orig }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Server.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Server.Transport)
	}
}

func TestRunAnalyzeUnconfigured(t *testing.T) {
	logger = zap.NewNop()
	t.Setenv("TARGETARE_API_KEY", "")
	orig := cfgPath
	cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	defer func() { cfgPath = orig }()

	err := runAnalyze(&cobra.Command{}, []string{"12345678"})
	if err == nil || !strings.Contains(err.Error(), "registry API key not configured") {
		t.Fatalf("expected registry key error, got %v", err)
	}
}

func TestRunServeRejectsUnknownTransport(t *testing.T) {
	logger = zap.NewNop()
	t.Setenv("TARGETARE_API_KEY", "test-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  transport: smoke\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	orig := cfgPath
	cfgPath = path
	defer func() { cfgPath = orig }()

	err := runServe(serveCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid transport") {
		t.Fatalf("expected transport error, got %v", err)
	}
}
