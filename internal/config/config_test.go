package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	f := FlagSet("iyek")
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	return Load(f)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB != "iyek.db" || cfg.Deck.Cache != "decks" || cfg.Deck.Source != "" {
		t.Errorf("Unexpected storage defaults: %+v", cfg)
	}
	if cfg.Quiz.Length != 10 || cfg.Review.Sessions != 5 {
		t.Errorf("Expected quiz length 10 and review sessions 5, got %d and %d", cfg.Quiz.Length, cfg.Review.Sessions)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("Unexpected log defaults: %+v", cfg.Log)
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iyek.yaml")
	yamlConfig := "db: from-file.db\nquiz:\n  length: 7\nreview:\n  sessions: 3\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(yamlConfig), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("IYEK_QUIZ_LENGTH", "12")
	t.Setenv("IYEK_DECK_SOURCE", "/srv/deck")

	cfg, err := load(t, "--config", path, "--review-sessions", "8")
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}

	if cfg.DB != "from-file.db" {
		t.Errorf("Expected db from file, but got '%s'", cfg.DB)
	}
	if cfg.Quiz.Length != 12 {
		t.Errorf("Expected env to override file quiz length, but got %d", cfg.Quiz.Length)
	}
	if cfg.Deck.Source != "/srv/deck" {
		t.Errorf("Expected deck source from env, but got '%s'", cfg.Deck.Source)
	}
	if cfg.Review.Sessions != 8 {
		t.Errorf("Expected flag to override file review sessions, but got %d", cfg.Review.Sessions)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "warn" {
		t.Errorf("Expected json format from file and default level, got %+v", cfg.Log)
	}
}

func TestValidation(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "quiz too long", args: []string{"--quiz-length", "51"}},
		{name: "quiz empty", args: []string{"--quiz-length", "0"}},
		{name: "review sessions", args: []string{"--review-sessions", "0"}},
		{name: "log level", args: []string{"--log-level", "loud"}},
		{name: "log format", args: []string{"--log-format", "xml"}},
		{name: "empty db", args: []string{"--db", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(t, tc.args...); err == nil {
				t.Error("Expected a validation error, but got nil")
			}
		})
	}
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Expected an error for an explicitly named missing config file")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "info", Format: "json"}}
	logger := cfg.Logger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug messages to be filtered at info level")
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("Expected JSON output, but got %s", out)
	}
}
