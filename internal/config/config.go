package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix         = "IYEK_"
	defaultConfigFile = "iyek.yaml"
)

// Config holds application configuration.
type Config struct {
	DB     string       `koanf:"db" validate:"required"`
	Deck   DeckConfig   `koanf:"deck"`
	Quiz   QuizConfig   `koanf:"quiz"`
	Review ReviewConfig `koanf:"review"`
	Log    LogConfig    `koanf:"log"`
}

type DeckConfig struct {
	Source string `koanf:"source"`
	Cache  string `koanf:"cache" validate:"required"`
}

type QuizConfig struct {
	Length int `koanf:"length" validate:"min=1,max=50"`
}

type ReviewConfig struct {
	Sessions int `koanf:"sessions" validate:"min=1"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// FlagSet defines the command-line flags. Flag defaults are the config defaults.
func FlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", defaultConfigFile, "Path to a YAML config file")
	f.String("db", "iyek.db", "Path to the SQLite progress database")
	f.String("deck-source", "", "Vocabulary deck: empty for bundled words, a directory, or a git URL")
	f.String("deck-cache", "decks", "Directory for cloned deck repositories")
	f.Int("quiz-length", 10, "Questions per quiz")
	f.Int("review-sessions", 5, "Launches before the rating prompt may appear")
	f.String("log-level", "warn", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text or json")
	f.Bool("yes", false, "Confirm destructive commands")
	f.Bool("force", false, "Import a snapshot taken against another vocabulary")
	return f
}

// nonConfigFlags are command switches, not configuration keys.
var nonConfigFlags = map[string]bool{"config": true, "yes": true, "force": true}

// Load layers flag defaults, the YAML file, IYEK_* environment variables and
// explicitly set flags, in that order of precedence, then validates the result.
// f must already be parsed.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, _ := f.GetString("config")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) || f.Changed("config") {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
		if nonConfigFlags[fl.Name] {
			return "", nil
		}
		return strings.ReplaceAll(fl.Name, "-", "."), posflag.FlagVal(f, fl)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Logger builds the structured logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
