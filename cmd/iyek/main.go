package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/conorfennell/iyek/internal/config"
	"github.com/conorfennell/iyek/internal/deck"
	"github.com/conorfennell/iyek/internal/progress"
	"github.com/conorfennell/iyek/internal/storage"
)

const usage = `Usage: iyek [flags] [command] [args]

Commands:
  (none)                 launch: greet and count this session
  onboard <name>         set your name and start learning
  learn [next|reset]     study words in order
  alphabet [group] [ch]  browse the alphabet; naming a letter marks it viewed
  quiz                   ten-question multiple-choice quiz
  levels                 quiz tracks and scores
  progress               words learned, letters viewed, quiz status
  name <new name>        change your name
  clear --yes            clear learning progress (keeps name and sessions)
  export <file|->        write a YAML snapshot of all progress
  import <file> [--force] restore a snapshot
  keys                   dump raw stored keys

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// 1. Define and parse command-line flags
	f := config.FlagSet("iyek")
	f.SetOutput(stderr)
	f.Usage = func() {
		fmt.Fprint(stderr, usage)
		f.PrintDefaults()
	}
	if err := f.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	// 2. Layer configuration and set up logging
	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(stderr, "iyek: %v\n", err)
		return 1
	}
	logger := cfg.Logger(stderr)
	slog.SetDefault(logger)

	// 3. Open the progress database
	db, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.DB, "error", err)
		return 1
	}
	defer db.Close()
	logger.Debug("Database opened", "path", cfg.DB)

	// 4. Load the vocabulary once
	words, err := deck.Load(deck.Options{Source: cfg.Deck.Source, CacheDir: cfg.Deck.Cache, Progress: stderr})
	if err != nil {
		logger.Error("Failed to load vocabulary", "source", cfg.Deck.Source, "error", err)
		return 1
	}

	yes, _ := f.GetBool("yes")
	force, _ := f.GetBool("force")
	a := &app{
		cfg:   cfg,
		kv:    db,
		store: progress.New(db, logger),
		words: words,
		log:   logger,
		in:    stdin,
		out:   stdout,
		yes:   yes,
		force: force,
	}

	if err := a.dispatch(f.Args()); err != nil {
		fmt.Fprintf(stderr, "iyek: %v\n", err)
		return 1
	}
	return 0
}
