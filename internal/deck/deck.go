package deck

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/iyek/internal/domain"
	"github.com/conorfennell/iyek/internal/gitsource"
	"github.com/conorfennell/iyek/internal/parser"
	"github.com/conorfennell/iyek/internal/vocab"
)

// Options selects where the vocabulary comes from.
type Options struct {
	// Source is empty for the bundled vocabulary, otherwise a local
	// directory or a git repository URL.
	Source string
	// CacheDir holds clones of git sources.
	CacheDir string
	// Progress receives git output while cloning or pulling. May be nil.
	Progress io.Writer
}

// Load resolves the configured vocabulary. It is called once at startup.
func Load(opts Options) ([]domain.Word, error) {
	if opts.Source == "" {
		return vocab.Beginner(), nil
	}

	if info, err := os.Stat(opts.Source); err == nil && info.IsDir() {
		return LoadDir(opts.Source)
	}

	dir := opts.Source
	if gitsource.IsGitURL(opts.Source) {
		localPath, err := gitsource.LocalPath(opts.CacheDir, opts.Source)
		if err != nil {
			return nil, err
		}
		if err := gitsource.Sync(opts.Source, localPath, opts.Progress); err != nil {
			return nil, err
		}
		dir = localPath
	}
	return LoadDir(dir)
}

// LoadDir reads every .md file under dir in lexical path order. Entries keep
// their file order, so the deck order is the lesson order.
func LoadDir(dir string) ([]domain.Word, error) {
	var words []domain.Word
	var parseErrors []error
	files := 0

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		files++
		fileWords, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		words = append(words, fileWords...)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk deck %s: %w", dir, walkErr)
	}
	if len(parseErrors) > 0 {
		return nil, errors.Join(parseErrors...)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("deck %s has no words", dir)
	}
	if err := vocab.ValidateWords(words); err != nil {
		return nil, fmt.Errorf("invalid deck %s: %w", dir, err)
	}

	slog.Info("deck loaded", "path", dir, "files", files, "words", len(words))
	return words, nil
}
