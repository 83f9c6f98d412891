package vocab

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/iyek/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	loadOnce sync.Once
	words    []domain.Word
	alphabet []domain.LetterGroup
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// MinQuizSize is the smallest vocabulary that can produce three distinct options.
const MinQuizSize = 3

// Level describes a quiz track and the words it draws from.
type Level struct {
	Level       domain.Level
	Title       string
	Description string
	Words       []domain.Word
}

func load() {
	loadOnce.Do(func() {
		words = mustDecode[[]domain.Word]("data/words.json")
		if err := ValidateWords(words); err != nil {
			panic(fmt.Sprintf("iyek: bundled words: %v", err))
		}
		alphabet = mustDecode[[]domain.LetterGroup]("data/alphabet.json")
		for _, g := range alphabet {
			if err := validate.Struct(g); err != nil {
				panic(fmt.Sprintf("iyek: bundled alphabet group %q: %v", g.Slug, err))
			}
		}
	})
}

func mustDecode[T any](name string) T {
	var v T
	data, err := dataFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("iyek: load %s: %v", name, err))
	}
	if err := json.Unmarshal(data, &v); err != nil {
		panic(fmt.Sprintf("iyek: parse %s: %v", name, err))
	}
	return v
}

// Beginner returns a copy of the bundled beginner vocabulary in lesson order.
func Beginner() []domain.Word {
	load()
	out := make([]domain.Word, len(words))
	copy(out, words)
	return out
}

// Alphabet returns the bundled alphabet groups.
func Alphabet() []domain.LetterGroup {
	load()
	out := make([]domain.LetterGroup, len(alphabet))
	copy(out, alphabet)
	return out
}

// FindGroup looks up an alphabet group by slug.
func FindGroup(slug string) (domain.LetterGroup, bool) {
	for _, g := range Alphabet() {
		if g.Slug == slug {
			return g, true
		}
	}
	return domain.LetterGroup{}, false
}

// Levels lists the quiz tracks with beginner backed by the given words.
// Tracks without words are placeholders and are shown locked.
func Levels(beginner []domain.Word) []Level {
	return []Level{
		{Level: domain.Beginner, Title: "Beginner", Description: "Learn basic Meitei words and phrases", Words: beginner},
		{Level: domain.Intermediate, Title: "Intermediate", Description: "Expand your vocabulary with more complex words"},
		{Level: domain.Advanced, Title: "Advanced", Description: "Master Manipuri with advanced expressions"},
	}
}

// ValidateWords checks every entry's fields and that ids are unique.
func ValidateWords(ws []domain.Word) error {
	seen := make(map[int]bool, len(ws))
	for i, w := range ws {
		if err := validate.Struct(w); err != nil {
			return fmt.Errorf("entry %d (id %d): %w", i, w.ID, err)
		}
		if seen[w.ID] {
			return fmt.Errorf("entry %d: duplicate id %d", i, w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}
