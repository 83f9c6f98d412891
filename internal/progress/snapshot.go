package progress

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"
)

const snapshotVersion = 1

// ErrVocabularyMismatch is returned by Restore when a snapshot was taken
// against a different vocabulary than the one currently loaded.
var ErrVocabularyMismatch = errors.New("snapshot was exported from a different vocabulary")

// Snapshot is a portable copy of every persisted key.
type Snapshot struct {
	Version       int             `yaml:"version"`
	InstallID     string          `yaml:"install_id"`
	Vocabulary    string          `yaml:"vocabulary"`
	ExportedAt    time.Time       `yaml:"exported_at"`
	UserName      string          `yaml:"user_name,omitempty"`
	WordsLearned  []int           `yaml:"words_learned"`
	LettersViewed []string        `yaml:"alphabet_viewed"`
	QuizCompleted map[string]bool `yaml:"quiz_completed"`
	QuizScores    map[string]int  `yaml:"quiz_scores"`
	SessionCount  int             `yaml:"session_count"`
	ReviewShown   bool            `yaml:"review_shown"`
	LessonCursor  int             `yaml:"current_word_index"`
}

// Snapshot captures the current state. vocabulary is the fingerprint of the
// active word list.
func (s *Store) Snapshot(vocabulary string) Snapshot {
	name, _ := s.UserName()
	return Snapshot{
		Version:       snapshotVersion,
		InstallID:     s.InstallID(),
		Vocabulary:    vocabulary,
		ExportedAt:    time.Now().UTC(),
		UserName:      name,
		WordsLearned:  s.WordsLearned(),
		LettersViewed: s.LettersViewed(),
		QuizCompleted: readMap[bool](s, KeyQuizCompleted),
		QuizScores:    readMap[int](s, KeyQuizScores),
		SessionCount:  s.SessionCount(),
		ReviewShown:   s.IsReviewPromptShown(),
		LessonCursor:  s.LessonCursor(),
	}
}

// Restore replaces learning progress with the snapshot's. size is the length
// of the active vocabulary; the lesson cursor is clamped to [0, size]. Scores
// for levels the snapshot does not mark completed are dropped. The session
// count only moves forward and the review latch is never unset. Unless force
// is set, a snapshot from another vocabulary is refused.
func (s *Store) Restore(snap Snapshot, vocabulary string, size int, force bool) error {
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if !force && snap.Vocabulary != vocabulary {
		return ErrVocabularyMismatch
	}

	completed := make(map[string]bool, len(snap.QuizCompleted))
	for level, done := range snap.QuizCompleted {
		if done {
			completed[level] = true
		}
	}
	scores := make(map[string]int, len(snap.QuizScores))
	for level, score := range snap.QuizScores {
		if completed[level] {
			scores[level] = score
		}
	}
	words := dedupe(snap.WordsLearned)
	letters := dedupe(snap.LettersViewed)

	s.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(words) > 0 {
		s.writeJSON(KeyWordsLearned, words)
	}
	if len(letters) > 0 {
		s.writeJSON(KeyAlphabetViewed, letters)
	}
	if len(completed) > 0 {
		s.writeJSON(KeyQuizCompleted, completed)
	}
	if len(scores) > 0 {
		s.writeJSON(KeyQuizScores, scores)
	}
	s.write(KeyLessonCursor, strconv.Itoa(min(max(snap.LessonCursor, 0), max(size, 0))))
	if snap.UserName != "" {
		s.write(KeyUserName, snap.UserName)
	}
	if snap.SessionCount > s.readInt(KeySessionCount) {
		s.write(KeySessionCount, strconv.Itoa(snap.SessionCount))
	}
	if snap.ReviewShown {
		s.write(KeyReviewShown, "true")
	}
	s.log.Info("progress restored", "from_install", snap.InstallID, "words", len(words), "letters", len(letters))
	return nil
}

// WriteSnapshot encodes snap as YAML.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot decodes a YAML snapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
