package progress

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/conorfennell/iyek/internal/domain"
	"github.com/conorfennell/iyek/internal/storage"
)

// Persisted keys. These names are the on-disk contract and must not change.
const (
	KeyUserName       = "user_name"
	KeyWordsLearned   = "words_learned"
	KeyAlphabetViewed = "alphabet_viewed"
	KeyQuizCompleted  = "quiz_completed"
	KeyQuizScores     = "quiz_scores"
	KeySessionCount   = "session_count"
	KeyReviewShown    = "review_shown"
	KeyLessonCursor   = "current_word_index"
	KeyInstallID      = "install_id"
)

// clearedKeys are removed by Clear. Name, session count, review latch and
// install id survive.
var clearedKeys = []string{
	KeyWordsLearned,
	KeyAlphabetViewed,
	KeyQuizCompleted,
	KeyQuizScores,
	KeyLessonCursor,
}

// Store is the durable record of a learner's progress.
//
// No method returns an error. Reads of missing or corrupt values yield the
// type's zero value; failed writes are logged and dropped. Read-modify-write
// operations are serialized by a mutex so concurrent callers cannot lose
// updates or store duplicate ids.
type Store struct {
	kv  storage.KV
	log *slog.Logger
	mu  sync.Mutex
}

// New creates a Store on top of kv. A nil logger uses slog.Default().
func New(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, log: logger.With("component", "progress")}
}

// UserName returns the stored name, if onboarding has happened.
func (s *Store) UserName() (string, bool) {
	v, ok := s.read(KeyUserName)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetUserName overwrites the stored name.
func (s *Store) SetUserName(name string) {
	s.write(KeyUserName, name)
}

// WordsLearned returns the ids of every word seen in lesson mode, in the
// order they were first recorded.
func (s *Store) WordsLearned() []int {
	return readList[int](s, KeyWordsLearned)
}

// AddWordLearned records id. Recording an id twice is a no-op.
func (s *Store) AddWordLearned(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addToList(s, KeyWordsLearned, id)
}

// LettersViewed returns every alphabet glyph the learner has opened.
func (s *Store) LettersViewed() []string {
	return readList[string](s, KeyAlphabetViewed)
}

// AddLetterViewed records character. Recording it twice is a no-op.
func (s *Store) AddLetterViewed(character string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addToList(s, KeyAlphabetViewed, character)
}

// IsQuizCompleted reports whether a quiz for level has ever been finished.
func (s *Store) IsQuizCompleted(level domain.Level) bool {
	return readMap[bool](s, KeyQuizCompleted)[string(level)]
}

// QuizScore returns the most recent score for level. ok is false until the
// level has been completed, even if a stray score is stored.
func (s *Store) QuizScore(level domain.Level) (int, bool) {
	if !s.IsQuizCompleted(level) {
		return 0, false
	}
	score, ok := readMap[int](s, KeyQuizScores)[string(level)]
	return score, ok
}

// RecordQuizResult marks level completed and overwrites its score.
// The latest score wins, even when lower than an earlier one.
func (s *Store) RecordQuizResult(level domain.Level, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := readMap[bool](s, KeyQuizCompleted)
	completed[string(level)] = true
	s.writeJSON(KeyQuizCompleted, completed)

	scores := readMap[int](s, KeyQuizScores)
	scores[string(level)] = score
	s.writeJSON(KeyQuizScores, scores)

	s.log.Debug("quiz result recorded", "level", level, "score", score)
}

// SessionCount returns how many launches have been counted.
func (s *Store) SessionCount() int {
	return s.readInt(KeySessionCount)
}

// IncrementSessionCount adds one launch and returns the new total. Call it at
// most once per launch, after onboarding.
func (s *Store) IncrementSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.readInt(KeySessionCount) + 1
	s.write(KeySessionCount, strconv.Itoa(n))
	return n
}

// IsReviewPromptShown reports whether the rating prompt latch is set.
func (s *Store) IsReviewPromptShown() bool {
	v, _ := s.read(KeyReviewShown)
	return v == "true"
}

// MarkReviewPromptShown sets the rating prompt latch. There is no way to unset it.
func (s *Store) MarkReviewPromptShown() {
	s.write(KeyReviewShown, "true")
}

// LessonCursor returns the index of the next lesson word. Negative or corrupt
// values read as 0.
func (s *Store) LessonCursor() int {
	return s.readInt(KeyLessonCursor)
}

// SetLessonCursor persists the lesson position. Negative values are stored as 0.
func (s *Store) SetLessonCursor(index int) {
	if index < 0 {
		index = 0
	}
	s.write(KeyLessonCursor, strconv.Itoa(index))
}

// Aggregate combines the learned/viewed counts with beginner completion.
func (s *Store) Aggregate() domain.Progress {
	return domain.Progress{
		WordsLearned:  len(s.WordsLearned()),
		LettersViewed: len(s.LettersViewed()),
		QuizCompleted: s.IsQuizCompleted(domain.Beginner),
	}
}

// Clear resets learned words, viewed letters, quiz results and the lesson
// cursor. Name, session count and the review latch are kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(clearedKeys...); err != nil {
		s.log.Error("Failed to clear progress", "keys", strings.Join(clearedKeys, ","), "error", err)
		return
	}
	s.log.Info("progress cleared")
}

// InstallID returns a random identifier for this installation, creating and
// persisting it on first use.
func (s *Store) InstallID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.read(KeyInstallID); ok {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	s.write(KeyInstallID, id)
	return id
}

func (s *Store) read(key string) (string, bool) {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn("Failed to read key, using default", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *Store) readInt(key string) int {
	v, ok := s.read(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		s.log.Warn("Corrupt integer value, using 0", "key", key, "value", v)
		return 0
	}
	return n
}

func (s *Store) write(key, value string) {
	if err := s.kv.Set(key, value); err != nil {
		s.log.Error("Failed to save key", "key", key, "error", err)
	}
}

func (s *Store) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("Failed to encode value", "key", key, "error", err)
		return
	}
	s.write(key, string(data))
}

// readList decodes a JSON list, dropping duplicates while keeping first-seen order.
func readList[T comparable](s *Store, key string) []T {
	v, ok := s.read(key)
	if !ok {
		return []T{}
	}
	var raw []T
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		s.log.Warn("Corrupt list value, using empty", "key", key, "error", err)
		return []T{}
	}
	return dedupe(raw)
}

func dedupe[T comparable](items []T) []T {
	out := make([]T, 0, len(items))
	seen := make(map[T]bool, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func addToList[T comparable](s *Store, key string, item T) {
	list := readList[T](s, key)
	for _, existing := range list {
		if existing == item {
			return
		}
	}
	s.writeJSON(key, append(list, item))
}

func readMap[V any](s *Store, key string) map[string]V {
	out := make(map[string]V)
	v, ok := s.read(key)
	if !ok {
		return out
	}
	if err := json.Unmarshal([]byte(v), &out); err != nil || out == nil {
		s.log.Warn("Corrupt map value, using empty", "key", key, "error", err)
		return make(map[string]V)
	}
	return out
}
