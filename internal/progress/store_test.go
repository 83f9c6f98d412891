package progress

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/conorfennell/iyek/internal/domain"
	"github.com/conorfennell/iyek/internal/storage"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore() (*Store, *storage.Memory) {
	kv := storage.NewMemory()
	return New(kv, quietLogger), kv
}

// brokenKV fails every read and/or write.
type brokenKV struct {
	failReads  bool
	failWrites bool
	inner      *storage.Memory
}

var errBroken = errors.New("disk unavailable")

func (b *brokenKV) Get(key string) (string, bool, error) {
	if b.failReads {
		return "", false, errBroken
	}
	return b.inner.Get(key)
}

func (b *brokenKV) Set(key, value string) error {
	if b.failWrites {
		return errBroken
	}
	return b.inner.Set(key, value)
}

func (b *brokenKV) Remove(keys ...string) error {
	if b.failWrites {
		return errBroken
	}
	return b.inner.Remove(keys...)
}

func TestFreshStoreDefaults(t *testing.T) {
	s, _ := newTestStore()

	if name, ok := s.UserName(); ok {
		t.Errorf("Expected no user name, but got '%s'", name)
	}
	if got := s.WordsLearned(); len(got) != 0 {
		t.Errorf("Expected no words learned, but got %v", got)
	}
	if got := s.LettersViewed(); len(got) != 0 {
		t.Errorf("Expected no letters viewed, but got %v", got)
	}
	if s.IsQuizCompleted(domain.Beginner) {
		t.Error("Expected beginner quiz to be incomplete")
	}
	if _, ok := s.QuizScore(domain.Beginner); ok {
		t.Error("Expected no beginner score")
	}
	if s.SessionCount() != 0 || s.LessonCursor() != 0 || s.IsReviewPromptShown() {
		t.Error("Expected zero session count, zero cursor and unset review latch")
	}
}

func TestAddWordLearnedIsIdempotent(t *testing.T) {
	s, _ := newTestStore()

	for i := 0; i < 3; i++ {
		s.AddWordLearned(1)
	}
	got := s.WordsLearned()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("Expected [1], but got %v", got)
	}

	s.AddWordLearned(5)
	s.AddWordLearned(3)
	s.AddWordLearned(5)
	got = s.WordsLearned()
	want := []int{1, 5, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, but got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, but got %v", want, got)
			break
		}
	}
}

func TestAddLetterViewedIsIdempotent(t *testing.T) {
	s, _ := newTestStore()
	s.AddLetterViewed("ꯀ")
	s.AddLetterViewed("ꯀ")
	s.AddLetterViewed("ꯁ")

	got := s.LettersViewed()
	if len(got) != 2 || got[0] != "ꯀ" || got[1] != "ꯁ" {
		t.Errorf("Expected [ꯀ ꯁ], but got %v", got)
	}
}

func TestIncrementSessionCount(t *testing.T) {
	s, kv := newTestStore()

	if n := s.IncrementSessionCount(); n != 1 {
		t.Errorf("Expected first increment to return 1, but got %d", n)
	}
	if n := s.IncrementSessionCount(); n != 2 {
		t.Errorf("Expected second increment to return 2, but got %d", n)
	}
	if v, _, _ := kv.Get(KeySessionCount); v != "2" {
		t.Errorf("Expected session_count to be stored as \"2\", but got %q", v)
	}
}

func TestQuizResultOverwrites(t *testing.T) {
	s, _ := newTestStore()

	s.RecordQuizResult(domain.Beginner, 7)
	if !s.IsQuizCompleted(domain.Beginner) {
		t.Fatal("Expected beginner quiz to be completed")
	}
	if score, ok := s.QuizScore(domain.Beginner); !ok || score != 7 {
		t.Errorf("Expected score 7, but got %d (ok=%v)", score, ok)
	}

	s.RecordQuizResult(domain.Beginner, 9)
	if score, _ := s.QuizScore(domain.Beginner); score != 9 {
		t.Errorf("Expected retake score 9, but got %d", score)
	}

	s.RecordQuizResult(domain.Beginner, 2)
	if score, _ := s.QuizScore(domain.Beginner); score != 2 {
		t.Errorf("Expected lower retake score 2 to overwrite, but got %d", score)
	}

	if s.IsQuizCompleted(domain.Intermediate) {
		t.Error("Expected intermediate quiz to stay incomplete")
	}
}

func TestCompletionLatchSurvivesOtherOperations(t *testing.T) {
	s, _ := newTestStore()
	s.RecordQuizResult(domain.Beginner, 4)

	s.AddWordLearned(2)
	s.AddLetterViewed("ꯃ")
	s.SetUserName("Chaoba")
	s.IncrementSessionCount()
	s.SetLessonCursor(3)
	s.MarkReviewPromptShown()

	if !s.IsQuizCompleted(domain.Beginner) {
		t.Error("Expected beginner completion to survive non-clearing operations")
	}
}

func TestClearProgress(t *testing.T) {
	s, _ := newTestStore()
	s.SetUserName("Tomba")
	s.IncrementSessionCount()
	s.IncrementSessionCount()
	s.MarkReviewPromptShown()
	s.AddWordLearned(1)
	s.AddLetterViewed("ꯀ")
	s.RecordQuizResult(domain.Beginner, 7)
	s.RecordQuizResult(domain.Beginner, 9)
	s.SetLessonCursor(4)

	s.Clear()

	if got := s.WordsLearned(); len(got) != 0 {
		t.Errorf("Expected words learned to be empty, but got %v", got)
	}
	if got := s.LettersViewed(); len(got) != 0 {
		t.Errorf("Expected letters viewed to be empty, but got %v", got)
	}
	if s.IsQuizCompleted(domain.Beginner) {
		t.Error("Expected beginner completion to be reset")
	}
	if _, ok := s.QuizScore(domain.Beginner); ok {
		t.Error("Expected beginner score to be absent")
	}
	if s.LessonCursor() != 0 {
		t.Errorf("Expected cursor 0, but got %d", s.LessonCursor())
	}
	if name, _ := s.UserName(); name != "Tomba" {
		t.Errorf("Expected user name to be kept, but got '%s'", name)
	}
	if s.SessionCount() != 2 {
		t.Errorf("Expected session count 2 to be kept, but got %d", s.SessionCount())
	}
	if !s.IsReviewPromptShown() {
		t.Error("Expected review latch to be kept")
	}
}

func TestAggregate(t *testing.T) {
	s, _ := newTestStore()
	s.AddWordLearned(1)
	s.AddWordLearned(2)
	s.AddLetterViewed("ꯀ")
	s.RecordQuizResult(domain.Beginner, 5)

	got := s.Aggregate()
	want := domain.Progress{WordsLearned: 2, LettersViewed: 1, QuizCompleted: true}
	if got != want {
		t.Errorf("Expected %+v, but got %+v", want, got)
	}
}

func TestLessonCursor(t *testing.T) {
	s, _ := newTestStore()
	s.SetLessonCursor(7)
	if s.LessonCursor() != 7 {
		t.Errorf("Expected cursor 7, but got %d", s.LessonCursor())
	}
	s.SetLessonCursor(-3)
	if s.LessonCursor() != 0 {
		t.Errorf("Expected negative cursor to be stored as 0, but got %d", s.LessonCursor())
	}
}

func TestCorruptValuesReadAsDefaults(t *testing.T) {
	s, kv := newTestStore()
	kv.Set(KeyWordsLearned, "not json")
	kv.Set(KeyAlphabetViewed, `{"a":1}`)
	kv.Set(KeyQuizCompleted, "[true]")
	kv.Set(KeyQuizScores, "null")
	kv.Set(KeySessionCount, "many")
	kv.Set(KeyLessonCursor, "-4")
	kv.Set(KeyReviewShown, "yes")

	if len(s.WordsLearned()) != 0 || len(s.LettersViewed()) != 0 {
		t.Error("Expected corrupt lists to read as empty")
	}
	if s.IsQuizCompleted(domain.Beginner) {
		t.Error("Expected corrupt completion map to read as incomplete")
	}
	if _, ok := s.QuizScore(domain.Beginner); ok {
		t.Error("Expected null score map to read as absent")
	}
	if s.SessionCount() != 0 || s.LessonCursor() != 0 {
		t.Error("Expected corrupt integers to read as 0")
	}
	if s.IsReviewPromptShown() {
		t.Error("Expected only \"true\" to set the review latch")
	}

	// Accumulation recovers from a corrupt list.
	s.AddWordLearned(3)
	if got := s.WordsLearned(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Expected [3], but got %v", got)
	}

	kv.Set(KeyWordsLearned, "[2,2,4]")
	if got := s.WordsLearned(); len(got) != 2 {
		t.Errorf("Expected stored duplicates to be dropped on read, but got %v", got)
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	t.Run("write failures", func(t *testing.T) {
		s := New(&brokenKV{failWrites: true, inner: storage.NewMemory()}, quietLogger)

		s.SetUserName("Tomba")
		s.AddWordLearned(1)
		s.AddLetterViewed("ꯀ")
		s.RecordQuizResult(domain.Beginner, 3)
		s.MarkReviewPromptShown()
		s.SetLessonCursor(2)
		s.Clear()

		if n := s.IncrementSessionCount(); n != 1 {
			t.Errorf("Expected increment to report 1 even when the write fails, but got %d", n)
		}
		if _, ok := s.UserName(); ok {
			t.Error("Expected failed name write to be lost")
		}
		if len(s.WordsLearned()) != 0 {
			t.Error("Expected failed word write to be lost")
		}
	})

	t.Run("read failures", func(t *testing.T) {
		inner := storage.NewMemory()
		inner.Set(KeySessionCount, "4")
		s := New(&brokenKV{failReads: true, inner: inner}, quietLogger)

		if s.SessionCount() != 0 {
			t.Errorf("Expected unreadable session count to be 0, but got %d", s.SessionCount())
		}
		if got := s.Aggregate(); got != (domain.Progress{}) {
			t.Errorf("Expected empty aggregate, but got %+v", got)
		}
	})
}

func TestConcurrentAccumulation(t *testing.T) {
	s, _ := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.AddWordLearned(id%10 + 1)
			s.IncrementSessionCount()
		}(i)
	}
	wg.Wait()

	if got := s.WordsLearned(); len(got) != 10 {
		t.Errorf("Expected 10 distinct words, but got %d: %v", len(got), got)
	}
	if s.SessionCount() != 20 {
		t.Errorf("Expected 20 sessions, but got %d", s.SessionCount())
	}
}

func TestInstallID(t *testing.T) {
	s, kv := newTestStore()
	id := s.InstallID()
	if id == "" {
		t.Fatal("Expected a non-empty install id")
	}
	if again := s.InstallID(); again != id {
		t.Errorf("Expected install id to be stable, got '%s' then '%s'", id, again)
	}

	kv.Set(KeyInstallID, "garbage")
	if replaced := s.InstallID(); replaced == "garbage" || replaced == "" {
		t.Errorf("Expected a corrupt install id to be replaced, but got '%s'", replaced)
	}
}
