package quiz

import (
	"errors"

	"github.com/conorfennell/iyek/internal/domain"
)

const (
	// DefaultLength is the number of questions in a session when the
	// vocabulary is large enough.
	DefaultLength = 10
	// OptionCount is the number of choices shown per question.
	OptionCount = 3
)

var (
	ErrVocabularyTooSmall = errors.New("quiz: vocabulary needs at least 3 distinct translations")
	ErrAlreadyAnswered    = errors.New("quiz: current question already answered")
	ErrNotAnswered        = errors.New("quiz: current question not answered yet")
	ErrSessionComplete    = errors.New("quiz: session is complete")
	ErrUnknownOption      = errors.New("quiz: answer is not one of the options")
)

// Recorder persists the result of a finished session.
type Recorder interface {
	RecordQuizResult(level domain.Level, score int)
}

// Question is the prompt shown to the learner.
type Question struct {
	Native          string
	Transliteration string
	Options         []string
}

// Result is the outcome of a session.
type Result struct {
	Level domain.Level
	Score int
	Total int
}

// Message is the encouragement shown under the final score. Buckets are
// fractions of Total (80% and 50%), so they scale with the quiz length.
func (r Result) Message() string {
	switch {
	case r.Total > 0 && r.Score*10 >= r.Total*8:
		return "Excellent work!"
	case r.Total > 0 && r.Score*2 >= r.Total:
		return "Good job! Keep practicing!"
	default:
		return "Keep learning, you'll improve!"
	}
}

// Session is one multiple-choice quiz attempt. It is not safe for
// concurrent use; start a new Session for every attempt.
type Session struct {
	vocab     []domain.Word
	questions []domain.Word
	options   []string
	index     int
	score     int
	selected  string
	answered  bool
	complete  bool

	length   int
	level    domain.Level
	rnd      Rand
	recorder Recorder
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source. Tests use it for deterministic order.
func WithRand(r Rand) Option {
	return func(s *Session) { s.rnd = r }
}

// WithLength overrides DefaultLength. Non-positive values are ignored.
func WithLength(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.length = n
		}
	}
}

// WithLevel sets the level the result is recorded under.
func WithLevel(level domain.Level) Option {
	return func(s *Session) { s.level = level }
}

// WithRecorder sets where the final score is written on completion.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// New starts a session over vocab. The question set is min(length, len(vocab))
// words drawn without replacement.
func New(vocab []domain.Word, opts ...Option) (*Session, error) {
	s := &Session{
		length: DefaultLength,
		level:  domain.Beginner,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = newRand()
	}
	if distinctTranslations(vocab) < OptionCount {
		return nil, ErrVocabularyTooSmall
	}

	s.vocab = make([]domain.Word, len(vocab))
	copy(s.vocab, vocab)
	s.questions = Sample(s.rnd, s.vocab, min(s.length, len(s.vocab)))
	s.options = s.generateOptions(s.questions[0])
	return s, nil
}

func distinctTranslations(vocab []domain.Word) int {
	seen := make(map[string]bool, len(vocab))
	for _, w := range vocab {
		seen[w.Translation] = true
	}
	return len(seen)
}

// generateOptions returns the correct translation and two distractors from
// other words, in random order. Distractor texts never repeat each other or
// the correct answer.
func (s *Session) generateOptions(correct domain.Word) []string {
	var others []string
	seen := map[string]bool{correct.Translation: true}
	for _, w := range s.vocab {
		if w.ID == correct.ID || seen[w.Translation] {
			continue
		}
		seen[w.Translation] = true
		others = append(others, w.Translation)
	}

	options := append(Sample(s.rnd, others, OptionCount-1), correct.Translation)
	return Shuffle(s.rnd, options)
}

// Len is the number of questions in the session.
func (s *Session) Len() int {
	return len(s.questions)
}

// Index is the zero-based position of the active question.
func (s *Session) Index() int {
	return s.index
}

// Score is the number of correct answers so far.
func (s *Session) Score() int {
	return s.score
}

// Words returns the question set in order.
func (s *Session) Words() []domain.Word {
	out := make([]domain.Word, len(s.questions))
	copy(out, s.questions)
	return out
}

// IsComplete reports whether every question has been answered and advanced past.
func (s *Session) IsComplete() bool {
	return s.complete
}

// Current returns the active question. ok is false once the session is complete.
func (s *Session) Current() (q Question, ok bool) {
	if s.complete {
		return Question{}, false
	}
	w := s.questions[s.index]
	opts := make([]string, len(s.options))
	copy(opts, s.options)
	return Question{Native: w.Native, Transliteration: w.Transliteration, Options: opts}, true
}

// CorrectAnswer returns the translation expected for the active question.
func (s *Session) CorrectAnswer() string {
	if s.complete {
		return ""
	}
	return s.questions[s.index].Translation
}

// Selected returns the option chosen for the active question, if any.
func (s *Session) Selected() (string, bool) {
	return s.selected, s.answered
}

// Answer records option as the answer to the active question and reports
// whether it was correct. Only the first answer per question counts.
func (s *Session) Answer(option string) (bool, error) {
	if s.complete {
		return false, ErrSessionComplete
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	known := false
	for _, o := range s.options {
		if o == option {
			known = true
			break
		}
	}
	if !known {
		return false, ErrUnknownOption
	}

	s.selected = option
	s.answered = true
	correct := option == s.questions[s.index].Translation
	if correct {
		s.score++
	}
	return correct, nil
}

// Advance moves to the next question once the active one is answered. After
// the last question the session completes, the result is handed to the
// recorder exactly once, and Advance returns true.
func (s *Session) Advance() (bool, error) {
	if s.complete {
		return false, ErrSessionComplete
	}
	if !s.answered {
		return false, ErrNotAnswered
	}

	if s.index+1 == len(s.questions) {
		s.complete = true
		s.selected, s.answered = "", false
		if s.recorder != nil {
			s.recorder.RecordQuizResult(s.level, s.score)
		}
		return true, nil
	}

	s.index++
	s.selected, s.answered = "", false
	s.options = s.generateOptions(s.questions[s.index])
	return false, nil
}

// Result returns the level, score and question count.
func (s *Session) Result() Result {
	return Result{Level: s.level, Score: s.score, Total: len(s.questions)}
}
