package lesson

import "github.com/conorfennell/iyek/internal/domain"

// Tracker is the part of the progress store sequential study needs.
type Tracker interface {
	LessonCursor() int
	SetLessonCursor(index int)
	AddWordLearned(id int)
}

// Lesson walks the vocabulary in order, persisting the cursor after every step.
type Lesson struct {
	words   []domain.Word
	tracker Tracker
}

// New creates a Lesson over words.
func New(words []domain.Word, tracker Tracker) *Lesson {
	return &Lesson{words: words, tracker: tracker}
}

// Len is the number of words in the lesson sequence.
func (l *Lesson) Len() int {
	return len(l.words)
}

// Position returns the stored cursor clamped to [0, Len()].
// Len() means every word has been studied.
func (l *Lesson) Position() int {
	pos := l.tracker.LessonCursor()
	if pos < 0 {
		return 0
	}
	if pos > len(l.words) {
		return len(l.words)
	}
	return pos
}

// Done reports whether every word has been studied.
func (l *Lesson) Done() bool {
	return l.Position() >= len(l.words)
}

// Current returns the word at the cursor.
func (l *Lesson) Current() (domain.Word, bool) {
	pos := l.Position()
	if pos >= len(l.words) {
		return domain.Word{}, false
	}
	return l.words[pos], true
}

// Next marks the current word as learned and moves the cursor forward. It
// returns the new current word, or false when the sequence is finished.
func (l *Lesson) Next() (domain.Word, bool) {
	cur, ok := l.Current()
	if !ok {
		return domain.Word{}, false
	}
	l.tracker.AddWordLearned(cur.ID)
	l.tracker.SetLessonCursor(l.Position() + 1)
	return l.Current()
}

// Reset moves the cursor back to the first word. Learned words are kept.
func (l *Lesson) Reset() {
	l.tracker.SetLessonCursor(0)
}
