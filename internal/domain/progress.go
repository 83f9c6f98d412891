package domain

// Progress is the aggregate shown on the levels and settings views.
type Progress struct {
	WordsLearned  int
	LettersViewed int
	QuizCompleted bool
}

// LevelStatus describes one quiz track as presented to the learner.
type LevelStatus struct {
	Level       Level
	Title       string
	Description string
	Locked      bool
	Completed   bool
	Score       *int // nil until the level has been completed
}
