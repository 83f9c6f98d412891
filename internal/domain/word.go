package domain

// Word is a single learnable vocabulary entry.
// IDs are stable across releases because they are persisted as progress keys.
type Word struct {
	ID              int    `json:"id" validate:"gt=0"`
	Native          string `json:"native" validate:"required"`
	Transliteration string `json:"transliteration" validate:"required"`
	Translation     string `json:"translation" validate:"required"`
}

// Letter is one glyph of the alphabet with its romanized name.
type Letter struct {
	Character string `json:"character" validate:"required"`
	Roman     string `json:"roman" validate:"required"`
}

// LetterGroup is a named section of the alphabet, e.g. Iyek Ipee.
type LetterGroup struct {
	Slug    string   `json:"slug" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Letters []Letter `json:"letters" validate:"required,min=1,dive"`
}

// Level is a named quiz track.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)
