package review

// DefaultMinSessions is the number of launches before the rating prompt may appear.
const DefaultMinSessions = 5

// State is the part of the progress store the policy reads.
type State interface {
	IsReviewPromptShown() bool
	SessionCount() int
}

// Latch is the part of the progress store the policy writes.
type Latch interface {
	MarkReviewPromptShown()
}

// Policy decides when to ask the learner to rate the app.
type Policy struct {
	MinSessions int
}

// ShouldPrompt is evaluated once per completed quiz. It is true only while the
// latch is unset and enough sessions have been counted.
func (p Policy) ShouldPrompt(st State) bool {
	threshold := p.MinSessions
	if threshold <= 0 {
		threshold = DefaultMinSessions
	}
	return !st.IsReviewPromptShown() && st.SessionCount() >= threshold
}

// Resolve applies the learner's answer. Accepting sets the latch for good;
// deferring leaves it so a later completion may ask again.
func Resolve(l Latch, accepted bool) {
	if accepted {
		l.MarkReviewPromptShown()
	}
}
