package quiz

import (
	"math/rand"
	"time"
)

// Rand is the random source used for sampling. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

func newRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a uniformly shuffled copy of items (Fisher-Yates).
func Shuffle[T any](r Rand, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Sample draws up to limit items without replacement.
func Sample[T any](r Rand, items []T, limit int) []T {
	shuffled := Shuffle(r, items)
	if limit < 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit]
}
