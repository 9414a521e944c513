package frame

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Random is the randomness source used by the rotation selector.
type Random interface {
	// IntN returns a uniformly distributed integer in [0, n). n is always > 0.
	IntN(n int) int
}

// MathRandom draws from the process-wide math/rand/v2 source.
type MathRandom struct{}

func (MathRandom) IntN(n int) int { return rand.IntN(n) }
