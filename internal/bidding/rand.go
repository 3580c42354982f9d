package bidding

import (
	"math/rand/v2"
	"sync"
)

// RandSource picks uniform integers in [0, n)
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the runtime-seeded global generator
var DefaultRand RandSource = globalRand{}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a deterministic source that is safe for concurrent use
func NewSeededRand(seed uint64) RandSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
