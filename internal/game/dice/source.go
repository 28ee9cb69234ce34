package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is the production
// default when no seed is configured.
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := crand(n)
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return v
}

func crand(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// seededSource is a deterministic PCG stream. The generator itself is not
// goroutine safe so access is serialized.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a reproducible Source: two sources built from the
// same seed yield the same sequence of values.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// SequenceSource replays scripted die faces. Each call to Intn(n) consumes the
// next face f and returns f-1 clamped to [0, n). Once the script is exhausted
// it wraps around to the beginning.
//
// Precondition: at least one face is supplied.
type SequenceSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequenceSource builds a SequenceSource from faces, e.g.
// NewSequenceSource(20, 3, 4) makes the next d20 a natural 20 followed by a 3
// and a 4 on the damage dice.
func NewSequenceSource(faces ...int) *SequenceSource {
	if len(faces) == 0 {
		panic("dice: NewSequenceSource requires at least one face")
	}
	return &SequenceSource{faces: append([]int(nil), faces...)}
}

func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	f := s.faces[s.next%len(s.faces)]
	s.next++
	s.mu.Unlock()
	v := f - 1
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Consumed reports how many faces have been drawn.
func (s *SequenceSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
