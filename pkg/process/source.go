package process

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Source supplies the randomness used to build processes.
// Implementations must be safe for concurrent use.
type Source interface {
	Uint64() uint64
}

type globalSource struct{}

func (globalSource) Uint64() uint64 { return rand.Uint64() }

// DefaultSource returns the process-wide random source.
func DefaultSource() Source {
	return globalSource{}
}

// lockedSource serialises access to a seeded generator.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic source. The same seed always yields
// the same sequence of processes.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}

func fill(src Source, dst []byte) {
	var word [8]byte
	for len(dst) > 0 {
		binary.LittleEndian.PutUint64(word[:], src.Uint64())
		n := copy(dst, word[:])
		dst = dst[n:]
	}
}
