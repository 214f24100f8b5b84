package combat_test

import "github.com/cory-johannsen/wasteland/internal/game/dice"

// seqSource replays fixed draws; Intn reduces the next int modulo n.
type seqSource struct {
	floats []float64
	ints   []int
}

func (s *seqSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *seqSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func newSeeded(seed uint64) dice.Source { return dice.NewSeededSource(seed) }
