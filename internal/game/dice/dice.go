// Package dice provides the randomness abstraction used by every combat draw:
// hit location, pellet spread, affliction procs, NPC policy, loot bands, flee
// checks, and speed tiebreaks.
package dice

// Source is the randomness provider for combat draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniform random value in [0.0, 1.0).
	Float64() float64
}

// Chance reports whether a uniform draw from src falls below p.
//
// Postcondition: Always false for p <= 0 and always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Pick returns a uniformly random index into a collection of length n, or -1
// when n is zero.
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.Intn(n)
}
