// Package dice provides the randomness abstraction and roll results used by
// the Forge combat rules.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records every die of a single evaluation so callers can audit it.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // e.g. "2d6+1" or "d20"
	Dice       []int  // individual faces in roll order
	Modifier   int
}

// Total returns the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Count returns the number of dice rolled.
func (r RollResult) Count() int { return len(r.Dice) }

// String renders the result as "2d6+1 → [4 5] +1 = 10".
func (r RollResult) String() string {
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		faces[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", r.Expression, strings.Join(faces, " "), r.Modifier, r.Total())
}

// Source is the randomness provider behind every roll.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
