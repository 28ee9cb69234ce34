package combat

import (
	"cmp"
	"slices"

	"github.com/cory-johannsen/forge/internal/game/dice"
)

// Dice is the slice of the dice service the combat rules depend on.
type Dice interface {
	RollD20() int
	RollDamageDice(count, sides int) dice.RollResult
}

// RollInitiative rolls d20 + DexMod for every living combatant, stores the
// score in Initiative, and returns the living combatants ordered by score
// descending. Ties keep their input order.
//
// Postcondition: the result contains only living combatants and the input
// slice is not reordered.
func RollInitiative(combatants []*Combatant, d Dice) []*Combatant {
	order := Living(combatants)
	for _, c := range order {
		c.Initiative = d.RollD20() + c.DexMod
	}
	slices.SortStableFunc(order, func(a, b *Combatant) int {
		return cmp.Compare(b.Initiative, a.Initiative)
	})
	return order
}
