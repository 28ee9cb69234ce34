package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
)

func TestRollInitiative_OrdersDescending(t *testing.T) {
	a, b, c := hero("a"), hero("b"), goblin("c")
	c.DexMod = 3
	order := combat.RollInitiative([]*combat.Combatant{a, b, c}, scripted(5, 12, 10))

	require.Len(t, order, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{order[0].ID, order[1].ID, order[2].ID})
	assert.Equal(t, 13, c.Initiative)
	assert.Equal(t, 12, b.Initiative)
	assert.Equal(t, 5, a.Initiative)
}

func TestRollInitiative_TiesKeepInputOrder(t *testing.T) {
	a, b, c := hero("a"), hero("b"), hero("c")
	order := combat.RollInitiative([]*combat.Combatant{a, b, c}, scripted(9))
	assert.Equal(t, []*combat.Combatant{a, b, c}, order)

	order = combat.RollInitiative([]*combat.Combatant{c, a, b}, scripted(9))
	assert.Equal(t, []*combat.Combatant{c, a, b}, order)
}

func TestRollInitiative_SkipsTheDead(t *testing.T) {
	a, b := hero("a"), goblin("b")
	b.CurrentHP = 0
	order := combat.RollInitiative([]*combat.Combatant{a, b}, scripted(3))
	assert.Equal(t, []*combat.Combatant{a}, order)
}

func TestRollInitiative_Property_SortedAndStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		cs := make([]*combat.Combatant, n)
		index := map[*combat.Combatant]int{}
		for i := range cs {
			cs[i] = hero(string(rune('a' + i)))
			cs[i].DexMod = rapid.IntRange(-2, 2).Draw(rt, "dex")
			index[cs[i]] = i
		}
		d := dice.NewLoggedRoller(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), nil)
		order := combat.RollInitiative(cs, d)
		require.Len(rt, order, n)
		for i := 1; i < len(order); i++ {
			prev, cur := order[i-1], order[i]
			require.GreaterOrEqual(rt, prev.Initiative, cur.Initiative)
			if prev.Initiative == cur.Initiative {
				require.Less(rt, index[prev], index[cur])
			}
		}
	})
}
