package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/forge/internal/game/ai"
	"github.com/cory-johannsen/forge/internal/game/combat"
)

func party(hps ...int) []*combat.Combatant {
	out := make([]*combat.Combatant, len(hps))
	for i, hp := range hps {
		out[i] = &combat.Combatant{ID: string(rune('a' + i)), Name: string(rune('A' + i)), Side: combat.SideParty, MaxHP: 20, CurrentHP: hp}
	}
	return out
}

var goblin = &combat.Combatant{ID: "g", Name: "Goblin", Side: combat.SideHostile, MaxHP: 6, CurrentHP: 6}

var skills = []combat.Skill{{Name: combat.BaselineSkill, Level: 1}, {Name: "Spear", Level: 3}, {Name: "Bite", Level: 3}}

func TestFirst(t *testing.T) {
	ctx := context.Background()
	name, err := ai.First{}.ChooseSkill(ctx, goblin, skills)
	require.NoError(t, err)
	assert.Equal(t, combat.BaselineSkill, name)

	id, err := ai.First{}.ChooseTarget(ctx, goblin, party(9, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	_, err = ai.First{}.ChooseTarget(ctx, goblin, nil)
	assert.Error(t, err)
}

func TestGreedy(t *testing.T) {
	ctx := context.Background()
	name, err := ai.Greedy{}.ChooseSkill(ctx, goblin, skills)
	require.NoError(t, err)
	assert.Equal(t, "Spear", name, "first of the highest level skills")

	id, err := ai.Greedy{}.ChooseTarget(ctx, goblin, party(9, 2, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	name, err = ai.Greedy{}.ChooseSkill(ctx, goblin, nil)
	require.NoError(t, err)
	assert.Equal(t, combat.BaselineSkill, name)
}

func TestGreedy_Property_PicksAWeakestTarget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hps := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 8).Draw(rt, "hps")
		targets := party(hps...)
		id, err := ai.Greedy{}.ChooseTarget(context.Background(), goblin, targets)
		require.NoError(rt, err)
		var chosen *combat.Combatant
		for _, c := range targets {
			if c.ID == id {
				chosen = c
			}
		}
		require.NotNil(rt, chosen)
		for _, c := range targets {
			require.LessOrEqual(rt, chosen.CurrentHP, c.CurrentHP)
		}
	})
}

func TestRegistry_DispatchesByCombatantPolicy(t *testing.T) {
	r := ai.NewRegistry(ai.First{})
	require.NoError(t, r.Register("greedy", ai.Greedy{}))
	assert.Error(t, r.Register("greedy", ai.First{}))

	targets := party(9, 2)
	wolf := &combat.Combatant{ID: "w", Name: "Wolf", Side: combat.SideHostile, Policy: "greedy"}
	id, err := r.ChooseTarget(context.Background(), wolf, targets)
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	rat := &combat.Combatant{ID: "r", Name: "Rat", Side: combat.SideHostile, Policy: "unheard-of"}
	id, err = r.ChooseTarget(context.Background(), rat, targets)
	require.NoError(t, err)
	assert.Equal(t, "a", id, "unknown policies fall back")

	name, err := r.ChooseSkill(context.Background(), wolf, skills)
	require.NoError(t, err)
	assert.Equal(t, "Spear", name)
}
