package combat_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
)

func TestEngine_StartGetEnd(t *testing.T) {
	e := combat.NewEngine(scripted(10), combat.EngineOptions{}, nil)
	s, err := e.Start([]*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())

	got, ok := e.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, e.Active())

	_, err = e.Start([]*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g2")}, nil)
	assert.Error(t, err, "a combatant fights in one encounter at a time")

	e.End(s.ID())
	_, ok = e.Get(s.ID())
	assert.False(t, ok)
	assert.Zero(t, e.Active())
}

func TestEngine_StartPropagatesRosterErrors(t *testing.T) {
	e := combat.NewEngine(scripted(10), combat.EngineOptions{}, nil)
	_, err := e.Start(nil, []*combat.Combatant{goblin("g")}, nil)
	assert.ErrorIs(t, err, combat.ErrEmptyRoster)
}

func TestEngine_ConcurrentStarts(t *testing.T) {
	e := combat.NewEngine(dice.NewLoggedRoller(dice.NewSeededSource(7), nil), combat.EngineOptions{}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			_, err := e.Start([]*combat.Combatant{hero("h" + id)}, []*combat.Combatant{goblin("g" + id)}, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, e.Active())
}
