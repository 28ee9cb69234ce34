package npc_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/forge/internal/game/npc"
)

func testBestiary(t *testing.T) *npc.Bestiary {
	t.Helper()
	b, err := npc.NewBestiary([]*npc.Template{
		{ID: "goblin", Name: "Goblin", MaxHP: 6, Attack: 11, Defense: 12},
		{ID: "rat", Name: "Giant Rat", MaxHP: 2, Attack: 8, Defense: 12},
	})
	require.NoError(t, err)
	return b
}

func TestNewBestiary_Duplicate(t *testing.T) {
	_, err := npc.NewBestiary([]*npc.Template{{ID: "rat"}, {ID: "RAT"}})
	assert.Error(t, err)
}

func TestBestiary_All_Sorted(t *testing.T) {
	all := testBestiary(t).All()
	require.Len(t, all, 2)
	assert.Equal(t, "goblin", all[0].ID)
	assert.Equal(t, "rat", all[1].ID)
}

func TestParseGroup(t *testing.T) {
	g, err := npc.ParseGroup("goblin:2, rat")
	require.NoError(t, err)
	assert.Equal(t, []npc.GroupEntry{{Template: "goblin", Count: 2}, {Template: "rat", Count: 1}}, g)

	for _, bad := range []string{"", " , ", "goblin:0", "goblin:x"} {
		_, err := npc.ParseGroup(bad)
		assert.Error(t, err, bad)
	}
}

func TestBestiary_SpawnGroup(t *testing.T) {
	b := testBestiary(t)
	cs, err := b.SpawnGroup([]npc.GroupEntry{{Template: "goblin", Count: 2}, {Template: "Rat", Count: 1}})
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "Goblin 1", cs[0].Name)
	assert.Equal(t, "Goblin 2", cs[1].Name)
	assert.Equal(t, "Giant Rat", cs[2].Name)

	ids := map[string]bool{}
	for _, c := range cs {
		ids[c.ID] = true
	}
	assert.Len(t, ids, 3, "spawned IDs are unique")

	_, err = b.SpawnGroup([]npc.GroupEntry{{Template: "dragon", Count: 1}})
	assert.Error(t, err)
}

func TestBestiary_ConcurrentSpawnsKeepIDsUnique(t *testing.T) {
	b := testBestiary(t)
	const workers = 8
	ids := make([][]string, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				_, ok := b.Get("goblin")
				assert.True(t, ok)
				assert.Len(t, b.All(), 2)
				cs, err := b.SpawnGroup([]npc.GroupEntry{{Template: "rat", Count: 2}})
				if assert.NoError(t, err) {
					for _, c := range cs {
						ids[w] = append(ids[w], c.ID)
					}
				}
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, list := range ids {
		for _, id := range list {
			assert.False(t, seen[id], id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, workers*25*2)
}
