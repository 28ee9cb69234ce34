package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/forge/internal/game/character"
	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/storage/postgres"
	"github.com/cory-johannsen/forge/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeTestCharacter(name string) *character.Character {
	return &character.Character{
		Name:  name,
		Race:  "dwarf",
		Level: 1,
		Characteristics: character.Characteristics{
			Strength: 14.2, Stamina: 12.5, Intellect: 9.1,
			Insight: 10, Dexterity: 11.7, Awareness: 8.4,
		},
		MaxHP:      13,
		CurrentHP:  13,
		Armor:      1,
		WeaponName: "Axe",
		WeaponDice: "1d8",
		Potions:    1,
		Skills: []character.SkillRank{
			{Name: "Axe", Level: 2, Pips: 1},
			{Name: combat.BaselineSkill, Level: 1},
		},
	}
}

// One container serves every subtest; names are unique per subtest.
func TestCharacterRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		name := uniqueName("Zara")
		created, err := repo.Create(ctx, makeTestCharacter(name))
		require.NoError(t, err)

		assert.Greater(t, created.ID, int64(0))
		assert.Equal(t, name, created.Name)
		assert.Equal(t, "dwarf", created.Race)
		assert.InDelta(t, 14.2, created.Characteristics.Strength, 1e-9)
		assert.Equal(t, 13, created.MaxHP)
		assert.Equal(t, "1d8", created.WeaponDice)
	assert.Equal(t, 1, created.Potions)
		assert.Len(t, created.Skills, 2)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("DuplicateName", func(t *testing.T) {
		c := makeTestCharacter(uniqueName("Dup"))
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)

		_, err = repo.Create(ctx, c)
		assert.ErrorIs(t, err, postgres.ErrCharacterNameTaken)
	})

	t.Run("GetByIDAndName", func(t *testing.T) {
		created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Get")))
		require.NoError(t, err)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		byName, err := repo.GetByName(ctx, created.Name)
		require.NoError(t, err)

		assert.Equal(t, created.ID, byName.ID)
		assert.Equal(t, byID.Skills, byName.Skills)
		// skill order is stable
		assert.Equal(t, "Axe", byID.Skills[0].Name)
		assert.Equal(t, 2, byID.Skills[0].Level)
		assert.Equal(t, 1, byID.Skills[0].Pips)
		assert.Equal(t, combat.BaselineSkill, byID.Skills[1].Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999999)
		assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
		_, err = repo.GetByName(ctx, "nobody_"+uuid.NewString())
		assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
		err = repo.SaveProgress(ctx, &character.Character{ID: 99999999, Level: 1, MaxHP: 1})
		assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
	})

	t.Run("SaveProgress", func(t *testing.T) {
		created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Prog")))
		require.NoError(t, err)

		created.Commit(combat.MemberOutcome{
			ID:         created.CombatantID(),
			Experience: 210,
			Level:      2,
			MaxHP:      18,
			CurrentHP:  18,
			Potions:    0,
			Skills: []combat.Skill{
				{Name: "Axe", Level: 3, Pips: 0},
				{Name: combat.BaselineSkill, Level: 1, Pips: 1},
				{Name: "Shield Bash", Level: 1, Pips: 0},
			},
		})
		require.NoError(t, repo.SaveProgress(ctx, created))

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.Level)
		assert.Equal(t, 210, fetched.Experience)
		assert.Equal(t, 18, fetched.MaxHP)
	assert.Zero(t, fetched.Potions)
		require.Len(t, fetched.Skills, 3)
		assert.Equal(t, character.SkillRank{Name: "Axe", Level: 3}, fetched.Skills[0])
		assert.Equal(t, character.SkillRank{Name: "Shield Bash", Level: 1}, fetched.Skills[2])
		assert.True(t, fetched.UpdatedAt.After(fetched.CreatedAt) || fetched.UpdatedAt.Equal(fetched.CreatedAt))
	})

	t.Run("List", func(t *testing.T) {
		before, err := repo.List(ctx)
		require.NoError(t, err)
		_, err = repo.Create(ctx, makeTestCharacter(uniqueName("ListA")))
		require.NoError(t, err)
		_, err = repo.Create(ctx, makeTestCharacter(uniqueName("ListB")))
		require.NoError(t, err)

		after, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before)+2)
		for i := 1; i < len(after); i++ {
			assert.LessOrEqual(t, after[i-1].Name, after[i].Name)
		}
	})

	// For any progress written, a reload returns the same level, experience and pips.
	t.Run("Property_SaveProgressRoundTrip", func(t *testing.T) {
		created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Prop")))
		require.NoError(t, err)

		rapid.Check(t, func(rt *rapid.T) {
			level := rapid.IntRange(1, 20).Draw(rt, "level")
			xp := rapid.IntRange(0, 5000).Draw(rt, "xp")
			pips := rapid.IntRange(0, 5).Draw(rt, "pips")
			hp := rapid.IntRange(1, 100).Draw(rt, "hp")

			created.Level, created.Experience = level, xp
			created.MaxHP, created.CurrentHP = hp, hp
			created.Skills[0].Pips = pips
			require.NoError(rt, repo.SaveProgress(ctx, created))

			fetched, err := repo.GetByID(ctx, created.ID)
			require.NoError(rt, err)
			assert.Equal(rt, level, fetched.Level)
			assert.Equal(rt, xp, fetched.Experience)
			assert.Equal(rt, hp, fetched.CurrentHP)
			assert.Equal(rt, pips, fetched.Skills[0].Pips)
		})
	})
}

func TestEncounterRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	chars := postgres.NewCharacterRepository(pool)
	repo := postgres.NewEncounterRepository(pool)
	ctx := context.Background()

	pc, err := chars.Create(ctx, makeTestCharacter(uniqueName("Enc")))
	require.NoError(t, err)

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Millisecond)
	rec := postgres.EncounterRecord{
		ID: uuid.New(),
		Outcome: combat.EncounterOutcome{
			Result:     combat.Victory,
			Experience: 31,
			Rounds:     4,
			Defeated:   []string{"goblin-1", "rat-1"},
			Members: []combat.MemberOutcome{
				{ID: pc.CombatantID(), Survived: true, ExperienceGained: 31},
				{ID: "pc-unsaved", Survived: false},
			},
		},
		StartedAt:    started,
		EndedAt:      started.Add(time.Minute),
		CharacterIDs: map[string]int64{pc.CombatantID(): pc.ID},
	}
	require.NoError(t, repo.Record(ctx, rec))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, rec.ID, recent[0].ID)
	assert.Equal(t, combat.Victory, recent[0].Result)
	assert.Equal(t, 4, recent[0].Rounds)
	assert.Equal(t, []string{"goblin-1", "rat-1"}, recent[0].Defeated)

	n, err := repo.CountForCharacter(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a duplicate encounter ID leaves nothing behind
	assert.Error(t, repo.Record(ctx, rec))
	n, err = repo.CountForCharacter(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
