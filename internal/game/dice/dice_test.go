package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/forge/internal/game/dice"
)

func TestRollResult_TotalAndString(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "faces")
		mod := rapid.IntRange(-50, 50).Draw(rt, "mod")
		want := mod
		for _, f := range faces {
			want += f
		}
		assert.Equal(rt, want, dice.RollResult{Dice: faces, Modifier: mod}.Total())
	})
}

func TestParse(t *testing.T) {
	cases := []struct {
		in                    string
		count, sides, modifer int
	}{
		{"d20", 1, 20, 0},
		{"1d6", 1, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
		{" 1D4 ", 1, 4, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.count, e.Count)
			assert.Equal(t, tc.sides, e.Sides)
			assert.Equal(t, tc.modifer, e.Modifier)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "xd6", "1d1", "1d", "1d6+x"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected %q to fail", in)
	}
}

func TestMustParse_PanicsOnBadExpression(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.Equal(t, "1d3", dice.MustParse("1d3").String())
}

func TestRoll_FacesWithinRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		seed := rapid.Int64().Draw(rt, "seed")
		res := dice.Roll(dice.Expression{Count: count, Sides: sides}, dice.NewSeededSource(seed))
		require.Len(rt, res.Dice, count)
		for _, f := range res.Dice {
			assert.GreaterOrEqual(rt, f, 1)
			assert.LessOrEqual(rt, f, sides)
		}
	})
}

func TestSeededSource_IsReproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestCryptoSource_Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := src.Intn(6)
		require.True(t, v >= 0 && v < 6)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSequenceSource_ReplaysAndClamps(t *testing.T) {
	src := dice.NewSequenceSource(20, 3, 9)
	r := dice.NewLoggedRoller(src, zap.NewNop())
	assert.Equal(t, 20, r.RollD20())
	assert.Equal(t, 3, r.Roll(4))
	assert.Equal(t, 4, r.Roll(4), "face above sides clamps to the top face")
	assert.Equal(t, 20, r.RollD20(), "script wraps around")
	assert.Equal(t, 4, src.Consumed())
}

func TestRoller_RollDamageDice(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(2, 5, 6), nil)
	res := r.RollDamageDice(3, 6)
	assert.Equal(t, []int{2, 5, 6}, res.Dice)
	assert.Equal(t, 13, res.Total())
	assert.Empty(t, r.RollDamageDice(0, 6).Dice)
}

func TestRoller_LogsEveryRoll(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSequenceSource(4, 5), zap.New(core))

	res, err := r.RollExpr("2d6+1")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2d6+1", fields["expression"])
	assert.EqualValues(t, 10, fields["total"])
}

func TestRoller_Roll_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 1000).Draw(rt, "sides")
		r := dice.NewLoggedRoller(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), nil)
		v := r.Roll(sides)
		assert.True(rt, v >= 1 && v <= sides)
	})
}
