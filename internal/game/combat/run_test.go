package combat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/combat/mocks"
)

type recordingSink struct {
	events []combat.Event
	err    error
}

func (r *recordingSink) Record(_ context.Context, e combat.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func runSession(t *testing.T, sink combat.EventSink, logger *zap.Logger, party, hostiles []*combat.Combatant, faces ...int) *combat.Session {
	t.Helper()
	s, err := combat.NewSession(combat.Config{
		ID: "enc-run", Party: party, Hostiles: hostiles,
		Dice: scripted(faces...), Sink: sink, Logger: logger,
		DecisionTimeout: time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestRun_Victory(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	h, g := hero("h"), goblin("g")
	g.CurrentHP = 1

	party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return("Melee Combat", nil)
	party.EXPECT().ChooseTarget(gomock.Any(), h, []*combat.Combatant{g}).Return("g", nil)

	sink := &recordingSink{}
	s := runSession(t, sink, nil, []*combat.Combatant{h}, []*combat.Combatant{g}, 15, 5, 15, 3)
	out, err := s.Run(context.Background(), party, hostile)
	require.NoError(t, err)
	assert.Equal(t, combat.Victory, out.Result)
	assert.Equal(t, 29, out.Experience)
	assert.Len(t, sink.events, 4)
	assert.True(t, s.Finalized())
}

func TestRun_RepromptsInvalidSelections(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	h, g := hero("h"), goblin("g")
	g.CurrentHP = 1

	gomock.InOrder(
		party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return("Fireball", nil),
		party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return("Melee Combat", nil),
		party.EXPECT().ChooseTarget(gomock.Any(), h, gomock.Any()).Return("h", nil),
		party.EXPECT().ChooseTarget(gomock.Any(), h, gomock.Any()).Return("g", nil),
	)

	core, logs := observer.New(zapcore.WarnLevel)
	s := runSession(t, nil, zap.New(core), []*combat.Combatant{h}, []*combat.Combatant{g}, 15, 5, 15, 3)
	out, err := s.Run(context.Background(), party, hostile)
	require.NoError(t, err)
	assert.Equal(t, combat.Victory, out.Result)
	assert.Equal(t, 1, logs.FilterMessage("invalid skill selection").Len())
	assert.Equal(t, 1, logs.FilterMessage("invalid target selection").Len())
}

func TestRun_DecisionAttemptsExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	party.EXPECT().ChooseSkill(gomock.Any(), gomock.Any(), gomock.Any()).Return("Fireball", nil).Times(combat.DefaultMaxDecisionAttempts)

	s := runSession(t, nil, nil, []*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, 15, 5)
	_, err := s.Run(context.Background(), party, hostile)
	assert.ErrorIs(t, err, combat.ErrDecisionAttemptsExhausted)
	assert.Equal(t, combat.PhaseTurnSkillSelection, s.Phase())
}

func TestRun_HostilePolicyDrivesHostiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	h, g := hero("h"), goblin("g")
	h.CurrentHP = 1

	hostile.EXPECT().ChooseSkill(gomock.Any(), g, gomock.Any()).Return(combat.BaselineSkill, nil)
	hostile.EXPECT().ChooseTarget(gomock.Any(), g, []*combat.Combatant{h}).Return("h", nil)

	s := runSession(t, nil, nil, []*combat.Combatant{h}, []*combat.Combatant{g}, 2, 18, 15, 4)
	out, err := s.Run(context.Background(), party, hostile)
	require.NoError(t, err)
	assert.Equal(t, combat.Defeat, out.Result)
}

func TestRun_PartyFlees(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	party.EXPECT().ChooseSkill(gomock.Any(), gomock.Any(), gomock.Any()).Return(combat.FleeSkill, nil)

	s := runSession(t, nil, nil, []*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, 15, 5)
	out, err := s.Run(context.Background(), party, hostile)
	require.NoError(t, err)
	assert.Equal(t, combat.Fled, out.Result)
}

func TestRun_PseudoSkills(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	h, g := hero("h"), goblin("g")

	gomock.InOrder(
		// no potion to drink, so the choice is asked again
		party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return(combat.PotionSkill, nil),
		party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return(combat.DefendSkill, nil),
		hostile.EXPECT().ChooseSkill(gomock.Any(), g, gomock.Any()).Return(combat.DefendSkill, nil),
		party.EXPECT().ChooseSkill(gomock.Any(), h, gomock.Any()).Return(combat.FleeSkill, nil),
	)

	core, logs := observer.New(zapcore.WarnLevel)
	// round 1 initiative h=15 g=5; round 2 initiative h=12 g=5; flee roll 12.
	s := runSession(t, nil, zap.New(core), []*combat.Combatant{h}, []*combat.Combatant{g}, 15, 5, 12, 5, 12)
	out, err := s.Run(context.Background(), party, hostile)
	require.NoError(t, err)
	assert.Equal(t, combat.Fled, out.Result)
	assert.Equal(t, 2, out.Rounds)
	assert.Equal(t, 1, logs.FilterMessage("invalid skill selection").Len())
}

func TestRun_PolicyErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	party, hostile := mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl)
	boom := errors.New("input closed")
	party.EXPECT().ChooseSkill(gomock.Any(), gomock.Any(), gomock.Any()).Return("", boom)

	s := runSession(t, nil, nil, []*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, 15, 5)
	_, err := s.Run(context.Background(), party, hostile)
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Finalized())
}

func TestRun_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := runSession(t, nil, nil, []*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, 15, 5)
	_, err := s.Run(ctx, mocks.NewMockPolicy(ctrl), mocks.NewMockPolicy(ctrl))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SinkFailureDoesNotAbort(t *testing.T) {
	ctrl := gomock.NewController(t)
	party := mocks.NewMockPolicy(ctrl)
	party.EXPECT().ChooseSkill(gomock.Any(), gomock.Any(), gomock.Any()).Return(combat.FleeSkill, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	sink := &recordingSink{err: errors.New("redis down")}
	s := runSession(t, combat.EventSinks{sink}, zap.New(core), []*combat.Combatant{hero("h")}, []*combat.Combatant{goblin("g")}, 15, 5)
	out, err := s.Run(context.Background(), party, mocks.NewMockPolicy(ctrl))
	require.NoError(t, err)
	assert.Equal(t, combat.Fled, out.Result)
	assert.NotEmpty(t, sink.events)
	assert.Equal(t, len(sink.events), logs.FilterMessage("recording combat event").Len())
}
