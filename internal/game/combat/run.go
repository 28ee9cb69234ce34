package combat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Run drives the session to its end, asking party for the decisions of party
// members and hostile for everyone else, and returns the finalized outcome.
// Invalid selections are re-requested up to the configured attempt limit.
// Events are forwarded to the configured sink as they occur.
func (s *Session) Run(ctx context.Context, party, hostile Policy) (EncounterOutcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return EncounterOutcome{}, err
		}
		var err error
		switch s.phase {
		case PhaseRoundStart:
			err = s.StartRound()
		case PhaseTurnSkillSelection:
			err = s.decideSkill(ctx, s.policyFor(party, hostile))
		case PhaseTurnTargetSelection:
			err = s.decideTarget(ctx, s.policyFor(party, hostile))
		case PhaseRoundEnd:
			err = s.NextRound()
		case PhaseEncounterEnd:
			s.flush(ctx)
			return s.Finalize()
		default:
			err = s.phaseError("run")
		}
		s.flush(ctx)
		if err != nil {
			return EncounterOutcome{}, err
		}
	}
}

func (s *Session) policyFor(party, hostile Policy) Policy {
	if s.Active().Side == SideParty {
		return party
	}
	return hostile
}

func (s *Session) decideSkill(ctx context.Context, p Policy) error {
	active := s.Active()
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		name, err := s.ask(ctx, func(ctx context.Context) (string, error) {
			return p.ChooseSkill(ctx, active, active.SkillsSnapshot())
		})
		if err != nil {
			return fmt.Errorf("choosing skill for %s: %w", active.Name, err)
		}
		switch {
		case name == FleeSkill && active.Side == SideParty:
			_, err = s.Flee()
			return err
		case name == DefendSkill:
			return s.Defend()
		case name == PotionSkill:
			_, err = s.UsePotion()
		default:
			err = s.SelectSkill(name)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrInvalidSkillSelection) {
			return err
		}
		s.logger.Warn("invalid skill selection", zap.String("combatant", active.ID), zap.String("skill", name), zap.Int("attempt", attempt))
	}
	return fmt.Errorf("%w: skill for %s", ErrDecisionAttemptsExhausted, active.Name)
}

func (s *Session) decideTarget(ctx context.Context, p Policy) error {
	active := s.Active()
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.ask(ctx, func(ctx context.Context) (string, error) {
			return p.ChooseTarget(ctx, active, s.Targets())
		})
		if err != nil {
			return fmt.Errorf("choosing target for %s: %w", active.Name, err)
		}
		_, err = s.SelectTarget(id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrInvalidTargetSelection) {
			return err
		}
		s.logger.Warn("invalid target selection", zap.String("combatant", active.ID), zap.String("target", id), zap.Int("attempt", attempt))
	}
	return fmt.Errorf("%w: target for %s", ErrDecisionAttemptsExhausted, active.Name)
}

func (s *Session) ask(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// flush forwards events not yet delivered to the sink. Sink failures are
// logged and dropped.
func (s *Session) flush(ctx context.Context) {
	if s.sink == nil {
		s.flushed = len(s.events)
		return
	}
	for ; s.flushed < len(s.events); s.flushed++ {
		if err := s.sink.Record(ctx, s.events[s.flushed]); err != nil {
			s.logger.Warn("recording combat event", zap.Error(err), zap.Int("seq", s.events[s.flushed].Seq))
		}
	}
}
