// Package encounter runs complete encounters for stored characters: it loads
// the party, spawns the creatures, drives a combat session to its end and
// writes the progress back.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/game/character"
	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/npc"
	"github.com/cory-johannsen/forge/internal/storage/postgres"
)

// ErrEmptyParty is returned when a request names no characters.
var ErrEmptyParty = errors.New("encounter: party must not be empty")

// CharacterStore loads and saves character records.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/cory-johannsen/forge/internal/game/encounter CharacterStore,HistoryStore
type CharacterStore interface {
	GetByName(ctx context.Context, name string) (*character.Character, error)
	SaveProgress(ctx context.Context, c *character.Character) error
}

// HistoryStore records finished encounters.
type HistoryStore interface {
	Record(ctx context.Context, rec postgres.EncounterRecord) error
}

// Config holds the dependencies of a Service. History and Sinks are optional.
type Config struct {
	Engine     *combat.Engine
	Dice       combat.Dice
	Bestiary   *npc.Bestiary
	Characters CharacterStore
	History    HistoryStore
	Sinks      []combat.EventSink
	Hostile    combat.Policy
	Options    combat.EngineOptions
	Logger     *zap.Logger
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	switch {
	case c.Engine == nil:
		return errors.New("encounter: engine is required")
	case c.Dice == nil:
		return errors.New("encounter: dice are required")
	case c.Bestiary == nil:
		return errors.New("encounter: bestiary is required")
	case c.Characters == nil:
		return errors.New("encounter: character store is required")
	case c.Hostile == nil:
		return errors.New("encounter: hostile policy is required")
	}
	return nil
}

// Service runs encounters.
type Service struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger, now: time.Now}, nil
}

// Request describes one encounter to fight.
type Request struct {
	// Party lists character names.
	Party     []string
	Creatures []npc.GroupEntry
	// PartyPolicy decides for party members, typically a console prompt.
	PartyPolicy combat.Policy
	// Sink receives the play-by-play in addition to the configured sinks.
	Sink combat.EventSink
}

// Report is the result of a fought encounter.
type Report struct {
	ID         string
	Outcome    combat.EncounterOutcome
	Events     []combat.Event
	Characters []*character.Character
}

// Fight loads the party, runs the encounter to its end, commits every
// member's progress to its record and stores the encounter history.
//
// Postcondition: on success every party character has been saved once.
// Progress is not written when the encounter fails to finish.
func (s *Service) Fight(ctx context.Context, req Request) (Report, error) {
	if len(req.Party) == 0 {
		return Report{}, ErrEmptyParty
	}
	if req.PartyPolicy == nil {
		return Report{}, errors.New("encounter: party policy is required")
	}
	chars := make([]*character.Character, 0, len(req.Party))
	for _, name := range req.Party {
		c, err := s.cfg.Characters.GetByName(ctx, name)
		if err != nil {
			return Report{}, fmt.Errorf("loading character %q: %w", name, err)
		}
		chars = append(chars, c)
	}

	party, err := project(chars)
	if err != nil {
		return Report{}, err
	}
	hostiles, err := s.cfg.Bestiary.SpawnGroup(req.Creatures)
	if err != nil {
		return Report{}, err
	}

	sinks := append(combat.EventSinks(nil), s.cfg.Sinks...)
	if req.Sink != nil {
		sinks = append(sinks, req.Sink)
	}
	sess, err := s.cfg.Engine.Start(party, hostiles, sinks)
	if err != nil {
		return Report{}, err
	}
	defer s.cfg.Engine.End(sess.ID())

	started := s.now()
	s.logger.Info("encounter started",
		zap.String("encounter", sess.ID()),
		zap.Int("party", len(party)),
		zap.Int("hostiles", len(hostiles)),
	)
	out, err := sess.Run(ctx, req.PartyPolicy, s.cfg.Hostile)
	if err != nil {
		return Report{}, fmt.Errorf("encounter %s: %w", sess.ID(), err)
	}
	ended := s.now()

	ids := make(map[string]int64, len(chars))
	for _, c := range chars {
		m, ok := out.Member(c.CombatantID())
		if !ok {
			continue
		}
		c.Commit(m)
		if err := s.cfg.Characters.SaveProgress(ctx, c); err != nil {
			return Report{}, fmt.Errorf("saving %q: %w", c.Name, err)
		}
		if c.ID != 0 {
			ids[c.CombatantID()] = c.ID
		}
	}

	if s.cfg.History != nil {
		rec := postgres.EncounterRecord{
			ID:           uuid.MustParse(sess.ID()),
			Outcome:      out,
			StartedAt:    started,
			EndedAt:      ended,
			CharacterIDs: ids,
		}
		if err := s.cfg.History.Record(ctx, rec); err != nil {
			// progress is already saved
			s.logger.Warn("recording encounter history", zap.String("encounter", sess.ID()), zap.Error(err))
		}
	}

	s.logger.Info("encounter ended",
		zap.String("encounter", sess.ID()),
		zap.String("result", string(out.Result)),
		zap.Int("rounds", out.Rounds),
		zap.Int("experience", out.Experience),
	)
	return Report{ID: sess.ID(), Outcome: out, Events: sess.Events(), Characters: chars}, nil
}

// Simulation describes one detached encounter.
type Simulation struct {
	Party       []*character.Character
	Creatures   []npc.GroupEntry
	PartyPolicy combat.Policy
	// Dice replaces the service dice for this run, e.g. a roller seeded per
	// run so parallel simulations stay reproducible. Optional.
	Dice combat.Dice
}

// Simulate fights one encounter with copies of the party and discards the
// progress. It does not register with the engine, so any number of
// simulations of the same party may run concurrently.
func (s *Service) Simulate(ctx context.Context, sim Simulation) (combat.EncounterOutcome, error) {
	if len(sim.Party) == 0 {
		return combat.EncounterOutcome{}, ErrEmptyParty
	}
	party, err := project(sim.Party)
	if err != nil {
		return combat.EncounterOutcome{}, err
	}
	hostiles, err := s.cfg.Bestiary.SpawnGroup(sim.Creatures)
	if err != nil {
		return combat.EncounterOutcome{}, err
	}
	d := sim.Dice
	if d == nil {
		d = s.cfg.Dice
	}
	sess, err := combat.NewSession(combat.Config{
		ID:                  uuid.NewString(),
		Party:               party,
		Hostiles:            hostiles,
		Dice:                d,
		MaxDecisionAttempts: s.cfg.Options.MaxDecisionAttempts,
		DecisionTimeout:     s.cfg.Options.DecisionTimeout,
	})
	if err != nil {
		return combat.EncounterOutcome{}, err
	}
	return sess.Run(ctx, sim.PartyPolicy, s.cfg.Hostile)
}

func project(chars []*character.Character) ([]*combat.Combatant, error) {
	party := make([]*combat.Combatant, 0, len(chars))
	for _, c := range chars {
		cb, err := c.Combatant()
		if err != nil {
			return nil, err
		}
		party = append(party, cb)
	}
	return party, nil
}
