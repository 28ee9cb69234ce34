package combat

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrEmptyRoster is returned when either side has no living combatant.
	ErrEmptyRoster = errors.New("combat: each side needs at least one living combatant")
	// ErrDuplicateCombatant is returned when two combatants share an ID.
	ErrDuplicateCombatant = errors.New("combat: duplicate combatant id")
	// ErrInvalidPhase is returned when an operation is attempted outside the
	// phase that permits it.
	ErrInvalidPhase = errors.New("combat: operation not permitted in current phase")
	// ErrEncounterNotOver is returned by Finalize before the encounter ended.
	ErrEncounterNotOver = errors.New("combat: encounter has not ended")
	// ErrEncounterAlreadyFinalized is returned by every Finalize after the first.
	ErrEncounterAlreadyFinalized = errors.New("combat: encounter already finalized")
	// ErrDecisionAttemptsExhausted is returned by Run when a policy keeps
	// making invalid selections.
	ErrDecisionAttemptsExhausted = errors.New("combat: decision attempts exhausted")
	// ErrNoPotions is returned when the active combatant carries no health
	// potion. It is an invalid skill selection, so Run re-prompts.
	ErrNoPotions = fmt.Errorf("%w: no health potion left", ErrInvalidSkillSelection)
)

const (
	// DefaultMaxDecisionAttempts bounds re-prompting of a policy per decision.
	DefaultMaxDecisionAttempts = 3
	// FleeThreshold is the lowest d20 face that escapes an encounter.
	FleeThreshold = 10
	// PotionHealing is the hit points one health potion restores.
	PotionHealing = 10
)

// Phase is a state of the encounter state machine.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseRoundStart
	PhaseTurnSkillSelection
	PhaseTurnTargetSelection
	PhaseTurnResolution
	PhaseRoundEnd
	PhaseEncounterEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseRoundStart:
		return "round_start"
	case PhaseTurnSkillSelection:
		return "turn_skill_selection"
	case PhaseTurnTargetSelection:
		return "turn_target_selection"
	case PhaseTurnResolution:
		return "turn_resolution"
	case PhaseRoundEnd:
		return "round_end"
	case PhaseEncounterEnd:
		return "encounter_end"
	default:
		return "unknown"
	}
}

// Config assembles a Session.
type Config struct {
	ID       string
	Party    []*Combatant
	Hostiles []*Combatant
	Dice     Dice
	Logger   *zap.Logger
	// Sink receives events while Run drives the session. Optional.
	Sink EventSink
	// MaxDecisionAttempts defaults to DefaultMaxDecisionAttempts.
	MaxDecisionAttempts int
	// DecisionTimeout bounds each policy call made by Run. Zero disables it.
	DecisionTimeout time.Duration
}

// Session is one encounter between a party and a group of hostiles. It is
// single-threaded: exactly one turn is in flight and every mutation of its
// combatants flows through its Resolver and Tracker.
type Session struct {
	id       string
	party    []*Combatant
	hostiles []*Combatant
	byID     map[string]*Combatant
	resolver *Resolver
	tracker  *Tracker
	dice     Dice
	logger   *zap.Logger
	sink     EventSink

	maxAttempts int
	timeout     time.Duration

	phase     Phase
	result    Result
	round     int
	order     []*Combatant
	turn      int
	skill     string
	finalized bool
	outcome   EncounterOutcome

	events  []Event
	flushed int
}

// NewSession validates the rosters and returns a session waiting at
// PhaseRoundStart. Combatants without the baseline skill receive it.
func NewSession(cfg Config) (*Session, error) {
	if len(Living(cfg.Party)) == 0 || len(Living(cfg.Hostiles)) == 0 {
		return nil, ErrEmptyRoster
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:          cfg.ID,
		party:       cfg.Party,
		hostiles:    cfg.Hostiles,
		byID:        make(map[string]*Combatant, len(cfg.Party)+len(cfg.Hostiles)),
		dice:        cfg.Dice,
		logger:      logger.With(zap.String("encounter", cfg.ID)),
		sink:        cfg.Sink,
		maxAttempts: cfg.MaxDecisionAttempts,
		timeout:     cfg.DecisionTimeout,
		phase:       PhaseInitializing,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxDecisionAttempts
	}
	rosters := []struct {
		side Side
		cs   []*Combatant
	}{{SideParty, cfg.Party}, {SideHostile, cfg.Hostiles}}
	// validate every ID before touching any combatant
	for _, r := range rosters {
		for _, c := range r.cs {
			if _, dup := s.byID[c.ID]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateCombatant, c.ID)
			}
			s.byID[c.ID] = c
		}
	}
	for _, r := range rosters {
		for _, c := range r.cs {
			c.Side = r.side
			c.EnsureBaseline()
		}
	}
	s.tracker = NewTracker(s.logger)
	s.resolver = NewResolver(cfg.Dice, s.tracker, s.logger)
	s.phase = PhaseRoundStart
	return s, nil
}

// ID returns the encounter identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current state.
func (s *Session) Phase() Phase { return s.phase }

// Round returns the number of rounds started so far.
func (s *Session) Round() int { return s.round }

// Result returns the terminal tag, empty until PhaseEncounterEnd.
func (s *Session) Result() Result { return s.result }

// Party returns the party roster.
func (s *Session) Party() []*Combatant { return s.party }

// Hostiles returns the hostile roster.
func (s *Session) Hostiles() []*Combatant { return s.hostiles }

// Order returns the initiative order of the current round.
func (s *Session) Order() []*Combatant { return s.order }

// Events returns every event emitted so far.
func (s *Session) Events() []Event { return append([]Event(nil), s.events...) }

// Active returns the combatant whose turn it is, or nil outside a turn.
func (s *Session) Active() *Combatant {
	switch s.phase {
	case PhaseTurnSkillSelection, PhaseTurnTargetSelection, PhaseTurnResolution:
		return s.order[s.turn]
	}
	return nil
}

// Targets returns the living opponents of the active combatant.
func (s *Session) Targets() []*Combatant {
	a := s.Active()
	if a == nil {
		return nil
	}
	if a.Side == SideParty {
		return Living(s.hostiles)
	}
	return Living(s.party)
}

// StartRound rolls initiative for every living combatant and hands the turn
// to the highest score.
//
// Precondition: Phase() == PhaseRoundStart.
// Postcondition: Phase() == PhaseTurnSkillSelection.
func (s *Session) StartRound() error {
	if s.phase != PhaseRoundStart {
		return s.phaseError("start round")
	}
	s.round++
	s.order = RollInitiative(append(append([]*Combatant(nil), s.party...), s.hostiles...), s.dice)
	s.turn = 0
	names := make([]string, len(s.order))
	for i, c := range s.order {
		names[i] = fmt.Sprintf("%s (%d)", c.Name, c.Initiative)
	}
	s.emit(Event{Kind: EventRoundStarted, Order: names, Text: fmt.Sprintf("Round %d begins.", s.round)})
	s.beginTurn()
	return nil
}

// SelectSkill records the skill the active combatant will use.
//
// Precondition: Phase() == PhaseTurnSkillSelection.
// Postcondition: on success Phase() == PhaseTurnTargetSelection; on error the
// session is unchanged.
func (s *Session) SelectSkill(name string) error {
	if s.phase != PhaseTurnSkillSelection {
		return s.phaseError("select skill")
	}
	if s.Active().Skill(name) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidSkillSelection, name)
	}
	s.skill = name
	s.phase = PhaseTurnTargetSelection
	return nil
}

// SelectTarget resolves the active combatant's attack against the target
// with the given ID, then advances to the next turn, the round end or the
// encounter end.
//
// Precondition: Phase() == PhaseTurnTargetSelection.
// Postcondition: on error the session is unchanged.
func (s *Session) SelectTarget(id string) (AttackOutcome, error) {
	if s.phase != PhaseTurnTargetSelection {
		return AttackOutcome{}, s.phaseError("select target")
	}
	active := s.Active()
	target, ok := s.byID[id]
	if !ok || !target.Alive() || !active.Side.Opposes(target.Side) {
		return AttackOutcome{}, fmt.Errorf("%w: %q", ErrInvalidTargetSelection, id)
	}

	s.phase = PhaseTurnResolution
	out, err := s.resolver.Resolve(active, s.skill, target)
	if err != nil {
		s.phase = PhaseTurnTargetSelection
		return AttackOutcome{}, err
	}
	s.emit(Event{Kind: EventAttack, Actor: active.ID, Attack: &out, Text: out.Narrative()})
	s.advance()
	return out, nil
}

// NextRound moves from the end of a round to the start of the next.
//
// Precondition: Phase() == PhaseRoundEnd.
func (s *Session) NextRound() error {
	if s.phase != PhaseRoundEnd {
		return s.phaseError("next round")
	}
	s.phase = PhaseRoundStart
	return nil
}

// Flee tries to abandon the encounter. The active party member rolls a d20
// and the party escapes on FleeThreshold or more. A failed attempt spends
// the turn. Only a party member may flee and only before choosing a skill,
// so no attack is ever left half applied.
//
// Precondition: Phase() == PhaseTurnSkillSelection and Active() is a party member.
// Postcondition: escaped implies Result() == Fled.
func (s *Session) Flee() (escaped bool, err error) {
	if s.phase != PhaseTurnSkillSelection || s.Active().Side != SideParty {
		return false, s.phaseError("flee")
	}
	a := s.Active()
	roll := s.dice.RollD20()
	if roll >= FleeThreshold {
		s.emit(Event{Kind: EventFled, Actor: a.ID, Roll: roll, Text: fmt.Sprintf("%s leads the party in retreat.", a.Name)})
		s.end(Fled)
		return true, nil
	}
	s.emit(Event{Kind: EventFleeFailed, Actor: a.ID, Roll: roll, Text: fmt.Sprintf("%s fails to flee (rolled %d).", a.Name, roll)})
	s.advance()
	return false, nil
}

// Defend spends the active combatant's turn in a defensive stance. The
// stance has no effect on later attacks.
//
// Precondition: Phase() == PhaseTurnSkillSelection.
func (s *Session) Defend() error {
	if s.phase != PhaseTurnSkillSelection {
		return s.phaseError("defend")
	}
	a := s.Active()
	s.emit(Event{Kind: EventDefended, Actor: a.ID, Text: fmt.Sprintf("%s takes a defensive stance.", a.Name)})
	s.advance()
	return nil
}

// UsePotion spends the active combatant's turn drinking a health potion,
// which restores PotionHealing hit points up to MaxHP. It returns the hit
// points restored.
//
// Precondition: Phase() == PhaseTurnSkillSelection.
// Postcondition: on error the session is unchanged.
func (s *Session) UsePotion() (int, error) {
	if s.phase != PhaseTurnSkillSelection {
		return 0, s.phaseError("use potion")
	}
	a := s.Active()
	if a.Potions <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoPotions, a.Name)
	}
	a.Potions--
	healed := a.Heal(PotionHealing)
	s.emit(Event{Kind: EventPotion, Actor: a.ID, Healed: healed,
		Text: fmt.Sprintf("%s drinks a health potion and recovers %d HP.", a.Name, healed)})
	s.advance()
	return healed, nil
}

// Finalize applies experience and level-ups exactly once and returns the
// encounter outcome.
//
// Precondition: Phase() == PhaseEncounterEnd.
func (s *Session) Finalize() (EncounterOutcome, error) {
	if s.finalized {
		return EncounterOutcome{}, ErrEncounterAlreadyFinalized
	}
	if s.phase != PhaseEncounterEnd {
		return EncounterOutcome{}, fmt.Errorf("%w: phase %s", ErrEncounterNotOver, s.phase)
	}
	var defeated []*Combatant
	for _, h := range s.hostiles {
		if !h.Alive() {
			defeated = append(defeated, h)
		}
	}
	s.outcome = s.tracker.FinalizeEncounter(s.result, s.round, s.party, defeated)
	s.finalized = true
	s.logger.Info("encounter finalized",
		zap.String("result", string(s.result)),
		zap.Int("rounds", s.round),
		zap.Int("experience", s.outcome.Experience),
	)
	return s.outcome, nil
}

// Finalized reports whether Finalize has succeeded.
func (s *Session) Finalized() bool { return s.finalized }

func (s *Session) beginTurn() {
	s.skill = ""
	s.phase = PhaseTurnSkillSelection
	a := s.order[s.turn]
	s.emit(Event{Kind: EventTurnStarted, Actor: a.ID, Text: fmt.Sprintf("%s acts.", a.Name)})
}

func (s *Session) advance() {
	if r, over := endResult(s.party, s.hostiles); over {
		s.end(r)
		return
	}
	for s.turn++; s.turn < len(s.order); s.turn++ {
		if s.order[s.turn].Alive() {
			s.beginTurn()
			return
		}
	}
	s.phase = PhaseRoundEnd
}

// endResult decides whether the encounter is over. A wiped party is a defeat
// even when the hostiles were wiped by the same resolution.
func endResult(party, hostiles []*Combatant) (Result, bool) {
	switch {
	case len(Living(party)) == 0:
		return Defeat, true
	case len(Living(hostiles)) == 0:
		return Victory, true
	}
	return "", false
}

func (s *Session) end(r Result) {
	s.result = r
	s.phase = PhaseEncounterEnd
	s.emit(Event{Kind: EventEncounterEnded, Result: r, Text: fmt.Sprintf("Encounter over: %s.", r)})
}

func (s *Session) emit(e Event) {
	e.EncounterID = s.id
	e.Seq = len(s.events) + 1
	e.Round = s.round
	e.At = time.Now().UTC()
	s.events = append(s.events, e)
	s.logger.Debug("combat event", zap.String("kind", string(e.Kind)), zap.String("text", e.Text))
}

func (s *Session) phaseError(op string) error {
	return fmt.Errorf("%w: cannot %s in phase %s", ErrInvalidPhase, op, s.phase)
}
