package combat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineOptions tunes the sessions an Engine creates.
type EngineOptions struct {
	MaxDecisionAttempts int
	DecisionTimeout     time.Duration
}

// Engine tracks the active encounters. Each Session is single-threaded, but
// the Engine is safe for concurrent use so independent encounters may run in
// parallel.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	dice     Dice
	opts     EngineOptions
	logger   *zap.Logger
}

// NewEngine returns an empty Engine whose sessions roll with d.
func NewEngine(d Dice, opts EngineOptions, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{sessions: make(map[string]*Session), dice: d, opts: opts, logger: logger}
}

// Start creates and registers a new session with a fresh encounter ID.
func (e *Engine) Start(party, hostiles []*Combatant, sink EventSink) (*Session, error) {
	s, err := NewSession(Config{
		ID:                  uuid.NewString(),
		Party:               party,
		Hostiles:            hostiles,
		Dice:                e.dice,
		Logger:              e.logger,
		Sink:                sink,
		MaxDecisionAttempts: e.opts.MaxDecisionAttempts,
		DecisionTimeout:     e.opts.DecisionTimeout,
	})
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range append(append([]*Combatant(nil), party...), hostiles...) {
		if other := e.sessionWith(c.ID); other != nil {
			return nil, fmt.Errorf("combatant %q is already in encounter %s", c.ID, other.id)
		}
	}
	e.sessions[s.id] = s
	return s, nil
}

// sessionWith returns the registered session containing combatant id.
//
// Precondition: e.mu is held.
func (e *Engine) sessionWith(id string) *Session {
	for _, s := range e.sessions {
		if _, ok := s.byID[id]; ok {
			return s
		}
	}
	return nil
}

// Get returns the session with the given ID.
func (e *Engine) Get(id string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// End removes the session from the registry.
func (e *Engine) End(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, id)
}

// Active returns the number of registered sessions.
func (e *Engine) Active() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}
