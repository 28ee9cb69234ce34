package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/npc"
)

// Registry indexes policies by name and dispatches each decision to the
// policy named by the active combatant. It implements combat.Policy.
//
// Invariant: each name is registered at most once.
type Registry struct {
	policies map[string]combat.Policy
	fallback combat.Policy
}

// NewRegistry returns a Registry that uses fallback for combatants whose
// policy is empty or unregistered.
//
// Precondition: fallback must not be nil.
func NewRegistry(fallback combat.Policy) *Registry {
	return &Registry{policies: make(map[string]combat.Policy), fallback: fallback}
}

// Register stores p under name.
//
// Postcondition: returns error on name collision.
func (r *Registry) Register(name string, p combat.Policy) error {
	if _, exists := r.policies[name]; exists {
		return fmt.Errorf("ai.Registry: policy %q already registered", name)
	}
	r.policies[name] = p
	return nil
}

// PolicyFor returns the policy registered under name, or false.
func (r *Registry) PolicyFor(name string) (combat.Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}

func (r *Registry) resolve(c *combat.Combatant) combat.Policy {
	if p, ok := r.policies[c.Policy]; ok {
		return p
	}
	return r.fallback
}

// ChooseSkill implements combat.Policy.
func (r *Registry) ChooseSkill(ctx context.Context, active *combat.Combatant, skills []combat.Skill) (string, error) {
	return r.resolve(active).ChooseSkill(ctx, active, skills)
}

// ChooseTarget implements combat.Policy.
func (r *Registry) ChooseTarget(ctx context.Context, active *combat.Combatant, targets []*combat.Combatant) (string, error) {
	return r.resolve(active).ChooseTarget(ctx, active, targets)
}

// Build registers the built-in policies plus one Script policy per scripted
// creature template. Creatures naming no policy use the built-in named by
// fallback ("first" when empty). Scripted creatures fall back to Greedy.
func Build(templates []*npc.Template, fallback string, caller ScriptCaller, logger *zap.Logger) (*Registry, error) {
	builtins := map[string]combat.Policy{npc.PolicyFirst: First{}, npc.PolicyGreedy: Greedy{}}
	if fallback == "" {
		fallback = npc.PolicyFirst
	}
	def, ok := builtins[fallback]
	if !ok {
		return nil, fmt.Errorf("unknown fallback policy %q", fallback)
	}
	r := NewRegistry(def)
	for name, p := range builtins {
		if err := r.Register(name, p); err != nil {
			return nil, err
		}
	}
	for _, t := range templates {
		if t.Policy != npc.PolicyScript {
			continue
		}
		key := t.PolicyName()
		if _, ok := r.PolicyFor(key); ok {
			continue
		}
		if caller == nil {
			return nil, fmt.Errorf("creature %q needs script %q but scripting is not configured", t.ID, t.Script)
		}
		if err := r.Register(key, &Script{Caller: caller, Script: t.Script, Fallback: Greedy{}, Logger: logger}); err != nil {
			return nil, err
		}
	}
	return r, nil
}
