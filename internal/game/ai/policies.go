// Package ai provides the creature decision policies plugged into combat
// sessions.
package ai

import (
	"context"
	"fmt"
	"slices"

	"github.com/cory-johannsen/forge/internal/game/combat"
)

// First attacks the first living opponent with the combatant's first skill.
type First struct{}

// ChooseSkill returns the first skill offered.
func (First) ChooseSkill(_ context.Context, _ *combat.Combatant, skills []combat.Skill) (string, error) {
	if len(skills) == 0 {
		return combat.BaselineSkill, nil
	}
	return skills[0].Name, nil
}

// ChooseTarget returns the first target offered.
func (First) ChooseTarget(_ context.Context, active *combat.Combatant, targets []*combat.Combatant) (string, error) {
	if len(targets) == 0 {
		return "", fmt.Errorf("%s has no targets", active.Name)
	}
	return targets[0].ID, nil
}

// Greedy uses its highest level skill against the opponent with the fewest
// hit points. Ties go to the earlier entry.
type Greedy struct{}

// ChooseSkill returns the highest level skill.
func (Greedy) ChooseSkill(_ context.Context, _ *combat.Combatant, skills []combat.Skill) (string, error) {
	if len(skills) == 0 {
		return combat.BaselineSkill, nil
	}
	best := skills[0]
	for _, s := range skills[1:] {
		if s.Level > best.Level {
			best = s
		}
	}
	return best.Name, nil
}

// ChooseTarget returns the target with the lowest current hit points.
func (Greedy) ChooseTarget(_ context.Context, active *combat.Combatant, targets []*combat.Combatant) (string, error) {
	if len(targets) == 0 {
		return "", fmt.Errorf("%s has no targets", active.Name)
	}
	weakest := slices.MinFunc(targets, func(a, b *combat.Combatant) int { return a.CurrentHP - b.CurrentHP })
	return weakest.ID, nil
}
