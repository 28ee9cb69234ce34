package combat

import "context"

// Pseudo skills a policy may return instead of an attack skill. Only party
// members may flee.
const (
	FleeSkill   = "Flee"
	DefendSkill = "Defend"
	PotionSkill = "Health Potion"
)

// Policy decides the actions of the active combatant. Human input and
// creature AI both implement it.
//
//go:generate mockgen -destination=mocks/mock_policy.go -package=mocks github.com/cory-johannsen/forge/internal/game/combat Policy
type Policy interface {
	// ChooseSkill returns the name of one of skills or a pseudo skill.
	ChooseSkill(ctx context.Context, active *Combatant, skills []Skill) (string, error)
	// ChooseTarget returns the ID of one of targets, all living opponents of
	// active.
	ChooseTarget(ctx context.Context, active *Combatant, targets []*Combatant) (string, error)
}
