package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrInvalidSkillSelection is returned when the active combatant does not
	// have the chosen skill.
	ErrInvalidSkillSelection = errors.New("combat: invalid skill selection")
	// ErrInvalidTargetSelection is returned when the chosen target is unknown,
	// dead or on the attacker's own side.
	ErrInvalidTargetSelection = errors.New("combat: invalid target selection")
	// ErrAttackerDown is returned when a dead combatant attempts to attack.
	ErrAttackerDown = errors.New("combat: attacker is not alive")
)

const (
	naturalCrit = 20
	// skillDamageLevel is the skill level from which hits deal +1 damage.
	skillDamageLevel = 5
)

// AttackOutcome is the full record of one resolved attack.
//
// DamageRolled is the narrative total of the dice plus bonuses. DamageApplied
// is what the target actually loses: one hit point per damage die.
type AttackOutcome struct {
	AttackerID       string        `json:"attacker_id"`
	Attacker         string        `json:"attacker"`
	TargetID         string        `json:"target_id"`
	Target           string        `json:"target"`
	Skill            string        `json:"skill"`
	SkillLevel       int           `json:"skill_level"`
	D20              int           `json:"d20"`
	AttackTotal      int           `json:"attack_total"`
	Defense          int           `json:"defense"`
	Hit              bool          `json:"hit"`
	Critical         bool          `json:"critical"`
	Weapon           string        `json:"weapon,omitempty"`
	DamageDice       []int         `json:"damage_dice,omitempty"`
	DamageRolled     int           `json:"damage_rolled"`
	DiceCount        int           `json:"dice_count"`
	ArmorAbsorbed    int           `json:"armor_absorbed"`
	DamageApplied    int           `json:"damage_applied"`
	TargetHP         int           `json:"target_hp"`
	TargetAliveAfter bool          `json:"target_alive_after"`
	Advance          *SkillAdvance `json:"advance,omitempty"`
}

// Narrative renders a one-line description of the attack.
func (o AttackOutcome) Narrative() string {
	if !o.Hit {
		return fmt.Sprintf("%s uses %s on %s: %d vs DV %d, miss.", o.Attacker, o.Skill, o.Target, o.AttackTotal, o.Defense)
	}
	s := fmt.Sprintf("%s uses %s on %s: %d vs DV %d, hit for %d (%d HP lost).",
		o.Attacker, o.Skill, o.Target, o.AttackTotal, o.Defense, o.DamageRolled, o.DamageApplied)
	if o.Critical {
		s = "Critical! " + s
	}
	if !o.TargetAliveAfter {
		s += fmt.Sprintf(" %s falls.", o.Target)
	}
	return s
}

// Resolver applies the attack rules. It is the only component that changes a
// combatant's hit points during an encounter.
type Resolver struct {
	dice    Dice
	tracker *Tracker
	logger  *zap.Logger
}

// NewResolver returns a Resolver rolling with d and awarding pips through t.
//
// Precondition: d and t are non-nil.
func NewResolver(d Dice, t *Tracker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{dice: d, tracker: t, logger: logger}
}

// Resolve performs one attack of attacker against target using the named
// skill. An unknown skill falls back to BaselineSkill.
//
// Precondition: attacker is alive; target is alive and on the opposing side.
// Postcondition: on a hit target.CurrentHP decreased by DamageApplied, floored
// at zero, and the used skill gained one pip.
func (r *Resolver) Resolve(attacker *Combatant, skillName string, target *Combatant) (AttackOutcome, error) {
	if !attacker.Alive() {
		return AttackOutcome{}, fmt.Errorf("%w: %s", ErrAttackerDown, attacker.Name)
	}
	if target == nil || !target.Alive() || !attacker.Side.Opposes(target.Side) {
		return AttackOutcome{}, ErrInvalidTargetSelection
	}
	attacker.EnsureBaseline()
	skill := attacker.Skill(skillName)
	if skill == nil {
		skill = attacker.Skill(BaselineSkill)
	}

	out := AttackOutcome{
		AttackerID: attacker.ID,
		Attacker:   attacker.Name,
		TargetID:   target.ID,
		Target:     target.Name,
		Skill:      skill.Name,
		SkillLevel: skill.Level,
		Defense:    target.DefenseValue,
		Weapon:     attacker.Weapon.Name,
	}
	out.D20 = r.dice.RollD20()
	out.AttackTotal = out.D20 + attacker.AttackValue + skill.Level/2
	out.Critical = out.D20 == naturalCrit
	out.Hit = out.Critical || out.AttackTotal > target.DefenseValue

	if out.Hit {
		count := max(1, attacker.Weapon.Count-target.Armor)
		out.ArmorAbsorbed = attacker.Weapon.Count - count
		roll := r.dice.RollDamageDice(count, attacker.Weapon.Sides)
		out.DamageDice = roll.Dice
		rolled := roll.Total() + attacker.DamageBonus
		if skill.Level >= skillDamageLevel {
			rolled++
		}
		out.DamageRolled = max(0, rolled)
		out.DiceCount = count
		if out.Critical {
			out.DamageRolled *= 2
			out.DiceCount *= 2
		}
		out.DamageApplied = out.DiceCount
		target.ApplyDamage(out.DamageApplied)

		adv, err := r.tracker.AwardPip(attacker, skill.Name)
		if err != nil {
			return AttackOutcome{}, err
		}
		out.Advance = &adv
	}
	out.TargetHP = target.CurrentHP
	out.TargetAliveAfter = target.Alive()

	r.logger.Debug("attack resolved",
		zap.String("attacker", attacker.ID),
		zap.String("target", target.ID),
		zap.String("skill", out.Skill),
		zap.Int("d20", out.D20),
		zap.Int("attack_total", out.AttackTotal),
		zap.Bool("hit", out.Hit),
		zap.Bool("critical", out.Critical),
		zap.Int("damage_applied", out.DamageApplied),
	)
	return out, nil
}
