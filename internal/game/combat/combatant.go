// Package combat implements the turn-based encounter rules: initiative,
// skill-based attack resolution, skill and character progression, and the
// session state machine that drives an encounter to its result.
package combat

import (
	"fmt"
	"slices"
)

// Side is the faction a combatant fights for.
type Side string

const (
	SideParty   Side = "party"
	SideHostile Side = "hostile"
)

// Opposes reports whether o is the opposing faction.
func (s Side) Opposes(o Side) bool { return s != o }

// BaselineSkill is the attack skill every combatant can always use.
const BaselineSkill = "Basic Attack"

// Skill is a named, levelled ability.
//
// Invariant: Level >= 1, Pips >= 0, Pips < Level+1 between awards.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Pips  int    `json:"pips"`
}

// PipsRequired returns the pips needed to reach the next level.
func (s Skill) PipsRequired() int { return s.Level + 1 }

// Weapon is the damage source of an attack: Count dice of Sides faces.
type Weapon struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Sides int    `json:"sides"`
}

// String renders the damage dice, e.g. "Crude Spear (1d6)".
func (w Weapon) String() string {
	return fmt.Sprintf("%s (%dd%d)", w.Name, w.Count, w.Sides)
}

// Fists is used when a combatant carries nothing.
var Fists = Weapon{Name: "Fists", Count: 1, Sides: 3}

// Combatant is one participant of an encounter. The session owns it for the
// duration of the fight; party members are projections of stored characters.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
type Combatant struct {
	ID           string
	Name         string
	Side         Side
	MaxHP        int
	CurrentHP    int
	AttackValue  int
	DefenseValue int
	DamageBonus  int
	Armor        int
	DexMod       int
	Weapon       Weapon
	// Skills is ordered; the first entry is offered first to a policy.
	Skills []*Skill
	// Level and Experience are only meaningful for party members.
	Level      int
	Experience int
	// Potions is the number of health potions carried.
	Potions int
	// Initiative holds the score rolled at the start of the current round.
	Initiative int
	// Policy names the decision strategy for hostile combatants.
	Policy string
}

// Alive reports whether the combatant can still act or be targeted.
func (c *Combatant) Alive() bool { return c.CurrentHP > 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Precondition: amount >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP = max(0, c.CurrentHP-amount)
}

// Heal restores up to amount hit points without exceeding MaxHP and returns
// the hit points actually restored.
//
// Precondition: amount >= 0.
func (c *Combatant) Heal(amount int) int {
	before := c.CurrentHP
	c.CurrentHP = min(c.MaxHP, c.CurrentHP+amount)
	return c.CurrentHP - before
}

// Skill returns the named skill, or nil.
func (c *Combatant) Skill(name string) *Skill {
	for _, s := range c.Skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// EnsureBaseline adds BaselineSkill at level 1 when it is missing and clamps
// malformed skill levels and pips.
//
// Postcondition: c.Skill(BaselineSkill) != nil.
func (c *Combatant) EnsureBaseline() {
	for _, s := range c.Skills {
		s.Level = max(1, s.Level)
		s.Pips = max(0, s.Pips)
	}
	if c.Skill(BaselineSkill) == nil {
		c.Skills = append(c.Skills, &Skill{Name: BaselineSkill, Level: 1})
	}
	if c.Weapon.Count < 1 || c.Weapon.Sides < 1 {
		c.Weapon = Fists
	}
	c.CurrentHP = min(max(0, c.CurrentHP), c.MaxHP)
}

// SkillsSnapshot returns a value copy of the skills in order.
func (c *Combatant) SkillsSnapshot() []Skill {
	out := make([]Skill, len(c.Skills))
	for i, s := range c.Skills {
		out[i] = *s
	}
	return out
}

// Living filters cs down to combatants that are alive.
func Living(cs []*Combatant) []*Combatant {
	return slices.DeleteFunc(slices.Clone(cs), func(c *Combatant) bool { return !c.Alive() })
}

// OfSide filters cs down to combatants of side s.
func OfSide(cs []*Combatant, s Side) []*Combatant {
	return slices.DeleteFunc(slices.Clone(cs), func(c *Combatant) bool { return c.Side != s })
}

// Wiped reports whether no combatant of side s is alive.
func Wiped(cs []*Combatant, s Side) bool {
	return !slices.ContainsFunc(cs, func(c *Combatant) bool { return c.Side == s && c.Alive() })
}
