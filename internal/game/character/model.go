// Package character defines the persistent character record and its narrow
// projection into the combat engine.
package character

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
)

// Characteristics are the rolled attributes of a character. Values carry a
// tenths digit, e.g. 11.4.
type Characteristics struct {
	Strength  float64 `yaml:"strength" json:"strength"`
	Stamina   float64 `yaml:"stamina" json:"stamina"`
	Intellect float64 `yaml:"intellect" json:"intellect"`
	Insight   float64 `yaml:"insight" json:"insight"`
	Dexterity float64 `yaml:"dexterity" json:"dexterity"`
	Awareness float64 `yaml:"awareness" json:"awareness"`
}

// Stats are the combat numbers derived from Characteristics.
type Stats struct {
	MaxHP        int
	AttackValue  int
	DefenseValue int
	DamageBonus  int
	DexMod       int
}

// Stats derives the combat numbers:
//
//	HP = (STR + STA) / 2
//	AV = DEX + STR / 2
//	DV = DEX + AWR / 2
//	damage bonus = (STR - 10) / 3
//	dex modifier = floor((DEX - 10) / 2)
//
// Fractions are truncated toward zero, except the dex modifier which floors.
func (c Characteristics) Stats() Stats {
	return Stats{
		MaxHP:        max(1, int((c.Strength+c.Stamina)/2)),
		AttackValue:  int(c.Dexterity + c.Strength/2),
		DefenseValue: int(c.Dexterity + c.Awareness/2),
		DamageBonus:  int((c.Strength - 10) / 3),
		DexMod:       int(math.Floor((c.Dexterity - 10) / 2)),
	}
}

// WithModifiers returns c with per-characteristic deltas applied. No value
// drops below 1.
func (c Characteristics) WithModifiers(mods map[string]float64) Characteristics {
	apply := func(v float64, key string) float64 { return math.Max(1, v+mods[key]) }
	return Characteristics{
		Strength:  apply(c.Strength, "strength"),
		Stamina:   apply(c.Stamina, "stamina"),
		Intellect: apply(c.Intellect, "intellect"),
		Insight:   apply(c.Insight, "insight"),
		Dexterity: apply(c.Dexterity, "dexterity"),
		Awareness: apply(c.Awareness, "awareness"),
	}
}

// RollCharacteristics rolls each characteristic as 2d6 plus a d10 read as
// tenths, where a 10 on the d10 counts as a full point.
func RollCharacteristics(src dice.Source) Characteristics {
	roll := func() float64 {
		d6 := dice.Roll(dice.Expression{Count: 2, Sides: 6}, src).Total()
		tenths := src.Intn(10)
		if tenths == 0 {
			return float64(d6) + 1
		}
		return float64(d6) + float64(tenths)/10
	}
	return Characteristics{
		Strength:  roll(),
		Stamina:   roll(),
		Intellect: roll(),
		Insight:   roll(),
		Dexterity: roll(),
		Awareness: roll(),
	}
}

// SkillRank is a stored skill with its progress.
type SkillRank struct {
	Name  string `yaml:"name" json:"name"`
	Level int    `yaml:"level" json:"level"`
	Pips  int    `yaml:"pips" json:"pips"`
}

// Character is a player character's persistent record.
//
// ID is set by the persistence layer; zero means unsaved.
type Character struct {
	ID              int64           `yaml:"id"`
	Name            string          `yaml:"name"`
	Race            string          `yaml:"race"`
	Level           int             `yaml:"level"`
	Experience      int             `yaml:"experience"`
	Characteristics Characteristics `yaml:"characteristics"`
	MaxHP           int             `yaml:"max_hp"`
	CurrentHP       int             `yaml:"current_hp"`
	Armor           int             `yaml:"armor"`
	WeaponName      string          `yaml:"weapon_name"`
	WeaponDice      string          `yaml:"weapon_dice"`
	Potions         int             `yaml:"potions"`
	Skills          []SkillRank     `yaml:"skills"`

	CreatedAt time.Time `yaml:"-"`
	UpdatedAt time.Time `yaml:"-"`
}

// CombatantID returns the ID the character fights under.
func (c *Character) CombatantID() string {
	if c.ID == 0 {
		return "pc-" + c.Name
	}
	return "pc-" + strconv.FormatInt(c.ID, 10)
}

// Weapon returns the character's weapon, or combat.Fists when none is set.
func (c *Character) Weapon() (combat.Weapon, error) {
	if c.WeaponDice == "" {
		return combat.Fists, nil
	}
	e, err := dice.Parse(c.WeaponDice)
	if err != nil {
		return combat.Weapon{}, fmt.Errorf("character %q weapon: %w", c.Name, err)
	}
	name := c.WeaponName
	if name == "" {
		name = "Weapon"
	}
	return combat.Weapon{Name: name, Count: e.Count, Sides: e.Sides}, nil
}

// Combatant projects the character into a party combatant. Attack, defense
// and damage bonus come from the characteristics; hit points, level,
// experience and skills from the stored progress.
func (c *Character) Combatant() (*combat.Combatant, error) {
	w, err := c.Weapon()
	if err != nil {
		return nil, err
	}
	st := c.Characteristics.Stats()
	cb := &combat.Combatant{
		ID:           c.CombatantID(),
		Name:         c.Name,
		Side:         combat.SideParty,
		MaxHP:        c.MaxHP,
		CurrentHP:    c.CurrentHP,
		AttackValue:  st.AttackValue,
		DefenseValue: st.DefenseValue,
		DamageBonus:  st.DamageBonus,
		Armor:        c.Armor,
		DexMod:       st.DexMod,
		Weapon:       w,
		Level:        max(1, c.Level),
		Experience:   c.Experience,
		Potions:      max(0, c.Potions),
	}
	for _, s := range c.Skills {
		cb.Skills = append(cb.Skills, &combat.Skill{Name: s.Name, Level: s.Level, Pips: s.Pips})
	}
	cb.EnsureBaseline()
	return cb, nil
}

// Commit writes an encounter result back into the record.
//
// Precondition: m.ID == c.CombatantID().
func (c *Character) Commit(m combat.MemberOutcome) {
	c.Experience = m.Experience
	c.Level = m.Level
	c.MaxHP = m.MaxHP
	c.CurrentHP = m.CurrentHP
	c.Potions = m.Potions
	c.Skills = c.Skills[:0]
	for _, s := range m.Skills {
		c.Skills = append(c.Skills, SkillRank{Name: s.Name, Level: s.Level, Pips: s.Pips})
	}
}

// LoadFile reads a character record from a YAML file.
func LoadFile(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading character file %s: %w", path, err)
	}
	var c Character
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing character file %s: %w", path, err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("character file %s: name must not be empty", path)
	}
	c.Level = max(1, c.Level)
	if c.MaxHP == 0 {
		c.MaxHP = c.Characteristics.Stats().MaxHP
		c.CurrentHP = c.MaxHP
	}
	return &c, nil
}

// SaveFile writes the record to path as YAML.
func (c *Character) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing character file %s: %w", path, err)
	}
	return nil
}
