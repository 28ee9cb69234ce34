// Package npc provides creature templates and spawns them as hostile
// combatants.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
)

// Policy names understood by the ai package.
const (
	PolicyFirst  = "first"
	PolicyGreedy = "greedy"
	PolicyScript = "script"
)

// WeaponSpec is a creature's natural or carried weapon.
type WeaponSpec struct {
	Name   string `yaml:"name"`
	Damage string `yaml:"damage"` // dice expression, e.g. "1d6"
}

// SkillSpec is a creature skill.
type SkillSpec struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// Template defines a creature loaded from YAML.
type Template struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	MaxHP       int         `yaml:"max_hp"`
	Attack      int         `yaml:"attack"`
	Defense     int         `yaml:"defense"`
	DamageBonus int         `yaml:"damage_bonus"`
	DexMod      int         `yaml:"dex_mod"`
	Armor       int         `yaml:"armor"`
	Weapon      WeaponSpec  `yaml:"weapon"`
	Skills      []SkillSpec `yaml:"skills"`
	// Policy selects the creature's decision strategy; empty means the encounter default.
	Policy string `yaml:"policy"`
	// Script is the Lua file implementing the hooks when Policy is "script".
	Script string `yaml:"script"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1,
// Armor >= 0, the weapon damage parses, every skill has level >= 1 and the
// policy is known.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("creature template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("creature template %q: name must not be empty", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("creature template %q: max_hp must be >= 1", t.ID)
	}
	if t.Armor < 0 {
		return fmt.Errorf("creature template %q: armor must be >= 0", t.ID)
	}
	if t.Weapon.Damage != "" {
		if _, err := dice.Parse(t.Weapon.Damage); err != nil {
			return fmt.Errorf("creature template %q: weapon damage: %w", t.ID, err)
		}
	}
	for _, s := range t.Skills {
		if s.Name == "" || s.Level < 1 {
			return fmt.Errorf("creature template %q: skill %q must have a name and level >= 1", t.ID, s.Name)
		}
	}
	switch t.Policy {
	case "", PolicyFirst, PolicyGreedy:
	case PolicyScript:
		if t.Script == "" {
			return fmt.Errorf("creature template %q: policy script requires a script", t.ID)
		}
	default:
		return fmt.Errorf("creature template %q: unknown policy %q", t.ID, t.Policy)
	}
	return nil
}

// CombatWeapon returns the combat weapon, or combat.Fists when none is set.
func (t *Template) CombatWeapon() combat.Weapon {
	if t.Weapon.Damage == "" {
		return combat.Fists
	}
	e := dice.MustParse(t.Weapon.Damage)
	return combat.Weapon{Name: t.Weapon.Name, Count: e.Count, Sides: e.Sides}
}

// Spawn creates a fresh hostile combatant from the template.
//
// Precondition: t passed Validate.
// Postcondition: CurrentHP == MaxHP and the baseline skill is present.
func (t *Template) Spawn(id, name string) *combat.Combatant {
	c := &combat.Combatant{
		ID:           id,
		Name:         name,
		Side:         combat.SideHostile,
		MaxHP:        t.MaxHP,
		CurrentHP:    t.MaxHP,
		AttackValue:  t.Attack,
		DefenseValue: t.Defense,
		DamageBonus:  t.DamageBonus,
		Armor:        t.Armor,
		DexMod:       t.DexMod,
		Weapon:       t.CombatWeapon(),
		Policy:       t.PolicyName(),
	}
	for _, s := range t.Skills {
		c.Skills = append(c.Skills, &combat.Skill{Name: s.Name, Level: s.Level})
	}
	c.EnsureBaseline()
	return c
}

// PolicyName returns the key the creature's policy is registered under, or
// "script:<file>" for scripted creatures. An empty name selects the
// encounter's default hostile policy.
func (t *Template) PolicyName() string {
	if t.Policy == PolicyScript {
		return ScriptPolicyKey(t.Script)
	}
	return t.Policy
}

// ScriptPolicyKey is the policy key of creatures driven by script.
func ScriptPolicyKey(script string) string {
	return PolicyScript + ":" + script
}

// LoadTemplateFromBytes parses and validates a single creature template.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Postcondition: Returns all templates or an error on the first parse or
// validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
	}
	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
