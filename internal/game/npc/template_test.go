package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/npc"
)

const goblinYAML = `
id: goblin
name: Goblin
max_hp: 6
attack: 11
defense: 12
weapon:
  name: Crude Spear
  damage: 1d6
skills:
  - name: Spear
    level: 1
`

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	assert.Equal(t, "goblin", tmpl.ID)
	assert.Empty(t, tmpl.PolicyName())
	assert.Equal(t, combat.Weapon{Name: "Crude Spear", Count: 1, Sides: 6}, tmpl.CombatWeapon())
}

func TestTemplate_Validate(t *testing.T) {
	base := func() *npc.Template {
		return &npc.Template{ID: "x", Name: "X", MaxHP: 3, Weapon: npc.WeaponSpec{Name: "Bite", Damage: "1d3"}}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(*npc.Template){
		"empty id":         func(t *npc.Template) { t.ID = "" },
		"empty name":       func(t *npc.Template) { t.Name = "" },
		"zero hp":          func(t *npc.Template) { t.MaxHP = 0 },
		"negative armor":   func(t *npc.Template) { t.Armor = -1 },
		"bad damage":       func(t *npc.Template) { t.Weapon.Damage = "d" },
		"bad skill":        func(t *npc.Template) { t.Skills = []npc.SkillSpec{{Name: "Bite", Level: 0}} },
		"unknown policy":   func(t *npc.Template) { t.Policy = "clever" },
		"script no script": func(t *npc.Template) { t.Policy = npc.PolicyScript },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := base()
			mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestTemplate_Spawn(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	c := tmpl.Spawn("goblin-1", "Goblin")

	assert.Equal(t, combat.SideHostile, c.Side)
	assert.Equal(t, 6, c.CurrentHP)
	assert.Equal(t, 11, c.AttackValue)
	assert.Equal(t, 12, c.DefenseValue)
	assert.NotNil(t, c.Skill("Spear"))
	assert.NotNil(t, c.Skill(combat.BaselineSkill))
	assert.Equal(t, 29, combat.ExperienceValue(c))
}

func TestTemplate_Spawn_Property_FullHealth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tmpl := &npc.Template{
			ID: "x", Name: "X",
			MaxHP:   rapid.IntRange(1, 100).Draw(rt, "hp"),
			Attack:  rapid.IntRange(0, 20).Draw(rt, "atk"),
			Defense: rapid.IntRange(0, 20).Draw(rt, "def"),
		}
		require.NoError(rt, tmpl.Validate())
		c := tmpl.Spawn("x-1", "X")
		assert.Equal(rt, tmpl.MaxHP, c.CurrentHP)
		assert.Equal(rt, combat.Fists, c.Weapon)
	})
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goblin.yaml"), []byte(goblinYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))
	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: broken\n"), 0o644))
	_, err = npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_ShippedCreatures(t *testing.T) {
	templates, err := npc.LoadTemplates("../../../content/creatures")
	require.NoError(t, err)
	b, err := npc.NewBestiary(templates)
	require.NoError(t, err)

	goblin, ok := b.Get("goblin")
	require.True(t, ok)
	assert.Equal(t, 6, goblin.MaxHP)
	assert.Equal(t, 11, goblin.Attack)
	assert.Equal(t, 12, goblin.Defense)

	rat, ok := b.Get("rat")
	require.True(t, ok)
	assert.Equal(t, combat.Weapon{Name: "Bite", Count: 1, Sides: 2}, rat.CombatWeapon())
}
