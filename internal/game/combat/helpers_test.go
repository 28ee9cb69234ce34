package combat_test

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
)

// scripted returns a Dice that yields faces in order, wrapping around.
func scripted(faces ...int) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSequenceSource(faces...), zap.NewNop())
}

func hero(id string) *combat.Combatant {
	return &combat.Combatant{
		ID: id, Name: id, Side: combat.SideParty,
		MaxHP: 12, CurrentHP: 12,
		AttackValue: 11, DefenseValue: 12,
		Weapon: combat.Weapon{Name: "Rusty Sword", Count: 1, Sides: 6},
		Skills: []*combat.Skill{{Name: "Melee Combat", Level: 1}},
		Level:  1,
	}
}

func goblin(id string) *combat.Combatant {
	return &combat.Combatant{
		ID: id, Name: "Goblin", Side: combat.SideHostile,
		MaxHP: 6, CurrentHP: 6,
		AttackValue: 11, DefenseValue: 12,
		Weapon: combat.Weapon{Name: "Crude Spear", Count: 1, Sides: 6},
	}
}
