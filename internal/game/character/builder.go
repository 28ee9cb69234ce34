package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/forge/internal/game/ruleset"
)

// StartingPotions is the number of health potions a new character carries.
const StartingPotions = 1

// ErrTooWeak is returned when the rolled strength does not meet the race's
// minimum.
var ErrTooWeak = errors.New("strength below racial minimum")

// Build constructs a level 1 character from rolled characteristics and a
// race. Racial modifiers are applied, hit points derived, and the race's
// starting skills and StartingPotions granted.
//
// Precondition: name must be non-empty; race must be non-nil.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(name string, race *ruleset.Race, rolled Characteristics) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if race == nil {
		return nil, errors.New("race must not be nil")
	}
	chars := rolled.WithModifiers(race.Modifiers)
	if chars.Strength < race.MinStrength {
		return nil, fmt.Errorf("%w: %s needs %.1f, have %.1f", ErrTooWeak, race.Name, race.MinStrength, chars.Strength)
	}
	hp := chars.Stats().MaxHP
	c := &Character{
		Name:            name,
		Race:            race.ID,
		Level:           1,
		Characteristics: chars,
		MaxHP:           hp,
		CurrentHP:       hp,
		Armor:           race.NaturalArmor,
		Potions:         StartingPotions,
	}
	for _, s := range race.StartingSkills {
		c.Skills = append(c.Skills, SkillRank{Name: s.Name, Level: s.Level})
	}
	return c, nil
}
