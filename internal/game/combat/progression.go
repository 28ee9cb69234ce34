package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnknownSkill is returned when a pip is awarded to a skill the combatant
// does not have.
var ErrUnknownSkill = errors.New("combat: unknown skill")

// HPPerLevel is the maximum hit point gain of a character level-up.
const HPPerLevel = 5

// LevelThreshold returns the experience a character of the given level needs
// to advance.
func LevelThreshold(level int) int { return (level + 1) * 100 }

// ExperienceValue is the experience a defeated combatant is worth.
func ExperienceValue(c *Combatant) int {
	return c.MaxHP + c.AttackValue + c.DefenseValue
}

// SkillAdvance describes the effect of one pip award.
type SkillAdvance struct {
	Skill     string `json:"skill"`
	Level     int    `json:"level"`
	Pips      int    `json:"pips"`
	LeveledUp bool   `json:"leveled_up"`
}

// Result is the terminal tag of an encounter.
type Result string

const (
	Victory Result = "victory"
	Defeat  Result = "defeat"
	Fled    Result = "fled"
)

// MemberOutcome is the post-encounter state of one party member, shaped for
// writing back into the character record.
type MemberOutcome struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Survived         bool    `json:"survived"`
	ExperienceGained int     `json:"experience_gained"`
	Experience       int     `json:"experience"`
	Level            int     `json:"level"`
	LevelsGained     int     `json:"levels_gained"`
	MaxHP            int     `json:"max_hp"`
	CurrentHP        int     `json:"current_hp"`
	Potions          int     `json:"potions"`
	Skills           []Skill `json:"skills"`
}

// EncounterOutcome is the terminal summary of a finalized encounter.
type EncounterOutcome struct {
	Result     Result          `json:"result"`
	Experience int             `json:"experience"`
	Rounds     int             `json:"rounds"`
	Defeated   []string        `json:"defeated"`
	Members    []MemberOutcome `json:"members"`
}

// Member returns the outcome for the party member with the given ID.
func (o EncounterOutcome) Member(id string) (MemberOutcome, bool) {
	for _, m := range o.Members {
		if m.ID == id {
			return m, true
		}
	}
	return MemberOutcome{}, false
}

// Tracker applies skill pips during combat and experience at its end.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker returns a Tracker logging to logger (nil for no logging).
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger}
}

// AwardPip credits one pip to the named skill of c, levelling the skill when
// its pips reach Level+1. A single award raises the level by at most one.
func (t *Tracker) AwardPip(c *Combatant, skill string) (SkillAdvance, error) {
	s := c.Skill(skill)
	if s == nil {
		return SkillAdvance{}, fmt.Errorf("%w: %q on %s", ErrUnknownSkill, skill, c.Name)
	}
	s.Pips++
	adv := SkillAdvance{Skill: s.Name}
	if s.Pips >= s.PipsRequired() {
		s.Pips = 0
		s.Level++
		adv.LeveledUp = true
		t.logger.Debug("skill level up",
			zap.String("combatant", c.ID),
			zap.String("skill", s.Name),
			zap.Int("level", s.Level),
		)
	}
	adv.Level, adv.Pips = s.Level, s.Pips
	return adv, nil
}

// GainExperience adds xp to c and resolves every level-up the new total
// reaches. It returns the number of levels gained.
//
// Postcondition: c.Experience < LevelThreshold(c.Level).
func GainExperience(c *Combatant, xp int) int {
	c.Level = max(1, c.Level)
	c.Experience += max(0, xp)
	gained := 0
	for c.Experience >= LevelThreshold(c.Level) {
		c.Level++
		c.MaxHP += HPPerLevel
		c.CurrentHP = c.MaxHP
		gained++
	}
	return gained
}

// FinalizeEncounter totals the experience of the defeated hostiles, credits it
// to every surviving party member, resolves level-ups and reports the result.
// Experience is only awarded for a Victory; a party that flees or falls keeps
// nothing for the hostiles it did defeat. Callers must invoke it once per
// encounter; Session enforces this.
func (t *Tracker) FinalizeEncounter(result Result, rounds int, party, defeated []*Combatant) EncounterOutcome {
	out := EncounterOutcome{Result: result, Rounds: rounds}
	for _, h := range defeated {
		if result == Victory {
			out.Experience += ExperienceValue(h)
		}
		out.Defeated = append(out.Defeated, h.ID)
	}
	for _, m := range party {
		mo := MemberOutcome{ID: m.ID, Name: m.Name, Survived: m.Alive()}
		if mo.Survived && out.Experience > 0 {
			mo.ExperienceGained = out.Experience
			mo.LevelsGained = GainExperience(m, out.Experience)
			if mo.LevelsGained > 0 {
				t.logger.Info("character level up",
					zap.String("combatant", m.ID),
					zap.Int("level", m.Level),
					zap.Int("max_hp", m.MaxHP),
				)
			}
		}
		mo.Experience, mo.Level = m.Experience, max(1, m.Level)
		mo.MaxHP, mo.CurrentHP = m.MaxHP, m.CurrentHP
		mo.Potions = m.Potions
		mo.Skills = m.SkillsSnapshot()
		out.Members = append(out.Members, mo)
	}
	return out
}
