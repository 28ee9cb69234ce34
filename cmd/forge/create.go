package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/forge/internal/game/character"
	"github.com/cory-johannsen/forge/internal/game/ruleset"
)

var (
	createRace   string
	createWeapon string
)

var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Roll a new level 1 character",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createRace, "race", "human", "race id")
	createCmd.Flags().StringVar(&createWeapon, "weapon", "", "starting weapon as name=dice, e.g. \"Rusty Sword=1d6\"")
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger, charDir)
	if err != nil {
		return err
	}
	defer a.Close()

	race, ok := ruleset.Find(a.races, createRace)
	if !ok {
		return fmt.Errorf("unknown race %q", createRace)
	}
	c, err := character.Build(args[0], race, character.RollCharacteristics(a.source))
	if err != nil {
		return err
	}
	if createWeapon != "" {
		name, expr, ok := strings.Cut(createWeapon, "=")
		if !ok {
			return fmt.Errorf("--weapon must be name=dice, got %q", createWeapon)
		}
		c.WeaponName, c.WeaponDice = strings.TrimSpace(name), strings.TrimSpace(expr)
		if _, err := c.Weapon(); err != nil {
			return err
		}
	}

	saved, err := a.characters.Create(ctx, c)
	if err != nil {
		return err
	}
	return writeCharacter(cmd.OutOrStdout(), saved)
}

func writeCharacter(w io.Writer, c *character.Character) error {
	ch := c.Characteristics
	st := ch.Stats()
	_, err := fmt.Fprintf(w, `%s the %s (level %d)
  STR %.1f  STA %.1f  INT %.1f  INS %.1f  DEX %.1f  AWR %.1f
  HP %d/%d  AV %d  DV %d  damage bonus %+d  armor %d
`, c.Name, c.Race, c.Level,
		ch.Strength, ch.Stamina, ch.Intellect, ch.Insight, ch.Dexterity, ch.Awareness,
		c.CurrentHP, c.MaxHP, st.AttackValue, st.DefenseValue, st.DamageBonus, c.Armor)
	if err != nil {
		return err
	}
	for _, s := range c.Skills {
		if _, err := fmt.Fprintf(w, "  %s %d\n", s.Name, s.Level); err != nil {
			return err
		}
	}
	return nil
}
