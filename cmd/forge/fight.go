package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/forge/internal/frontend/console"
	"github.com/cory-johannsen/forge/internal/game/encounter"
	"github.com/cory-johannsen/forge/internal/game/npc"
)

var (
	fightParty     string
	fightCreatures string
	fightNoColor   bool
)

var fightCmd = &cobra.Command{
	Use:   "fight",
	Short: "Fight an encounter at the console",
	Long: `Fight an encounter between stored characters and a group of creatures.
Party members are controlled from standard input; creatures use their configured policy.

  forge fight --party Brokk,Ayla --creatures goblin:2,rat`,
	RunE: runFight,
}

func init() {
	fightCmd.Flags().StringVar(&fightParty, "party", "", "comma separated character names")
	fightCmd.Flags().StringVar(&fightCreatures, "creatures", "", "creature group, e.g. goblin:2,rat")
	fightCmd.Flags().BoolVar(&fightNoColor, "no-color", false, "disable ANSI colors")
	_ = fightCmd.MarkFlagRequired("party")
	_ = fightCmd.MarkFlagRequired("creatures")
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runFight(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	group, err := npc.ParseGroup(fightCreatures)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger, charDir)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := console.NewRenderer(out, !fightNoColor)
	report, err := svc.Fight(ctx, encounter.Request{
		Party:       splitNames(fightParty),
		Creatures:   group,
		PartyPolicy: console.NewPrompt(cmd.InOrStdin(), out),
		Sink:        renderer,
	})
	if err != nil {
		return err
	}
	if err := renderer.Outcome(report.Outcome); err != nil {
		return err
	}
	fmt.Fprintf(out, "encounter %s\n", report.ID)
	return nil
}
