package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/forge/internal/game/npc"
)

var creaturesCmd = &cobra.Command{
	Use:   "creatures",
	Short: "List the creature table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		templates, err := npc.LoadTemplates(cfg.Combat.CreaturesDir)
		if err != nil {
			return err
		}
		b, err := npc.NewBestiary(templates)
		if err != nil {
			return err
		}
		return writeCreatures(cmd.OutOrStdout(), b.All())
	},
}

func writeCreatures(w io.Writer, templates []*npc.Template) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHP\tAV\tDV\tARMOR\tWEAPON\tPOLICY")
	for _, t := range templates {
		policy := t.Policy
		if policy == "" {
			policy = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s (%s)\t%s\n",
			t.ID, t.Name, t.MaxHP, t.Attack, t.Defense, t.Armor, t.Weapon.Name, t.Weapon.Damage, policy)
	}
	return tw.Flush()
}
