package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/forge/internal/frontend/console"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent encounters from the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger, charDir)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.history == nil {
			return errors.New("history needs database.enabled")
		}

		rows, err := a.history.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tENDED\tRESULT\tROUNDS\tXP\tDEFEATED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				r.ID, r.EndedAt.Format("2006-01-02 15:04"), r.Result, r.Rounds, r.Experience, strings.Join(r.Defeated, ","))
		}
		return tw.Flush()
	},
}

var logNoColor bool

var logCmd = &cobra.Command{
	Use:   "log [ENCOUNTER_ID]",
	Short: "Replay an encounter from the combat log",
	Long:  `Replay an encounter's events from redis. Without an ID, list the encounters still held.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger, charDir)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.combatLog == nil {
			return errors.New("log needs redis.enabled")
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			ids, err := a.combatLog.Recent(ctx, historyLimit)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		}
		events, err := a.combatLog.List(ctx, args[0])
		if err != nil {
			return err
		}
		r := console.NewRenderer(out, !logNoColor)
		for _, e := range events {
			if err := r.Record(ctx, e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum encounters listed")
	logCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum encounters listed")
	logCmd.Flags().BoolVar(&logNoColor, "no-color", false, "disable ANSI colors")
}
