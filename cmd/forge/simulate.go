package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/forge/internal/game/ai"
	"github.com/cory-johannsen/forge/internal/game/character"
	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
	"github.com/cory-johannsen/forge/internal/game/encounter"
	"github.com/cory-johannsen/forge/internal/game/npc"
)

var (
	simParty     string
	simCreatures string
	simRuns      int
	simWorkers   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run many encounters and report win rates",
	Long: `Run the same encounter many times with the party under the greedy policy.
Character records are not modified.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simParty, "party", "", "comma separated character names")
	simulateCmd.Flags().StringVar(&simCreatures, "creatures", "", "creature group, e.g. goblin:2,rat")
	simulateCmd.Flags().IntVar(&simRuns, "runs", 100, "number of encounters")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 4, "encounters run in parallel")
	_ = simulateCmd.MarkFlagRequired("party")
	_ = simulateCmd.MarkFlagRequired("creatures")
}

// simStats aggregates simulated outcomes. Safe for concurrent use.
type simStats struct {
	mu         sync.Mutex
	runs       int
	results    map[combat.Result]int
	rounds     int
	experience int
	deaths     int
}

func newSimStats() *simStats {
	return &simStats{results: make(map[combat.Result]int)}
}

func (s *simStats) add(o combat.EncounterOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.results[o.Result]++
	s.rounds += o.Rounds
	s.experience += o.Experience
	for _, m := range o.Members {
		if !m.Survived {
			s.deaths++
		}
	}
}

func (s *simStats) rate(r combat.Result) float64 {
	if s.runs == 0 {
		return 0
	}
	return 100 * float64(s.results[r]) / float64(s.runs)
}

func (s *simStats) write(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "runs\t%d\n", s.runs)
	for _, r := range []combat.Result{combat.Victory, combat.Defeat, combat.Fled} {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", r, s.results[r], s.rate(r))
	}
	if s.runs > 0 {
		fmt.Fprintf(tw, "avg rounds\t%.2f\n", float64(s.rounds)/float64(s.runs))
		fmt.Fprintf(tw, "avg experience\t%.2f\n", float64(s.experience)/float64(s.runs))
	}
	fmt.Fprintf(tw, "party deaths\t%d\n", s.deaths)
	return tw.Flush()
}

// simulate runs n encounters with at most workers in flight and stops at the
// first error. When diceFor is set each run rolls its own dice.
func simulate(ctx context.Context, svc *encounter.Service, chars []*character.Character, group []npc.GroupEntry, n, workers int, diceFor func(run int) combat.Dice) (*simStats, error) {
	stats := newSimStats()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i := 0; i < n; i++ {
		sim := encounter.Simulation{Party: chars, Creatures: group, PartyPolicy: ai.Greedy{}}
		if diceFor != nil {
			sim.Dice = diceFor(i)
		}
		g.Go(func() error {
			out, err := svc.Simulate(ctx, sim)
			if err != nil {
				return err
			}
			stats.add(out)
			return nil
		})
	}
	return stats, g.Wait()
}

// seededDice gives run i its own stream seeded with seed+i, so a seeded
// simulation reports the same totals whatever the worker count. A zero seed
// returns nil and every run shares the service dice.
func seededDice(seed int64, logger *zap.Logger) func(run int) combat.Dice {
	if seed == 0 {
		return nil
	}
	return func(run int) combat.Dice {
		return dice.NewLoggedRoller(dice.NewSeededSource(seed+int64(run)), logger)
	}
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if simRuns < 1 {
		return fmt.Errorf("--runs must be >= 1, got %d", simRuns)
	}
	group, err := npc.ParseGroup(simCreatures)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger, charDir)
	if err != nil {
		return err
	}
	defer a.Close()

	var chars []*character.Character
	for _, name := range splitNames(simParty) {
		c, err := a.characters.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("loading character %q: %w", name, err)
		}
		chars = append(chars, c)
	}
	svc, err := a.service()
	if err != nil {
		return err
	}

	diceFor := seededDice(a.cfg.Combat.DiceSeed, a.logger.Named("dice"))
	stats, err := simulate(ctx, svc, chars, group, simRuns, simWorkers, diceFor)
	if err != nil {
		return err
	}
	return stats.write(cmd.OutOrStdout())
}
