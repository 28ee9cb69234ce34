package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cory-johannsen/forge/internal/game/combat"
)

// Renderer writes encounter events as text. It implements combat.EventSink.
type Renderer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewRenderer returns a Renderer writing to w, with ANSI color when color
// is true.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

// Record implements combat.EventSink.
func (r *Renderer) Record(_ context.Context, e combat.Event) error {
	line := r.format(e)
	if !r.color {
		line = StripANSI(line)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func (r *Renderer) format(e combat.Event) string {
	switch e.Kind {
	case combat.EventRoundStarted:
		return Colorf(Bold+BrightYellow, "== Round %d ==", e.Round) + "\n" +
			Colorize(Dim, "Initiative: "+strings.Join(e.Order, ", "))
	case combat.EventTurnStarted:
		return Colorize(Cyan, e.Text)
	case combat.EventAttack:
		a := e.Attack
		switch {
		case !a.Hit:
			return "  " + Colorize(Dim, a.Narrative())
		case a.Critical:
			return "  " + Colorize(Bold+BrightRed, a.Narrative())
		default:
			s := "  " + Colorize(Red, a.Narrative())
			if a.Advance != nil && a.Advance.LeveledUp {
				s += "\n  " + Colorf(BrightGreen, "%s improves to level %d!", a.Advance.Skill, a.Advance.Level)
			}
			return s
		}
	case combat.EventFled, combat.EventFleeFailed, combat.EventDefended:
		return "  " + Colorize(Yellow, e.Text)
	case combat.EventPotion:
		return "  " + Colorize(BrightGreen, e.Text)
	case combat.EventEncounterEnded:
		color := BrightRed
		if e.Result == combat.Victory {
			color = BrightGreen
		}
		return Colorize(Bold+color, e.Text)
	}
	return e.Text
}

// Outcome writes the summary of a finalized encounter.
func (r *Renderer) Outcome(o combat.EncounterOutcome) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Result: %s after %d round(s). Experience awarded: %d\n", o.Result, o.Rounds, o.Experience)
	for _, m := range o.Members {
		status := "standing"
		if !m.Survived {
			status = "fallen"
		}
		fmt.Fprintf(&b, "  %s (%s): level %d, %d xp, HP %d/%d", m.Name, status, m.Level, m.Experience, m.CurrentHP, m.MaxHP)
		if m.LevelsGained > 0 {
			b.WriteString(Colorf(BrightGreen, " +%d level(s)!", m.LevelsGained))
		}
		b.WriteString("\n")
		for _, s := range m.Skills {
			fmt.Fprintf(&b, "    %-14s level %d (%d/%d pips)\n", s.Name, s.Level, s.Pips, s.PipsRequired())
		}
	}
	out := b.String()
	if !r.color {
		out = StripANSI(out)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, out)
	return err
}
