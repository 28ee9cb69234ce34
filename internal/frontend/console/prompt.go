package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cory-johannsen/forge/internal/game/combat"
)

// ErrInputClosed is returned when the input stream ends.
var ErrInputClosed = errors.New("console: input closed")

// Prompt is a combat.Policy backed by a human at a terminal. Options are
// listed with numbers; the player may answer with a number or a name.
type Prompt struct {
	out   io.Writer
	once  sync.Once
	in    io.Reader
	lines chan string
}

// NewPrompt reads answers from in and writes menus to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

func (p *Prompt) start() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		sc := bufio.NewScanner(p.in)
		for sc.Scan() {
			p.lines <- strings.TrimSpace(sc.Text())
		}
	}()
}

func (p *Prompt) readLine(ctx context.Context) (string, error) {
	p.once.Do(p.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}

// ChooseSkill lists the active member's skills followed by Defend, a health
// potion when one is carried, and Flee.
func (p *Prompt) ChooseSkill(ctx context.Context, active *combat.Combatant, skills []combat.Skill) (string, error) {
	fmt.Fprintf(p.out, "%s (HP %d/%d), choose a skill:\n", active.Name, active.CurrentHP, active.MaxHP)
	names := make([]string, 0, len(skills)+3)
	for _, s := range skills {
		names = append(names, s.Name)
		fmt.Fprintf(p.out, "  %d) %s (level %d)\n", len(names), s.Name, s.Level)
	}
	names = append(names, combat.DefendSkill)
	fmt.Fprintf(p.out, "  %d) %s\n", len(names), combat.DefendSkill)
	if active.Potions > 0 {
		names = append(names, combat.PotionSkill)
		fmt.Fprintf(p.out, "  %d) %s (%d left)\n", len(names), combat.PotionSkill, active.Potions)
	}
	names = append(names, combat.FleeSkill)
	fmt.Fprintf(p.out, "  %d) %s\n", len(names), combat.FleeSkill)
	return p.pick(ctx, names)
}

// ChooseTarget lists the living opponents.
func (p *Prompt) ChooseTarget(ctx context.Context, active *combat.Combatant, targets []*combat.Combatant) (string, error) {
	fmt.Fprintln(p.out, "Choose a target:")
	ids := make([]string, len(targets))
	for i, t := range targets {
		fmt.Fprintf(p.out, "  %d) %s (HP %d/%d)\n", i+1, t.Name, t.CurrentHP, t.MaxHP)
		ids[i] = t.ID
	}
	answer, err := p.pick(ctx, ids)
	if err != nil {
		return "", err
	}
	for _, t := range targets {
		if strings.EqualFold(t.Name, answer) {
			return t.ID, nil
		}
	}
	return answer, nil
}

// pick reads one answer. A number selects from options; anything else is
// matched case-insensitively against options and otherwise returned as typed
// so the session can reject it.
func (p *Prompt) pick(ctx context.Context, options []string) (string, error) {
	fmt.Fprint(p.out, "> ")
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, line) {
			return o, nil
		}
	}
	return line, nil
}
