package ai

import (
	"context"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/scripting"
)

// ScriptCaller is the interface required by Script to evaluate Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function of script. Returns (LNil, nil) if
	// the function is not defined.
	CallHook(ctx context.Context, script, hook string, args func(L *lua.LState) []lua.LValue) (lua.LValue, error)
}

// Script asks a Lua script for decisions through the hooks
//
//	choose_skill(self, skills) -> name
//	choose_target(self, targets) -> id
//
// A hook that is missing, fails, or returns a non-string defers to Fallback.
type Script struct {
	Caller   ScriptCaller
	Script   string
	Fallback combat.Policy
	Logger   *zap.Logger
}

// ChooseSkill implements combat.Policy.
func (s *Script) ChooseSkill(ctx context.Context, active *combat.Combatant, skills []combat.Skill) (string, error) {
	ret, err := s.Caller.CallHook(ctx, s.Script, "choose_skill", func(L *lua.LState) []lua.LValue {
		infos := make([]scripting.SkillInfo, len(skills))
		for i, sk := range skills {
			infos[i] = scripting.SkillInfo{Name: sk.Name, Level: sk.Level, Pips: sk.Pips}
		}
		return []lua.LValue{scripting.CombatantTable(L, info(active)), scripting.SkillList(L, infos)}
	})
	if name, ok := s.answer(ret, err, "choose_skill"); ok {
		return name, nil
	}
	return s.Fallback.ChooseSkill(ctx, active, skills)
}

// ChooseTarget implements combat.Policy.
func (s *Script) ChooseTarget(ctx context.Context, active *combat.Combatant, targets []*combat.Combatant) (string, error) {
	ret, err := s.Caller.CallHook(ctx, s.Script, "choose_target", func(L *lua.LState) []lua.LValue {
		infos := make([]scripting.CombatantInfo, len(targets))
		for i, t := range targets {
			infos[i] = info(t)
		}
		return []lua.LValue{scripting.CombatantTable(L, info(active)), scripting.CombatantList(L, infos)}
	})
	if id, ok := s.answer(ret, err, "choose_target"); ok {
		return id, nil
	}
	return s.Fallback.ChooseTarget(ctx, active, targets)
}

func (s *Script) answer(ret lua.LValue, err error, hook string) (string, bool) {
	if err != nil {
		s.logger().Warn("ai: script hook unavailable", zap.String("script", s.Script), zap.String("hook", hook), zap.Error(err))
		return "", false
	}
	str, ok := ret.(lua.LString)
	if !ok || str == "" {
		return "", false
	}
	return string(str), true
}

func (s *Script) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func info(c *combat.Combatant) scripting.CombatantInfo {
	return scripting.CombatantInfo{
		ID:      c.ID,
		Name:    c.Name,
		HP:      c.CurrentHP,
		MaxHP:   c.MaxHP,
		Attack:  c.AttackValue,
		Defense: c.DefenseValue,
		Armor:   c.Armor,
	}
}
