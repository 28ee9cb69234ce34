package scripting

import lua "github.com/yuin/gopher-lua"

// CombatantInfo is a read-only snapshot of a combatant passed to hooks.
type CombatantInfo struct {
	ID      string
	Name    string
	HP      int
	MaxHP   int
	Attack  int
	Defense int
	Armor   int
}

// SkillInfo is a read-only snapshot of a skill passed to hooks.
type SkillInfo struct {
	Name  string
	Level int
	Pips  int
}

// CombatantTable converts c into a Lua table with the fields id, name, hp,
// max_hp, attack, defense and armor.
func CombatantTable(L *lua.LState, c CombatantInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("attack", lua.LNumber(c.Attack))
	t.RawSetString("defense", lua.LNumber(c.Defense))
	t.RawSetString("armor", lua.LNumber(c.Armor))
	return t
}

// CombatantList converts cs into a 1-indexed Lua array of combatant tables.
func CombatantList(L *lua.LState, cs []CombatantInfo) *lua.LTable {
	t := L.CreateTable(len(cs), 0)
	for _, c := range cs {
		t.Append(CombatantTable(L, c))
	}
	return t
}

// SkillList converts skills into a 1-indexed Lua array of {name, level, pips}.
func SkillList(L *lua.LState, skills []SkillInfo) *lua.LTable {
	t := L.CreateTable(len(skills), 0)
	for _, s := range skills {
		st := L.NewTable()
		st.RawSetString("name", lua.LString(s.Name))
		st.RawSetString("level", lua.LNumber(s.Level))
		st.RawSetString("pips", lua.LNumber(s.Pips))
		t.Append(st)
	}
	return t
}
