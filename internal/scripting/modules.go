package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the forge global table into L:
//
//	forge.roll(sides) -> int   roll one die through the dice service
//	forge.log(msg)             write msg to the debug log
func (m *Manager) RegisterModules(L *lua.LState) {
	forge := L.NewTable()
	L.SetFuncs(forge, map[string]lua.LGFunction{
		"roll": m.luaRoll,
		"log":  m.luaLog,
	})
	L.SetGlobal("forge", forge)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	sides := L.CheckInt(1)
	if sides < 1 {
		L.ArgError(1, "sides must be >= 1")
		return 0
	}
	L.Push(lua.LNumber(m.roller.Roll(sides)))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("scripting: lua log", zap.String("msg", L.CheckString(1)))
	return 0
}
