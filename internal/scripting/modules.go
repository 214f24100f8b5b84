package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine.* tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(n)    -> integer in [1, n]
//	engine.dice.chance(p)  -> true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, locationID string) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L, locationID))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState, locationID string) *lua.LTable {
	logger := m.logger.With(zap.String("location", locationID))
	mod := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "sides must be >= 1")
			return 0
		}
		L.Push(lua.LNumber(m.src.Intn(n) + 1))
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(m.src.Float64() < p))
		return 1
	}))
	return mod
}
