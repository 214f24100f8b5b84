package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
)

// globalLocationID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no location VM is found.
const globalLocationID = "__global__"

// vm is one sandboxed LState. An LState is single-threaded; mu serializes calls.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per location and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook. Calls into the same location are
// serialized; different locations run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadLocation creates a sandboxed VM for locationID, registers the engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic order.
// Reloading a location replaces its VM.
//
// Precondition: locationID must be non-empty; scriptDir must be a readable directory.
// Postcondition: The VM is registered; returns error on Lua load failure.
func (m *Manager) LoadLocation(locationID, scriptDir string, instLimit int) error {
	return m.loadInto(locationID, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts reachable as a
// CallHook fallback from any location.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalLocationID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L := NewSandboxedState()
	m.RegisterModules(L, key)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		err := withBudget(L, instLimit, func() error { return L.DoFile(path) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: loaded",
		zap.String("location", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function in locationID's VM. If the
// location has no VM, the __global__ VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[locationID]
	if !ok {
		v = m.vms[globalLocationID]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for location",
			zap.String("location", locationID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	top := L.GetTop()
	err := withBudget(L, v.limit, func() error {
		return L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		L.SetTop(top)
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("location", locationID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.SetTop(top)
	return ret, nil
}

// Locations returns the IDs of the loaded VMs in sorted order.
func (m *Manager) Locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for k := range m.vms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Close releases every VM.
//
// Postcondition: The Manager holds no VMs.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
