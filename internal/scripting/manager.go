package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/game/dice"
)

// ErrNoScript is returned when a hook is called on a script that was never
// loaded.
var ErrNoScript = errors.New("scripting: script not loaded")

// vm is one loaded script. LStates are single-threaded so calls serialize on mu.
type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed VM per script and dispatches hook calls to them.
// It is safe for concurrent use; calls into the same script serialize.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
	limit  int
}

// NewManager creates a Manager. instLimit <= 0 uses DefaultInstructionLimit.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{vms: make(map[string]*vm), roller: roller, logger: logger, limit: instLimit}
}

// LoadDir loads every *.lua file in dir in lexicographic order, each into its
// own VM named after the file, e.g. "goblin.lua".
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		if err := m.LoadScript(name, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadScript executes the file at path in a fresh sandbox registered under
// name, replacing any previous script of that name.
func (m *Manager) LoadScript(name, path string) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	ctx, cancel := withInstructionLimit(context.Background(), m.limit)
	L.SetContext(ctx)
	err := L.DoFile(path)
	cancel()
	L.RemoveContext()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.vms[name]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[name] = &vm{L: L}
	m.logger.Debug("scripting: loaded script", zap.String("script", name), zap.String("path", path))
	return nil
}

// Has reports whether a script named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// CallHook calls the global function hook of script with the arguments built
// by args. It returns (LNil, nil) when the hook is not defined. Lua runtime
// errors, including exceeding the instruction limit or cancellation of ctx,
// are logged at Warn level and yield (LNil, nil).
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, script, hook string, args func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[script]
	m.mu.RUnlock()
	if !ok {
		return lua.LNil, fmt.Errorf("%w: %q", ErrNoScript, script)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	var argv []lua.LValue
	if args != nil {
		argv = args(L)
	}

	callCtx, cancel := withInstructionLimit(ctx, m.limit)
	defer cancel()
	L.SetContext(callCtx)
	defer L.RemoveContext()

	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, argv...); err != nil {
		L.SetTop(top)
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, name)
	}
}
