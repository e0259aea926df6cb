package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// tickHook is the global function every tick script must define.
const tickHook = "on_tick"

// TickState is the snapshot handed to a tick script as its single argument.
type TickState struct {
	StatusID  string
	Round     int
	CurrentHP int
	MaxHP     int
}

// TickResult is what a tick script returns: an HP delta (negative for
// damage) and an optional combat log message.
type TickResult struct {
	HPDelta int
	Message string
}

// Runner owns one sandboxed VM per loaded script file, keyed by the file
// name without its extension. Each RunTick call gets a fresh opcode budget.
//
// Runner is safe for concurrent RunTick; calls are serialized because the
// VMs are single-threaded.
type Runner struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limit  int
	logger *zap.Logger
}

// NewRunner loads every *.lua file under scriptDir into its own sandboxed
// VM. A script must define a global on_tick(state) function; loading a file
// that fails to parse is an error.
//
// Precondition: logger must be non-nil; instLimit <= 0 selects the default.
func NewRunner(scriptDir string, instLimit int, logger *zap.Logger) (*Runner, error) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	r := &Runner{
		states: make(map[string]*lua.LState),
		limit:  instLimit,
		logger: logger,
	}

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		path := filepath.Join(scriptDir, entry.Name())

		L := newSandboxedState()
		L.SetContext(newCountingContext(r.limit))
		if err := L.DoFile(path); err != nil {
			L.Close()
			r.Close()
			return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		r.states[name] = L
		logger.Debug("tick script loaded", zap.String("script", name))
	}

	return r, nil
}

// Scripts returns the names of all loaded scripts.
func (r *Runner) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.states))
	for name := range r.states {
		names = append(names, name)
	}
	return names
}

// RunTick calls the named script's on_tick hook with the given state.
// A missing script or hook is an error; a Lua runtime error (including an
// exhausted opcode budget) is returned to the caller, who is expected to
// log it and carry on.
func (r *Runner) RunTick(script string, state TickState) (TickResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	L, ok := r.states[script]
	if !ok {
		return TickResult{}, fmt.Errorf("scripting: unknown tick script %q", script)
	}

	// Fresh opcode budget per call.
	L.SetContext(newCountingContext(r.limit))

	fn := L.GetGlobal(tickHook)
	if fn == lua.LNil {
		return TickResult{}, fmt.Errorf("scripting: script %q defines no %s", script, tickHook)
	}

	arg := L.NewTable()
	L.SetField(arg, "status_id", lua.LString(state.StatusID))
	L.SetField(arg, "round", lua.LNumber(state.Round))
	L.SetField(arg, "current_hp", lua.LNumber(state.CurrentHP))
	L.SetField(arg, "max_hp", lua.LNumber(state.MaxHP))

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
		return TickResult{}, fmt.Errorf("scripting: %s in %q: %w", tickHook, script, err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	result := TickResult{}
	if table, ok := ret.(*lua.LTable); ok {
		if delta, ok := L.GetField(table, "hp_delta").(lua.LNumber); ok {
			result.HPDelta = int(delta)
		}
		if msg, ok := L.GetField(table, "message").(lua.LString); ok {
			result.Message = string(msg)
		}
	}
	return result, nil
}

// Close shuts down every VM.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, L := range r.states {
		L.Close()
		delete(r.states, name)
	}
}
