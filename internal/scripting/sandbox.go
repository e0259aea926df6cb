// Package scripting runs data-defined status tick scripts in sandboxed
// GopherLua VMs. It has no dependency on game domain packages; callers adapt
// its plain input/output structs to their own types.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps Lua opcodes per tick call when no override is
// configured.
const DefaultInstructionLimit = 100_000

// countingContext cancels itself after Done() has been observed limit times.
// GopherLua's main loop polls Done() once per opcode, so the counter is an
// exact opcode budget.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit opcodes.
//
// Precondition: limit > 0.
func newCountingContext(limit int) context.Context {
	base, cancel := context.WithCancel(context.Background())
	remaining := &atomic.Int64{}
	remaining.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: remaining,
	}
}

// newSandboxedState creates an LState with only the safe standard libraries
// loaded and the escape hatches removed. The caller owns the state and must
// Close it.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}
