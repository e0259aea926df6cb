package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRunTick(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bleeding.lua", `
function on_tick(state)
  return {
    hp_delta = -2,
    message = state.status_id .. " drains " .. 2 .. " HP on round " .. state.round,
  }
end
`)

	runner, err := NewRunner(dir, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()
	assert.Equal(t, []string{"bleeding"}, runner.Scripts())

	result, err := runner.RunTick("bleeding", TickState{
		StatusID:  "bleeding",
		Round:     3,
		CurrentHP: 10,
		MaxHP:     14,
	})
	require.NoError(t, err)
	assert.Equal(t, -2, result.HPDelta)
	assert.Equal(t, "bleeding drains 2 HP on round 3", result.Message)
}

func TestRunTickScaledByMaxHP(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "regen.lua", `
function on_tick(state)
  return { hp_delta = math.floor(state.max_hp / 10) }
end
`)

	runner, err := NewRunner(dir, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	result, err := runner.RunTick("regen", TickState{CurrentHP: 5, MaxHP: 30})
	require.NoError(t, err)
	assert.Equal(t, 3, result.HPDelta)
}

func TestRunTickUnknownScript(t *testing.T) {
	runner, err := NewRunner(t.TempDir(), 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	_, err = runner.RunTick("missing", TickState{})
	assert.ErrorContains(t, err, "unknown tick script")
}

func TestRunTickMissingHook(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "noop.lua", `local x = 1`)

	runner, err := NewRunner(dir, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	_, err = runner.RunTick("noop", TickState{})
	assert.ErrorContains(t, err, "defines no on_tick")
}

func TestNewRunnerRejectsBrokenScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", `function on_tick(state) return {`)

	_, err := NewRunner(dir, 0, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestSandboxStripsEscapeHatches(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "probe.lua", `
function on_tick(state)
  if dofile or loadfile or load or require or io or os then
    return { hp_delta = 1 }
  end
  return { hp_delta = 0 }
end
`)

	runner, err := NewRunner(dir, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	result, err := runner.RunTick("probe", TickState{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.HPDelta)
}

func TestInstructionLimitStopsRunawayScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "spin.lua", `
function on_tick(state)
  while true do end
end
`)

	runner, err := NewRunner(dir, 5000, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	_, err = runner.RunTick("spin", TickState{})
	assert.Error(t, err)
}

func TestFreshBudgetPerCall(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "loop.lua", `
function on_tick(state)
  local total = 0
  for i = 1, 200 do total = total + i end
  return { hp_delta = 0 }
end
`)

	runner, err := NewRunner(dir, 2000, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer runner.Close()

	// Each call must succeed on its own budget, not share a dwindling one.
	for i := 0; i < 10; i++ {
		_, err := runner.RunTick("loop", TickState{})
		require.NoError(t, err)
	}
}
