package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fulcrum/internal/game/dice"
)

// fixedSource returns values from a fixed sequence, cycling when exhausted.
type fixedSource struct {
	values []int
	idx    int
	chance float64
}

func (f *fixedSource) Intn(n int) int {
	v := f.values[f.idx%len(f.values)]
	f.idx++
	if v >= n {
		v = n - 1
	}
	return v
}

func (f *fixedSource) Float64() float64 { return f.chance }

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		count    int
		sides    int
		modifier int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
		{"1d12+0", 1, 12, 0},
		{"D20", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := dice.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.count, e.Count)
			assert.Equal(t, tt.sides, e.Sides)
			assert.Equal(t, tt.modifier, e.Modifier)
			assert.False(t, e.Zero)
		})
	}
}

func TestParseZero(t *testing.T) {
	e, err := dice.Parse("0")
	require.NoError(t, err)
	assert.True(t, e.Zero)

	src := &fixedSource{values: []int{5}}
	result := dice.Roll(e, src)
	assert.Equal(t, 0, result.Total())
	assert.Empty(t, result.Dice)
}

func TestParseErrors(t *testing.T) {
	exprs := []string{"", "2x6", "0d6", "-1d6", "2d1", "2d", "2d6+abc", "abc"}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := dice.Parse(expr)
			assert.Error(t, err)
		})
	}
}

func TestRollUsesEveryDie(t *testing.T) {
	src := &fixedSource{values: []int{3, 5}} // rolls become 4 and 6
	result, err := dice.RollExpr("2d6+3", src)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6}, result.Dice)
	assert.Equal(t, 3, result.Modifier)
	assert.Equal(t, 13, result.Total())
}

func TestRollResultString(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(t, "count")
		sides := rapid.IntRange(2, 100).Draw(t, "sides")
		modifier := rapid.IntRange(-10, 10).Draw(t, "modifier")

		expr := dice.Expression{Count: count, Sides: sides, Modifier: modifier}
		result := dice.Roll(expr, dice.NewCryptoSource())

		require.Len(t, result.Dice, count)
		for _, d := range result.Dice {
			require.GreaterOrEqual(t, d, 1)
			require.LessOrEqual(t, d, sides)
		}
		require.GreaterOrEqual(t, result.Total(), count+modifier)
		require.LessOrEqual(t, result.Total(), count*sides+modifier)
	})
}

func TestCryptoSourceFloat64Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestD20Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := dice.D20(src)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}
