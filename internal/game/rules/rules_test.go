package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fulcrum/internal/game/dice"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// scriptedSource feeds Intn from a fixed sequence of desired die faces.
type scriptedSource struct {
	faces  []int
	idx    int
	chance float64
}

func (s *scriptedSource) Intn(n int) int {
	face := s.faces[s.idx%len(s.faces)]
	s.idx++
	if face > n {
		face = n
	}
	return face - 1
}

func (s *scriptedSource) Float64() float64 { return s.chance }

func TestModifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{1, -5},
		{8, -1},
		{9, -1},
		{10, 0},
		{11, 0},
		{12, 1},
		{15, 2},
		{20, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rules.Modifier(tt.score), "score %d", tt.score)
	}
}

func TestModifierFloorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.IntRange(1, 30).Draw(t, "score")
		got := rules.Modifier(score)
		// floor((score-10)/2) without integer-division truncation toward zero
		want := (score - 10) / 2
		if (score-10)%2 != 0 && score < 10 {
			want--
		}
		require.Equal(t, want, got)
	})
}

func TestSkillMasteryBonus(t *testing.T) {
	assert.Equal(t, 0, rules.SkillMasteryBonus(0))
	assert.Equal(t, 0, rules.SkillMasteryBonus(2))
	assert.Equal(t, 1, rules.SkillMasteryBonus(3))
	assert.Equal(t, 1, rules.SkillMasteryBonus(5))
	assert.Equal(t, 2, rules.SkillMasteryBonus(6))
	assert.Equal(t, 0, rules.SkillMasteryBonus(-4))
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 1000, rules.XPForLevel(0))
	assert.Equal(t, 1000, rules.XPForLevel(1))
	assert.Equal(t, 5000, rules.XPForLevel(5))
}

func TestContestedCheckNaturalTwenty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		defBonus := rapid.IntRange(0, 50).Draw(t, "defBonus")
		src := &scriptedSource{faces: []int{20, 10}}
		result := rules.ContestedCheck(src,
			rules.AttackerInput{StatScore: 10},
			rules.DefenderInput{StatScore: 10, RollBonus: defBonus},
		)
		require.Equal(t, rules.OutcomeCriticalHit, result.Outcome)
	})
}

func TestContestedCheckNaturalOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atkBonus := rapid.IntRange(0, 50).Draw(t, "atkBonus")
		src := &scriptedSource{faces: []int{1, 10}}
		result := rules.ContestedCheck(src,
			rules.AttackerInput{StatScore: 10, RollBonus: atkBonus},
			rules.DefenderInput{StatScore: 10},
		)
		require.Equal(t, rules.OutcomeCriticalFumble, result.Outcome)
	})
}

func TestContestedCheckMargins(t *testing.T) {
	tests := []struct {
		name         string
		attackerFace int
		defenderFace int
		want         rules.Outcome
	}{
		{"solid hit at margin five", 15, 10, rules.OutcomeSolidHit},
		{"hit at margin zero", 10, 10, rules.OutcomeHit},
		{"miss below zero", 9, 10, rules.OutcomeMiss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{faces: []int{tt.attackerFace, tt.defenderFace}}
			result := rules.ContestedCheck(src,
				rules.AttackerInput{StatScore: 10},
				rules.DefenderInput{StatScore: 10},
			)
			assert.Equal(t, tt.want, result.Outcome)
			assert.Equal(t, tt.attackerFace-tt.defenderFace, result.Margin)
		})
	}
}

func TestContestedCheckAppliesWeaponPenalty(t *testing.T) {
	// Equal faces, but the attacker's weapon imposes -5 on the defender.
	src := &scriptedSource{faces: []int{10, 10}}
	result := rules.ContestedCheck(src,
		rules.AttackerInput{StatScore: 10},
		rules.DefenderInput{StatScore: 10, WeaponPenalty: 5},
	)
	assert.Equal(t, rules.OutcomeSolidHit, result.Outcome)
}

func TestDamageBreakdown(t *testing.T) {
	src := &scriptedSource{faces: []int{4, 5}}
	result, err := rules.Damage(src, rules.DamageInput{
		DamageDice:  "2d6",
		StatScore:   14, // +2
		DamageBonus: 1,
		DefenderDR:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, result.RollTotal)
	assert.Equal(t, 2, result.StatBonus)
	assert.Equal(t, 1, result.MiscBonus)
	assert.Equal(t, 12, result.Subtotal)
	assert.Equal(t, 3, result.DRApplied)
	assert.Equal(t, 9, result.FinalDamage)
}

func TestDamageDRIgnore(t *testing.T) {
	src := &scriptedSource{faces: []int{4}}
	result, err := rules.Damage(src, rules.DamageInput{
		DamageDice: "1d6",
		StatScore:  10,
		DRIgnore:   2,
		DefenderDR: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DRApplied)
	assert.Equal(t, 3, result.FinalDamage)
}

func TestDamageMalformedDice(t *testing.T) {
	result, err := rules.Damage(dice.NewCryptoSource(), rules.DamageInput{
		DamageDice: "banana",
		DefenderDR: 2,
	})
	assert.Error(t, err)
	assert.Equal(t, 0, result.FinalDamage)
}

func TestDamageZeroExpression(t *testing.T) {
	result, err := rules.Damage(dice.NewCryptoSource(), rules.DamageInput{
		DamageDice: "0",
		StatScore:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RollTotal)
	assert.Equal(t, 0, result.FinalDamage)
}

func TestDamageNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		statScore := rapid.IntRange(1, 20).Draw(t, "statScore")
		bonus := rapid.IntRange(0, 10).Draw(t, "bonus")
		penalty := rapid.IntRange(0, 10).Draw(t, "penalty")
		dr := rapid.IntRange(0, 30).Draw(t, "dr")
		ignore := rapid.IntRange(0, 10).Draw(t, "ignore")

		result, err := rules.Damage(dice.NewCryptoSource(), rules.DamageInput{
			DamageDice:    "2d6",
			StatScore:     statScore,
			DamageBonus:   bonus,
			DamagePenalty: penalty,
			DRIgnore:      ignore,
			DefenderDR:    dr,
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.FinalDamage, 0)
		require.LessOrEqual(t, result.DRApplied, result.Subtotal)
	})
}

func TestInitiative(t *testing.T) {
	src := &scriptedSource{faces: []int{12}}
	stats := rules.Stats{
		rules.StatEndurance: 14, // +2
		rules.StatReflexes:  16, // +3
		rules.StatMight:     20, // not an initiative stat
	}
	result := rules.Initiative(src, stats)
	assert.Equal(t, 12, result.Roll)
	// 12 + 2 + 3, remaining four stats default to 10 (+0)
	assert.Equal(t, 17, result.Total)
	assert.Len(t, result.Modifiers, 6)
	assert.NotContains(t, result.Modifiers, rules.StatMight)
}

func TestSkillCheck(t *testing.T) {
	src := &scriptedSource{faces: []int{11}}
	result := rules.SkillCheck(src, 2, 3, 15)
	assert.True(t, result.Success)
	assert.Equal(t, 16, result.Total)
	assert.False(t, result.CriticalSuccess)

	src = &scriptedSource{faces: []int{20}}
	result = rules.SkillCheck(src, 0, 0, 30)
	assert.True(t, result.CriticalSuccess)
	assert.False(t, result.Success)
}

func TestAbilityCheckDC(t *testing.T) {
	assert.Equal(t, 12, rules.AbilityCheckDC(1))
	assert.Equal(t, 12, rules.AbilityCheckDC(3))
	assert.Equal(t, 14, rules.AbilityCheckDC(4))
	assert.Equal(t, 16, rules.AbilityCheckDC(7))
	assert.Equal(t, 20, rules.AbilityCheckDC(10))
}

func TestBaseVitals(t *testing.T) {
	// All stats at 10: HP = 10 + level, composure = 10 + level, pools = 5.
	vitals := rules.BaseVitals(3, rules.Stats{})
	assert.Equal(t, 13, vitals.MaxHP)
	assert.Equal(t, 13, vitals.MaxComposure)
	require.Len(t, vitals.Resources, 6)
	for name, pool := range vitals.Resources {
		assert.Equal(t, 5, pool.Max, name)
		assert.Equal(t, pool.Max, pool.Current, name)
	}
}

func TestBaseVitalsFloors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, 20).Draw(t, "level")
		stats := rules.Stats{}
		for _, stat := range rules.AllStats {
			stats[stat] = rapid.IntRange(1, 20).Draw(t, string(stat))
		}

		vitals := rules.BaseVitals(level, stats)
		require.GreaterOrEqual(t, vitals.MaxHP, 5)
		require.GreaterOrEqual(t, vitals.MaxComposure, 5)
		for _, pool := range vitals.Resources {
			require.GreaterOrEqual(t, pool.Max, 1)
		}
	})
}

func TestBaseVitalsPoolPairing(t *testing.T) {
	stats := rules.Stats{
		rules.StatFinesse:  14, // +2
		rules.StatReflexes: 16, // +3
	}
	vitals := rules.BaseVitals(1, stats)
	assert.Equal(t, 10, vitals.Resources[rules.ResourceChi].Max)
	assert.Equal(t, 7, vitals.Resources[rules.ResourceGuile].Max)
	assert.Equal(t, 5, vitals.Resources[rules.ResourceStamina].Max)
}
