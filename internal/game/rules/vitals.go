package rules

// Resource pool names.
const (
	ResourceChi      = "Chi"
	ResourceStamina  = "Stamina"
	ResourceGuile    = "Guile"
	ResourcePresence = "Presence"
	ResourceTactics  = "Tactics"
	ResourceInstinct = "Instinct"
)

// hpStats and composureStats are the two six-stat splits behind the derived
// vitals formulas.
var (
	hpStats = []Stat{
		StatEndurance, StatVitality, StatReflexes,
		StatLogic, StatAwareness, StatWillpower,
	}
	composureStats = []Stat{
		StatMight, StatFinesse, StatFortitude,
		StatKnowledge, StatIntuition, StatCharm,
	}
	// resourcePairs maps each pool to the two stats whose modifiers size it.
	resourcePairs = map[string][2]Stat{
		ResourceChi:      {StatFinesse, StatReflexes},
		ResourceStamina:  {StatEndurance, StatVitality},
		ResourceGuile:    {StatFinesse, StatKnowledge},
		ResourcePresence: {StatMight, StatCharm},
		ResourceTactics:  {StatAwareness, StatLogic},
		ResourceInstinct: {StatIntuition, StatWillpower},
	}
)

// Pool is a bounded resource pool.
type Pool struct {
	Current int
	Max     int
}

// Vitals holds the derived maximums for a combatant.
type Vitals struct {
	MaxHP        int
	MaxComposure int
	Resources    map[string]Pool
}

// BaseVitals derives maximum HP, maximum composure, and the six resource
// pools from level and attribute scores.
// HP and composure are 10 + level + the sum of their six stat modifiers,
// floored at 5. Each resource pool is 5 + two stat modifiers, floored at 1,
// and starts full.
func BaseVitals(level int, stats Stats) Vitals {
	maxHP := 10 + level
	for _, stat := range hpStats {
		maxHP += stats.Mod(stat)
	}
	if maxHP < 5 {
		maxHP = 5
	}

	maxComposure := 10 + level
	for _, stat := range composureStats {
		maxComposure += stats.Mod(stat)
	}
	if maxComposure < 5 {
		maxComposure = 5
	}

	resources := make(map[string]Pool, len(resourcePairs))
	for name, pair := range resourcePairs {
		max := 5 + stats.Mod(pair[0]) + stats.Mod(pair[1])
		if max < 1 {
			max = 1
		}
		resources[name] = Pool{Current: max, Max: max}
	}

	return Vitals{
		MaxHP:        maxHP,
		MaxComposure: maxComposure,
		Resources:    resources,
	}
}
