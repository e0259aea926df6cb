package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// Zone is a live area effect inside an encounter. Its tile footprint is
// computed once at creation and never moves.
type Zone struct {
	ID        string
	Name      string
	SourceID  string // participant that created the zone
	CenterX   int
	CenterY   int
	Radius    int
	Tiles     map[[2]int]bool
	Triggers  []ruleset.ZoneTrigger
	Remaining int // rounds left; decremented at each round boundary
}

// chebyshev returns the Chebyshev (king-move) distance between two tiles.
func chebyshev(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// newRadiusZone creates a zone covering every tile within radius of the
// center, Chebyshev distance.
//
// Precondition: spec must declare shape "radius" with radius >= 0 and
// duration >= 1.
func newRadiusZone(name, sourceID string, centerX, centerY int, spec *ruleset.ZoneSpec) *Zone {
	tiles := make(map[[2]int]bool)
	for dx := -spec.Radius; dx <= spec.Radius; dx++ {
		for dy := -spec.Radius; dy <= spec.Radius; dy++ {
			tiles[[2]int{centerX + dx, centerY + dy}] = true
		}
	}
	return &Zone{
		ID:        uuid.New().String(),
		Name:      name,
		SourceID:  sourceID,
		CenterX:   centerX,
		CenterY:   centerY,
		Radius:    spec.Radius,
		Tiles:     tiles,
		Triggers:  spec.Triggers,
		Remaining: spec.Duration,
	}
}

// Contains reports whether (x, y) is inside the zone's footprint.
func (z *Zone) Contains(x, y int) bool {
	return z.Tiles[[2]int{x, y}]
}

// triggersFor returns the effects bound to the given trigger condition.
func (z *Zone) triggersFor(on string) []ruleset.Effect {
	var out []ruleset.Effect
	for _, t := range z.Triggers {
		if t.On == on {
			out = append(out, t.Effect)
		}
	}
	return out
}
