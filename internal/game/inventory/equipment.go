package inventory

// Equipment is the set of gear a combatant carries into an encounter.
// WeaponID and ArmorID reference registry definitions; empty references
// resolve to the Unarmed/Unarmored fallbacks. Items maps item ID to carried
// quantity.
type Equipment struct {
	WeaponID string
	ArmorID  string
	Items    map[string]int
}

// NewEquipment creates an Equipment with an empty item bag.
func NewEquipment(weaponID, armorID string) *Equipment {
	return &Equipment{
		WeaponID: weaponID,
		ArmorID:  armorID,
		Items:    make(map[string]int),
	}
}

// AddItem adds qty of itemID to the bag.
//
// Precondition: qty > 0.
func (e *Equipment) AddItem(itemID string, qty int) {
	if e.Items == nil {
		e.Items = make(map[string]int)
	}
	e.Items[itemID] += qty
}

// ConsumeItem removes one of itemID from the bag. It reports whether an item
// was available to consume.
func (e *Equipment) ConsumeItem(itemID string) bool {
	if e.Items[itemID] < 1 {
		return false
	}
	e.Items[itemID]--
	if e.Items[itemID] == 0 {
		delete(e.Items, itemID)
	}
	return true
}

// Count returns the carried quantity of itemID.
func (e *Equipment) Count(itemID string) int {
	return e.Items[itemID]
}
