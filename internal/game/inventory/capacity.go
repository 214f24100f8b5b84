package inventory

// Carried returns the total weight of the owned items.
func Carried(owned []Owned) float64 {
	var total float64
	for _, o := range owned {
		total += o.Def.Weight
	}
	return total
}

// Capacity is the carrying limit of a player: a base allowance plus any
// weight bonus from active stimulants.
//
// Postcondition: Never negative.
func Capacity(base, weightBonus float64) float64 {
	if c := base + weightBonus; c > 0 {
		return c
	}
	return 0
}

// Fits reports whether def can be added to owned without exceeding capacity.
//
// Precondition: def is non-nil.
func Fits(owned []Owned, def *ItemDef, capacity float64) bool {
	return Carried(owned)+def.Weight <= capacity
}

// HasRoom reports whether owned leaves any spare capacity.
func HasRoom(owned []Owned, capacity float64) bool {
	return Carried(owned) < capacity
}
