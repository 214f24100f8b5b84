package condition

// Modifiers is a flat bundle of percentage-point combat modifiers.
//
// DamageBonus scales outgoing damage, AccuracyBonus adds to hit accuracy,
// WeightBonus adds carrying capacity, FireRate scales attack speed, and
// DamageReduction scales incoming damage. Negative DamageReduction means the
// bearer takes more damage.
type Modifiers struct {
	DamageBonus     float64 `yaml:"damage_bonus"`
	AccuracyBonus   float64 `yaml:"accuracy_bonus"`
	WeightBonus     float64 `yaml:"weight_bonus"`
	FireRate        float64 `yaml:"fire_rate"`
	DamageReduction float64 `yaml:"damage_reduction"`
}

// Add returns the field-wise sum of m and o.
func (m Modifiers) Add(o Modifiers) Modifiers {
	return Modifiers{
		DamageBonus:     m.DamageBonus + o.DamageBonus,
		AccuracyBonus:   m.AccuracyBonus + o.AccuracyBonus,
		WeightBonus:     m.WeightBonus + o.WeightBonus,
		FireRate:        m.FireRate + o.FireRate,
		DamageReduction: m.DamageReduction + o.DamageReduction,
	}
}

// IsZero reports whether every field is zero.
func (m Modifiers) IsZero() bool {
	return m == Modifiers{}
}

// OutgoingMultiplier converts DamageBonus to a damage multiplier.
//
// Postcondition: Never negative.
func (m Modifiers) OutgoingMultiplier() float64 {
	return clampMultiplier(1 + m.DamageBonus/100)
}

// IncomingMultiplier converts DamageReduction to a damage-taken multiplier.
//
// Postcondition: Never negative.
func (m Modifiers) IncomingMultiplier() float64 {
	return clampMultiplier(1 - m.DamageReduction/100)
}

// SpeedMultiplier converts FireRate to an attack speed multiplier.
//
// Postcondition: Never negative.
func (m Modifiers) SpeedMultiplier() float64 {
	return clampMultiplier(1 + m.FireRate/100)
}

func clampMultiplier(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Aggregate sums every stimulant bundle and every active affliction's fixed
// contribution into one Modifiers value.
//
// It is a pure function and must be called again whenever stimulants or
// afflictions change; results are never cached.
//
// Postcondition: Aggregate(nil, nil) is the zero Modifiers.
func Aggregate(stimulants []Modifiers, afflictions *Set) Modifiers {
	var out Modifiers
	for _, s := range stimulants {
		out = out.Add(s)
	}
	if afflictions != nil {
		for _, a := range afflictions.All() {
			out = out.Add(a.Effect())
		}
	}
	return out
}
