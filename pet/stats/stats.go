package stats

import "math"

// CoreStats holds the pet's bounded needs plus the sea-glass currency.
// The four need fields live in [0,100] with one decimal of precision;
// sea-glass has a 0 floor and no ceiling.
type CoreStats struct {
	Hunger    float64 `json:"hunger"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
	Clean     float64 `json:"clean"`
	SeaGlass  float64 `json:"seaGlass"`
}

// Patch is a partial stats update; nil fields keep the current value.
type Patch struct {
	Hunger    *float64 `json:"hunger,omitempty"`
	Happiness *float64 `json:"happiness,omitempty"`
	Energy    *float64 `json:"energy,omitempty"`
	Clean     *float64 `json:"clean,omitempty"`
	SeaGlass  *float64 `json:"seaGlass,omitempty"`
}

// Rates is the per-hour decay applied to each need while the pet is
// unattended. Sea-glass never decays.
type Rates struct {
	Hunger    float64
	Happiness float64
	Energy    float64
	Clean     float64
}

// Defaults returns the stats of a freshly adopted pet.
func Defaults() CoreStats {
	return CoreStats{Hunger: 80, Happiness: 85, Energy: 75, Clean: 80, SeaGlass: 0}
}

// Clamp bounds a need value to [0,100] at one decimal of precision.
// Non-finite input fails closed to 0.
func Clamp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return math.Round(x*10) / 10
}

// ClampCurrency bounds sea-glass to a 0 floor. No ceiling, no rounding.
func ClampCurrency(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return 0
	}
	return x
}

// Sanitize re-clamps every field of s. Every write path runs through
// this so no consumer can observe an out-of-range value.
func Sanitize(s CoreStats) CoreStats {
	return CoreStats{
		Hunger:    Clamp(s.Hunger),
		Happiness: Clamp(s.Happiness),
		Energy:    Clamp(s.Energy),
		Clean:     Clamp(s.Clean),
		SeaGlass:  ClampCurrency(s.SeaGlass),
	}
}

// Merge overlays the non-nil fields of p onto current and re-clamps.
// Idempotent: Merge(Merge(s, p), p) == Merge(s, p).
func Merge(current CoreStats, p Patch) CoreStats {
	out := current
	if p.Hunger != nil {
		out.Hunger = *p.Hunger
	}
	if p.Happiness != nil {
		out.Happiness = *p.Happiness
	}
	if p.Energy != nil {
		out.Energy = *p.Energy
	}
	if p.Clean != nil {
		out.Clean = *p.Clean
	}
	if p.SeaGlass != nil {
		out.SeaGlass = *p.SeaGlass
	}
	return Sanitize(out)
}

// ApplyDecay returns s after hoursAway of unattended decay at the given
// rates. hoursAway <= 0 returns an unchanged copy. Sea-glass passes
// through untouched.
func ApplyDecay(s CoreStats, hoursAway float64, r Rates) CoreStats {
	if hoursAway <= 0 || math.IsNaN(hoursAway) {
		return s
	}
	return CoreStats{
		Hunger:    Clamp(s.Hunger - r.Hunger*hoursAway),
		Happiness: Clamp(s.Happiness - r.Happiness*hoursAway),
		Energy:    Clamp(s.Energy - r.Energy*hoursAway),
		Clean:     Clamp(s.Clean - r.Clean*hoursAway),
		SeaGlass:  s.SeaGlass,
	}
}

// Float returns a pointer to v, for building a Patch inline.
func Float(v float64) *float64 { return &v }
