package recovery

import "math"

// tier is one rung of the dopamine ladder. Bounds are inclusive; max < 0 marks the open-ended tier.
type tier struct {
	key  string
	name string
	min  int
	max  int
}

const openEnded = -1

var tiers = [...]tier{
	{key: "initial_recovery", name: "Initial Recovery", min: 0, max: 7},
	{key: "stable_momentum", name: "Stable Momentum", min: 8, max: 30},
	{key: "consolidated_strength", name: "Consolidated Strength", min: 31, max: 90},
	{key: "neurological_mastery", name: "Neurological Mastery", min: 91, max: 365},
	{key: "legendary_dopamine", name: "Legendary Dopamine", min: 366, max: openEnded},
}

func (t tier) contains(days int) bool {
	if days < t.min {
		return false
	}
	return t.max == openEnded || days <= t.max
}

// substanceParams holds the clinical constants used for time recovered.
type substanceParams struct {
	baseMedicalDose  float64 // units per day the years-lost figure refers to
	yearsLostPerUnit float64
}

// paramsFor is exhaustive over SubstanceType; a new substance must be added here.
func paramsFor(st SubstanceType) (substanceParams, bool) {
	switch st {
	case Nicotine:
		return substanceParams{baseMedicalDose: 1, yearsLostPerUnit: 0.5}, true
	case Methamphetamine:
		return substanceParams{baseMedicalDose: 1, yearsLostPerUnit: 2}, true
	}
	return substanceParams{}, false
}

func basePoints(a ActivityType) (int, bool) {
	switch a {
	case HealthyCheckIn:
		return 10, true
	case Workout:
		return 20, true
	case WeeklyStreak:
		return 50, true
	}
	return 0, false
}

const (
	streakBonusThreshold = 7
	streakBonus          = 1.5

	// epleyDivisor is the rep count at which Epley doubles the lifted weight.
	epleyDivisor = 30.0
)

var defaultHorizons = [...]int{7, 30, 90, 365}

// DefaultHorizons returns the projection windows shown on the dashboard.
func DefaultHorizons() []int {
	out := make([]int, len(defaultHorizons))
	copy(out, defaultHorizons[:])
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
