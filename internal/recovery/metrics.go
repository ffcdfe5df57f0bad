// Package recovery derives motivational recovery metrics from a substance profile.
// Every function is pure: time-dependent calculations take "now" as an argument.
package recovery

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for start dates and workout dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// ElapsedDays returns floor((now - from) / 24h). Negative spans floor toward -inf.
func ElapsedDays(from, now time.Time) int {
	d := now.Sub(from)
	days := d / day
	if d%day < 0 {
		days--
	}
	return int(days)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

type savingsOptions struct {
	conversionFactor    float64
	conversionFactorSet bool
}

type SavingsOption func(*savingsOptions)

// WithConversionFactor converts consumed units into the quantity unit reported as avoided.
func WithConversionFactor(f float64) SavingsOption {
	return func(o *savingsOptions) {
		o.conversionFactor = f
		o.conversionFactorSet = true
	}
}

// ValidateProfile checks the numeric and date preconditions of ComputeSavingsMetrics.
func ValidateProfile(p Profile, opts ...SavingsOption) error {
	_, err := validate(p, opts)
	return err
}

func validate(p Profile, opts []SavingsOption) (savingsOptions, error) {
	o := savingsOptions{conversionFactor: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := paramsFor(p.SubstanceType); !ok {
		return o, &ValidationError{Field: "substance_type", Reason: "unknown substance type"}
	}
	if _, err := ParseDate("abstinence_start_date", p.AbstinenceStartDate); err != nil {
		return o, err
	}
	if !finite(p.PriorDailyConsumption) || p.PriorDailyConsumption < 0 {
		return o, &ValidationError{Field: "prior_daily_consumption", Reason: "must be a finite number >= 0"}
	}
	if !finite(p.UnitPrice) || p.UnitPrice < 0 {
		return o, &ValidationError{Field: "unit_price", Reason: "must be a finite number >= 0"}
	}
	if o.conversionFactorSet && (!finite(o.conversionFactor) || o.conversionFactor <= 0) {
		return o, &ValidationError{Field: "conversion_factor", Reason: "must be a finite number > 0"}
	}
	return o, nil
}

// ComputeSavingsMetrics derives money saved, quantity avoided and years of life recovered
// since the abstinence start date. A start date after now yields negative values.
func ComputeSavingsMetrics(p Profile, now time.Time, opts ...SavingsOption) (SavingsMetrics, error) {
	o, err := validate(p, opts)
	if err != nil {
		return SavingsMetrics{}, err
	}
	start, _ := ParseDate("abstinence_start_date", p.AbstinenceStartDate)
	params, _ := paramsFor(p.SubstanceType)

	days := ElapsedDays(start, now)
	d := decimal.NewFromInt(int64(days))
	consumption := decimal.NewFromFloat(p.PriorDailyConsumption)

	money := d.Mul(consumption).Mul(decimal.NewFromFloat(p.UnitPrice))
	quantity := d.Mul(consumption).Mul(decimal.NewFromFloat(o.conversionFactor))
	years := quantity.
		Div(decimal.NewFromFloat(params.baseMedicalDose)).
		Mul(decimal.NewFromFloat(params.yearsLostPerUnit))

	return SavingsMetrics{
		DaysSinceReference: days,
		MoneySaved:         money.Round(2).InexactFloat64(),
		QuantityAvoided:    quantity.Round(2).InexactFloat64(),
		TimeRecovered:      years.Round(2).InexactFloat64(),
		Currency:           p.Currency,
	}, nil
}

// ComputeDopamineLevel classifies elapsed days on the dopamine ladder.
// Days matching no tier (negative) fall back to the first tier.
func ComputeDopamineLevel(days int) DopamineLevel {
	current := tiers[0]
	for _, t := range tiers {
		if t.contains(days) {
			current = t
			break
		}
	}
	lvl := DopamineLevel{Key: current.key, Name: current.name, MinDays: current.min, MaxDays: current.max}
	if current.max == openEnded {
		lvl.MaxDays = days
		lvl.OpenEnded = true
		lvl.ProgressPercent = 100
		return lvl
	}
	progress := math.Round(float64(days-current.min) / float64(current.max-current.min) * 100)
	lvl.ProgressPercent = int(math.Max(0, math.Min(100, progress)))
	return lvl
}

// NextDopamineLevel returns the tier after the one days falls in, or false at the top of the ladder.
func NextDopamineLevel(days int) (DopamineLevel, bool) {
	current := ComputeDopamineLevel(days)
	for i, t := range tiers {
		if t.key == current.Key && i+1 < len(tiers) {
			next := tiers[i+1]
			return DopamineLevel{Key: next.key, Name: next.name, MinDays: next.min, MaxDays: next.max, OpenEnded: next.max == openEnded}, true
		}
	}
	return DopamineLevel{}, false
}

// ReachedLevels lists the tiers whose lower bound days has reached, in ladder order.
func ReachedLevels(days int) []DopamineLevel {
	out := []DopamineLevel{}
	for _, t := range tiers {
		if days >= t.min {
			out = append(out, DopamineLevel{Key: t.key, Name: t.name, MinDays: t.min, MaxDays: t.max, OpenEnded: t.max == openEnded})
		}
	}
	return out
}

// ComputeOneRepMax estimates a single-repetition max with the Epley formula. Zero reps yields
// the weight itself. Negative inputs are left to the caller.
func ComputeOneRepMax(weight float64, reps int) (OneRepMax, error) {
	if !finite(weight) {
		return OneRepMax{}, &ValidationError{Field: "weight", Reason: "must be a finite number"}
	}
	orm := weight * (1 + float64(reps)/epleyDivisor)
	return OneRepMax{Weight: weight, Reps: reps, EstimatedOneRepMax: Round2(orm)}, nil
}

// ComputeGamificationPoints awards the base points of an activity, multiplied by 1.5 once the
// streak is longer than a week.
func ComputeGamificationPoints(activity ActivityType, streakDays int) (GamificationPoints, error) {
	base, ok := basePoints(activity)
	if !ok {
		return GamificationPoints{}, &ValidationError{Field: "activity_type", Reason: "unknown activity type"}
	}
	multiplier := 1.0
	if streakDays > streakBonusThreshold {
		multiplier = streakBonus
	}
	return GamificationPoints{
		Activity:         activity,
		DailyPoints:      base,
		StreakMultiplier: multiplier,
		TotalPoints:      int(math.Round(float64(base) * multiplier)),
	}, nil
}

// ComputeStreak counts whole days since the last relapse, or since start when there is none.
// The result is never negative.
func ComputeStreak(start time.Time, lastRelapse *time.Time, now time.Time) int {
	ref := start
	if lastRelapse != nil {
		ref = *lastRelapse
	}
	if days := ElapsedDays(ref, now); days > 0 {
		return days
	}
	return 0
}
