package recovery

import (
	"fmt"
	"strings"
)

// SubstanceType is the substance a user is abstaining from.
type SubstanceType string

const (
	Nicotine        SubstanceType = "nicotine"
	Methamphetamine SubstanceType = "methamphetamine"
)

// ParseSubstanceType accepts the canonical identifiers and the legacy Spanish ones.
func ParseSubstanceType(s string) (SubstanceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nicotine", "nicotina":
		return Nicotine, nil
	case "methamphetamine", "metanfetamina":
		return Methamphetamine, nil
	}
	return "", &ValidationError{Field: "substance_type", Reason: fmt.Sprintf("unknown substance type %q", s)}
}

// ActivityType identifies an action that earns gamification points.
type ActivityType string

const (
	HealthyCheckIn ActivityType = "healthy_check_in"
	Workout        ActivityType = "workout"
	WeeklyStreak   ActivityType = "weekly_streak"
)

func ParseActivityType(s string) (ActivityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "healthy_check_in", "check-in-saludable":
		return HealthyCheckIn, nil
	case "workout":
		return Workout, nil
	case "weekly_streak", "streak-semanal":
		return WeeklyStreak, nil
	}
	return "", &ValidationError{Field: "activity_type", Reason: fmt.Sprintf("unknown activity type %q", s)}
}

// Profile is the substance-tracking configuration the savings metrics are derived from.
type Profile struct {
	SubstanceType         SubstanceType
	Unit                  string
	UnitPrice             float64
	Currency              string
	AbstinenceStartDate   string // YYYY-MM-DD
	PriorDailyConsumption float64
}

type SavingsMetrics struct {
	DaysSinceReference int     `json:"days_since_reference"`
	MoneySaved         float64 `json:"money_saved"`
	QuantityAvoided    float64 `json:"quantity_avoided"`
	TimeRecovered      float64 `json:"time_recovered"`
	Currency           string  `json:"currency"`
}

type DopamineLevel struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	MinDays         int    `json:"min_days"`
	MaxDays         int    `json:"max_days"`
	OpenEnded       bool   `json:"open_ended,omitempty"`
	ProgressPercent int    `json:"progress_percent"`
}

type OneRepMax struct {
	Weight             float64 `json:"weight"`
	Reps               int     `json:"reps"`
	EstimatedOneRepMax float64 `json:"estimated_one_rep_max"`
}

type GamificationPoints struct {
	Activity         ActivityType `json:"activity"`
	DailyPoints      int          `json:"daily_points"`
	StreakMultiplier float64      `json:"streak_multiplier"`
	TotalPoints      int          `json:"total_points"`
}

// ValidationError reports an input that violates a calculation precondition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
