package models

import (
	"errors"
	"time"
)

// User is an account holder. PassHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	PassHash     []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SubstanceProfile is a user's abstinence configuration. One per user.
type SubstanceProfile struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	SubstanceType         string    `json:"substance_type"`
	Unit                  string    `json:"unit"`
	UnitPrice             float64   `json:"unit_price"`
	Currency              string    `json:"currency"`
	AbstinenceStartDate   string    `json:"abstinence_start_date"` // YYYY-MM-DD
	PriorDailyConsumption float64   `json:"prior_daily_consumption"`
	ConversionFactor      *float64  `json:"conversion_factor,omitempty"`
	CustomSettings        string    `json:"custom_settings,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Exercise is one movement inside a workout.
type Exercise struct {
	Name               string   `json:"name"`
	Sets               int      `json:"sets"`
	Reps               int      `json:"reps"`
	RPE                int      `json:"rpe,omitempty"` // rate of perceived exertion, 1..10; 0 when not recorded
	Weight             float64  `json:"weight,omitempty"`
	EstimatedOneRepMax *float64 `json:"estimated_one_rep_max,omitempty"`
}

type Workout struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Date              string     `json:"date"` // YYYY-MM-DD
	Exercises         []Exercise `json:"exercises"`
	EstimatedCalories *int       `json:"estimated_calories,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Checkin records mood and craving on a 1..10 scale.
type Checkin struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	At         time.Time          `json:"at"`
	Mood       int                `json:"mood"`
	Craving    int                `json:"craving"`
	Notes      string             `json:"notes,omitempty"`
	Biometrics map[string]float64 `json:"biometrics,omitempty"` // heart_rate, steps, sleep_hours, ...
	CreatedAt  time.Time          `json:"created_at"`
}

// RelapseLog records a relapse. ResetStreak marks it as a new streak reference point.
type RelapseLog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	At             time.Time `json:"at"`
	TriggerTags    []string  `json:"trigger_tags,omitempty"`
	Context        string    `json:"context,omitempty"`
	EconomicImpact float64   `json:"economic_impact,omitempty"`
	ResetStreak    bool      `json:"reset_streak"`
	CreatedAt      time.Time `json:"created_at"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

// ErrNotFound is returned by stores when an update or delete targets a missing record.
var ErrNotFound = errors.New("not found")
