package services

import (
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
	"github.com/soaringjerry/NeuroReclaim/internal/recovery"
)

// MetricsStore is the read side the dashboard is assembled from.
type MetricsStore interface {
	GetProfileByUser(userID string) (*models.SubstanceProfile, error)
	ListCheckins(userID string) ([]*models.Checkin, error)
	ListWorkouts(userID string) ([]*models.Workout, error)
	ListRelapses(userID string) ([]*models.RelapseLog, error)
}

type MetricsService struct {
	store MetricsStore
	now   func() time.Time
}

func NewMetricsService(store MetricsStore) *MetricsService {
	return &MetricsService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Now returns the service clock.
func (s *MetricsService) Now() time.Time { return s.now() }

type GamificationState struct {
	TotalPoints     int                      `json:"total_points"`
	HealthyCheckins int                      `json:"healthy_checkins"`
	Workouts        int                      `json:"workouts"`
	WeeklyStreaks   int                      `json:"weekly_streaks"`
	Badges          []recovery.DopamineLevel `json:"badges"`
	NextLevel       *recovery.DopamineLevel  `json:"next_level,omitempty"`
	Progress        int                      `json:"progress"`
}

type Dashboard struct {
	Profile       *models.SubstanceProfile `json:"profile"`
	Savings       recovery.SavingsMetrics  `json:"savings"`
	DailySavings  float64                  `json:"daily_savings"`
	Projections   recovery.Projection      `json:"projections"`
	StreakDays    int                      `json:"streak_days"`
	DopamineLevel recovery.DopamineLevel   `json:"dopamine_level"`
	Gamification  GamificationState        `json:"gamification"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// Dashboard assembles every metric for the user as of now.
func (s *MetricsService) Dashboard(userID string, now time.Time) (*Dashboard, error) {
	p, err := s.store.GetProfileByUser(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("substance config not found")
	}
	rp, opts, err := engineProfile(p)
	if err != nil {
		return nil, fromValidation(err)
	}
	savings, err := recovery.ComputeSavingsMetrics(rp, now, opts...)
	if err != nil {
		return nil, fromValidation(err)
	}
	daily := rp.PriorDailyConsumption * rp.UnitPrice
	projections, err := recovery.ProjectSavings(daily, recovery.DefaultHorizons())
	if err != nil {
		return nil, fromValidation(err)
	}
	start, _ := recovery.ParseDate("abstinence_start_date", rp.AbstinenceStartDate)

	relapses, err := s.store.ListRelapses(userID)
	if err != nil {
		return nil, err
	}
	streak := recovery.ComputeStreak(start, lastResetBefore(relapses, start, now), now)
	streakAt := func(t time.Time) int {
		return recovery.ComputeStreak(start, lastResetBefore(relapses, start, t), t)
	}

	game := GamificationState{}
	checkins, err := s.store.ListCheckins(userID)
	if err != nil {
		return nil, err
	}
	for _, c := range checkins {
		if c.At.After(now) || !IsHealthy(c) {
			continue
		}
		pts, _ := recovery.ComputeGamificationPoints(recovery.HealthyCheckIn, streakAt(c.At))
		game.TotalPoints += pts.TotalPoints
		game.HealthyCheckins++
	}
	workouts, err := s.store.ListWorkouts(userID)
	if err != nil {
		return nil, err
	}
	for _, w := range workouts {
		wt, err := recovery.ParseDate("date", w.Date)
		if err != nil || wt.After(now) {
			continue
		}
		pts, _ := recovery.ComputeGamificationPoints(recovery.Workout, streakAt(wt))
		game.TotalPoints += pts.TotalPoints
		game.Workouts++
	}
	for milestone := 7; milestone <= streak; milestone += 7 {
		pts, _ := recovery.ComputeGamificationPoints(recovery.WeeklyStreak, milestone)
		game.TotalPoints += pts.TotalPoints
		game.WeeklyStreaks++
	}

	days := savings.DaysSinceReference
	level := recovery.ComputeDopamineLevel(days)
	game.Badges = recovery.ReachedLevels(days)
	game.Progress = level.ProgressPercent
	if next, ok := recovery.NextDopamineLevel(days); ok {
		game.NextLevel = &next
	}

	return &Dashboard{
		Profile:       p,
		Savings:       savings,
		DailySavings:  recovery.Round2(daily),
		Projections:   projections,
		StreakDays:    streak,
		DopamineLevel: level,
		Gamification:  game,
		GeneratedAt:   now,
	}, nil
}

// Projections projects the user's daily savings over the given horizons, or the default ones.
func (s *MetricsService) Projections(userID string, horizons []int) (recovery.Projection, error) {
	p, err := s.store.GetProfileByUser(userID)
	if err != nil {
		return recovery.Projection{}, err
	}
	if p == nil {
		return recovery.Projection{}, NewNotFoundError("substance config not found")
	}
	if len(horizons) == 0 {
		horizons = recovery.DefaultHorizons()
	}
	for _, h := range horizons {
		if h < 0 {
			return recovery.Projection{}, NewFieldError("days", "must be >= 0")
		}
	}
	proj, err := recovery.ProjectSavings(p.PriorDailyConsumption*p.UnitPrice, horizons)
	if err != nil {
		return recovery.Projection{}, fromValidation(err)
	}
	return proj, nil
}

// OneRepMax rejects negative lifts before estimating. Zero weight or reps is a valid input.
func OneRepMax(weight float64, reps int) (recovery.OneRepMax, error) {
	if weight < 0 {
		return recovery.OneRepMax{}, NewFieldError("weight", "must be >= 0")
	}
	if reps < 0 {
		return recovery.OneRepMax{}, NewFieldError("reps", "must be >= 0")
	}
	orm, err := recovery.ComputeOneRepMax(weight, reps)
	if err != nil {
		return recovery.OneRepMax{}, fromValidation(err)
	}
	return orm, nil
}

// Points scores an activity by name at the given streak.
func Points(activity string, streakDays int) (recovery.GamificationPoints, error) {
	a, err := recovery.ParseActivityType(activity)
	if err != nil {
		return recovery.GamificationPoints{}, fromValidation(err)
	}
	if streakDays < 0 {
		return recovery.GamificationPoints{}, NewFieldError("streak", "must be >= 0")
	}
	pts, err := recovery.ComputeGamificationPoints(a, streakDays)
	if err != nil {
		return recovery.GamificationPoints{}, fromValidation(err)
	}
	return pts, nil
}
