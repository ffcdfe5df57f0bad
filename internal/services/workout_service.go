package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
	"github.com/soaringjerry/NeuroReclaim/internal/recovery"
)

type WorkoutStore interface {
	CreateWorkout(w *models.Workout) error
	GetWorkout(id string) (*models.Workout, error)
	ListWorkouts(userID string) ([]*models.Workout, error)
	UpdateWorkout(w *models.Workout) error
	DeleteWorkout(id string) error
}

type WorkoutService struct {
	store WorkoutStore
	now   func() time.Time
	idGen func() string
}

type WorkoutInput struct {
	Date              string            `json:"date"`
	Exercises         []models.Exercise `json:"exercises"`
	EstimatedCalories *int              `json:"estimated_calories,omitempty"`
}

func NewWorkoutService(store WorkoutStore) *WorkoutService {
	return &WorkoutService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return "w" + shortID(11) },
	}
}

func (s *WorkoutService) Create(userID string, in WorkoutInput) (*models.Workout, error) {
	w := &models.Workout{ID: s.idGen(), UserID: userID, CreatedAt: s.now()}
	if err := applyWorkoutInput(w, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateWorkout(w); err != nil {
		return nil, err
	}
	return w, nil
}

// List returns the user's workouts, most recent date first.
func (s *WorkoutService) List(userID string) ([]*models.Workout, error) {
	ws, err := s.store.ListWorkouts(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Date != ws[j].Date {
			return ws[i].Date > ws[j].Date
		}
		return ws[i].CreatedAt.After(ws[j].CreatedAt)
	})
	return ws, nil
}

func (s *WorkoutService) Update(userID, id string, in WorkoutInput) (*models.Workout, error) {
	w, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	updated := *w
	if err := applyWorkoutInput(&updated, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateWorkout(&updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, NewNotFoundError("workout not found")
		}
		return nil, err
	}
	return &updated, nil
}

func (s *WorkoutService) Delete(userID, id string) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteWorkout(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return NewNotFoundError("workout not found")
		}
		return err
	}
	return nil
}

func (s *WorkoutService) owned(userID, id string) (*models.Workout, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("id required")
	}
	w, err := s.store.GetWorkout(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, NewNotFoundError("workout not found")
	}
	if w.UserID != userID {
		return nil, NewForbiddenError("forbidden")
	}
	return w, nil
}

func applyWorkoutInput(w *models.Workout, in WorkoutInput) error {
	date := strings.TrimSpace(in.Date)
	if _, err := recovery.ParseDate("date", date); err != nil {
		return fromValidation(err)
	}
	if in.EstimatedCalories != nil && *in.EstimatedCalories < 0 {
		return NewFieldError("estimated_calories", "must be >= 0")
	}
	exercises := make([]models.Exercise, 0, len(in.Exercises))
	for _, ex := range in.Exercises {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			return NewFieldError("exercises", "name required")
		}
		if ex.Sets < 0 || ex.Reps < 0 {
			return NewFieldError("exercises", "sets and reps must be >= 0")
		}
		if ex.RPE < 0 || ex.RPE > 10 {
			return NewFieldError("exercises", "rpe must be between 1 and 10, or 0 when not recorded")
		}
		if math.IsNaN(ex.Weight) || math.IsInf(ex.Weight, 0) || ex.Weight < 0 {
			return NewFieldError("exercises", "weight must be a finite number >= 0")
		}
		ex.EstimatedOneRepMax = nil
		if ex.Weight > 0 {
			orm, err := recovery.ComputeOneRepMax(ex.Weight, ex.Reps)
			if err != nil {
				return fromValidation(err)
			}
			ex.EstimatedOneRepMax = &orm.EstimatedOneRepMax
		}
		exercises = append(exercises, ex)
	}
	w.Date = date
	w.Exercises = exercises
	w.EstimatedCalories = in.EstimatedCalories
	return nil
}
