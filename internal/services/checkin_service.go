package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

type CheckinStore interface {
	CreateCheckin(c *models.Checkin) error
	GetCheckin(id string) (*models.Checkin, error)
	ListCheckins(userID string) ([]*models.Checkin, error)
	UpdateCheckin(c *models.Checkin) error
}

type CheckinService struct {
	store CheckinStore
	now   func() time.Time
	idGen func() string
}

type CheckinInput struct {
	Mood       int                `json:"mood"`
	Craving    int                `json:"craving"`
	Notes      string             `json:"notes,omitempty"`
	Biometrics map[string]float64 `json:"biometrics,omitempty"`
}

// A check-in is healthy when mood is above 7 and craving below 4.
const (
	healthyMoodAbove    = 7
	healthyCravingBelow = 4
)

func NewCheckinService(store CheckinStore) *CheckinService {
	return &CheckinService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return "c" + shortID(11) },
	}
}

func (s *CheckinService) Create(userID string, in CheckinInput) (*models.Checkin, error) {
	if err := validateCheckin(in); err != nil {
		return nil, err
	}
	now := s.now()
	c := &models.Checkin{
		ID:         s.idGen(),
		UserID:     userID,
		At:         now,
		Mood:       in.Mood,
		Craving:    in.Craving,
		Notes:      strings.TrimSpace(in.Notes),
		Biometrics: in.Biometrics,
		CreatedAt:  now,
	}
	if err := s.store.CreateCheckin(c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the user's check-ins, newest first.
func (s *CheckinService) List(userID string) ([]*models.Checkin, error) {
	cs, err := s.store.ListCheckins(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].At.After(cs[j].At) })
	return cs, nil
}

func (s *CheckinService) Update(userID, id string, in CheckinInput) (*models.Checkin, error) {
	if err := validateCheckin(in); err != nil {
		return nil, err
	}
	c, err := s.store.GetCheckin(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewNotFoundError("checkin not found")
	}
	if c.UserID != userID {
		return nil, NewForbiddenError("forbidden")
	}
	updated := *c
	updated.Mood = in.Mood
	updated.Craving = in.Craving
	updated.Notes = strings.TrimSpace(in.Notes)
	updated.Biometrics = in.Biometrics
	if err := s.store.UpdateCheckin(&updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, NewNotFoundError("checkin not found")
		}
		return nil, err
	}
	return &updated, nil
}

func validateCheckin(in CheckinInput) error {
	if in.Mood < 1 || in.Mood > 10 {
		return NewFieldError("mood", "must be between 1 and 10")
	}
	if in.Craving < 1 || in.Craving > 10 {
		return NewFieldError("craving", "must be between 1 and 10")
	}
	for k, v := range in.Biometrics {
		if strings.TrimSpace(k) == "" || math.IsNaN(v) || math.IsInf(v, 0) {
			return NewFieldError("biometrics", "keys must be non-empty and values finite")
		}
	}
	return nil
}

// IsHealthy reports whether a check-in earns healthy check-in points.
func IsHealthy(c *models.Checkin) bool {
	return c.Mood > healthyMoodAbove && c.Craving < healthyCravingBelow
}
