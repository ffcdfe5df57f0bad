package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

type RelapseStore interface {
	CreateRelapse(r *models.RelapseLog) error
	GetRelapse(id string) (*models.RelapseLog, error)
	ListRelapses(userID string) ([]*models.RelapseLog, error)
	UpdateRelapse(r *models.RelapseLog) error
	AddAudit(entry models.AuditEntry)
}

type RelapseService struct {
	store RelapseStore
	now   func() time.Time
	idGen func() string
}

// RelapseInput describes a relapse. ResetStreak defaults to true.
type RelapseInput struct {
	TriggerTags    []string `json:"trigger_tags,omitempty"`
	Context        string   `json:"context,omitempty"`
	EconomicImpact float64  `json:"economic_impact,omitempty"`
	ResetStreak    *bool    `json:"reset_streak,omitempty"`
}

func NewRelapseService(store RelapseStore) *RelapseService {
	return &RelapseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return "r" + shortID(11) },
	}
}

func (s *RelapseService) Create(userID string, in RelapseInput) (*models.RelapseLog, error) {
	now := s.now()
	r := &models.RelapseLog{ID: s.idGen(), UserID: userID, At: now, ResetStreak: true, CreatedAt: now}
	if err := applyRelapseInput(r, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateRelapse(r); err != nil {
		return nil, err
	}
	s.store.AddAudit(models.AuditEntry{Time: now, Actor: userID, Action: "relapse.create", Target: r.ID})
	return r, nil
}

// List returns the user's relapse logs, newest first.
func (s *RelapseService) List(userID string) ([]*models.RelapseLog, error) {
	rs, err := s.store.ListRelapses(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].At.After(rs[j].At) })
	return rs, nil
}

func (s *RelapseService) Update(userID, id string, in RelapseInput) (*models.RelapseLog, error) {
	r, err := s.store.GetRelapse(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, NewNotFoundError("relapse log not found")
	}
	if r.UserID != userID {
		return nil, NewForbiddenError("forbidden")
	}
	updated := *r
	if err := applyRelapseInput(&updated, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRelapse(&updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, NewNotFoundError("relapse log not found")
		}
		return nil, err
	}
	s.store.AddAudit(models.AuditEntry{Time: s.now(), Actor: userID, Action: "relapse.update", Target: r.ID})
	return &updated, nil
}

func applyRelapseInput(r *models.RelapseLog, in RelapseInput) error {
	if math.IsNaN(in.EconomicImpact) || math.IsInf(in.EconomicImpact, 0) || in.EconomicImpact < 0 {
		return NewFieldError("economic_impact", "must be a finite number >= 0")
	}
	tags := make([]string, 0, len(in.TriggerTags))
	for _, t := range in.TriggerTags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	r.TriggerTags = tags
	r.Context = strings.TrimSpace(in.Context)
	r.EconomicImpact = in.EconomicImpact
	if in.ResetStreak != nil {
		r.ResetStreak = *in.ResetStreak
	}
	return nil
}

// lastResetBefore returns the time of the latest streak-resetting relapse within [start, t].
// Relapses before the abstinence start predate the current attempt and are ignored.
func lastResetBefore(relapses []*models.RelapseLog, start, t time.Time) *time.Time {
	var last *time.Time
	for _, r := range relapses {
		if !r.ResetStreak || r.At.After(t) || r.At.Before(start) {
			continue
		}
		if last == nil || r.At.After(*last) {
			at := r.At
			last = &at
		}
	}
	return last
}
