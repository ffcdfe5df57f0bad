package services

import (
	"strconv"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

// stubStore keeps records in maps and satisfies every record store interface.
type stubStore struct {
	profiles map[string]*models.SubstanceProfile
	workouts map[string]*models.Workout
	checkins map[string]*models.Checkin
	relapses map[string]*models.RelapseLog
	audit    []models.AuditEntry
}

func newStubStore() *stubStore {
	return &stubStore{
		profiles: map[string]*models.SubstanceProfile{},
		workouts: map[string]*models.Workout{},
		checkins: map[string]*models.Checkin{},
		relapses: map[string]*models.RelapseLog{},
	}
}

func (s *stubStore) GetProfileByUser(userID string) (*models.SubstanceProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *stubStore) CreateProfile(p *models.SubstanceProfile) error {
	copy := *p
	s.profiles[p.UserID] = &copy
	return nil
}

func (s *stubStore) UpdateProfile(p *models.SubstanceProfile) error {
	if _, ok := s.profiles[p.UserID]; !ok {
		return models.ErrNotFound
	}
	copy := *p
	s.profiles[p.UserID] = &copy
	return nil
}

func (s *stubStore) AddAudit(entry models.AuditEntry) { s.audit = append(s.audit, entry) }

func (s *stubStore) CreateWorkout(w *models.Workout) error {
	copy := *w
	s.workouts[w.ID] = &copy
	return nil
}

func (s *stubStore) GetWorkout(id string) (*models.Workout, error) {
	if w, ok := s.workouts[id]; ok {
		copy := *w
		return &copy, nil
	}
	return nil, nil
}

func (s *stubStore) ListWorkouts(userID string) ([]*models.Workout, error) {
	var out []*models.Workout
	for _, w := range s.workouts {
		if w.UserID == userID {
			copy := *w
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateWorkout(w *models.Workout) error {
	if _, ok := s.workouts[w.ID]; !ok {
		return models.ErrNotFound
	}
	copy := *w
	s.workouts[w.ID] = &copy
	return nil
}

func (s *stubStore) DeleteWorkout(id string) error {
	if _, ok := s.workouts[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.workouts, id)
	return nil
}

func (s *stubStore) CreateCheckin(c *models.Checkin) error {
	copy := *c
	s.checkins[c.ID] = &copy
	return nil
}

func (s *stubStore) GetCheckin(id string) (*models.Checkin, error) {
	if c, ok := s.checkins[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, nil
}

func (s *stubStore) ListCheckins(userID string) ([]*models.Checkin, error) {
	var out []*models.Checkin
	for _, c := range s.checkins {
		if c.UserID == userID {
			copy := *c
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateCheckin(c *models.Checkin) error {
	if _, ok := s.checkins[c.ID]; !ok {
		return models.ErrNotFound
	}
	copy := *c
	s.checkins[c.ID] = &copy
	return nil
}

func (s *stubStore) CreateRelapse(r *models.RelapseLog) error {
	copy := *r
	s.relapses[r.ID] = &copy
	return nil
}

func (s *stubStore) GetRelapse(id string) (*models.RelapseLog, error) {
	if r, ok := s.relapses[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, nil
}

func (s *stubStore) ListRelapses(userID string) ([]*models.RelapseLog, error) {
	var out []*models.RelapseLog
	for _, r := range s.relapses {
		if r.UserID == userID {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateRelapse(r *models.RelapseLog) error {
	if _, ok := s.relapses[r.ID]; !ok {
		return models.ErrNotFound
	}
	copy := *r
	s.relapses[r.ID] = &copy
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func floatPtr(v float64) *float64 { return &v }
