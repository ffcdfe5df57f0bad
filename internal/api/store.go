package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/logger"
	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

type memoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	usersByEmail map[string]string
	profiles     map[string]*models.SubstanceProfile // by user id
	workouts     map[string]*models.Workout
	checkins     map[string]*models.Checkin
	relapses     map[string]*models.RelapseLog
	audit        []models.AuditEntry
	snapshotPath string
}

// NewMemoryStore returns an empty store that keeps everything in process memory.
func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:        map[string]*models.User{},
		usersByEmail: map[string]string{},
		profiles:     map[string]*models.SubstanceProfile{},
		workouts:     map[string]*models.Workout{},
		checkins:     map[string]*models.Checkin{},
		relapses:     map[string]*models.RelapseLog{},
		audit:        []models.AuditEntry{},
	}
}

// users

func (s *memoryStore) AddUser(u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.usersByEmail[key]; ok {
		return fmt.Errorf("user %s already exists", u.Email)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.usersByEmail[key] = u.ID
	return s.persistLocked()
}

func (s *memoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *memoryStore) GetUser(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) TouchUserSignIn(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.LastSignedIn = at
	return s.persistLocked()
}

// substance profiles

func (s *memoryStore) CreateProfile(p *models.SubstanceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return fmt.Errorf("profile for user %s already exists", p.UserID)
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return s.persistLocked()
}

func (s *memoryStore) GetProfileByUser(userID string) (*models.SubstanceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memoryStore) UpdateProfile(p *models.SubstanceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.profiles[p.UserID]
	if !ok || cur.ID != p.ID {
		return models.ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return s.persistLocked()
}

// workouts

func cloneWorkout(w *models.Workout) *models.Workout {
	cp := *w
	cp.Exercises = append([]models.Exercise(nil), w.Exercises...)
	return &cp
}

func (s *memoryStore) CreateWorkout(w *models.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[w.ID] = cloneWorkout(w)
	return s.persistLocked()
}

func (s *memoryStore) GetWorkout(id string) (*models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, nil
	}
	return cloneWorkout(w), nil
}

func (s *memoryStore) ListWorkouts(userID string) ([]*models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Workout{}
	for _, w := range s.workouts {
		if w.UserID == userID {
			out = append(out, cloneWorkout(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) UpdateWorkout(w *models.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[w.ID]; !ok {
		return models.ErrNotFound
	}
	s.workouts[w.ID] = cloneWorkout(w)
	return s.persistLocked()
}

func (s *memoryStore) DeleteWorkout(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.workouts, id)
	return s.persistLocked()
}

// check-ins

func cloneCheckin(c *models.Checkin) *models.Checkin {
	cp := *c
	if c.Biometrics != nil {
		cp.Biometrics = make(map[string]float64, len(c.Biometrics))
		for k, v := range c.Biometrics {
			cp.Biometrics[k] = v
		}
	}
	return &cp
}

func (s *memoryStore) CreateCheckin(c *models.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkins[c.ID] = cloneCheckin(c)
	return s.persistLocked()
}

func (s *memoryStore) GetCheckin(id string) (*models.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkins[id]
	if !ok {
		return nil, nil
	}
	return cloneCheckin(c), nil
}

func (s *memoryStore) ListCheckins(userID string) ([]*models.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Checkin{}
	for _, c := range s.checkins {
		if c.UserID == userID {
			out = append(out, cloneCheckin(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *memoryStore) UpdateCheckin(c *models.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[c.ID]; !ok {
		return models.ErrNotFound
	}
	s.checkins[c.ID] = cloneCheckin(c)
	return s.persistLocked()
}

// relapse logs

func cloneRelapse(r *models.RelapseLog) *models.RelapseLog {
	cp := *r
	cp.TriggerTags = append([]string(nil), r.TriggerTags...)
	return &cp
}

func (s *memoryStore) CreateRelapse(r *models.RelapseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relapses[r.ID] = cloneRelapse(r)
	return s.persistLocked()
}

func (s *memoryStore) GetRelapse(id string) (*models.RelapseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.relapses[id]
	if !ok {
		return nil, nil
	}
	return cloneRelapse(r), nil
}

func (s *memoryStore) ListRelapses(userID string) ([]*models.RelapseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.RelapseLog{}
	for _, r := range s.relapses {
		if r.UserID == userID {
			out = append(out, cloneRelapse(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *memoryStore) UpdateRelapse(r *models.RelapseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relapses[r.ID]; !ok {
		return models.ErrNotFound
	}
	s.relapses[r.ID] = cloneRelapse(r)
	return s.persistLocked()
}

// audit log

func (s *memoryStore) AddAudit(e models.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	if err := s.persistLocked(); err != nil {
		logger.Warn("memory store: persist audit", "error", err)
	}
}

func (s *memoryStore) ListAudit() []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// Snapshot is the JSON document a memory store persists to and that the migrate command
// imports into a SQL database.
type Snapshot struct {
	Users    []*models.User             `json:"users"`
	Profiles []*models.SubstanceProfile `json:"profiles"`
	Workouts []*models.Workout          `json:"workouts"`
	Checkins []*models.Checkin          `json:"checkins"`
	Relapses []*models.RelapseLog       `json:"relapses"`
	Audit    []models.AuditEntry        `json:"audit"`
}

// snapshotUser carries the password hash, which models.User hides from JSON.
type snapshotUser struct {
	*models.User
	PassHash []byte `json:"pass_hash"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	type alias Snapshot
	users := make([]snapshotUser, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, snapshotUser{User: u, PassHash: u.PassHash})
	}
	return json.Marshal(struct {
		alias
		Users []snapshotUser `json:"users"`
	}{alias: alias(s), Users: users})
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	type alias Snapshot
	var raw struct {
		alias
		Users []snapshotUser `json:"users"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Snapshot(raw.alias)
	s.Users = make([]*models.User, 0, len(raw.Users))
	for _, su := range raw.Users {
		if su.User == nil {
			continue
		}
		u := *su.User
		u.PassHash = su.PassHash
		s.Users = append(s.Users, &u)
	}
	return nil
}

func (s *memoryStore) snapshotLocked() *Snapshot {
	snap := &Snapshot{Audit: append([]models.AuditEntry(nil), s.audit...)}
	for _, u := range s.users {
		cp := *u
		snap.Users = append(snap.Users, &cp)
	}
	for _, p := range s.profiles {
		cp := *p
		snap.Profiles = append(snap.Profiles, &cp)
	}
	for _, w := range s.workouts {
		snap.Workouts = append(snap.Workouts, cloneWorkout(w))
	}
	for _, c := range s.checkins {
		snap.Checkins = append(snap.Checkins, cloneCheckin(c))
	}
	for _, r := range s.relapses {
		snap.Relapses = append(snap.Relapses, cloneRelapse(r))
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	sort.Slice(snap.Profiles, func(i, j int) bool { return snap.Profiles[i].ID < snap.Profiles[j].ID })
	sort.Slice(snap.Workouts, func(i, j int) bool { return snap.Workouts[i].ID < snap.Workouts[j].ID })
	sort.Slice(snap.Checkins, func(i, j int) bool { return snap.Checkins[i].ID < snap.Checkins[j].ID })
	sort.Slice(snap.Relapses, func(i, j int) bool { return snap.Relapses[i].ID < snap.Relapses[j].ID })
	return snap
}

// MemoryStoreSnapshot copies the contents of a memory store. It returns nil for other stores.
func MemoryStoreSnapshot(st Store) *Snapshot {
	ms, ok := st.(*memoryStore)
	if !ok {
		return nil
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.snapshotLocked()
}

func (s *memoryStore) persistLocked() error {
	if s.snapshotPath == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.snapshotLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, s.snapshotPath)
}

func (s *memoryStore) load(snap *Snapshot) {
	for _, u := range snap.Users {
		cp := *u
		s.users[u.ID] = &cp
		s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	}
	for _, p := range snap.Profiles {
		cp := *p
		s.profiles[p.UserID] = &cp
	}
	for _, w := range snap.Workouts {
		s.workouts[w.ID] = cloneWorkout(w)
	}
	for _, c := range snap.Checkins {
		s.checkins[c.ID] = cloneCheckin(c)
	}
	for _, r := range snap.Relapses {
		s.relapses[r.ID] = cloneRelapse(r)
	}
	s.audit = append(s.audit, snap.Audit...)
}

// ReadSnapshot decodes a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// NewMemoryStoreFromPath returns a memory store that loads path when it exists and rewrites it
// after every change.
func NewMemoryStoreFromPath(path string) (Store, error) {
	ms := newMemoryStore()
	if path == "" {
		return ms, nil
	}
	snap, err := ReadSnapshot(path)
	switch {
	case err == nil:
		ms.load(snap)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	ms.snapshotPath = path
	return ms, nil
}

// CopySnapshot writes every record of snap into dst.
func CopySnapshot(snap *Snapshot, dst Store) error {
	for _, u := range snap.Users {
		if err := dst.AddUser(u); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	for _, p := range snap.Profiles {
		if err := dst.CreateProfile(p); err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
	}
	for _, w := range snap.Workouts {
		if err := dst.CreateWorkout(w); err != nil {
			return fmt.Errorf("workout %s: %w", w.ID, err)
		}
	}
	for _, c := range snap.Checkins {
		if err := dst.CreateCheckin(c); err != nil {
			return fmt.Errorf("checkin %s: %w", c.ID, err)
		}
	}
	for _, r := range snap.Relapses {
		if err := dst.CreateRelapse(r); err != nil {
			return fmt.Errorf("relapse %s: %w", r.ID, err)
		}
	}
	for _, e := range snap.Audit {
		dst.AddAudit(e)
	}
	return nil
}
