package api

import (
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
	"github.com/soaringjerry/NeuroReclaim/internal/services"
)

// Store is the persistence contract shared by the memory store and the SQL stores.
// Getters return (nil, nil) for missing records; updates and deletes return models.ErrNotFound.
type Store interface {
	AddUser(u *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	TouchUserSignIn(id string, at time.Time) error

	CreateProfile(p *models.SubstanceProfile) error
	GetProfileByUser(userID string) (*models.SubstanceProfile, error)
	UpdateProfile(p *models.SubstanceProfile) error

	CreateWorkout(w *models.Workout) error
	GetWorkout(id string) (*models.Workout, error)
	ListWorkouts(userID string) ([]*models.Workout, error)
	UpdateWorkout(w *models.Workout) error
	DeleteWorkout(id string) error

	CreateCheckin(c *models.Checkin) error
	GetCheckin(id string) (*models.Checkin, error)
	ListCheckins(userID string) ([]*models.Checkin, error)
	UpdateCheckin(c *models.Checkin) error

	CreateRelapse(r *models.RelapseLog) error
	GetRelapse(id string) (*models.RelapseLog, error)
	ListRelapses(userID string) ([]*models.RelapseLog, error)
	UpdateRelapse(r *models.RelapseLog) error

	AddAudit(e models.AuditEntry)
	ListAudit() []models.AuditEntry
}

var (
	_ Store                 = (*memoryStore)(nil)
	_ services.AuthStore    = Store(nil)
	_ services.ProfileStore = Store(nil)
	_ services.WorkoutStore = Store(nil)
	_ services.CheckinStore = Store(nil)
	_ services.RelapseStore = Store(nil)
	_ services.MetricsStore = Store(nil)
)
