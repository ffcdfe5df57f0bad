package services

import (
	"errors"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
	"github.com/soaringjerry/NeuroReclaim/internal/recovery"
)

type ProfileStore interface {
	GetProfileByUser(userID string) (*models.SubstanceProfile, error)
	CreateProfile(p *models.SubstanceProfile) error
	UpdateProfile(p *models.SubstanceProfile) error
	AddAudit(entry models.AuditEntry)
}

type ProfileService struct {
	store ProfileStore
	now   func() time.Time
	idGen func() string
}

// ProfileInput carries the editable fields of a substance profile.
// PriorDailyConsumption defaults to one unit a day when omitted.
type ProfileInput struct {
	SubstanceType         string   `json:"substance_type"`
	Unit                  string   `json:"unit"`
	UnitPrice             float64  `json:"unit_price"`
	Currency              string   `json:"currency"`
	AbstinenceStartDate   string   `json:"abstinence_start_date"`
	PriorDailyConsumption *float64 `json:"prior_daily_consumption,omitempty"`
	ConversionFactor      *float64 `json:"conversion_factor,omitempty"`
	CustomSettings        string   `json:"custom_settings,omitempty"`
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return "p" + shortID(9) },
	}
}

func (s *ProfileService) Create(userID string, in ProfileInput) (*models.SubstanceProfile, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	existing, err := s.store.GetProfileByUser(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("substance config already exists")
	}
	now := s.now()
	p := &models.SubstanceProfile{ID: s.idGen(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := applyProfileInput(p, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateProfile(p); err != nil {
		return nil, err
	}
	s.store.AddAudit(models.AuditEntry{Time: now, Actor: userID, Action: "profile.create", Target: p.ID, Note: p.SubstanceType})
	return p, nil
}

// Get returns the caller's profile, or nil when none has been configured yet.
func (s *ProfileService) Get(userID string) (*models.SubstanceProfile, error) {
	return s.store.GetProfileByUser(userID)
}

func (s *ProfileService) Update(userID, id string, in ProfileInput) (*models.SubstanceProfile, error) {
	p, err := s.store.GetProfileByUser(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("substance config not found")
	}
	if id != "" && p.ID != id {
		return nil, NewForbiddenError("forbidden")
	}
	updated := *p
	if err := applyProfileInput(&updated, in); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()
	if err := s.store.UpdateProfile(&updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, NewNotFoundError("substance config not found")
		}
		return nil, err
	}
	s.store.AddAudit(models.AuditEntry{Time: updated.UpdatedAt, Actor: userID, Action: "profile.update", Target: updated.ID})
	return &updated, nil
}

func applyProfileInput(p *models.SubstanceProfile, in ProfileInput) error {
	st, err := recovery.ParseSubstanceType(in.SubstanceType)
	if err != nil {
		return fromValidation(err)
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		return NewFieldError("unit", "required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return NewFieldError("currency", "must be a 3-letter code")
	}
	consumption := 1.0
	if in.PriorDailyConsumption != nil {
		consumption = *in.PriorDailyConsumption
	}
	candidate := recovery.Profile{
		SubstanceType:         st,
		Unit:                  unit,
		UnitPrice:             in.UnitPrice,
		Currency:              currency,
		AbstinenceStartDate:   strings.TrimSpace(in.AbstinenceStartDate),
		PriorDailyConsumption: consumption,
	}
	var opts []recovery.SavingsOption
	if in.ConversionFactor != nil {
		opts = append(opts, recovery.WithConversionFactor(*in.ConversionFactor))
	}
	if err := recovery.ValidateProfile(candidate, opts...); err != nil {
		return fromValidation(err)
	}
	p.SubstanceType = string(st)
	p.Unit = unit
	p.UnitPrice = in.UnitPrice
	p.Currency = currency
	p.AbstinenceStartDate = candidate.AbstinenceStartDate
	p.PriorDailyConsumption = consumption
	p.ConversionFactor = in.ConversionFactor
	p.CustomSettings = in.CustomSettings
	return nil
}

// engineProfile converts a stored profile into calculation input.
func engineProfile(p *models.SubstanceProfile) (recovery.Profile, []recovery.SavingsOption, error) {
	st, err := recovery.ParseSubstanceType(p.SubstanceType)
	if err != nil {
		return recovery.Profile{}, nil, err
	}
	rp := recovery.Profile{
		SubstanceType:         st,
		Unit:                  p.Unit,
		UnitPrice:             p.UnitPrice,
		Currency:              p.Currency,
		AbstinenceStartDate:   p.AbstinenceStartDate,
		PriorDailyConsumption: p.PriorDailyConsumption,
	}
	var opts []recovery.SavingsOption
	if p.ConversionFactor != nil {
		opts = append(opts, recovery.WithConversionFactor(*p.ConversionFactor))
	}
	return rp, opts, nil
}
