package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

type AuthStore interface {
	FindUserByEmail(email string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	AddUser(u *models.User) error
	TouchUserSignIn(id string, at time.Time) error
}

type TokenSigner func(uid, email, role string, ttl time.Duration) (string, error)

type AuthService struct {
	store      AuthStore
	now        func() time.Time
	idGen      func(prefix string, n int) string
	signToken  TokenSigner
	tokenTTL   time.Duration
	ownerEmail string
}

type AuthResult struct {
	Token  string
	UserID string
	Role   string
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// WithOwner marks the account registered with email as an administrator.
func (s *AuthService) WithOwner(email string) *AuthService {
	s.ownerEmail = strings.TrimSpace(email)
	return s
}

func (s *AuthService) WithTokenTTL(ttl time.Duration) *AuthService {
	s.tokenTTL = ttl
	return s
}

func (s *AuthService) Register(email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	if !strings.Contains(email, "@") {
		return nil, NewFieldError("email", "must be an email address")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := models.RoleUser
	if s.ownerEmail != "" && strings.EqualFold(s.ownerEmail, email) {
		role = models.RoleAdmin
	}
	userID := s.idGen("u", 7)
	now := s.now()
	u := &models.User{ID: userID, Email: email, Name: strings.TrimSpace(name), Role: role, PassHash: hash, CreatedAt: now, LastSignedIn: now}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(userID, email, role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: userID, Role: role}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchUserSignIn(u.ID, s.now()); err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Role: u.Role}, nil
}

// Me returns the account behind an authenticated session.
func (s *AuthService) Me(userID string) (*models.User, error) {
	u, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewNotFoundError("user not found")
	}
	return u, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
