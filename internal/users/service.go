package users

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// DefaultResetTokenTTL bounds how long a password reset token stays usable.
	DefaultResetTokenTTL = time.Hour
	resetTokenBytes      = 32
)

var (
	ErrDuplicateEmail        = errors.New("users: email already registered")
	ErrInvalidCredentials    = errors.New("users: invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("users: invalid or expired token")
	ErrNotFound              = errors.New("users: not found")
	ErrInvalidRole           = errors.New("users: invalid role")
	ErrMissingRequiredField  = errors.New("users: name, email and password are required")
	errMissingDatabase       = errors.New("users: database connection required")
	noOpLogger               = zap.NewNop()
)

// IDProvider issues identifiers for new accounts.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the credential store.
type ServiceConfig struct {
	Database      *gorm.DB
	Clock         func() time.Time
	IDProvider    IDProvider
	Logger        *zap.Logger
	HashCost      int
	ResetTokenTTL time.Duration
	Random        io.Reader
}

// Service registers accounts, verifies credentials and manages password resets.
type Service struct {
	db         *gorm.DB
	now        func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
	hashCost   int
	resetTTL   time.Duration
	random     io.Reader
}

// NewService constructs the credential store.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = uuidProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	hashCost := cfg.HashCost
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	resetTTL := cfg.ResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	random := cfg.Random
	if random == nil {
		random = rand.Reader
	}
	return &Service{
		db:         cfg.Database,
		now:        clock,
		idProvider: idProvider,
		logger:     logger,
		hashCost:   hashCost,
		resetTTL:   resetTTL,
		random:     random,
	}, nil
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      Role
	BarNumber string
	Firm      string
}

// Register stores a new account with a bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	name := normalize(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return User{}, ErrMissingRequiredField
	}
	role := input.Role
	if role == "" {
		role = RoleLawyer
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		s.logError("users.register", "lookup_failed", err)
		return User{}, err
	}
	if existing > 0 {
		return User{}, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		s.logError("users.register", "hash_failed", err)
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	userID, err := s.idProvider.NewID()
	if err != nil {
		s.logError("users.register", "id_generation_failed", err)
		return User{}, err
	}

	user := User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		BarNumber:    normalize(input.BarNumber),
		Firm:         normalize(input.Firm),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrDuplicateEmail
		}
		s.logError("users.register", "insert_failed", err, zap.String("email", email))
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies the credentials. Unknown emails and wrong passwords share one error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.findByEmail(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get loads an account by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		s.logError("users.get", "query_failed", err, zap.String("user_id", userID))
		return User{}, err
	}
	return user, nil
}

// PasswordReset is the outcome of a reset request for an existing account.
type PasswordReset struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// RequestPasswordReset issues a reset token. It returns nil without error when the
// email is unknown so callers cannot reveal which addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*PasswordReset, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, nil
	}
	user, err := s.findByEmail(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken()
	if err != nil {
		s.logError("users.request_reset", "token_generation_failed", err)
		return nil, err
	}
	expiresAt := s.now().UTC().Add(s.resetTTL)
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"reset_token_hash": hashToken(token),
			"reset_expires_at": expiresAt,
		}).Error; err != nil {
		s.logError("users.request_reset", "update_failed", err, zap.String("user_id", user.ID))
		return nil, err
	}
	return &PasswordReset{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword replaces the password of the account holding an unexpired token and clears the token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = normalize(token)
	if token == "" || newPassword == "" {
		return ErrInvalidOrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		err := tx.Where("reset_token_hash = ?", hashToken(token)).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			s.logError("users.reset_password", "lookup_failed", err)
			return err
		}
		if user.ResetExpiresAt == nil || !s.now().Before(*user.ResetExpiresAt) {
			return ErrInvalidOrExpiredToken
		}
		if err := tx.Model(&User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"password_hash":    string(hash),
			"reset_token_hash": "",
			"reset_expires_at": nil,
		}).Error; err != nil {
			s.logError("users.reset_password", "update_failed", err, zap.String("user_id", user.ID))
			return err
		}
		return nil
	})
}

func (s *Service) findByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		s.logError("users.find_by_email", "query_failed", err)
		return User{}, err
	}
	return user, nil
}

func (s *Service) generateToken() (string, error) {
	buffer := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(s.random, buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("users service error", attrs...)
}

type uuidProvider struct{}

func (uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
