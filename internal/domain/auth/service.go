package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"prodtrack/internal/core/apperror"
	appctx "prodtrack/internal/core/context"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/tx"
	"prodtrack/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides registration, login and current-user lookup.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService, config ServiceConfig) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a bcrypt password hash.
// Only administrators may create other administrators.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	if req.IsAdmin && !appctx.IsAdmin(ctx) {
		return nil, apperror.NewForbidden("only administrators can create administrators")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(passwordHash))
	user.Name = req.Name
	user.IsAdmin = req.IsAdmin
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("email already registered").WithDetail("email", user.Email)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// Login authenticates by email and password and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	now := s.now()

	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(creds.Username))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user.IsLocked(now) {
		return nil, nil, apperror.NewForbidden("account is temporarily locked")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil, fmt.Errorf("compare password: %w", err)
		}
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user.ID.String(), user.Email, user.IsAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return &Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, user, nil
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, err
	}
	return user, nil
}

// CurrentUser loads the authenticated user from context.
// A token for a deleted user is rejected; an inactive user gets a validation error.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	userID, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid authentication credentials")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid authentication credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.NewValidation("inactive user")
	}
	return user, nil
}
