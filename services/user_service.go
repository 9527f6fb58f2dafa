package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hotel-booking/models"
	"hotel-booking/repository"
	"hotel-booking/utils"
)

// sessionTokenBytes gives 64 hex characters, the width of sessions.id.
const sessionTokenBytes = 32

// UserService logs users in and out and resolves session tokens.
type UserService struct {
	store repository.Store
	cfg   Config
	log   *zap.Logger
}

func NewUserService(store repository.Store, cfg *Config, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{store: store, cfg: cfg.withDefaults(), log: log}
}

// Login checks the password and opens a session. Unknown email and wrong
// password give the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token: %w", err)
	}
	session := models.Session{
		ID:        token,
		UserID:    user.ID,
		ExpiresAt: s.cfg.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.store.Sessions().Create(ctx, &session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return &session, user, nil
}

// Logout ends a session. An unknown token is not an error.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	if err := s.store.Sessions().Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate returns the user a session token belongs to.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	session, err := s.store.Sessions().FindByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(s.cfg.Now()) {
		if err := s.store.Sessions().Delete(ctx, session.ID); err != nil {
			s.log.Warn("failed to drop expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	user, err := s.store.Users().FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	user := models.User{Email: email, Password: string(hash)}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return &user, nil
}
