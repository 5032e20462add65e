package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Elyson25/clean-air-now/internal/auth"
	"github.com/Elyson25/clean-air-now/internal/config"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/mailer"
	"github.com/Elyson25/clean-air-now/pkg/e"
	"github.com/Elyson25/clean-air-now/pkg/validator"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*domain.User, error)
}

type authService struct {
	users       UserStore
	mail        mailer.Mailer
	logger      *slog.Logger
	cfg         config.AuthConfig
	frontendURL string
	clock       clockwork.Clock
}

func NewAuthService(users UserStore, mail mailer.Mailer, cfg config.AuthConfig, frontendURL string, clock clockwork.Clock, logger *slog.Logger) AuthService {
	return &authService{
		users:       users,
		mail:        mail,
		logger:      logger,
		cfg:         cfg,
		frontendURL: frontendURL,
		clock:       clock,
	}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error) {
	const op = "service.Auth.Register"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, e.ErrUniqueViolation) {
			return nil, fmt.Errorf("%s: %w: email already registered", op, e.ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return s.authResult(user)
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error) {
	const op = "service.Auth.Login"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: invalid email or password", op, e.ErrUnauthorized)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("%s: %w: invalid email or password", op, e.ErrUnauthorized)
	}

	return s.authResult(user)
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*AuthResult, error) {
	const op = "service.Auth.UpdateProfile"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := user.Name
	email := user.Email
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.users.UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, e.ErrUniqueViolation) {
			return nil, fmt.Errorf("%s: %w: email already registered", op, e.ErrConflict)
		}
		return nil, err
	}

	user.Name = name
	user.Email = email
	return s.authResult(user)
}

func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, req domain.UpdatePasswordRequest) error {
	const op = "service.Auth.UpdatePassword"

	if err := validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return fmt.Errorf("%s: %w: old password is not correct", op, e.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return e.Wrap(op, err)
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// ForgotPassword issues a single-use reset token and mails the reset link.
// The raw token goes only into the email; the store keeps its SHA-256.
func (s *authService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	const op = "service.Auth.ForgotPassword"

	if err := validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return e.Wrap(op, err)
	}
	token := hex.EncodeToString(raw)
	expires := s.clock.Now().UTC().Add(s.cfg.ResetTTL)

	if err := s.users.SetResetToken(ctx, user.ID, hashToken(token), expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.frontendURL, token)
	body := fmt.Sprintf(
		"You are receiving this email because you requested a password reset. "+
			"Please click the link below to complete the process (link is valid for %d minutes):\n\n%s",
		int(s.cfg.ResetTTL.Minutes()), resetURL,
	)

	if err := s.mail.Send(ctx, user.Email, "Password Reset Token - Clean Air Now", body); err != nil {
		// The token is useless if the user never received it.
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("clear reset token failed", slog.Any("error", clearErr))
		}
		s.logger.Error("reset email failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return fmt.Errorf("%s: %w: email could not be sent", op, e.ErrUpstream)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req domain.ResetPasswordRequest) (*AuthResult, error) {
	const op = "service.Auth.ResetPassword"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	user, err := s.users.GetByResetToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: invalid or expired token", op, e.ErrInvalidInput)
		}
		return nil, err
	}

	if user.ResetTokenExpires == nil || s.clock.Now().After(*user.ResetTokenExpires) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrTokenExpired)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}
	if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
		s.logger.Error("clear reset token failed", slog.Any("error", err))
	}

	return s.authResult(user)
}

func (s *authService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListAll(ctx)
}

func (s *authService) authResult(user *domain.User) (*AuthResult, error) {
	token, err := auth.Sign(s.cfg.JWTSecret, user.ID, user.IsAdmin, s.cfg.TokenTTL, s.clock.Now())
	if err != nil {
		return nil, e.Wrap("service.Auth.sign", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
