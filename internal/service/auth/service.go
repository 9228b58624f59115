package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
	"github.com/FTLPetrov/team-builder-sub000/pkg/config"
	"github.com/FTLPetrov/team-builder-sub000/pkg/crypto"
	jwtpkg "github.com/FTLPetrov/team-builder-sub000/pkg/jwt"
)

// Service handles authentication workflows. Revoked tokens live in the shared
// store, not a process-local set, so logout holds across restarts and
// horizontally scaled instances.
type Service struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, tokens repository.TokenRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, tokens: tokens, logger: logger, cfg: cfg}
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Signup registers a new user.
func (s Service) Signup(ctx context.Context, email, displayName, password string) (*domain.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, TokenPair{}, domain.E(domain.KindValidation, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, TokenPair{}, domain.E(domain.KindValidation, "password must be at least 8 characters")
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, TokenPair{}, domain.E(domain.KindValidation, "email is already registered")
		}
		return nil, TokenPair{}, err
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login authenticates a user and returns tokens.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, domain.E(domain.KindNotAuthorized, "invalid credentials")
		}
		return nil, TokenPair{}, err
	}
	if !user.Active {
		return nil, TokenPair{}, domain.E(domain.KindNotAuthorized, "account is deactivated")
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, TokenPair{}, domain.E(domain.KindNotAuthorized, "invalid credentials")
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Logout revokes the presented token ahead of its natural expiry. Expired
// revocation rows are swept opportunistically on the way through.
func (s Service) Logout(ctx context.Context, token string) error {
	claims, err := jwtpkg.Parse(strings.TrimSpace(token), s.cfg.JWTSecret)
	if err != nil {
		return domain.E(domain.KindNotAuthorized, "invalid token")
	}
	expiresAt := time.Now().UTC().Add(s.cfg.RefreshTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	revoked := &domain.RevokedToken{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now().UTC(),
	}
	if err := s.tokens.RevokeToken(ctx, revoked); err != nil {
		return err
	}
	if err := s.tokens.DeleteExpiredTokens(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("revoked token sweep failed", "error", err)
	}
	s.logger.Info("token revoked", "user_id", claims.UserID)
	return nil
}

// Authorize validates a bearer token and returns the associated user and
// claims. Revoked tokens and deactivated accounts are rejected.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, domain.E(domain.KindNotAuthorized, "token required")
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, domain.E(domain.KindNotAuthorized, "invalid token")
	}
	revoked, err := s.tokens.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, domain.E(domain.KindNotAuthorized, "token has been revoked")
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, domain.E(domain.KindNotAuthorized, "unknown user")
		}
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, domain.E(domain.KindNotAuthorized, "account is deactivated")
	}
	return user, claims, nil
}

func (s Service) issueTokens(user *domain.User) (TokenPair, error) {
	access, err := jwtpkg.GenerateToken(user.ID, user.Admin, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := jwtpkg.GenerateToken(user.ID, user.Admin, s.cfg.JWTSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.cfg.AccessTokenTTL}, nil
}
