package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const invalidCredentials = "invalid email or password"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users            repository.UserRepository
	tokenMgr         *auth.TokenManager
	bcryptCost       int
	allowAdminSignup bool
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:            deps.UserRepo,
		tokenMgr:         auth.NewTokenManager(cfg.Auth.JWTSecret),
		bcryptCost:       cfg.Auth.BcryptCost,
		allowAdminSignup: cfg.Auth.AllowAdminSignup,
	}
}

// Register creates a new account. Admin accounts can only be self-registered
// when explicitly enabled.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	role := domain.Role(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleUser
	}

	errs := validateAccount(input.Name, input.Email, input.Password)
	switch {
	case !role.Valid():
		errs["role"] = "must be one of user, admin"
	case role.IsAdmin() && !s.allowAdminSignup:
		errs["role"] = "admin accounts cannot be self-registered"
	}
	if len(errs) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", errs.Details())
	}

	return s.createUser(ctx, input.Name, input.Email, input.Password, role)
}

// CreateAdmin provisions an administrator account regardless of signup policy.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	if errs := validateAccount(name, email, password); len(errs) > 0 {
		return nil, apperrors.NewValidationError("invalid admin account", errs.Details())
	}
	return s.createUser(ctx, name, email, password, domain.RoleAdmin)
}

// Login authenticates a user and issues a credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	token, exp, err := s.tokenMgr.Issue(auth.Payload{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Me loads the account behind a verified credential.
func (s *AuthService) Me(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	if claims == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("user already exists", map[string]any{"email": user.Email})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func validateAccount(name, email, password string) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "required"
	}
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		errs["email"] = "required"
	} else if addr, err := mail.ParseAddress(normalized); err != nil || addr.Address != normalized {
		errs["email"] = "must be a valid email address"
	}
	switch {
	case password == "":
		errs["password"] = "required"
	case len(password) < auth.MinPasswordLength:
		errs["password"] = "must be at least 6 characters"
	}
	return errs
}
