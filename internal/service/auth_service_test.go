package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func newAuthService(allowAdmin bool) *AuthService {
	cfg := testConfig()
	cfg.Auth.AllowAdminSignup = allowAdmin
	return NewAuthService(cfg, AuthDependencies{UserRepo: repository.NewMemoryStore().Users()})
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc := newAuthService(false)

	user, err := svc.Register(context.Background(), RegisterInput{Name: "Alice", Email: "  Alice@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "alice@example.com", Password: "secret2"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(false)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"missing name":    {Email: "a@example.com", Password: "secret1"},
		"missing email":   {Name: "A", Password: "secret1"},
		"bad email":       {Name: "A", Email: "not-an-email", Password: "secret1"},
		"short password":  {Name: "A", Email: "a@example.com", Password: "12345"},
		"unknown role":    {Name: "A", Email: "a@example.com", Password: "secret1", Role: "root"},
		"admin by signup": {Name: "A", Email: "a@example.com", Password: "secret1", Role: "admin"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, input)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "got %v", err)
		})
	}
}

func TestRegisterAdminWhenAllowed(t *testing.T) {
	svc := newAuthService(true)
	user, err := svc.Register(context.Background(), RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newAuthService(false)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)

	user, token, exp, err := svc.Login(ctx, "BOB@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, ok := svc.TokenManager().FullVerifier().Verify(token)
	require.True(t, ok)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)

	me, err := svc.Me(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "Bob", me.Name)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	svc := newAuthService(false)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, _, _, wrongPassword := svc.Login(ctx, "bob@example.com", "nope-nope")
	_, _, _, unknownUser := svc.Login(ctx, "eve@example.com", "hunter22")

	require.True(t, apperrors.HasCode(wrongPassword, apperrors.CodeUnauthorized))
	require.True(t, apperrors.HasCode(unknownUser, apperrors.CodeUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestMeUnknownUser(t *testing.T) {
	svc := newAuthService(false)
	_, err := svc.Me(context.Background(), userClaims())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreateAdminIgnoresSignupPolicy(t *testing.T) {
	svc := newAuthService(false)
	user, err := svc.CreateAdmin(context.Background(), "Ops", "ops@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = svc.CreateAdmin(context.Background(), "Ops", "ops@example.com", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
