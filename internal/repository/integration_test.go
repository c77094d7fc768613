//go:build integration

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Run with:
//   TEST_MONGODB_URI=mongodb://localhost:27017 TEST_POSTGRES_DSN=postgres://... go test -tags integration ./internal/repository/

type backend struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
}

func mongoBackend(t *testing.T) backend {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}
	ctx := context.Background()
	dbName := "complaints_it_" + time.Now().Format("20060102150405")
	m, err := persistence.NewMongo(ctx, config.MongoConfig{URI: uri, Database: dbName, ConnectTimeoutSeconds: 5}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = m.DB.Drop(context.Background())
		m.Close(context.Background())
	})
	return backend{users: repository.NewMongoUserRepository(m.DB), complaints: repository.NewMongoComplaintRepository(m.DB)}
}

func postgresBackend(t *testing.T) backend {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 4}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, persistence.RunMigrations(ctx, pg.PoolHandle(), zap.NewNop()))
	_, err = pg.Pool.Exec(ctx, "TRUNCATE complaints, users")
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	pool := pg.PoolHandle()
	return backend{users: repository.NewPostgresUserRepository(pool), complaints: repository.NewPostgresComplaintRepository(pool)}
}

func TestRepositoryContract(t *testing.T) {
	for name, open := range map[string]func(*testing.T) backend{
		"mongo":    mongoBackend,
		"postgres": postgresBackend,
	} {
		t.Run(name, func(t *testing.T) {
			runContract(t, open(t))
		})
	}
}

func runContract(t *testing.T, b backend) {
	ctx := context.Background()

	author := &domain.User{Name: "Ann", Email: "Ann@Example.com", PasswordHash: "hash", Role: domain.RoleUser}
	require.NoError(t, b.users.Create(ctx, author))
	assert.Equal(t, "ann@example.com", author.Email)

	dup := &domain.User{Name: "Other", Email: "ANN@example.com", PasswordHash: "hash", Role: domain.RoleUser}
	assert.ErrorIs(t, b.users.Create(ctx, dup), repository.ErrDuplicateEmail)

	found, err := b.users.GetByEmail(ctx, "ann@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, author.ID, found.ID)

	_, err = b.users.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seed := func(title string, status domain.ComplaintStatus, priority domain.ComplaintPriority, at time.Time) *domain.Complaint {
		c, err := domain.NewComplaint(domain.ComplaintFields{
			Title: title, Description: "d", Category: "Product", Priority: string(priority),
		}, author.ID, author.Email, at)
		require.NoError(t, err)
		c.Status = status
		require.NoError(t, b.complaints.Create(ctx, c))
		return c
	}
	older := seed("older", domain.StatusResolved, domain.PriorityLow, base.Add(-time.Hour))
	newer := seed("newer", domain.StatusResolved, domain.PriorityHigh, base)
	seed("pending", domain.StatusPending, domain.PriorityHigh, base.Add(-30*time.Minute))

	resolved := domain.StatusResolved
	list, err := b.complaints.List(ctx, repository.ComplaintFilter{Status: &resolved})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	updated, err := b.complaints.UpdateStatus(ctx, older.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "older", updated.Title)

	require.NoError(t, b.complaints.Delete(ctx, older.ID))
	assert.ErrorIs(t, b.complaints.Delete(ctx, older.ID), repository.ErrNotFound)
	_, err = b.complaints.UpdateStatus(ctx, older.ID, domain.StatusResolved)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = b.complaints.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
