package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// MemoryStore keeps users and complaints in process memory. It backs
// STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	emails     map[string]string
	complaints map[string]domain.Complaint
	now        func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		emails:     make(map[string]string),
		complaints: make(map[string]domain.Complaint),
		now:        time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Complaints exposes the store as a ComplaintRepository.
func (s *MemoryStore) Complaints() ComplaintRepository { return memoryComplaints{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.s.emails[email]; exists {
		return ErrDuplicateEmail
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	r.s.emails[email] = user.ID
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type memoryComplaints struct{ s *MemoryStore }

func (r memoryComplaints) Create(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	complaint.ID = uuid.NewString()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	r.s.complaints[complaint.ID] = *complaint
	return nil
}

func (r memoryComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &complaint, nil
}

func (r memoryComplaints) UpdateStatus(_ context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	complaint.Status = status
	complaint.UpdatedAt = r.s.now()
	r.s.complaints[id] = complaint
	return &complaint, nil
}

func (r memoryComplaints) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.complaints[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.complaints, id)
	return nil
}

func (r memoryComplaints) List(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Complaint{}
	for _, complaint := range r.s.complaints {
		if filter.Matches(&complaint) {
			result = append(result, complaint)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DateSubmitted.Equal(result[j].DateSubmitted) {
			return result[i].DateSubmitted.After(result[j].DateSubmitted)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Ping satisfies the readiness check contract.
func (s *MemoryStore) Ping(context.Context) error { return nil }
