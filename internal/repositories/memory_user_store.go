package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cane-backend/internal/models"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/google/uuid"
)

// UserStore is implemented by UserRepository and MemoryUserStore
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// MemoryUserStore backs the memory storage driver
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return utils.NewAppError(utils.ErrCodeConflict, "user already exists", u.Email)
		}
	}
	now := timeutil.Now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *MemoryUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("user", id)
	}
	c := *u
	return &c, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, utils.NotFoundError("user", email)
}

func (s *MemoryUserStore) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		users = append(users, &c)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return utils.NotFoundError("user", u.ID)
	}
	for id, other := range s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return utils.NewAppError(utils.ErrCodeConflict, "user already exists", u.Email)
		}
	}
	u.CreatedAt = existing.CreatedAt
	u.LastLogin = existing.LastLogin
	u.UpdatedAt = timeutil.Now()
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *MemoryUserStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return utils.NotFoundError("user", id)
	}
	delete(s.users, id)
	return nil
}
