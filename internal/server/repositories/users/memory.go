package users

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests and when no
// database is configured. It enforces the same username uniqueness as the
// PostgreSQL schema and is safe for concurrent use.
type MemoryRepository struct {
	mu     sync.Mutex
	byName map[string]models.User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]models.User)}
}

func (r *MemoryRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.Username]; ok {
		return nil, common.ErrAlreadyExists
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.byName[user.Username] = *user

	return user, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}
