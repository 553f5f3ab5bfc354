package records

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// MemoryRepository keeps everything in process memory. Values are copied
// on the way in and out.
type MemoryRepository struct {
	mu      sync.Mutex
	users   []models.User
	visits  []models.Visit
	counter int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: []models.User{}, visits: []models.Visit{}}
}

func (r *MemoryRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.CloneUsers(r.users), nil
}

func (r *MemoryRepository) PutUsers(ctx context.Context, users []models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = models.CloneUsers(users)
	return nil
}

func (r *MemoryRepository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.CloneVisits(r.visits), nil
}

func (r *MemoryRepository) PutVisits(ctx context.Context, visits []models.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = models.CloneVisits(visits)
	return nil
}

func (r *MemoryRepository) AppendVisit(ctx context.Context, v models.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, v.Clone())
	return nil
}

func (r *MemoryRepository) GetCounter(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter, nil
}

func (r *MemoryRepository) PutCounter(ctx context.Context, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter = n
	return nil
}

func (r *MemoryRepository) IncrementCounter(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter, nil
}

func (r *MemoryRepository) Close() error { return nil }
