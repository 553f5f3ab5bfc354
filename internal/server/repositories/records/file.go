package records

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/cyclelogin/internal/filex"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// FileRepository stores users.json, visits.json and state.json in a
// directory. Writes go through a temp file and a rename so a crash never
// leaves a half-written document behind.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileRepository{dir: abs}, nil
}

func (r *FileRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	b, err := r.read(usersObject)
	if err != nil {
		return nil, err
	}
	return decodeUsers(b), nil
}

func (r *FileRepository) PutUsers(ctx context.Context, users []models.User) error {
	return r.writeJSON(usersObject, nonNilUsers(users))
}

func (r *FileRepository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	b, err := r.read(visitsObject)
	if err != nil {
		return nil, err
	}
	return decodeVisits(b), nil
}

func (r *FileRepository) PutVisits(ctx context.Context, visits []models.Visit) error {
	return r.writeJSON(visitsObject, nonNilVisits(visits))
}

func (r *FileRepository) GetCounter(ctx context.Context) (int64, error) {
	b, err := r.read(stateObject)
	if err != nil {
		return 0, err
	}
	return decodeState(b), nil
}

func (r *FileRepository) PutCounter(ctx context.Context, n int64) error {
	return r.writeJSON(stateObject, state{VisitCount: n})
}

func (r *FileRepository) IncrementCounter(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.readLocked(stateObject)
	if err != nil {
		return 0, err
	}
	n := decodeState(b) + 1
	if err := r.writeLocked(stateObject, state{VisitCount: n}); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) read(name string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked(name)
}

func (r *FileRepository) readLocked(name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(r.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return b, nil
}

func (r *FileRepository) writeJSON(name string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeLocked(name, v)
}

func (r *FileRepository) writeLocked(name string, v any) error {
	b, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: %w", err)
	}
	return nil
}
