package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/filex"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"go.etcd.io/bbolt"
)

var bucketCycleLogin = []byte("cycle_login")

// Keys inside the bucket. They keep the names the browser-only version used
// in local storage so exported data lines up.
var (
	keyUsers      = []byte("cycle_login_users")
	keyVisitCount = []byte("cycle_login_visitCount")
	keyPageVisits = []byte("cycle_login_pageVisits")
)

// BoltRepository is a single-file embedded store. Users and visits are JSON
// arrays; the counter is decimal text.
type BoltRepository struct {
	db *bbolt.DB
}

// NewBoltRepository opens (or creates) the database at path.
func NewBoltRepository(path string) (*BoltRepository, error) {
	if err := filex.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCycleLogin)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	b, err := r.get(keyUsers)
	if err != nil {
		return nil, err
	}
	return decodeUsers(b), nil
}

func (r *BoltRepository) PutUsers(ctx context.Context, users []models.User) error {
	return r.putJSON(keyUsers, nonNilUsers(users))
}

func (r *BoltRepository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	b, err := r.get(keyPageVisits)
	if err != nil {
		return nil, err
	}
	return decodeVisits(b), nil
}

func (r *BoltRepository) PutVisits(ctx context.Context, visits []models.Visit) error {
	return r.putJSON(keyPageVisits, nonNilVisits(visits))
}

// AppendVisit reads, appends and writes back in one update transaction.
func (r *BoltRepository) AppendVisit(ctx context.Context, v models.Visit) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCycleLogin)
		visits := append(decodeVisits(b.Get(keyPageVisits)), v)
		data, err := json.Marshal(visits)
		if err != nil {
			return err
		}
		return b.Put(keyPageVisits, data)
	})
	if err != nil {
		return fmt.Errorf("boltdb: %w", err)
	}
	return nil
}

func (r *BoltRepository) GetCounter(ctx context.Context) (int64, error) {
	b, err := r.get(keyVisitCount)
	if err != nil {
		return 0, err
	}
	return parseCount(string(b)), nil
}

func (r *BoltRepository) PutCounter(ctx context.Context, n int64) error {
	return r.put(keyVisitCount, []byte(strconv.FormatInt(n, 10)))
}

// IncrementCounter is atomic: bbolt runs one writer at a time.
func (r *BoltRepository) IncrementCounter(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCycleLogin)
		n = parseCount(string(b.Get(keyVisitCount))) + 1
		return b.Put(keyVisitCount, []byte(strconv.FormatInt(n, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("boltdb: %w", err)
	}
	return n, nil
}

func (r *BoltRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *BoltRepository) get(key []byte) ([]byte, error) {
	var out []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCycleLogin).Get(key); v != nil {
			// v is only valid inside the transaction.
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltdb: %w", err)
	}
	return out, nil
}

func (r *BoltRepository) put(key, value []byte) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCycleLogin).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("boltdb: %w", err)
	}
	return nil
}

func (r *BoltRepository) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("boltdb: %w", err)
	}
	return r.put(key, data)
}
