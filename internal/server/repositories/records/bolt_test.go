package records

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func newBoltRepo(t *testing.T) *BoltRepository {
	t.Helper()
	r, err := NewBoltRepository(filepath.Join(t.TempDir(), "cycle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBoltRepository_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository { return newBoltRepo(t) },
		func(t *testing.T, r Repository) {
			require.NoError(t, r.(*BoltRepository).put(keyVisitCount, []byte("garbage")))
		})
}

func TestBoltRepository_MalformedValuesReadAsDefaults(t *testing.T) {
	r := newBoltRepo(t)
	ctx := context.Background()

	require.NoError(t, r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCycleLogin)
		if err := b.Put(keyUsers, []byte("[{")); err != nil {
			return err
		}
		if err := b.Put(keyPageVisits, []byte("42")); err != nil {
			return err
		}
		return b.Put(keyVisitCount, []byte("abc"))
	}))

	users, err := r.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	visits, err := r.GetVisits(ctx)
	require.NoError(t, err)
	assert.Empty(t, visits)

	n, err := r.IncrementCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBoltRepository_CounterStoredAsText(t *testing.T) {
	r := newBoltRepo(t)
	require.NoError(t, r.PutCounter(context.Background(), 12))

	var raw string
	require.NoError(t, r.db.View(func(tx *bbolt.Tx) error {
		raw = string(tx.Bucket(bucketCycleLogin).Get(keyVisitCount))
		return nil
	}))
	assert.Equal(t, "12", raw)
}

func TestBoltRepository_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.db")
	ctx := context.Background()

	r, err := NewBoltRepository(path)
	require.NoError(t, err)
	require.NoError(t, r.PutUsers(ctx, sampleUsers()))
	require.NoError(t, r.Close())

	r, err = NewBoltRepository(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleUsers(), got)
}

func TestNewBoltRepository_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cycle.db")

	r, err := NewBoltRepository(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
}
