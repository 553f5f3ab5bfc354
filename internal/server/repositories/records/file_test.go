package records

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRepo(t *testing.T) *FileRepository {
	t.Helper()
	r, err := NewFileRepository(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return r
}

func TestFileRepository_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository { return newFileRepo(t) },
		func(t *testing.T, r Repository) {
			path := filepath.Join(r.(*FileRepository).dir, stateObject)
			require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		})
}

func TestFileRepository_MalformedFilesReadAsDefaults(t *testing.T) {
	r := newFileRepo(t)
	ctx := context.Background()

	for _, name := range []string{usersObject, visitsObject, stateObject} {
		require.NoError(t, os.WriteFile(filepath.Join(r.dir, name), []byte("{not json"), 0o600))
	}

	users, err := r.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	visits, err := r.GetVisits(ctx)
	require.NoError(t, err)
	assert.Empty(t, visits)

	n, err := r.GetCounter(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.IncrementCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFileRepository_WritesIndentedState(t *testing.T) {
	r := newFileRepo(t)
	require.NoError(t, r.PutCounter(context.Background(), 7))

	b, err := os.ReadFile(filepath.Join(r.dir, stateObject))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"visitCount\": 7\n}", string(b))
}

func TestFileRepository_LeavesNoTempFiles(t *testing.T) {
	r := newFileRepo(t)
	ctx := context.Background()
	require.NoError(t, r.PutUsers(ctx, sampleUsers()))
	require.NoError(t, r.PutVisits(ctx, sampleVisits()))

	entries, err := os.ReadDir(r.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestNewFileRepository_BadDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	_, err := NewFileRepository(filepath.Join(f, "sub"))
	assert.Error(t, err)
}
