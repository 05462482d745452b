package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBboltBackend(t *testing.T) {
	runBackendTests(t, func(t *testing.T) Backend {
		b, err := NewBboltBackend(filepath.Join(t.TempDir(), "suites.db"))
		require.NoError(t, err)
		t.Cleanup(func() { b.Close() })
		return b
	})
}

func TestBboltBackendCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "suites.db")

	b, err := NewBboltBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.FileExists(t, path)
}

func TestBboltBackendPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suites.db")

	b, err := NewBboltBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.CreateBucket(testBucket))
	require.NoError(t, PutString(b, testBucket, "k", []byte("v")))
	require.NoError(t, b.Close())

	b, err = NewBboltBackend(path)
	require.NoError(t, err)
	defer b.Close()

	v, err := GetString(b, testBucket, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}
