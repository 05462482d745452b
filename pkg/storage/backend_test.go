package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBucket = []byte("suites")

// runBackendTests exercises the operations SuiteStore relies on against any
// Backend. open returns a fresh, empty backend; closing is left to open.
func runBackendTests(t *testing.T, open func(t *testing.T) Backend) {
	t.Run("BucketLifecycle", func(t *testing.T) {
		b := open(t)

		exists, err := b.BucketExists(testBucket)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, b.CreateBucket(testBucket))
		require.NoError(t, b.CreateBucket(testBucket), "create is idempotent")
		exists, err = b.BucketExists(testBucket)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, b.Put(testBucket, []byte("k"), []byte("v")))
		require.NoError(t, b.DeleteBucket(testBucket))
		require.NoError(t, b.DeleteBucket(testBucket), "delete is idempotent")
		exists, err = b.BucketExists(testBucket)
		require.NoError(t, err)
		assert.False(t, exists)

		// A recreated bucket starts empty.
		require.NoError(t, b.CreateBucket(testBucket))
		v, err := b.Get(testBucket, []byte("k"))
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("PutGetDelete", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.CreateBucket(testBucket))

		require.NoError(t, PutString(b, testBucket, "two-sum", []byte(`{"a":1}`)))
		require.NoError(t, PutString(b, testBucket, "two-sum", []byte(`{"a":2}`)))

		v, err := GetString(b, testBucket, "two-sum")
		require.NoError(t, err)
		assert.Equal(t, `{"a":2}`, string(v), "put overwrites")

		missing, err := GetString(b, testBucket, "absent")
		require.NoError(t, err)
		assert.Nil(t, missing)

		require.NoError(t, DeleteString(b, testBucket, "two-sum"))
		require.NoError(t, DeleteString(b, testBucket, "two-sum"), "deleting a missing key is fine")
		v, err = GetString(b, testBucket, "two-sum")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.CreateBucket(testBucket))

		in := []byte("abc")
		require.NoError(t, b.Put(testBucket, []byte("k"), in))
		in[0] = 'x'

		out, err := b.Get(testBucket, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "abc", string(out))
		out[0] = 'y'

		again, err := b.Get(testBucket, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("ForEachInKeyOrder", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.CreateBucket(testBucket))
		for _, k := range []string{"delta", "alpha", "charlie", "bravo"} {
			require.NoError(t, PutString(b, testBucket, k, []byte("v-"+k)))
		}

		var keys, values []string
		err := b.ForEach(testBucket, func(k, v []byte) error {
			keys = append(keys, string(k))
			values = append(values, string(v))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, keys)
		assert.Equal(t, "v-alpha", values[0])
	})

	t.Run("ForEachStopsOnError", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.CreateBucket(testBucket))
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, PutString(b, testBucket, k, []byte(k)))
		}

		stop := assert.AnError
		visited := 0
		err := b.ForEach(testBucket, func(k, v []byte) error {
			visited++
			if string(k) == "b" {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 2, visited)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		b := open(t)
		nope := []byte("nope")

		assert.ErrorIs(t, b.Put(nope, []byte("k"), []byte("v")), ErrBucketNotFound)
		_, err := b.Get(nope, []byte("k"))
		assert.ErrorIs(t, err, ErrBucketNotFound)
		assert.ErrorIs(t, b.Delete(nope, []byte("k")), ErrBucketNotFound)
		assert.ErrorIs(t, b.ForEach(nope, func(k, v []byte) error { return nil }), ErrBucketNotFound)
	})
}
