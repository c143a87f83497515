package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, kv ReadOnlyKVStore, key []byte) []byte {
	t.Helper()
	val, err := kv.Get(key)
	require.NoError(t, err)
	return val
}

func mustHas(t *testing.T, kv ReadOnlyKVStore, key []byte) bool {
	t.Helper()
	ok, err := kv.Has(key)
	require.NoError(t, err)
	return ok
}

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assert.Nil(t, mustGet(t, base, k))
	assert.False(t, mustHas(t, base, k))
	require.NoError(t, base.Set(k, v))
	assert.Equal(t, v, mustGet(t, base, k))
	assert.True(t, mustHas(t, base, k))

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assert.Equal(t, v, mustGet(t, cache, k))

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assert.Equal(t, v2, mustGet(t, cache, k2))
	assert.Nil(t, mustGet(t, base, k2))
	assert.False(t, mustHas(t, base, k2))

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assert.Equal(t, v, mustGet(t, base, k))
	assert.Equal(t, v2, mustGet(t, base, k2))

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	assert.Nil(t, mustGet(t, base, k3))

	// and commit another with a delete
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	assert.False(t, mustHas(t, c3, k))
	assert.True(t, mustHas(t, base, k))
	require.NoError(t, c3.Write())

	assert.Nil(t, mustGet(t, base, k))
	assert.Equal(t, v2, mustGet(t, base, k2))

	// and to test devnull....
	require.NoError(t, base.Write())
	assert.Nil(t, mustGet(t, devnull, k2))
}

func collect(t *testing.T, it Iterator) []Model {
	t.Helper()
	defer it.Close()
	var res []Model
	for it.Valid() {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
		require.NoError(t, it.Next())
	}
	return res
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "c", "e", "g"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Set([]byte("e"), []byte("cache-e")))
	require.NoError(t, cache.Delete([]byte("c")))
	require.NoError(t, cache.Delete([]byte("z")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"full range": {
			want: []string{"a:base-a", "b:cache-b", "e:cache-e", "g:base-g"},
		},
		"with start": {
			start: []byte("b"),
			want:  []string{"b:cache-b", "e:cache-e", "g:base-g"},
		},
		"with end": {
			end:  []byte("e"),
			want: []string{"a:base-a", "b:cache-b"},
		},
		"reverse full range": {
			reverse: true,
			want:    []string{"g:base-g", "e:cache-e", "b:cache-b", "a:base-a"},
		},
		"reverse bounded": {
			start:   []byte("b"),
			end:     []byte("g"),
			reverse: true,
			want:    []string{"e:cache-e", "b:cache-b"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)

			var got []string
			for _, m := range collect(t, it) {
				got = append(got, string(m.Key)+":"+string(m.Value))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	b := NewNonAtomicBatch(base)
	require.NoError(t, b.Set([]byte("one"), []byte("1")))
	require.NoError(t, b.Set([]byte("two"), []byte("2")))
	require.NoError(t, b.Delete([]byte("one")))

	// nothing is visible until written
	assert.False(t, mustHas(t, base, []byte("two")))
	require.NoError(t, b.Write())
	assert.False(t, mustHas(t, base, []byte("one")))
	assert.Equal(t, []byte("2"), mustGet(t, base, []byte("two")))
}

func TestSliceIteratorPastEnd(t *testing.T) {
	it := NewSliceIterator([]Model{{Key: []byte("k"), Value: []byte("v")}})
	require.True(t, it.Valid())
	require.NoError(t, it.Next())
	assert.False(t, it.Valid())
	assert.Error(t, it.Next())
}
