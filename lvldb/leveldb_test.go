// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	persistent, err := New(t.TempDir(), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{persistent, mem} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := db.Bulk()
	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	require.NoError(t, b.Put([]byte("b"), []byte("2")))
	require.NoError(t, b.Delete([]byte("a")))
	assert.Equal(t, 3, b.Len())

	has, err := db.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has, "bulk is not visible before Write")

	require.NoError(t, b.Write())
	has, err = db.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("k1"), []byte("outside")))
	pools := kv.Bucket("pool/")
	exits := kv.Bucket("exit/")

	b := db.Bulk()
	require.NoError(t, pools.NewBulk(b).Put([]byte("2"), []byte("b")))
	require.NoError(t, pools.NewBulk(b).Put([]byte("1"), []byte("a")))
	require.NoError(t, exits.NewBulk(b).Put([]byte("1"), []byte("x")))
	require.NoError(t, b.Write())

	got, err := pools.NewGetter(db).Get([]byte("1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	has, err := pools.NewGetter(db).Has([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, exits.NewPutter(db).Delete([]byte("1")))
	_, err = exits.NewGetter(db).Get([]byte("1"))
	assert.True(t, exits.NewGetter(db).IsNotFound(err))

	var keys, values []string
	it := pools.Iterate(db, kv.Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, []string{"a", "b"}, values)

	it = pools.Iterate(db, kv.Range{Start: []byte("2")})
	defer it.Release()
	require.True(t, it.Next())
	assert.Equal(t, "2", string(it.Key()))
	assert.False(t, it.Next())
}
