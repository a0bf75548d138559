package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	return db
}

func TestGormKVStore_ReadWrite(t *testing.T) {
	store := NewGormKVStore(setupTestDB(t))

	key := "order_1_price"

	val, err := store.Read(key)
	require.NoError(t, err)
	require.Nil(t, val)

	require.NoError(t, store.Write(key, []byte(`{"price":100}`)))
	val, err = store.Read(key)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"price":100}`), val)

	require.NoError(t, store.Write(key, []byte(`{"price":200}`)))
	val, err = store.Read(key)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"price":200}`), val)

	require.NoError(t, store.Delete(key))
	val, err = store.Read(key)
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestGormKVStore_DeleteUpdatedBefore(t *testing.T) {
	store := NewGormKVStore(setupTestDB(t))

	require.NoError(t, store.Write("order_1_price", []byte("a")))
	require.NoError(t, store.Write("order_2_price", []byte("b")))
	require.NoError(t, store.Write("session", []byte("c")))

	n, err := store.DeleteUpdatedBefore("order_", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	val, err := store.Read("session")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), val)
}

func TestMemoryKVStore(t *testing.T) {
	store := NewMemoryKVStore(time.Minute)

	val, err := store.Read("k")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, store.Write("k", []byte("v")))
	val, err = store.Read("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, store.Delete("k"))
	val, _ = store.Read("k")
	assert.Nil(t, val)
}

func TestCachedKVStore(t *testing.T) {
	back := NewGormKVStore(setupTestDB(t))
	store := NewCachedKVStore(back, time.Minute)

	require.NoError(t, back.Write("k", []byte("from-db")))
	val, err := store.Read("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-db"), val)

	require.NoError(t, store.Write("k", []byte("new")))
	val, err = back.Read("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), val)

	require.NoError(t, store.Delete("k"))
	val, err = store.Read("k")
	require.NoError(t, err)
	assert.Nil(t, val)
}
