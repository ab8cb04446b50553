package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetList(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Put(TableUsers, 1, []byte(`{"id":1}`)))
	require.NoError(t, s.Put(TableUsers, 2, []byte(`{"id":2}`)))

	payload, ok, err := s.Get(TableUsers, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":1}`, string(payload))

	_, ok, err = s.Get(TableUsers, 99)
	require.NoError(t, err)
	require.False(t, ok)

	records, err := s.List(TableUsers, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint64(1), records[0].ID)
	require.Equal(t, uint64(2), records[1].ID)
}

func TestMemoryStoreListFromCursor(t *testing.T) {
	s := NewMemoryStore()
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.Put(TableEvents, i, []byte("event")))
	}

	records, err := s.List(TableEvents, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, uint64(3), records[0].ID)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put(TableItems, 1, []byte("v1")))
	require.NoError(t, s.Put(TableItems, 1, []byte("v2")))

	payload, ok, err := s.Get(TableItems, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", string(payload))
}

func TestMemoryStoreCopiesAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	payload := []byte("original")
	require.NoError(t, s.Put(TableUsers, 1, payload))
	payload[0] = 'X'

	stored, _, err := s.Get(TableUsers, 1)
	require.NoError(t, err)
	require.Equal(t, "original", string(stored))
}
