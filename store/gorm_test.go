package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGormStorePutGetList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.sqlite")
	s, err := OpenGormStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(TableItems, 1, []byte(`{"id":1}`)))
	require.NoError(t, s.Put(TableItems, 2, []byte(`{"id":2}`)))

	payload, ok, err := s.Get(TableItems, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":1}`, string(payload))

	_, ok, err = s.Get(TableItems, 99)
	require.NoError(t, err)
	require.False(t, ok)

	records, err := s.List(TableItems, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestGormStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.sqlite")
	s, err := OpenGormStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(TableUsers, 7, []byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := OpenGormStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	payload, ok, err := reopened.Get(TableUsers, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", string(payload))
}

func TestGormStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookingd.sqlite")
	s, err := OpenGormStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(TableEvents, 1, []byte("v1")))
	require.NoError(t, s.Put(TableEvents, 1, []byte("v2")))

	payload, ok, err := s.Get(TableEvents, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", string(payload))
}
