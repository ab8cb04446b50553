package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRegistryIssuesIncreasingIDs(t *testing.T) {
	r := newUserRegistry()
	first := r.newUser()
	second := r.newUser()
	require.Equal(t, uint64(1), first.ID)
	require.Equal(t, uint64(2), second.ID)

	got, err := r.get(first.ID)
	require.NoError(t, err)
	require.Same(t, first, got)

	_, err = r.get(99)
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestArbitratorRegistryIssueRevokeActive(t *testing.T) {
	r := newArbitratorRegistry()
	a := r.issue()
	require.True(t, r.active(a.ID))

	require.NoError(t, r.revoke(a.ID))
	require.False(t, r.active(a.ID))

	err := r.revoke(999)
	require.ErrorIs(t, err, ErrArbitratorNotFound)
}
