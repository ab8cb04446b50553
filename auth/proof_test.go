package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookingengine/native/booking"
)

func TestIssuerMintAndVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), "bookingd", time.Hour)

	token, err := iss.Mint(booking.ProofKindReservation, 42, 7)
	require.NoError(t, err)

	proof, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, booking.ProofKindReservation, proof.Kind)
	require.Equal(t, uint64(42), proof.Subject)
	require.Equal(t, uint64(7), proof.Resource)
}

func TestIssuerRejectsWrongSecret(t *testing.T) {
	iss := NewIssuer([]byte("secret-a"), "bookingd", time.Hour)
	other := NewIssuer([]byte("secret-b"), "bookingd", time.Hour)

	token, err := iss.Mint(booking.ProofKindUser, 1, 0)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsExpiredToken(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), "bookingd", -time.Hour)

	token, err := iss.Mint(booking.ProofKindAdmin, 0, 0)
	require.NoError(t, err)

	_, err = iss.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsWrongIssuer(t *testing.T) {
	minter := NewIssuer([]byte("test-secret"), "issuer-a", time.Hour)
	verifier := NewIssuer([]byte("test-secret"), "issuer-b", time.Hour)

	token, err := minter.Mint(booking.ProofKindUser, 1, 0)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerZeroTTLNeverExpires(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), "bookingd", 0)
	token, err := iss.Mint(booking.ProofKindAdmin, 0, 0)
	require.NoError(t, err)

	proof, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, booking.ProofKindAdmin, proof.Kind)
}
