package rpcserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"bookingengine/native/booking"
)

func TestTranslateErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{booking.ErrNotAuthorized, http.StatusForbidden, codeNotAuthorized},
		{booking.ErrItemNotFound, http.StatusNotFound, codeNotFound},
		{booking.ErrConflict, http.StatusConflict, codeConflict},
		{booking.ErrBadArgument, http.StatusBadRequest, codeBadArgument},
		{booking.ErrInsufficientFunds, http.StatusConflict, codeInsufficientFunds},
	}
	for _, c := range cases {
		modErr := translateError(c.err)
		require.Equal(t, c.status, modErr.HTTPStatus)
		require.Equal(t, c.code, modErr.Code)
	}
}

func TestTranslateErrorUnknownFallsBackToServerError(t *testing.T) {
	modErr := translateError(require.AnError)
	require.Equal(t, http.StatusInternalServerError, modErr.HTTPStatus)
	require.Equal(t, codeServerError, modErr.Code)
}
