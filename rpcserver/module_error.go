package rpcserver

import (
	"errors"
	"net/http"

	"bookingengine/native/booking"
)

// Negative integer error codes, the same JSON-RPC-flavored code table
// rpc/modules.ModuleError uses, reused here as a documented code table for
// this engine's plain HTTP facade rather than a JSON-RPC envelope.
const (
	codeInvalidCredential = -32001
	codeNotAuthorized     = -32002
	codeNotFound          = -32003
	codeBadArgument       = -32602
	codeWrongState        = -32010
	codeNoAvailability    = -32011
	codeMisaligned        = -32012
	codeUnavailable       = -32013
	codeConflict          = -32014
	codeTooEarly          = -32015
	codeWrongCurrency     = -32016
	codeInsufficientFunds = -32017
	codeServerError       = -32000
)

// ModuleError is the typed HTTP error response, mirroring
// rpc/modules.ModuleError's {HTTPStatus, Code, Message, Data} shape.
type ModuleError struct {
	HTTPStatus int         `json:"-"`
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// Error implements error.
func (e *ModuleError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// translateError maps a native/booking sentinel error to its ModuleError
// wire representation. Unrecognized errors collapse to a generic 500.
func translateError(err error) *ModuleError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, booking.ErrInvalidCredential):
		return &ModuleError{HTTPStatus: http.StatusUnauthorized, Code: codeInvalidCredential, Message: err.Error()}
	case errors.Is(err, booking.ErrNotAuthorized):
		return &ModuleError{HTTPStatus: http.StatusForbidden, Code: codeNotAuthorized, Message: err.Error()}
	case errors.Is(err, booking.ErrItemNotFound),
		errors.Is(err, booking.ErrReservationNotFound),
		errors.Is(err, booking.ErrArbitratorNotFound):
		return &ModuleError{HTTPStatus: http.StatusNotFound, Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, booking.ErrBadArgument):
		return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: err.Error()}
	case errors.Is(err, booking.ErrWrongState):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeWrongState, Message: err.Error()}
	case errors.Is(err, booking.ErrNoAvailability):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeNoAvailability, Message: err.Error()}
	case errors.Is(err, booking.ErrMisaligned):
		return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeMisaligned, Message: err.Error()}
	case errors.Is(err, booking.ErrUnavailable):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeUnavailable, Message: err.Error()}
	case errors.Is(err, booking.ErrConflict):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeConflict, Message: err.Error()}
	case errors.Is(err, booking.ErrTooEarly):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeTooEarly, Message: err.Error()}
	case errors.Is(err, booking.ErrWrongCurrency):
		return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeWrongCurrency, Message: err.Error()}
	case errors.Is(err, booking.ErrInsufficientFunds):
		return &ModuleError{HTTPStatus: http.StatusConflict, Code: codeInsufficientFunds, Message: err.Error()}
	default:
		return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: err.Error()}
	}
}
