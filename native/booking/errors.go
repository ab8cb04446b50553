package booking

import "errors"

// Sentinel error kinds for the booking engine, namespaced the way the
// teacher's native/lending/engine.go declares its package-level errors
// (errNilState, errInsufficientBalance, ...). Callers use errors.Is to branch
// on kind; the RPC facade maps each to a documented wire code (see
// rpcserver.ModuleError).
var (
	// ErrInvalidCredential covers a missing proof, a proof for the wrong
	// resource, or a proof of the wrong credential kind.
	ErrInvalidCredential = errors.New("booking: invalid credential")
	// ErrNotAuthorized covers an authenticated identity that lacks the role
	// required for the requested operation.
	ErrNotAuthorized = errors.New("booking: not authorized")
	// ErrItemNotFound is returned when the target item id is unknown.
	ErrItemNotFound = errors.New("booking: item not found")
	// ErrReservationNotFound is returned when the target reservation id is unknown.
	ErrReservationNotFound = errors.New("booking: reservation not found")
	// ErrArbitratorNotFound is returned when revoking an arbitrator id that
	// was never issued. A revoked arbitrator's votes are rejected with
	// ErrInvalidCredential instead.
	ErrArbitratorNotFound = errors.New("booking: arbitrator not found")
	// ErrBadArgument covers out-of-range or malformed operation arguments.
	ErrBadArgument = errors.New("booking: bad argument")
	// ErrWrongState covers an operation attempted from an incompatible
	// reservation status.
	ErrWrongState = errors.New("booking: wrong state")
	// ErrNoAvailability is returned when new_reservation finds no calendar
	// interval covering the requested start_time.
	ErrNoAvailability = errors.New("booking: no availability interval covers start_time")
	// ErrMisaligned is returned when start_time does not align to the
	// containing interval modulo minimum_reservation_period.
	ErrMisaligned = errors.New("booking: start_time misaligned to interval")
	// ErrUnavailable is returned when a crossed calendar interval is marked
	// unavailable.
	ErrUnavailable = errors.New("booking: interval unavailable")
	// ErrConflict is returned when the requested interval overlaps a live
	// reservation.
	ErrConflict = errors.New("booking: conflicts with an existing reservation")
	// ErrTooEarly covers get_payment before end_time+payment_delay and
	// cancellation_by_customer past max_cancellation_time.
	ErrTooEarly = errors.New("booking: too early")
	// ErrWrongCurrency is returned when a bucket's currency does not match
	// the item's declared currency.
	ErrWrongCurrency = errors.New("booking: wrong currency")
	// ErrInsufficientFunds is returned when a vault take exceeds its balance.
	ErrInsufficientFunds = errors.New("booking: insufficient funds")
	// ErrInvariantViolation is fatal: one of I1-I6 was about to be breached.
	// It is never expected to surface in a correct engine, and no code path
	// in this package currently returns it.
	ErrInvariantViolation = errors.New("booking: invariant violation")
)
