package booking

import "fmt"

// ReservationStatus enumerates the six states of spec §4.3's state machine.
type ReservationStatus uint8

const (
	ReservationBooked ReservationStatus = iota
	ReservationCustomerCancelled
	ReservationOwnerCancelled
	ReservationDisputing
	ReservationDisputeTerminated
	ReservationCompleted
)

// Valid reports whether the status is one of the six supported values.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationBooked, ReservationCustomerCancelled, ReservationOwnerCancelled,
		ReservationDisputing, ReservationDisputeTerminated, ReservationCompleted:
		return true
	default:
		return false
	}
}

// String renders the canonical lowercase name used in events and RPC payloads.
func (s ReservationStatus) String() string {
	switch s {
	case ReservationBooked:
		return "booked"
	case ReservationCustomerCancelled:
		return "customer_cancelled"
	case ReservationOwnerCancelled:
		return "owner_cancelled"
	case ReservationDisputing:
		return "disputing"
	case ReservationDisputeTerminated:
		return "dispute_terminated"
	case ReservationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Reservation is one booking's state machine and escrow vault (spec §3/§4.3).
type Reservation struct {
	ID                  uint64
	ItemID              uint64
	CustomerID          uint64
	StartTime           int64
	EndTime             int64
	MaxCancellationTime int64
	Vault               *Vault
	Status              ReservationStatus
	RefundAmount        Decimal
	ToOwner             Decimal
	DisputeVotes        map[uint64]Decimal
	DisputeVotesSum     Decimal
}

// newReservation constructs a freshly booked reservation holding the priced
// bucket in escrow. It is unexported: admission (pricing + conflict check)
// lives in Item.NewReservation, which calls this once every precondition in
// spec §4.3 has passed.
func newReservation(id, itemID, customerID uint64, startTime, endTime int64, currency string, price Bucket, maxCancellationTime int64) *Reservation {
	vault := NewVault(currency)
	// Deposit cannot fail here: price was taken from the caller's bucket in
	// the same currency by the caller.
	_ = vault.Deposit(price)
	return &Reservation{
		ID:                  id,
		ItemID:              itemID,
		CustomerID:          customerID,
		StartTime:           startTime,
		EndTime:             endTime,
		MaxCancellationTime: maxCancellationTime,
		Vault:               vault,
		Status:              ReservationBooked,
		RefundAmount:        ZeroDecimal(),
		ToOwner:             ZeroDecimal(),
		DisputeVotes:        make(map[uint64]Decimal),
		DisputeVotesSum:     ZeroDecimal(),
	}
}

// IsLive reports whether the reservation still occupies its calendar slot
// for conflict-checking purposes (spec I2): neither cancellation status, and
// its end_time has not already passed.
func (r *Reservation) IsLive(now int64) bool {
	if r.Status == ReservationCustomerCancelled || r.Status == ReservationOwnerCancelled {
		return false
	}
	return r.EndTime >= now
}

// Overlaps reports whether [start, end) intersects this reservation's interval.
func (r *Reservation) Overlaps(start, end int64) bool {
	return !(r.EndTime <= start || r.StartTime >= end)
}

// CancellationByCustomer implements the Booked -> CustomerCancelled
// transition: the entire vault is returned to the customer. It fails
// ErrWrongState outside Booked and ErrTooEarly past MaxCancellationTime.
func (r *Reservation) CancellationByCustomer(now int64) (Bucket, error) {
	if r.Status != ReservationBooked {
		return Bucket{}, fmt.Errorf("%w: reservation is %s", ErrWrongState, r.Status)
	}
	if now > r.MaxCancellationTime {
		return Bucket{}, fmt.Errorf("%w: past max_cancellation_time", ErrTooEarly)
	}
	r.Status = ReservationCustomerCancelled
	return r.Vault.TakeAll(), nil
}

// CancellationByOwner implements Booked -> OwnerCancelled and
// Disputing -> OwnerCancelled. Funds remain untouched; a later get_refund
// drains them to the customer.
func (r *Reservation) CancellationByOwner() error {
	if r.Status != ReservationBooked && r.Status != ReservationDisputing {
		return fmt.Errorf("%w: reservation is %s", ErrWrongState, r.Status)
	}
	r.Status = ReservationOwnerCancelled
	return nil
}

// StartDispute implements Booked -> Disputing.
func (r *Reservation) StartDispute() error {
	if r.Status != ReservationBooked {
		return fmt.Errorf("%w: reservation is %s", ErrWrongState, r.Status)
	}
	r.Status = ReservationDisputing
	return nil
}

// OfferPartialRefund implements the owner's Disputing -> Disputing transition
// that fixes refund_amount/to_owner ahead of customer or arbitrator action.
// The spec notes the original contract's precondition was inverted
// ("refund_amount < 0"); this implementation uses the intended sense,
// refund_amount > 0 and refund_amount <= vault balance.
func (r *Reservation) OfferPartialRefund(amount Decimal) error {
	if r.Status != ReservationDisputing {
		return fmt.Errorf("%w: reservation is %s", ErrWrongState, r.Status)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: refund_amount must be positive", ErrBadArgument)
	}
	balance := r.Vault.Amount()
	if amount.Cmp(balance) > 0 {
		return fmt.Errorf("%w: refund_amount exceeds vault balance", ErrBadArgument)
	}
	r.RefundAmount = amount
	r.ToOwner = balance.Sub(amount)
	return nil
}

// GetRefund drains whatever is owed to the customer, implementing the
// OwnerCancelled/Disputing/DisputeTerminated branches of get_refund. Calling
// it again once a balance has already been fully drained returns a
// zero-amount bucket rather than an error — a supplemented, idempotent-drain
// behaviour (see SPEC_FULL.md §4) rather than WrongState.
func (r *Reservation) GetRefund() (Bucket, error) {
	switch r.Status {
	case ReservationOwnerCancelled:
		return r.Vault.TakeAll(), nil
	case ReservationDisputing:
		r.Status = ReservationDisputeTerminated
		amount := r.RefundAmount
		r.RefundAmount = ZeroDecimal()
		return r.Vault.Take(amount)
	case ReservationDisputeTerminated:
		amount := r.RefundAmount
		r.RefundAmount = ZeroDecimal()
		return r.Vault.Take(amount)
	default:
		return Bucket{}, fmt.Errorf("%w: no refund available from %s", ErrWrongState, r.Status)
	}
}

// GetPayment implements the owner-side payout: Booked -> Completed once
// now >= end_time+payment_delay, and the DisputeTerminated drain of the
// owner's share. Calling it again once to_owner is already drained returns a
// zero-amount bucket (see GetRefund's idempotent-drain note).
func (r *Reservation) GetPayment(now, paymentDelay int64) (Bucket, error) {
	switch r.Status {
	case ReservationBooked:
		if now < r.EndTime+paymentDelay {
			return Bucket{}, fmt.Errorf("%w: payment not due until end_time+payment_delay", ErrTooEarly)
		}
		r.Status = ReservationCompleted
		return r.Vault.TakeAll(), nil
	case ReservationDisputeTerminated:
		amount := r.ToOwner
		r.ToOwner = ZeroDecimal()
		return r.Vault.Take(amount)
	default:
		return Bucket{}, fmt.Errorf("%w: no payment available from %s", ErrWrongState, r.Status)
	}
}

// DisputeVote records or overwrites one arbitrator's vote and, once quorum is
// reached, finalizes the dispute by averaging all recorded percentages and
// splitting the vault accordingly. Returns terminated=true when this call
// caused the DisputeTerminated transition.
func (r *Reservation) DisputeVote(arbitratorID uint64, refundPercentage Decimal, minArbitrators int) (terminated bool, err error) {
	if r.Status != ReservationDisputing {
		return false, fmt.Errorf("%w: reservation is %s", ErrWrongState, r.Status)
	}
	if refundPercentage.IsNegative() || refundPercentage.Cmp(DecimalFromInt64(100)) > 0 {
		return false, fmt.Errorf("%w: refund_percentage must be within [0,100]", ErrBadArgument)
	}

	if old, ok := r.DisputeVotes[arbitratorID]; ok {
		r.DisputeVotesSum = r.DisputeVotesSum.Sub(old)
	}
	r.DisputeVotes[arbitratorID] = refundPercentage
	r.DisputeVotesSum = r.DisputeVotesSum.Add(refundPercentage)

	if len(r.DisputeVotes) < minArbitrators {
		return false, nil
	}

	r.Status = ReservationDisputeTerminated
	avgPercentage := r.DisputeVotesSum.DivInt(int64(len(r.DisputeVotes)))
	balance := r.Vault.Amount()
	r.RefundAmount = avgPercentage.DivInt(100).Mul(balance)
	r.ToOwner = balance.Sub(r.RefundAmount)
	return true, nil
}
