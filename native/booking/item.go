package booking

import "fmt"

// Item is one rentable resource owned by a user (spec §3/§4.3 admission
// algorithm). It owns the sparse availability calendar and the set of live
// reservations, and performs pricing and conflict checks on
// NewReservation.
type Item struct {
	ID                        uint64
	OwnerID                   uint64
	Currency                  string
	MinimumReservationPeriod  int64
	MinCancellationForewarning int64
	Calendar                  *Calendar
	Reservations              map[uint64]*Reservation
	reservationOrder          []uint64
}

// NewItem validates and constructs an item. minimumReservationPeriod must be
// positive and minCancellationForewarning non-negative (spec §3).
func NewItem(id, ownerID uint64, currency string, minimumReservationPeriod, minCancellationForewarning int64) (*Item, error) {
	if minimumReservationPeriod <= 0 {
		return nil, fmt.Errorf("%w: minimum_reservation_period must be positive", ErrBadArgument)
	}
	if minCancellationForewarning < 0 {
		return nil, fmt.Errorf("%w: min_cancellation_forewarning must be non-negative", ErrBadArgument)
	}
	return &Item{
		ID:                         id,
		OwnerID:                    ownerID,
		Currency:                   currency,
		MinimumReservationPeriod:   minimumReservationPeriod,
		MinCancellationForewarning: minCancellationForewarning,
		Calendar:                   NewCalendar(),
		Reservations:               make(map[uint64]*Reservation),
	}, nil
}

// AddOrModifyAvailabilityInterval implements spec §4.2. inserted reports
// whether a brand new interval was created (vs. an existing one modified).
func (it *Item) AddOrModifyAvailabilityInterval(now, startTime int64, available bool, unitPrice Decimal, hasPrice bool) (inserted bool, err error) {
	return it.Calendar.AddOrModify(now, startTime, available, unitPrice, hasPrice)
}

// pruneLiveReservations drops reservations that are no longer "live" per
// spec I2 (cancelled, or already past end_time) from the tracked set,
// mirroring the original contract's retain-with-conflict-check pass.
func (it *Item) pruneLiveReservations(now, start, end int64) error {
	kept := it.reservationOrder[:0:0]
	for _, id := range it.reservationOrder {
		res := it.Reservations[id]
		if res == nil {
			continue
		}
		if res.Status == ReservationCustomerCancelled || res.Status == ReservationOwnerCancelled || res.EndTime < now {
			continue
		}
		if res.Overlaps(start, end) {
			return ErrConflict
		}
		kept = append(kept, id)
	}
	it.reservationOrder = kept
	return nil
}

// NewReservation implements spec §4.3's new_reservation admission and
// pricing algorithm: validate alignment, price the calendar walk, check for
// conflicts against live reservations, then escrow total_price from bucket
// into a freshly minted Reservation.
func (it *Item) NewReservation(id, customerID uint64, startTime, endTime, now int64, bucket Bucket) (*Reservation, Bucket, error) {
	if startTime <= now {
		return nil, Bucket{}, fmt.Errorf("%w: start_time must be in the future", ErrBadArgument)
	}
	if endTime < startTime+it.MinimumReservationPeriod {
		return nil, Bucket{}, fmt.Errorf("%w: reservation length below minimum_reservation_period", ErrBadArgument)
	}
	if (endTime-startTime)%it.MinimumReservationPeriod != 0 {
		return nil, Bucket{}, fmt.Errorf("%w: reservation length must be a multiple of minimum_reservation_period", ErrBadArgument)
	}
	if bucket.Currency != it.Currency {
		return nil, Bucket{}, fmt.Errorf("%w: item is %s, bucket is %s", ErrWrongCurrency, it.Currency, bucket.Currency)
	}

	totalPrice, err := it.Calendar.PriceInterval(startTime, endTime, it.MinimumReservationPeriod)
	if err != nil {
		return nil, Bucket{}, err
	}

	if err := it.pruneLiveReservations(now, startTime, endTime); err != nil {
		return nil, Bucket{}, err
	}

	if totalPrice.Cmp(bucket.Amount) > 0 {
		return nil, Bucket{}, fmt.Errorf("%w: payment bucket does not cover total_price", ErrInsufficientFunds)
	}
	price := NewBucket(it.Currency, totalPrice)
	change := NewBucket(it.Currency, bucket.Amount.Sub(totalPrice))

	maxCancellationTime := startTime - it.MinCancellationForewarning
	reservation := newReservation(id, it.ID, customerID, startTime, endTime, it.Currency, price, maxCancellationTime)

	it.Reservations[id] = reservation
	it.reservationOrder = append(it.reservationOrder, id)

	return reservation, change, nil
}

// GetReservation looks up a reservation by id, returning ErrReservationNotFound
// when absent.
func (it *Item) GetReservation(id uint64) (*Reservation, error) {
	res, ok := it.Reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return res, nil
}
