package booking

import "strconv"

// Event type identifiers, grounded in native/escrow/events.go's
// EventTypeEscrow* constant block and naming convention (dotted,
// component-qualified).
const (
	EventTypeNewUser                     = "booking.user.created"
	EventTypeNewItem                     = "booking.item.created"
	EventTypeNewAvailabilityInterval     = "booking.item.availability.created"
	EventTypeUpdateAvailabilityInterval  = "booking.item.availability.updated"
	EventTypeNewReservation              = "booking.reservation.created"
	EventTypeReservationCustomerCancel   = "booking.reservation.customer_cancelled"
	EventTypeReservationOwnerCancel      = "booking.reservation.owner_cancelled"
	EventTypeReservationRefund           = "booking.reservation.refunded"
	EventTypeReservationDispute          = "booking.reservation.dispute_started"
	EventTypeReservationRefundOffer      = "booking.reservation.refund_offered"
	EventTypeReservationPayment          = "booking.reservation.paid"
	EventTypeDisputeVote                 = "booking.reservation.dispute_vote"
	EventTypeDisputeVoteTerminated       = "booking.reservation.dispute_terminated"
	EventTypeNewArbitrator               = "booking.arbitrator.issued"
	EventTypeArbitratorRevoked           = "booking.arbitrator.revoked"
)

// Event is the payload fan-out sink for every state-changing operation (spec
// §6 "Events" and §9's "event fan-out is a pure sink"). Sequence is assigned
// by the Engine inside its serialized region so subscribers can resume a
// stream without gaps (SPEC_FULL.md §4's replay cursor).
type Event struct {
	Sequence   int64             `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Emitter is the event transport collaborator. The engine must not depend on
// delivery for correctness (spec §9): a failing or absent emitter never
// blocks or unwinds a state transition.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards every event. It is the Engine's default emitter,
// mirroring native/escrow/engine.go's NewEngine default.
type NoopEmitter struct{}

// Emit implements Emitter by doing nothing.
func (NoopEmitter) Emit(Event) {}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func i64(v int64) string  { return strconv.FormatInt(v, 10) }

func newUserEvent(id uint64) Event {
	return Event{Type: EventTypeNewUser, Attributes: map[string]string{"userId": u64(id)}}
}

func newItemEvent(it *Item) Event {
	return Event{Type: EventTypeNewItem, Attributes: map[string]string{
		"itemId":                     u64(it.ID),
		"ownerId":                    u64(it.OwnerID),
		"currency":                   it.Currency,
		"minimumReservationPeriod":   i64(it.MinimumReservationPeriod),
		"minCancellationForewarning": i64(it.MinCancellationForewarning),
	}}
}

func availabilityIntervalEvent(inserted bool, itemID uint64, startTime int64, available bool, unitPrice Decimal) Event {
	typ := EventTypeUpdateAvailabilityInterval
	if inserted {
		typ = EventTypeNewAvailabilityInterval
	}
	return Event{Type: typ, Attributes: map[string]string{
		"itemId":    u64(itemID),
		"startTime": i64(startTime),
		"available": strconv.FormatBool(available),
		"unitPrice": unitPrice.String(),
	}}
}

func newReservationEvent(r *Reservation) Event {
	return Event{Type: EventTypeNewReservation, Attributes: map[string]string{
		"reservationId": u64(r.ID),
		"itemId":        u64(r.ItemID),
		"customerId":    u64(r.CustomerID),
		"startTime":     i64(r.StartTime),
		"endTime":       i64(r.EndTime),
	}}
}

func reservationCustomerCancelEvent(r *Reservation) Event {
	return Event{Type: EventTypeReservationCustomerCancel, Attributes: map[string]string{"reservationId": u64(r.ID)}}
}

func reservationOwnerCancelEvent(r *Reservation) Event {
	return Event{Type: EventTypeReservationOwnerCancel, Attributes: map[string]string{"reservationId": u64(r.ID)}}
}

func reservationRefundEvent(r *Reservation, oldStatus ReservationStatus, amount Decimal) Event {
	return Event{Type: EventTypeReservationRefund, Attributes: map[string]string{
		"reservationId": u64(r.ID),
		"oldStatus":     oldStatus.String(),
		"newStatus":     r.Status.String(),
		"refundAmount":  amount.String(),
	}}
}

func reservationDisputeEvent(r *Reservation) Event {
	return Event{Type: EventTypeReservationDispute, Attributes: map[string]string{"reservationId": u64(r.ID)}}
}

func reservationRefundOfferEvent(r *Reservation, amount Decimal) Event {
	return Event{Type: EventTypeReservationRefundOffer, Attributes: map[string]string{
		"reservationId": u64(r.ID),
		"refundAmount":  amount.String(),
	}}
}

func reservationPaymentEvent(r *Reservation, oldStatus ReservationStatus, amount Decimal) Event {
	return Event{Type: EventTypeReservationPayment, Attributes: map[string]string{
		"reservationId":  u64(r.ID),
		"oldStatus":      oldStatus.String(),
		"newStatus":      r.Status.String(),
		"paymentAmount":  amount.String(),
	}}
}

func disputeVoteEvent(r *Reservation, arbitratorID uint64, minArbitrators int) Event {
	return Event{Type: EventTypeDisputeVote, Attributes: map[string]string{
		"reservationId":   u64(r.ID),
		"arbitratorId":    u64(arbitratorID),
		"numberOfVoters":  strconv.Itoa(len(r.DisputeVotes)),
		"minArbitrators":  strconv.Itoa(minArbitrators),
		"disputeVotesSum": r.DisputeVotesSum.String(),
	}}
}

func disputeVoteTerminatedEvent(r *Reservation) Event {
	return Event{Type: EventTypeDisputeVoteTerminated, Attributes: map[string]string{
		"reservationId": u64(r.ID),
		"refundAmount":  r.RefundAmount.String(),
		"toOwner":       r.ToOwner.String(),
	}}
}

func newArbitratorEvent(id uint64) Event {
	return Event{Type: EventTypeNewArbitrator, Attributes: map[string]string{"arbitratorId": u64(id)}}
}

func arbitratorRevokedEvent(id uint64) Event {
	return Event{Type: EventTypeArbitratorRevoked, Attributes: map[string]string{"arbitratorId": u64(id)}}
}
