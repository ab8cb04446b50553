package booking

import (
	"fmt"
	"sync"
)

// Persister is the persistence collaborator behind the Engine (spec §6's
// persisted layout). After every state-changing call the Engine hands it a
// full EngineSnapshot to save. Like Emitter, the engine must never depend on
// it for in-memory correctness (spec §9's "events are a pure sink" applies
// equally here): a failing or absent persister only risks losing the most
// recent writes across an unclean restart, never corrupts the running
// process's state.
type Persister interface {
	Save(EngineSnapshot)
}

// NoopPersister discards every snapshot. It is the Engine's default.
type NoopPersister struct{}

// Save implements Persister by doing nothing.
func (NoopPersister) Save(EngineSnapshot) {}

// Engine is the BookingSystem façade of spec §4.5: it holds the global
// counters, the credential registries, the item set, and configuration
// (payment_delay, min_arbitrators), and routes every authenticated call to
// the right Item/Reservation while enforcing authorization.
//
// Concurrency follows spec §5: a single mutex serializes every public
// method, and new_reservation's pricing+conflict+vault sequence runs inside
// one critical section so invariant I2 holds. This is the same "wire the
// domain logic behind one injected emitter, lock around the whole call"
// shape as native/escrow.Engine, generalized from a no-op placeholder to a
// fully serialized façade.
type Engine struct {
	mu sync.Mutex

	emitter   Emitter
	persister Persister
	seq       int64

	users       *userRegistry
	arbitrators *arbitratorRegistry

	items             map[uint64]*Item
	lastItemID        uint64
	lastReservationID uint64
	// reservationItem maps a reservation id to its owning item id so that
	// reservation-credential-only calls (cancellation_by_customer,
	// get_refund, start_dispute) can locate the item without the caller
	// re-supplying it.
	reservationItem map[uint64]uint64

	paymentDelay   int64
	minArbitrators int
}

// NewEngine returns a façade with default configuration: payment_delay=0,
// min_arbitrators=1, matching booking_system.rs's BookingSystem::new.
func NewEngine() *Engine {
	return &Engine{
		emitter:         NoopEmitter{},
		persister:       NoopPersister{},
		users:           newUserRegistry(),
		arbitrators:     newArbitratorRegistry(),
		items:           make(map[uint64]*Item),
		reservationItem: make(map[uint64]uint64),
		paymentDelay:    0,
		minArbitrators:  1,
	}
}

// SetEmitter configures the event sink. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter Emitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if emitter == nil {
		e.emitter = NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPersister configures the snapshot sink. Passing nil resets it to a
// no-op.
func (e *Engine) SetPersister(persister Persister) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if persister == nil {
		e.persister = NoopPersister{}
		return
	}
	e.persister = persister
}

// persistNow hands the persister the current state. Must be called while
// e.mu is held.
func (e *Engine) persistNow() {
	if e.persister != nil {
		e.persister.Save(e.snapshotLocked())
	}
}

// emit stamps and forwards an event, persisting state first per spec §9's
// "persist state first, then emit" event fan-out note. Must be called while
// e.mu is held, and never lets a failing emitter or persister affect the
// caller.
func (e *Engine) emit(ev Event) {
	e.seq++
	ev.Sequence = e.seq
	e.persistNow()
	if e.emitter != nil {
		e.emitter.Emit(ev)
	}
}

func (e *Engine) item(id uint64) (*Item, error) {
	it, ok := e.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return it, nil
}

func (e *Engine) reservationAndItem(reservationID uint64) (*Item, *Reservation, error) {
	itemID, ok := e.reservationItem[reservationID]
	if !ok {
		return nil, nil, ErrReservationNotFound
	}
	it := e.items[itemID]
	res, err := it.GetReservation(reservationID)
	if err != nil {
		return nil, nil, err
	}
	return it, res, nil
}

func requireKind(proof Proof, kind ProofKind) error {
	if proof.Kind != kind {
		return fmt.Errorf("%w: expected proof kind %d, got %d", ErrInvalidCredential, kind, proof.Kind)
	}
	return nil
}

// NewUser implements [anyone] new_user.
func (e *Engine) NewUser() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.users.newUser()
	e.emit(newUserEvent(u.ID))
	return u.ID
}

// NewItem implements [user] new_item.
func (e *Engine) NewItem(proof Proof, currency string, minimumReservationPeriod, minCancellationForewarning int64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return 0, err
	}
	user, err := e.users.get(proof.Subject)
	if err != nil {
		return 0, err
	}

	e.lastItemID++
	it, err := NewItem(e.lastItemID, user.ID, currency, minimumReservationPeriod, minCancellationForewarning)
	if err != nil {
		e.lastItemID--
		return 0, err
	}
	e.items[it.ID] = it
	user.OwnedItems = append(user.OwnedItems, it.ID)
	e.emit(newItemEvent(it))
	return it.ID, nil
}

// AddOrModifyAvailabilityInterval implements [item owner]
// add_or_modify_availability_interval.
func (e *Engine) AddOrModifyAvailabilityInterval(proof Proof, now int64, itemID uint64, startTime int64, available bool, unitPrice Decimal, hasPrice bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return err
	}
	it, err := e.item(itemID)
	if err != nil {
		return err
	}
	if it.OwnerID != proof.Subject {
		return ErrNotAuthorized
	}
	inserted, err := it.AddOrModifyAvailabilityInterval(now, startTime, available, unitPrice, hasPrice)
	if err != nil {
		return err
	}
	e.emit(availabilityIntervalEvent(inserted, it.ID, startTime, available, unitPrice))
	return nil
}

// NewReservation implements [user] new_reservation. The returned
// reservationID is also the identifier the auth package should embed as the
// Resource field of the minted reservation credential.
func (e *Engine) NewReservation(proof Proof, now int64, itemID uint64, startTime, endTime int64, bucket Bucket) (reservationID uint64, change Bucket, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return 0, Bucket{}, err
	}
	user, err := e.users.get(proof.Subject)
	if err != nil {
		return 0, Bucket{}, err
	}
	it, err := e.item(itemID)
	if err != nil {
		return 0, Bucket{}, err
	}

	e.lastReservationID++
	id := e.lastReservationID
	res, changeBucket, err := it.NewReservation(id, user.ID, startTime, endTime, now, bucket)
	if err != nil {
		e.lastReservationID--
		return 0, Bucket{}, err
	}
	e.reservationItem[id] = it.ID
	e.emit(newReservationEvent(res))
	return id, changeBucket, nil
}

// ReservationCancellationByCustomer implements [credential]
// reservation_cancellation_by_customer.
func (e *Engine) ReservationCancellationByCustomer(proof Proof, now int64) (Bucket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindReservation); err != nil {
		return Bucket{}, err
	}
	_, res, err := e.reservationAndItem(proof.Resource)
	if err != nil {
		return Bucket{}, err
	}
	bucket, err := res.CancellationByCustomer(now)
	if err != nil {
		return Bucket{}, err
	}
	e.emit(reservationCustomerCancelEvent(res))
	return bucket, nil
}

// ReservationCancellationByOwner implements [item owner]
// reservation_cancellation_by_owner.
func (e *Engine) ReservationCancellationByOwner(proof Proof, itemID, reservationID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return err
	}
	it, err := e.item(itemID)
	if err != nil {
		return err
	}
	if it.OwnerID != proof.Subject {
		return ErrNotAuthorized
	}
	res, err := it.GetReservation(reservationID)
	if err != nil {
		return err
	}
	if err := res.CancellationByOwner(); err != nil {
		return err
	}
	e.emit(reservationOwnerCancelEvent(res))
	return nil
}

// GetRefund implements [credential] get_refund.
func (e *Engine) GetRefund(proof Proof) (Bucket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindReservation); err != nil {
		return Bucket{}, err
	}
	_, res, err := e.reservationAndItem(proof.Resource)
	if err != nil {
		return Bucket{}, err
	}
	oldStatus := res.Status
	bucket, err := res.GetRefund()
	if err != nil {
		return Bucket{}, err
	}
	e.emit(reservationRefundEvent(res, oldStatus, bucket.Amount))
	return bucket, nil
}

// StartDispute implements [credential] start_dispute.
func (e *Engine) StartDispute(proof Proof) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindReservation); err != nil {
		return err
	}
	_, res, err := e.reservationAndItem(proof.Resource)
	if err != nil {
		return err
	}
	if err := res.StartDispute(); err != nil {
		return err
	}
	e.emit(reservationDisputeEvent(res))
	return nil
}

// OfferPartialRefund implements [item owner] offer_partial_refund.
func (e *Engine) OfferPartialRefund(proof Proof, itemID, reservationID uint64, refundAmount Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return err
	}
	it, err := e.item(itemID)
	if err != nil {
		return err
	}
	if it.OwnerID != proof.Subject {
		return ErrNotAuthorized
	}
	res, err := it.GetReservation(reservationID)
	if err != nil {
		return err
	}
	if err := res.OfferPartialRefund(refundAmount); err != nil {
		return err
	}
	e.emit(reservationRefundOfferEvent(res, refundAmount))
	return nil
}

// DisputeVote implements [arbitrator] dispute_vote.
func (e *Engine) DisputeVote(proof Proof, itemID, reservationID uint64, refundPercentage Decimal) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindArbitrator); err != nil {
		return false, err
	}
	if !e.arbitrators.active(proof.Subject) {
		return false, ErrInvalidCredential
	}
	it, err := e.item(itemID)
	if err != nil {
		return false, err
	}
	res, err := it.GetReservation(reservationID)
	if err != nil {
		return false, err
	}
	terminated, err := res.DisputeVote(proof.Subject, refundPercentage, e.minArbitrators)
	if err != nil {
		return false, err
	}
	e.emit(disputeVoteEvent(res, proof.Subject, e.minArbitrators))
	if terminated {
		e.emit(disputeVoteTerminatedEvent(res))
	}
	return terminated, nil
}

// GetPayment implements [item owner] get_payment.
func (e *Engine) GetPayment(proof Proof, now int64, itemID, reservationID uint64) (Bucket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindUser); err != nil {
		return Bucket{}, err
	}
	it, err := e.item(itemID)
	if err != nil {
		return Bucket{}, err
	}
	if it.OwnerID != proof.Subject {
		return Bucket{}, ErrNotAuthorized
	}
	res, err := it.GetReservation(reservationID)
	if err != nil {
		return Bucket{}, err
	}
	oldStatus := res.Status
	bucket, err := res.GetPayment(now, e.paymentDelay)
	if err != nil {
		return Bucket{}, err
	}
	e.emit(reservationPaymentEvent(res, oldStatus, bucket.Amount))
	return bucket, nil
}

// SetPaymentDelay implements [admin] set_payment_delay.
func (e *Engine) SetPaymentDelay(proof Proof, seconds int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindAdmin); err != nil {
		return err
	}
	if seconds < 0 {
		return fmt.Errorf("%w: payment_delay must be non-negative", ErrBadArgument)
	}
	e.paymentDelay = seconds
	e.persistNow()
	return nil
}

// SetMinArbitrators implements [admin] set_min_arbitrators.
func (e *Engine) SetMinArbitrators(proof Proof, minArbitrators int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindAdmin); err != nil {
		return err
	}
	if minArbitrators < 1 {
		return fmt.Errorf("%w: min_arbitrators must be >= 1", ErrBadArgument)
	}
	e.minArbitrators = minArbitrators
	e.persistNow()
	return nil
}

// GetArbitratorBadge implements [admin] get_arbitrator_badge.
func (e *Engine) GetArbitratorBadge(proof Proof) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindAdmin); err != nil {
		return 0, err
	}
	a := e.arbitrators.issue()
	e.emit(newArbitratorEvent(a.ID))
	return a.ID, nil
}

// RevokeArbitratorBadge implements the supplemented admin-only
// revoke_arbitrator_badge operation (SPEC_FULL.md §4): it invalidates future
// dispute_vote calls from this arbitrator id without touching past votes.
func (e *Engine) RevokeArbitratorBadge(proof Proof, arbitratorID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireKind(proof, ProofKindAdmin); err != nil {
		return err
	}
	if err := e.arbitrators.revoke(arbitratorID); err != nil {
		return err
	}
	e.emit(arbitratorRevokedEvent(arbitratorID))
	return nil
}

// Item looks up an item for RPC/store consumers. It returns the live
// pointer, not a copy; callers must not mutate it.
func (e *Engine) Item(id uint64) (*Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.item(id)
}

// Reservation returns a read-only reservation lookup.
func (e *Engine) Reservation(id uint64) (*Reservation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, res, err := e.reservationAndItem(id)
	return res, err
}

// Config reports the current payment_delay and min_arbitrators.
func (e *Engine) Config() (paymentDelay int64, minArbitrators int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paymentDelay, e.minArbitrators
}
