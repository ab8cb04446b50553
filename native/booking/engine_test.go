package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingEmitter captures every emitted event for assertions on sequence
// numbering and fan-out content.
type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(ev Event) {
	r.events = append(r.events, ev)
}

func newOwnerAndCustomer(t *testing.T, e *Engine) (ownerProof, customerProof Proof) {
	t.Helper()
	ownerID := e.NewUser()
	customerID := e.NewUser()
	return Proof{Kind: ProofKindUser, Subject: ownerID}, Proof{Kind: ProofKindUser, Subject: customerID}
}

func TestEngineHappyPathBookingAndPayout(t *testing.T) {
	e := NewEngine()
	rec := &recordingEmitter{}
	e.SetEmitter(rec)

	ownerProof, customerProof := newOwnerAndCustomer(t, e)

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)

	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	reservationID, change, err := e.NewReservation(customerProof, 0, itemID, 1000, 1300, NewBucket("USD", DecimalFromInt64(500)))
	require.NoError(t, err)
	require.Equal(t, "200", change.Amount.String())

	require.ErrorIs(t, e.SetPaymentDelay(ownerProof, 0), ErrInvalidCredential)

	adminProof := Proof{Kind: ProofKindAdmin}
	require.NoError(t, e.SetPaymentDelay(adminProof, 0))

	bucket, err := e.GetPayment(ownerProof, 1300, itemID, reservationID)
	require.NoError(t, err)
	require.Equal(t, "300", bucket.Amount.String())

	res, err := e.Reservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, ReservationCompleted, res.Status)

	require.NotEmpty(t, rec.events)
	for i, ev := range rec.events {
		require.Equal(t, int64(i+1), ev.Sequence)
	}
}

func TestEngineCustomerCancelsInTime(t *testing.T) {
	e := NewEngine()
	ownerProof, customerProof := newOwnerAndCustomer(t, e)

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	reservationID, _, err := e.NewReservation(customerProof, 0, itemID, 1000, 1300, NewBucket("USD", DecimalFromInt64(300)))
	require.NoError(t, err)

	reservationProof := Proof{Kind: ProofKindReservation, Resource: reservationID}
	bucket, err := e.ReservationCancellationByCustomer(reservationProof, 900)
	require.NoError(t, err)
	require.Equal(t, "300", bucket.Amount.String())

	res, err := e.Reservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, ReservationCustomerCancelled, res.Status)
}

func TestEngineConflictRejection(t *testing.T) {
	e := NewEngine()
	ownerProof, customerProof := newOwnerAndCustomer(t, e)

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	_, _, err = e.NewReservation(customerProof, 0, itemID, 1000, 1300, NewBucket("USD", DecimalFromInt64(300)))
	require.NoError(t, err)

	_, _, err = e.NewReservation(customerProof, 0, itemID, 1100, 1400, NewBucket("USD", DecimalFromInt64(300)))
	require.ErrorIs(t, err, ErrConflict)
}

func TestEngineDisputeQuorumSplit(t *testing.T) {
	e := NewEngine()
	ownerProof, customerProof := newOwnerAndCustomer(t, e)
	adminProof := Proof{Kind: ProofKindAdmin}

	require.NoError(t, e.SetMinArbitrators(adminProof, 3))

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	reservationID, _, err := e.NewReservation(customerProof, 0, itemID, 1000, 1100, NewBucket("USD", DecimalFromInt64(100)))
	require.NoError(t, err)

	reservationProof := Proof{Kind: ProofKindReservation, Resource: reservationID}
	require.NoError(t, e.StartDispute(reservationProof))

	var arbitratorIDs []uint64
	for i := 0; i < 3; i++ {
		id, err := e.GetArbitratorBadge(adminProof)
		require.NoError(t, err)
		arbitratorIDs = append(arbitratorIDs, id)
	}

	percentages := []int64{30, 60, 90}
	var terminated bool
	for i, arbID := range arbitratorIDs {
		proof := Proof{Kind: ProofKindArbitrator, Subject: arbID}
		terminated, err = e.DisputeVote(proof, itemID, reservationID, DecimalFromInt64(percentages[i]))
		require.NoError(t, err)
	}
	require.True(t, terminated)

	refund, err := e.GetRefund(reservationProof)
	require.NoError(t, err)
	require.Equal(t, "60", refund.Amount.String())

	payment, err := e.GetPayment(ownerProof, 0, itemID, reservationID)
	require.NoError(t, err)
	require.Equal(t, "40", payment.Amount.String())
}

func TestEngineOwnerPartialOfferAccepted(t *testing.T) {
	e := NewEngine()
	ownerProof, customerProof := newOwnerAndCustomer(t, e)

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	reservationID, _, err := e.NewReservation(customerProof, 0, itemID, 1000, 1100, NewBucket("USD", DecimalFromInt64(100)))
	require.NoError(t, err)

	reservationProof := Proof{Kind: ProofKindReservation, Resource: reservationID}
	require.NoError(t, e.StartDispute(reservationProof))

	require.NoError(t, e.OfferPartialRefund(ownerProof, itemID, reservationID, DecimalFromInt64(35)))

	res, err := e.Reservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, "35", res.RefundAmount.String())
	require.Equal(t, "65", res.ToOwner.String())

	refund, err := e.GetRefund(reservationProof)
	require.NoError(t, err)
	require.Equal(t, "35", refund.Amount.String())
	require.Equal(t, ReservationDisputeTerminated, res.Status)

	payment, err := e.GetPayment(ownerProof, 0, itemID, reservationID)
	require.NoError(t, err)
	require.Equal(t, "65", payment.Amount.String())
}

func TestEngineRevokedArbitratorCannotVote(t *testing.T) {
	e := NewEngine()
	ownerProof, customerProof := newOwnerAndCustomer(t, e)
	adminProof := Proof{Kind: ProofKindAdmin}

	itemID, err := e.NewItem(ownerProof, "USD", 100, 50)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 0, true, DecimalFromInt64(100), true))

	reservationID, _, err := e.NewReservation(customerProof, 0, itemID, 1000, 1100, NewBucket("USD", DecimalFromInt64(100)))
	require.NoError(t, err)

	reservationProof := Proof{Kind: ProofKindReservation, Resource: reservationID}
	require.NoError(t, e.StartDispute(reservationProof))

	arbID, err := e.GetArbitratorBadge(adminProof)
	require.NoError(t, err)
	require.NoError(t, e.RevokeArbitratorBadge(adminProof, arbID))

	_, err = e.DisputeVote(Proof{Kind: ProofKindArbitrator, Subject: arbID}, itemID, reservationID, DecimalFromInt64(50))
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestEngineWrongProofKindRejected(t *testing.T) {
	e := NewEngine()
	customerID := e.NewUser()
	customerProof := Proof{Kind: ProofKindUser, Subject: customerID}

	_, err := e.NewItem(Proof{Kind: ProofKindAdmin}, "USD", 100, 50)
	require.ErrorIs(t, err, ErrInvalidCredential)

	_, err = e.GetArbitratorBadge(customerProof)
	require.ErrorIs(t, err, ErrInvalidCredential)
}
