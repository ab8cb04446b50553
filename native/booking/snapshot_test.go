package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingPersister captures the most recent snapshot handed to it, the way
// a real store-backed Persister would hold the last-written rows.
type recordingPersister struct {
	last EngineSnapshot
}

func (p *recordingPersister) Save(snap EngineSnapshot) { p.last = snap }

// TestSnapshotRestoreRoundTrip drives a booking partway through its lifecycle
// (an open dispute with one vote cast), snapshots the engine, restores a
// fresh Engine from that snapshot, and checks that every operation still
// behaves identically afterwards -- the persisted-layout contract spec §6
// describes.
func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := NewEngine()
	persister := &recordingPersister{}
	e.SetPersister(persister)

	ownerProof, customerProof := newOwnerAndCustomer(t, e)
	adminProof := Proof{Kind: ProofKindAdmin}
	require.NoError(t, e.SetMinArbitrators(adminProof, 3))

	itemID, err := e.NewItem(ownerProof, "USD", 3600, 86400)
	require.NoError(t, err)
	require.NoError(t, e.AddOrModifyAvailabilityInterval(ownerProof, 0, itemID, 1_000_000, true, DecimalFromInt64(10), true))

	reservationID, _, err := e.NewReservation(customerProof, 0, itemID, 1_003_600, 1_010_800, NewBucket("USD", DecimalFromInt64(100)))
	require.NoError(t, err)

	reservationProof := Proof{Kind: ProofKindReservation, Resource: reservationID}
	require.NoError(t, e.StartDispute(reservationProof))

	arbID, err := e.GetArbitratorBadge(adminProof)
	require.NoError(t, err)
	_, err = e.DisputeVote(Proof{Kind: ProofKindArbitrator, Subject: arbID}, itemID, reservationID, DecimalFromInt64(30))
	require.NoError(t, err)

	snap := e.Snapshot()
	require.Equal(t, snap, persister.last)
	require.Len(t, snap.Items, 1)
	require.Len(t, snap.Reservations, 1)
	require.Len(t, snap.Arbitrators, 1)
	require.Len(t, snap.Users, 2)

	restored := RestoreEngine(snap)

	res, err := restored.Reservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, ReservationDisputing, res.Status)
	require.Equal(t, "30", res.DisputeVotesSum.String())
	require.Equal(t, "20", res.Vault.Amount().String())

	// The restored engine continues the dispute to quorum exactly as the
	// original would have.
	secondArb, err := restored.GetArbitratorBadge(adminProof)
	require.NoError(t, err)
	thirdArb, err := restored.GetArbitratorBadge(adminProof)
	require.NoError(t, err)

	terminated, err := restored.DisputeVote(Proof{Kind: ProofKindArbitrator, Subject: secondArb}, itemID, reservationID, DecimalFromInt64(60))
	require.NoError(t, err)
	require.False(t, terminated)

	terminated, err = restored.DisputeVote(Proof{Kind: ProofKindArbitrator, Subject: thirdArb}, itemID, reservationID, DecimalFromInt64(90))
	require.NoError(t, err)
	require.True(t, terminated)

	res, err = restored.Reservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, ReservationDisputeTerminated, res.Status)
	require.Equal(t, "12", res.RefundAmount.String())
	require.Equal(t, "8", res.ToOwner.String())

	// Conflict checking on the restored item still sees the live reservation.
	_, _, err = restored.NewReservation(customerProof, 0, itemID, 1_003_600, 1_007_200, NewBucket("USD", DecimalFromInt64(100)))
	require.ErrorIs(t, err, ErrConflict)
}

func TestSnapshotEmptyEngineRoundTrip(t *testing.T) {
	e := NewEngine()
	snap := e.Snapshot()
	require.Empty(t, snap.Users)
	require.Empty(t, snap.Items)
	require.Empty(t, snap.Reservations)
	require.Empty(t, snap.Arbitrators)

	restored := RestoreEngine(snap)
	id := restored.NewUser()
	require.Equal(t, uint64(1), id)
}
