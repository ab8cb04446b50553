package booking

import "sort"

// This file implements spec §6's persisted layout: "the façade, each Item,
// and each Reservation are independently persistable records... Maps keyed
// by u64 are expected to be range-scannable." EngineSnapshot is a plain,
// JSON-marshalable mirror of every piece of engine state; Engine.Snapshot
// produces one, and RestoreEngine reconstructs a live Engine from one, so a
// host process can persist per-entity rows (see rpcserver.SnapshotPersister)
// and resume after a restart without replaying the event log.

// CalendarEntrySnapshot mirrors one CalendarEntry for persistence.
type CalendarEntrySnapshot struct {
	StartTime int64   `json:"startTime"`
	Available bool    `json:"available"`
	UnitPrice Decimal `json:"unitPrice"`
}

// ItemSnapshot mirrors an Item's persistable fields. Its reservations are
// not embedded here: each Reservation is its own persisted record
// (ReservationSnapshot), consistent with spec §6 treating items and
// reservations as independently persistable.
type ItemSnapshot struct {
	ID                         uint64                  `json:"id"`
	OwnerID                    uint64                  `json:"ownerId"`
	Currency                   string                  `json:"currency"`
	MinimumReservationPeriod   int64                   `json:"minimumReservationPeriod"`
	MinCancellationForewarning int64                   `json:"minCancellationForewarning"`
	Entries                    []CalendarEntrySnapshot `json:"entries"`
}

// ReservationSnapshot mirrors a Reservation's persistable fields, including
// its escrow vault's currency and balance.
type ReservationSnapshot struct {
	ID                  uint64             `json:"id"`
	ItemID              uint64             `json:"itemId"`
	CustomerID          uint64             `json:"customerId"`
	StartTime           int64              `json:"startTime"`
	EndTime             int64              `json:"endTime"`
	MaxCancellationTime int64              `json:"maxCancellationTime"`
	Currency            string             `json:"currency"`
	VaultBalance        Decimal            `json:"vaultBalance"`
	Status              ReservationStatus  `json:"status"`
	RefundAmount        Decimal            `json:"refundAmount"`
	ToOwner             Decimal            `json:"toOwner"`
	DisputeVotes        map[uint64]Decimal `json:"disputeVotes"`
	DisputeVotesSum     Decimal            `json:"disputeVotesSum"`
}

// UserSnapshot mirrors a User.
type UserSnapshot struct {
	ID         uint64   `json:"id"`
	OwnedItems []uint64 `json:"ownedItems"`
}

// ArbitratorSnapshot mirrors an Arbitrator.
type ArbitratorSnapshot struct {
	ID      uint64 `json:"id"`
	Revoked bool   `json:"revoked"`
}

// EngineMeta carries the façade-level state that isn't any one entity's
// record: global counters and configuration (spec §4.5).
type EngineMeta struct {
	LastUserID        uint64 `json:"lastUserId"`
	LastItemID        uint64 `json:"lastItemId"`
	LastReservationID uint64 `json:"lastReservationId"`
	LastArbitratorID  uint64 `json:"lastArbitratorId"`
	PaymentDelay      int64  `json:"paymentDelay"`
	MinArbitrators    int    `json:"minArbitrators"`
	Sequence          int64  `json:"sequence"`
}

// EngineSnapshot is the full persistable state of an Engine at one instant,
// taken atomically inside the façade's lock.
type EngineSnapshot struct {
	Meta         EngineMeta            `json:"meta"`
	Users        []UserSnapshot        `json:"users"`
	Items        []ItemSnapshot        `json:"items"`
	Reservations []ReservationSnapshot `json:"reservations"`
	Arbitrators  []ArbitratorSnapshot  `json:"arbitrators"`
}

// Snapshot returns the engine's full persistable state.
func (e *Engine) Snapshot() EngineSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() EngineSnapshot {
	snap := EngineSnapshot{
		Meta: EngineMeta{
			LastUserID:        e.users.lastID,
			LastItemID:        e.lastItemID,
			LastReservationID: e.lastReservationID,
			LastArbitratorID:  e.arbitrators.lastID,
			PaymentDelay:      e.paymentDelay,
			MinArbitrators:    e.minArbitrators,
			Sequence:          e.seq,
		},
	}

	userIDs := make([]uint64, 0, len(e.users.users))
	for id := range e.users.users {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	for _, id := range userIDs {
		u := e.users.users[id]
		snap.Users = append(snap.Users, UserSnapshot{ID: u.ID, OwnedItems: append([]uint64(nil), u.OwnedItems...)})
	}

	arbIDs := make([]uint64, 0, len(e.arbitrators.arbitrators))
	for id := range e.arbitrators.arbitrators {
		arbIDs = append(arbIDs, id)
	}
	sort.Slice(arbIDs, func(i, j int) bool { return arbIDs[i] < arbIDs[j] })
	for _, id := range arbIDs {
		a := e.arbitrators.arbitrators[id]
		snap.Arbitrators = append(snap.Arbitrators, ArbitratorSnapshot{ID: a.ID, Revoked: a.Revoked})
	}

	itemIDs := make([]uint64, 0, len(e.items))
	for id := range e.items {
		itemIDs = append(itemIDs, id)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })
	for _, id := range itemIDs {
		it := e.items[id]
		snap.Items = append(snap.Items, ItemSnapshot{
			ID:                         it.ID,
			OwnerID:                    it.OwnerID,
			Currency:                   it.Currency,
			MinimumReservationPeriod:   it.MinimumReservationPeriod,
			MinCancellationForewarning: it.MinCancellationForewarning,
			Entries:                    it.Calendar.snapshotEntries(),
		})

		resIDs := make([]uint64, 0, len(it.Reservations))
		for rid := range it.Reservations {
			resIDs = append(resIDs, rid)
		}
		sort.Slice(resIDs, func(i, j int) bool { return resIDs[i] < resIDs[j] })
		for _, rid := range resIDs {
			r := it.Reservations[rid]
			votes := make(map[uint64]Decimal, len(r.DisputeVotes))
			for k, v := range r.DisputeVotes {
				votes[k] = v
			}
			snap.Reservations = append(snap.Reservations, ReservationSnapshot{
				ID:                  r.ID,
				ItemID:              r.ItemID,
				CustomerID:          r.CustomerID,
				StartTime:           r.StartTime,
				EndTime:             r.EndTime,
				MaxCancellationTime: r.MaxCancellationTime,
				Currency:            r.Vault.Currency(),
				VaultBalance:        r.Vault.Amount(),
				Status:              r.Status,
				RefundAmount:        r.RefundAmount,
				ToOwner:             r.ToOwner,
				DisputeVotes:        votes,
				DisputeVotesSum:     r.DisputeVotesSum,
			})
		}
	}

	return snap
}

// RestoreEngine reconstructs a live Engine from a snapshot produced by
// Engine.Snapshot, with a fresh NoopEmitter/NoopPersister until the caller
// wires its own (mirroring NewEngine's defaults).
func RestoreEngine(snap EngineSnapshot) *Engine {
	e := &Engine{
		emitter:           NoopEmitter{},
		persister:         NoopPersister{},
		users:             &userRegistry{lastID: snap.Meta.LastUserID, users: make(map[uint64]*User)},
		arbitrators:       &arbitratorRegistry{lastID: snap.Meta.LastArbitratorID, arbitrators: make(map[uint64]*Arbitrator)},
		items:             make(map[uint64]*Item),
		reservationItem:   make(map[uint64]uint64),
		lastItemID:        snap.Meta.LastItemID,
		lastReservationID: snap.Meta.LastReservationID,
		paymentDelay:      snap.Meta.PaymentDelay,
		minArbitrators:    snap.Meta.MinArbitrators,
		seq:               snap.Meta.Sequence,
	}

	for _, u := range snap.Users {
		e.users.users[u.ID] = &User{ID: u.ID, OwnedItems: append([]uint64(nil), u.OwnedItems...)}
	}
	for _, a := range snap.Arbitrators {
		e.arbitrators.arbitrators[a.ID] = &Arbitrator{ID: a.ID, Revoked: a.Revoked}
	}
	for _, is := range snap.Items {
		e.items[is.ID] = &Item{
			ID:                         is.ID,
			OwnerID:                    is.OwnerID,
			Currency:                   is.Currency,
			MinimumReservationPeriod:   is.MinimumReservationPeriod,
			MinCancellationForewarning: is.MinCancellationForewarning,
			Calendar:                   calendarFromSnapshot(is.Entries),
			Reservations:               make(map[uint64]*Reservation),
		}
	}
	for _, rs := range snap.Reservations {
		it, ok := e.items[rs.ItemID]
		if !ok {
			continue
		}
		votes := make(map[uint64]Decimal, len(rs.DisputeVotes))
		for k, v := range rs.DisputeVotes {
			votes[k] = v
		}
		res := &Reservation{
			ID:                  rs.ID,
			ItemID:              rs.ItemID,
			CustomerID:          rs.CustomerID,
			StartTime:           rs.StartTime,
			EndTime:             rs.EndTime,
			MaxCancellationTime: rs.MaxCancellationTime,
			Vault:               newVaultWithBalance(rs.Currency, rs.VaultBalance),
			Status:              rs.Status,
			RefundAmount:        rs.RefundAmount,
			ToOwner:             rs.ToOwner,
			DisputeVotes:        votes,
			DisputeVotesSum:     rs.DisputeVotesSum,
		}
		it.Reservations[res.ID] = res
		it.reservationOrder = append(it.reservationOrder, res.ID)
		e.reservationItem[res.ID] = it.ID
	}

	return e
}
