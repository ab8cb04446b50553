package rpcserver

import (
	"encoding/json"
	"log/slog"

	"bookingengine/native/booking"
	"bookingengine/store"
)

// SnapshotPersister implements booking.Persister by decomposing a full
// EngineSnapshot into the per-entity rows spec §6's persisted layout calls
// for: one row per user/item/reservation/arbitrator in its own table, plus a
// single TableMeta row for counters and configuration. It follows the same
// best-effort, never-block-the-engine posture as EventHub.Emit: a failed
// write is logged, never returned, since the in-memory Engine remains the
// authoritative state for the running process (spec §9's persister-never-
// affects-correctness rule, mirrored from the emitter).
type SnapshotPersister struct {
	store store.Store
	log   *slog.Logger
}

// NewSnapshotPersister builds a persister writing into st.
func NewSnapshotPersister(st store.Store, log *slog.Logger) *SnapshotPersister {
	return &SnapshotPersister{store: st, log: log}
}

// Save implements booking.Persister.
func (p *SnapshotPersister) Save(snap booking.EngineSnapshot) {
	if p.store == nil {
		return
	}
	for _, u := range snap.Users {
		p.put(store.TableUsers, u.ID, u)
	}
	for _, it := range snap.Items {
		p.put(store.TableItems, it.ID, it)
	}
	for _, r := range snap.Reservations {
		p.put(store.TableReservations, r.ID, r)
	}
	for _, a := range snap.Arbitrators {
		p.put(store.TableArbitrators, a.ID, a)
	}
	p.put(store.TableMeta, 0, snap.Meta)
}

func (p *SnapshotPersister) put(table string, id uint64, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		if p.log != nil {
			p.log.Error("snapshot encode failed", slog.String("table", table), slog.Uint64("id", id), slog.Any("error", err))
		}
		return
	}
	if err := p.store.Put(table, id, payload); err != nil {
		if p.log != nil {
			p.log.Error("snapshot persist failed", slog.String("table", table), slog.Uint64("id", id), slog.Any("error", err))
		}
	}
}

// LoadSnapshot reads every persisted record out of st and assembles an
// EngineSnapshot suitable for booking.RestoreEngine. It returns a zero-value
// snapshot (no error) when st is nil or has never been written to, so
// callers can use its emptiness to decide between RestoreEngine and
// booking.NewEngine.
func LoadSnapshot(st store.Store) (booking.EngineSnapshot, error) {
	var snap booking.EngineSnapshot
	if st == nil {
		return snap, nil
	}

	metaRecords, err := st.List(store.TableMeta, 0)
	if err != nil {
		return snap, err
	}
	if len(metaRecords) > 0 {
		if err := json.Unmarshal(metaRecords[len(metaRecords)-1].Payload, &snap.Meta); err != nil {
			return snap, err
		}
	}

	userRecords, err := st.List(store.TableUsers, 0)
	if err != nil {
		return snap, err
	}
	for _, rec := range userRecords {
		var u booking.UserSnapshot
		if err := json.Unmarshal(rec.Payload, &u); err != nil {
			return snap, err
		}
		snap.Users = append(snap.Users, u)
	}

	itemRecords, err := st.List(store.TableItems, 0)
	if err != nil {
		return snap, err
	}
	for _, rec := range itemRecords {
		var it booking.ItemSnapshot
		if err := json.Unmarshal(rec.Payload, &it); err != nil {
			return snap, err
		}
		snap.Items = append(snap.Items, it)
	}

	reservationRecords, err := st.List(store.TableReservations, 0)
	if err != nil {
		return snap, err
	}
	for _, rec := range reservationRecords {
		var r booking.ReservationSnapshot
		if err := json.Unmarshal(rec.Payload, &r); err != nil {
			return snap, err
		}
		snap.Reservations = append(snap.Reservations, r)
	}

	arbitratorRecords, err := st.List(store.TableArbitrators, 0)
	if err != nil {
		return snap, err
	}
	for _, rec := range arbitratorRecords {
		var a booking.ArbitratorSnapshot
		if err := json.Unmarshal(rec.Payload, &a); err != nil {
			return snap, err
		}
		snap.Arbitrators = append(snap.Arbitrators, a)
	}

	return snap, nil
}

// HasState reports whether a loaded snapshot carries any persisted entity,
// distinguishing "freshly initialized store" from "restart with history".
func HasState(snap booking.EngineSnapshot) bool {
	return len(snap.Users) > 0 || len(snap.Items) > 0 || len(snap.Reservations) > 0 || len(snap.Arbitrators) > 0
}
