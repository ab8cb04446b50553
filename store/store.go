// Package store implements the persisted layout described in spec §6: the
// engine's in-memory state is a cache, and every state-changing call is
// mirrored here so the process can restart without losing bookings.
//
// The interface is deliberately table-shaped rather than a generic
// key-value blob store: unlike native/storage.Database's Put/Get byte
// interface, the booking engine needs range scans (list an item's
// reservations, replay the event log from a cursor) that a flat KV store
// cannot express without reinventing an index. Record is the unit every
// implementation persists.
package store

// Record is one row of a persisted table: a monotonically increasing id
// plus an opaque payload the caller encodes and decodes (JSON in both
// implementations here).
type Record struct {
	ID      uint64
	Payload []byte
}

// Store is the persistence collaborator behind the Engine. Every table is
// addressed by name so a single implementation backs users, items (with
// their calendar entries inside each item row), reservations, arbitrators,
// engine metadata and the event log without one method per table.
type Store interface {
	// Put inserts or overwrites the record with the given id in table.
	Put(table string, id uint64, payload []byte) error
	// Get returns the payload stored for id in table, or ok=false if absent.
	Get(table string, id uint64) (payload []byte, ok bool, err error)
	// List returns every record in table ordered by ascending id, optionally
	// starting at (and including) fromID for cursor-based resumption.
	List(table string, fromID uint64) ([]Record, error)
	// Close releases any resources held by the store.
	Close() error
}

const (
	// TableUsers holds one JSON-encoded snapshot of native/booking.User per row.
	TableUsers = "users"
	// TableItems holds one JSON-encoded snapshot of native/booking.Item per row.
	TableItems = "items"
	// TableReservations holds one JSON-encoded snapshot of
	// native/booking.Reservation per row.
	TableReservations = "reservations"
	// TableArbitrators holds one JSON-encoded snapshot of
	// native/booking.Arbitrator per row.
	TableArbitrators = "arbitrators"
	// TableEvents holds the append-only event log, keyed by Event.Sequence,
	// backing the replay cursor described in SPEC_FULL.md §4.
	TableEvents = "events"
	// TableMeta holds a single row (id 0) of JSON-encoded
	// native/booking.EngineMeta: the façade's global counters and
	// configuration, the one piece of persisted state that isn't an
	// individual user/item/reservation/arbitrator record.
	TableMeta = "meta"
)
