package rpcserver

import (
	"sync"

	"bookingengine/native/booking"
	"bookingengine/store"
)

// EventHub is the booking.Emitter wired into the Engine: it persists every
// event to the store's append-only TableEvents table (so a websocket
// subscriber reconnecting with an old cursor can fetch its backlog), feeds
// Prometheus, and fans the event out live to any currently connected
// subscriber channel. Modeled on native/escrow.Engine's injected-emitter
// shape, generalized from a single callback to a multi-subscriber fan-out
// since many HTTP clients may stream the same log concurrently.
type EventHub struct {
	mu          sync.Mutex
	store       store.Store
	metrics     *Metrics
	subscribers map[int]chan booking.Event
	nextSubID   int
}

// NewEventHub constructs a hub persisting into st and recording into m.
func NewEventHub(st store.Store, m *Metrics) *EventHub {
	return &EventHub{
		store:       st,
		metrics:     m,
		subscribers: make(map[int]chan booking.Event),
	}
}

// Emit implements booking.Emitter. It must never block the engine's
// critical section on a slow subscriber, so delivery to each subscriber
// channel is best-effort: a full channel drops the event for that
// subscriber rather than stalling the caller.
func (h *EventHub) Emit(ev booking.Event) {
	if h.metrics != nil {
		h.metrics.observeEventType(ev.Type)
	}
	if h.store != nil {
		if payload, err := encodeEvent(ev); err == nil {
			_ = h.store.Put(store.TableEvents, uint64(ev.Sequence), payload)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new live subscriber and returns its channel plus an
// unsubscribe function the caller must invoke when done.
func (h *EventHub) Subscribe() (<-chan booking.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSubID
	h.nextSubID++
	ch := make(chan booking.Event, 64)
	h.subscribers[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subscribers[id]; ok {
			close(existing)
			delete(h.subscribers, id)
		}
	}
}

// Backlog returns every persisted event with Sequence >= fromSequence, for a
// subscriber resuming a stream with a cursor.
func (h *EventHub) Backlog(fromSequence int64) ([]booking.Event, error) {
	if h.store == nil {
		return nil, nil
	}
	records, err := h.store.List(store.TableEvents, uint64(fromSequence))
	if err != nil {
		return nil, err
	}
	events := make([]booking.Event, 0, len(records))
	for _, rec := range records {
		ev, err := decodeEvent(rec.Payload)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
