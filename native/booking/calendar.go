package booking

import (
	"fmt"
	"sort"
)

// CalendarEntry is one step of the sparse availability/price step function
// described in spec §3: it governs the half-open interval
// [StartTime, next entry's StartTime) — or [StartTime, +inf) for the last
// entry — during which the item carries the given availability and price.
type CalendarEntry struct {
	StartTime int64
	Available bool
	UnitPrice Decimal
}

// Calendar is the sparse, monotone timeline of availability/price intervals
// for one item. It is kept as an ordered slice of keys plus a map, the shape
// the design notes in spec §9 call for ("ordered map keyed by start_time with
// a binary-search adjacency query... do not use a dense per-slot array").
type Calendar struct {
	starts  []int64
	entries map[int64]CalendarEntry
}

// NewCalendar returns an empty calendar.
func NewCalendar() *Calendar {
	return &Calendar{entries: make(map[int64]CalendarEntry)}
}

// Prune drops every entry strictly before the greatest entry whose
// StartTime is <= now, per spec §4.2 step 1. It is safe to call when the
// calendar is empty or has only one or two entries — the original contract
// this engine replaces panicked on `drain(0..index-1)` for small indices;
// this implementation never underflows.
func (c *Calendar) Prune(now int64) {
	if len(c.starts) == 0 {
		return
	}
	countLE := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > now })
	if countLE == 0 {
		return
	}
	pivot := countLE - 1
	if pivot <= 0 {
		return
	}
	for _, s := range c.starts[:pivot] {
		delete(c.entries, s)
	}
	remaining := make([]int64, len(c.starts)-pivot)
	copy(remaining, c.starts[pivot:])
	c.starts = remaining
}

// snapshotEntries returns every calendar entry in ascending start_time order,
// for EngineSnapshot persistence (spec §6: items are independently
// persistable records).
func (c *Calendar) snapshotEntries() []CalendarEntrySnapshot {
	out := make([]CalendarEntrySnapshot, 0, len(c.starts))
	for _, s := range c.starts {
		e := c.entries[s]
		out = append(out, CalendarEntrySnapshot{StartTime: e.StartTime, Available: e.Available, UnitPrice: e.UnitPrice})
	}
	return out
}

// calendarFromSnapshot rebuilds a Calendar from a snapshot's entry list,
// tolerating any ordering since it sorts starts itself.
func calendarFromSnapshot(entries []CalendarEntrySnapshot) *Calendar {
	c := NewCalendar()
	starts := make([]int64, 0, len(entries))
	for _, e := range entries {
		c.entries[e.StartTime] = CalendarEntry{StartTime: e.StartTime, Available: e.Available, UnitPrice: e.UnitPrice}
		starts = append(starts, e.StartTime)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	c.starts = starts
	return c
}

// AddOrModify implements spec §4.2's add_or_modify_availability_interval.
// It returns inserted=true when a brand new start_time key was created and
// false when an existing entry was overwritten; the caller uses this to pick
// the correct event (NewAvailabilityIntervalEvent vs
// UpdateAvailabilityIntervalEvent — see spec §9's note on the source's
// swapped event names, corrected here).
func (c *Calendar) AddOrModify(now, startTime int64, available bool, unitPrice Decimal, hasPrice bool) (inserted bool, err error) {
	if available {
		if !hasPrice || !unitPrice.IsPositive() {
			return false, fmt.Errorf("%w: unit_price must be present and positive when available", ErrBadArgument)
		}
	} else {
		unitPrice = ZeroDecimal()
	}

	c.Prune(now)

	idx := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] >= startTime })
	if idx < len(c.starts) && c.starts[idx] == startTime {
		c.entries[startTime] = CalendarEntry{StartTime: startTime, Available: available, UnitPrice: unitPrice}
		return false, nil
	}

	c.entries[startTime] = CalendarEntry{StartTime: startTime, Available: available, UnitPrice: unitPrice}
	c.starts = append(c.starts, 0)
	copy(c.starts[idx+1:], c.starts[idx:])
	c.starts[idx] = startTime
	return true, nil
}

// locate finds the calendar entry that governs start_time: an exact key
// match, or the entry with the greatest StartTime strictly less than
// start_time. ok is false when no such entry exists (start_time predates the
// calendar entirely).
func (c *Calendar) locate(startTime int64) (index int, entry CalendarEntry, exact bool, ok bool) {
	idx := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] >= startTime })
	if idx < len(c.starts) && c.starts[idx] == startTime {
		return idx, c.entries[c.starts[idx]], true, true
	}
	if idx == 0 {
		return 0, CalendarEntry{}, false, false
	}
	return idx - 1, c.entries[c.starts[idx-1]], false, true
}

// PriceInterval walks every calendar entry crossed by [startTime, endTime),
// implementing spec §4.3's admission algorithm steps 2-3: locate the
// containing interval, verify alignment, then accumulate
// unit_price * slots for every slice, rejecting any unavailable interval.
func (c *Calendar) PriceInterval(startTime, endTime, minimumReservationPeriod int64) (Decimal, error) {
	index, entry, exact, ok := c.locate(startTime)
	if !ok {
		return Decimal{}, ErrNoAvailability
	}
	if !exact {
		if (startTime-entry.StartTime)%minimumReservationPeriod != 0 {
			return Decimal{}, ErrMisaligned
		}
	}

	total := ZeroDecimal()
	curStart := startTime
	for {
		if !entry.Available {
			return Decimal{}, ErrUnavailable
		}
		var sliceEnd int64
		if index == len(c.starts)-1 {
			sliceEnd = endTime
		} else {
			next := c.starts[index+1]
			if endTime < next {
				sliceEnd = endTime
			} else {
				sliceEnd = next
			}
		}
		slots := (sliceEnd - curStart) / minimumReservationPeriod
		total = total.Add(entry.UnitPrice.MulInt64(slots))
		if sliceEnd == endTime {
			break
		}
		curStart = sliceEnd
		index++
		entry = c.entries[c.starts[index]]
	}
	return total, nil
}
