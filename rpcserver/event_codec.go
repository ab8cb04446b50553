package rpcserver

import (
	"encoding/json"

	"bookingengine/native/booking"
)

func encodeEvent(ev booking.Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(payload []byte) (booking.Event, error) {
	var ev booking.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return booking.Event{}, err
	}
	return ev, nil
}
