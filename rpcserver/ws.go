package rpcserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nhooyr.io/websocket"
)

const wsWriteTimeout = 10 * time.Second

// handleEventStream upgrades to a websocket and streams every booking event
// from an optional ?cursor=N sequence number onward, grounded in
// rpc/ws.go's handlePOSFinalityWS/streamPOSFinality pair: replay the
// persisted backlog first, then forward live events as they're emitted.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	cursor := int64(0)
	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid cursor", http.StatusBadRequest)
			return
		}
		cursor = parsed
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	if err := s.streamEvents(r.Context(), conn, cursor); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (s *Server) streamEvents(ctx context.Context, conn *websocket.Conn, cursor int64) error {
	live, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	backlog, err := s.hub.Backlog(cursor)
	if err != nil {
		return err
	}
	highWater := cursor
	for _, ev := range backlog {
		if err := writeEvent(ctx, conn, ev); err != nil {
			return err
		}
		highWater = ev.Sequence
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-live:
			if !ok {
				return nil
			}
			if ev.Sequence <= highWater {
				continue
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				return err
			}
			highWater = ev.Sequence
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev interface{}) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
