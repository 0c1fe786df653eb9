package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Source yields events in feed order. Next returns io.EOF when the source
// is exhausted (replays) or permanently closed.
type Source interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Replayer reads an ordered JSONL event log, one envelope per line. Used
// for backfills and deterministic replays: the same handlers run for live
// and replayed events.
type Replayer struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReplayer wraps a reader producing one JSON envelope per line.
func NewReplayer(r io.ReadCloser) *Replayer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Replayer{scanner: sc, closer: r}
}

func (r *Replayer) Next(ctx context.Context) (Event, error) {
	for r.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("feed: line %d: %w", r.line, err)
		}
		ev, err := Decode(env)
		if err != nil {
			return nil, fmt.Errorf("feed: line %d: %w", r.line, err)
		}
		return ev, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Replayer) Close() error { return r.closer.Close() }

// WebSocketSource consumes envelopes from an upstream feed endpoint. The
// upstream is trusted for ordering and at-most-once delivery; this source
// does not reconnect, since a reconnect gap would silently drop events.
type WebSocketSource struct {
	conn    *websocket.Conn
	session string
}

// DialWebSocket connects to the upstream feed.
func DialWebSocket(ctx context.Context, url string) (*WebSocketSource, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: dial %s: %w", url, err)
	}
	session := uuid.New().String()
	slog.Info("feed connected", "url", url, "session", session)
	return &WebSocketSource{conn: conn, session: session}, nil
}

func (s *WebSocketSource) Next(ctx context.Context) (Event, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	}
	var env Envelope
	if err := s.conn.ReadJSON(&env); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			slog.Info("feed closed", "session", s.session)
			return nil, io.EOF
		}
		return nil, fmt.Errorf("feed: read (session %s): %w", s.session, err)
	}
	return Decode(env)
}

func (s *WebSocketSource) Close() error { return s.conn.Close() }
