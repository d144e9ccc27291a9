package roon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket timing and sizing constants.
const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long the link may stay silent before the read side
	// gives up. pingInterval must be shorter.
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second

	// maxMessageSize accommodates image responses.
	maxMessageSize = 8 << 20

	// sendBufferSize is the outbound frame buffer size.
	sendBufferSize = 64

	// eventBufferSize is the inbound event queue size. Events are dispatched
	// on a dedicated goroutine so a slow handler cannot stall the read pump;
	// when the queue overflows the burst is dropped and logged, and the next
	// full record replaces it anyway.
	eventBufferSize = 256
)

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventHandler receives one server-pushed event for a subscribed service.
// Handlers for all services run sequentially on a single dispatch goroutine,
// so event order within and across services is preserved.
type EventHandler func(kind string, body json.RawMessage)

// Transport is a WebSocket client to the core.
//
// It provides request/response correlation by UUID id and dispatch of
// server-pushed subscription events to registered handlers. Reads, writes
// and event dispatch each run on their own goroutine; the transport is dead
// once the connection drops and is never reused (the supervisor dials a
// fresh one).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Transport struct {
	conn   *websocket.Conn
	logger Logger

	send   chan []byte
	events chan frame

	pending   map[string]chan frame
	pendingMu sync.Mutex

	handlers  map[string]EventHandler
	handlerMu sync.RWMutex

	closed    chan struct{}
	closeOnce sync.Once

	// onClose is invoked once when the link fails; not on deliberate Close.
	onClose   func(err error)
	onCloseMu sync.RWMutex
}

// Dial connects to the core WebSocket endpoint and starts the pumps.
func Dial(ctx context.Context, url string) (*Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	t := &Transport{
		conn:     conn,
		logger:   noopLogger{},
		send:     make(chan []byte, sendBufferSize),
		events:   make(chan frame, eventBufferSize),
		pending:  make(map[string]chan frame),
		handlers: make(map[string]EventHandler),
		closed:   make(chan struct{}),
	}

	go t.readPump()
	go t.writePump()
	go t.eventPump()

	return t, nil
}

// SetLogger sets the logger for transport diagnostics.
func (t *Transport) SetLogger(logger Logger) {
	t.logger = logger
}

// SetOnClose sets a callback invoked once when the link fails. A deliberate
// Close does not trigger it.
func (t *Transport) SetOnClose(callback func(err error)) {
	t.onCloseMu.Lock()
	t.onClose = callback
	t.onCloseMu.Unlock()
}

// Subscribe registers the event handler for a service. The caller still has
// to issue the subscribe request; events arriving for a service without a
// handler are dropped.
func (t *Transport) Subscribe(service string, handler EventHandler) {
	t.handlerMu.Lock()
	t.handlers[service] = handler
	t.handlerMu.Unlock()
}

// Request sends one request frame and waits for the matching response.
//
// Parameters:
//   - ctx: Bounds the wait; cancellation abandons the request
//   - service: Target service
//   - name: Request verb
//   - body: Marshalled as the request body; nil for none
//
// Returns:
//   - frame: The response frame
//   - error: ErrClosed if the link died, or the context error
func (t *Transport) Request(ctx context.Context, service, name string, body any) (frame, error) {
	var raw json.RawMessage
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return frame{}, fmt.Errorf("marshalling request body: %w", err)
		}
		raw = data
	}

	id := uuid.NewString()
	data, err := json.Marshal(frame{
		Type:    frameRequest,
		ID:      id,
		Service: service,
		Name:    name,
		Body:    raw,
	})
	if err != nil {
		return frame{}, fmt.Errorf("marshalling request: %w", err)
	}

	replyCh := make(chan frame, 1)
	t.pendingMu.Lock()
	t.pending[id] = replyCh
	t.pendingMu.Unlock()

	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
	}()

	select {
	case t.send <- data:
	case <-t.closed:
		return frame{}, ErrClosed
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-t.closed:
		return frame{}, ErrClosed
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}
}

// Close shuts the link down deliberately. Safe to call more than once.
func (t *Transport) Close() error {
	t.fail(nil)
	return nil
}

// fail tears the transport down once. A non-nil err marks an unexpected
// failure and triggers the onClose callback.
func (t *Transport) fail(err error) {
	t.closeOnce.Do(func() {
		close(t.closed)
		t.conn.Close()

		if err == nil {
			return
		}

		t.onCloseMu.RLock()
		callback := t.onClose
		t.onCloseMu.RUnlock()
		if callback != nil {
			go callback(err)
		}
	})
}

// readPump reads frames until the connection dies.
func (t *Transport) readPump() {
	t.conn.SetReadLimit(maxMessageSize)
	//nolint:errcheck // Best-effort deadline on connection setup
	t.conn.SetReadDeadline(time.Now().Add(pongWait))
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Warn("core link read error", "error", err)
			} else {
				t.logger.Debug("core link closed", "error", err)
			}
			t.fail(fmt.Errorf("%w: %w", ErrClosed, err))
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		t.conn.SetReadDeadline(time.Now().Add(pongWait))
		t.dispatch(data)
	}
}

// writePump writes outbound frames and keepalive pings.
func (t *Transport) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-t.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				t.fail(fmt.Errorf("%w: write: %w", ErrClosed, err))
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.fail(fmt.Errorf("%w: ping: %w", ErrClosed, err))
				return
			}
		case <-t.closed:
			//nolint:errcheck // Best-effort close message
			t.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// eventPump runs subscription handlers in arrival order, off the read
// goroutine so a handler that issues its own requests cannot starve the
// response path.
func (t *Transport) eventPump() {
	for {
		select {
		case f := <-t.events:
			t.handlerMu.RLock()
			handler := t.handlers[f.Service]
			t.handlerMu.RUnlock()

			if handler != nil {
				handler(f.Name, f.Body)
			} else {
				t.logger.Debug("event for unsubscribed service dropped", "service", f.Service, "kind", f.Name)
			}
		case <-t.closed:
			return
		}
	}
}

// dispatch routes one inbound frame.
func (t *Transport) dispatch(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.logger.Warn("malformed frame dropped", "error", err)
		return
	}

	switch f.Type {
	case frameResponse:
		t.pendingMu.Lock()
		replyCh, ok := t.pending[f.ID]
		delete(t.pending, f.ID)
		t.pendingMu.Unlock()

		if ok {
			replyCh <- f
		} else {
			t.logger.Debug("response for unknown request dropped", "id", f.ID)
		}

	case frameEvent:
		select {
		case t.events <- f:
		default:
			t.logger.Warn("event queue full, burst dropped", "service", f.Service, "kind", f.Name)
		}

	default:
		t.logger.Warn("frame with unknown type dropped", "type", f.Type)
	}
}
