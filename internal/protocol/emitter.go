package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Logger defines the logging interface used by the Emitter.
type Logger interface {
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Emitter serialises messages onto the line-delimited JSON output channel.
//
// One JSON object per line, newline-terminated, written in call order.
// The Emitter is the only writer to the channel; nothing else in the process
// may write to it.
//
// Thread Safety:
//   - Emit is safe for concurrent use. A mutex serialises writes so that
//     lines are never interleaved and call order is preserved per caller.
type Emitter struct {
	w      io.Writer
	mu     sync.Mutex
	logger Logger
}

// NewEmitter creates an Emitter writing to w (normally os.Stdout).
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{
		w:      w,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger used for serialisation and write failures.
func (e *Emitter) SetLogger(logger Logger) {
	e.logger = logger
}

// Emit writes one message as a single newline-terminated JSON line.
//
// A serialisation failure must not crash the process: the failed message is
// replaced by a single Error message describing the failure, built through a
// path that cannot itself fail to serialise. Write errors are logged and
// swallowed; if the host has gone away there is nobody left to tell.
func (e *Emitter) Emit(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		e.logger.Error("failed to serialise message", "error", err)
		data = fallbackError(fmt.Sprintf("serialisation failed: %v", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(append(data, '\n')); err != nil {
		e.logger.Error("failed to write message", "error", err)
	}
}

// fallbackError builds a serialised Error message without going back through
// the normal marshalling path. Error contains only string fields, so this
// cannot fail; the belt-and-braces branch hand-assembles the line if it
// somehow does.
func fallbackError(message string) []byte {
	data, err := json.Marshal(NewError(message))
	if err != nil {
		return []byte(`{"type":"error","message":"serialisation failed"}`)
	}
	return data
}
