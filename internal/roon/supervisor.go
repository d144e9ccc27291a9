package roon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/roon-relay/internal/artwork"
	"github.com/nerrad567/roon-relay/internal/infrastructure/config"
	"github.com/nerrad567/roon-relay/internal/protocol"
	"github.com/nerrad567/roon-relay/internal/zone"
)

// Extension identity presented to the core on registration.
const (
	extensionID      = "uk.nerrad567.roonrelay"
	extensionName    = "Roon Relay"
	extensionVersion = "1.0.0"
	extensionAuthor  = "nerrad567"
	extensionEmail   = "nerrad567@users.noreply.github.com"
)

// requestTimeout bounds the registration and subscribe exchanges.
const requestTimeout = 10 * time.Second

// Emitter is the wire-protocol output channel. Satisfied by protocol.Emitter.
type Emitter interface {
	Emit(message any)
}

// StateApplier is the reconciliation surface the supervisor feeds.
// Satisfied by zone.Reconciler.
type StateApplier interface {
	ApplyZoneEvent(kind zone.EventKind, burst zone.ZoneBurst)
	ApplyOutputEvent(kind zone.EventKind, burst zone.OutputBurst)
	Clear()
}

// SourceBinder installs or removes the image-fetch capability.
// Satisfied by artwork.Fetcher.
type SourceBinder interface {
	SetSource(source artwork.Source)
}

// CacheClearer drops cached artwork. Satisfied by artwork.Cache.
type CacheClearer interface {
	Clear()
}

// Telemetry records connection lifecycle events. Optional; satisfied by
// telemetry.Client.
type Telemetry interface {
	RecordConnection(event string)
}

// session is the transport surface the supervisor drives.
type session interface {
	Request(ctx context.Context, service, name string, body any) (frame, error)
	Subscribe(service string, handler EventHandler)
	SetOnClose(callback func(err error))
	Close() error
}

// dialFunc opens a session to the core. Replaceable in tests.
type dialFunc func(ctx context.Context, url string) (session, error)

// Supervisor owns the connect, register, subscribe lifecycle against the
// core, and reconnects with exponential backoff when the link drops.
//
// On pairing loss it performs the teardown duties in a fixed order: remove
// the image source, clear the zone and output maps, clear the artwork cache,
// then emit the disconnected now-playing sentinel and a disconnected status.
// Transport-level error bursts on a live link surface as a disconnected
// status without touching any state; the core re-sends full records after
// recovery.
type Supervisor struct {
	cfg        *config.Config
	emitter    Emitter
	reconciler StateApplier
	fetcher    SourceBinder
	cache      CacheClearer

	telemetry Telemetry
	logger    Logger

	dial dialFunc
}

// NewSupervisor creates a Supervisor wiring the emitter, reconciler and
// artwork pipeline together under the given configuration.
func NewSupervisor(cfg *config.Config, emitter Emitter, reconciler StateApplier, fetcher SourceBinder, cache CacheClearer) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		emitter:    emitter,
		reconciler: reconciler,
		fetcher:    fetcher,
		cache:      cache,
		logger:     noopLogger{},
	}
	s.dial = func(ctx context.Context, url string) (session, error) {
		t, err := Dial(ctx, url)
		if err != nil {
			return nil, err
		}
		t.SetLogger(s.logger)
		return t, nil
	}
	return s
}

// SetLogger sets the logger for the supervisor.
func (s *Supervisor) SetLogger(logger Logger) {
	s.logger = logger
}

// SetTelemetry installs an optional connection telemetry sink.
func (s *Supervisor) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// Run drives the connection lifecycle until ctx is cancelled.
//
// Each cycle emits a discovering status, dials, registers and subscribes,
// then blocks until the link drops. Failed cycles back off exponentially
// from the configured initial delay up to the maximum; a cycle that reached
// pairing resets the backoff. Returns ErrAttemptsExhausted if a configured
// attempt limit is hit, nil on cancellation.
func (s *Supervisor) Run(ctx context.Context) error {
	delay := s.cfg.GetInitialReconnectDelay()
	maxDelay := s.cfg.GetMaxReconnectDelay()
	attempts := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		paired, err := s.runSession(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.logger.Warn("core session ended", "error", err, "retry_in", delay)
		}

		if paired {
			delay = s.cfg.GetInitialReconnectDelay()
			attempts = 0
		} else {
			attempts++
			if limit := s.cfg.Core.Reconnect.MaxAttempts; limit > 0 && attempts >= limit {
				return fmt.Errorf("%w: %d attempts", ErrAttemptsExhausted, attempts)
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// runSession runs one connect-to-disconnect cycle. The paired return reports
// whether registration succeeded, which resets the caller's backoff.
func (s *Supervisor) runSession(ctx context.Context) (bool, error) {
	url := s.coreURL()
	if url == "" {
		// Nothing to dial until a core address is configured; stay in
		// discovering and let the backoff pace the retries.
		s.emitStatus(protocol.StatusDiscovering, "waiting for core address")
		return false, nil
	}

	s.emitStatus(protocol.StatusDiscovering, "connecting to "+url)

	sess, err := s.dial(ctx, url)
	if err != nil {
		return false, err
	}

	closedCh := make(chan error, 1)
	sess.SetOnClose(func(err error) {
		closedCh <- err
	})

	if err := s.register(ctx, sess); err != nil {
		sess.Close()
		return false, err
	}

	s.fetcher.SetSource(NewImageClient(sess, s.cfg.GetFetchTimeout()))

	if err := s.subscribe(ctx, sess); err != nil {
		s.fetcher.SetSource(nil)
		sess.Close()
		return true, err
	}

	select {
	case <-ctx.Done():
		sess.Close()
		s.fetcher.SetSource(nil)
		return true, nil
	case err := <-closedCh:
		s.handlePairingLoss()
		return true, err
	}
}

// register performs the extension registration exchange.
func (s *Supervisor) register(ctx context.Context, sess session) error {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := sess.Request(reqCtx, ServiceRegistry, VerbRegister, registerRequest{
		ExtensionID:    extensionID,
		DisplayName:    extensionName,
		DisplayVersion: extensionVersion,
		Publisher:      extensionAuthor,
		Email:          extensionEmail,
	})
	if err != nil {
		return fmt.Errorf("%w: register: %w", ErrConnectionFailed, err)
	}

	switch resp.Name {
	case resultRegistered:
		var reg registeredBody
		//nolint:errcheck // A body that won't parse leaves the core name empty
		json.Unmarshal(resp.Body, &reg)
		s.logger.Info("paired with core", "core", reg.CoreName, "core_id", reg.CoreID)
		s.emitStatus(protocol.StatusConnected, reg.CoreName)
		s.recordConnection("connected")
		return nil

	case resultNotAuthorized:
		s.emitStatus(protocol.StatusNotAuthorized, "enable the extension in the core settings")
		s.recordConnection("not_authorized")
		return ErrNotAuthorized

	default:
		return fmt.Errorf("%w: unexpected registration response %q", ErrConnectionFailed, resp.Name)
	}
}

// subscribe registers the event handlers and issues the subscribe requests
// for the zone and output services.
func (s *Supervisor) subscribe(ctx context.Context, sess session) error {
	sess.Subscribe(ServiceZones, s.handleZoneEvent)
	sess.Subscribe(ServiceOutputs, s.handleOutputEvent)

	for _, service := range []string{ServiceZones, ServiceOutputs} {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		_, err := sess.Request(reqCtx, service, VerbSubscribe, nil)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: subscribe %s: %w", ErrConnectionFailed, service, err)
		}
	}

	return nil
}

// handleZoneEvent routes one zone subscription event. Error kinds become a
// disconnected status without touching state; the reconciler sees only
// Subscribed and Changed bursts.
func (s *Supervisor) handleZoneEvent(kind string, body json.RawMessage) {
	k := zone.EventKind(kind)
	if k == zone.EventNetworkError || k == zone.EventConnectionError {
		s.logger.Warn("zone subscription error", "kind", kind)
		s.emitStatus(protocol.StatusDisconnected, "zone subscription error")
		return
	}

	var burst zone.ZoneBurst
	if len(body) > 0 {
		if err := json.Unmarshal(body, &burst); err != nil {
			s.logger.Warn("malformed zone burst dropped", "kind", kind, "error", err)
			return
		}
	}
	s.reconciler.ApplyZoneEvent(k, burst)
}

// handleOutputEvent routes one output subscription event, symmetric with
// handleZoneEvent.
func (s *Supervisor) handleOutputEvent(kind string, body json.RawMessage) {
	k := zone.EventKind(kind)
	if k == zone.EventNetworkError || k == zone.EventConnectionError {
		s.logger.Warn("output subscription error", "kind", kind)
		s.emitStatus(protocol.StatusDisconnected, "output subscription error")
		return
	}

	var burst zone.OutputBurst
	if len(body) > 0 {
		if err := json.Unmarshal(body, &burst); err != nil {
			s.logger.Warn("malformed output burst dropped", "kind", kind, "error", err)
			return
		}
	}
	s.reconciler.ApplyOutputEvent(k, burst)
}

// handlePairingLoss performs the teardown duties after a lost pairing.
// Order matters: the capability and caches go first so nothing stale can be
// served, then the host is told the display should blank.
func (s *Supervisor) handlePairingLoss() {
	s.logger.Warn("pairing lost")

	s.fetcher.SetSource(nil)
	s.reconciler.Clear()
	s.cache.Clear()

	s.emitter.Emit(protocol.DisconnectedNowPlaying())
	s.emitStatus(protocol.StatusDisconnected, "connection to core lost")
	s.recordConnection("disconnected")
}

// coreURL builds the WebSocket endpoint from configuration, or "" when no
// address is configured.
func (s *Supervisor) coreURL() string {
	host := s.cfg.Core.Host
	if host == "" || s.cfg.Core.Port == 0 {
		return ""
	}
	return fmt.Sprintf("ws://%s:%d/api", host, s.cfg.Core.Port)
}

// emitStatus emits one status message.
func (s *Supervisor) emitStatus(state, message string) {
	s.emitter.Emit(protocol.NewStatus(state, message))
}

// recordConnection records a lifecycle event when telemetry is wired.
func (s *Supervisor) recordConnection(event string) {
	if s.telemetry != nil {
		s.telemetry.RecordConnection(event)
	}
}
