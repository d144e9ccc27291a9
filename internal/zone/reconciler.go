package zone

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/roon-relay/internal/protocol"
)

// SyntheticZonePrefix marks zone-list entries synthesised from outputs that
// no zone currently owns.
const SyntheticZonePrefix = "output:"

// inactiveSuffix marks the display name of a synthetic entry.
const inactiveSuffix = " (Inactive)"

// Logger defines the logging interface used by the Reconciler.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Emitter is the output channel the Reconciler publishes snapshots to.
// Satisfied by protocol.Emitter.
type Emitter interface {
	Emit(message any)
}

// ArtworkResolver resolves an image key to a data URL.
// Satisfied by artwork.Fetcher.
type ArtworkResolver interface {
	Fetch(ctx context.Context, imageKey string) (string, bool)
}

// Telemetry records playback-state transitions. Optional; satisfied by
// telemetry.Client.
type Telemetry interface {
	RecordZoneState(zoneID, displayName, state string)
}

// Reconciler owns the authoritative zone and output maps, applies
// incremental subscription bursts, and publishes derived snapshots.
//
// State ownership is exclusive: the maps are never exposed by reference, and
// every zone record is replaced wholesale on change. After any mutating
// burst the Reconciler emits exactly one zone-list snapshot (if non-empty),
// followed by a now-playing message for every zone the burst touched.
//
// Failure discipline: malformed payloads are tolerated field-by-field, and a
// panic while processing one burst is caught and logged so the subscription
// channel survives to the next burst.
//
// Thread Safety:
//   - All methods are safe for concurrent use. In practice bursts arrive on
//     a single dispatch goroutine; the mutex also covers Clear() from the
//     supervisor.
type Reconciler struct {
	emitter  Emitter
	resolver ArtworkResolver

	mu      sync.Mutex
	zones   map[string]Zone
	outputs map[string]Output

	telemetry Telemetry
	logger    Logger
}

// NewReconciler creates a Reconciler publishing through emitter and
// resolving artwork through resolver.
func NewReconciler(emitter Emitter, resolver ArtworkResolver) *Reconciler {
	return &Reconciler{
		emitter:  emitter,
		resolver: resolver,
		zones:    make(map[string]Zone),
		outputs:  make(map[string]Output),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the reconciler.
func (r *Reconciler) SetLogger(logger Logger) {
	r.logger = logger
}

// SetTelemetry installs an optional playback telemetry sink.
func (r *Reconciler) SetTelemetry(t Telemetry) {
	r.telemetry = t
}

// ApplyZoneEvent applies one zone subscription burst.
//
// Subscribed and Changed bursts upsert every full zone record they carry
// (keyed by zone_id) and delete the ids in zones_removed. A burst carrying
// only seek deltas, or nothing at all, is a no-op: no mutation, no
// emission. After a mutation the zone-list snapshot is emitted, then a
// now-playing message for each upserted zone.
func (r *Reconciler) ApplyZoneEvent(kind EventKind, burst ZoneBurst) {
	defer r.recoverBurst("zone", kind)

	if kind != EventSubscribed && kind != EventChanged {
		return
	}

	upserts := burst.upserts()
	if len(upserts) == 0 && len(burst.ZonesRemoved) == 0 {
		if len(burst.ZonesSeekChanged) > 0 {
			r.logger.Debug("seek-only burst ignored", "zones", len(burst.ZonesSeekChanged))
		}
		return
	}

	r.mu.Lock()
	applied := make([]Zone, 0, len(upserts))
	for _, z := range upserts {
		if z.ZoneID == "" {
			r.logger.Warn("zone record without zone_id dropped")
			continue
		}
		r.zones[z.ZoneID] = z
		applied = append(applied, z)
	}
	for _, id := range burst.ZonesRemoved {
		// Removing an unknown id is a no-op by design.
		delete(r.zones, id)
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("zone burst applied",
		"kind", string(kind),
		"upserted", len(applied),
		"removed", len(burst.ZonesRemoved),
	)

	if len(snapshot) > 0 {
		r.emitter.Emit(protocol.NewZoneList(snapshot))
	}

	r.emitNowPlaying(applied)
}

// ApplyOutputEvent applies one output subscription burst, symmetric with
// ApplyZoneEvent but without now-playing emission: outputs only surface as
// synthetic zone-list entries.
func (r *Reconciler) ApplyOutputEvent(kind EventKind, burst OutputBurst) {
	defer r.recoverBurst("output", kind)

	if kind != EventSubscribed && kind != EventChanged {
		return
	}

	upserts := burst.upserts()
	if len(upserts) == 0 && len(burst.OutputsRemoved) == 0 {
		return
	}

	r.mu.Lock()
	for _, o := range upserts {
		if o.OutputID == "" {
			r.logger.Warn("output record without output_id dropped")
			continue
		}
		r.outputs[o.OutputID] = o
	}
	for _, id := range burst.OutputsRemoved {
		delete(r.outputs, id)
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("output burst applied",
		"kind", string(kind),
		"upserted", len(upserts),
		"removed", len(burst.OutputsRemoved),
	)

	if len(snapshot) > 0 {
		r.emitter.Emit(protocol.NewZoneList(snapshot))
	}
}

// Clear drops all zone and output state. Called by the supervisor on
// pairing loss; the supervisor is responsible for the accompanying
// disconnected emissions.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	r.zones = make(map[string]Zone)
	r.outputs = make(map[string]Output)
	r.mu.Unlock()

	r.logger.Debug("zone and output state cleared")
}

// ZoneCount returns the number of zones currently tracked.
func (r *Reconciler) ZoneCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.zones)
}

// OutputCount returns the number of outputs currently tracked.
func (r *Reconciler) OutputCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outputs)
}

// snapshotLocked derives the zone-list snapshot: one entry per zone, plus
// one synthetic entry per output not referenced by any zone's output list.
// Caller must hold the lock.
//
// Entries are sorted (zones first, then synthetic outputs, each by display
// name then id) so the host sees a stable ordering across emissions.
func (r *Reconciler) snapshotLocked() []protocol.ZoneInfo {
	referenced := make(map[string]struct{})
	for _, z := range r.zones {
		for _, o := range z.Outputs {
			referenced[o.OutputID] = struct{}{}
		}
	}

	zones := make([]protocol.ZoneInfo, 0, len(r.zones))
	for _, z := range r.zones {
		state := NormalizeState(z.State)
		info := protocol.ZoneInfo{
			ZoneID:      z.ZoneID,
			DisplayName: z.DisplayName,
			State:       state,
		}
		// Track text rides along only while something is actually up.
		if (state == protocol.StatePlaying || state == protocol.StatePaused) && z.NowPlaying != nil {
			title, artist, album := ExtractTrack(z.NowPlaying)
			info.NowPlaying = &protocol.TrackInfo{
				Title:  title,
				Artist: artist,
				Album:  album,
			}
		}
		zones = append(zones, info)
	}
	sortZoneInfos(zones)

	synthetic := make([]protocol.ZoneInfo, 0, len(r.outputs))
	for _, o := range r.outputs {
		if _, ok := referenced[o.OutputID]; ok {
			continue
		}
		synthetic = append(synthetic, protocol.ZoneInfo{
			ZoneID:      SyntheticZonePrefix + o.OutputID,
			DisplayName: o.DisplayName + inactiveSuffix,
			State:       protocol.StateStopped,
		})
	}
	sortZoneInfos(synthetic)

	return append(zones, synthetic...)
}

// sortZoneInfos orders entries by display name, then id for ties.
func sortZoneInfos(infos []protocol.ZoneInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DisplayName != infos[j].DisplayName {
			return strings.ToLower(infos[i].DisplayName) < strings.ToLower(infos[j].DisplayName)
		}
		return infos[i].ZoneID < infos[j].ZoneID
	})
}

// emitNowPlaying emits one now-playing message per upserted zone.
//
// Every concurrently active (playing/paused) zone is emitted, not just the
// first, so artwork is pre-warmed for any zone the host may later display.
// A zone that is neither playing nor paused, or that carries no now-playing
// record, gets the empty stopped message for its id.
func (r *Reconciler) emitNowPlaying(zones []Zone) {
	for _, z := range zones {
		state := NormalizeState(z.State)
		active := state == protocol.StatePlaying || state == protocol.StatePaused

		if r.telemetry != nil {
			r.telemetry.RecordZoneState(z.ZoneID, z.DisplayName, state)
		}

		if !active || z.NowPlaying == nil {
			r.emitter.Emit(protocol.NewNowPlaying(z.ZoneID, "", "", "", protocol.StateStopped, ""))
			continue
		}

		title, artist, album := ExtractTrack(z.NowPlaying)

		var artworkURL string
		if z.NowPlaying.ImageKey != "" {
			// Resolution failure degrades to a message without artwork;
			// it is never surfaced as an error to the host.
			artworkURL, _ = r.resolver.Fetch(context.Background(), z.NowPlaying.ImageKey)
		}

		r.emitter.Emit(protocol.NewNowPlaying(z.ZoneID, title, artist, album, state, artworkURL))
	}
}

// recoverBurst absorbs a panic raised while processing one burst. The
// subscription channel must never be torn down by a processing error.
func (r *Reconciler) recoverBurst(service string, kind EventKind) {
	if rec := recover(); rec != nil {
		r.logger.Error("panic while processing burst",
			"service", service,
			"kind", string(kind),
			"panic", rec,
		)
	}
}
