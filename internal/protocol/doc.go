// Package protocol defines the wire contract between the sidecar and its
// host process.
//
// The contract is one JSON object per line on stdout, four message shapes
// discriminated by a "type" field:
//
//	{"type":"now_playing","zone_id":"z1","title":"...","artist":"...","album":"...","state":"playing","artwork":"data:image/jpeg;base64,..."}
//	{"type":"zone_list","zones":[{"zone_id":"z1","display_name":"Living Room","state":"playing","now_playing":{...}}]}
//	{"type":"status","state":"connected","message":"Study Core"}
//	{"type":"error","message":"..."}
//
// Optional fields (artwork, now_playing, message) are omitted when absent,
// never emitted as null. Synthetic inactive-output entries use zone ids with
// the literal prefix "output:".
//
// The Emitter is the single choke point for the channel: everything the host
// ever sees passes through Emit, in call order, and a message that cannot be
// serialised degrades to an error-variant line rather than a crash or a
// corrupt stream.
package protocol
