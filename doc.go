// Package bind is a property-observing runtime for interactive interfaces:
// it resolves dotted property paths against live object graphs, keeps
// bindings in sync as intermediate objects change identity, and coalesces
// notifications so each target hears about one logical change exactly once
// per turn.
//
// A path like "App.controller.value" resolves segment by segment, starting
// either from an explicit local root or from a name registered on the
// engine's Registry. Every traversable hop implements the Accessor protocol;
// hops that also implement Observable feed change notifications back into
// the engine, which re-resolves only the affected suffix and queues the
// binding for the next Flush.
package bind
