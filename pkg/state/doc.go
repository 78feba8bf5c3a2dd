// Package state defines persistence-facing contracts for loading and saving
// root-graph snapshots, plus a small resolver that hydrates snapshots into
// observable object graphs and installs them on a bind.Registry.
//
// Responsibilities:
//   - Store only loads/saves a single raw snapshot for a single Ref.
//   - Resolver layers snapshots over defaults, hydrates the merged payload
//     into a bind.Object graph, and registers it under the Ref's name.
//   - The core bind package remains persistence-agnostic; all storage logic
//     stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Resolver -> hydrate.Decoder -> bind.Registry
//
// Concurrency control:
//
//	Meta.ETag lets Mutate detect concurrent writers; MemoryStore assigns a
//	fresh ETag and SnapshotID on every Save.
//
// Deterministic keys:
//
//	Ref.Identifier() provides a canonical storage key ("root/<name>" or
//	"session/<session>/<name>") so adapters can compose stable storage paths.
package state
