package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	bind "github.com/goliatone/go-bindings"
	"github.com/goliatone/go-bindings/internal/hydrate"
	"github.com/goliatone/go-bindings/layering"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted snapshot for one named root graph.
type Ref struct {
	// Name is the registry name the graph lives under, e.g. "App".
	Name string
	// Session optionally scopes the snapshot to a session.
	Session string
}

// Identifier returns a stable slug adapters can use when composing
// deterministic storage keys.
func (r Ref) Identifier() (string, error) {
	if r.Name == "" {
		return "", fmt.Errorf("state: ref name is required")
	}
	if r.Session == "" {
		return fmt.Sprintf("root/%s", r.Name), nil
	}
	return fmt.Sprintf("session/%s/%s", r.Session, r.Name), nil
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one raw snapshot for a single reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (snapshot map[string]any, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot map[string]any, meta Meta) (Meta, error)
}

// Mutator edits a snapshot in place.
type Mutator func(map[string]any) error

// Resolver orchestrates snapshot loads and installs the hydrated graphs on a
// registry. Defaults, when set, are layered under every loaded snapshot.
type Resolver struct {
	Store    Store
	Defaults map[string]any
	Decoder  *hydrate.Decoder
}

func (r Resolver) decoder() *hydrate.Decoder {
	if r.Decoder != nil {
		return r.Decoder
	}
	return hydrate.NewDecoder()
}

// Restore loads each ref's snapshot, hydrates it into an observable graph,
// and registers it under the ref's name. Refs with neither a stored snapshot
// nor defaults are skipped.
func (r Resolver) Restore(ctx context.Context, registry *bind.Registry, refs ...Ref) error {
	if r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if registry == nil {
		return fmt.Errorf("state: registry is required")
	}
	if len(refs) == 0 {
		return fmt.Errorf("state: at least one ref is required")
	}

	for _, ref := range refs {
		snapshot, _, ok, err := r.Store.Load(ctx, ref)
		if err != nil {
			return fmt.Errorf("state: load %q: %w", ref.Name, err)
		}
		if !ok && r.Defaults == nil {
			continue
		}
		merged := layering.MergeProperties(snapshot, r.Defaults)
		graph, err := r.decoder().Decode(hydrate.Context{Root: ref.Name, Session: ref.Session}, merged)
		if err != nil {
			return err
		}
		if err := registry.Register(ref.Name, graph); err != nil {
			return err
		}
	}
	return nil
}

// Capture snapshots a registered root graph back into the store, returning
// the storage-assigned metadata.
func (r Resolver) Capture(ctx context.Context, registry *bind.Registry, ref Ref, meta Meta) (Meta, error) {
	if r.Store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if registry == nil {
		return Meta{}, fmt.Errorf("state: registry is required")
	}
	root, ok := registry.Lookup(ref.Name)
	if !ok {
		return Meta{}, fmt.Errorf("state: root %q is not registered", ref.Name)
	}
	graph, ok := root.(*bind.Object)
	if !ok {
		return Meta{}, fmt.Errorf("state: root %q is not an object graph", ref.Name)
	}
	saved, err := r.Store.Save(ctx, ref, graph.Snapshot(), meta)
	if err != nil {
		return Meta{}, fmt.Errorf("state: save %q: %w", ref.Name, err)
	}
	return saved, nil
}

// Mutate loads one snapshot, applies fn, then saves it back. When both the
// caller and the store carry an ETag they must match, otherwise the save is
// rejected with ErrETagMismatch.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (map[string]any, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if ref.Name == "" {
		return nil, Meta{}, fmt.Errorf("state: ref name is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q: %w", ref.Name, err)
	}
	if !ok {
		snapshot = map[string]any{}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(snapshot); err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	savedMeta, err := r.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q: %w", ref.Name, err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
