// Package hydrate converts raw graph payloads into observable object graphs,
// giving persistence and bootstrap code a single decoding path with
// application-supplied normalisation hooks.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	bind "github.com/goliatone/go-bindings"
	"github.com/goliatone/go-bindings/layering"
)

// Context carries identifiers tied to a graph payload.
type Context struct {
	// Root is the registry name the resulting object graph will live under.
	Root string
	// Session optionally identifies the session the payload was captured in.
	Session string
}

// PreHook lets callers mutate or normalise the payload before the graph is
// built.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated object graph.
type PostHook func(Context, *bind.Object) error

// Option configures a Decoder instance.
type Option func(*Decoder)

// Decoder converts payloads into observable object graphs.
type Decoder struct {
	preHooks     []PreHook
	postHooks    []PostHook
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to building the graph.
func WithPreHook(hook PreHook) Option {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after the graph is built.
func WithPostHook(hook PostHook) Option {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber when decoding JSON payloads,
// preserving numeric precision as json.Number.
func WithUseNumber() Option {
	return func(d *Decoder) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into an observable object graph, applying
// configured hooks. The payload is deep copied first so hooks never mutate
// the caller's map.
func (d *Decoder) Decode(ctx Context, payload map[string]any) (*bind.Object, error) {
	if payload == nil {
		return nil, fmt.Errorf("hydrate: payload is nil for root %q", ctx.Root)
	}

	current := layering.CloneProperties(payload)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for root %q failed: %w", ctx.Root, err)
		}
		if next != nil {
			current = next
		}
	}

	graph := bind.ObjectFromMap(current)
	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, graph); err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for root %q failed: %w", ctx.Root, err)
		}
	}
	return graph, nil
}

// DecodeJSON unmarshals a JSON payload and builds the object graph from it.
func (d *Decoder) DecodeJSON(ctx Context, payload []byte) (*bind.Object, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("hydrate: empty payload for root %q", ctx.Root)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	for _, configure := range d.configureDec {
		configure(dec)
	}
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("hydrate: decode payload for root %q: %w", ctx.Root, err)
	}
	return d.Decode(ctx, raw)
}
