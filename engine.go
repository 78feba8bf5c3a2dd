package bind

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-bindings/pkg/activity"
)

// Engine owns the global root registry, the pending-flush queue, and the
// shared evaluator configuration for every binding it creates.
//
// The engine follows the single run-loop model: all binding activation,
// mutation-driven re-resolution, and flushing happen on one goroutine. Only
// the Registry may be touched from elsewhere.
type Engine struct {
	registry *Registry
	cfg      engineConfig
	emitter  *activity.Emitter
	dirty    []*Binding
	flushing bool
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	registry      *Registry
	logger        Logger
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	activityHooks activity.Hooks
	activityCfg   activity.Config
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRegistry shares an existing root registry with the engine. Engines
// without one get their own empty registry.
func WithRegistry(registry *Registry) Option {
	return func(cfg *engineConfig) {
		cfg.registry = registry
	}
}

// WithEvaluator configures the transform evaluator used by bindings created
// through this engine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *engineConfig) {
		cfg.evaluator = e
	}
}

// WithActivityHooks attaches activity hooks to the engine. Hooks are cloned
// and nil entries dropped; emission stays disabled until enabled via
// WithActivityConfig.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *engineConfig) {
		cfg.activityHooks = normalized
		cfg.activityCfg.Enabled = len(normalized) > 0
	}
}

// WithActivityConfig overrides the activity emission defaults.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *engineConfig) {
		cfg.activityCfg = config
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	cfg := applyOptions(opts)
	registry := cfg.registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{
		registry: registry,
		cfg:      cfg,
		emitter:  activity.NewEmitter(cfg.activityHooks, cfg.activityCfg),
	}
}

// Registry returns the engine's root registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Register associates name with root on the engine's registry.
func (e *Engine) Register(name string, root any) error {
	return e.registry.Register(name, root)
}

// Resolve walks path against the registry, treating the first segment as a
// top-level root name.
func (e *Engine) Resolve(path string) Resolution {
	return resolveSegments(ParsePath(path).segments, nil, e.registry, nil)
}

// ResolveFrom walks path from an explicit local root, falling back to the
// registry when the root lacks the first segment.
func (e *Engine) ResolveFrom(root any, path string) Resolution {
	return resolveSegments(ParsePath(path).segments, root, e.registry, nil)
}

// ResolveWithTrace resolves path against the registry and returns
// per-segment provenance alongside the result.
func (e *Engine) ResolveWithTrace(path string) (Resolution, Trace) {
	tr := Trace{Path: path}
	res := resolveSegments(ParsePath(path).segments, nil, e.registry, &tr)
	return res, tr
}

// Bind activates a binding for path and begins observing every intermediate
// object along it. When the path's first segment names no registered root
// (and no local root was supplied via WithRoot), the binding is still
// returned alongside ErrUnresolvedRoot: it resolves to an absent value until
// a property change re-resolves it. Registry mutations alone never do.
func (e *Engine) Bind(path string, target Target, opts ...BindOption) (*Binding, error) {
	if target == nil {
		return nil, fmt.Errorf("bind: target must not be nil")
	}
	cfg := applyBindOptions(opts)

	b := newBinding(e, ParsePath(path), cfg, target)
	if cfg.transform != "" {
		evaluator, err := e.resolveEvaluator()
		if err != nil {
			return nil, err
		}
		rule, err := evaluator.Compile(cfg.transform)
		if err != nil {
			return nil, wrapEvaluationError(evaluatorEngineName(evaluator), cfg.transform, path, err)
		}
		b.transform = rule
		b.transformEngine = evaluatorEngineName(evaluator)
	}

	start := time.Now()
	b.activate()
	var bindErr error
	if b.reason == ReasonUnresolvedRoot {
		bindErr = fmt.Errorf("%w: %q", ErrUnresolvedRoot, b.failedSegment())
	}
	e.logger().Log(LogEvent{
		Op:       "bind",
		Path:     path,
		Duration: time.Since(start),
		Err:      bindErr,
	})
	e.emit(activity.BuildBoundEvent(e.eventInput(b)))
	return b, bindErr
}

// Flush delivers every dirty binding's terminal value exactly once, in the
// order the bindings were first marked dirty. Targets may mutate properties
// or deactivate bindings during the flush: a binding re-dirtied after its own
// delivery stays queued for the next turn, and deactivated bindings are
// skipped. Reentrant calls are no-ops.
func (e *Engine) Flush() {
	if e.flushing {
		return
	}
	e.flushing = true
	defer func() { e.flushing = false }()

	flushed := make(map[*Binding]struct{})
	var carry []*Binding
	for i := 0; i < len(e.dirty); i++ {
		b := e.dirty[i]
		if b.state != stateDirty {
			continue
		}
		if _, done := flushed[b]; done {
			carry = append(carry, b)
			continue
		}
		flushed[b] = struct{}{}
		start := time.Now()
		err := b.flush()
		e.logger().Log(LogEvent{
			Op:       "flush",
			Path:     b.path.String(),
			Engine:   b.transformEngine,
			Duration: time.Since(start),
			Err:      err,
		})
		e.emit(activity.BuildFlushedEvent(e.eventInput(b)))
	}
	e.dirty = carry
}

// Run executes fn as one turn: mutations made inside fn are batched and
// flushed once when fn returns.
func (e *Engine) Run(fn func()) {
	if fn != nil {
		fn()
	}
	e.Flush()
}

// Pending returns the number of bindings waiting to be flushed.
func (e *Engine) Pending() int {
	n := 0
	for _, b := range e.dirty {
		if b.state == stateDirty {
			n++
		}
	}
	return n
}

// enqueue appends b to the pending-flush queue. Callers guarantee the state
// transition to dirty happened exactly once per enqueue.
func (e *Engine) enqueue(b *Binding) {
	e.dirty = append(e.dirty, b)
}

func (e *Engine) logger() Logger {
	if e.cfg.logger != nil {
		return e.cfg.logger
	}
	return noopLogger{}
}

func (e *Engine) resolveEvaluator() (Evaluator, error) {
	if e.cfg.evaluator != nil {
		return e.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := e.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := e.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	e.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*bind.exprEvaluator":
		return "expr"
	case "*bind.celEvaluator":
		return "cel"
	case "*bind.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

func (e *Engine) emit(event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	_ = e.emitter.Emit(context.Background(), event)
}

func (e *Engine) eventInput(b *Binding) activity.BindingEventInput {
	return activity.BindingEventInput{
		ObjectID: b.id,
		Metadata: b.metadata,
		Path:     b.path.String(),
		Value:    b.value,
		Present:  b.present,
	}
}
