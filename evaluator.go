package bind

import "time"

// EvalContext carries the inputs a transform expression evaluates against:
// the binding's resolved terminal value, its path, and whether the value was
// present at all.
type EvalContext struct {
	Value    any
	Path     string
	Present  bool
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// Evaluator executes transform expressions against an EvalContext.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
