package lang

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/kestrel-rp/quill/log"
)

// Engine compiles and evaluates expressions against a fixed context
// schema. It owns the compile cache, which is the only shared mutable
// state in the package: compiled expressions are immutable after
// creation and every context instance belongs to exactly one call, so
// concurrent evaluation across goroutines is safe.
//
// Each Engine has its own cache; tests construct isolated instances
// instead of sharing ambient global state.
type Engine struct {
	schema       *Schema
	maxResultLen int
	logger       log.Logger
	reporter     *Reporter
	cache        sync.Map // source string -> *Compiled
}

// Option configures an Engine.
type Option func(*Engine)

// WithSchema replaces the default context schema.
func WithSchema(schema *Schema) Option {
	return func(e *Engine) { e.schema = schema }
}

// WithMaxResultLen bounds the result size of growth-capable operations.
func WithMaxResultLen(n int) Option {
	return func(e *Engine) { e.maxResultLen = n }
}

// WithLogger sets the structured logger used for trace output and
// run-time error reporting.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New constructs an Engine with the default schema, the default result
// limit, and a discarding logger.
func New(opts ...Option) *Engine {
	e := &Engine{
		schema:       DefaultSchema(),
		maxResultLen: DefaultMaxResultLen,
		logger:       log.Discard(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.reporter = NewReporter(e.logger)

	return e
}

// Schema returns the engine's context schema.
func (e *Engine) Schema() *Schema { return e.schema }

// Compiled is the cached, validated, directly executable form of one
// source string. It is immutable after creation and safe for concurrent
// Run calls.
type Compiled struct {
	source   string
	root     Node
	patterns map[string]*regexp.Regexp
	guard    guard
}

// Source returns the exact source text the expression was compiled
// from, which is also its cache key.
func (c *Compiled) Source() string { return c.source }

// Compile lexes, parses, and validates source, caching the result by
// exact source text. A never-seen source raced by two goroutines may be
// compiled twice with one result discarded; a partially built entry is
// never visible.
func (e *Engine) Compile(source string) (*Compiled, error) {
	if cached, ok := e.cache.Load(source); ok {
		e.logger.Trace("compile cache hit", slog.Int("source_len", len(source)))

		return cached.(*Compiled), nil
	}

	compiled, err := e.compile(source)
	if err != nil {
		return nil, err
	}

	actual, loaded := e.cache.LoadOrStore(source, compiled)

	e.logger.Trace(
		"compiled expression",
		slog.Int("source_len", len(source)),
		slog.Bool("duplicate_discarded", loaded),
	)

	return actual.(*Compiled), nil
}

// compile runs the pipeline without touching the cache.
func (e *Engine) compile(source string) (*Compiled, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}

	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	patterns, err := runValidator(root, e.schema)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		source:   source,
		root:     root,
		patterns: patterns,
		guard:    guard{maxResultLen: e.maxResultLen},
	}, nil
}

// Run evaluates the compiled expression against one context instance.
// The context is read-only for the duration of the call and is never
// retained. The only error type returned is *Error: an internal
// evaluator bug surfaces as a run-time error value, never a panic.
func (c *Compiled) Run(ctx Context) (Value, error) {
	return c.run(ctx, false)
}

func (c *Compiled) run(ctx Context, missingEmpty bool) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = ErrTypeMismatch.
				Wrap(fmt.Errorf("internal evaluator fault: %v", r)).
				With(slog.String("source", c.source))
		}
	}()

	ev := &evaluator{
		ctx:          ctx,
		guard:        c.guard,
		patterns:     c.patterns,
		missingEmpty: missingEmpty,
	}

	return ev.eval(c.root)
}

// Eval compiles source (or reuses the cached form) and runs it against
// the given context.
func (e *Engine) Eval(source string, ctx Context) (Value, error) {
	compiled, err := e.Compile(source)
	if err != nil {
		return nil, err
	}

	return compiled.Run(ctx)
}

// EvalToDisplayString evaluates source and coerces the result to its
// display form. Dereferencing a schema-known field that is absent on
// this context instance yields an empty string instead of an error, so
// optional template slots render as nothing.
func (e *Engine) EvalToDisplayString(source string, ctx Context) (string, error) {
	compiled, err := e.Compile(source)
	if err != nil {
		return "", err
	}

	result, err := compiled.run(ctx, true)
	if err != nil {
		return "", err
	}

	return DisplayString(result), nil
}
