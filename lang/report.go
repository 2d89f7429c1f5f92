package lang

import (
	"log/slog"
	"sync"

	"github.com/kestrel-rp/quill/log"
)

// Reporter logs expression failures once per distinct (entity, error)
// pair. A broken expression attached to a busy entity fires on every
// message; without deduplication that is a notification storm aimed at
// the expression's author.
type Reporter struct {
	logger log.Logger
	seen   sync.Map // entity + "\x00" + error string
}

// NewReporter builds a Reporter writing through the given logger.
func NewReporter(logger log.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report logs err for the named entity unless the same pair was already
// reported. It returns true when the error was logged.
func (r *Reporter) Report(entity string, err error) bool {
	if err == nil {
		return false
	}

	key := entity + "\x00" + err.Error()
	if _, dup := r.seen.LoadOrStore(key, struct{}{}); dup {
		return false
	}

	r.logger.Warn(
		"expression failed",
		slog.String("entity", entity),
		slog.Any("error", err),
	)

	return true
}

// EvalCondition evaluates a condition expression for an entity and
// degrades every failure to false: an expression that does not compile
// or errors at run time never fires its event, and never aborts the
// surrounding pipeline. Failures are reported once per (entity, error).
func (e *Engine) EvalCondition(entity, source string, ctx Context) bool {
	result, err := e.Eval(source, ctx)
	if err != nil {
		e.reporter.Report(entity, err)

		return false
	}

	b, ok := result.(bool)
	if !ok {
		e.reporter.Report(entity, ErrTypeMismatch.With(
			slog.String("issue", "condition must produce a boolean"),
			slog.String("got", typeName(result)),
		))

		return false
	}

	return b
}

// EvalMacro evaluates a macro expression for an entity and degrades
// every failure to the empty string, so one bad macro renders as
// nothing instead of breaking the message it is embedded in.
func (e *Engine) EvalMacro(entity, source string, ctx Context) string {
	result, err := e.EvalToDisplayString(source, ctx)
	if err != nil {
		e.reporter.Report(entity, err)

		return ""
	}

	return result
}
