package lang

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kestrel-rp/quill/log"
)

func TestReporterDedup(t *testing.T) {
	var buf bytes.Buffer

	r := NewReporter(log.Make(&buf, log.WithLevel(log.LevelWarn)))
	err := errors.New("boom")

	if !r.Report("ember", err) {
		t.Error("first report for a pair must log")
	}

	if r.Report("ember", err) {
		t.Error("second report for the same pair must not log")
	}

	// A different entity with the same error is a new pair.
	if !r.Report("willow", err) {
		t.Error("same error on another entity must log")
	}

	// A different error on a seen entity is a new pair too.
	if !r.Report("ember", errors.New("other")) {
		t.Error("new error on a seen entity must log")
	}

	if r.Report("ember", nil) {
		t.Error("nil error must not log")
	}

	if n := strings.Count(buf.String(), "expression failed"); n != 3 {
		t.Errorf("expected 3 logged failures, got %d:\n%s", n, buf.String())
	}
}

func TestEvalConditionDegradesToFalse(t *testing.T) {
	engine := New()
	ctx := Context{"content": "hi", "mentioned": true}

	// A compile failure never aborts the caller.
	if engine.EvalCondition("ember", "nobody && mentioned", ctx) {
		t.Error("unknown identifier must degrade to false")
	}

	// A run-time failure degrades the same way.
	if engine.EvalCondition("ember", "content * 2 > 0", ctx) {
		t.Error("run-time type mismatch must degrade to false")
	}

	// A non-boolean result is a failure, not a truthiness guess.
	if engine.EvalCondition("ember", "content", ctx) {
		t.Error("non-boolean result must degrade to false")
	}

	if !engine.EvalCondition("ember", "mentioned", ctx) {
		t.Error("a true condition still fires")
	}
}

func TestEvalConditionReportsOnce(t *testing.T) {
	var buf bytes.Buffer

	engine := New(WithLogger(log.Make(&buf, log.WithLevel(log.LevelWarn))))
	ctx := Context{}

	for i := 0; i < 5; i++ {
		engine.EvalCondition("ember", "nobody", ctx)
	}

	if n := strings.Count(buf.String(), "expression failed"); n != 1 {
		t.Errorf("expected 1 report across repeated failures, got %d", n)
	}

	// The same broken source on another entity reports again.
	engine.EvalCondition("willow", "nobody", ctx)

	if n := strings.Count(buf.String(), "expression failed"); n != 2 {
		t.Errorf("expected a second report for the other entity, got %d", n)
	}
}

func TestEvalMacroDegradesToEmpty(t *testing.T) {
	engine := New()
	ctx := Context{"author": "Mira"}

	if got := engine.EvalMacro("ember", "nobody + 1", ctx); got != "" {
		t.Errorf("broken macro must render as nothing, got %q", got)
	}

	if got := engine.EvalMacro("ember", `"hi " + author`, ctx); got != "hi Mira" {
		t.Errorf("EvalMacro = %q", got)
	}

	// Display mode: an absent optional slot renders empty.
	if got := engine.EvalMacro("ember", "self.nickname", Context{"self": Record{}}); got != "" {
		t.Errorf("absent field must render as nothing, got %q", got)
	}
}
