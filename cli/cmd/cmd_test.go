package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kestrel-rp/quill/log"
)

func testEnv() *Env {
	return &Env{
		Context: context.Background(),
		Logger:  log.Discard(),
	}
}

func TestEnvEngineHonorsMaxResultLen(t *testing.T) {
	env := testEnv()
	env.MaxResultLen = 10

	engine := env.Engine()

	if _, err := engine.Eval(`"abcdef".repeat(5)`, nil); err == nil {
		t.Error("expected the configured limit to apply")
	}

	// Zero means the default limit, not zero bytes.
	env.MaxResultLen = 0

	if _, err := env.Engine().Eval(`"abcdef".repeat(5)`, nil); err != nil {
		t.Errorf("default limit: %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.quill")
	if err := os.WriteFile(good, []byte(strings.Join([]string{
		"# entity conditions",
		`content.includes("help") && mentioned`,
		"",
		"idleMinutes > 30",
	}, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &Check{Source: []string{good}}
	if err := cmd.Run(testEnv()); err != nil {
		t.Errorf("all-valid file: %v", err)
	}

	bad := filepath.Join(dir, "bad.quill")
	if err := os.WriteFile(bad, []byte(strings.Join([]string{
		"mentioned",
		"nobody && mentioned",
		"1 + + 2",
	}, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd = &Check{Source: []string{bad}}

	err := cmd.Run(testEnv())
	if err == nil {
		t.Fatal("expected failure for a file with invalid expressions")
	}

	if !strings.Contains(err.Error(), "2 expression(s)") {
		t.Errorf("expected 2 failures, got: %v", err)
	}
}

func TestCheckCommandMissingFile(t *testing.T) {
	cmd := &Check{Source: []string{filepath.Join(t.TempDir(), "absent.quill")}}

	if err := cmd.Run(testEnv()); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFormatResult(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{true, "true"},
		{42.0, "42"},
		{"true", `"true"`},
		{"hi", `"hi"`},
		{[]string{"a", "b"}, `["a", "b"]`},
		{[]string{}, "[]"},
	}

	for _, tc := range cases {
		if got := formatResult(tc.value); got != tc.want {
			t.Errorf("formatResult(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
