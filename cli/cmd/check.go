package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kestrel-rp/quill/lang"
)

// Check compile-checks expressions without evaluating them. Each
// non-empty line of the input that does not start with # is one
// expression, matching the one-expression-per-slot layout entity
// designers export. Failures are reported with author-facing positions;
// the exit status reflects whether every expression compiled.
type Check struct {
	Source []string `arg:"" help:"Expression file(s), or '-' for stdin" default:"-"`
}

// Run executes the check command.
func (c *Check) Run(env *Env) error {
	engine := env.Engine()
	failed := 0

	for _, path := range c.Source {
		source, err := readSource(path)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(strings.NewReader(source))
		line := 0

		for scanner.Scan() {
			line++

			expr := strings.TrimSpace(scanner.Text())
			if expr == "" || strings.HasPrefix(expr, "#") {
				continue
			}

			if _, err := engine.Compile(expr); err != nil {
				failed++

				fmt.Fprintf(os.Stderr, "%s:%d: %s\n", path, line, describe(err))
			}
		}

		if err := scanner.Err(); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d expression(s) failed to compile", failed)
	}

	return nil
}

// describe renders an error for terminal output, preferring the rich
// form of the language's own error type.
func describe(err error) string {
	var langErr *lang.Error
	if errors.As(err, &langErr) {
		return langErr.Error()
	}

	return err.Error()
}
