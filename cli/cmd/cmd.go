package cmd

import (
	"context"
	"io"
	"os"

	"github.com/kestrel-rp/quill/lang"
	"github.com/kestrel-rp/quill/log"
)

// Env carries shared state from the CLI layer into command Run methods.
type Env struct {
	Context      context.Context
	Logger       log.Logger
	MaxResultLen int
}

// Engine builds a lang.Engine from the environment's settings.
func (env *Env) Engine() *lang.Engine {
	opts := []lang.Option{lang.WithLogger(env.Logger)}

	if env.MaxResultLen > 0 {
		opts = append(opts, lang.WithMaxResultLen(env.MaxResultLen))
	}

	return lang.New(opts...)
}

// readSource reads expression source from a file path or, for "-", from
// stdin.
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
