package cmd

import (
	"github.com/kestrel-rp/quill/cli/cmd/repl"
)

// Repl starts the interactive expression prompt.
type Repl struct {
	Context string `help:"YAML context fixture" short:"c" type:"existingfile" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(env *Env) error {
	engine := env.Engine()

	ctx, err := LoadContext(r.Context, engine.Schema())
	if err != nil {
		return err
	}

	return repl.Run(env.Context, engine, ctx, env.Logger)
}
