// Package cli is the command-line interface for quill: a checker, an
// evaluator, and a REPL for entity expression authors.
package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kestrel-rp/quill/cli/cmd"
	"github.com/kestrel-rp/quill/log"
	"github.com/kestrel-rp/quill/profile"
)

// CLI is the top-level command model parsed by kong.
type CLI struct {
	LogLevel    string `help:"Log level (trace, debug, info, warn, error)" default:"warn"   group:"log"`
	LogFormat   string `help:"Log format (text, json)"                     default:"text"   group:"log"`
	Profile     string `help:"Profiling mode (cpu, mem, ...)"              default:""       group:"pprof"`
	ProfilePath string `help:"Profiling output directory"                  default:""       group:"pprof"`

	MaxResultLen int `help:"Result size limit for string operations" default:"100000"`

	Check cmd.Check `cmd:"" help:"Compile-check expressions without evaluating them"`
	Eval  cmd.Eval  `cmd:"" help:"Evaluate an expression against a context fixture"`
	Repl  cmd.Repl  `cmd:"" help:"Interactive expression prompt"`
}

// Run parses args and executes the selected command. The exit function
// is handed to kong for its help and error paths.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("quill"),
		kong.Description("Sandboxed expression language for roleplay entities."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := log.Make(os.Stderr,
		log.WithLevel(log.ParseLevel(cli.LogLevel)),
		log.WithFormat(log.ParseFormat(cli.LogFormat)),
	)

	defer profile.Start(cli.Profile, cli.ProfilePath).Stop()

	env := cmd.Env{
		Context:      ctx,
		Logger:       logger,
		MaxResultLen: cli.MaxResultLen,
	}

	return ktx.Run(&env)
}
