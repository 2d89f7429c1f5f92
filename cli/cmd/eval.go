package cmd

import (
	"fmt"
	"strings"

	"github.com/kestrel-rp/quill/lang"
)

// Eval evaluates a single expression against a context fixture.
type Eval struct {
	Expr    string `arg:"" help:"Expression source text"`
	Context string `help:"YAML context fixture" short:"c" type:"existingfile" optional:""`
	Display bool   `help:"Coerce the result to its display string" short:"d"`
}

// Run executes the eval command.
func (e *Eval) Run(env *Env) error {
	engine := env.Engine()

	ctx, err := LoadContext(e.Context, engine.Schema())
	if err != nil {
		return err
	}

	if e.Display {
		result, err := engine.EvalToDisplayString(e.Expr, ctx)
		if err != nil {
			return err
		}

		fmt.Println(result)

		return nil
	}

	result, err := engine.Eval(e.Expr, ctx)
	if err != nil {
		return err
	}

	fmt.Println(formatResult(result))

	return nil
}

// formatResult renders an evaluation result with its kind visible, so
// the string "true" and the boolean true are distinguishable.
func formatResult(result lang.Value) string {
	switch v := result.(type) {
	case string:
		return `"` + v + `"`
	case []string:
		quoted := make([]string, len(v))
		for i, item := range v {
			quoted[i] = `"` + item + `"`
		}

		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return lang.DisplayString(result)
	}
}
