package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/kestrel-rp/quill/lang"
)

// LoadContext reads a YAML context fixture and builds the value bag an
// expression evaluates against. Fixture keys map straight onto schema
// names; the reserved keys "facts" and "history" feed the fact() and
// recall() callables instead of becoming names themselves.
//
// The real platform assembles contexts from scene and character state;
// this loader is the CLI's stand-in host so authors can exercise their
// expressions locally.
func LoadContext(path string, schema *lang.Schema) (lang.Context, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("context fixture: %w", err)
		}
	}

	facts := map[string]string{}
	history := []string{}

	ctx := lang.Context{}

	for key, value := range raw {
		switch key {
		case "facts":
			if m, ok := value.(map[string]any); ok {
				for name, v := range m {
					facts[name] = fmt.Sprintf("%v", v)
				}
			}

		case "history":
			history = toStringList(value)

		default:
			converted, err := convertValue(value)
			if err != nil {
				return nil, fmt.Errorf("context key %q: %w", key, err)
			}

			ctx[key] = converted
		}
	}

	bindCallables(ctx, schema, facts, history)

	return ctx, nil
}

// convertValue maps a decoded YAML value onto the language's value
// kinds.
func convertValue(value any) (lang.Value, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return v, nil
	case []any:
		return toStringList(v), nil
	case map[string]any:
		record := lang.Record{}

		for name, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}

			record[name] = converted
		}

		return record, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func toStringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, fmt.Sprintf("%v", item))
	}

	return list
}

var dicePattern = regexp.MustCompile(`^(\d{1,3})d(\d{1,4})$`)

// bindCallables attaches the CLI's implementations of every schema
// callable not already present in the fixture.
func bindCallables(ctx lang.Context, schema *lang.Schema, facts map[string]string, history []string) {
	bind := func(name string, fn lang.Callable) {
		if _, ok := schema.Lookup(name); !ok {
			return
		}

		if _, ok := ctx[name]; !ok {
			ctx[name] = fn
		}
	}

	bind("random", func(args []lang.Value) (lang.Value, error) {
		return rand.Float64(), nil
	})

	bind("fact", func(args []lang.Value) (lang.Value, error) {
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("fact name must be a string")
		}

		return facts[name], nil
	})

	bind("roll", func(args []lang.Value) (lang.Value, error) {
		spec, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("roll spec must be a string")
		}

		m := dicePattern.FindStringSubmatch(spec)
		if m == nil {
			return nil, fmt.Errorf("roll spec must look like 2d6")
		}

		count, _ := strconv.Atoi(m[1])
		sides, _ := strconv.Atoi(m[2])

		if count < 1 || sides < 1 {
			return nil, fmt.Errorf("roll spec must look like 2d6")
		}

		total := 0
		for i := 0; i < count; i++ {
			total += rand.Intn(sides) + 1
		}

		return float64(total), nil
	})

	bind("recall", func(args []lang.Value) (lang.Value, error) {
		n, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("recall index must be a number")
		}

		idx := len(history) - 1 - int(n)
		if idx < 0 || idx >= len(history) {
			return "", nil
		}

		return history[idx], nil
	})

	bind("duration", func(args []lang.Value) (lang.Value, error) {
		minutes, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("duration takes minutes as a number")
		}

		return formatMinutes(minutes), nil
	})

	bind("date", func(args []lang.Value) (lang.Value, error) {
		parts := make([]int, 3)

		for i, arg := range args {
			num, ok := arg.(float64)
			if !ok {
				return nil, fmt.Errorf("date takes three numbers")
			}

			parts[i] = int(num)
		}

		t := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)

		return t.Format("2006-01-02"), nil
	})

	bind("parseDate", func(args []lang.Value) (lang.Value, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("parseDate takes a string")
		}

		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("date must look like 2006-01-02")
		}

		return float64(t.Unix() / 86400), nil
	})
}

// formatMinutes renders a minute count as a compact duration such as
// "2h 5m" or "3d 1h".
func formatMinutes(minutes float64) string {
	total := int(minutes)
	if total < 0 {
		total = 0
	}

	days := total / (24 * 60)
	hours := (total % (24 * 60)) / 60
	mins := total % 60

	parts := []string{}

	if days > 0 {
		parts = append(parts, strconv.Itoa(days)+"d")
	}

	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}

	if mins > 0 || len(parts) == 0 {
		parts = append(parts, strconv.Itoa(mins)+"m")
	}

	return strings.Join(parts, " ")
}
