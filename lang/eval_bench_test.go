package lang

import (
	"testing"
)

// BenchmarkEval benchmarks the compile-once, run-many path conditions
// and macros take in production.
func BenchmarkEval(b *testing.B) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "simple_condition",
			source: "mentioned && !replied",
		},
		{
			name:   "string_method_chain",
			source: `content.trim().toLowerCase().includes("help")`,
		},
		{
			name:   "arithmetic_ternary",
			source: `idleMinutes > 30 ? "away" : "active"`,
		},
		{
			name:   "macro_concat",
			source: `self.name + " greets " + chars.join(" and ")`,
		},
		{
			name:   "pattern_match",
			source: `content.match("\\d+")`,
		},
	}

	ctx := Context{
		"mentioned":   true,
		"replied":     false,
		"idleMinutes": 42.0,
		"content":     "  Please HELP with room 12  ",
		"chars":       []string{"Alice", "Bob"},
		"self":        Record{"name": "Ember"},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			compiled, err := New().Compile(tt.source)
			if err != nil {
				b.Fatalf("compile error: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := compiled.Run(ctx); err != nil {
					b.Fatalf("eval error: %v", err)
				}
			}
		})
	}
}

// BenchmarkCompile_CacheEffect compares cold compilation against cache
// hits for the same source.
func BenchmarkCompile_CacheEffect(b *testing.B) {
	source := `content.includes("help") && mentioned && idleMinutes < 60`

	b.Run("cold", func(b *testing.B) {
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if _, err := New().Compile(source); err != nil {
				b.Fatalf("compile error: %v", err)
			}
		}
	})

	b.Run("cached", func(b *testing.B) {
		engine := New()

		if _, err := engine.Compile(source); err != nil {
			b.Fatalf("compile error: %v", err)
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if _, err := engine.Compile(source); err != nil {
				b.Fatalf("compile error: %v", err)
			}
		}
	})
}
