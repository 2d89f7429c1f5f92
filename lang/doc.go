// Package lang implements the quill expression language: a small,
// pure, side-effect-free formula language that lets untrusted content
// authors attach conditional logic and string templates to roleplay
// entities.
//
// Expressions evaluate against live, author-influenced message text, so
// the evaluator is a security boundary rather than a convenience
// calculator. Two independently adversarial parties meet here: the
// expression author and the message author. The defenses are layered:
//
//   - the lexer admits only ASCII identifiers, decimal numbers, and a
//     fixed string escape table
//   - the grammar has no assignment, computed access, statement
//     separator, or closure syntax
//   - the validator resolves every name against a closed context
//     schema, blocks a fixed member deny-list at every chain link, and
//     requires match patterns to be vetted string literals
//   - the evaluator is a tree-walking interpreter over opaque tagged
//     values with result-size guards on every growth-capable operation
//
// The pipeline is exposed through [Engine]:
//
//	engine := lang.New()
//
//	fires := engine.EvalCondition("ember", `content.includes("help") && mentioned`, ctx)
//	text := engine.EvalMacro("ember", `self.nickname`, ctx)
//
// Compile results are cached by exact source text per Engine instance.
// Evaluation is synchronous, deterministic for equal context values,
// and bounded by static rejection of unbounded-cost constructs rather
// than wall-clock timeouts.
package lang
