// Package cmd implements the quill subcommands: check (compile-only
// vetting of expression files), eval (one-shot evaluation against a
// YAML context fixture), and repl (interactive prompt).
package cmd
