package repl

import (
	"github.com/sahilm/fuzzy"
)

// completer fuzzy-matches the identifier fragment under the cursor
// against the schema's top-level names and cycles through candidates on
// repeated tab presses.
type completer struct {
	names []string

	// cycling state, valid while the user keeps pressing tab
	matches   fuzzy.Matches
	idx       int
	fragStart int
	active    bool
}

func newCompleter(names []string) *completer {
	return &completer{names: names}
}

// reset abandons an in-progress completion cycle.
func (c *completer) reset() {
	c.active = false
	c.matches = nil
	c.idx = 0
}

// next rewrites line with the next candidate for the fragment ending at
// cursor. It reports false when there is nothing to complete.
func (c *completer) next(line string, cursor int) (string, int, bool) {
	if !c.active {
		start := fragmentStart(line, cursor)
		frag := line[start:cursor]

		if frag == "" {
			c.matches = allNames(c.names)
		} else {
			c.matches = fuzzy.Find(frag, c.names)
		}

		if len(c.matches) == 0 {
			return "", 0, false
		}

		c.fragStart = start
		c.idx = 0
		c.active = true
	} else {
		c.idx = (c.idx + 1) % len(c.matches)
	}

	name := c.matches[c.idx].Str
	replaced := line[:c.fragStart] + name + line[cursorFragEnd(line, cursor):]

	return replaced, c.fragStart + len(name), true
}

// cursorFragEnd extends the fragment to the end of the identifier the
// cursor sits inside, so completing mid-word replaces the whole word.
func cursorFragEnd(line string, cursor int) int {
	end := cursor
	for end < len(line) && isIdentByte(line[end]) {
		end++
	}

	return end
}

// fragmentStart finds the start of the identifier fragment ending at
// cursor.
func fragmentStart(line string, cursor int) int {
	start := cursor
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}

	return start
}

func isIdentByte(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

// allNames wraps every name as a match so an empty fragment cycles the
// full schema.
func allNames(names []string) fuzzy.Matches {
	matches := make(fuzzy.Matches, len(names))
	for i, name := range names {
		matches[i] = fuzzy.Match{Str: name, Index: i}
	}

	return matches
}
