package lang

import "sort"

// FieldType classifies a schema entry or record field.
type FieldType int

const (
	// TypeBool is a boolean scalar.
	TypeBool FieldType = iota

	// TypeNumber is a numeric scalar.
	TypeNumber

	// TypeString is a string field.
	TypeString

	// TypeStringList is an array-of-string field.
	TypeStringList

	// TypeFunc is a host-supplied callable.
	TypeFunc

	// TypeRecord is a read-only namespace record with a fixed field
	// list and no inherited members.
	TypeRecord
)

// String returns a human-readable name for the field type.
func (t FieldType) String() string {
	switch t {
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeStringList:
		return "list"
	case TypeFunc:
		return "function"
	case TypeRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Entry describes one resolvable top-level name.
type Entry struct {
	Type FieldType

	// Fields lists the allowed member names of a TypeRecord entry.
	Fields []string

	// MinArgs and MaxArgs bound the arity of a TypeFunc entry.
	MinArgs int
	MaxArgs int
}

// Schema is the closed, versioned table of every name an expression may
// resolve. It is pure data: the validator consults it for accept/reject
// decisions, never for run-time values, so a given source compiles
// identically regardless of the context later passed through it.
type Schema struct {
	version int
	entries map[string]Entry
	names   []string // sorted, for suggestions and docs
}

// SchemaVersion is the version of the table returned by DefaultSchema.
// Adding a name is additive and bumps the version; removing one is
// breaking and must be reflected in any persisted expressions.
const SchemaVersion = 1

// NewSchema builds a schema from an entry table. The table is copied;
// later mutation of the argument does not affect the schema.
func NewSchema(version int, entries map[string]Entry) *Schema {
	copied := make(map[string]Entry, len(entries))
	names := make([]string, 0, len(entries))

	for name, entry := range entries {
		copied[name] = entry
		names = append(names, name)
	}

	sort.Strings(names)

	return &Schema{version: version, entries: copied, names: names}
}

// DefaultSchema returns the version-1 context schema: the complete set
// of names available to entity conditions and macros.
func DefaultSchema() *Schema {
	return NewSchema(SchemaVersion, map[string]Entry{
		// Scalars.
		"mentioned":    {Type: TypeBool},
		"replied":      {Type: TypeBool},
		"idleMinutes":  {Type: TypeNumber},
		"messageCount": {Type: TypeNumber},

		// Message fields.
		"content": {Type: TypeString},
		"author":  {Type: TypeString},

		// Scene participant names.
		"chars": {Type: TypeStringList},

		// Host-supplied callables.
		"random":    {Type: TypeFunc, MinArgs: 0, MaxArgs: 0},
		"fact":      {Type: TypeFunc, MinArgs: 1, MaxArgs: 1},
		"roll":      {Type: TypeFunc, MinArgs: 1, MaxArgs: 1},
		"recall":    {Type: TypeFunc, MinArgs: 1, MaxArgs: 1},
		"duration":  {Type: TypeFunc, MinArgs: 1, MaxArgs: 1},
		"date":      {Type: TypeFunc, MinArgs: 3, MaxArgs: 3},
		"parseDate": {Type: TypeFunc, MinArgs: 1, MaxArgs: 1},

		// Read-only namespace records.
		"self": {
			Type:   TypeRecord,
			Fields: []string{"name", "nickname", "mood", "species"},
		},
		"time": {
			Type:   TypeRecord,
			Fields: []string{"hour", "minute", "weekday", "phase"},
		},
		"channel": {
			Type:   TypeRecord,
			Fields: []string{"name", "topic", "nsfw"},
		},
		"server": {
			Type:   TypeRecord,
			Fields: []string{"name", "memberCount"},
		},
	})
}

// Version reports the schema version.
func (s *Schema) Version() int { return s.version }

// Lookup resolves a top-level name.
func (s *Schema) Lookup(name string) (Entry, bool) {
	entry, ok := s.entries[name]

	return entry, ok
}

// Names returns the sorted list of all resolvable top-level names. The
// returned slice is shared and must not be modified.
func (s *Schema) Names() []string { return s.names }

// HasField reports whether a record entry allows the given field.
func (e Entry) HasField(name string) bool {
	for _, field := range e.Fields {
		if field == name {
			return true
		}
	}

	return false
}
