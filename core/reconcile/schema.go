package reconcile

import (
	"strconv"
	"strings"
)

// suffixSep separates a field name from its disambiguation counter.
const suffixSep = "__"

// Schema is the ordered, duplicate-free list of output field names.
// It only grows; names are never removed or reordered.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema from names, dropping duplicates after their first occurrence.
func NewSchema(names ...string) *Schema {
	s := &Schema{index: make(map[string]int, len(names))}
	s.Append(names...)
	return s
}

// Append adds names not yet in the schema and reports whether anything was added.
func (s *Schema) Append(names ...string) bool {
	added := false
	for _, name := range names {
		if _, ok := s.index[name]; ok {
			continue
		}
		s.index[name] = len(s.names)
		s.names = append(s.names, name)
		added = true
	}
	return added
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the column position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns a copy of the field names in order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// BuildInitialSchema seeds the output schema from both headers.
// Child fields colliding with a master field are suffixed (__1, then __2, ... while
// still taken), except idColumn, which is the join key and may coincide.
// It returns the seed schema and the child's renamed field list in child order.
func BuildInitialSchema(masterFields, childFields []string, idColumn string) (*Schema, []string) {
	taken := make(map[string]struct{}, len(masterFields)+len(childFields))
	for _, name := range masterFields {
		taken[name] = struct{}{}
	}
	original := make(map[string]struct{}, len(childFields))
	for _, name := range childFields {
		original[name] = struct{}{}
	}

	renamed := make([]string, len(childFields))
	for i, name := range childFields {
		if _, collides := taken[name]; collides && name != idColumn {
			name = incrementKey(name)
			for {
				_, used := taken[name]
				_, sibling := original[name]
				if !used && !sibling {
					break
				}
				name = incrementKey(name)
			}
		}
		taken[name] = struct{}{}
		renamed[i] = name
	}

	schema := NewSchema(masterFields...)
	schema.Append(renamed...)
	return schema, renamed
}

// incrementKey bumps the numeric suffix of a field name: foo -> foo__1 -> foo__2.
// A name whose text after the last "__" is not a number gets a fresh __1 suffix.
func incrementKey(name string) string {
	if i := strings.LastIndex(name, suffixSep); i >= 0 {
		if n, err := strconv.Atoi(name[i+len(suffixSep):]); err == nil && n >= 0 {
			return name[:i] + suffixSep + strconv.Itoa(n+1)
		}
	}
	return name + suffixSep + "1"
}
