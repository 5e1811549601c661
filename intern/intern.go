// Package intern implements the per-session string interning table.
//
// A Table maps byte strings to small sequential IDs and back. IDs are never
// reused within one Table and the same bytes always resolve to the same ID.
package intern

// ID identifies an interned string within one Table.
type ID uint32

type span struct {
	off uint32
	len uint32
}

// Table is an append-only bidirectional string table.
// It is not safe for concurrent use.
type Table struct {
	ids   map[string]ID
	spans []span
	buf   []byte
}

// New returns an empty table.
func New() *Table {
	return &Table{ids: make(map[string]ID)}
}

// Intern registers b if needed and returns its ID. The table copies b.
func (t *Table) Intern(b []byte) ID {
	if id, ok := t.ids[string(b)]; ok {
		return id
	}
	id := ID(len(t.spans))
	t.spans = append(t.spans, span{off: uint32(len(t.buf)), len: uint32(len(b))})
	t.buf = append(t.buf, b...)
	t.ids[string(b)] = id
	return id
}

// InternString is Intern for a string.
func (t *Table) InternString(s string) ID {
	if id, ok := t.ids[s]; ok {
		return id
	}
	return t.Intern([]byte(s))
}

// Lookup returns the bytes registered for id. The returned slice aliases the
// table and must not be modified.
func (t *Table) Lookup(id ID) ([]byte, bool) {
	if int(id) >= len(t.spans) {
		return nil, false
	}
	s := t.spans[id]
	end := s.off + s.len
	return t.buf[s.off:end:end], true
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.spans)
}
