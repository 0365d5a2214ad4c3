// Package symtab implements the two independent Jack symbol scopes: one
// class-scope table (Static/Field) and one subroutine-scope table
// (Argument/Local), per spec.md section 4.2.
package symtab

// Kind is the VarKind enumeration of spec.md section 3.
type Kind int

const (
	None Kind = iota
	Static
	Field
	Argument
	Local
)

// Segment returns the VM memory segment a symbol of this kind lives in.
func (k Kind) Segment() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "this"
	case Argument:
		return "argument"
	case Local:
		return "local"
	default:
		return ""
	}
}

// Entry is a single symbol table row: spec.md's SymbolEntry.
type Entry struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

// Table is one scope: a name -> Entry mapping plus a running counter per
// kind. Indices assigned by Define are dense and monotonic within the
// table's lifetime, except across Reset.
type Table struct {
	entries map[string]Entry
	counts  [Local + 1]int
}

// New returns an empty Table.
func New() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset clears all entries and zeros every counter.
func (t *Table) Reset() {
	t.entries = make(map[string]Entry)
	t.counts = [Local + 1]int{}
}

// Define records a new entry, assigning it the next index for its kind.
// Defining the same name twice in one table is a program error the caller
// is responsible for not doing (spec.md section 4.2); Define does not
// detect it.
func (t *Table) Define(name, typ string, kind Kind) Entry {
	e := Entry{Name: name, Type: typ, Kind: kind, Index: t.counts[kind]}
	t.counts[kind]++
	t.entries[name] = e
	return e
}

// VarCount returns the number of entries of the given kind.
func (t *Table) VarCount(kind Kind) int {
	return t.counts[kind]
}

// KindOf returns the kind of name, or None if undefined in this table.
func (t *Table) KindOf(name string) Kind {
	if e, ok := t.entries[name]; ok {
		return e.Kind
	}
	return None
}

// TypeOf returns the declared type of name; only meaningful if KindOf(name)
// != None.
func (t *Table) TypeOf(name string) string {
	return t.entries[name].Type
}

// IndexOf returns the index of name; only meaningful if KindOf(name) !=
// None.
func (t *Table) IndexOf(name string) int {
	return t.entries[name].Index
}

// Lookup returns the full entry and whether name is defined here.
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Scopes bundles the two independent tables a Jack compilation keeps live
// at once, and implements the "subroutine first, then class" lookup rule.
type Scopes struct {
	Class      *Table
	Subroutine *Table
}

// NewScopes returns a pair of empty tables.
func NewScopes() *Scopes {
	return &Scopes{Class: New(), Subroutine: New()}
}

// Resolve looks up name in the subroutine table, falling back to the class
// table. ok is false if name is defined in neither -- the caller then
// treats it as a class or function name, per spec.md section 4.2's lookup
// rule.
func (s *Scopes) Resolve(name string) (Entry, bool) {
	if e, ok := s.Subroutine.Lookup(name); ok {
		return e, true
	}
	return s.Class.Lookup(name)
}
