// Package symtab maps symbolic constant names to their numeric values.
//
// Tables are built once at package init and never modified afterwards.
package symtab

import (
	"slices"
	"strconv"
	"strings"
)

type Integer interface {
	~uint8 | ~uint16 | ~uint32 | ~int
}

type Entry[T Integer] struct {
	Name  string
	Value T
}

type Table[T Integer] struct {
	entries []Entry[T]
	byValue map[T]string
	byName  map[string]T
}

// New builds a table. When two names share a value, the first one wins for
// reverse lookups.
func New[T Integer](entries ...Entry[T]) *Table[T] {
	t := &Table[T]{
		entries: slices.Clone(entries),
		byValue: make(map[T]string, len(entries)),
		byName:  make(map[string]T, len(entries)),
	}
	for _, e := range entries {
		if _, ok := t.byValue[e.Value]; !ok {
			t.byValue[e.Value] = e.Name
		}
		t.byName[strings.ToLower(e.Name)] = e.Value
	}
	return t
}

// Name returns the symbolic name of v.
func (t *Table[T]) Name(v T) (string, bool) {
	name, ok := t.byValue[v]
	return name, ok
}

// Value looks up name, ignoring case.
func (t *Table[T]) Value(name string) (T, bool) {
	v, ok := t.byName[strings.ToLower(name)]
	return v, ok
}

// String returns the name of v or its decimal value.
func (t *Table[T]) String(v T) string {
	if name, ok := t.byValue[v]; ok {
		return name
	}
	return strconv.FormatUint(uint64(v), 10)
}

// Parse accepts either a symbolic name or a number.
func (t *Table[T]) Parse(s string) (T, bool) {
	if v, ok := t.Value(s); ok {
		return v, true
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || uint64(T(n)) != n {
		return 0, false
	}
	return T(n), true
}

// Flags renders v as the names of the set bits, in table order.
// Bits without a name are rendered in hex as one trailing element.
func (t *Table[T]) Flags(v T) []string {
	var (
		names []string
		rest  = v
	)
	for _, e := range t.entries {
		if e.Value != 0 && v&e.Value == e.Value && rest&e.Value != 0 {
			names = append(names, e.Name)
			rest &^= e.Value
		}
	}
	if rest != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return names
}

// ParseFlags ORs together the values of names.
func (t *Table[T]) ParseFlags(names []string) (T, bool) {
	var v T
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := t.Parse(name)
		if !ok {
			return 0, false
		}
		v |= f
	}
	return v, true
}

// Entries returns a copy of the table contents in declaration order.
func (t *Table[T]) Entries() []Entry[T] {
	return slices.Clone(t.entries)
}
