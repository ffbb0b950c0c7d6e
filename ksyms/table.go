// Package ksyms builds and queries symbol tables for loaded kernel
// modules. Kernel faults originating in a dynamically loaded module
// cannot be deciphered with the static symbol map produced at link
// time, so the table is rebuilt from the live module set and fault
// addresses are resolved to the nearest preceding exported symbol.
package ksyms

import "fmt"

// pageSize converts the module size reported in pages to bytes.
const pageSize = 4096

// Symbol is one table entry. Name is qualified as "module:symbol" and
// owned by the table.
type Symbol struct {
	Value uint64
	Name  string
}

// Module holds the sorted symbol table and load metadata for one
// module. Syms is ascending by Value once the table is built; a module
// with no exported symbols is valid and is resolved by address range
// only.
type Module struct {
	Name  string
	Base  uint64
	Pages uint64
	Syms  []Symbol
}

// end is the first address past the module mapping.
func (m *Module) end() uint64 {
	return m.Base + m.Pages*pageSize
}

// Table is an immutable snapshot of the module symbol tables, in the
// order the modules were reported. It is safe for concurrent readers.
type Table struct {
	modules []Module
	symbols int
}

// Stats summarizes a successful build.
type Stats struct {
	Modules int
	Symbols int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d symbols from %d modules", s.Symbols, s.Modules)
}

// Modules exposes the snapshot contents, for dump tooling.
func (t *Table) Modules() []Module {
	return t.modules
}

// Resolution locates an address relative to a known symbol or module.
type Resolution struct {
	// Name is the qualified symbol name, or the bare module name when
	// the module exports no symbols.
	Name string
	// Offset is the distance from the symbol (or module base) to the
	// resolved address.
	Offset uint64
	// Size is the extent of the region the address fell into.
	Size uint64
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s+%#x/%#x", r.Name, r.Offset, r.Size)
}
