package asm

import "fmt"

// SymbolTable maps label names to the word address they were defined at.
// Carried forward to the debugger by loader.LoadAssembled so breakpoints
// can be set by label as well as by raw address.
type SymbolTable struct {
	addresses map[string]uint32
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{addresses: make(map[string]uint32)}
}

// Define records a label's address. Redefining an existing label is an
// error: labels are assigned once, at their definition site.
func (t *SymbolTable) Define(name string, addr uint32) error {
	if _, ok := t.addresses[name]; ok {
		return fmt.Errorf("asm: duplicate label %q", name)
	}
	t.addresses[name] = addr
	return nil
}

// Get looks up a label's address.
func (t *SymbolTable) Get(name string) (uint32, bool) {
	v, ok := t.addresses[name]
	return v, ok
}

// Names returns every defined label, for debugger address-resolution UIs.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.addresses))
	for n := range t.addresses {
		names = append(names, n)
	}
	return names
}

// Addresses returns a copy of the label->address map, for callers (the
// loader, the debugger) that want to own a table of their own.
func (t *SymbolTable) Addresses() map[string]uint32 {
	out := make(map[string]uint32, len(t.addresses))
	for n, a := range t.addresses {
		out[n] = a
	}
	return out
}
