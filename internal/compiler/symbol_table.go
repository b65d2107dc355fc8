package compiler

import (
	"fmt"

	"github.com/xiaobogaga/hack/internal/ir"
)

// Kind is the storage class of a declared name.
type Kind int

const (
	KindNone Kind = iota
	KindStatic
	KindField
	KindArg
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindField:
		return "field"
	case KindArg:
		return "argument"
	case KindVar:
		return "var"
	case KindNone:
		return "none"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Segment returns the memory segment a name of this kind lives in.
func (k Kind) Segment() (ir.Segment, bool) {
	switch k {
	case KindStatic:
		return ir.StaticSegment, true
	case KindField:
		return ir.ThisSegment, true
	case KindArg:
		return ir.ArgumentSegment, true
	case KindVar:
		return ir.LocalSegment, true
	}
	return 0, false
}

type Symbol struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

// SymbolTable maps names of one scope to their type, kind and index. A class owns one table
// for its statics and fields; every subroutine builds a fresh one for arguments and locals.
type SymbolTable struct {
	symbols map[string]*Symbol
	counts  map[Kind]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]*Symbol{}, counts: map[Kind]int{}}
}

// Define appends name with the next free index of kind. Defining a name twice replaces the
// earlier entry.
func (table *SymbolTable) Define(name, tp string, kind Kind) *Symbol {
	symbol := &Symbol{Name: name, Type: tp, Kind: kind, Index: table.counts[kind]}
	table.counts[kind]++
	table.symbols[name] = symbol
	return symbol
}

// VarCount returns how many names of kind were defined, which is also the next free index.
func (table *SymbolTable) VarCount(kind Kind) int {
	return table.counts[kind]
}

func (table *SymbolTable) Lookup(name string) (*Symbol, bool) {
	symbol, ok := table.symbols[name]
	return symbol, ok
}

func (table *SymbolTable) KindOf(name string) Kind {
	if symbol, ok := table.symbols[name]; ok {
		return symbol.Kind
	}
	return KindNone
}

func (table *SymbolTable) TypeOf(name string) (string, bool) {
	if symbol, ok := table.symbols[name]; ok {
		return symbol.Type, true
	}
	return "", false
}

func (table *SymbolTable) IndexOf(name string) (int, bool) {
	if symbol, ok := table.symbols[name]; ok {
		return symbol.Index, true
	}
	return 0, false
}

func (table *SymbolTable) Reset() {
	table.symbols = map[string]*Symbol{}
	table.counts = map[Kind]int{}
}

// scope resolves a name against the subroutine table first and the class table second.
type scope struct {
	class   *SymbolTable
	routine *SymbolTable
}

func (s scope) lookup(name string) (*Symbol, bool) {
	if s.routine != nil {
		if symbol, ok := s.routine.Lookup(name); ok {
			return symbol, true
		}
	}
	return s.class.Lookup(name)
}
