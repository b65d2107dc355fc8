package assembler

import (
	"sort"

	"github.com/xiaobogaga/hack/util"
)

var predefinedVariables = map[string]int{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
	"SCREEN": 16384,
	"KBD":    24576,
}

const (
	baseMemoryAddr = 16
	// Variables may not grow into the screen memory map.
	maxMemoryAddr = 16383
)

// SymbolTable binds labels to instruction addresses and variables to data memory addresses.
// Bindings are never replaced, so one table can be shared by the files of a program.
type SymbolTable struct {
	symbols           map[string]int
	currentMemoryAddr int
}

func NewSymbolTable() *SymbolTable {
	table := &SymbolTable{symbols: make(map[string]int, len(predefinedVariables)), currentMemoryAddr: baseMemoryAddr}
	for name, addr := range predefinedVariables {
		table.symbols[name] = addr
	}
	return table
}

func (table *SymbolTable) Lookup(name string) (int, bool) {
	addr, ok := table.symbols[name]
	return addr, ok
}

// AddLabel binds a label declaration to the address of the next instruction.
func (table *SymbolTable) AddLabel(label string, addr, lineNo int) error {
	if _, exist := table.symbols[label]; exist {
		return util.NewError(util.SemanticError, "Assembler", util.ErrDuplicateLabel, lineNo, label,
			"symbol %s is already bound", label)
	}
	table.symbols[label] = addr
	return nil
}

// Resolve returns the address of name, allocating the next free variable when it is unknown.
func (table *SymbolTable) Resolve(name string, lineNo int) (int, error) {
	if addr, ok := table.symbols[name]; ok {
		return addr, nil
	}
	if table.currentMemoryAddr > maxMemoryAddr {
		return 0, util.NewError(util.EncodingError, "Assembler", util.ErrOutOfRange, lineNo, name,
			"no data memory left for variable %s", name)
	}
	addr := table.currentMemoryAddr
	table.symbols[name] = addr
	table.currentMemoryAddr++
	return addr, nil
}

type SymbolEntry struct {
	Name    string
	Address int
}

// Entries lists every user symbol, labels and variables, ordered by address then name.
func (table *SymbolTable) Entries() []SymbolEntry {
	var entries []SymbolEntry
	for name, addr := range table.symbols {
		if _, predefined := predefinedVariables[name]; predefined {
			continue
		}
		entries = append(entries, SymbolEntry{Name: name, Address: addr})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Address != entries[j].Address {
			return entries[i].Address < entries[j].Address
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
