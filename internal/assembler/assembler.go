// Package assembler transforms hack assembler code into hack binary code, the instructions
// executed by the hack CPU.
//
// Assembling is done in two passes. The first pass parses every line and binds each (LABEL)
// declaration to the address of the instruction that follows it. The second pass resolves
// the symbols of A instructions, allocating variables from address 16, and encodes every
// instruction.
package assembler

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/xiaobogaga/hack/util"
)

// trimLine removes spaces and comments from line.
func trimLine(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Assemble assembles one program against table and returns one 16 character word per
// instruction. Labels and variables are added to table, so passing the same table for several
// files makes them share their symbols.
func Assemble(table *SymbolTable, src []byte) ([]string, error) {
	instructions, err := firstPass(table, src)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(instructions))
	for _, ins := range instructions {
		if ins.Type == AInstruction && ins.Symbol != "" {
			addr, err := table.Resolve(ins.Symbol, ins.Line)
			if err != nil {
				return nil, err
			}
			ins.Value, ins.Symbol = addr, ""
		}
		word, err := ins.Word()
		if err != nil {
			return nil, err
		}
		codes = append(codes, FormatWord(word))
	}
	return codes, nil
}

func firstPass(table *SymbolTable, src []byte) ([]Instruction, error) {
	var instructions []Instruction
	scanner := bufio.NewScanner(bytes.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := trimLine(scanner.Text())
		if len(line) == 0 {
			continue
		}
		if line[0] == '(' {
			label, err := parseLabel(line, lineNo)
			if err != nil {
				return nil, err
			}
			if err := table.AddLabel(label, len(instructions), lineNo); err != nil {
				return nil, err
			}
			continue
		}
		ins, err := ParseInstruction(line, lineNo)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(instructions) > MaxAddress+1 {
		return nil, util.NewError(util.EncodingError, "Assembler", util.ErrOutOfRange, lineNo, "",
			"program has %d instructions, the ROM holds %d", len(instructions), MaxAddress+1)
	}
	return instructions, nil
}

// Source is one assembler file.
type Source struct {
	Name    string
	Content []byte
}

// Assembler assembles the files of one run in order. By default every file shares one symbol
// table; with Reset each file starts from a fresh one.
type Assembler struct {
	Reset bool
	table *SymbolTable
}

func CreateAssembler(reset bool) *Assembler {
	return &Assembler{Reset: reset, table: NewSymbolTable()}
}

// Table is the symbol table used by the last assembled file.
func (asm *Assembler) Table() *SymbolTable {
	return asm.table
}

func (asm *Assembler) AssembleFile(source Source) ([]string, error) {
	if asm.Reset {
		asm.table = NewSymbolTable()
	}
	codes, err := Assemble(asm.table, source.Content)
	if err != nil {
		return nil, util.WithFile(err, source.Name)
	}
	return codes, nil
}

// AssembleFiles assembles every source and returns their codes in the same order. It stops at
// the first failing file.
func (asm *Assembler) AssembleFiles(sources []Source) ([][]string, error) {
	outputs := make([][]string, 0, len(sources))
	for _, source := range sources {
		codes, err := asm.AssembleFile(source)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, codes)
	}
	return outputs, nil
}
