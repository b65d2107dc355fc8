package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaobogaga/hack/util"
)

// The most ambiguous instruction is the A instruction, A instruction is normally declared as
// @something, but it turns out it has many types:
// * @10 (decimal value), put this value to the A register.
// * @label, put the instruction address of label to A register, note that the label can be used before declared.
// * @R[0-15], SP, LCL, ARG, THIS, THAT, SCREEN, KBD, the predefined symbols.
// * @Variable, declare a variable by setting its address (if not declared), and then put the data memory
//   address of this variable to A register.
//
// A C instruction is dest=comp;jump where both dest and jump are optional.

type InstructionType int

const (
	AInstruction InstructionType = iota
	CInstruction
)

// Comp is the computation of a C instruction.
type Comp int

const (
	CompZero     Comp = iota // 0
	CompOne                  // 1
	CompMinusOne             // -1
	CompD                    // D
	CompA                    // A
	CompNotD                 // !D
	CompNotA                 // !A
	CompNegD                 // -D
	CompNegA                 // -A
	CompDPlusOne             // D+1
	CompAPlusOne             // A+1
	CompDMinusOne            // D-1
	CompAMinusOne            // A-1
	CompDPlusA               // D+A
	CompDMinusA              // D-A
	CompAMinusD              // A-D
	CompDAndA                // D&A
	CompDOrA                 // D|A
	CompM                    // M
	CompNotM                 // !M
	CompNegM                 // -M
	CompMPlusOne             // M+1
	CompMMinusOne            // M-1
	CompDPlusM               // D+M
	CompDMinusM              // D-M
	CompMMinusD              // M-D
	CompDAndM                // D&M
	CompDOrM                 // D|M
)

// compBits holds the a bit followed by the six c bits.
var compBits = [...]uint16{
	CompZero:      0b0101010,
	CompOne:       0b0111111,
	CompMinusOne:  0b0111010,
	CompD:         0b0001100,
	CompA:         0b0110000,
	CompNotD:      0b0001101,
	CompNotA:      0b0110001,
	CompNegD:      0b0001111,
	CompNegA:      0b0110011,
	CompDPlusOne:  0b0011111,
	CompAPlusOne:  0b0110111,
	CompDMinusOne: 0b0001110,
	CompAMinusOne: 0b0110010,
	CompDPlusA:    0b0000010,
	CompDMinusA:   0b0010011,
	CompAMinusD:   0b0000111,
	CompDAndA:     0b0000000,
	CompDOrA:      0b0010101,
	CompM:         0b1110000,
	CompNotM:      0b1110001,
	CompNegM:      0b1110011,
	CompMPlusOne:  0b1110111,
	CompMMinusOne: 0b1110010,
	CompDPlusM:    0b1000010,
	CompDMinusM:   0b1010011,
	CompMMinusD:   0b1000111,
	CompDAndM:     0b1000000,
	CompDOrM:      0b1010101,
}

// compMap also accepts the commuted spelling of commutative computations.
var compMap = map[string]Comp{
	"0":   CompZero,
	"1":   CompOne,
	"-1":  CompMinusOne,
	"D":   CompD,
	"A":   CompA,
	"!D":  CompNotD,
	"!A":  CompNotA,
	"-D":  CompNegD,
	"-A":  CompNegA,
	"D+1": CompDPlusOne,
	"1+D": CompDPlusOne,
	"A+1": CompAPlusOne,
	"1+A": CompAPlusOne,
	"D-1": CompDMinusOne,
	"A-1": CompAMinusOne,
	"D+A": CompDPlusA,
	"A+D": CompDPlusA,
	"D-A": CompDMinusA,
	"A-D": CompAMinusD,
	"D&A": CompDAndA,
	"A&D": CompDAndA,
	"D|A": CompDOrA,
	"A|D": CompDOrA,
	"M":   CompM,
	"!M":  CompNotM,
	"-M":  CompNegM,
	"M+1": CompMPlusOne,
	"1+M": CompMPlusOne,
	"M-1": CompMMinusOne,
	"D+M": CompDPlusM,
	"M+D": CompDPlusM,
	"D-M": CompDMinusM,
	"M-D": CompMMinusD,
	"D&M": CompDAndM,
	"M&D": CompDAndM,
	"D|M": CompDOrM,
	"M|D": CompDOrM,
}

// ReadsMemory reports whether the computation goes through M, which sets the a bit.
func (c Comp) ReadsMemory() bool {
	return compBits[c]&0b1000000 != 0
}

// Dest is a set of the registers a C instruction writes.
type Dest uint16

const (
	DestNull Dest = 0
	DestM    Dest = 0b001
	DestD    Dest = 0b010
	DestA    Dest = 0b100
)

var destMap = map[string]Dest{
	"M":   DestM,
	"D":   DestD,
	"MD":  DestM | DestD,
	"DM":  DestM | DestD,
	"A":   DestA,
	"AM":  DestA | DestM,
	"MA":  DestA | DestM,
	"AD":  DestA | DestD,
	"DA":  DestA | DestD,
	"AMD": DestA | DestM | DestD,
	"ADM": DestA | DestM | DestD,
	"DAM": DestA | DestM | DestD,
	"DMA": DestA | DestM | DestD,
	"MAD": DestA | DestM | DestD,
	"MDA": DestA | DestM | DestD,
}

type Jump uint16

const (
	JumpNull Jump = iota
	JGT
	JEQ
	JGE
	JLT
	JNE
	JLE
	JMP
)

var jumpMap = map[string]Jump{
	"JGT": JGT,
	"JEQ": JEQ,
	"JGE": JGE,
	"JLT": JLT,
	"JNE": JNE,
	"JLE": JLE,
	"JMP": JMP,
}

const MaxAddress = 1<<15 - 1

type Instruction struct {
	Type InstructionType
	// Value is the operand of an A instruction once known, either literal or resolved.
	Value  int
	Symbol string
	Dest   Dest
	Comp   Comp
	Jump   Jump
	Line   int
	Source string
}

// ParseInstruction parses one A or C instruction. The line must already be stripped of
// comments and spaces.
func ParseInstruction(line string, lineNo int) (Instruction, error) {
	if strings.HasPrefix(line, "@") {
		return parseAInstruction(line, lineNo)
	}
	return parseCInstruction(line, lineNo)
}

func parseAInstruction(line string, lineNo int) (Instruction, error) {
	ins := Instruction{Type: AInstruction, Line: lineNo, Source: line}
	operand := line[1:]
	if len(operand) > 0 && util.IsNumber(operand[0]) {
		if !util.IsNumeric(operand) {
			return Instruction{}, makeSyntaxErr(lineNo, line, "wrong decimal value format")
		}
		value, err := strconv.Atoi(operand)
		if err != nil || value > MaxAddress {
			return Instruction{}, util.NewError(util.EncodingError, "Assembler", util.ErrOutOfRange, lineNo, line,
				"constant must be in 0..%d", MaxAddress)
		}
		ins.Value = value
		return ins, nil
	}
	if !util.IsHackSymbol(operand) {
		return Instruction{}, makeSyntaxErr(lineNo, line, "wrong variable or label format")
	}
	ins.Symbol = operand
	return ins, nil
}

func parseCInstruction(line string, lineNo int) (Instruction, error) {
	ins := Instruction{Type: CInstruction, Line: lineNo, Source: line}
	rest := line
	if i := strings.IndexByte(rest, '='); i >= 0 {
		dest, ok := destMap[rest[:i]]
		if !ok {
			return Instruction{}, makeEncodingErr(lineNo, line, "wrong c command of dest code %q", rest[:i])
		}
		ins.Dest = dest
		rest = rest[i+1:]
	}
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		jump, ok := jumpMap[rest[i+1:]]
		if !ok {
			return Instruction{}, makeEncodingErr(lineNo, line, "wrong c command of jump code %q", rest[i+1:])
		}
		ins.Jump = jump
		rest = rest[:i]
	}
	comp, ok := compMap[rest]
	if !ok {
		return Instruction{}, makeEncodingErr(lineNo, line, "wrong c command of comp code %q", rest)
	}
	ins.Comp = comp
	return ins, nil
}

// parseLabel parses a (LABEL) declaration.
func parseLabel(line string, lineNo int) (string, error) {
	if !strings.HasSuffix(line, ")") {
		return "", makeSyntaxErr(lineNo, line, "wrong label format")
	}
	label := line[1 : len(line)-1]
	if !util.IsHackSymbol(label) {
		return "", makeSyntaxErr(lineNo, line, "wrong label format")
	}
	return label, nil
}

// Word returns the 16 bit machine code. A instructions must be resolved first.
func (ins Instruction) Word() (uint16, error) {
	switch ins.Type {
	case AInstruction:
		if ins.Symbol != "" {
			return 0, makeSyntaxErr(ins.Line, ins.Source, "unresolved symbol %s", ins.Symbol)
		}
		return uint16(ins.Value) & MaxAddress, nil
	case CInstruction:
		return 0b111<<13 | compBits[ins.Comp]<<6 | uint16(ins.Dest)<<3 | uint16(ins.Jump), nil
	}
	return 0, makeSyntaxErr(ins.Line, ins.Source, "unknown instruction type %d", ins.Type)
}

// FormatWord renders a word as 16 characters of 0 and 1.
func FormatWord(word uint16) string {
	return fmt.Sprintf("%016b", word)
}

func makeSyntaxErr(lineNo int, near, format string, args ...interface{}) error {
	return util.NewError(util.SyntaxError, "Assembler", util.ErrInvalidInstruction, lineNo, near, format, args...)
}

func makeEncodingErr(lineNo int, near, format string, args ...interface{}) error {
	return util.NewError(util.EncodingError, "Assembler", util.ErrInvalidInstruction, lineNo, near, format, args...)
}
