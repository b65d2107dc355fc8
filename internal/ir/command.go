// Package ir models one line of the stack machine language shared by the compiler, which
// writes it, and the vm translator, which reads it.
//
// There are four kinds of commands:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index, where segment can be
//   argument, local, static, constant, this, that, pointer, temp.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function f nLocals, call f nArgs, return.
package ir

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xiaobogaga/hack/util"
)

type Operation int

const (
	Add Operation = iota
	Sub
	Neg
	Eq
	Gt
	Lt
	And
	Or
	Not
	Push
	Pop
	Label
	Goto
	IfGoto
	Function
	Call
	Return
)

var operationNames = [...]string{
	Add:      "add",
	Sub:      "sub",
	Neg:      "neg",
	Eq:       "eq",
	Gt:       "gt",
	Lt:       "lt",
	And:      "and",
	Or:       "or",
	Not:      "not",
	Push:     "push",
	Pop:      "pop",
	Label:    "label",
	Goto:     "goto",
	IfGoto:   "if-goto",
	Function: "function",
	Call:     "call",
	Return:   "return",
}

var operationMap = func() map[string]Operation {
	m := make(map[string]Operation, len(operationNames))
	for op, name := range operationNames {
		m[name] = Operation(op)
	}
	return m
}()

func (op Operation) String() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// IsArithmetic reports whether op is one of the nine stack arithmetic or logical commands.
func (op Operation) IsArithmetic() bool {
	return op <= Not
}

// operands returns how many operands follow the operation on an IR line.
func (op Operation) operands() int {
	switch op {
	case Push, Pop, Function, Call:
		return 2
	case Label, Goto, IfGoto:
		return 1
	}
	return 0
}

type Segment int

const (
	ArgumentSegment Segment = iota
	LocalSegment
	StaticSegment
	ConstantSegment
	ThisSegment
	ThatSegment
	PointerSegment
	TempSegment
)

var segmentNames = [...]string{
	ArgumentSegment: "argument",
	LocalSegment:    "local",
	StaticSegment:   "static",
	ConstantSegment: "constant",
	ThisSegment:     "this",
	ThatSegment:     "that",
	PointerSegment:  "pointer",
	TempSegment:     "temp",
}

var segmentMap = func() map[string]Segment {
	m := make(map[string]Segment, len(segmentNames))
	for seg, name := range segmentNames {
		m[name] = Segment(seg)
	}
	return m
}()

func (seg Segment) String() string {
	if int(seg) < len(segmentNames) {
		return segmentNames[seg]
	}
	return fmt.Sprintf("Segment(%d)", int(seg))
}

const (
	TempSize       = 8
	MaxConstant    = 32767
	pointerSegSize = 2
)

// Command is one parsed IR line. Segment and Index are set for push and pop; Name is set for
// the flow and function commands; N is the local count of function and the argument count
// of call.
type Command struct {
	Op      Operation
	Segment Segment
	Index   int
	Name    string
	N       int
	Line    int
}

func (c Command) String() string {
	switch c.Op {
	case Push, Pop:
		return fmt.Sprintf("%s %s %d", c.Op, c.Segment, c.Index)
	case Label, Goto, IfGoto:
		return fmt.Sprintf("%s %s", c.Op, c.Name)
	case Function, Call:
		return fmt.Sprintf("%s %s %d", c.Op, c.Name, c.N)
	}
	return c.Op.String()
}

func NewPush(seg Segment, index int) Command {
	return Command{Op: Push, Segment: seg, Index: index}
}

func NewPop(seg Segment, index int) Command {
	return Command{Op: Pop, Segment: seg, Index: index}
}

func NewCall(name string, nArgs int) Command {
	return Command{Op: Call, Name: name, N: nArgs}
}

func NewFunction(name string, nLocals int) Command {
	return Command{Op: Function, Name: name, N: nLocals}
}

// StripComment drops a trailing // comment and surrounding spaces.
func StripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// reservedLabel matches the suffixes the translator appends to function and file names for
// return addresses and comparisons.
var reservedLabel = regexp.MustCompile(`^(ret|(EQ|GT|LT)\.(TRUE|END))\.[0-9]+$`)

// Parse turns one IR line into a Command. ok is false for blank and comment-only lines.
func Parse(line string, lineNo int) (Command, bool, error) {
	fields := strings.Fields(StripComment(line))
	if len(fields) == 0 {
		return Command{}, false, nil
	}
	op, exist := operationMap[fields[0]]
	if !exist {
		return Command{}, false, makeError(util.ErrInvalidCommand, lineNo, fields[0], "unknown command")
	}
	if len(fields)-1 != op.operands() {
		return Command{}, false, makeError(util.ErrInvalidCommand, lineNo, line,
			"%s takes %d operands, got %d", op, op.operands(), len(fields)-1)
	}
	cmd := Command{Op: op, Line: lineNo}
	switch op {
	case Push, Pop:
		seg, exist := segmentMap[fields[1]]
		if !exist {
			return Command{}, false, makeSemanticError(lineNo, fields[1], "unknown segment")
		}
		index, err := parseIndex(fields[2], lineNo)
		if err != nil {
			return Command{}, false, err
		}
		if err := checkSegmentIndex(op, seg, index, lineNo); err != nil {
			return Command{}, false, err
		}
		cmd.Segment, cmd.Index = seg, index
	case Label, Goto, IfGoto:
		if !util.IsHackSymbol(fields[1]) {
			return Command{}, false, makeError(util.ErrInvalidCommand, lineNo, fields[1], "illegal label name")
		}
		if reservedLabel.MatchString(fields[1]) {
			return Command{}, false, makeError(util.ErrInvalidCommand, lineNo, fields[1],
				"label name is reserved for generated labels")
		}
		cmd.Name = fields[1]
	case Function, Call:
		if !util.IsHackSymbol(fields[1]) {
			return Command{}, false, makeError(util.ErrInvalidCommand, lineNo, fields[1], "illegal function name")
		}
		n, err := parseIndex(fields[2], lineNo)
		if err != nil {
			return Command{}, false, err
		}
		cmd.Name, cmd.N = fields[1], n
	}
	return cmd, true, nil
}

func parseIndex(token string, lineNo int) (int, error) {
	if !util.IsNumeric(token) {
		return 0, makeError(util.ErrInvalidCommand, lineNo, token, "expected a non-negative integer")
	}
	value, err := strconv.Atoi(token)
	if err != nil || value > MaxConstant {
		return 0, util.NewError(util.EncodingError, "VMTranslator", util.ErrOutOfRange, lineNo, token,
			"integer must be in 0..%d", MaxConstant)
	}
	return value, nil
}

func checkSegmentIndex(op Operation, seg Segment, index, lineNo int) error {
	switch seg {
	case ConstantSegment:
		if op == Pop {
			return makeSemanticError(lineNo, seg.String(), "cannot pop to constant")
		}
	case PointerSegment:
		if index >= pointerSegSize {
			return makeSemanticError(lineNo, strconv.Itoa(index), "pointer index must be 0 or 1")
		}
	case TempSegment:
		if index >= TempSize {
			return makeSemanticError(lineNo, strconv.Itoa(index), "temp index must be in 0..%d", TempSize-1)
		}
	}
	return nil
}

func makeError(sentinel error, lineNo int, near, format string, args ...interface{}) error {
	return util.NewError(util.SyntaxError, "VMTranslator", sentinel, lineNo, near, format, args...)
}

func makeSemanticError(lineNo int, near, format string, args ...interface{}) error {
	return util.NewError(util.SemanticError, "VMTranslator", util.ErrInvalidSegment, lineNo, near, format, args...)
}
