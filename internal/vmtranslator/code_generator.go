package vmtranslator

import (
	"fmt"
	"strings"

	"github.com/xiaobogaga/hack/internal/ir"
	"github.com/xiaobogaga/hack/util"
)

// A code generator to transform vm commands to hack assembler code.

// The stack lives in RAM from address 256 upwards and SP holds the address of the next free
// cell. LCL, ARG, THIS and THAT hold the base addresses of the local, argument, this and that
// segments of the running function. temp maps to R5-R12 and R13-R14 are scratch registers used
// by the generated code itself. Every static variable becomes an assembler variable named
// <namespace>.<index>, so the assembler allocates it from address 16.

const (
	stackBase   = 256
	tempBase    = 5
	frameSize   = 5
	scratchA    = "R13"
	scratchB    = "R14"
	DefaultMain = "Sys.init"
)

var segmentBase = map[ir.Segment]string{
	ir.ArgumentSegment: "ARG",
	ir.LocalSegment:    "LCL",
	ir.ThisSegment:     "THIS",
	ir.ThatSegment:     "THAT",
}

var binaryComp = map[ir.Operation]string{
	ir.Add: "D+M",
	ir.Sub: "D-M",
	ir.And: "D&M",
	ir.Or:  "D|M",
}

var compareJump = map[ir.Operation]string{
	ir.Eq: "JEQ",
	ir.Gt: "JGT",
	ir.Lt: "JLT",
}

// CodeGenerator expands vm commands one at a time. It keeps the state that must survive from
// one command to the next: the namespace of the file being translated, the function whose body
// is being translated, and the counters that keep generated labels unique over a whole
// program.
type CodeGenerator struct {
	// Annotate prefixes every expansion with the vm command as a comment.
	Annotate bool

	namespace       string
	currentFunction string
	labelNameID     int
	funcCallID      map[string]int
	lines           []string
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{funcCallID: map[string]int{}}
}

// SetNamespace starts a new file. Statics and comparison labels are scoped by it.
func (g *CodeGenerator) SetNamespace(namespace string) {
	g.namespace = namespace
	g.currentFunction = ""
}

func (g *CodeGenerator) emit(lines ...string) {
	g.lines = append(g.lines, lines...)
}

func (g *CodeGenerator) flush() []string {
	lines := g.lines
	g.lines = nil
	return lines
}

// Bootstrap sets SP to 256 and calls entry with no arguments.
// @256
// D=A
// @SP
// M=D
// call entry 0
func (g *CodeGenerator) Bootstrap(entry string) []string {
	if g.Annotate {
		g.emit("// bootstrap")
	}
	g.emit(fmt.Sprintf("@%d", stackBase), "D=A", "@SP", "M=D")
	g.writeCall(entry, 0)
	return g.flush()
}

// Generate returns the assembler code of one command.
func (g *CodeGenerator) Generate(cmd ir.Command) ([]string, error) {
	if g.Annotate {
		g.emit("// " + cmd.String())
	}
	var err error
	switch cmd.Op {
	case ir.Add, ir.Sub, ir.And, ir.Or:
		g.writeBinary(cmd.Op)
	case ir.Neg:
		g.writeUnary("-M")
	case ir.Not:
		g.writeUnary("!M")
	case ir.Eq, ir.Gt, ir.Lt:
		g.writeCompare(cmd.Op)
	case ir.Push:
		err = g.writePush(cmd)
	case ir.Pop:
		err = g.writePop(cmd)
	case ir.Label:
		g.emit(fmt.Sprintf("(%s)", g.scopedLabel(cmd.Name)))
	case ir.Goto:
		g.emit("@"+g.scopedLabel(cmd.Name), "0;JMP")
	case ir.IfGoto:
		g.writePopD()
		g.emit("@"+g.scopedLabel(cmd.Name), "D;JNE")
	case ir.Function:
		g.writeFunction(cmd.Name, cmd.N)
	case ir.Call:
		g.writeCall(cmd.Name, cmd.N)
	case ir.Return:
		g.writeReturn()
	default:
		err = util.NewError(util.SyntaxError, "VMTranslator", util.ErrInvalidCommand, cmd.Line, cmd.String(),
			"unsupported command")
	}
	if err != nil {
		g.lines = nil
		return nil, err
	}
	return g.flush(), nil
}

// writePushD pushes D to the stack.
// @SP
// A=M
// M=D
// @SP
// M=M+1
func (g *CodeGenerator) writePushD() {
	g.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// writePopD pops the topmost element to D.
// @SP
// AM=M-1
// D=M
func (g *CodeGenerator) writePopD() {
	g.emit("@SP", "AM=M-1", "D=M")
}

// writePush loads the segment cell to D and pushes it.
// For argument, local, this and that:
// @BASE
// D=M
// @index
// A=D+A
// D=M
func (g *CodeGenerator) writePush(cmd ir.Command) error {
	switch cmd.Segment {
	case ir.ConstantSegment:
		g.emit(fmt.Sprintf("@%d", cmd.Index), "D=A")
	case ir.ArgumentSegment, ir.LocalSegment, ir.ThisSegment, ir.ThatSegment:
		g.emit("@"+segmentBase[cmd.Segment], "D=M", fmt.Sprintf("@%d", cmd.Index), "A=D+A", "D=M")
	case ir.StaticSegment, ir.PointerSegment, ir.TempSegment:
		addr, err := g.directAddress(cmd)
		if err != nil {
			return err
		}
		g.emit("@"+addr, "D=M")
	default:
		return g.segmentError(cmd)
	}
	g.writePushD()
	return nil
}

// writePop stores the topmost element to the segment cell. The target address of the base
// segments is computed first and kept in R13.
// @BASE
// D=M
// @index
// D=D+A
// @R13
// M=D
// (pop to D)
// @R13
// A=M
// M=D
func (g *CodeGenerator) writePop(cmd ir.Command) error {
	switch cmd.Segment {
	case ir.ArgumentSegment, ir.LocalSegment, ir.ThisSegment, ir.ThatSegment:
		g.emit("@"+segmentBase[cmd.Segment], "D=M", fmt.Sprintf("@%d", cmd.Index), "D=D+A", "@"+scratchA, "M=D")
		g.writePopD()
		g.emit("@"+scratchA, "A=M", "M=D")
	case ir.StaticSegment, ir.PointerSegment, ir.TempSegment:
		addr, err := g.directAddress(cmd)
		if err != nil {
			return err
		}
		g.writePopD()
		g.emit("@"+addr, "M=D")
	default:
		return g.segmentError(cmd)
	}
	return nil
}

// directAddress returns the symbol or address of the segments that need no base register.
func (g *CodeGenerator) directAddress(cmd ir.Command) (string, error) {
	switch cmd.Segment {
	case ir.StaticSegment:
		return fmt.Sprintf("%s.%d", g.namespace, cmd.Index), nil
	case ir.PointerSegment:
		switch cmd.Index {
		case 0:
			return "THIS", nil
		case 1:
			return "THAT", nil
		}
	case ir.TempSegment:
		if cmd.Index < ir.TempSize {
			return fmt.Sprintf("R%d", tempBase+cmd.Index), nil
		}
	}
	return "", g.segmentError(cmd)
}

func (g *CodeGenerator) segmentError(cmd ir.Command) error {
	return util.NewError(util.SemanticError, "VMTranslator", util.ErrInvalidSegment, cmd.Line, cmd.String(),
		"cannot %s %s %d", cmd.Op, cmd.Segment, cmd.Index)
}

// writeOperands pops y to R14 and x to R13, leaving x in D and y addressed by M.
func (g *CodeGenerator) writeOperands() {
	g.writePopD()
	g.emit("@"+scratchB, "M=D")
	g.writePopD()
	g.emit("@"+scratchA, "M=D", "@"+scratchB)
}

// writeBinary pushes x op y.
func (g *CodeGenerator) writeBinary(op ir.Operation) {
	g.writeOperands()
	g.emit("D=" + binaryComp[op])
	g.writePushD()
}

// writeUnary rewrites the topmost element in place.
// @SP
// A=M-1
// M=-M
func (g *CodeGenerator) writeUnary(comp string) {
	g.emit("@SP", "A=M-1", "M="+comp)
}

// writeCompare pushes -1 when x op y holds and 0 otherwise.
// D=x-y
// @ns$OP.TRUE.n
// D;Jxx
// D=0
// @ns$OP.END.n
// 0;JMP
// (ns$OP.TRUE.n)
// D=-1
// (ns$OP.END.n)
// x-y wraps around when the operands differ by more than 32767, so such comparisons can be
// wrong, e.g. -20000 gt 20000 is true.
func (g *CodeGenerator) writeCompare(op ir.Operation) {
	name := strings.ToUpper(op.String())
	trueLabel := fmt.Sprintf("%s$%s.TRUE.%d", g.namespace, name, g.labelNameID)
	endLabel := fmt.Sprintf("%s$%s.END.%d", g.namespace, name, g.labelNameID)
	g.labelNameID++
	g.writeOperands()
	g.emit(
		"D=D-M",
		"@"+trueLabel,
		"D;"+compareJump[op],
		"D=0",
		"@"+endLabel,
		"0;JMP",
		"("+trueLabel+")",
		"D=-1",
		"("+endLabel+")",
	)
	g.writePushD()
}

// scopedLabel qualifies a vm label by the enclosing function, or by the namespace outside of
// any function.
func (g *CodeGenerator) scopedLabel(label string) string {
	if g.currentFunction != "" {
		return g.currentFunction + "$" + label
	}
	return g.namespace + "$" + label
}

// writeFunction declares the entry label and pushes nLocals zeros.
// (f)
// @SP
// A=M
// M=0
// @SP
// M=M+1
// ... nLocals times
func (g *CodeGenerator) writeFunction(name string, nLocals int) {
	g.currentFunction = name
	g.emit("(" + name + ")")
	for i := 0; i < nLocals; i++ {
		g.emit("@SP", "A=M", "M=0", "@SP", "M=M+1")
	}
}

// writeCall saves the caller frame and jumps to f.
// push f$ret.n
// push LCL
// push ARG
// push THIS
// push THAT
// ARG=SP-5-nArgs
// LCL=SP
// goto f
// (f$ret.n)
func (g *CodeGenerator) writeCall(name string, nArgs int) {
	returnLabel := fmt.Sprintf("%s$ret.%d", name, g.funcCallID[name])
	g.funcCallID[name]++
	g.emit("@"+returnLabel, "D=A")
	g.writePushD()
	for _, register := range []string{"LCL", "ARG", "THIS", "THAT"} {
		g.emit("@"+register, "D=M")
		g.writePushD()
	}
	g.emit(
		"@SP",
		"D=M",
		fmt.Sprintf("@%d", frameSize+nArgs),
		"D=D-A",
		"@ARG",
		"M=D",
		"@SP",
		"D=M",
		"@LCL",
		"M=D",
		"@"+name,
		"0;JMP",
		"("+returnLabel+")",
	)
}

// writeReturn puts the return value where the first argument was and restores the caller frame.
// R13=LCL
// R14=*(R13-5)
// *ARG=pop()
// SP=ARG+1
// THAT=*(R13-1)
// THIS=*(R13-2)
// ARG=*(R13-3)
// LCL=*(R13-4)
// goto R14
func (g *CodeGenerator) writeReturn() {
	g.emit("@LCL", "D=M", "@"+scratchA, "M=D")
	g.emit(fmt.Sprintf("@%d", frameSize), "A=D-A", "D=M", "@"+scratchB, "M=D")
	g.writePopD()
	g.emit("@ARG", "A=M", "M=D")
	g.emit("@ARG", "D=M+1", "@SP", "M=D")
	for _, register := range []string{"THAT", "THIS", "ARG", "LCL"} {
		g.emit("@"+scratchA, "AM=M-1", "D=M", "@"+register, "M=D")
	}
	g.emit("@"+scratchB, "A=M", "0;JMP")
}
