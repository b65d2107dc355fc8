package compiler

import (
	"strings"

	"github.com/xiaobogaga/hack/internal/ir"
)

// VMWriter collects the IR lines generated for one class.
type VMWriter struct {
	output strings.Builder
}

func (w *VMWriter) writeCommand(cmd ir.Command) {
	w.output.WriteString(cmd.String())
	w.output.WriteByte('\n')
}

func (w *VMWriter) WritePush(seg ir.Segment, index int) {
	w.writeCommand(ir.NewPush(seg, index))
}

func (w *VMWriter) WritePop(seg ir.Segment, index int) {
	w.writeCommand(ir.NewPop(seg, index))
}

func (w *VMWriter) WriteArithmetic(op ir.Operation) {
	w.writeCommand(ir.Command{Op: op})
}

func (w *VMWriter) WriteLabel(label string) {
	w.writeCommand(ir.Command{Op: ir.Label, Name: label})
}

func (w *VMWriter) WriteGoto(label string) {
	w.writeCommand(ir.Command{Op: ir.Goto, Name: label})
}

func (w *VMWriter) WriteIf(label string) {
	w.writeCommand(ir.Command{Op: ir.IfGoto, Name: label})
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.writeCommand(ir.NewCall(name, nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.writeCommand(ir.NewFunction(name, nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.writeCommand(ir.Command{Op: ir.Return})
}

// WriteStringConstant allocates a String of the right length and appends every character.
func (w *VMWriter) WriteStringConstant(s string) {
	w.WritePush(ir.ConstantSegment, len(s))
	w.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		w.WritePush(ir.ConstantSegment, int(s[i]))
		w.WriteCall("String.appendChar", 2)
	}
}

func (w *VMWriter) String() string {
	return w.output.String()
}
