// Package vmwriter is a thin, append-only formatter for VM bytecode: one
// instruction per output line, per spec.md section 4.3.
package vmwriter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/libklein/n2tchain/internal/vmcode"
)

// Writer appends VM instructions to an underlying io.Writer. Output is
// never reordered or buffered beyond the usual bufio flush on Close.
type Writer struct {
	w   *bufio.Writer
	out io.Writer
}

// New wraps w for writing.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), out: w}
}

func (w *Writer) line(format string, args ...interface{}) {
	fmt.Fprintf(w.w, format, args...)
	w.w.WriteByte('\n')
}

// WritePush emits "push <segment> <index>".
func (w *Writer) WritePush(segment vmcode.Segment, index int) {
	w.line("push %s %d", segment, index)
}

// WritePop emits "pop <segment> <index>".
func (w *Writer) WritePop(segment vmcode.Segment, index int) {
	w.line("pop %s %d", segment, index)
}

// WriteArithmetic emits one of the nine arithmetic mnemonics. Multiply and
// divide are not VM primitives; the compiler is expected to lower '*' and
// '/' to Math.multiply/Math.divide calls itself (spec.md section 4.4.3), so
// WriteArithmetic only ever sees the genuine nine VM ops.
func (w *Writer) WriteArithmetic(op vmcode.Op) {
	w.line("%s", op)
}

// WriteLabel emits "label <name>".
func (w *Writer) WriteLabel(name string) { w.line("label %s", name) }

// WriteGoto emits "goto <name>".
func (w *Writer) WriteGoto(name string) { w.line("goto %s", name) }

// WriteIf emits "if-goto <name>".
func (w *Writer) WriteIf(name string) { w.line("if-goto %s", name) }

// WriteCall emits "call <name> <nArgs>".
func (w *Writer) WriteCall(name string, nArgs int) {
	w.line("call %s %d", name, nArgs)
}

// WriteFunction emits "function <name> <nLocals>".
func (w *Writer) WriteFunction(name string, nLocals int) {
	w.line("function %s %d", name, nLocals)
}

// WriteReturn emits "return".
func (w *Writer) WriteReturn() { w.line("return") }

// Close flushes any buffered output.
func (w *Writer) Close() error {
	return w.w.Flush()
}
