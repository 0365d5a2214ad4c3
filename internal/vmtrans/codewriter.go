package vmtrans

import (
	"bufio"
	"fmt"
	"io"

	"github.com/libklein/n2tchain/internal/vmcode"
)

// segmentBase maps the four indirect segments to their Hack pointer
// register, per spec.md section 4.5.3.
var segmentBase = map[vmcode.Segment]string{
	vmcode.Local:    "LCL",
	vmcode.Argument: "ARG",
	vmcode.This:     "THIS",
	vmcode.That:     "THAT",
}

const tempBase = 5

// CodeWriter lowers parsed VM Instructions to Hack assembly, honouring the
// calling convention of spec.md section 4.5.5. One CodeWriter spans every
// file of a directory-mode translation run, so returnIndex/continueIndex
// are unique across the whole program.
type CodeWriter struct {
	w            *bufio.Writer
	fileName     string
	continueIdx  int
	returnIdx    int
	wroteBootstrap bool
}

// NewCodeWriter wraps w for writing Hack assembly.
func NewCodeWriter(w io.Writer) *CodeWriter {
	return &CodeWriter{w: bufio.NewWriter(w)}
}

// SetFileName selects the current input file, used for label mangling.
// Neither continueIdx nor returnIdx is reset across files: continueIdx is
// folded into the file-scoped CONTINUE label anyway, and returnIdx is
// folded into the call target's fully qualified name, so a global,
// ever-increasing counter for each is sufficient to keep every emitted
// label unique across an entire directory-mode translation run.
func (cw *CodeWriter) SetFileName(name string) {
	cw.fileName = name
}

// WriteBootstrap emits the standard SP=256 / call Sys.init 0 preamble, for
// multi-file (directory) translation runs only -- see SPEC_FULL.md's
// "Bootstrap code for multi-file VM translation" supplement. It runs before
// SetFileName is ever called for a real input file, so it borrows the
// standard nand2tetris convention that Sys.init always lives in Sys.vm and
// qualifies the call as if "Sys" were already the current file -- matching
// the "(Sys.Sys.init)" label Sys.vm's own translation will later emit.
func (cw *CodeWriter) WriteBootstrap() {
	if cw.wroteBootstrap {
		return
	}
	cw.wroteBootstrap = true
	cw.asm("@256")
	cw.asm("D=A")
	cw.asm("@SP")
	cw.asm("M=D")
	cw.fileName = "Sys"
	cw.writeCall("Sys.init", 0)
}

// WriteClose emits the trailing infinite loop every translated program ends
// with, per original_source/Project 8's writeClosing.
func (cw *CodeWriter) WriteClose() {
	cw.asm("(END)")
	cw.asm("@END")
	cw.asm("0;JMP")
}

// Flush flushes buffered output.
func (cw *CodeWriter) Flush() error { return cw.w.Flush() }

func (cw *CodeWriter) asm(lines ...string) {
	for _, l := range lines {
		cw.w.WriteString(l)
		cw.w.WriteByte('\n')
	}
}

// Write lowers a single parsed Instruction.
func (cw *CodeWriter) Write(inst Instruction) error {
	switch inst.Kind {
	case Arithmetic:
		cw.writeArithmetic(inst.Op)
	case Push:
		cw.writePush(inst.Segment, inst.Index)
	case Pop:
		cw.writePop(inst.Segment, inst.Index)
	case Label:
		cw.writeLabel(inst.Name)
	case Goto:
		cw.writeGoto(inst.Name)
	case IfGoto:
		cw.writeIfGoto(inst.Name)
	case Function:
		cw.writeFunction(inst.Name, inst.N)
	case Call:
		cw.writeCall(inst.Name, inst.N)
	case Return:
		cw.writeReturn()
	default:
		return fmt.Errorf("unhandled instruction kind %d", inst.Kind)
	}
	return nil
}

func (cw *CodeWriter) writeArithmetic(op vmcode.Op) {
	if op.Unary() {
		cw.asm("@SP", "A=M-1")
		if op == vmcode.Neg {
			cw.asm("M=-M")
		} else {
			cw.asm("M=!M")
		}
		return
	}

	cw.asm("@SP", "AM=M-1", "D=M", "A=A-1")
	switch op {
	case vmcode.Add:
		cw.asm("M=D+M")
	case vmcode.Sub:
		cw.asm("M=M-D")
	case vmcode.And:
		cw.asm("M=D&M")
	case vmcode.Or:
		cw.asm("M=D|M")
	case vmcode.Eq, vmcode.Gt, vmcode.Lt:
		cw.writeComparison(op)
	}
}

func (cw *CodeWriter) writeComparison(op vmcode.Op) {
	label := fmt.Sprintf("%s$CONTINUE.%d", cw.fileName, cw.continueIdx)
	cw.continueIdx++

	jump := map[vmcode.Op]string{vmcode.Eq: "JEQ", vmcode.Gt: "JGT", vmcode.Lt: "JLT"}[op]

	cw.asm("D=M-D", "M=-1")
	cw.asm("@" + label)
	cw.asm("D;" + jump)
	cw.asm("@SP", "A=M-1", "M=0")
	cw.asm("(" + label + ")")
}

func (cw *CodeWriter) writePush(seg vmcode.Segment, index int) {
	switch seg {
	case vmcode.Constant:
		cw.asm(fmt.Sprintf("@%d", index), "D=A")
	case vmcode.Temp:
		cw.asm(fmt.Sprintf("@%d", tempBase+index), "D=M")
	case vmcode.Pointer:
		cw.asm("@"+pointerTarget(index), "D=M")
	case vmcode.Static:
		cw.asm(fmt.Sprintf("@%s.%d", cw.fileName, index), "D=M")
	default:
		base := segmentBase[seg]
		cw.asm(fmt.Sprintf("@%d", index), "D=A", "@"+base, "A=D+M", "D=M")
	}
	cw.asm("@SP", "M=M+1", "A=M-1", "M=D")
}

func (cw *CodeWriter) writePop(seg vmcode.Segment, index int) {
	switch seg {
	case vmcode.Temp:
		cw.asm("@SP", "AM=M-1", "D=M", fmt.Sprintf("@%d", tempBase+index), "M=D")
	case vmcode.Pointer:
		cw.asm("@SP", "AM=M-1", "D=M", "@"+pointerTarget(index), "M=D")
	case vmcode.Static:
		cw.asm("@SP", "AM=M-1", "D=M", fmt.Sprintf("@%s.%d", cw.fileName, index), "M=D")
	default:
		base := segmentBase[seg]
		cw.asm(fmt.Sprintf("@%d", index), "D=A", "@"+base, "D=D+M", "@R13", "M=D")
		cw.asm("@SP", "AM=M-1", "D=M", "@R13", "A=M", "M=D")
	}
}

func pointerTarget(index int) string {
	if index == 0 {
		return "THIS"
	}
	return "THAT"
}

func (cw *CodeWriter) label(name string) string {
	return cw.fileName + "$" + name
}

func (cw *CodeWriter) writeLabel(name string) {
	cw.asm("(" + cw.label(name) + ")")
}

func (cw *CodeWriter) writeGoto(name string) {
	cw.asm("@"+cw.label(name), "0;JMP")
}

func (cw *CodeWriter) writeIfGoto(name string) {
	cw.asm("@SP", "AM=M-1", "D=M", "@"+cw.label(name), "D;JNE")
}

func (cw *CodeWriter) writeFunction(name string, nLocals int) {
	cw.asm("(" + cw.qualify(name) + ")")
	for i := 0; i < nLocals; i++ {
		cw.asm("@SP", "M=M+1", "A=M-1", "M=0")
	}
}

// qualify prefixes a call target with the current file name, per spec.md
// section 8(d) (call site "Main.Foo.bar$ret.0" / jump "Main.Foo.bar"): the
// file is part of the global name, not just the flow-control labels.
// original_source/Project 8/translator_complete.cpp applies this prefix in
// writeCall but not in the writeFunction/writeLabel path it shares with
// LOOP-style labels, so its own function label and its own call's jump
// target never actually agree; qualifying both here avoids reproducing
// that mismatch.
func (cw *CodeWriter) qualify(name string) string {
	return cw.fileName + "." + name
}

// writeCall implements the caller side of the convention: push a fresh
// return-address label, push LCL/ARG/THIS/THAT, set LCL=SP, ARG=SP-n-5,
// jump to the callee, place the return-address label.
func (cw *CodeWriter) writeCall(name string, nArgs int) {
	target := cw.qualify(name)
	retLabel := fmt.Sprintf("%s$ret.%d", target, cw.returnIdx)
	cw.returnIdx++

	cw.asm("@"+retLabel, "D=A", "@SP", "M=M+1", "A=M-1", "M=D")
	cw.pushSegmentPointer("LCL")
	cw.pushSegmentPointer("ARG")
	cw.pushSegmentPointer("THIS")
	cw.pushSegmentPointer("THAT")

	cw.asm("@SP", "D=M", "@LCL", "M=D")
	cw.asm(fmt.Sprintf("@%d", nArgs+5), "D=D-A", "@ARG", "M=D")

	cw.asm("@"+target, "0;JMP")
	cw.asm("(" + retLabel + ")")
}

func (cw *CodeWriter) pushSegmentPointer(reg string) {
	cw.asm("@"+reg, "D=M", "@SP", "M=M+1", "A=M-1", "M=D")
}

// writeReturn implements the callee-side teardown: save LCL (frame) and the
// return address, overwrite *ARG with the return value, reposition SP just
// past it, restore THAT/THIS/ARG/LCL from the frame, then jump home.
func (cw *CodeWriter) writeReturn() {
	cw.asm("@LCL", "D=M", "@R13", "M=D") // R13 = frame
	cw.asm("@5", "A=D-A", "D=M", "@R14", "M=D") // R14 = return address

	cw.asm("@SP", "AM=M-1", "D=M", "@ARG", "A=M", "M=D") // *ARG = pop()
	cw.asm("@ARG", "D=M+1", "@SP", "M=D")                // SP = ARG+1

	cw.restoreFromFrame("THAT", 1)
	cw.restoreFromFrame("THIS", 2)
	cw.restoreFromFrame("ARG", 3)
	cw.restoreFromFrame("LCL", 4)

	cw.asm("@R14", "A=M", "0;JMP")
}

func (cw *CodeWriter) restoreFromFrame(reg string, offsetFromTop int) {
	cw.asm("@R13", "D=M", fmt.Sprintf("@%d", offsetFromTop), "A=D-A", "D=M", "@"+reg, "M=D")
}
