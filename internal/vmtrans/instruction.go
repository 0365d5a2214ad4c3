// Package vmtrans translates parsed VM bytecode into Hack assembly,
// honouring the calling convention described in spec.md section 4.5.
package vmtrans

import "github.com/libklein/n2tchain/internal/vmcode"

// Kind tags the variant an Instruction holds, per spec.md section 3.
type Kind int

const (
	Arithmetic Kind = iota
	Push
	Pop
	Label
	Goto
	IfGoto
	Function
	Call
	Return
)

// Instruction is one parsed line of VM bytecode.
type Instruction struct {
	Kind    Kind
	Op      vmcode.Op     // Arithmetic
	Segment vmcode.Segment // Push, Pop
	Index   int            // Push, Pop
	Name    string         // Label, Goto, IfGoto, Function, Call
	N       int            // Function (nLocals), Call (nArgs)
}
