package vmtrans_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libklein/n2tchain/internal/vmcode"
	"github.com/libklein/n2tchain/internal/vmtrans"
)

func TestParser_SkipsBlankLinesAndComments(t *testing.T) {
	src := "\n// a comment\npush constant 7   // inline\n\npop local 0\n"
	p := vmtrans.NewParser(strings.NewReader(src))

	require.True(t, p.Scan())
	inst := p.Instruction()
	assert.Equal(t, vmtrans.Push, inst.Kind)
	assert.Equal(t, vmcode.Constant, inst.Segment)
	assert.Equal(t, 7, inst.Index)

	require.True(t, p.Scan())
	inst = p.Instruction()
	assert.Equal(t, vmtrans.Pop, inst.Kind)
	assert.Equal(t, vmcode.Local, inst.Segment)

	assert.False(t, p.Scan())
	assert.NoError(t, p.Err())
}

func TestParser_ArithmeticAndControlFlow(t *testing.T) {
	src := "add\nlabel LOOP\ngoto LOOP\nif-goto LOOP\nfunction Foo.bar 2\ncall Foo.bar 3\nreturn\n"
	p := vmtrans.NewParser(strings.NewReader(src))

	var kinds []vmtrans.Kind
	for p.Scan() {
		kinds = append(kinds, p.Instruction().Kind)
	}
	require.NoError(t, p.Err())
	assert.Equal(t, []vmtrans.Kind{
		vmtrans.Arithmetic, vmtrans.Label, vmtrans.Goto, vmtrans.IfGoto,
		vmtrans.Function, vmtrans.Call, vmtrans.Return,
	}, kinds)
}

func TestParser_RejectsUnknownInstruction(t *testing.T) {
	p := vmtrans.NewParser(strings.NewReader("frobnicate\n"))
	assert.False(t, p.Scan())
	assert.Error(t, p.Err())
}

func TestParser_RejectsMalformedPush(t *testing.T) {
	p := vmtrans.NewParser(strings.NewReader("push constant\n"))
	assert.False(t, p.Scan())
	assert.Error(t, p.Err())
}
