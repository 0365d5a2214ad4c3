package vmtrans

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/libklein/n2tchain/internal/vmcode"
)

// Parser reads one VM instruction per call to Scan, skipping blank lines
// and "//" comments, per spec.md section 6's VM bytecode grammar.
type Parser struct {
	scanner *bufio.Scanner
	cur     Instruction
	err     error
}

// NewParser wraps r for parsing.
func NewParser(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Err returns the first parse error encountered, if any.
func (p *Parser) Err() error { return p.err }

// Instruction returns the most recently parsed instruction.
func (p *Parser) Instruction() Instruction { return p.cur }

// Scan advances to the next instruction, returning false at EOF or error.
func (p *Parser) Scan() bool {
	if p.err != nil {
		return false
	}
	for p.scanner.Scan() {
		line := stripComment(p.scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		inst, err := parseFields(fields)
		if err != nil {
			p.err = err
			return false
		}
		p.cur = inst
		return true
	}
	if err := p.scanner.Err(); err != nil {
		p.err = err
	}
	return false
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return line
}

var arithmeticOps = map[string]vmcode.Op{
	"add": vmcode.Add, "sub": vmcode.Sub, "neg": vmcode.Neg,
	"eq": vmcode.Eq, "gt": vmcode.Gt, "lt": vmcode.Lt,
	"and": vmcode.And, "or": vmcode.Or, "not": vmcode.Not,
}

var segments = map[string]vmcode.Segment{
	"local": vmcode.Local, "argument": vmcode.Argument,
	"this": vmcode.This, "that": vmcode.That,
	"pointer": vmcode.Pointer, "temp": vmcode.Temp,
	"constant": vmcode.Constant, "static": vmcode.Static,
}

func parseFields(f []string) (Instruction, error) {
	switch f[0] {
	case "add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not":
		return Instruction{Kind: Arithmetic, Op: arithmeticOps[f[0]]}, nil
	case "push", "pop":
		if len(f) != 3 {
			return Instruction{}, fmt.Errorf("malformed %s instruction: %q", f[0], strings.Join(f, " "))
		}
		seg, ok := segments[f[1]]
		if !ok {
			return Instruction{}, fmt.Errorf("unknown segment %q", f[1])
		}
		idx, err := strconv.Atoi(f[2])
		if err != nil {
			return Instruction{}, fmt.Errorf("malformed index %q", f[2])
		}
		kind := Push
		if f[0] == "pop" {
			kind = Pop
		}
		return Instruction{Kind: kind, Segment: seg, Index: idx}, nil
	case "label":
		return Instruction{Kind: Label, Name: requireArg(f, 1)}, argErr(f, 2, "label")
	case "goto":
		return Instruction{Kind: Goto, Name: requireArg(f, 1)}, argErr(f, 2, "goto")
	case "if-goto":
		return Instruction{Kind: IfGoto, Name: requireArg(f, 1)}, argErr(f, 2, "if-goto")
	case "function", "call":
		if len(f) != 3 {
			return Instruction{}, fmt.Errorf("malformed %s instruction: %q", f[0], strings.Join(f, " "))
		}
		n, err := strconv.Atoi(f[2])
		if err != nil {
			return Instruction{}, fmt.Errorf("malformed argument count %q", f[2])
		}
		kind := Function
		if f[0] == "call" {
			kind = Call
		}
		return Instruction{Kind: kind, Name: f[1], N: n}, nil
	case "return":
		return Instruction{Kind: Return}, nil
	default:
		return Instruction{}, fmt.Errorf("unknown instruction %q", f[0])
	}
}

func requireArg(f []string, i int) string {
	if i < len(f) {
		return f[i]
	}
	return ""
}

func argErr(f []string, want int, name string) error {
	if len(f) != want {
		return fmt.Errorf("malformed %s instruction: %q", name, strings.Join(f, " "))
	}
	return nil
}
