// Package jackcomp implements the Jack CompileEngine: a single-pass
// recursive-descent compiler lowering Jack source directly to VM bytecode,
// per spec.md section 4.4.
package jackcomp

import (
	"fmt"

	"github.com/libklein/n2tchain/internal/symtab"
	"github.com/libklein/n2tchain/internal/token"
	"github.com/libklein/n2tchain/internal/vmcode"
)

// TokenScanner is the one-token-lookahead cursor the compiler drives.
type TokenScanner interface {
	Token() token.Token
	Scan() bool
	Err() error
}

// Writer is everything the compiler emits VM bytecode through.
type Writer interface {
	WritePush(vmcode.Segment, int)
	WritePop(vmcode.Segment, int)
	WriteArithmetic(vmcode.Op)
	WriteLabel(string)
	WriteGoto(string)
	WriteIf(string)
	WriteCall(string, int)
	WriteFunction(string, int)
	WriteReturn()
}

// Compiler drives a TokenScanner and emits VM bytecode through a Writer. It
// compiles exactly one class per instance's Compile call, as spec.md
// section 3's "Class table: created on entering compileClass, discarded at
// its end" lifecycle implies.
type Compiler struct {
	in  TokenScanner
	out Writer

	scopes *symtab.Scopes

	className  string
	fieldCount int

	ifLabel    int
	whileLabel int

	isMethod      bool
	isConstructor bool
}

// New returns a Compiler reading tokens from in and writing VM bytecode to
// out.
func New(in TokenScanner, out Writer) *Compiler {
	return &Compiler{in: in, out: out, scopes: symtab.NewScopes()}
}

// Compile parses and lowers exactly one Jack class.
func (c *Compiler) Compile() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	c.advance()
	c.compileClass()
	if tokErr := c.in.Err(); tokErr != nil {
		return tokErr
	}
	return nil
}

func (c *Compiler) cur() token.Token { return c.in.Token() }

func (c *Compiler) advance() token.Token {
	for c.in.Scan() {
		if c.in.Token().Kind == token.Invalid {
			continue
		}
		return c.in.Token()
	}
	if err := c.in.Err(); err != nil {
		panic(err)
	}
	return token.Token{}
}

func (c *Compiler) expectSymbol(s rune) {
	t := c.cur()
	if t.Kind != token.SymbolTok || t.Symbol != s {
		panic(fmt.Errorf("expected %q, got %q", string(s), t.Terminal()))
	}
	c.advance()
}

func (c *Compiler) expectKeyword(kws ...token.KeywordKind) token.KeywordKind {
	t := c.cur()
	if t.Kind == token.KeywordTok {
		for _, kw := range kws {
			if t.Keyword == kw {
				c.advance()
				return kw
			}
		}
	}
	panic(fmt.Errorf("expected keyword, got %q", t.Terminal()))
}

func (c *Compiler) isSymbol(s rune) bool {
	t := c.cur()
	return t.Kind == token.SymbolTok && t.Symbol == s
}

func (c *Compiler) isKeyword(kws ...token.KeywordKind) bool {
	t := c.cur()
	if t.Kind != token.KeywordTok {
		return false
	}
	for _, kw := range kws {
		if t.Keyword == kw {
			return true
		}
	}
	return false
}

func (c *Compiler) expectIdentifier() string {
	t := c.cur()
	if t.Kind != token.IdentifierTok {
		panic(fmt.Errorf("expected identifier, got %q", t.Terminal()))
	}
	c.advance()
	return t.Name
}

// --- compileClass / compileClassVarDec ---------------------------------

func (c *Compiler) compileClass() {
	c.expectKeyword(token.KwClass)
	c.scopes.Class.Reset()
	c.className = c.expectIdentifier()
	c.fieldCount = 0
	c.ifLabel = 0
	c.whileLabel = 0

	c.expectSymbol('{')
	for c.isKeyword(token.KwStatic, token.KwField) {
		c.compileClassVarDec()
	}
	for c.isKeyword(token.KwConstructor, token.KwFunction, token.KwMethod) {
		c.compileSubroutine()
	}
	c.expectSymbol('}')
}

func (c *Compiler) compileClassVarDec() {
	kw := c.expectKeyword(token.KwStatic, token.KwField)
	kind := symtab.Static
	if kw == token.KwField {
		kind = symtab.Field
	}
	typ := c.parseType()
	for {
		name := c.expectIdentifier()
		c.scopes.Class.Define(name, typ, kind)
		if kind == symtab.Field {
			c.fieldCount++
		}
		if c.isSymbol(',') {
			c.advance()
			continue
		}
		break
	}
	c.expectSymbol(';')
}

func (c *Compiler) parseType() string {
	t := c.cur()
	if t.Kind == token.KeywordTok && (t.Keyword == token.KwInt || t.Keyword == token.KwChar || t.Keyword == token.KwBoolean) {
		c.advance()
		return t.Terminal()
	}
	return c.expectIdentifier()
}

// --- subroutines ---------------------------------------------------------

func (c *Compiler) compileSubroutine() {
	c.scopes.Subroutine.Reset()

	kw := c.expectKeyword(token.KwConstructor, token.KwFunction, token.KwMethod)
	c.isMethod = kw == token.KwMethod
	c.isConstructor = kw == token.KwConstructor

	// return type: void or a type -- consumed but not otherwise needed by
	// code generation (spec.md section 4.4.1).
	if c.isKeyword(token.KwVoid) {
		c.advance()
	} else {
		c.parseType()
	}

	name := c.expectIdentifier()

	if c.isMethod {
		c.scopes.Subroutine.Define("this", c.className, symtab.Argument)
	}

	c.expectSymbol('(')
	if !c.isSymbol(')') {
		c.compileParameterList()
	}
	c.expectSymbol(')')

	c.compileSubroutineBody(name)
}

func (c *Compiler) compileParameterList() {
	for {
		typ := c.parseType()
		name := c.expectIdentifier()
		c.scopes.Subroutine.Define(name, typ, symtab.Argument)
		if c.isSymbol(',') {
			c.advance()
			continue
		}
		break
	}
}

func (c *Compiler) compileSubroutineBody(name string) {
	c.expectSymbol('{')

	nLocals := 0
	for c.isKeyword(token.KwVar) {
		nLocals += c.compileVarDec()
	}

	c.out.WriteFunction(c.className+"."+name, nLocals)

	switch {
	case c.isConstructor:
		c.out.WritePush(vmcode.Constant, c.scopes.Class.VarCount(symtab.Field))
		c.out.WriteCall("Memory.alloc", 1)
		c.out.WritePop(vmcode.Pointer, 0)
	case c.isMethod:
		c.out.WritePush(vmcode.Argument, 0)
		c.out.WritePop(vmcode.Pointer, 0)
	}

	c.compileStatements()
	c.expectSymbol('}')
}

func (c *Compiler) compileVarDec() (count int) {
	c.expectKeyword(token.KwVar)
	typ := c.parseType()
	for {
		name := c.expectIdentifier()
		c.scopes.Subroutine.Define(name, typ, symtab.Local)
		count++
		if c.isSymbol(',') {
			c.advance()
			continue
		}
		break
	}
	c.expectSymbol(';')
	return count
}

// --- statements -----------------------------------------------------------

func (c *Compiler) compileStatements() {
	for {
		switch {
		case c.isKeyword(token.KwLet):
			c.compileLet()
		case c.isKeyword(token.KwIf):
			c.compileIf()
		case c.isKeyword(token.KwWhile):
			c.compileWhile()
		case c.isKeyword(token.KwDo):
			c.compileDo()
		case c.isKeyword(token.KwReturn):
			c.compileReturn()
		default:
			return
		}
	}
}

func (c *Compiler) compileLet() {
	c.expectKeyword(token.KwLet)
	name := c.expectIdentifier()

	if c.isSymbol('[') {
		c.advance()
		c.pushVariableAddress(name)
		c.compileExpression()
		c.out.WriteArithmetic(vmcode.Add)
		c.expectSymbol(']')

		c.expectSymbol('=')
		c.compileExpression()
		c.expectSymbol(';')

		// spec.md scenario (b): the temp-0 detour is mandatory because the
		// RHS may itself be an array access that clobbers pointer 1.
		c.out.WritePop(vmcode.Temp, 0)
		c.out.WritePop(vmcode.Pointer, 1)
		c.out.WritePush(vmcode.Temp, 0)
		c.out.WritePop(vmcode.That, 0)
		return
	}

	c.expectSymbol('=')
	c.compileExpression()
	c.expectSymbol(';')
	segment, index := c.variableAccess(name)
	c.out.WritePop(segment, index)
}

func (c *Compiler) compileIf() {
	c.expectKeyword(token.KwIf)
	label := c.ifLabel
	c.ifLabel++
	trueLabel := fmt.Sprintf("IF_TRUE_%d", label)
	falseLabel := fmt.Sprintf("IF_FALSE_%d", label)

	c.expectSymbol('(')
	c.compileExpression()
	c.expectSymbol(')')

	c.out.WriteArithmetic(vmcode.Not)
	c.out.WriteIf(trueLabel)

	c.expectSymbol('{')
	c.compileStatements()
	c.expectSymbol('}')

	c.out.WriteGoto(falseLabel)
	c.out.WriteLabel(trueLabel)

	if c.isKeyword(token.KwElse) {
		c.advance()
		c.expectSymbol('{')
		c.compileStatements()
		c.expectSymbol('}')
	}

	c.out.WriteLabel(falseLabel)
}

func (c *Compiler) compileWhile() {
	c.expectKeyword(token.KwWhile)
	label := c.whileLabel
	c.whileLabel++
	startLabel := fmt.Sprintf("LOOP_START_%d", label)
	endLabel := fmt.Sprintf("LOOP_END_%d", label)

	c.out.WriteLabel(startLabel)

	c.expectSymbol('(')
	c.compileExpression()
	c.expectSymbol(')')

	c.out.WriteArithmetic(vmcode.Not)
	c.out.WriteIf(endLabel)

	c.expectSymbol('{')
	c.compileStatements()
	c.expectSymbol('}')

	c.out.WriteGoto(startLabel)
	c.out.WriteLabel(endLabel)
}

func (c *Compiler) compileDo() {
	c.expectKeyword(token.KwDo)
	name := c.expectIdentifier()
	c.compileSubroutineCall(name)
	c.out.WritePop(vmcode.Temp, 0)
	c.expectSymbol(';')
}

func (c *Compiler) compileReturn() {
	c.expectKeyword(token.KwReturn)
	if c.isSymbol(';') {
		c.out.WritePush(vmcode.Constant, 0)
	} else {
		c.compileExpression()
	}
	c.out.WriteReturn()
	c.expectSymbol(';')
}

// --- expressions / terms ---------------------------------------------------

var binaryOps = map[rune]vmcode.Op{
	'+': vmcode.Add,
	'-': vmcode.Sub,
	'&': vmcode.And,
	'|': vmcode.Or,
	'<': vmcode.Lt,
	'>': vmcode.Gt,
	'=': vmcode.Eq,
}

func (c *Compiler) isBinaryOp() (rune, bool) {
	t := c.cur()
	if t.Kind != token.SymbolTok {
		return 0, false
	}
	if t.Symbol == '*' || t.Symbol == '/' {
		return t.Symbol, true
	}
	_, ok := binaryOps[t.Symbol]
	return t.Symbol, ok
}

// compileExpression lowers a left-associative chain of terms: operators
// are emitted in source order, never precedence-ranked (spec.md section
// 4.4.3).
func (c *Compiler) compileExpression() {
	c.compileTerm()
	for {
		sym, ok := c.isBinaryOp()
		if !ok {
			return
		}
		c.advance()
		c.compileTerm()
		switch sym {
		case '*':
			c.out.WriteCall("Math.multiply", 2)
		case '/':
			c.out.WriteCall("Math.divide", 2)
		default:
			c.out.WriteArithmetic(binaryOps[sym])
		}
	}
}

// compileExpressionList lowers a comma-separated, possibly empty
// expression list and returns the exact count of expressions lowered.
func (c *Compiler) compileExpressionList() (n int) {
	if c.isSymbol(')') {
		return 0
	}
	c.compileExpression()
	n = 1
	for c.isSymbol(',') {
		c.advance()
		c.compileExpression()
		n++
	}
	return n
}

func (c *Compiler) compileTerm() {
	t := c.cur()
	switch {
	case t.Kind == token.IntConstTok:
		c.out.WritePush(vmcode.Constant, int(t.IntValue))
		c.advance()
	case t.Kind == token.StringConstTok:
		c.writeStringConstant(t.Text)
		c.advance()
	case t.Kind == token.KeywordTok:
		c.compileKeywordConstant(t.Keyword)
	case t.Kind == token.SymbolTok && t.Symbol == '(':
		c.advance()
		c.compileExpression()
		c.expectSymbol(')')
	case t.Kind == token.SymbolTok && (t.Symbol == '-' || t.Symbol == '~'):
		c.advance()
		c.compileTerm()
		if t.Symbol == '-' {
			c.out.WriteArithmetic(vmcode.Neg)
		} else {
			c.out.WriteArithmetic(vmcode.Not)
		}
	case t.Kind == token.IdentifierTok:
		c.compileIdentifierTerm()
	default:
		panic(fmt.Errorf("unexpected token %q in term", t.Terminal()))
	}
}

func (c *Compiler) compileKeywordConstant(kw token.KeywordKind) {
	switch kw {
	case token.KwTrue:
		c.out.WritePush(vmcode.Constant, 1)
		c.out.WriteArithmetic(vmcode.Neg)
	case token.KwFalse, token.KwNull:
		c.out.WritePush(vmcode.Constant, 0)
	case token.KwThis:
		c.out.WritePush(vmcode.Pointer, 0)
	default:
		panic(fmt.Errorf("unexpected keyword %q in term", c.cur().Terminal()))
	}
	c.advance()
}

// writeStringConstant lowers a string literal per spec.md section 4.4.3:
// String.appendChar consumes and returns the string object, so the
// receiver stays live on the stack across every call -- no temp juggling
// is required.
func (c *Compiler) writeStringConstant(s string) {
	c.out.WritePush(vmcode.Constant, len(s))
	c.out.WriteCall("String.new", 1)
	for _, ch := range s {
		c.out.WritePush(vmcode.Constant, int(ch))
		c.out.WriteCall("String.appendChar", 2)
	}
}

func (c *Compiler) compileIdentifierTerm() {
	name := c.expectIdentifier()
	switch {
	case c.isSymbol('['):
		c.advance()
		c.pushVariableAddress(name)
		c.compileExpression()
		c.out.WriteArithmetic(vmcode.Add)
		c.expectSymbol(']')
		c.out.WritePop(vmcode.Pointer, 1)
		c.out.WritePush(vmcode.That, 0)
	case c.isSymbol('(') || c.isSymbol('.'):
		c.compileSubroutineCall(name)
	default:
		segment, index := c.variableAccess(name)
		c.out.WritePush(segment, index)
	}
}

// pushVariableAddress pushes the base address used by array indexing: the
// variable's own segment/index push, ready to be added to the lowered
// index expression.
func (c *Compiler) pushVariableAddress(name string) {
	segment, index := c.variableAccess(name)
	c.out.WritePush(segment, index)
}

func (c *Compiler) variableAccess(name string) (vmcode.Segment, int) {
	entry, ok := c.scopes.Resolve(name)
	if !ok {
		panic(fmt.Errorf("unknown variable %q", name))
	}
	switch entry.Kind {
	case symtab.Static:
		return vmcode.Static, entry.Index
	case symtab.Field:
		return vmcode.This, entry.Index
	case symtab.Argument:
		return vmcode.Argument, entry.Index
	case symtab.Local:
		return vmcode.Local, entry.Index
	default:
		panic(fmt.Errorf("variable %q has no storage kind", name))
	}
}

// compileSubroutineCall lowers the two surface call forms per spec.md
// section 4.4.4. name has already been consumed from the token stream.
func (c *Compiler) compileSubroutineCall(name string) {
	if c.isSymbol('(') {
		// Bare call: method of the current class, invoked on this.
		c.out.WritePush(vmcode.Pointer, 0)
		c.advance()
		nArgs := c.compileExpressionList()
		c.expectSymbol(')')
		c.out.WriteCall(c.className+"."+name, nArgs+1)
		return
	}

	c.expectSymbol('.')
	method := c.expectIdentifier()
	c.expectSymbol('(')

	var (
		fullName string
		nArgs    int
	)
	if entry, ok := c.scopes.Resolve(name); ok {
		segment, index := c.variableAccess(name)
		c.out.WritePush(segment, index)
		fullName = entry.Type + "." + method
		nArgs = c.compileExpressionList() + 1
	} else {
		fullName = name + "." + method
		nArgs = c.compileExpressionList()
	}

	c.expectSymbol(')')
	c.out.WriteCall(fullName, nArgs)
}
