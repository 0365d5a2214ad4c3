// Package token implements the Jack tokenizer: a byte stream is turned into
// a stream of classified Tokens on demand, with one-token lookahead.
package token

import "fmt"

// Kind tags the variant a Token holds.
type Kind int

const (
	// Invalid is a pseudo-token the Tokenizer produces in place of a
	// skipped comment; callers Scan past it rather than act on it.
	Invalid Kind = iota
	KeywordTok
	SymbolTok
	IdentifierTok
	IntConstTok
	StringConstTok
)

func (k Kind) String() string {
	switch k {
	case KeywordTok:
		return "keyword"
	case SymbolTok:
		return "symbol"
	case IdentifierTok:
		return "identifier"
	case IntConstTok:
		return "integerConstant"
	case StringConstTok:
		return "stringConstant"
	default:
		return "invalid"
	}
}

// KeywordKind enumerates the fixed Jack keyword set.
type KeywordKind int

const (
	KwNone KeywordKind = iota
	KwClass
	KwMethod
	KwFunction
	KwConstructor
	KwInt
	KwBoolean
	KwChar
	KwVoid
	KwVar
	KwStatic
	KwField
	KwLet
	KwDo
	KwIf
	KwElse
	KwWhile
	KwReturn
	KwTrue
	KwFalse
	KwNull
	KwThis
)

// keywords is a construction-time constant: built once, never mutated, per
// the "no process-wide mutable map" design note.
var keywords = map[string]KeywordKind{
	"class":       KwClass,
	"method":      KwMethod,
	"function":    KwFunction,
	"constructor": KwConstructor,
	"int":         KwInt,
	"boolean":     KwBoolean,
	"char":        KwChar,
	"void":        KwVoid,
	"var":         KwVar,
	"static":      KwStatic,
	"field":       KwField,
	"let":         KwLet,
	"do":          KwDo,
	"if":          KwIf,
	"else":        KwElse,
	"while":       KwWhile,
	"return":      KwReturn,
	"true":        KwTrue,
	"false":       KwFalse,
	"null":        KwNull,
	"this":        KwThis,
}

// symbolChars is the fixed alphabet of single-character Jack symbols.
const symbolChars = "{}()[].,;+-*/&|<>=~"

// LookupKeyword returns the KeywordKind for name, and whether name is a
// keyword at all.
func LookupKeyword(name string) (KeywordKind, bool) {
	k, ok := keywords[name]
	return k, ok
}

// IsSymbolChar reports whether r is one of Jack's fixed single-char symbols.
func IsSymbolChar(r rune) bool {
	for _, c := range symbolChars {
		if c == r {
			return true
		}
	}
	return false
}

// Token is a tagged variant over the five token kinds spec.md §3 names. Only
// the fields relevant to Kind are meaningful.
type Token struct {
	Kind     Kind
	Keyword  KeywordKind
	Symbol   rune
	Name     string // Identifier
	IntValue uint16 // IntConst, 0..32767
	Text     string // StringConst, delimiters stripped
}

// Terminal returns the token's literal source text, used for grammar
// dispatch (comparing against expected punctuation/keywords).
func (t Token) Terminal() string {
	switch t.Kind {
	case KeywordTok:
		return keywordText(t.Keyword)
	case SymbolTok:
		return string(t.Symbol)
	case IdentifierTok:
		return t.Name
	case IntConstTok:
		return fmt.Sprintf("%d", t.IntValue)
	case StringConstTok:
		return t.Text
	default:
		return ""
	}
}

var keywordTexts = func() map[KeywordKind]string {
	m := make(map[KeywordKind]string, len(keywords))
	for text, kind := range keywords {
		m[kind] = text
	}
	return m
}()

func keywordText(k KeywordKind) string {
	return keywordTexts[k]
}
