package compiler

import (
	"fmt"
	"strconv"

	"github.com/xiaobogaga/hack/util"
)

// A lazy tokenizer for jack.

// Jack source has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer (0..32767), string ("xxx", no escapes, single line).
// * Identifier: any other run of characters that are neither spaces nor symbols.
// * Comment: /**/, //.

type TokenKind int

const (
	KeywordToken    TokenKind = iota // keyword
	IdentifierToken                  // identifier
	IntegerToken                     // integerConstant
	StringToken                      // stringConstant
	SymbolToken                      // symbol
)

var tokenKindNames = [...]string{
	KeywordToken:    "keyword",
	IdentifierToken: "identifier",
	IntegerToken:    "integerConstant",
	StringToken:     "stringConstant",
	SymbolToken:     "symbol",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

type Keyword int

const (
	ClassKW       Keyword = iota // class
	ConstructorKW                // constructor
	FunctionKW                   // function
	MethodKW                     // method
	FieldKW                      // field
	StaticKW                     // static
	VarKW                        // var
	IntKW                        // int
	CharKW                       // char
	BooleanKW                    // boolean
	VoidKW                       // void
	TrueKW                       // true
	FalseKW                      // false
	NullKW                       // null
	ThisKW                       // this
	LetKW                        // let
	DoKW                         // do
	IfKW                         // if
	ElseKW                       // else
	WhileKW                      // while
	ReturnKW                     // return
)

var keywordNames = [...]string{
	ClassKW:       "class",
	ConstructorKW: "constructor",
	FunctionKW:    "function",
	MethodKW:      "method",
	FieldKW:       "field",
	StaticKW:      "static",
	VarKW:         "var",
	IntKW:         "int",
	CharKW:        "char",
	BooleanKW:     "boolean",
	VoidKW:        "void",
	TrueKW:        "true",
	FalseKW:       "false",
	NullKW:        "null",
	ThisKW:        "this",
	LetKW:         "let",
	DoKW:          "do",
	IfKW:          "if",
	ElseKW:        "else",
	WhileKW:       "while",
	ReturnKW:      "return",
}

// keyWordMap is the mapping from a reserved word to its Keyword.
var keyWordMap = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordNames))
	for kw, name := range keywordNames {
		m[name] = Keyword(kw)
	}
	return m
}()

func (kw Keyword) String() string {
	if int(kw) < len(keywordNames) {
		return keywordNames[kw]
	}
	return fmt.Sprintf("Keyword(%d)", int(kw))
}

const symbols = "{}()[].,;+-*/&|<>=~"

func isSymbol(b byte) bool {
	for i := 0; i < len(symbols); i++ {
		if symbols[i] == b {
			return true
		}
	}
	return false
}

const maxIntegerConstant = 32767

type Token struct {
	content string
	line    int
	kind    TokenKind
	keyword Keyword
	intVal  int
}

func (t *Token) Kind() TokenKind {
	return t.kind
}

func (t *Token) Content() string {
	return t.content
}

func (t *Token) Line() int {
	return t.line
}

func (t *Token) Is(kind TokenKind) bool {
	return t != nil && t.kind == kind
}

// IsKeyword reports whether the token is one of the given keywords.
func (t *Token) IsKeyword(kws ...Keyword) bool {
	if !t.Is(KeywordToken) {
		return false
	}
	for _, kw := range kws {
		if t.keyword == kw {
			return true
		}
	}
	return false
}

// IsSymbol reports whether the token is one of the symbols in set.
func (t *Token) IsSymbol(set string) bool {
	if !t.Is(SymbolToken) {
		return false
	}
	for i := 0; i < len(set); i++ {
		if set[i] == t.content[0] {
			return true
		}
	}
	return false
}

func (t *Token) mismatch(want TokenKind) error {
	return util.NewError(util.SyntaxError, "Tokenizer", util.ErrTokenMismatch, t.line, t.content,
		"expected %s but passed token is %s", want, t.kind)
}

func (t *Token) Keyword() (Keyword, error) {
	if !t.Is(KeywordToken) {
		return 0, t.mismatch(KeywordToken)
	}
	return t.keyword, nil
}

func (t *Token) Identifier() (string, error) {
	if !t.Is(IdentifierToken) {
		return "", t.mismatch(IdentifierToken)
	}
	return t.content, nil
}

func (t *Token) IntVal() (int, error) {
	if !t.Is(IntegerToken) {
		return 0, t.mismatch(IntegerToken)
	}
	return t.intVal, nil
}

func (t *Token) StringVal() (string, error) {
	if !t.Is(StringToken) {
		return "", t.mismatch(StringToken)
	}
	return t.content, nil
}

func (t *Token) Symbol() (byte, error) {
	if !t.Is(SymbolToken) {
		return 0, t.mismatch(SymbolToken)
	}
	return t.content[0], nil
}

func (t *Token) String() string {
	return fmt.Sprintf("<%s> %s </%s>", t.kind, t.content, t.kind)
}

// Tokenizer produces tokens on demand. It keeps two slots: the current token, which the cursor
// has moved past, and an optional peeked token that was scanned but not consumed yet.
type Tokenizer struct {
	src         []byte
	currentPos  int
	currentLine int
	current     *Token

	peeked     *Token
	peekedPos  int
	peekedLine int
}

func NewTokenizer(src []byte) *Tokenizer {
	return &Tokenizer{src: src, currentLine: 1}
}

// Current returns the last consumed token, nil before the first Advance(false).
func (t *Tokenizer) Current() *Token {
	return t.current
}

// HasMoreTokens reports whether anything other than whitespace and comments remains.
func (t *Tokenizer) HasMoreTokens() bool {
	if t.peeked != nil {
		return true
	}
	pos, _, err := t.skipSpaceAndComments(t.currentPos, t.currentLine)
	return err != nil || pos < len(t.src)
}

// Advance consumes the next token and returns it. With peek set, it returns the next token
// and leaves the cursor where it was.
func (t *Tokenizer) Advance(peek bool) (*Token, error) {
	if t.peeked == nil {
		tok, pos, line, err := t.scan(t.currentPos, t.currentLine)
		if err != nil {
			return nil, err
		}
		t.peeked, t.peekedPos, t.peekedLine = tok, pos, line
	}
	if peek {
		return t.peeked, nil
	}
	t.current = t.peeked
	t.currentPos, t.currentLine = t.peekedPos, t.peekedLine
	t.peeked = nil
	return t.current, nil
}

func (t *Tokenizer) skipSpaceAndComments(pos, line int) (int, int, error) {
	for pos < len(t.src) {
		c := t.src[pos]
		switch {
		case c == '\n':
			line++
			pos++
		case util.IsSpace(c):
			pos++
		case c == '/' && pos+1 < len(t.src) && t.src[pos+1] == '/':
			for pos < len(t.src) && t.src[pos] != '\n' {
				pos++
			}
		case c == '/' && pos+1 < len(t.src) && t.src[pos+1] == '*':
			start := line
			pos += 2
			for {
				if pos+1 >= len(t.src) {
					return pos, line, t.makeError(start, "/*", "unterminated comment")
				}
				if t.src[pos] == '*' && t.src[pos+1] == '/' {
					pos += 2
					break
				}
				if t.src[pos] == '\n' {
					line++
				}
				pos++
			}
		default:
			return pos, line, nil
		}
	}
	return pos, line, nil
}

func (t *Tokenizer) scan(pos, line int) (*Token, int, int, error) {
	pos, line, err := t.skipSpaceAndComments(pos, line)
	if err != nil {
		return nil, pos, line, err
	}
	if pos >= len(t.src) {
		return nil, pos, line, t.makeError(line, "EOF", "unexpected end of input")
	}
	c := t.src[pos]
	switch {
	case c == '"':
		end := pos + 1
		for end < len(t.src) && t.src[end] != '"' && t.src[end] != '\n' {
			end++
		}
		if end >= len(t.src) || t.src[end] != '"' {
			return nil, pos, line, t.makeError(line, string(t.src[pos:end]), "unterminated string constant")
		}
		for i := pos + 1; i < end; i++ {
			if t.src[i] >= 0x80 {
				return nil, pos, line, t.makeError(line, string(t.src[pos:end+1]), "string constant must be ascii")
			}
		}
		return &Token{content: string(t.src[pos+1 : end]), line: line, kind: StringToken}, end + 1, line, nil
	case isSymbol(c):
		return &Token{content: string(c), line: line, kind: SymbolToken}, pos + 1, line, nil
	case util.IsNumber(c):
		end := pos
		for end < len(t.src) && util.IsNumber(t.src[end]) {
			end++
		}
		content := string(t.src[pos:end])
		value, err := strconv.Atoi(content)
		if err != nil || value > maxIntegerConstant {
			return nil, pos, line, util.NewError(util.SyntaxError, "Tokenizer", util.ErrOutOfRange, line, content,
				"integer constant must be in 0..%d", maxIntegerConstant)
		}
		return &Token{content: content, line: line, kind: IntegerToken, intVal: value}, end, line, nil
	}
	end := pos
	for end < len(t.src) && !util.IsSpace(t.src[end]) && !isSymbol(t.src[end]) && t.src[end] != '"' {
		end++
	}
	content := string(t.src[pos:end])
	if kw, ok := keyWordMap[content]; ok {
		return &Token{content: content, line: line, kind: KeywordToken, keyword: kw}, end, line, nil
	}
	return &Token{content: content, line: line, kind: IdentifierToken}, end, line, nil
}

func (t *Tokenizer) makeError(line int, near, msg string) error {
	return util.NewError(util.SyntaxError, "Tokenizer", util.ErrUnexpectedToken, line, near, "%s", msg)
}
