// Package compiler translates one jack class into the stack machine language.
//
// The compiler is a recursive descent parser with one token of lookahead. It never builds a
// syntax tree: every production writes its vm commands as soon as it is recognized. Expressions
// have no operator precedence, `a + b * c` evaluates as `(a + b) * c`.
package compiler

import (
	"fmt"

	"github.com/xiaobogaga/hack/internal/ir"
	"github.com/xiaobogaga/hack/util"
)

const operators = "+-*/&|<>="

type Compiler struct {
	tokenizer    *Tokenizer
	writer       VMWriter
	className    string
	labelCounter int
}

func NewCompiler(src []byte) *Compiler {
	return &Compiler{tokenizer: NewTokenizer(src)}
}

// Compile compiles the class in src and returns its vm code.
func Compile(src []byte) (string, error) {
	return NewCompiler(src).Compile()
}

func (c *Compiler) Compile() (string, error) {
	if err := c.compileClass(); err != nil {
		return "", err
	}
	return c.writer.String(), nil
}

// ClassName is the name of the compiled class, known once its header was parsed.
func (c *Compiler) ClassName() string {
	return c.className
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (c *Compiler) compileClass() error {
	if _, err := c.expectKeyword("'class'", ClassKW); err != nil {
		return err
	}
	name, err := c.expectIdentifier("class name")
	if err != nil {
		return err
	}
	c.className = name
	c.labelCounter = 0
	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	class := NewSymbolTable()
	for {
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.IsKeyword(StaticKW, FieldKW) {
			break
		}
		if err := c.compileClassVarDec(class); err != nil {
			return err
		}
	}
	for {
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.IsKeyword(ConstructorKW, FunctionKW, MethodKW) {
			break
		}
		if err := c.compileSubroutine(class); err != nil {
			return err
		}
	}
	if err := c.expectSymbol('}'); err != nil {
		return err
	}
	if c.tokenizer.HasMoreTokens() {
		tok, err := c.tokenizer.Advance(false)
		if err != nil {
			return err
		}
		return c.makeError(tok, "end of file")
	}
	return nil
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (c *Compiler) compileClassVarDec(class *SymbolTable) error {
	kw, err := c.expectKeyword("'static' or 'field'", StaticKW, FieldKW)
	if err != nil {
		return err
	}
	kind := KindStatic
	if kw == FieldKW {
		kind = KindField
	}
	return c.compileVarNames(class, kind)
}

// varDec: 'var' type varName (',' varName)* ';'
func (c *Compiler) compileVarDec(routine *SymbolTable) error {
	if _, err := c.expectKeyword("'var'", VarKW); err != nil {
		return err
	}
	return c.compileVarNames(routine, KindVar)
}

func (c *Compiler) compileVarNames(table *SymbolTable, kind Kind) error {
	tp, err := c.compileType(false)
	if err != nil {
		return err
	}
	for {
		name, err := c.expectIdentifier("variable name")
		if err != nil {
			return err
		}
		table.Define(name, tp, kind)
		tok, err := c.tokenizer.Advance(false)
		if err != nil {
			return err
		}
		if tok.IsSymbol(";") {
			return nil
		}
		if !tok.IsSymbol(",") {
			return c.makeError(tok, "',' or ';'")
		}
	}
}

// type: 'int' | 'char' | 'boolean' | className, plus 'void' for return types.
func (c *Compiler) compileType(allowVoid bool) (string, error) {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return "", err
	}
	if tok.IsKeyword(IntKW, CharKW, BooleanKW) || (allowVoid && tok.IsKeyword(VoidKW)) {
		return tok.content, nil
	}
	if tok.Is(IdentifierToken) {
		return tok.content, nil
	}
	if allowVoid {
		return "", c.makeError(tok, "return type")
	}
	return "", c.makeError(tok, "type")
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type) subroutineName
// '(' parameterList ')' '{' varDec* statements '}'
func (c *Compiler) compileSubroutine(class *SymbolTable) error {
	kw, err := c.expectKeyword("subroutine kind", ConstructorKW, FunctionKW, MethodKW)
	if err != nil {
		return err
	}
	if _, err := c.compileType(true); err != nil {
		return err
	}
	name, err := c.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}
	routine := NewSymbolTable()
	if kw == MethodKW {
		routine.Define("this", c.className, KindArg)
	}
	if err := c.expectSymbol('('); err != nil {
		return err
	}
	if err := c.compileParameterList(routine); err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}
	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	for {
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.IsKeyword(VarKW) {
			break
		}
		if err := c.compileVarDec(routine); err != nil {
			return err
		}
	}
	c.writer.WriteFunction(c.className+"."+name, routine.VarCount(KindVar))
	switch kw {
	case ConstructorKW:
		c.writer.WritePush(ir.ConstantSegment, class.VarCount(KindField))
		c.writer.WriteCall("Memory.alloc", 1)
		c.writer.WritePop(ir.PointerSegment, 0)
	case MethodKW:
		c.writer.WritePush(ir.ArgumentSegment, 0)
		c.writer.WritePop(ir.PointerSegment, 0)
	}
	if err := c.compileStatements(scope{class: class, routine: routine}); err != nil {
		return err
	}
	return c.expectSymbol('}')
}

// parameterList: ((type varName) (',' type varName)*)?
func (c *Compiler) compileParameterList(routine *SymbolTable) error {
	tok, err := c.tokenizer.Advance(true)
	if err != nil {
		return err
	}
	if tok.IsSymbol(")") {
		return nil
	}
	for {
		tp, err := c.compileType(false)
		if err != nil {
			return err
		}
		name, err := c.expectIdentifier("parameter name")
		if err != nil {
			return err
		}
		routine.Define(name, tp, KindArg)
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.IsSymbol(",") {
			return nil
		}
		if _, err := c.tokenizer.Advance(false); err != nil {
			return err
		}
	}
}

// statements: statement*
func (c *Compiler) compileStatements(s scope) error {
	for {
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.Is(KeywordToken) {
			return nil
		}
		switch tok.keyword {
		case LetKW:
			err = c.compileLet(s)
		case IfKW:
			err = c.compileIf(s)
		case WhileKW:
			err = c.compileWhile(s)
		case DoKW:
			err = c.compileDo(s)
		case ReturnKW:
			err = c.compileReturn(s)
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (c *Compiler) compileLet(s scope) error {
	if _, err := c.expectKeyword("'let'", LetKW); err != nil {
		return err
	}
	tok, err := c.expectIdentifierToken("variable name")
	if err != nil {
		return err
	}
	symbol, err := c.resolve(s, tok)
	if err != nil {
		return err
	}
	next, err := c.tokenizer.Advance(true)
	if err != nil {
		return err
	}
	if !next.IsSymbol("[") {
		if err := c.expectSymbol('='); err != nil {
			return err
		}
		if err := c.compileExpression(s); err != nil {
			return err
		}
		if err := c.expectSymbol(';'); err != nil {
			return err
		}
		c.writePopSymbol(symbol)
		return nil
	}
	// base + index is computed before the right hand side, which may itself use that 0.
	c.tokenizer.Advance(false)
	c.writePushSymbol(symbol)
	if err := c.compileExpression(s); err != nil {
		return err
	}
	if err := c.expectSymbol(']'); err != nil {
		return err
	}
	c.writer.WriteArithmetic(ir.Add)
	if err := c.expectSymbol('='); err != nil {
		return err
	}
	if err := c.compileExpression(s); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}
	c.writer.WritePop(ir.TempSegment, 0)
	c.writer.WritePop(ir.PointerSegment, 1)
	c.writer.WritePush(ir.TempSegment, 0)
	c.writer.WritePop(ir.ThatSegment, 0)
	return nil
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (c *Compiler) compileIf(s scope) error {
	if _, err := c.expectKeyword("'if'", IfKW); err != nil {
		return err
	}
	elseLabel, endLabel := c.newLabel(), c.newLabel()
	if err := c.compileCondition(s, elseLabel); err != nil {
		return err
	}
	if err := c.compileBlock(s); err != nil {
		return err
	}
	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(elseLabel)
	tok, err := c.tokenizer.Advance(true)
	if err != nil {
		return err
	}
	if tok.IsKeyword(ElseKW) {
		c.tokenizer.Advance(false)
		if err := c.compileBlock(s); err != nil {
			return err
		}
	}
	c.writer.WriteLabel(endLabel)
	return nil
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
func (c *Compiler) compileWhile(s scope) error {
	if _, err := c.expectKeyword("'while'", WhileKW); err != nil {
		return err
	}
	exitLabel, loopLabel := c.newLabel(), c.newLabel()
	c.writer.WriteLabel(loopLabel)
	if err := c.compileCondition(s, exitLabel); err != nil {
		return err
	}
	if err := c.compileBlock(s); err != nil {
		return err
	}
	c.writer.WriteGoto(loopLabel)
	c.writer.WriteLabel(exitLabel)
	return nil
}

// compileCondition compiles '(' expression ')' and jumps to falseLabel when it is false.
func (c *Compiler) compileCondition(s scope, falseLabel string) error {
	if err := c.expectSymbol('('); err != nil {
		return err
	}
	if err := c.compileExpression(s); err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}
	c.writer.WriteArithmetic(ir.Not)
	c.writer.WriteIf(falseLabel)
	return nil
}

func (c *Compiler) compileBlock(s scope) error {
	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	if err := c.compileStatements(s); err != nil {
		return err
	}
	return c.expectSymbol('}')
}

// doStatement: 'do' subroutineCall ';'
func (c *Compiler) compileDo(s scope) error {
	if _, err := c.expectKeyword("'do'", DoKW); err != nil {
		return err
	}
	tok, err := c.expectIdentifierToken("subroutine call")
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(s, tok); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}
	c.writer.WritePop(ir.TempSegment, 0)
	return nil
}

// returnStatement: 'return' expression? ';'
func (c *Compiler) compileReturn(s scope) error {
	if _, err := c.expectKeyword("'return'", ReturnKW); err != nil {
		return err
	}
	tok, err := c.tokenizer.Advance(true)
	if err != nil {
		return err
	}
	if tok.IsSymbol(";") {
		c.tokenizer.Advance(false)
		c.writer.WritePush(ir.ConstantSegment, 0)
	} else {
		if err := c.compileExpression(s); err != nil {
			return err
		}
		if err := c.expectSymbol(';'); err != nil {
			return err
		}
	}
	c.writer.WriteReturn()
	return nil
}

// expression: term (op term)*, applied strictly from left to right.
func (c *Compiler) compileExpression(s scope) error {
	if err := c.compileTerm(s); err != nil {
		return err
	}
	for {
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		if !tok.IsSymbol(operators) {
			return nil
		}
		c.tokenizer.Advance(false)
		if err := c.compileTerm(s); err != nil {
			return err
		}
		c.writeOperator(tok.content[0])
	}
}

func (c *Compiler) writeOperator(op byte) {
	switch op {
	case '+':
		c.writer.WriteArithmetic(ir.Add)
	case '-':
		c.writer.WriteArithmetic(ir.Sub)
	case '*':
		c.writer.WriteCall("Math.multiply", 2)
	case '/':
		c.writer.WriteCall("Math.divide", 2)
	case '&':
		c.writer.WriteArithmetic(ir.And)
	case '|':
		c.writer.WriteArithmetic(ir.Or)
	case '<':
		c.writer.WriteArithmetic(ir.Lt)
	case '>':
		c.writer.WriteArithmetic(ir.Gt)
	case '=':
		c.writer.WriteArithmetic(ir.Eq)
	}
}

// term: integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']'
// | subroutineCall | '(' expression ')' | unaryOp term
func (c *Compiler) compileTerm(s scope) error {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return err
	}
	switch tok.kind {
	case IntegerToken:
		c.writer.WritePush(ir.ConstantSegment, tok.intVal)
	case StringToken:
		c.writer.WriteStringConstant(tok.content)
	case KeywordToken:
		switch tok.keyword {
		case TrueKW:
			c.writer.WritePush(ir.ConstantSegment, 1)
			c.writer.WriteArithmetic(ir.Neg)
		case FalseKW, NullKW:
			c.writer.WritePush(ir.ConstantSegment, 0)
		case ThisKW:
			c.writer.WritePush(ir.PointerSegment, 0)
		default:
			return c.makeError(tok, "term")
		}
	case SymbolToken:
		switch tok.content[0] {
		case '(':
			if err := c.compileExpression(s); err != nil {
				return err
			}
			return c.expectSymbol(')')
		case '-', '~':
			if err := c.compileTerm(s); err != nil {
				return err
			}
			if tok.content[0] == '-' {
				c.writer.WriteArithmetic(ir.Neg)
			} else {
				c.writer.WriteArithmetic(ir.Not)
			}
		default:
			return c.makeError(tok, "term")
		}
	case IdentifierToken:
		next, err := c.tokenizer.Advance(true)
		if err != nil {
			return err
		}
		switch {
		case next.IsSymbol("["):
			return c.compileArrayRead(s, tok)
		case next.IsSymbol("(."):
			return c.compileSubroutineCall(s, tok)
		}
		symbol, err := c.resolve(s, tok)
		if err != nil {
			return err
		}
		c.writePushSymbol(symbol)
	}
	return nil
}

func (c *Compiler) compileArrayRead(s scope, name *Token) error {
	symbol, err := c.resolve(s, name)
	if err != nil {
		return err
	}
	if err := c.expectSymbol('['); err != nil {
		return err
	}
	c.writePushSymbol(symbol)
	if err := c.compileExpression(s); err != nil {
		return err
	}
	if err := c.expectSymbol(']'); err != nil {
		return err
	}
	c.writer.WriteArithmetic(ir.Add)
	c.writer.WritePop(ir.PointerSegment, 1)
	c.writer.WritePush(ir.ThatSegment, 0)
	return nil
}

// subroutineCall: subroutineName '(' expressionList ')'
// | (className | varName) '.' subroutineName '(' expressionList ')'
func (c *Compiler) compileSubroutineCall(s scope, name *Token) error {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return err
	}
	var target string
	nArgs := 0
	switch {
	case tok.IsSymbol("("):
		c.writer.WritePush(ir.PointerSegment, 0)
		target = c.className + "." + name.content
		nArgs = 1
	case tok.IsSymbol("."):
		method, err := c.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if err := c.expectSymbol('('); err != nil {
			return err
		}
		if symbol, ok := s.lookup(name.content); ok {
			c.writePushSymbol(symbol)
			target = symbol.Type + "." + method
			nArgs = 1
		} else {
			target = name.content + "." + method
		}
	default:
		return c.makeError(tok, "'(' or '.'")
	}
	n, err := c.compileExpressionList(s)
	if err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}
	c.writer.WriteCall(target, nArgs+n)
	return nil
}

// expressionList: (expression (',' expression)*)?
func (c *Compiler) compileExpressionList(s scope) (int, error) {
	tok, err := c.tokenizer.Advance(true)
	if err != nil {
		return 0, err
	}
	if tok.IsSymbol(")") {
		return 0, nil
	}
	n := 0
	for {
		if err := c.compileExpression(s); err != nil {
			return 0, err
		}
		n++
		tok, err := c.tokenizer.Advance(true)
		if err != nil {
			return 0, err
		}
		if !tok.IsSymbol(",") {
			return n, nil
		}
		c.tokenizer.Advance(false)
	}
}

func (c *Compiler) resolve(s scope, tok *Token) (*Symbol, error) {
	symbol, ok := s.lookup(tok.content)
	if !ok {
		return nil, util.NewError(util.SemanticError, "Compiler", util.ErrUndefinedIdentifier, tok.line,
			tok.content, "variable %s is not declared in class %s", tok.content, c.className)
	}
	return symbol, nil
}

func (c *Compiler) writePushSymbol(symbol *Symbol) {
	seg, _ := symbol.Kind.Segment()
	c.writer.WritePush(seg, symbol.Index)
}

func (c *Compiler) writePopSymbol(symbol *Symbol) {
	seg, _ := symbol.Kind.Segment()
	c.writer.WritePop(seg, symbol.Index)
}

// newLabel returns the next label of the class, Main_0, Main_1 and so on.
func (c *Compiler) newLabel() string {
	label := fmt.Sprintf("%s_%d", c.className, c.labelCounter)
	c.labelCounter++
	return label
}

func (c *Compiler) expectKeyword(expected string, kws ...Keyword) (Keyword, error) {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return 0, err
	}
	if !tok.IsKeyword(kws...) {
		return 0, c.makeError(tok, expected)
	}
	return tok.keyword, nil
}

func (c *Compiler) expectSymbol(symbol byte) error {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return err
	}
	if !tok.IsSymbol(string(symbol)) {
		return c.makeError(tok, fmt.Sprintf("'%c'", symbol))
	}
	return nil
}

func (c *Compiler) expectIdentifierToken(expected string) (*Token, error) {
	tok, err := c.tokenizer.Advance(false)
	if err != nil {
		return nil, err
	}
	if !tok.Is(IdentifierToken) {
		return nil, c.makeError(tok, expected)
	}
	return tok, nil
}

func (c *Compiler) expectIdentifier(expected string) (string, error) {
	tok, err := c.expectIdentifierToken(expected)
	if err != nil {
		return "", err
	}
	return tok.content, nil
}

func (c *Compiler) makeError(tok *Token, expected string) error {
	return util.NewError(util.SyntaxError, "Compiler", util.ErrUnexpectedToken, tok.line, tok.content,
		"expected %s but found %s", expected, tok.kind)
}
