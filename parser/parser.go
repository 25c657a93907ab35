// Pratt parser (top-down operator precedence parsing).
//
// Every token type maps to a parseRule holding an optional prefix parsing
// function, an optional infix parsing function, and the token's precedence
// level. Expression parsing applies the prefix rule for the current token
// and then folds in infix rules for as long as the next token binds tighter
// than the caller's precedence.
package parser

import (
	"fmt"
	"strconv"

	"marmot/ast"
	"marmot/lexer"
	"marmot/token"
)

// Precedence levels for the grammar's rules, ordered from lowest to highest.
const (
	PREC_LOWEST      = iota
	PREC_EQUALS      // ==, !=
	PREC_LESSGREATER // <, >
	PREC_SUM         // +, -
	PREC_PRODUCT     // *, /
	PREC_PREFIX      // -x, !x
	PREC_CALL        // myFunc(x)
	PREC_INDEX       // myArray[x]   HIGHEST PRECEDENCE
)

type prefixParseFunc func(*Parser) ast.Expression

type infixParseFunc func(*Parser, ast.Expression) ast.Expression

// Defines the parsing behavior for a specific token type.
// It contains optional prefix and infix parsing functions, and the
// precedence level of the token.
type parseRule struct {
	prefix     prefixParseFunc
	infix      infixParseFunc
	precedence int
}

// Parser consumes the lexer's token stream and produces an ast.Program.
// Parsing never aborts on a mismatch: every violated expectation appends a
// human-readable message to the parser's error list and parsing carries on
// with a best-effort result. Callers must check Errors before handing the
// program to an engine.
type Parser struct {
	lexer *lexer.Lexer

	// The token currently being examined and the one after it. The parser
	// always keeps one token of look-ahead.
	currentTok token.Token
	nextTok    token.Token

	errors []string

	parsingRules map[token.TokenType]parseRule
}

// Make initializes and returns a new Parser instance reading from the
// provided lexer.
func Make(lexer *lexer.Lexer) *Parser {
	parser := &Parser{
		lexer:  lexer,
		errors: []string{},

		parsingRules: map[token.TokenType]parseRule{
			token.IDENTIFIER:  {prefix: (*Parser).identifier, precedence: PREC_LOWEST},
			token.INT:         {prefix: (*Parser).integerLiteral, precedence: PREC_LOWEST},
			token.STRING:      {prefix: (*Parser).stringLiteral, precedence: PREC_LOWEST},
			token.TRUE:        {prefix: (*Parser).booleanLiteral, precedence: PREC_LOWEST},
			token.FALSE:       {prefix: (*Parser).booleanLiteral, precedence: PREC_LOWEST},
			token.BANG:        {prefix: (*Parser).prefixExpression, precedence: PREC_LOWEST},
			token.SUB:         {prefix: (*Parser).prefixExpression, infix: (*Parser).infixExpression, precedence: PREC_SUM},
			token.ADD:         {infix: (*Parser).infixExpression, precedence: PREC_SUM},
			token.MULT:        {infix: (*Parser).infixExpression, precedence: PREC_PRODUCT},
			token.DIV:         {infix: (*Parser).infixExpression, precedence: PREC_PRODUCT},
			token.EQUAL_EQUAL: {infix: (*Parser).infixExpression, precedence: PREC_EQUALS},
			token.NOT_EQUAL:   {infix: (*Parser).infixExpression, precedence: PREC_EQUALS},
			token.LESS:        {infix: (*Parser).infixExpression, precedence: PREC_LESSGREATER},
			token.LARGER:      {infix: (*Parser).infixExpression, precedence: PREC_LESSGREATER},
			token.LPA:         {prefix: (*Parser).grouping, infix: (*Parser).callExpression, precedence: PREC_CALL},
			token.LBRACKET:    {prefix: (*Parser).arrayLiteral, infix: (*Parser).indexExpression, precedence: PREC_INDEX},
			token.LCUR:        {prefix: (*Parser).hashLiteral, precedence: PREC_LOWEST},
			token.IF:          {prefix: (*Parser).ifExpression, precedence: PREC_LOWEST},
			token.FUNC:        {prefix: (*Parser).functionLiteral, precedence: PREC_LOWEST},
		},
	}

	// populate currentTok and nextTok
	parser.advance()
	parser.advance()
	return parser
}

// Errors returns the accumulated parse error messages.
func (parser *Parser) Errors() []string {
	return parser.errors
}

// Consumes the current token by pulling the next one from the lexer.
func (parser *Parser) advance() {
	parser.currentTok = parser.nextTok
	parser.nextTok = parser.lexer.NextToken()
}

// Determines if the provided tokenType matches the type of the token
// currently being examined.
func (parser *Parser) checkCurrent(tokenType token.TokenType) bool {
	return parser.currentTok.TokenType == tokenType
}

// Determines if the provided tokenType matches the type of the
// look-ahead token.
func (parser *Parser) checkNext(tokenType token.TokenType) bool {
	return parser.nextTok.TokenType == tokenType
}

// Consumes the look-ahead token by advancing the parser if its type matches
// the provided tokenType. On a mismatch an error is recorded and the parser
// stays put.
func (parser *Parser) consume(tokenType token.TokenType) bool {
	if parser.checkNext(tokenType) {
		parser.advance()
		return true
	}
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", tokenType, parser.nextTok.TokenType)
	parser.errors = append(parser.errors, msg)
	return false
}

// Retrieves the parsing rule associated with the given token type. A zero
// rule (no prefix, no infix, lowest precedence) is returned for token types
// that take no part in expressions.
func (parser *Parser) getParseRule(tokenType token.TokenType) parseRule {
	rule, ok := parser.parsingRules[tokenType]
	if !ok {
		return parseRule{}
	}
	return rule
}

// ParseProgram parses the whole token stream into an ast.Program,
// continuing until EOF. Errors during parsing are collected but parsing
// continues to find additional errors where possible.
func (parser *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !parser.checkCurrent(token.EOF) {
		statement := parser.statement()
		if statement != nil {
			program.Statements = append(program.Statements, statement)
		}
		parser.advance()
	}

	return program
}

// statement dispatches on the current token: `let` and `return` introduce
// their dedicated statement forms, everything else parses as an
// expression statement.
func (parser *Parser) statement() ast.Statement {
	switch parser.currentTok.TokenType {
	case token.LET:
		return parser.letStatement()
	case token.RETURN:
		return parser.returnStatement()
	default:
		return parser.expressionStatement()
	}
}

// letStatement parses `let <identifier> = <expression> [;]`.
//
// If the bound expression is a function literal, the identifier's name is
// recorded onto the literal so the compiler can resolve self-recursive
// calls and tooling can label the function.
func (parser *Parser) letStatement() ast.Statement {
	if !parser.consume(token.IDENTIFIER) {
		return nil
	}
	name := &ast.Identifier{Name: parser.currentTok.Lexeme}

	if !parser.consume(token.ASSIGN) {
		return nil
	}
	parser.advance()

	value := parser.expression(PREC_LOWEST)
	if functionLiteral, ok := value.(*ast.FunctionLiteral); ok {
		functionLiteral.Name = name.Name
	}

	if parser.checkNext(token.SEMICOLON) {
		parser.advance()
	}

	return &ast.LetStatement{Name: name, Value: value}
}

// returnStatement parses `return <expression> [;]`.
func (parser *Parser) returnStatement() ast.Statement {
	parser.advance()

	value := parser.expression(PREC_LOWEST)

	if parser.checkNext(token.SEMICOLON) {
		parser.advance()
	}

	return &ast.ReturnStatement{Value: value}
}

// expressionStatement parses a statement consisting of a single expression
// with an optional trailing semicolon.
func (parser *Parser) expressionStatement() ast.Statement {
	expression := parser.expression(PREC_LOWEST)

	if parser.checkNext(token.SEMICOLON) {
		parser.advance()
	}

	return &ast.ExpressionStatement{Expression: expression}
}

// block parses a brace-delimited statement list. The current token is the
// opening brace on entry and the closing brace on exit.
func (parser *Parser) block() *ast.BlockStatement {
	block := &ast.BlockStatement{Statements: []ast.Statement{}}

	parser.advance()
	for !parser.checkCurrent(token.RCUR) && !parser.checkCurrent(token.EOF) {
		statement := parser.statement()
		if statement != nil {
			block.Statements = append(block.Statements, statement)
		}
		parser.advance()
	}

	return block
}

// expression parses an expression whose binding power exceeds the provided
// precedence level. It applies the prefix rule for the current token and
// then, while the look-ahead token is not a semicolon and its precedence is
// higher than the caller's, consumes it and applies its infix rule to the
// left-hand expression parsed so far.
func (parser *Parser) expression(precedence int) ast.Expression {
	rule := parser.getParseRule(parser.currentTok.TokenType)
	if rule.prefix == nil {
		msg := fmt.Sprintf("no prefix parse function for %s found", parser.currentTok.TokenType)
		parser.errors = append(parser.errors, msg)
		return nil
	}
	left := rule.prefix(parser)

	for !parser.checkNext(token.SEMICOLON) && precedence < parser.getParseRule(parser.nextTok.TokenType).precedence {
		infix := parser.getParseRule(parser.nextTok.TokenType).infix
		if infix == nil {
			return left
		}
		parser.advance()
		left = infix(parser, left)
	}

	return left
}

func (parser *Parser) identifier() ast.Expression {
	return &ast.Identifier{Name: parser.currentTok.Lexeme}
}

func (parser *Parser) integerLiteral() ast.Expression {
	value, err := strconv.ParseInt(parser.currentTok.Lexeme, 10, 64)
	if err != nil {
		msg := fmt.Sprintf("could not parse %q as integer", parser.currentTok.Lexeme)
		parser.errors = append(parser.errors, msg)
		return nil
	}
	return &ast.IntegerLiteral{Value: value, Lexeme: parser.currentTok.Lexeme}
}

func (parser *Parser) stringLiteral() ast.Expression {
	return &ast.StringLiteral{Value: parser.currentTok.Lexeme}
}

func (parser *Parser) booleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Value: parser.checkCurrent(token.TRUE)}
}

// prefixExpression parses a unary prefix operation (!x, -x). The operand is
// parsed at prefix precedence so that `-a * b` groups as `((-a) * b)`.
func (parser *Parser) prefixExpression() ast.Expression {
	operator := parser.currentTok.Lexeme
	parser.advance()
	return &ast.Prefix{Operator: operator, Right: parser.expression(PREC_PREFIX)}
}

// infixExpression parses a binary operation. The right-hand operand is
// parsed at the operator's own precedence, which makes operators of equal
// precedence left-associative.
func (parser *Parser) infixExpression(left ast.Expression) ast.Expression {
	operator := parser.currentTok.Lexeme
	precedence := parser.getParseRule(parser.currentTok.TokenType).precedence
	parser.advance()
	return &ast.Infix{Left: left, Operator: operator, Right: parser.expression(precedence)}
}

// grouping handles parenthesized expressions.
func (parser *Parser) grouping() ast.Expression {
	parser.advance()
	expression := parser.expression(PREC_LOWEST)
	if !parser.consume(token.RPA) {
		return nil
	}
	return expression
}

// ifExpression parses `if (<cond>) { <consequence> }` with an optional
// `else { <alternative> }`.
func (parser *Parser) ifExpression() ast.Expression {
	if !parser.consume(token.LPA) {
		return nil
	}
	parser.advance()
	condition := parser.expression(PREC_LOWEST)

	if !parser.consume(token.RPA) {
		return nil
	}
	if !parser.consume(token.LCUR) {
		return nil
	}
	consequence := parser.block()

	var alternative *ast.BlockStatement
	if parser.checkNext(token.ELSE) {
		parser.advance()
		if !parser.consume(token.LCUR) {
			return nil
		}
		alternative = parser.block()
	}

	return &ast.If{Condition: condition, Consequence: consequence, Alternative: alternative}
}

// functionLiteral parses `fn(<params>) { <body> }`.
func (parser *Parser) functionLiteral() ast.Expression {
	if !parser.consume(token.LPA) {
		return nil
	}
	parameters := parser.functionParameters()

	if !parser.consume(token.LCUR) {
		return nil
	}
	return &ast.FunctionLiteral{Parameters: parameters, Body: parser.block()}
}

// functionParameters parses the comma-separated identifier list of a
// function literal, up to and including the closing parenthesis.
func (parser *Parser) functionParameters() []*ast.Identifier {
	parameters := []*ast.Identifier{}

	if parser.checkNext(token.RPA) {
		parser.advance()
		return parameters
	}

	parser.advance()
	parameters = append(parameters, &ast.Identifier{Name: parser.currentTok.Lexeme})

	for parser.checkNext(token.COMMA) {
		parser.advance()
		parser.advance()
		parameters = append(parameters, &ast.Identifier{Name: parser.currentTok.Lexeme})
	}

	if !parser.consume(token.RPA) {
		return nil
	}

	return parameters
}

func (parser *Parser) arrayLiteral() ast.Expression {
	return &ast.ArrayLiteral{Elements: parser.expressionList(token.RBRACKET)}
}

// hashLiteral parses `{ <key> : <value>, ... }`. Pairs are kept in source
// order on the node; engines iterate them through ast.HashLiteral.SortedPairs.
func (parser *Parser) hashLiteral() ast.Expression {
	hash := &ast.HashLiteral{Pairs: []ast.HashPair{}}

	for !parser.checkNext(token.RCUR) {
		parser.advance()
		key := parser.expression(PREC_LOWEST)

		if !parser.consume(token.COLON) {
			return nil
		}
		parser.advance()
		value := parser.expression(PREC_LOWEST)

		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		if !parser.checkNext(token.RCUR) && !parser.consume(token.COMMA) {
			return nil
		}
	}

	if !parser.consume(token.RCUR) {
		return nil
	}

	return hash
}

// expressionList parses a comma-separated expression sequence terminated by
// the provided closing token type.
func (parser *Parser) expressionList(closing token.TokenType) []ast.Expression {
	expressions := []ast.Expression{}

	if parser.checkNext(closing) {
		parser.advance()
		return expressions
	}

	parser.advance()
	expressions = append(expressions, parser.expression(PREC_LOWEST))

	for parser.checkNext(token.COMMA) {
		parser.advance()
		parser.advance()
		expressions = append(expressions, parser.expression(PREC_LOWEST))
	}

	if !parser.consume(closing) {
		return nil
	}

	return expressions
}

// callExpression parses the argument list of a call, with the already
// parsed callee on the left.
func (parser *Parser) callExpression(function ast.Expression) ast.Expression {
	return &ast.Call{Function: function, Arguments: parser.expressionList(token.RPA)}
}

// indexExpression parses `<left>[<index>]`.
func (parser *Parser) indexExpression(left ast.Expression) ast.Expression {
	parser.advance()
	index := parser.expression(PREC_LOWEST)
	if !parser.consume(token.RBRACKET) {
		return nil
	}
	return &ast.Index{Left: left, Index: index}
}
