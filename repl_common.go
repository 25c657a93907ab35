package main

import (
	"io"

	"github.com/fatih/color"

	"marmot/ast"
	"marmot/lexer"
	"marmot/parser"
	"marmot/token"
)

const prompt = ">>> "

const continuationPrompt = "... "

// Color definitions for REPL output: errors in red, banner in cyan.
var (
	redColor  = color.New(color.FgRed)
	cyanColor = color.New(color.FgCyan)
)

func printBanner(out io.Writer, engine string) {
	cyanColor.Fprintf(out, "Marmot programming language (%s engine)\n", engine)
	cyanColor.Fprintln(out, "Type code and press enter. Ctrl-D exits.")
}

func printParserErrors(out io.Writer, errors []string) {
	redColor.Fprintln(out, "parser errors:")
	for _, msg := range errors {
		redColor.Fprintf(out, "\t%s\n", msg)
	}
}

// parseSource lexes and parses a source string, reporting parser errors to
// out. The returned program is nil when errors were found.
func parseSource(out io.Writer, source string) *ast.Program {
	p := parser.Make(lexer.New(source))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		printParserErrors(out, p.Errors())
		return nil
	}
	return program
}

// isInputReady reports whether a buffered REPL input forms a complete
// unit: no delimiter is left open and the input does not end on a token
// that expects a continuation. While it returns false the REPL keeps
// reading lines into the buffer.
func isInputReady(source string) bool {
	lex := lexer.New(source)

	balance := 0
	var last token.Token
	for {
		tok := lex.NextToken()
		if tok.TokenType == token.EOF {
			break
		}
		switch tok.TokenType {
		case token.LCUR, token.LPA, token.LBRACKET:
			balance++
		case token.RCUR, token.RPA, token.RBRACKET:
			balance--
		}
		last = tok
	}

	if balance > 0 {
		return false
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.ADD,
		token.SUB,
		token.MULT,
		token.DIV,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LARGER,
		token.COMMA,
		token.COLON,
		token.LET,
		token.RETURN,
		token.IF,
		token.ELSE,
		token.FUNC:
		return false
	}

	return true
}
