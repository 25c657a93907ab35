package ast

import "strings"

// Node is the base interface for every node in the abstract syntax tree.
// Each node renders itself to a canonical string form through String; the
// parser tests rely on this form to assert operator precedence, and the
// engines rely on it for deterministic hash-literal ordering. The form is not
// always valid source: string literals print without quotes, and blocks,
// conditionals and function literals print without braces.
type Node interface {
	String() string
}

// Statement is implemented by nodes that represent an action in a program
// (a let binding, a return, a block, or a bare expression). Statements do
// not themselves produce values.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by nodes that produce a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node produced by the parser: an ordered sequence of
// top level statements.
type Program struct {
	Statements []Statement
}

func (program *Program) String() string {
	var builder strings.Builder
	for _, statement := range program.Statements {
		builder.WriteString(statement.String())
	}
	return builder.String()
}
