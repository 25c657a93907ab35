package ast

import (
	"sort"
	"strings"
)

// Identifier is a name given by the programmer, i.e myVar, myFunc, add ..ect
type Identifier struct {
	Name string
}

func (expression *Identifier) expressionNode() {}

func (expression *Identifier) String() string {
	return expression.Name
}

// IntegerLiteral is a base-10 integer literal such as `42`.
type IntegerLiteral struct {
	Value int64
	// The literal text as it appeared in the source.
	Lexeme string
}

func (expression *IntegerLiteral) expressionNode() {}

func (expression *IntegerLiteral) String() string {
	return expression.Lexeme
}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value bool
}

func (expression *BooleanLiteral) expressionNode() {}

func (expression *BooleanLiteral) String() string {
	if expression.Value {
		return "true"
	}
	return "false"
}

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	Value string
}

func (expression *StringLiteral) expressionNode() {}

func (expression *StringLiteral) String() string {
	return expression.Value
}

// Prefix represents a prefix operation expression, e.g "!a" or "-b".
// It consists of an operator and a single right-hand expression.
type Prefix struct {
	Operator string
	Right    Expression
}

func (expression *Prefix) expressionNode() {}

func (expression *Prefix) String() string {
	var builder strings.Builder
	builder.WriteString("(")
	builder.WriteString(expression.Operator)
	builder.WriteString(expression.Right.String())
	builder.WriteString(")")
	return builder.String()
}

// Infix represents a binary operation expression, e.g "a + b".
// It consists of a left-hand side expression, an operator, and a
// right-hand side expression.
type Infix struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (expression *Infix) expressionNode() {}

func (expression *Infix) String() string {
	var builder strings.Builder
	builder.WriteString("(")
	builder.WriteString(expression.Left.String())
	builder.WriteString(" ")
	builder.WriteString(expression.Operator)
	builder.WriteString(" ")
	builder.WriteString(expression.Right.String())
	builder.WriteString(")")
	return builder.String()
}

// If is a conditional expression with a required consequence block and an
// optional alternative block. The whole form produces a value: the last
// expression of the taken branch, or null when the condition is falsy and
// no alternative exists.
type If struct {
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (expression *If) expressionNode() {}

func (expression *If) String() string {
	var builder strings.Builder
	builder.WriteString("if")
	builder.WriteString(expression.Condition.String())
	builder.WriteString(" ")
	builder.WriteString(expression.Consequence.String())
	if expression.Alternative != nil {
		builder.WriteString("else ")
		builder.WriteString(expression.Alternative.String())
	}
	return builder.String()
}

// FunctionLiteral is a function value expression: `fn(params) { body }`.
// Name is set only when the literal is bound directly by a let statement;
// it is used for tooling and for compiling self-recursive calls.
type FunctionLiteral struct {
	Parameters []*Identifier
	Body       *BlockStatement
	Name       string
}

func (expression *FunctionLiteral) expressionNode() {}

func (expression *FunctionLiteral) String() string {
	params := make([]string, 0, len(expression.Parameters))
	for _, parameter := range expression.Parameters {
		params = append(params, parameter.String())
	}

	var builder strings.Builder
	builder.WriteString("fn")
	if expression.Name != "" {
		builder.WriteString("<" + expression.Name + ">")
	}
	builder.WriteString("(")
	builder.WriteString(strings.Join(params, ", "))
	builder.WriteString(") ")
	builder.WriteString(expression.Body.String())
	return builder.String()
}

// Call applies a function expression to a list of argument expressions.
type Call struct {
	Function  Expression
	Arguments []Expression
}

func (expression *Call) expressionNode() {}

func (expression *Call) String() string {
	args := make([]string, 0, len(expression.Arguments))
	for _, argument := range expression.Arguments {
		args = append(args, argument.String())
	}

	var builder strings.Builder
	builder.WriteString(expression.Function.String())
	builder.WriteString("(")
	builder.WriteString(strings.Join(args, ", "))
	builder.WriteString(")")
	return builder.String()
}

// ArrayLiteral is a bracketed, comma-separated list of element expressions.
type ArrayLiteral struct {
	Elements []Expression
}

func (expression *ArrayLiteral) expressionNode() {}

func (expression *ArrayLiteral) String() string {
	elements := make([]string, 0, len(expression.Elements))
	for _, element := range expression.Elements {
		elements = append(elements, element.String())
	}

	var builder strings.Builder
	builder.WriteString("[")
	builder.WriteString(strings.Join(elements, ", "))
	builder.WriteString("]")
	return builder.String()
}

// HashPair is a single `key : value` entry of a hash literal.
type HashPair struct {
	Key   Expression
	Value Expression
}

// HashLiteral is a brace-delimited, comma-separated list of `key : value`
// pairs. Pairs preserves source order; SortedPairs yields the deterministic
// order both engines iterate in.
type HashLiteral struct {
	Pairs []HashPair
}

func (expression *HashLiteral) expressionNode() {}

// SortedPairs returns the hash pairs ordered lexicographically by the
// canonical string form of the key expression. Constant emission order in
// the compiler and key evaluation order in both engines follow this order,
// keeping the generated bytecode and observable effects stable.
func (expression *HashLiteral) SortedPairs() []HashPair {
	pairs := make([]HashPair, len(expression.Pairs))
	copy(pairs, expression.Pairs)
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Key.String() < pairs[j].Key.String()
	})
	return pairs
}

func (expression *HashLiteral) String() string {
	pairs := make([]string, 0, len(expression.Pairs))
	for _, pair := range expression.Pairs {
		pairs = append(pairs, pair.Key.String()+":"+pair.Value.String())
	}

	var builder strings.Builder
	builder.WriteString("{")
	builder.WriteString(strings.Join(pairs, ", "))
	builder.WriteString("}")
	return builder.String()
}

// Index selects an element out of an array or hash: `left[index]`.
type Index struct {
	Left  Expression
	Index Expression
}

func (expression *Index) expressionNode() {}

func (expression *Index) String() string {
	var builder strings.Builder
	builder.WriteString("(")
	builder.WriteString(expression.Left.String())
	builder.WriteString("[")
	builder.WriteString(expression.Index.String())
	builder.WriteString("])")
	return builder.String()
}
