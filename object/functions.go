package object

import (
	"fmt"
	"strings"

	"marmot/ast"
)

// Function is the tree-walking engine's function value: the literal's
// parameters and body together with the environment captured at the point
// the literal was evaluated.
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (function *Function) Type() ObjectType { return FUNCTION_OBJ }

func (function *Function) Inspect() string {
	params := make([]string, 0, len(function.Parameters))
	for _, parameter := range function.Parameters {
		params = append(params, parameter.String())
	}

	var builder strings.Builder
	builder.WriteString("fn(")
	builder.WriteString(strings.Join(params, ", "))
	builder.WriteString(") {\n")
	builder.WriteString(function.Body.String())
	builder.WriteString("\n}")
	return builder.String()
}

// CompiledFunction is the bytecode engine's function value: the compiled
// instruction stream plus the frame layout it requires. Instructions is a
// raw byte sequence in the compiler package's instruction encoding.
type CompiledFunction struct {
	Instructions  []byte
	NumLocals     int
	NumParameters int
}

func (function *CompiledFunction) Type() ObjectType { return COMPILED_FUNCTION_OBJ }

func (function *CompiledFunction) Inspect() string {
	return fmt.Sprintf("CompiledFunction[%p]", function)
}

// Closure pairs a compiled function with the values of its free variables,
// captured at closure-construction time.
type Closure struct {
	Fn   *CompiledFunction
	Free []Object
}

func (closure *Closure) Type() ObjectType { return CLOSURE_OBJ }

func (closure *Closure) Inspect() string {
	return fmt.Sprintf("Closure[%p]", closure)
}

// BuiltinFunction is the signature shared by all builtin functions. A nil
// result stands for null; the engines map it onto the Null singleton.
type BuiltinFunction func(args ...Object) Object

// Builtin wraps a native function exposed to the language.
type Builtin struct {
	Fn BuiltinFunction
}

func (builtin *Builtin) Type() ObjectType { return BUILTIN_OBJ }

func (builtin *Builtin) Inspect() string { return "builtin function" }
