package object

// This file defines the builtin functions available to Marmot programs.
// The slice order is part of the bytecode contract: the compiler emits
// OP_GET_BUILTIN with an index into this slice, so reordering entries
// changes the meaning of compiled programs.

import "fmt"

// Builtins lists every builtin with its name, in the fixed index order
// shared by the compiler's symbol table and the VM.
var Builtins = []struct {
	Name    string
	Builtin *Builtin
}{
	{"len", &Builtin{Fn: lenBuiltin}},
	{"puts", &Builtin{Fn: putsBuiltin}},
	{"first", &Builtin{Fn: firstBuiltin}},
	{"last", &Builtin{Fn: lastBuiltin}},
	{"rest", &Builtin{Fn: restBuiltin}},
	{"push", &Builtin{Fn: pushBuiltin}},
}

// GetBuiltinByName retrieves a builtin by name, or nil if no builtin with
// that name exists. The tree-walking engine resolves builtins through this
// lookup; index-based resolution in the VM must agree with it.
func GetBuiltinByName(name string) *Builtin {
	for _, definition := range Builtins {
		if definition.Name == name {
			return definition.Builtin
		}
	}
	return nil
}

// lenBuiltin returns the byte length of a string or the element count of
// an array.
func lenBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return NewError("wrong number of arguments. got=%d, want=1", len(args))
	}

	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len(arg.Value))}
	case *Array:
		return &Integer{Value: int64(len(arg.Elements))}
	default:
		return NewError("argument to `len` not supported, got %s", args[0].Type())
	}
}

// putsBuiltin prints each argument's display form on its own line and
// returns null.
func putsBuiltin(args ...Object) Object {
	for _, arg := range args {
		fmt.Println(arg.Inspect())
	}
	return nil
}

// firstBuiltin returns the first element of an array, or null for an
// empty array.
func firstBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return NewError("wrong number of arguments. got=%d, want=1", len(args))
	}
	array, ok := args[0].(*Array)
	if !ok {
		return NewError("argument to `first` must be ARRAY, got %s", args[0].Type())
	}

	if len(array.Elements) > 0 {
		return array.Elements[0]
	}
	return nil
}

// lastBuiltin returns the last element of an array, or null for an
// empty array.
func lastBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return NewError("wrong number of arguments. got=%d, want=1", len(args))
	}
	array, ok := args[0].(*Array)
	if !ok {
		return NewError("argument to `last` must be ARRAY, got %s", args[0].Type())
	}

	if length := len(array.Elements); length > 0 {
		return array.Elements[length-1]
	}
	return nil
}

// restBuiltin returns a new array holding all but the first element, or
// null for an empty array. The argument is left untouched.
func restBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return NewError("wrong number of arguments. got=%d, want=1", len(args))
	}
	array, ok := args[0].(*Array)
	if !ok {
		return NewError("argument to `rest` must be ARRAY, got %s", args[0].Type())
	}

	length := len(array.Elements)
	if length == 0 {
		return nil
	}
	elements := make([]Object, length-1)
	copy(elements, array.Elements[1:])
	return &Array{Elements: elements}
}

// pushBuiltin returns a new array with the second argument appended. The
// original array is left untouched.
func pushBuiltin(args ...Object) Object {
	if len(args) != 2 {
		return NewError("wrong number of arguments. got=%d, want=2", len(args))
	}
	array, ok := args[0].(*Array)
	if !ok {
		return NewError("argument to `push` must be ARRAY, got %s", args[0].Type())
	}

	length := len(array.Elements)
	elements := make([]Object, length+1)
	copy(elements, array.Elements)
	elements[length] = args[1]
	return &Array{Elements: elements}
}
