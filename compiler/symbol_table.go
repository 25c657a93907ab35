package compiler

// SymbolScope classifies where a resolved name lives at run time, which in
// turn selects the load/store opcode the compiler emits for it.
type SymbolScope string

const (
	GlobalScope  SymbolScope = "GLOBAL"
	LocalScope   SymbolScope = "LOCAL"
	BuiltinScope SymbolScope = "BUILTIN"
	FreeScope    SymbolScope = "FREE"

	// FunctionScope refers to the function currently being compiled by its
	// own name, so a recursive call loads the running closure instead of
	// capturing it.
	FunctionScope SymbolScope = "FUNCTION"
)

// Symbol binds a name to its scope and its index within that scope.
type Symbol struct {
	Name  string
	Scope SymbolScope
	Index int
}

// SymbolTable tracks name bindings for one compilation scope, chaining to
// the table of the enclosing scope. Resolving a name defined in an
// enclosing function records it as a free variable of this table, which is
// how closure capture is discovered.
type SymbolTable struct {
	outer *SymbolTable

	// FreeSymbols lists, in first-observation order, the symbols of the
	// enclosing scope that the scope under compilation captures.
	FreeSymbols []Symbol

	store          map[string]Symbol
	numDefinitions int
}

// MakeSymbolTable initializes an empty top level symbol table.
func MakeSymbolTable() *SymbolTable {
	return &SymbolTable{
		store:       make(map[string]Symbol),
		FreeSymbols: []Symbol{},
	}
}

// MakeNestedSymbolTable initializes a symbol table for a scope nested
// inside the scope tracked by outer.
func MakeNestedSymbolTable(outer *SymbolTable) *SymbolTable {
	table := MakeSymbolTable()
	table.outer = outer
	return table
}

// NumDefinitions reports how many names have been defined directly in this
// scope; the compiler uses it to size a function's local slots.
func (table *SymbolTable) NumDefinitions() int {
	return table.numDefinitions
}

// Define binds a name in this scope, assigning indices from 0 upward. The
// top level table yields Global symbols, nested tables yield Locals.
func (table *SymbolTable) Define(name string) Symbol {
	symbol := Symbol{Name: name, Index: table.numDefinitions}
	if table.outer == nil {
		symbol.Scope = GlobalScope
	} else {
		symbol.Scope = LocalScope
	}
	table.store[name] = symbol
	table.numDefinitions++
	return symbol
}

// DefineBuiltin binds a builtin name at a caller-chosen index, without
// counting towards the scope's definitions.
func (table *SymbolTable) DefineBuiltin(index int, name string) Symbol {
	symbol := Symbol{Name: name, Scope: BuiltinScope, Index: index}
	table.store[name] = symbol
	return symbol
}

// DefineFunctionName binds the name of the function whose body is being
// compiled, so the body can refer to the function itself.
func (table *SymbolTable) DefineFunctionName(name string) Symbol {
	symbol := Symbol{Name: name, Scope: FunctionScope, Index: 0}
	table.store[name] = symbol
	return symbol
}

// defineFree re-registers a symbol of an enclosing scope as a free
// variable of this one and returns the Free symbol replacing it locally.
func (table *SymbolTable) defineFree(original Symbol) Symbol {
	table.FreeSymbols = append(table.FreeSymbols, original)

	symbol := Symbol{Name: original.Name, Scope: FreeScope, Index: len(table.FreeSymbols) - 1}
	table.store[original.Name] = symbol
	return symbol
}

// Resolve searches for a name in this scope and then outward through the
// enclosing chain. A hit in an enclosing function's locals (or frees) is
// converted into a free variable of this scope, so the compiler emits the
// capture when it closes over the inner function.
func (table *SymbolTable) Resolve(name string) (Symbol, bool) {
	symbol, ok := table.store[name]
	if !ok && table.outer != nil {
		symbol, ok = table.outer.Resolve(name)
		if !ok {
			return symbol, ok
		}
		if symbol.Scope == GlobalScope || symbol.Scope == BuiltinScope {
			return symbol, ok
		}
		return table.defineFree(symbol), true
	}
	return symbol, ok
}
