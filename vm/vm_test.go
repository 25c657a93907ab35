package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marmot/ast"
	"marmot/compiler"
	"marmot/lexer"
	"marmot/object"
	"marmot/parser"
)

type vmTestCase struct {
	input    string
	expected any
}

func parseInput(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := parser.Make(lexer.New(input))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "parser errors for input %q", input)
	return program
}

func compileInput(t *testing.T, input string) *compiler.Bytecode {
	t.Helper()
	comp := compiler.New()
	require.NoError(t, comp.Compile(parseInput(t, input)), "input %q", input)
	return comp.Bytecode()
}

func assertIntegerObject(t *testing.T, obj object.Object, expected int64) {
	t.Helper()
	integer, ok := obj.(*object.Integer)
	require.True(t, ok, "object is %T (%+v), not *object.Integer", obj, obj)
	assert.Equal(t, expected, integer.Value)
}

func assertExpectedObject(t *testing.T, expected any, actual object.Object) {
	t.Helper()

	switch expected := expected.(type) {
	case int:
		assertIntegerObject(t, actual, int64(expected))
	case bool:
		assert.Same(t, object.NativeBoolToBoolean(expected), actual)
	case string:
		str, ok := actual.(*object.String)
		require.True(t, ok, "object is %T (%+v), not *object.String", actual, actual)
		assert.Equal(t, expected, str.Value)
	case []int:
		array, ok := actual.(*object.Array)
		require.True(t, ok, "object is %T (%+v), not *object.Array", actual, actual)
		require.Len(t, array.Elements, len(expected))
		for i, value := range expected {
			assertIntegerObject(t, array.Elements[i], int64(value))
		}
	case map[object.HashKey]int64:
		hash, ok := actual.(*object.Hash)
		require.True(t, ok, "object is %T (%+v), not *object.Hash", actual, actual)
		require.Len(t, hash.Pairs, len(expected))
		for key, value := range expected {
			pair, ok := hash.Pairs[key]
			require.True(t, ok, "no pair for key %+v", key)
			assertIntegerObject(t, pair.Value, value)
		}
	case *object.Error:
		err, ok := actual.(*object.Error)
		require.True(t, ok, "object is %T (%+v), not *object.Error", actual, actual)
		assert.Equal(t, expected.Message, err.Message)
	case nil:
		assert.Same(t, object.NullValue, actual)
	default:
		t.Fatalf("unhandled expected type %T", expected)
	}
}

func runVmTests(t *testing.T, tests []vmTestCase) {
	t.Helper()

	for _, tt := range tests {
		machine := New(compileInput(t, tt.input))
		require.NoError(t, machine.Run(), "input %q", tt.input)
		assertExpectedObject(t, tt.expected, machine.LastPoppedStackElem())
	}
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []vmTestCase{
		{"1", 1},
		{"2", 2},
		{"1 + 2", 3},
		{"1 - 2", -1},
		{"1 * 2", 2},
		{"4 / 2", 2},
		{"50 / 2 * 2 + 10 - 5", 55},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"5 * (2 + 10)", 60},
		{"-5", -5},
		{"-10", -10},
		{"-50 + 100 + -50", 0},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"-7 / 2", -3},
	}

	runVmTests(t, tests)
}

func TestBooleanExpressions(t *testing.T) {
	tests := []vmTestCase{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 > 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 == 2", false},
		{"1 != 2", true},
		{"true == true", true},
		{"false == false", true},
		{"true == false", false},
		{"true != false", true},
		{"false != true", true},
		{"(1 < 2) == true", true},
		{"(1 < 2) == false", false},
		{"(1 > 2) == true", false},
		{"(1 > 2) == false", true},
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!!true", true},
		{"!!false", false},
		{"!!5", true},
		{"!(if (false) { 5; })", true},
		// integer-vs-non-integer comparisons fall back to identity
		{"1 == true", false},
		{"1 != true", true},
	}

	runVmTests(t, tests)
}

func TestConditionals(t *testing.T) {
	tests := []vmTestCase{
		{"if (true) { 10 }", 10},
		{"if (true) { 10 } else { 20 }", 10},
		{"if (false) { 10 } else { 20 }", 20},
		{"if (1) { 10 }", 10},
		{"if (1 < 2) { 10 }", 10},
		{"if (1 < 2) { 10 } else { 20 }", 10},
		{"if (1 > 2) { 10 } else { 20 }", 20},
		{"if (1 > 2) { 10 }", nil},
		{"if (false) { 10 }", nil},
		{"if ((if (false) { 10 })) { 10 } else { 20 }", 20},
	}

	runVmTests(t, tests)
}

func TestGlobalLetStatements(t *testing.T) {
	tests := []vmTestCase{
		{"let one = 1; one", 1},
		{"let one = 1; let two = 2; one + two", 3},
		{"let one = 1; let two = one + one; one + two", 3},
	}

	runVmTests(t, tests)
}

func TestStringExpressions(t *testing.T) {
	tests := []vmTestCase{
		{`"marmot"`, "marmot"},
		{`"mar" + "mot"`, "marmot"},
		{`"mar" + "mot" + "!"`, "marmot!"},
		{`"a" == "a"`, true},
		{`"a" == "b"`, false},
		{`"a" != "b"`, true},
	}

	runVmTests(t, tests)
}

func TestArrayLiterals(t *testing.T) {
	tests := []vmTestCase{
		{"[]", []int{}},
		{"[1, 2, 3]", []int{1, 2, 3}},
		{"[1 + 2, 3 * 4, 5 + 6]", []int{3, 12, 11}},
	}

	runVmTests(t, tests)
}

func TestHashLiterals(t *testing.T) {
	tests := []vmTestCase{
		{"{}", map[object.HashKey]int64{}},
		{
			"{1: 2, 2: 3}",
			map[object.HashKey]int64{
				(&object.Integer{Value: 1}).HashKey(): 2,
				(&object.Integer{Value: 2}).HashKey(): 3,
			},
		},
		{
			"{1 + 1: 2 * 2, 3 + 3: 4 * 4}",
			map[object.HashKey]int64{
				(&object.Integer{Value: 2}).HashKey(): 4,
				(&object.Integer{Value: 6}).HashKey(): 16,
			},
		},
	}

	runVmTests(t, tests)
}

func TestIndexExpressions(t *testing.T) {
	tests := []vmTestCase{
		{"[1, 2, 3][1]", 2},
		{"[1, 2, 3][0 + 2]", 3},
		{"[[1, 1, 1]][0][0]", 1},
		{"[][0]", nil},
		{"[1, 2, 3][99]", nil},
		{"[1][-1]", nil},
		{"{1: 1, 2: 2}[1]", 1},
		{"{1: 1, 2: 2}[2]", 2},
		{"{1: 1}[0]", nil},
		{"{}[0]", nil},
	}

	runVmTests(t, tests)
}

func TestCallingFunctions(t *testing.T) {
	tests := []vmTestCase{
		{"let fivePlusTen = fn() { 5 + 10; }; fivePlusTen();", 15},
		{"let one = fn() { 1; }; let two = fn() { 2; }; one() + two()", 3},
		{"let a = fn() { 1 }; let b = fn() { a() + 1 }; let c = fn() { b() + 1 }; c();", 3},
		{"let earlyExit = fn() { return 99; 100; }; earlyExit();", 99},
		{"let earlyExit = fn() { return 99; return 100; }; earlyExit();", 99},
		{"let noReturn = fn() { }; noReturn();", nil},
		{"let noReturn = fn() { }; let noReturnTwo = fn() { noReturn(); }; noReturn(); noReturnTwo();", nil},
	}

	runVmTests(t, tests)
}

func TestCallingFunctionsWithBindings(t *testing.T) {
	tests := []vmTestCase{
		{"let one = fn() { let one = 1; one }; one();", 1},
		{"let oneAndTwo = fn() { let one = 1; let two = 2; one + two; }; oneAndTwo();", 3},
		{
			`let oneAndTwo = fn() { let one = 1; let two = 2; one + two; };
			let threeAndFour = fn() { let three = 3; let four = 4; three + four; };
			oneAndTwo() + threeAndFour();`,
			10,
		},
		{
			`let firstFoobar = fn() { let foobar = 50; foobar; };
			let secondFoobar = fn() { let foobar = 100; foobar; };
			firstFoobar() + secondFoobar();`,
			150,
		},
		{
			`let globalSeed = 50;
			let minusOne = fn() { let num = 1; globalSeed - num; };
			let minusTwo = fn() { let num = 2; globalSeed - num; };
			minusOne() + minusTwo();`,
			97,
		},
	}

	runVmTests(t, tests)
}

func TestCallingFunctionsWithArguments(t *testing.T) {
	tests := []vmTestCase{
		{"let identity = fn(a) { a; }; identity(4);", 4},
		{"let sum = fn(a, b) { a + b; }; sum(1, 2);", 3},
		{"let sum = fn(a, b) { let c = a + b; c; }; sum(1, 2);", 3},
		{"let sum = fn(a, b) { let c = a + b; c; }; sum(1, 2) + sum(3, 4);", 10},
		{"let sum = fn(a, b) { let c = a + b; c; }; let outer = fn() { sum(1, 2) + sum(3, 4); }; outer();", 10},
		{
			`let globalNum = 10;
			let sum = fn(a, b) {
				let c = a + b;
				c + globalNum;
			};
			let outer = fn() {
				sum(1, 2) + sum(3, 4) + globalNum;
			};
			outer() + globalNum;`,
			50,
		},
	}

	runVmTests(t, tests)
}

func TestCallingFunctionsWithWrongArguments(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fn() { 1; }(1);", "wrong number of arguments: want=0, got=1"},
		{"fn(a) { a; }();", "wrong number of arguments: want=1, got=0"},
		{"fn(a, b) { a + b; }(1);", "wrong number of arguments: want=2, got=1"},
	}

	for _, tt := range tests {
		machine := New(compileInput(t, tt.input))
		err := machine.Run()
		require.Error(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, err.Error())
	}
}

func TestBuiltinFunctions(t *testing.T) {
	tests := []vmTestCase{
		{`len("")`, 0},
		{`len("four")`, 4},
		{`len("hello world")`, 11},
		{`len([1, 2, 3])`, 3},
		{`len([])`, 0},
		{`puts("hello", "world!")`, nil},
		{`first([1, 2, 3])`, 1},
		{`first([])`, nil},
		{`last([1, 2, 3])`, 3},
		{`last([])`, nil},
		{`rest([1, 2, 3])`, []int{2, 3}},
		{`rest([])`, nil},
		{`push([], 1)`, []int{1}},
		{`first(rest(push([1, 2, 3], 4)))`, 2},
		{`len(1)`, &object.Error{Message: "argument to `len` not supported, got INTEGER"}},
		{`len("one", "two")`, &object.Error{Message: "wrong number of arguments. got=2, want=1"}},
		{`first(1)`, &object.Error{Message: "argument to `first` must be ARRAY, got INTEGER"}},
		{`last(1)`, &object.Error{Message: "argument to `last` must be ARRAY, got INTEGER"}},
		{`push(1, 1)`, &object.Error{Message: "argument to `push` must be ARRAY, got INTEGER"}},
	}

	runVmTests(t, tests)
}

func TestClosures(t *testing.T) {
	tests := []vmTestCase{
		{
			`let newClosure = fn(a) { fn() { a; }; };
			let closure = newClosure(99);
			closure();`,
			99,
		},
		{
			`let newAdder = fn(a, b) { fn(c) { a + b + c }; };
			let adder = newAdder(1, 2);
			adder(8);`,
			11,
		},
		{
			`let newAdder = fn(a, b) { let c = a + b; fn(d) { c + d }; };
			let adder = newAdder(1, 2);
			adder(8);`,
			11,
		},
		{
			`let newAdderOuter = fn(a, b) {
				let c = a + b;
				fn(d) {
					let e = d + c;
					fn(f) { e + f; };
				};
			};
			let newAdderInner = newAdderOuter(1, 2);
			let adder = newAdderInner(3);
			adder(8);`,
			14,
		},
		{
			`let a = 1;
			let newAdderOuter = fn(b) {
				fn(c) {
					fn(d) { a + b + c + d };
				};
			};
			let newAdderInner = newAdderOuter(2);
			let adder = newAdderInner(3);
			adder(8);`,
			14,
		},
		{
			`let newClosure = fn(a, b) {
				let one = fn() { a; };
				let two = fn() { b; };
				fn() { one() + two(); };
			};
			let closure = newClosure(9, 90);
			closure();`,
			99,
		},
	}

	runVmTests(t, tests)
}

func TestRecursiveFunctions(t *testing.T) {
	tests := []vmTestCase{
		{
			`let countDown = fn(x) { if (x == 0) { return 0; } else { countDown(x - 1); } };
			countDown(1);`,
			0,
		},
		{
			`let countDown = fn(x) { if (x == 0) { return 0; } else { countDown(x - 1); } };
			let wrapper = fn() { countDown(1); };
			wrapper();`,
			0,
		},
		{
			`let wrapper = fn() {
				let countDown = fn(x) { if (x == 0) { return 0; } else { countDown(x - 1); } };
				countDown(1);
			};
			wrapper();`,
			0,
		},
		{
			`let counter = fn(x) { if (x > 100) { return 99; } else { counter(x + 1); } };
			counter(0);`,
			99,
		},
	}

	runVmTests(t, tests)
}

func TestFibonacci(t *testing.T) {
	input := `
	let fibonacci = fn(x) {
		if (x == 0) { 0 }
		else {
			if (x == 1) { 1 }
			else { fibonacci(x - 1) + fibonacci(x - 2) }
		}
	};
	fibonacci(10);`

	runVmTests(t, []vmTestCase{{input, 55}})
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-true", "unsupported type for negation"},
		{"true + false", "unsupported types for binary operation"},
		{"5 + true", "unsupported types for binary operation"},
		{`"a" - "b"`, "unsupported types for binary operation"},
		{"1 / 0", "division by zero"},
		{"5[0]", "index operator not supported: INTEGER"},
		{"[1][fn(x) { x }]", "index operator not supported: ARRAY"},
		{"{1: 1}[fn(x) { x }]", "unusable as hash key: CLOSURE"},
		{"{fn(x) { x }: 1}", "unusable as hash key."},
		{"1(2)", "calling non-function"},
		{`"string"(2)`, "calling non-function"},
	}

	for _, tt := range tests {
		machine := New(compileInput(t, tt.input))
		err := machine.Run()
		require.Error(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, err.Error())
	}
}

// Unbounded recursion exhausts the frame stack and reports an error
// instead of panicking.
func TestStackOverflow(t *testing.T) {
	machine := New(compileInput(t, "let forever = fn() { forever(); }; forever();"))
	err := machine.Run()
	require.Error(t, err)
	assert.Equal(t, "stack overflow", err.Error())
}

// Globals written by one run are visible to the next when the globals
// store is shared, matching a REPL session's lifecycle.
func TestGlobalsStoreReuse(t *testing.T) {
	globals := make([]object.Object, GlobalsSize)

	first := compiler.New()
	require.NoError(t, first.Compile(parseInput(t, "let a = 41;")))
	machine := NewWithGlobalsStore(first.Bytecode(), globals)
	require.NoError(t, machine.Run())

	second := compiler.NewWithState(first.SymbolTable(), first.Constants())
	require.NoError(t, second.Compile(parseInput(t, "a + 1")))
	machine = NewWithGlobalsStore(second.Bytecode(), globals)
	require.NoError(t, machine.Run())

	assertIntegerObject(t, machine.LastPoppedStackElem(), 42)
}
