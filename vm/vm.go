// Package vm is the bytecode execution engine: a stack machine driven by
// the compiler's instruction stream. Its observable behavior must match
// the tree-walking engine's.
package vm

import (
	"fmt"

	"marmot/compiler"
	"marmot/object"
)

const (
	// StackSize is the fixed capacity of the operand stack.
	StackSize = 2048

	// GlobalsSize bounds the global binding slots; OP_SET_GLOBAL and
	// OP_GET_GLOBAL carry a u16 operand, so 65536 slots cover the full
	// index space.
	GlobalsSize = 65536

	// MaxFrames bounds call nesting depth.
	MaxFrames = 1024
)

// VM executes compiled bytecode. The operand stack, globals and frame
// stack are fixed-capacity buffers allocated once at construction;
// exceeding them is a reported runtime error, not a panic.
type VM struct {
	constants []object.Object

	stack []object.Object
	// sp always points at the next free slot; the top of stack is
	// stack[sp-1]. Values above sp stay in place until overwritten, which
	// is what lets LastPoppedStackElem observe the result of the most
	// recent OP_POP.
	sp int

	globals []object.Object

	frames     []*Frame
	frameIndex int
}

// New creates a VM for the given bytecode. The program's instructions are
// wrapped in a closure with no free variables and pushed as frame zero.
func New(bytecode *compiler.Bytecode) *VM {
	return NewWithGlobalsStore(bytecode, make([]object.Object, GlobalsSize))
}

// NewWithGlobalsStore creates a VM that reuses an existing globals array.
// The REPL uses this so global bindings survive across lines, paired with
// a compiler that keeps its symbol table: both sides index the same
// global slot space.
func NewWithGlobalsStore(bytecode *compiler.Bytecode, globals []object.Object) *VM {
	mainFunction := &object.CompiledFunction{Instructions: bytecode.Instructions}
	mainClosure := &object.Closure{Fn: mainFunction}

	frames := make([]*Frame, MaxFrames)
	frames[0] = MakeFrame(mainClosure, 0)

	return &VM{
		constants:  bytecode.Constants,
		stack:      make([]object.Object, StackSize),
		sp:         0,
		globals:    globals,
		frames:     frames,
		frameIndex: 1,
	}
}

// LastPoppedStackElem returns the value most recently removed by OP_POP.
// An expression statement compiles to its expression followed by OP_POP,
// so after a run this is the value the program's last expression produced.
func (vm *VM) LastPoppedStackElem() object.Object {
	return vm.stack[vm.sp]
}

// Run executes the loaded program to completion: fetch the opcode at the
// current frame's instruction pointer, decode its operands, execute, and
// repeat until the top frame's instructions are exhausted.
func (vm *VM) Run() error {
	for vm.currentFrame().ip < len(vm.currentFrame().Instructions())-1 {
		frame := vm.currentFrame()
		frame.ip++

		instructions := frame.Instructions()
		op := compiler.Opcode(instructions[frame.ip])

		switch op {
		case compiler.OP_CONSTANT:
			constIndex := compiler.ReadUint16(instructions[frame.ip+1:])
			frame.ip += 2
			if err := vm.push(vm.constants[constIndex]); err != nil {
				return err
			}

		case compiler.OP_POP:
			vm.pop()

		case compiler.OP_ADD, compiler.OP_SUBTRACT, compiler.OP_MULTIPLY, compiler.OP_DIVIDE:
			if err := vm.executeBinaryOperation(op); err != nil {
				return err
			}

		case compiler.OP_TRUE:
			if err := vm.push(object.TrueValue); err != nil {
				return err
			}

		case compiler.OP_FALSE:
			if err := vm.push(object.FalseValue); err != nil {
				return err
			}

		case compiler.OP_NULL:
			if err := vm.push(object.NullValue); err != nil {
				return err
			}

		case compiler.OP_EQUAL, compiler.OP_NOT_EQUAL, compiler.OP_LARGER:
			if err := vm.executeComparison(op); err != nil {
				return err
			}

		case compiler.OP_NOT:
			if err := vm.executeNotOperator(); err != nil {
				return err
			}

		case compiler.OP_NEGATE:
			if err := vm.executeNegateOperator(); err != nil {
				return err
			}

		case compiler.OP_JUMP:
			target := int(compiler.ReadUint16(instructions[frame.ip+1:]))
			frame.ip = target - 1

		case compiler.OP_JUMP_NOT_TRUTHY:
			target := int(compiler.ReadUint16(instructions[frame.ip+1:]))
			frame.ip += 2
			condition := vm.pop()
			if !isTruthy(condition) {
				frame.ip = target - 1
			}

		case compiler.OP_SET_GLOBAL:
			globalIndex := compiler.ReadUint16(instructions[frame.ip+1:])
			frame.ip += 2
			vm.globals[globalIndex] = vm.pop()

		case compiler.OP_GET_GLOBAL:
			globalIndex := compiler.ReadUint16(instructions[frame.ip+1:])
			frame.ip += 2
			if err := vm.push(vm.globals[globalIndex]); err != nil {
				return err
			}

		case compiler.OP_SET_LOCAL:
			localIndex := compiler.ReadUint8(instructions[frame.ip+1:])
			frame.ip++
			vm.stack[frame.basePointer+int(localIndex)] = vm.pop()

		case compiler.OP_GET_LOCAL:
			localIndex := compiler.ReadUint8(instructions[frame.ip+1:])
			frame.ip++
			if err := vm.push(vm.stack[frame.basePointer+int(localIndex)]); err != nil {
				return err
			}

		case compiler.OP_ARRAY:
			numElements := int(compiler.ReadUint16(instructions[frame.ip+1:]))
			frame.ip += 2

			array := vm.buildArray(vm.sp-numElements, vm.sp)
			vm.sp -= numElements
			if err := vm.push(array); err != nil {
				return err
			}

		case compiler.OP_HASH:
			numElements := int(compiler.ReadUint16(instructions[frame.ip+1:]))
			frame.ip += 2

			hash, err := vm.buildHash(vm.sp-numElements, vm.sp)
			if err != nil {
				return err
			}
			vm.sp -= numElements
			if err := vm.push(hash); err != nil {
				return err
			}

		case compiler.OP_INDEX:
			index := vm.pop()
			left := vm.pop()
			if err := vm.executeIndexExpression(left, index); err != nil {
				return err
			}

		case compiler.OP_CALL:
			numArgs := compiler.ReadUint8(instructions[frame.ip+1:])
			frame.ip++
			if err := vm.executeCall(int(numArgs)); err != nil {
				return err
			}

		case compiler.OP_RETURN_VALUE:
			returnValue := vm.pop()

			returning := vm.popFrame()
			vm.sp = returning.basePointer - 1

			if err := vm.push(returnValue); err != nil {
				return err
			}

		case compiler.OP_RETURN:
			returning := vm.popFrame()
			vm.sp = returning.basePointer - 1

			if err := vm.push(object.NullValue); err != nil {
				return err
			}

		case compiler.OP_GET_BUILTIN:
			builtinIndex := compiler.ReadUint8(instructions[frame.ip+1:])
			frame.ip++

			definition := object.Builtins[builtinIndex]
			if err := vm.push(definition.Builtin); err != nil {
				return err
			}

		case compiler.OP_CLOSURE:
			constIndex := compiler.ReadUint16(instructions[frame.ip+1:])
			numFree := compiler.ReadUint8(instructions[frame.ip+3:])
			frame.ip += 3

			if err := vm.pushClosure(int(constIndex), int(numFree)); err != nil {
				return err
			}

		case compiler.OP_GET_FREE:
			freeIndex := compiler.ReadUint8(instructions[frame.ip+1:])
			frame.ip++

			if err := vm.push(vm.currentFrame().closure.Free[freeIndex]); err != nil {
				return err
			}

		case compiler.OP_CURRENT_CLOSURE:
			if err := vm.push(vm.currentFrame().closure); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unknown opcode %d", op)
		}
	}

	return nil
}

func (vm *VM) currentFrame() *Frame {
	return vm.frames[vm.frameIndex-1]
}

func (vm *VM) pushFrame(frame *Frame) {
	vm.frames[vm.frameIndex] = frame
	vm.frameIndex++
}

func (vm *VM) popFrame() *Frame {
	vm.frameIndex--
	return vm.frames[vm.frameIndex]
}

func (vm *VM) push(obj object.Object) error {
	if vm.sp >= StackSize {
		return fmt.Errorf("stack overflow")
	}
	vm.stack[vm.sp] = obj
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Object {
	obj := vm.stack[vm.sp-1]
	vm.sp--
	return obj
}

// A value is truthy iff it is not null and not false.
func isTruthy(obj object.Object) bool {
	switch obj {
	case object.NullValue, object.FalseValue:
		return false
	default:
		return true
	}
}

// executeBinaryOperation pops both operands and applies an arithmetic
// opcode: integers compute by value, OP_ADD concatenates two strings, and
// every other pairing is a type error.
func (vm *VM) executeBinaryOperation(op compiler.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	leftInteger, leftIsInteger := left.(*object.Integer)
	rightInteger, rightIsInteger := right.(*object.Integer)
	if leftIsInteger && rightIsInteger {
		return vm.executeBinaryIntegerOperation(op, leftInteger, rightInteger)
	}

	leftString, leftIsString := left.(*object.String)
	rightString, rightIsString := right.(*object.String)
	if leftIsString && rightIsString && op == compiler.OP_ADD {
		return vm.push(&object.String{Value: leftString.Value + rightString.Value})
	}

	return fmt.Errorf("unsupported types for binary operation")
}

func (vm *VM) executeBinaryIntegerOperation(op compiler.Opcode, left, right *object.Integer) error {
	var result int64

	switch op {
	case compiler.OP_ADD:
		result = left.Value + right.Value
	case compiler.OP_SUBTRACT:
		result = left.Value - right.Value
	case compiler.OP_MULTIPLY:
		result = left.Value * right.Value
	case compiler.OP_DIVIDE:
		if right.Value == 0 {
			return fmt.Errorf("division by zero")
		}
		result = left.Value / right.Value
	default:
		return fmt.Errorf("unknown operator: %d", op)
	}

	return vm.push(&object.Integer{Value: result})
}

// executeComparison pops both operands: two integers or two strings compare
// by value, everything else compares by singleton identity.
func (vm *VM) executeComparison(op compiler.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	leftInteger, leftIsInteger := left.(*object.Integer)
	rightInteger, rightIsInteger := right.(*object.Integer)
	if leftIsInteger && rightIsInteger {
		return vm.executeIntegerComparison(op, leftInteger, rightInteger)
	}

	// strings compare by value like integers do; everything else falls
	// back to singleton identity
	leftString, leftIsString := left.(*object.String)
	rightString, rightIsString := right.(*object.String)
	if leftIsString && rightIsString {
		switch op {
		case compiler.OP_EQUAL:
			return vm.push(object.NativeBoolToBoolean(leftString.Value == rightString.Value))
		case compiler.OP_NOT_EQUAL:
			return vm.push(object.NativeBoolToBoolean(leftString.Value != rightString.Value))
		default:
			return fmt.Errorf("unknown operator: %d", op)
		}
	}

	switch op {
	case compiler.OP_EQUAL:
		return vm.push(object.NativeBoolToBoolean(left == right))
	case compiler.OP_NOT_EQUAL:
		return vm.push(object.NativeBoolToBoolean(left != right))
	default:
		return fmt.Errorf("unknown operator: %d", op)
	}
}

func (vm *VM) executeIntegerComparison(op compiler.Opcode, left, right *object.Integer) error {
	switch op {
	case compiler.OP_EQUAL:
		return vm.push(object.NativeBoolToBoolean(left.Value == right.Value))
	case compiler.OP_NOT_EQUAL:
		return vm.push(object.NativeBoolToBoolean(left.Value != right.Value))
	case compiler.OP_LARGER:
		return vm.push(object.NativeBoolToBoolean(left.Value > right.Value))
	default:
		return fmt.Errorf("unknown operator: %d", op)
	}
}

func (vm *VM) executeNotOperator() error {
	operand := vm.pop()

	switch operand {
	case object.TrueValue:
		return vm.push(object.FalseValue)
	case object.FalseValue:
		return vm.push(object.TrueValue)
	case object.NullValue:
		return vm.push(object.TrueValue)
	default:
		return vm.push(object.FalseValue)
	}
}

func (vm *VM) executeNegateOperator() error {
	operand := vm.pop()

	integer, ok := operand.(*object.Integer)
	if !ok {
		return fmt.Errorf("unsupported type for negation")
	}
	return vm.push(&object.Integer{Value: -integer.Value})
}

// buildArray collects the stack slots [startIndex, endIndex) into a new
// array, preserving push order.
func (vm *VM) buildArray(startIndex, endIndex int) object.Object {
	elements := make([]object.Object, endIndex-startIndex)
	for i := startIndex; i < endIndex; i++ {
		elements[i-startIndex] = vm.stack[i]
	}
	return &object.Array{Elements: elements}
}

// buildHash collects the stack slots [startIndex, endIndex) as key-value
// pairs in push order into a new hash.
func (vm *VM) buildHash(startIndex, endIndex int) (object.Object, error) {
	pairs := make(map[object.HashKey]object.HashPair)

	for i := startIndex; i < endIndex; i += 2 {
		key := vm.stack[i]
		value := vm.stack[i+1]

		hashable, ok := key.(object.Hashable)
		if !ok {
			return nil, fmt.Errorf("unusable as hash key.")
		}
		pairs[hashable.HashKey()] = object.HashPair{Key: key, Value: value}
	}

	return &object.Hash{Pairs: pairs}, nil
}

func (vm *VM) executeIndexExpression(left, index object.Object) error {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		return vm.executeArrayIndex(left.(*object.Array), index.(*object.Integer))
	case left.Type() == object.HASH_OBJ:
		return vm.executeHashIndex(left.(*object.Hash), index)
	default:
		return fmt.Errorf("index operator not supported: %s", left.Type())
	}
}

// executeArrayIndex is bounds checked: a negative index or one past the
// end pushes null.
func (vm *VM) executeArrayIndex(array *object.Array, index *object.Integer) error {
	i := index.Value
	if i < 0 || i > int64(len(array.Elements)-1) {
		return vm.push(object.NullValue)
	}
	return vm.push(array.Elements[i])
}

func (vm *VM) executeHashIndex(hash *object.Hash, index object.Object) error {
	hashable, ok := index.(object.Hashable)
	if !ok {
		return fmt.Errorf("unusable as hash key: %s", index.Type())
	}

	pair, ok := hash.Pairs[hashable.HashKey()]
	if !ok {
		return vm.push(object.NullValue)
	}
	return vm.push(pair.Value)
}

// executeCall dispatches OP_CALL: the stack holds the callee followed by
// numArgs arguments.
func (vm *VM) executeCall(numArgs int) error {
	callee := vm.stack[vm.sp-1-numArgs]

	switch callee := callee.(type) {
	case *object.Closure:
		return vm.callClosure(callee, numArgs)
	case *object.Builtin:
		return vm.callBuiltin(callee, numArgs)
	default:
		return fmt.Errorf("calling non-function")
	}
}

// callClosure pushes a new frame whose base pointer marks the first
// argument slot; the arguments already on the stack become the first
// locals, and sp advances past the remaining local slots.
func (vm *VM) callClosure(closure *object.Closure, numArgs int) error {
	if numArgs != closure.Fn.NumParameters {
		return fmt.Errorf("wrong number of arguments: want=%d, got=%d", closure.Fn.NumParameters, numArgs)
	}
	if vm.frameIndex >= MaxFrames {
		return fmt.Errorf("stack overflow")
	}

	frame := MakeFrame(closure, vm.sp-numArgs)
	vm.pushFrame(frame)
	vm.sp = frame.basePointer + closure.Fn.NumLocals

	return nil
}

// callBuiltin invokes a native function with the arguments on the stack,
// then replaces callee and arguments with the result. A builtin returning
// an Error value pushes that value; it does not abort the run.
func (vm *VM) callBuiltin(builtin *object.Builtin, numArgs int) error {
	args := vm.stack[vm.sp-numArgs : vm.sp]

	result := builtin.Fn(args...)
	vm.sp = vm.sp - numArgs - 1

	if result != nil {
		return vm.push(result)
	}
	return vm.push(object.NullValue)
}

// pushClosure wraps the compiled function at constIndex with numFree
// captured values popped off the stack.
func (vm *VM) pushClosure(constIndex, numFree int) error {
	constant := vm.constants[constIndex]
	function, ok := constant.(*object.CompiledFunction)
	if !ok {
		return fmt.Errorf("not a function: %+v", constant)
	}

	free := make([]object.Object, numFree)
	for i := 0; i < numFree; i++ {
		free[i] = vm.stack[vm.sp-numFree+i]
	}
	vm.sp -= numFree

	return vm.push(&object.Closure{Fn: function, Free: free})
}
