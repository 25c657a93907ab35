package vm

import (
	"marmot/compiler"
	"marmot/object"
)

// Frame is the per-call record of the virtual machine: the closure being
// executed, the instruction pointer within it, and the base pointer marking
// where the call's locals begin on the operand stack.
type Frame struct {
	closure     *object.Closure
	ip          int
	basePointer int
}

// MakeFrame initializes a frame for a closure whose first local slot is at
// basePointer. The instruction pointer starts one before the first byte;
// the dispatch loop pre-increments it.
func MakeFrame(closure *object.Closure, basePointer int) *Frame {
	return &Frame{closure: closure, ip: -1, basePointer: basePointer}
}

// Instructions returns the instruction stream of the frame's function.
func (frame *Frame) Instructions() compiler.Instructions {
	return compiler.Instructions(frame.closure.Fn.Instructions)
}
