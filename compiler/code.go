package compiler

// Bytecode instruction encoding: every instruction is a one-byte opcode
// followed by its operands, each encoded big-endian at the width declared
// in the opcode's definition.

import (
	"encoding/binary"
	"fmt"
	"strings"
)

type Opcode byte

type Instructions []byte

// iota generates a distinct byte for each opcode
const (
	// OP_CONSTANT pushes constants[operand] onto the stack. Its single
	// 2-byte operand restricts a program to 65536 constants.
	OP_CONSTANT Opcode = iota

	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE

	OP_POP

	OP_TRUE
	OP_FALSE
	OP_NULL

	OP_EQUAL
	OP_NOT_EQUAL
	// OP_LARGER is the only ordering comparison: the compiler lowers `<`
	// by swapping operands and emitting OP_LARGER.
	OP_LARGER

	OP_NEGATE
	OP_NOT

	OP_JUMP_NOT_TRUTHY
	OP_JUMP

	OP_SET_GLOBAL
	OP_GET_GLOBAL

	OP_ARRAY
	OP_HASH
	OP_INDEX

	OP_CALL
	OP_RETURN_VALUE
	OP_RETURN

	OP_SET_LOCAL
	OP_GET_LOCAL

	OP_GET_BUILTIN

	OP_CLOSURE
	OP_GET_FREE
	OP_CURRENT_CLOSURE
)

// OpCodeDefinition describes an opcode: its human-readable name and the
// byte width of each of its operands.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_CONSTANT:        {Name: "OP_CONSTANT", OperandWidths: []int{2}},
	OP_ADD:             {Name: "OP_ADD", OperandWidths: []int{}},
	OP_SUBTRACT:        {Name: "OP_SUBTRACT", OperandWidths: []int{}},
	OP_MULTIPLY:        {Name: "OP_MULTIPLY", OperandWidths: []int{}},
	OP_DIVIDE:          {Name: "OP_DIVIDE", OperandWidths: []int{}},
	OP_POP:             {Name: "OP_POP", OperandWidths: []int{}},
	OP_TRUE:            {Name: "OP_TRUE", OperandWidths: []int{}},
	OP_FALSE:           {Name: "OP_FALSE", OperandWidths: []int{}},
	OP_NULL:            {Name: "OP_NULL", OperandWidths: []int{}},
	OP_EQUAL:           {Name: "OP_EQUAL", OperandWidths: []int{}},
	OP_NOT_EQUAL:       {Name: "OP_NOT_EQUAL", OperandWidths: []int{}},
	OP_LARGER:          {Name: "OP_LARGER", OperandWidths: []int{}},
	OP_NEGATE:          {Name: "OP_NEGATE", OperandWidths: []int{}},
	OP_NOT:             {Name: "OP_NOT", OperandWidths: []int{}},
	OP_JUMP_NOT_TRUTHY: {Name: "OP_JUMP_NOT_TRUTHY", OperandWidths: []int{2}},
	OP_JUMP:            {Name: "OP_JUMP", OperandWidths: []int{2}},
	OP_SET_GLOBAL:      {Name: "OP_SET_GLOBAL", OperandWidths: []int{2}},
	OP_GET_GLOBAL:      {Name: "OP_GET_GLOBAL", OperandWidths: []int{2}},
	OP_ARRAY:           {Name: "OP_ARRAY", OperandWidths: []int{2}},
	OP_HASH:            {Name: "OP_HASH", OperandWidths: []int{2}},
	OP_INDEX:           {Name: "OP_INDEX", OperandWidths: []int{}},
	OP_CALL:            {Name: "OP_CALL", OperandWidths: []int{1}},
	OP_RETURN_VALUE:    {Name: "OP_RETURN_VALUE", OperandWidths: []int{}},
	OP_RETURN:          {Name: "OP_RETURN", OperandWidths: []int{}},
	OP_SET_LOCAL:       {Name: "OP_SET_LOCAL", OperandWidths: []int{1}},
	OP_GET_LOCAL:       {Name: "OP_GET_LOCAL", OperandWidths: []int{1}},
	OP_GET_BUILTIN:     {Name: "OP_GET_BUILTIN", OperandWidths: []int{1}},
	OP_CLOSURE:         {Name: "OP_CLOSURE", OperandWidths: []int{2, 1}},
	OP_GET_FREE:        {Name: "OP_GET_FREE", OperandWidths: []int{1}},
	OP_CURRENT_CLOSURE: {Name: "OP_CURRENT_CLOSURE", OperandWidths: []int{}},
}

// Get retrieves the definition of an opcode, or an error for a byte that
// does not name one.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction constructs a single bytecode instruction from an opcode
// and its operand values. Operands are encoded in big-endian order at the
// widths declared for the opcode.
//
// Returns an empty slice for an unknown opcode; asking for one is a
// programming error, not a runtime condition.
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return []byte{}
	}

	instructionLength := 1
	for _, width := range def.OperandWidths {
		instructionLength += width
	}

	instruction := make([]byte, instructionLength)
	instruction[0] = byte(op)

	byteOffset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[byteOffset:], uint16(operand))
		case 1:
			instruction[byteOffset] = byte(operand)
		}
		byteOffset += width
	}
	return instruction
}

// ReadOperands decodes the operands of an instruction whose opcode byte
// has already been consumed. It returns the operand values and the number
// of bytes read.
func ReadOperands(def *OpCodeDefinition, instructions Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0

	for i, width := range def.OperandWidths {
		switch width {
		case 2:
			operands[i] = int(ReadUint16(instructions[offset:]))
		case 1:
			operands[i] = int(ReadUint8(instructions[offset:]))
		}
		offset += width
	}

	return operands, offset
}

// ReadUint16 decodes a big-endian two-byte operand. It is used directly by
// the VM's dispatch loop to avoid the definition lookup of ReadOperands.
func ReadUint16(instructions Instructions) uint16 {
	return binary.BigEndian.Uint16(instructions)
}

// ReadUint8 decodes a one-byte operand.
func ReadUint8(instructions Instructions) uint8 {
	return uint8(instructions[0])
}

// String disassembles the instruction stream into a human readable form,
// one instruction per line: the zero-padded byte offset, the opcode name,
// and the operands separated by single spaces.
func (instructions Instructions) String() string {
	var builder strings.Builder

	ip := 0
	for ip < len(instructions) {
		def, err := Get(Opcode(instructions[ip]))
		if err != nil {
			fmt.Fprintf(&builder, "ERROR: %s\n", err)
			ip++
			continue
		}

		operands, bytesRead := ReadOperands(def, instructions[ip+1:])
		fmt.Fprintf(&builder, "%04d %s\n", ip, formatInstruction(def, operands))

		ip += 1 + bytesRead
	}

	return builder.String()
}

func formatInstruction(def *OpCodeDefinition, operands []int) string {
	if len(operands) != len(def.OperandWidths) {
		return fmt.Sprintf("ERROR: operand len %d does not match defined %d", len(operands), len(def.OperandWidths))
	}

	if len(operands) == 0 {
		return def.Name
	}

	parts := make([]string, 0, 1+len(operands))
	parts = append(parts, def.Name)
	for _, operand := range operands {
		parts = append(parts, fmt.Sprintf("%d", operand))
	}
	return strings.Join(parts, " ")
}
