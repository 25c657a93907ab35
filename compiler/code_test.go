package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeInstruction(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OP_CONSTANT, []int{65534}, []byte{byte(OP_CONSTANT), 255, 254}},
		{OP_ADD, []int{}, []byte{byte(OP_ADD)}},
		{OP_GET_LOCAL, []int{255}, []byte{byte(OP_GET_LOCAL), 255}},
		{OP_CLOSURE, []int{65534, 255}, []byte{byte(OP_CLOSURE), 255, 254, 255}},
		{OP_JUMP, []int{1}, []byte{byte(OP_JUMP), 0, 1}},
	}

	for _, tt := range tests {
		instruction := MakeInstruction(tt.op, tt.operands...)
		assert.Equal(t, tt.expected, instruction)
	}
}

func TestMakeInstructionUnknownOpcode(t *testing.T) {
	assert.Empty(t, MakeInstruction(Opcode(255)))
}

// Codec round-trip: decoding what MakeInstruction encoded yields the
// original operands and consumes exactly the declared widths.
func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OP_CONSTANT, []int{65535}, 2},
		{OP_GET_LOCAL, []int{255}, 1},
		{OP_CLOSURE, []int{65535, 255}, 3},
		{OP_CALL, []int{3}, 1},
		{OP_GET_BUILTIN, []int{5}, 1},
	}

	for _, tt := range tests {
		instruction := MakeInstruction(tt.op, tt.operands...)

		def, err := Get(tt.op)
		require.NoError(t, err)

		operandsRead, n := ReadOperands(def, instruction[1:])
		assert.Equal(t, tt.bytesRead, n)
		assert.Equal(t, tt.operands, operandsRead)
	}
}

func TestGetUndefinedOpcode(t *testing.T) {
	_, err := Get(Opcode(250))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opcode 250 undefined")
}

func TestInstructionsString(t *testing.T) {
	instructions := []Instructions{
		MakeInstruction(OP_ADD),
		MakeInstruction(OP_GET_LOCAL, 1),
		MakeInstruction(OP_CONSTANT, 2),
		MakeInstruction(OP_CONSTANT, 65535),
		MakeInstruction(OP_CLOSURE, 65535, 255),
	}

	expected := `0000 OP_ADD
0001 OP_GET_LOCAL 1
0003 OP_CONSTANT 2
0006 OP_CONSTANT 65535
0009 OP_CLOSURE 65535 255
`

	var flattened Instructions
	for _, instruction := range instructions {
		flattened = append(flattened, instruction...)
	}

	assert.Equal(t, expected, flattened.String())
}
