package bytecode

import (
	"github.com/gofrs/uuid"
)

// Code represents one compiled expression: an immutable instruction
// sequence plus identifying metadata. It is safe for concurrent use and
// may be executed by any number of VM instances or handed to the JIT.
type Code struct {
	id           string
	source       string
	instructions []Instruction
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	ID           string
	Source       string
	Instructions []Instruction
}

// NewCode creates a new immutable Code from the given parameters. The
// instruction slice is copied. If no ID is supplied, a random one is
// assigned.
func NewCode(params CodeParams) *Code {
	id := params.ID
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}
	instructions := make([]Instruction, len(params.Instructions))
	copy(instructions, params.Instructions)
	return &Code{
		id:           id,
		source:       params.Source,
		instructions: instructions,
	}
}

// ID returns the unique identifier for this compiled expression.
func (c *Code) ID() string {
	return c.id
}

// Source returns the source text this code was compiled from. It is empty
// for code restored with Unmarshal.
func (c *Code) Source() string {
	return c.source
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) Instruction {
	return c.instructions[index]
}

// Equals reports whether two code blocks hold identical instruction
// sequences. IDs and source text are not compared.
func (c *Code) Equals(other *Code) bool {
	if len(c.instructions) != len(other.instructions) {
		return false
	}
	for i, in := range c.instructions {
		if !in.Equals(other.instructions[i]) {
			return false
		}
	}
	return true
}
