package jit

import (
	"fmt"
	"math"
)

// Environment holds the variable bindings for a compiled Function: one
// 64-bit word per slot, in the slot order reported by Function.SlotNames.
// Every access is validated by name; there is no way to write outside the
// buffer.
//
// Compiled code interprets every slot word as a float64 bit pattern, so
// all setters encode their value that way: SetInt64 stores the integer's
// float64 value and SetFloats stores a float64-encoded handle that a
// registered function can resolve back through Floats.
//
// An Environment owns exactly one live word buffer at a time. Init
// materializes it and Words returns it; calling Init again releases the
// previous buffer and produces a fresh one.
type Environment struct {
	slots  map[string]int
	names  []string
	values []uint64
	words  []uint64
	arrays [][]float64
}

// NewEnvironment creates an Environment with one slot per name, in order.
func NewEnvironment(slotNames []string) *Environment {
	slots := make(map[string]int, len(slotNames))
	names := make([]string, len(slotNames))
	for i, name := range slotNames {
		slots[name] = i
		names[i] = name
	}
	return &Environment{
		slots:  slots,
		names:  names,
		values: make([]uint64, len(slotNames)),
	}
}

// SetFloat64 writes a float value into the named slot.
func (e *Environment) SetFloat64(name string, value float64) error {
	return e.set(name, math.Float64bits(value))
}

// SetInt64 writes an integer value into the named slot as a float64 word,
// the encoding compiled code reads. Integers above 2^53 lose precision.
func (e *Environment) SetInt64(name string, value int64) error {
	return e.set(name, math.Float64bits(float64(value)))
}

// SetBool writes a boolean into the named slot as 0.0 or 1.0.
func (e *Environment) SetBool(name string, value bool) error {
	v := 0.0
	if value {
		v = 1.0
	}
	return e.set(name, math.Float64bits(v))
}

// SetFloats stores a float slice out of band and writes its handle into
// the named slot as a float64 word, so the handle survives the trip
// through compiled code into a registered function's int64 parameter.
// The slice is copied; the Environment owns the copy.
func (e *Environment) SetFloats(name string, values []float64) error {
	c := make([]float64, len(values))
	copy(c, values)
	handle := len(e.arrays)
	e.arrays = append(e.arrays, c)
	return e.set(name, math.Float64bits(float64(handle)))
}

// Floats returns the float slice stored under the given handle, as
// received by a registered function from a slot populated by SetFloats.
func (e *Environment) Floats(handle int64) ([]float64, error) {
	if handle < 0 || handle >= int64(len(e.arrays)) {
		return nil, fmt.Errorf("invalid array handle %d", handle)
	}
	return e.arrays[handle], nil
}

func (e *Environment) set(name string, word uint64) error {
	slot, ok := e.slots[name]
	if !ok {
		return fmt.Errorf("environment has no slot for variable %q", name)
	}
	e.values[slot] = word
	if e.words != nil {
		e.words[slot] = word
	}
	return nil
}

// SlotCount returns the number of slots.
func (e *Environment) SlotCount() int {
	return len(e.names)
}

// Init materializes the word buffer. A prior buffer, if any, is released.
// An Environment with zero slots never allocates.
func (e *Environment) Init() {
	if len(e.values) == 0 {
		e.words = nil
		return
	}
	e.words = make([]uint64, len(e.values))
	copy(e.words, e.values)
}

// Words returns the live word buffer for passing to a compiled Function,
// or nil if Init has not been called or there are no slots.
func (e *Environment) Words() []uint64 {
	return e.words
}
