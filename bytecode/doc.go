// Package bytecode provides immutable representations of compiled
// expressions.
//
// This package defines the output of compilation: a flat instruction
// sequence wrapped in a [Code] container. These types are created once
// during compilation and shared safely across multiple goroutines, VM
// instances, and JIT compilations.
//
// All types are immutable after construction: no mutation methods exist,
// all fields are unexported, and constructors copy input slices to prevent
// caller mutation. Index-based access is used for the instruction stream:
//
//	code.InstructionAt(0)
//	code.InstructionCount()
//
// The instruction stream can be serialized to a compact binary form with
// [Marshal] and restored with [Unmarshal]. The format is not versioned;
// regenerate bytecode if the instruction set changes.
package bytecode
