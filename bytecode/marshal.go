package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/deepnoodle-ai/quantexpr/op"
)

// Binary layout: one opcode byte per instruction followed by its payload.
// 64-bit integers, floats, counts, and jump targets are 8-byte little
// endian; strings are raw UTF-8 terminated by a single zero byte; booleans
// are one byte. The format is not versioned.

// Marshal serializes the instruction stream of a compiled expression.
// PushMap instructions and names containing embedded zero bytes cannot be
// serialized and produce an error.
func Marshal(code *Code) ([]byte, error) {
	var buf []byte
	for i := 0; i < code.InstructionCount(); i++ {
		in := code.InstructionAt(i)
		buf = append(buf, byte(in.Op))
		switch in.Op {
		case op.PushInt:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(in.Int))
		case op.PushFloat:
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(in.Float))
		case op.PushBool:
			if in.Bool {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case op.PushString, op.GetProperty, op.LoadVariable, op.StoreVariable:
			var err error
			buf, err = appendString(buf, i, in.Str)
			if err != nil {
				return nil, err
			}
		case op.PushArray:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(len(in.Floats)))
			for _, v := range in.Floats {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
			}
		case op.PushMap:
			return nil, fmt.Errorf("bytecode: PUSH_MAP is not serializable (instruction %d)", i)
		case op.Call:
			var err error
			buf, err = appendString(buf, i, in.Str)
			if err != nil {
				return nil, err
			}
			buf = binary.LittleEndian.AppendUint64(buf, uint64(in.Argc))
		case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(in.Target))
		default:
			if !op.Valid(in.Op) {
				return nil, fmt.Errorf("bytecode: unknown opcode 0x%02x (instruction %d)", byte(in.Op), i)
			}
			// Remaining opcodes carry no payload.
		}
	}
	return buf, nil
}

// Unmarshal decodes a binary instruction stream produced by Marshal. The
// returned Code has a fresh ID and no source text.
func Unmarshal(data []byte) (*Code, error) {
	var instructions []Instruction
	pos := 0
	for pos < len(data) {
		c := op.Code(data[pos])
		pos++
		if !op.Valid(c) {
			return nil, fmt.Errorf("bytecode: unknown opcode 0x%02x at offset %d", byte(c), pos-1)
		}
		in := Instruction{Op: c}
		var err error
		switch c {
		case op.PushInt:
			var word uint64
			word, pos, err = readWord(data, pos)
			in.Int = int64(word)
		case op.PushFloat:
			var word uint64
			word, pos, err = readWord(data, pos)
			in.Float = math.Float64frombits(word)
		case op.PushBool:
			if pos >= len(data) {
				err = fmt.Errorf("bytecode: truncated input at offset %d", pos)
				break
			}
			in.Bool = data[pos] != 0
			pos++
		case op.PushString, op.GetProperty, op.LoadVariable, op.StoreVariable:
			in.Str, pos, err = readString(data, pos)
		case op.PushArray:
			var count uint64
			count, pos, err = readWord(data, pos)
			if err != nil {
				break
			}
			if count > uint64(len(data)-pos)/8 {
				err = fmt.Errorf("bytecode: truncated input at offset %d", pos)
				break
			}
			in.Floats = make([]float64, count)
			for j := range in.Floats {
				var word uint64
				word, pos, _ = readWord(data, pos)
				in.Floats[j] = math.Float64frombits(word)
			}
		case op.PushMap:
			err = fmt.Errorf("bytecode: PUSH_MAP is not serializable (offset %d)", pos-1)
		case op.Call:
			in.Str, pos, err = readString(data, pos)
			if err != nil {
				break
			}
			var word uint64
			word, pos, err = readWord(data, pos)
			in.Argc = int(word)
		case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
			var word uint64
			word, pos, err = readWord(data, pos)
			in.Target = int(word)
		}
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, in)
	}
	return NewCode(CodeParams{Instructions: instructions}), nil
}

func appendString(buf []byte, index int, s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, fmt.Errorf("bytecode: string operand contains a zero byte (instruction %d)", index)
	}
	buf = append(buf, s...)
	return append(buf, 0), nil
}

func readWord(data []byte, pos int) (uint64, int, error) {
	if pos+8 > len(data) {
		return 0, pos, fmt.Errorf("bytecode: truncated input at offset %d", pos)
	}
	return binary.LittleEndian.Uint64(data[pos : pos+8]), pos + 8, nil
}

func readString(data []byte, pos int) (string, int, error) {
	end := pos
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end == len(data) {
		return "", pos, fmt.Errorf("bytecode: unterminated string at offset %d", pos)
	}
	return string(data[pos:end]), end + 1, nil
}
