// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import "sort"

// Instruction is one decoded bytecode instruction: an opcode, the byte
// offset of its opcode byte in the source stream (jump targets refer to
// this), and, for the PUSH family, the immediate values it carries.
type Instruction struct {
	Opcode Opcode
	Offset int
	Args   []int32
}

// Code is an immutable, decoded instruction stream for one program
// (font/CVT/glyph). It is safe to share by reference between Processor
// instances: nothing in Decode or in execution ever mutates it.
type Code struct {
	Program      Program
	Instructions []Instruction
	offsets      []int // Instructions[i].Offset, parallel and strictly increasing.
}

// Decode parses a raw bytecode stream into an ordered instruction list,
// preserving byte offsets so that JMP/JROT/JROF can resolve their targets.
// It never executes anything; an unrecognized opcode is the only failure
// mode.
func Decode(prog Program, b []byte) (*Code, error) {
	c := &Code{Program: prog}
	pc := 0
	for pc < len(b) {
		offset := pc
		op := Opcode(b[pc])
		if !definedOpcode(b[pc]) {
			return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{b[pc]}}
		}
		pc++

		var args []int32
		switch {
		case op >= opPUSHB000 && op <= opPUSHB111:
			n := int(op-opPUSHB000) + 1
			args = make([]int32, n)
			for i := range args {
				if pc >= len(b) {
					return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
				}
				args[i] = int32(b[pc])
				pc++
			}
		case op >= opPUSHW000 && op <= opPUSHW111:
			n := int(op-opPUSHW000) + 1
			args = make([]int32, n)
			for i := range args {
				if pc+1 >= len(b) {
					return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
				}
				args[i] = int32(int16(uint16(b[pc])<<8 | uint16(b[pc+1])))
				pc += 2
			}
		case op == opNPUSHB:
			if pc >= len(b) {
				return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
			}
			n := int(b[pc])
			pc++
			args = make([]int32, n)
			for i := range args {
				if pc >= len(b) {
					return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
				}
				args[i] = int32(b[pc])
				pc++
			}
		case op == opNPUSHW:
			if pc >= len(b) {
				return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
			}
			n := int(b[pc])
			pc++
			args = make([]int32, n)
			for i := range args {
				if pc+1 >= len(b) {
					return nil, &Error{Program: prog, Offset: offset, Kind: ErrDecodeError, Detail: decodeError{byte(op)}}
				}
				args[i] = int32(int16(uint16(b[pc])<<8 | uint16(b[pc+1])))
				pc += 2
			}
		}

		c.Instructions = append(c.Instructions, Instruction{Opcode: op, Offset: offset, Args: args})
		c.offsets = append(c.offsets, offset)
	}
	return c, nil
}

// IndexAt returns the index into c.Instructions of the instruction whose
// Offset equals offset, via binary search over the (monotonically
// increasing) offset table built during Decode.
func (c *Code) IndexAt(offset int) (int, bool) {
	i := sort.SearchInts(c.offsets, offset)
	if i < len(c.offsets) && c.offsets[i] == offset {
		return i, true
	}
	return 0, false
}

// Len reports the number of decoded instructions.
func (c *Code) Len() int { return len(c.Instructions) }
