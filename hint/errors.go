// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import "fmt"

// Program identifies which of the three bytecode programs an error or
// warning was raised from.
type Program int

const (
	FontProgram Program = iota
	CVTProgram
	GlyphProgram
)

func (p Program) String() string {
	switch p {
	case FontProgram:
		return "font program"
	case CVTProgram:
		return "cvt program"
	case GlyphProgram:
		return "glyph program"
	}
	return "unknown program"
}

// Kind enumerates the ways a bytecode program can fail to execute, per the
// error taxonomy of §7.
type Kind int

const (
	ErrDecodeError Kind = iota
	ErrStackUnderflow
	ErrStackIndexOutOfRange
	ErrStorageOutOfRange
	ErrStorageUninitialized
	ErrCVTOutOfRange
	ErrCVTGlobalThenSet
	ErrCVTLocalNotSet
	ErrInvalidVector
	ErrFreedomPerpendicularToProjection
	ErrInvalidZonePointer
	ErrInvalidReferencePointIndex
	ErrInvalidPointIndex
	ErrInvalidContourIndex
	ErrInvalidRoundState
	ErrUndefinedFunction
	ErrDuplicateFunctionDefinition
	ErrEmptyCallStack
	ErrJumpOutOfRange
	ErrJumpTargetNotAligned
	ErrInstructionBudgetExceeded
	ErrUnsupportedInstruction
	ErrWrongProgramContext
)

var kindText = map[Kind]string{
	ErrDecodeError:                       "could not decode instruction",
	ErrStackUnderflow:                    "stack underflow",
	ErrStackIndexOutOfRange:              "stack index out of range",
	ErrStorageOutOfRange:                 "storage index out of range",
	ErrStorageUninitialized:              "storage location read before write",
	ErrCVTOutOfRange:                     "cvt index out of range",
	ErrCVTGlobalThenSet:                  "cvt entry written after being read as global",
	ErrCVTLocalNotSet:                    "cvt entry read as local before being set",
	ErrInvalidVector:                     "zero length vector",
	ErrFreedomPerpendicularToProjection:  "freedom vector perpendicular to projection vector",
	ErrInvalidZonePointer:                "invalid zone pointer",
	ErrInvalidReferencePointIndex:        "invalid reference point index",
	ErrInvalidPointIndex:                 "invalid point index",
	ErrInvalidContourIndex:               "invalid contour index",
	ErrInvalidRoundState:                 "invalid round state",
	ErrUndefinedFunction:                 "call to undefined function",
	ErrDuplicateFunctionDefinition:       "duplicate function definition",
	ErrEmptyCallStack:                    "return with empty call stack",
	ErrJumpOutOfRange:                    "jump target out of range",
	ErrJumpTargetNotAligned:              "jump target not at an instruction boundary",
	ErrInstructionBudgetExceeded:         "instruction budget exceeded",
	ErrUnsupportedInstruction:            "unsupported instruction",
	ErrWrongProgramContext:               "instruction not valid in this program",
}

// Error is the error type returned by decoding and execution. It records
// which program was running, the byte offset of the offending instruction,
// and the Kind of failure. Detail, if non-nil, wraps a lower-level cause
// (for example the opcode byte for ErrDecodeError).
type Error struct {
	Program Program
	Offset  int
	Kind    Kind
	Detail  error
}

func (e *Error) Error() string {
	msg := kindText[e.Kind]
	if msg == "" {
		msg = "hinting error"
	}
	if e.Detail != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Detail)
	}
	return fmt.Sprintf("hint: %s: offset %d: %s", e.Program, e.Offset, msg)
}

// Is reports whether err is an *Error of the given kind, so callers can
// write errors.Is(err, hint.ErrStackUnderflow)-style checks against a
// sentinel constructed with that Kind and no offset.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// decodeError wraps the unrecognized opcode byte for ErrDecodeError.
type decodeError struct {
	b byte
}

func (d decodeError) Error() string { return fmt.Sprintf("opcode 0x%02x", d.b) }

// Warning is a non-fatal diagnostic raised during execution — a condition
// the processor recovers from by falling back to a defined behavior, per
// §7's distinction between errors (abort the program) and warnings
// (continue, but tell the caller).
type Warning struct {
	Program Program
	Offset  int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("hint: %s: offset %d: %s", w.Program, w.Offset, w.Message)
}
