// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// GraphicsState is the mutable context every point-manipulation
// instruction consults and mutates, per §4.3.
type GraphicsState struct {
	AutoFlip bool

	ControlValueCutIn F26Dot6
	SingleWidthCutIn  F26Dot6
	SingleWidthValue  F26Dot6

	DeltaBase  int32
	DeltaShift int32

	FreedomVector        Vector
	ProjectionVector     Vector
	DualProjectionVector Vector

	InstructionControl int32

	Loop int32

	RoundPeriod    F26Dot6
	RoundPhase     F26Dot6
	RoundThreshold F26Dot6

	RP [3]int32
	ZP [3]int32

	MinimumDistance F26Dot6
}

// unitX and unitY are the two axis-aligned unit vectors every SVTCA-family
// opcode and the default graphics state assign.
var (
	unitX = Vector{X: 1 << 14, Y: 0}
	unitY = Vector{X: 0, Y: 1 << 14}
)

// defaultGraphicsState is the font/CVT-program-entry graphics state, used
// both as the very first state of the font program and as the template
// every field not listed in the "reset on glyph program" column of §4.3
// keeps across glyph programs (captured after the CVT program runs, see
// Processor.runCVTProgram).
func defaultGraphicsState() GraphicsState {
	return GraphicsState{
		AutoFlip:          true,
		ControlValueCutIn: F26Dot6((17 << 6) / 16),
		DeltaBase:         9,
		DeltaShift:        3,
		FreedomVector:     unitX,
		ProjectionVector:  unitX,
		DualProjectionVector: unitX,
		Loop:            1,
		RoundPeriod:     1 << 6,
		RoundPhase:      0,
		RoundThreshold:  1 << 5,
		RP:              [3]int32{0, 0, 0},
		ZP:              [3]int32{1, 1, 1},
		MinimumDistance: 1 << 6,
	}
}

// resetForGlyphProgram applies the "reset on glyph program" column of
// §4.3's table to gs, which must already equal the captured default state.
// autoFlip, cut-ins, delta base/shift, instruction control, minimum
// distance and single-width settings are left untouched: they persist from
// the font/CVT program.
func (gs *GraphicsState) resetForGlyphProgram() {
	gs.FreedomVector = unitX
	gs.ProjectionVector = unitX
	gs.DualProjectionVector = unitX
	gs.Loop = 1
	gs.RoundPeriod = 1 << 6
	gs.RoundPhase = 0
	gs.RoundThreshold = 1 << 5
	gs.RP = [3]int32{0, 0, 0}
	gs.ZP = [3]int32{1, 1, 1}
}

// setProjectionVector assigns both the projection and dual-projection
// vectors, per §4.3's "Projection assignment also sets the dual-projection
// to the same value."
func (gs *GraphicsState) setProjectionVector(v Vector) {
	gs.ProjectionVector = v
	gs.DualProjectionVector = v
}
