// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// ExecuteGlyph loads glyph id's outline into zone 1 at the Processor's
// current resolution, appends its four phantom points, then runs its
// glyph program (unless INHIBIT_GRIDFIT is set in the captured default
// graphics state), per §4.9's third lifecycle phase. SetResolution must
// have been called at least once first.
func (p *Processor) ExecuteGlyph(id int) ([]HintedPoint, error) {
	g, err := p.font.Glyph(id)
	if err != nil {
		return nil, err
	}

	scaleX := p.ppemX.Div(p.unitsPerEm)
	scaleY := p.ppemY.Div(p.unitsPerEm)

	var points []GridFittedPoint
	var contourEnds []int
	for _, contour := range g.Contours {
		for i, cp := range contour {
			x := F26Dot6FromInt(int32(cp.X)).Mul(scaleX)
			y := F26Dot6FromInt(int32(cp.Y)).Mul(scaleY)
			points = append(points, GridFittedPoint{
				OriginalX:     x,
				OriginalY:     y,
				CurrentX:      x,
				CurrentY:      y,
				OnCurve:       cp.OnCurve,
				LastInContour: i == len(contour)-1,
			})
		}
		contourEnds = append(contourEnds, len(points)-1)
	}

	lsb := F26Dot6FromInt(int32(g.LeftBearing)).Mul(scaleX)
	advance := F26Dot6FromInt(int32(g.AdvanceWidth)).Mul(scaleX)
	ascent := F26Dot6FromInt(int32(p.font.Ascent())).Mul(scaleY)
	descent := F26Dot6FromInt(int32(p.font.Descent())).Mul(scaleY)

	var phantoms [numPhantomPoints]GridFittedPoint
	phantoms[phantomLSB] = GridFittedPoint{OriginalX: lsb, CurrentX: lsb}
	phantoms[phantomAdvanceWidth] = GridFittedPoint{OriginalX: lsb + advance, CurrentX: lsb + advance}
	phantoms[phantomTopBearing] = GridFittedPoint{OriginalY: ascent, CurrentY: ascent}
	phantoms[phantomBottomBearing] = GridFittedPoint{OriginalY: descent, CurrentY: descent}

	return p.runGlyphProgram(g.Instructions, points, contourEnds, phantoms)
}

// ExecuteGlyphPoints runs a glyph program against a zone 1 that a caller
// has already assembled itself (outline points in font-unit-derived 26.6,
// followed by the four phantom points), instead of one built from a Font's
// Glyph. This serves a container parser that already has its own outline
// decoding, scaling and metrics logic and only wants the instruction
// execution: points must have at least numPhantomPoints entries, and the
// last four are taken as the phantom points. SetResolution need not have
// been called; the scale is implicit in the supplied coordinates.
func (p *Processor) ExecuteGlyphPoints(program []byte, points []GridFittedPoint, contourEnds []int) ([]GridFittedPoint, error) {
	if len(points) < numPhantomPoints {
		return nil, &Error{Kind: ErrInvalidPointIndex}
	}
	outline := points[:len(points)-numPhantomPoints]
	var phantoms [numPhantomPoints]GridFittedPoint
	copy(phantoms[:], points[len(outline):])
	if _, err := p.runGlyphProgram(program, outline, contourEnds, phantoms); err != nil {
		return nil, err
	}
	return p.zones.points[ZoneGlyph], nil
}

// runGlyphProgram installs points and phantoms into zone 1 and runs
// program against them, the common tail of ExecuteGlyph and
// ExecuteGlyphPoints.
func (p *Processor) runGlyphProgram(program []byte, points []GridFittedPoint, contourEnds []int, phantoms [numPhantomPoints]GridFittedPoint) ([]HintedPoint, error) {
	p.zones.loadGlyph(points, contourEnds, phantoms)
	p.cvt.resetDiscipline()

	p.gs = p.defaultGS
	p.gs.resetForGlyphProgram()

	if p.gs.InstructionControl&inhibitGridFit == 0 && len(program) > 0 {
		code, err := Decode(GlyphProgram, program)
		if err != nil {
			return nil, err
		}
		if err := p.run(GlyphProgram, code); err != nil {
			return nil, err
		}
	}

	return p.hintedPoints(), nil
}

// hintedPoints copies zone 1's current state into the caller-facing
// representation of §6's output: contours followed by the four phantoms.
func (p *Processor) hintedPoints() []HintedPoint {
	zp := p.zones.points[ZoneGlyph]
	out := make([]HintedPoint, len(zp))
	for i, gp := range zp {
		out[i] = HintedPoint{X: gp.CurrentX, Y: gp.CurrentY, OnCurve: gp.OnCurve, LastInContour: gp.LastInContour}
	}
	return out
}
