// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"github.com/goki/fonthint/hint"
)

// A Hinter bytecode-hints a Font's glyphs, scaling their contours to a
// given PPEM and running the font's prep/fpgm/glyph programs against them.
// The actual bytecode virtual machine lives in the hint package; a Hinter
// is a thin adapter that feeds a GlyphBuf's already-decoded, already-scaled
// points to that machine and copies the grid-fitted result back.
//
// The zero Hinter is usable; it lazily builds a hint.Processor for the
// first Font it sees and rebuilds it whenever the Font or scale changes.
type Hinter struct {
	font  *Font
	scale int32
	proc  *hint.Processor
}

// init prepares h to hint glyphs from f at the given scale (the number of
// 26.6 fixed point units in 1 em), rebuilding the underlying processor if
// the font or the scale has changed since the last call.
func (h *Hinter) init(f *Font, scale int32) error {
	if h.proc == nil || h.font != f {
		proc, err := hint.NewProcessor(fontAdapter{f})
		if err != nil {
			return err
		}
		h.proc, h.font, h.scale = proc, f, 0
	}
	if h.scale != scale {
		// scale is the number of 26.6 units in 1 em; ppem is that value
		// rounded to the nearest whole pixel, and 72dpi makes point size
		// and PPEM coincide.
		ppem := uint32((scale + 32) >> 6)
		if ppem == 0 {
			ppem = 1
		}
		if err := h.proc.SetResolution(ppem, ppem, ppem); err != nil {
			return err
		}
		h.scale = scale
	}
	return nil
}

// run grid-fits a glyph program against pCurrent, a simple glyph's contour
// points followed by its four phantom points, already scaled to h's PPEM
// by the caller. ends holds the exclusive-end point index of each contour,
// relative to pCurrent. pUnhinted and pInFontUnits are accepted for
// compatibility with the GlyphBuf call sites but are not consulted: at the
// point GlyphBuf calls run, pUnhinted's contents are identical to
// pCurrent's, and the underlying processor does not model an in-font-units
// view.
func (h *Hinter) run(program []byte, pCurrent, pUnhinted, pInFontUnits []Point, ends []int) error {
	if h.proc == nil {
		return UnsupportedError("Hinter.init not called")
	}
	if len(pCurrent) < numPhantomPoints {
		return FormatError("too few points for phantom points")
	}

	points := make([]hint.GridFittedPoint, len(pCurrent))
	for i, p := range pCurrent {
		x, y := hint.F26Dot6(p.X), hint.F26Dot6(p.Y)
		points[i] = hint.GridFittedPoint{
			OriginalX: x,
			OriginalY: y,
			CurrentX:  x,
			CurrentY:  y,
			OnCurve:   p.Flags&flagOnCurve != 0,
		}
	}
	contourEnds := make([]int, len(ends))
	for i, e := range ends {
		contourEnds[i] = e - 1
		if contourEnds[i] >= 0 && contourEnds[i] < len(points) {
			points[contourEnds[i]].LastInContour = true
		}
	}

	out, err := h.proc.ExecuteGlyphPoints(program, points, contourEnds)
	if err != nil {
		return err
	}
	for i := range pCurrent {
		pCurrent[i].X = int32(out[i].CurrentX)
		pCurrent[i].Y = int32(out[i].CurrentY)
	}
	return nil
}

const numPhantomPoints = 4

// fontAdapter presents a *Font as the hint.Font interface the processor
// consumes, decoding the raw maxp/hhea/fpgm/prep/cvt tables it already
// parsed at Font.Parse time.
type fontAdapter struct {
	f *Font
}

func (a fontAdapter) UnitsPerEm() uint16        { return uint16(a.f.unitsPerEm) }
func (a fontAdapter) MaxStorage() uint16        { return a.f.maxStorage }
func (a fontAdapter) MaxStackElements() uint16  { return a.f.maxStackElements }
func (a fontAdapter) MaxTwilightPoints() uint16 { return a.f.maxTwilightPoints }
func (a fontAdapter) MaxFunctionDefs() uint16   { return a.f.maxFunctionDefs }

func (a fontAdapter) Ascent() int16  { return int16(a.f.ascent) }
func (a fontAdapter) Descent() int16 { return int16(a.f.descent) }

func (a fontAdapter) FontProgramBytecode() []byte { return a.f.fpgm }
func (a fontAdapter) CVTProgramBytecode() []byte  { return a.f.prep }

func (a fontAdapter) ControlValueTable() []int16 {
	if len(a.f.cvt) == 0 {
		return nil
	}
	cvt := make([]int16, len(a.f.cvt)/2)
	for i := range cvt {
		cvt[i] = int16(u16(a.f.cvt, 2*i))
	}
	return cvt
}

// Glyph decodes glyph id's own contours directly from the font's loca/glyf
// tables, in unscaled font units. It satisfies hint.Font's interface for
// callers that drive a Processor via ExecuteGlyph; GlyphBuf.Load does not
// use this path (it already has its own scaled outline and phantom points,
// and calls ExecuteGlyphPoints directly through Hinter.run), so this method
// only needs to handle simple glyphs, matching hint.Font's documented
// contract that composite expansion has already happened upstream.
func (a fontAdapter) Glyph(id int) (hint.Glyph, error) {
	f := a.f
	i := Index(id)
	var g0, g1 uint32
	if f.locaOffsetFormat == locaOffsetFormatShort {
		g0 = 2 * uint32(u16(f.loca, 2*int(i)))
		g1 = 2 * uint32(u16(f.loca, 2*int(i)+2))
	} else {
		g0 = u32(f.loca, 4*int(i))
		g1 = u32(f.loca, 4*int(i)+4)
	}
	if g0 == g1 {
		return hint.Glyph{}, nil
	}
	glyf := f.glyf[g0:g1]
	ne := int(int16(u16(glyf, 0)))
	if ne < 0 {
		return hint.Glyph{}, UnsupportedError("compound glyph via hint.Font.Glyph")
	}

	offset := loadOffset
	ends := make([]int, ne)
	for i := 0; i < ne; i++ {
		ends[i] = 1 + int(u16(glyf, offset))
		offset += 2
	}
	instrLen := int(u16(glyf, offset))
	offset += 2
	instructions := glyf[offset : offset+instrLen]
	offset += instrLen

	np := 0
	if ne > 0 {
		np = ends[ne-1]
	}
	flags := make([]byte, np)
	for i := 0; i < np; {
		c := glyf[offset]
		offset++
		flags[i] = c
		i++
		if c&flagRepeat != 0 {
			count := glyf[offset]
			offset++
			for ; count > 0; count-- {
				flags[i] = c
				i++
			}
		}
	}

	xs := make([]int16, np)
	var x int16
	for i := 0; i < np; i++ {
		fl := flags[i]
		if fl&flagXShortVector != 0 {
			dx := int16(glyf[offset])
			offset++
			if fl&flagPositiveXShortVector == 0 {
				x -= dx
			} else {
				x += dx
			}
		} else if fl&flagThisXIsSame == 0 {
			x += int16(u16(glyf, offset))
			offset += 2
		}
		xs[i] = x
	}
	ys := make([]int16, np)
	var y int16
	for i := 0; i < np; i++ {
		fl := flags[i]
		if fl&flagYShortVector != 0 {
			dy := int16(glyf[offset])
			offset++
			if fl&flagPositiveYShortVector == 0 {
				y -= dy
			} else {
				y += dy
			}
		} else if fl&flagThisYIsSame == 0 {
			y += int16(u16(glyf, offset))
			offset += 2
		}
		ys[i] = y
	}

	contours := make([][]hint.ContourPoint, ne)
	prev := 0
	for c, end := range ends {
		contour := make([]hint.ContourPoint, 0, end-prev)
		for i := prev; i < end; i++ {
			contour = append(contour, hint.ContourPoint{X: xs[i], Y: ys[i], OnCurve: flags[i]&flagOnCurve != 0})
		}
		contours[c] = contour
		prev = end
	}

	uhm := f.unscaledHMetric(i)
	return hint.Glyph{
		AdvanceWidth: uint16(uhm.AdvanceWidth),
		LeftBearing:  int16(uhm.LeftSideBearing),
		Contours:     contours,
		Instructions: instructions,
	}, nil
}
