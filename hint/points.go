// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import "math"

// getPoint returns a point's current position projected onto the
// projection vector (§4.5 "getPoint").
func (p *Processor) getPoint(zp, idx int32) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	return dotProduct(pt.CurrentX, pt.CurrentY, p.gs.ProjectionVector), nil
}

// getOriginalPoint returns a point's original position projected onto
// either the dual projection vector (useDual) or the projection vector.
func (p *Processor) getOriginalPoint(zp, idx int32, useDual bool) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	v := p.gs.ProjectionVector
	if useDual {
		v = p.gs.DualProjectionVector
	}
	return dotProduct(pt.OriginalX, pt.OriginalY, v), nil
}

// getPointX and getPointY return a point's raw, unprojected current
// coordinates; ISECT and ALIGN work on the raw outline, not the projection.
func (p *Processor) getPointX(zp, idx int32) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	return pt.CurrentX, nil
}

func (p *Processor) getPointY(zp, idx int32) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	return pt.CurrentY, nil
}

// getOriginalPointX and getOriginalPointY return a point's raw, unprojected
// original coordinates; SDPVTL builds the dual projection vector from these.
func (p *Processor) getOriginalPointX(zp, idx int32) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	return pt.OriginalX, nil
}

func (p *Processor) getOriginalPointY(zp, idx int32) (F26Dot6, error) {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return 0, err
	}
	return pt.OriginalY, nil
}

func vectorDot(a, b Vector) float64 {
	return a.X.toFloat64()*b.X.toFloat64() + b.Y.toFloat64()*a.Y.toFloat64()
}

// movePoint moves a point so that its projection lands on target,
// displacing it along the freedom vector (§4.5). Freedom perpendicular to
// projection is an error: there is no way to satisfy the constraint.
func (p *Processor) movePoint(zp, idx int32, target F26Dot6) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	cur := dotProduct(pt.CurrentX, pt.CurrentY, p.gs.ProjectionVector)
	d := target - cur
	if d == 0 {
		pt.touch(p.gs.FreedomVector)
		return nil
	}
	dot := vectorDot(p.gs.FreedomVector, p.gs.ProjectionVector)
	if dot == 0 {
		return p.fail(ErrFreedomPerpendicularToProjection, nil)
	}
	scale := float64(d) / dot
	pt.CurrentX += F26Dot6(math.Round(scale * p.gs.FreedomVector.X.toFloat64()))
	pt.CurrentY += F26Dot6(math.Round(scale * p.gs.FreedomVector.Y.toFloat64()))
	pt.touch(p.gs.FreedomVector)
	return nil
}

// moveOriginalPoint is movePoint's twilight-zone counterpart: it adjusts a
// point's original position (along the dual projection vector) instead of
// its current one. Used only by the undocumented twilight-mirroring MIRP,
// MIAP and MSIRP perform (§9).
func (p *Processor) moveOriginalPoint(zp, idx int32, target F26Dot6) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	cur := dotProduct(pt.OriginalX, pt.OriginalY, p.gs.DualProjectionVector)
	d := target - cur
	if d == 0 {
		return nil
	}
	dot := vectorDot(p.gs.FreedomVector, p.gs.DualProjectionVector)
	if dot == 0 {
		return p.fail(ErrFreedomPerpendicularToProjection, nil)
	}
	scale := float64(d) / dot
	pt.OriginalX += F26Dot6(math.Round(scale * p.gs.FreedomVector.X.toFloat64()))
	pt.OriginalY += F26Dot6(math.Round(scale * p.gs.FreedomVector.Y.toFloat64()))
	return nil
}

func (p *Processor) movePointToXY(zp, idx int32, x, y F26Dot6) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	pt.CurrentX, pt.CurrentY = x, y
	pt.touch(unitX)
	pt.touch(unitY)
	return nil
}

func (p *Processor) moveOriginalPointToXY(zp, idx int32, x, y F26Dot6) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	pt.OriginalX, pt.OriginalY = x, y
	return nil
}

// shiftPoint adds distance along the freedom vector to a point's current
// position, touching the axes it moves unless touch is false (SHZ leaves
// points untouched, per an undocumented quirk of the reference
// rasterizer).
func (p *Processor) shiftPoint(zp, idx int32, distance F26Dot6, touch bool) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	pt.CurrentX += F26Dot6(math.Round(float64(distance) * p.gs.FreedomVector.X.toFloat64()))
	pt.CurrentY += F26Dot6(math.Round(float64(distance) * p.gs.FreedomVector.Y.toFloat64()))
	if touch {
		pt.touch(p.gs.FreedomVector)
	}
	return nil
}

func (p *Processor) unTouchPoint(zp, idx int32) error {
	pt, err := p.zones.point(zp, idx)
	if err != nil {
		return err
	}
	pt.TouchedX, pt.TouchedY = false, false
	return nil
}

// contourRange returns the first and last point index (inclusive) of
// contour n in zone 1.
func (p *Processor) contourRange(n int32) (int32, int32, error) {
	if n < 0 || int(n) >= len(p.zones.contourEnds) {
		return 0, 0, p.fail(ErrInvalidContourIndex, nil)
	}
	first := int32(0)
	if n > 0 {
		first = int32(p.zones.contourEnds[n-1]) + 1
	}
	return first, int32(p.zones.contourEnds[n]), nil
}

// compensateForColour is the engine-characteristics hook MDRP/MIRP call
// after rounding (§9 design notes): this rasterizer applies no
// colour-dependent compensation, so it is the identity function.
func (p *Processor) compensateForColour(d F26Dot6, colour int32) F26Dot6 { return d }

// execMDAP handles MDAP[0|1] (0x2E/0x2F): touch a point, optionally
// snapping it to its own rounded projection, and set rp0=rp1=p.
func (p *Processor) execMDAP(inst Instruction) (int, error) {
	pt := p.stack.pop()
	zp0 := p.gs.ZP[0]
	cur, err := p.getPoint(zp0, pt)
	if err != nil {
		return 0, err
	}
	target := cur
	if inst.Opcode == opMDAP1 {
		target = p.gs.round(cur)
	}
	if err := p.movePoint(zp0, pt, target); err != nil {
		return 0, err
	}
	p.gs.RP[0], p.gs.RP[1] = pt, pt
	return p.pc + 1, nil
}

// execMIAP handles MIAP[0|1] (0x3E/0x3F): move a point to a CVT-indexed
// distance, with the twilight-zone original-position and cut-in quirks of
// §9.
func (p *Processor) execMIAP(inst Instruction) (int, error) {
	n := p.stack.pop()
	pt := p.stack.pop()
	z := p.gs.ZP[0]

	cvtPos, err := p.cvt.read(n, p.currentPPEM(p.gs.ProjectionVector), p.inGlyphProgram())
	if err != nil {
		return 0, err
	}
	curPos, err := p.getPoint(z, pt)
	if err != nil {
		return 0, err
	}

	if z == ZoneTwilight {
		if err := p.moveOriginalPoint(z, pt, cvtPos); err != nil {
			return 0, err
		}
	}

	if inst.Opcode == opMIAP0 {
		if err := p.movePoint(z, pt, cvtPos); err != nil {
			return 0, err
		}
	} else {
		cutIn := p.gs.ControlValueCutIn
		if z == ZoneTwilight || ((cvtPos-curPos) < cutIn && (curPos-cvtPos) < cutIn) {
			if err := p.movePoint(z, pt, p.gs.round(cvtPos)); err != nil {
				return 0, err
			}
		} else {
			if err := p.movePoint(z, pt, p.gs.round(curPos)); err != nil {
				return 0, err
			}
		}
	}
	p.gs.RP[0], p.gs.RP[1] = pt, pt
	return p.pc + 1, nil
}

// execMDRP handles the MDRP family (0xC0-0xDF): move a point relative to
// rp0 by the distance between their original positions, applying the
// single-width and minimum-distance substitutions of §4.6.
func (p *Processor) execMDRP(inst Instruction) (int, error) {
	pt := p.stack.pop()
	zp1, zp0, rp0 := p.gs.ZP[1], p.gs.ZP[0], p.gs.RP[0]

	orig1, err := p.getOriginalPoint(zp1, pt, true)
	if err != nil {
		return 0, err
	}
	orig0, err := p.getOriginalPoint(zp0, rp0, true)
	if err != nil {
		return 0, err
	}
	newDist := orig1 - orig0
	negative := newDist < 0

	cutIn := p.gs.SingleWidthCutIn
	sw := p.gs.SingleWidthValue
	if (sw >= 0) == negative {
		sw = -sw
	}
	if (newDist-sw) < cutIn && (sw-newDist) < cutIn {
		newDist = sw
	}

	flags := inst.Opcode - opMDRP
	if flags&mrpRound != 0 {
		newDist = p.gs.round(newDist)
	}
	if flags&mrpMinDist != 0 {
		minDist := p.gs.MinimumDistance
		if (minDist >= 0) == negative {
			if -minDist < newDist {
				newDist = -minDist
			}
		} else if newDist < minDist {
			newDist = minDist
		}
	}
	newDist = p.compensateForColour(newDist, int32(flags&mrpColorMask))

	rp0Pos, err := p.getPoint(zp0, rp0)
	if err != nil {
		return 0, err
	}
	if err := p.movePoint(zp1, pt, rp0Pos+newDist); err != nil {
		return 0, err
	}
	p.gs.RP[1], p.gs.RP[2] = rp0, pt
	if flags&mrpSetRP0 != 0 {
		p.gs.RP[0] = pt
	}
	return p.pc + 1, nil
}

// execMIRP handles the MIRP family (0xE0-0xFF): as MDRP, but the target
// distance comes from the CVT (auto-flipped to the outline's sign), with
// the undocumented twilight-zone triple-mirror of §9.
func (p *Processor) execMIRP(inst Instruction) (int, error) {
	cvtIdx := p.stack.pop()
	pt := p.stack.pop()
	zp1, zp0, rp0 := p.gs.ZP[1], p.gs.ZP[0], p.gs.RP[0]

	cvtDist, err := p.cvt.read(cvtIdx, p.currentPPEM(p.gs.ProjectionVector), p.inGlyphProgram())
	if err != nil {
		return 0, err
	}
	rp0Pos, err := p.getPoint(zp0, rp0)
	if err != nil {
		return 0, err
	}
	orig1, err := p.getOriginalPoint(zp1, pt, true)
	if err != nil {
		return 0, err
	}
	orig0, err := p.getOriginalPoint(zp0, rp0, true)
	if err != nil {
		return 0, err
	}
	newDist := orig1 - orig0
	negative := newDist < 0

	if p.gs.AutoFlip && (cvtDist >= 0) == negative {
		cvtDist = -cvtDist
	}

	flags := inst.Opcode - opMIRP
	if flags&mrpRound != 0 {
		cutIn := p.gs.ControlValueCutIn
		if (cvtDist-newDist) < cutIn && (newDist-cvtDist) < cutIn {
			newDist = p.gs.round(cvtDist)
		} else {
			newDist = p.gs.round(newDist)
		}
	} else {
		newDist = cvtDist
	}

	if flags&mrpMinDist != 0 {
		minDist := p.gs.MinimumDistance
		if p.gs.AutoFlip {
			if (minDist >= 0) == negative {
				if -minDist < newDist {
					newDist = -minDist
				}
			} else if newDist < minDist {
				newDist = minDist
			}
		} else if newDist < minDist {
			newDist = minDist
		}
	}
	newDist = p.compensateForColour(newDist, int32(flags&mrpColorMask))

	if zp1 == ZoneTwilight {
		rx, err := p.getPointX(zp0, rp0)
		if err != nil {
			return 0, err
		}
		ry, err := p.getPointY(zp0, rp0)
		if err != nil {
			return 0, err
		}
		if err := p.movePointToXY(zp1, pt, rx, ry); err != nil {
			return 0, err
		}
		if err := p.moveOriginalPointToXY(zp1, pt, rx, ry); err != nil {
			return 0, err
		}
		if err := p.moveOriginalPoint(zp1, pt, rp0Pos+newDist); err != nil {
			return 0, err
		}
	}

	if err := p.movePoint(zp1, pt, rp0Pos+newDist); err != nil {
		return 0, err
	}
	p.gs.RP[1], p.gs.RP[2] = rp0, pt
	if flags&mrpSetRP0 != 0 {
		p.gs.RP[0] = pt
	}
	return p.pc + 1, nil
}

// execISECT implements ISECT (0x0F): move a point to the intersection of
// two lines given by raw (unprojected) point pairs, falling back to the
// midpoint of both segments' endpoints when the lines are parallel (§9).
func (p *Processor) execISECT(inst Instruction) (int, error) {
	b1 := p.stack.pop()
	b0 := p.stack.pop()
	a1 := p.stack.pop()
	a0 := p.stack.pop()
	pt := p.stack.pop()
	zp2, zp1, zp0 := p.gs.ZP[2], p.gs.ZP[1], p.gs.ZP[0]

	xa, err := p.getPointX(zp1, a0)
	if err != nil {
		return 0, err
	}
	ya, err := p.getPointY(zp1, a0)
	if err != nil {
		return 0, err
	}
	xa1, err := p.getPointX(zp1, a1)
	if err != nil {
		return 0, err
	}
	ya1, err := p.getPointY(zp1, a1)
	if err != nil {
		return 0, err
	}
	dxa, dya := xa1-xa, ya1-ya

	xb, err := p.getPointX(zp0, b0)
	if err != nil {
		return 0, err
	}
	yb, err := p.getPointY(zp0, b0)
	if err != nil {
		return 0, err
	}
	xb1, err := p.getPointX(zp0, b1)
	if err != nil {
		return 0, err
	}
	yb1, err := p.getPointY(zp0, b1)
	if err != nil {
		return 0, err
	}
	dxb, dyb := xb1-xb, yb1-yb

	if int64(dxb)*int64(dya) == int64(dxa)*int64(dyb) {
		x := (xa + xb + (dxa+dxb)/2) / 2
		y := (ya + yb + (dya+dyb)/2) / 2
		return p.pc + 1, p.movePointToXY(zp2, pt, x, y)
	}

	den := int64(dxb)*int64(dya) - int64(dxa)*int64(dyb)
	xNum := -int64(xb)*int64(dxa)*int64(dyb) + int64(dxa)*int64(dxb)*int64(yb) -
		int64(dxa)*int64(dxb)*int64(ya) + int64(xa)*int64(dxb)*int64(dya)
	yNum := int64(dxb)*int64(dya)*int64(yb) - int64(dxa)*int64(ya)*int64(dyb) -
		int64(xb)*int64(dya)*int64(dyb) + int64(xa)*int64(dya)*int64(dyb)
	x := F26Dot6(xNum / den)
	y := F26Dot6(yNum / den)
	return p.pc + 1, p.movePointToXY(zp2, pt, x, y)
}

// execAlignRP handles ALIGN (0x3C, "ALIGNRP"): snap loop popped points onto
// rp0's current projected position.
func (p *Processor) execAlignRP() (int, error) {
	zp0, zp1, rp0 := p.gs.ZP[0], p.gs.ZP[1], p.gs.RP[0]
	loop := p.gs.Loop
	for ; loop > 0; loop-- {
		pt := p.stack.pop()
		target, err := p.getPoint(zp0, rp0)
		if err != nil {
			return 0, err
		}
		if err := p.movePoint(zp1, pt, target); err != nil {
			return 0, err
		}
	}
	p.gs.Loop = 1
	return p.pc + 1, nil
}

// execAlignPts handles ALIGNPTS (0x27): move two points to the midpoint of
// their projected positions. The reference rasterizer's formula subtracts
// a raw point index from a position value (see DESIGN.md); this
// implementation uses the dimensionally-consistent average instead.
func (p *Processor) execAlignPts() (int, error) {
	zp0, zp1 := p.gs.ZP[0], p.gs.ZP[1]
	p1 := p.stack.pop()
	p2 := p.stack.pop()
	v1, err := p.getPoint(zp1, p1)
	if err != nil {
		return 0, err
	}
	v2, err := p.getPoint(zp0, p2)
	if err != nil {
		return 0, err
	}
	newPos := (v1 + v2 + 1) / 2
	if err := p.movePoint(zp1, p1, newPos); err != nil {
		return 0, err
	}
	if err := p.movePoint(zp0, p2, newPos); err != nil {
		return 0, err
	}
	return p.pc + 1, nil
}

// execIP handles IP (0x39): interpolate loop popped points between rp1 and
// rp2 so their relative position (by original coordinates) is preserved.
func (p *Processor) execIP() (int, error) {
	loop := p.gs.Loop
	for ; loop > 0; loop-- {
		pt := p.stack.pop()
		zp0, zp1, zp2 := p.gs.ZP[0], p.gs.ZP[1], p.gs.ZP[2]
		rp1, rp2 := p.gs.RP[1], p.gs.RP[2]

		orig1, err := p.getOriginalPoint(zp0, rp1, true)
		if err != nil {
			return 0, err
		}
		orig2, err := p.getOriginalPoint(zp1, rp2, true)
		if err != nil {
			return 0, err
		}
		origPos, err := p.getOriginalPoint(zp2, pt, true)
		if err != nil {
			return 0, err
		}
		cur1, err := p.getPoint(zp0, rp1)
		if err != nil {
			return 0, err
		}
		cur2, err := p.getPoint(zp1, rp2)
		if err != nil {
			return 0, err
		}

		var newPos F26Dot6
		if orig1 == orig2 {
			newPos = (cur1 + cur2) / 2
		} else {
			newPos = cur1 + F26Dot6((int64(origPos-orig1)*int64(cur2-cur1))/int64(orig2-orig1))
		}
		if err := p.movePoint(zp2, pt, newPos); err != nil {
			return 0, err
		}
	}
	p.gs.Loop = 1
	return p.pc + 1, nil
}

// execMSIRP handles MSIRP[0|1] (0x3A/0x3B): move a point to a popped
// distance from rp0, with the twilight triple-mirror of §9.
func (p *Processor) execMSIRP(inst Instruction) (int, error) {
	distance := F26Dot6(p.stack.pop())
	pt := p.stack.pop()
	zp0, zp1, rp0 := p.gs.ZP[0], p.gs.ZP[1], p.gs.RP[0]

	if zp1 == ZoneTwilight {
		rx, err := p.getPointX(zp0, rp0)
		if err != nil {
			return 0, err
		}
		ry, err := p.getPointY(zp0, rp0)
		if err != nil {
			return 0, err
		}
		rp0Proj, err := p.getPoint(zp0, rp0)
		if err != nil {
			return 0, err
		}
		if err := p.moveOriginalPointToXY(zp1, pt, rx, ry); err != nil {
			return 0, err
		}
		if err := p.moveOriginalPoint(zp1, pt, rp0Proj+distance); err != nil {
			return 0, err
		}
		if err := p.movePointToXY(zp1, pt, rx, ry); err != nil {
			return 0, err
		}
	}

	rp0Proj, err := p.getPoint(zp0, rp0)
	if err != nil {
		return 0, err
	}
	if err := p.movePoint(zp1, pt, rp0Proj+distance); err != nil {
		return 0, err
	}
	p.gs.RP[1], p.gs.RP[2] = rp0, pt
	if inst.Opcode == opMSIRP1 {
		p.gs.RP[0] = pt
	}
	return p.pc + 1, nil
}

// execShift implements SHP/SHC/SHZ (shift point/contour/zone): all three
// derive a raw distance from how far a reference point has already moved,
// then apply it to a set of other points without re-touching the
// reference point itself.
func (p *Processor) execShiftPoint(inst Instruction) (int, error) {
	zp2 := p.gs.ZP[2]
	var zp, rp int32
	if inst.Opcode == opSHP0 {
		zp, rp = p.gs.ZP[1], p.gs.RP[2]
	} else {
		zp, rp = p.gs.ZP[0], p.gs.RP[1]
	}
	distance, err := p.shiftDistance(zp, rp)
	if err != nil {
		return 0, err
	}
	loop := p.gs.Loop
	for ; loop > 0; loop-- {
		pt := p.stack.pop()
		if err := p.shiftPoint(zp2, pt, distance, true); err != nil {
			return 0, err
		}
	}
	p.gs.Loop = 1
	return p.pc + 1, nil
}

func (p *Processor) execShiftContour(inst Instruction) (int, error) {
	if p.gs.ZP[2] != ZoneGlyph {
		return 0, p.fail(ErrInvalidZonePointer, nil)
	}
	var zp, rp int32
	if inst.Opcode == opSHC0 {
		zp, rp = p.gs.ZP[1], p.gs.RP[2]
	} else {
		zp, rp = p.gs.ZP[0], p.gs.RP[1]
	}
	distance, err := p.shiftDistance(zp, rp)
	if err != nil {
		return 0, err
	}
	n := p.stack.pop()
	first, last, err := p.contourRange(n)
	if err != nil {
		return 0, err
	}
	for i := first; i <= last; i++ {
		if zp != ZoneGlyph || i != rp {
			if err := p.shiftPoint(ZoneGlyph, i, distance, true); err != nil {
				return 0, err
			}
		}
	}
	return p.pc + 1, nil
}

func (p *Processor) execShiftZone(inst Instruction) (int, error) {
	zone := p.stack.pop()
	var zp, rp int32
	if inst.Opcode == opSHZ0 {
		zp, rp = p.gs.ZP[1], p.gs.RP[2]
	} else {
		zp, rp = p.gs.ZP[0], p.gs.RP[1]
	}
	distance, err := p.shiftDistance(zp, rp)
	if err != nil {
		return 0, err
	}
	var max int32
	if zp == ZoneTwilight {
		max = int32(len(p.zones.points[ZoneTwilight]))
	} else {
		max = int32(len(p.zones.points[ZoneGlyph])) - numPhantomPoints
	}
	for i := int32(0); i < max; i++ {
		if zone != zp || i != rp {
			// Undocumented: SHZ does not touch the points it shifts.
			if err := p.shiftPoint(zone, i, distance, false); err != nil {
				return 0, err
			}
		}
	}
	return p.pc + 1, nil
}

func (p *Processor) shiftDistance(zp, rp int32) (F26Dot6, error) {
	cur, err := p.getPoint(zp, rp)
	if err != nil {
		return 0, err
	}
	orig, err := p.getOriginalPoint(zp, rp, false)
	if err != nil {
		return 0, err
	}
	return cur - orig, nil
}

// execSHPIX handles SHPIX (0x38): shift loop popped points by a popped
// pixel amount along the freedom vector.
func (p *Processor) execSHPIX() (int, error) {
	amount := F26Dot6(p.stack.pop())
	zp2 := p.gs.ZP[2]
	loop := p.gs.Loop
	for ; loop > 0; loop-- {
		pt := p.stack.pop()
		if err := p.shiftPoint(zp2, pt, amount, true); err != nil {
			return 0, err
		}
	}
	p.gs.Loop = 1
	return p.pc + 1, nil
}

// execUTP handles UTP (0x29): clear a point's touch flags. Zone 1 only
// (§9).
func (p *Processor) execUTP() (int, error) {
	if p.gs.ZP[0] != ZoneGlyph {
		return 0, p.fail(ErrInvalidZonePointer, nil)
	}
	pt := p.stack.pop()
	return p.pc + 1, p.unTouchPoint(p.gs.ZP[0], pt)
}

// execFlipPt handles FLIPPT (0x80): toggle loop popped points' on-curve
// flag. Zone 1 only.
func (p *Processor) execFlipPt() (int, error) {
	if p.gs.ZP[0] != ZoneGlyph {
		return 0, p.fail(ErrInvalidZonePointer, nil)
	}
	loop := p.gs.Loop
	for ; loop > 0; loop-- {
		pt := p.stack.pop()
		gp, err := p.zones.point(ZoneGlyph, pt)
		if err != nil {
			return 0, err
		}
		gp.OnCurve = !gp.OnCurve
	}
	p.gs.Loop = 1
	return p.pc + 1, nil
}

// execFlipRange handles FLIPRGON/FLIPRGOFF (0x81/0x82): set the on-curve
// flag over an inclusive point index range.
func (p *Processor) execFlipRange(inst Instruction) (int, error) {
	high := p.stack.pop()
	low := p.stack.pop()
	if high < low {
		return 0, p.fail(ErrInvalidPointIndex, nil)
	}
	on := inst.Opcode == opFLIPRGON
	for i := low; i <= high; i++ {
		gp, err := p.zones.point(ZoneGlyph, i)
		if err != nil {
			return 0, err
		}
		gp.OnCurve = on
	}
	return p.pc + 1, nil
}

// execGC handles GC[0|1] (0x46/0x47): push a point's current or original
// projected position.
func (p *Processor) execGC(inst Instruction) (int, error) {
	pt := p.stack.pop()
	zp2 := p.gs.ZP[2]
	var v F26Dot6
	var err error
	if inst.Opcode == opGC0 {
		v, err = p.getPoint(zp2, pt)
	} else {
		v, err = p.getOriginalPoint(zp2, pt, true)
	}
	if err != nil {
		return 0, err
	}
	p.push(int32(v))
	return p.pc + 1, nil
}

// execSCFS handles SCFS (0x48): move a point to an absolute projected
// coordinate, mirroring into the original position when in the twilight
// zone (§9).
func (p *Processor) execSCFS() (int, error) {
	value := F26Dot6(p.stack.pop())
	pt := p.stack.pop()
	zp2 := p.gs.ZP[2]
	if err := p.movePoint(zp2, pt, value); err != nil {
		return 0, err
	}
	if zp2 == ZoneTwilight {
		if err := p.moveOriginalPoint(zp2, pt, value); err != nil {
			return 0, err
		}
	}
	return p.pc + 1, nil
}

// execMD handles MD[0|1] (0x49/0x4A): push the projected distance between
// two points' current or original positions.
func (p *Processor) execMD(inst Instruction) (int, error) {
	p1 := p.stack.pop()
	p2 := p.stack.pop()
	zp1, zp0 := p.gs.ZP[1], p.gs.ZP[0]
	var v F26Dot6
	var err error
	if inst.Opcode == opMD0 {
		var a, b F26Dot6
		if a, err = p.getPoint(zp0, p2); err == nil {
			b, err = p.getPoint(zp1, p1)
		}
		v = a - b
	} else {
		var a, b F26Dot6
		if a, err = p.getOriginalPoint(zp0, p2, true); err == nil {
			b, err = p.getOriginalPoint(zp1, p1, true)
		}
		v = a - b
	}
	if err != nil {
		return 0, err
	}
	p.push(int32(v))
	return p.pc + 1, nil
}

// deltaStep is the pixel granularity one DELTAP/DELTAC magnitude unit
// represents at the current DeltaShift (§4.4's "magnitude ... × 2^-delta_shift
// px"): default DeltaShift 3 gives an eighth-pixel step.
func (gs *GraphicsState) deltaStep() F26Dot6 {
	return F26Dot6(64) >> uint(gs.DeltaShift)
}

// execDeltaP handles DELTAP1/2/3 (0x5D, 0x71, 0x72): conditionally nudge
// points by a tunable amount at an exact, font-declared PPEM.
func (p *Processor) execDeltaP(inst Instruction) (int, error) {
	n := p.stack.pop()
	zp0 := p.gs.ZP[0]
	base := p.gs.DeltaBase
	switch inst.Opcode {
	case opDELTAP2:
		base += 16
	case opDELTAP3:
		base += 32
	}
	ppem := int32(p.currentPPEM(p.gs.ProjectionVector) >> 6)
	step := p.gs.deltaStep()
	for ; n > 0; n-- {
		pt := p.stack.pop()
		arg := p.stack.pop()
		if ppem == base+((arg>>4)&0xF) {
			magnitude := arg & 0xF
			if magnitude <= 7 {
				magnitude -= 8
			} else {
				magnitude -= 7
			}
			if err := p.shiftPoint(zp0, pt, F26Dot6(magnitude)*step, true); err != nil {
				return 0, err
			}
		}
	}
	return p.pc + 1, nil
}

// execDeltaC handles DELTAC1/2/3 (0x73-0x75): DELTAP's analogue for CVT
// entries.
func (p *Processor) execDeltaC(inst Instruction) (int, error) {
	n := p.stack.pop()
	base := p.gs.DeltaBase
	switch inst.Opcode {
	case opDELTAC2:
		base += 16
	case opDELTAC3:
		base += 32
	}
	currentPPEM := p.currentPPEM(p.gs.ProjectionVector)
	ppem := int32(currentPPEM >> 6)
	step := p.gs.deltaStep()
	for ; n > 0; n-- {
		idx := p.stack.pop()
		arg := p.stack.pop()
		if ppem == base+((arg>>4)&0xF) {
			magnitude := arg & 0xF
			if magnitude <= 7 {
				magnitude -= 8
			} else {
				magnitude -= 7
			}
			v, err := p.cvt.read(idx, currentPPEM, p.inGlyphProgram())
			if err != nil {
				return 0, err
			}
			if err := p.cvt.writePixels(idx, v+F26Dot6(magnitude)*step, currentPPEM, p.inGlyphProgram()); err != nil {
				return 0, err
			}
		}
	}
	return p.pc + 1, nil
}

// execIUP handles IUP[0|1] (0x30/0x31): interpolate every untouched point
// of the glyph zone between the touched points bracketing it in each
// contour, per §4.8.
func (p *Processor) execIUP(inst Instruction) (int, error) {
	if p.gs.ZP[2] != ZoneGlyph {
		return 0, p.fail(ErrInvalidZonePointer, nil)
	}
	isX := inst.Opcode == opIUP1
	pts := p.zones.points[ZoneGlyph]
	start := 0
	for _, end := range p.zones.contourEnds {
		iupContour(pts, start, end, isX)
		start = end + 1
	}
	return p.pc + 1, nil
}

func iupContour(pts []GridFittedPoint, first, last int, isX bool) {
	n := last - first + 1
	if n <= 0 {
		return
	}
	touched := func(i int) bool {
		if isX {
			return pts[first+i].TouchedX
		}
		return pts[first+i].TouchedY
	}
	orig := func(i int) F26Dot6 {
		if isX {
			return pts[first+i].OriginalX
		}
		return pts[first+i].OriginalY
	}
	cur := func(i int) F26Dot6 {
		if isX {
			return pts[first+i].CurrentX
		}
		return pts[first+i].CurrentY
	}
	setCur := func(i int, v F26Dot6) {
		if isX {
			pts[first+i].CurrentX = v
		} else {
			pts[first+i].CurrentY = v
		}
	}

	var touchedIdx []int
	for i := 0; i < n; i++ {
		if touched(i) {
			touchedIdx = append(touchedIdx, i)
		}
	}
	if len(touchedIdx) == 0 {
		return
	}
	if len(touchedIdx) == 1 {
		lo := touchedIdx[0]
		delta := cur(lo) - orig(lo)
		for i := 0; i < n; i++ {
			if i != lo {
				setCur(i, orig(i)+delta)
			}
		}
		return
	}
	for k, lo := range touchedIdx {
		hi := touchedIdx[(k+1)%len(touchedIdx)]
		oa, ob := orig(lo), orig(hi)
		pa, pb := cur(lo), cur(hi)
		if oa > ob {
			oa, ob = ob, oa
			pa, pb = pb, pa
		}
		for i := (lo + 1) % n; i != hi; i = (i + 1) % n {
			op := orig(i)
			var v F26Dot6
			switch {
			case op <= oa:
				v = pa + (op - oa)
			case op >= ob:
				v = pb + (op - ob)
			default:
				v = pa + F26Dot6((int64(pb-pa)*int64(op-oa))/int64(ob-oa))
			}
			setCur(i, v)
		}
	}
}

// dispatchPoints is the fallback case of dispatch: every opcode not
// already handled by a dedicated family switch is a point-manipulation
// instruction.
func (p *Processor) dispatchPoints(inst Instruction) (int, error) {
	switch inst.Opcode {
	case opMDAP0, opMDAP1:
		return p.execMDAP(inst)
	case opMIAP0, opMIAP1:
		return p.execMIAP(inst)
	case opALIGNRP:
		return p.execAlignRP()
	case opALIGNPTS:
		return p.execAlignPts()
	case opIP:
		return p.execIP()
	case opMSIRP0, opMSIRP1:
		return p.execMSIRP(inst)
	case opSHP0, opSHP1:
		return p.execShiftPoint(inst)
	case opSHC0, opSHC1:
		return p.execShiftContour(inst)
	case opSHZ0, opSHZ1:
		return p.execShiftZone(inst)
	case opSHPIX:
		return p.execSHPIX()
	case opUTP:
		return p.execUTP()
	case opFLIPPT:
		return p.execFlipPt()
	case opFLIPRGON, opFLIPRGOFF:
		return p.execFlipRange(inst)
	case opGC0, opGC1:
		return p.execGC(inst)
	case opSCFS:
		return p.execSCFS()
	case opMD0, opMD1:
		return p.execMD(inst)
	case opDELTAP1, opDELTAP2, opDELTAP3:
		return p.execDeltaP(inst)
	case opDELTAC1, opDELTAC2, opDELTAC3:
		return p.execDeltaC(inst)
	case opIUP0, opIUP1:
		return p.execIUP(inst)
	case opSANGW, opAA:
		p.stack.pop()
		return p.pc + 1, nil
	}
	return 0, p.fail(ErrUnsupportedInstruction, nil)
}
