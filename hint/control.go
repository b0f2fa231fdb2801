// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// execPush handles PUSHB/PUSHW/NPUSHB/NPUSHW: the decoder already split
// out the immediate payload into inst.Args, so execution just pushes it.
func (p *Processor) execPush(inst Instruction) (int, error) {
	for _, v := range inst.Args {
		p.push(v)
	}
	return p.pc + 1, nil
}

// execIf implements IF: pop a boolean; if zero, scan forward (counting
// nested IFs) to the matching ELSE or EIF and resume just past it (§4.2).
func (p *Processor) execIf(inst Instruction) (int, error) {
	cond := p.stack.pop()
	if cond != 0 {
		return p.pc + 1, nil
	}
	return p.skipToEIF(inst, true)
}

// skipToEIF scans forward from the instruction after pc for the matching
// ELSE (only honored when fromIf is true, i.e. we are skipping a false
// IF-body) or EIF (always honored), counting nested IF/EIF pairs so inner
// conditionals are skipped whole.
func (p *Processor) skipToEIF(inst Instruction, fromIf bool) (int, error) {
	depth := 0
	for i := p.pc + 1; i < len(p.curCode.Instructions); i++ {
		op := p.curCode.Instructions[i].Opcode
		switch op {
		case opIF:
			depth++
		case opELSE:
			if depth == 0 && fromIf {
				return i + 1, nil
			}
		case opEIF:
			if depth == 0 {
				return i + 1, nil
			}
			depth--
		}
	}
	return 0, p.fail(ErrJumpOutOfRange, nil)
}

// execSetVectorToAxis handles SVTCA/SPVTCA/SFVTCA[0|1]: set one or more of
// freedom/projection(+dual) to a coordinate axis.
func (p *Processor) execSetVectorToAxis(inst Instruction) (int, error) {
	v := unitX
	if inst.Opcode == opSVTCA0 || inst.Opcode == opSPVTCA0 || inst.Opcode == opSFVTCA0 {
		v = unitY
	}
	switch inst.Opcode {
	case opSVTCA0, opSVTCA1:
		p.gs.FreedomVector = v
		p.gs.setProjectionVector(v)
	case opSPVTCA0, opSPVTCA1:
		p.gs.setProjectionVector(v)
	case opSFVTCA0, opSFVTCA1:
		p.gs.FreedomVector = v
	}
	return p.pc + 1, nil
}

// execSetVectorToLine handles SPVTL/SFVTL/SDPVTL: set (dual) projection or
// freedom to the direction of the line through two popped points, or to
// the direction perpendicular to it (the low bit of the opcode). Point 1
// (popped first) is addressed through ZP[2] and point 2 (popped second)
// through ZP[1] — the zone pointers are swapped relative to their index,
// a quirk carried through from the reference rasterizer. SDPVTL additionally
// derives a dual projection vector from the two points' original positions
// while still setting the ordinary projection vector from their current ones.
func (p *Processor) execSetVectorToLine(inst Instruction) (int, error) {
	idx1 := p.stack.pop()
	idx2 := p.stack.pop()
	zp1, zp2 := p.gs.ZP[2], p.gs.ZP[1]

	x1, err := p.getPointX(zp1, idx1)
	if err != nil {
		return 0, err
	}
	y1, err := p.getPointY(zp1, idx1)
	if err != nil {
		return 0, err
	}
	x2, err := p.getPointX(zp2, idx2)
	if err != nil {
		return 0, err
	}
	y2, err := p.getPointY(zp2, idx2)
	if err != nil {
		return 0, err
	}

	perp := inst.Opcode == opSPVTL1 || inst.Opcode == opSFVTL1 || inst.Opcode == opSDPVTL1
	var dx, dy F26Dot6
	if perp {
		dx, dy = y1-y2, x2-x1
	} else {
		dx, dy = x2-x1, y2-y1
	}
	var v Vector
	if err := SetVector(&v, F2Dot14(dx), F2Dot14(dy)); err != nil {
		return 0, err
	}

	switch {
	case inst.Opcode == opSPVTL0 || inst.Opcode == opSPVTL1:
		p.gs.setProjectionVector(v)
	case inst.Opcode == opSFVTL0 || inst.Opcode == opSFVTL1:
		p.gs.FreedomVector = v
	case inst.Opcode == opSDPVTL0 || inst.Opcode == opSDPVTL1:
		p.gs.setProjectionVector(v)

		ox1, err := p.getOriginalPointX(zp1, idx1)
		if err != nil {
			return 0, err
		}
		oy1, err := p.getOriginalPointY(zp1, idx1)
		if err != nil {
			return 0, err
		}
		ox2, err := p.getOriginalPointX(zp2, idx2)
		if err != nil {
			return 0, err
		}
		oy2, err := p.getOriginalPointY(zp2, idx2)
		if err != nil {
			return 0, err
		}
		var odx, ody F26Dot6
		if perp {
			odx, ody = oy1-oy2, ox2-ox1
		} else {
			odx, ody = ox2-ox1, oy2-oy1
		}
		var dv Vector
		if err := SetVector(&dv, F2Dot14(odx), F2Dot14(ody)); err != nil {
			return 0, err
		}
		p.gs.DualProjectionVector = dv
	}
	return p.pc + 1, nil
}

// execFDEF implements FDEF: the body runs from the instruction after FDEF
// to the matching ENDF (nesting is not allowed by the format, so a plain
// forward scan suffices), recorded against id in the function table.
func (p *Processor) execFDEF(inst Instruction) (int, error) {
	id := p.stack.pop()
	start := p.pc + 1
	for i := start; i < len(p.curCode.Instructions); i++ {
		if p.curCode.Instructions[i].Opcode == opENDF {
			if err := p.functions.define(id, p.curProgram, p.curCode, start, i); err != nil {
				return 0, err
			}
			return i + 1, nil
		}
	}
	return 0, p.fail(ErrJumpOutOfRange, nil)
}

// execENDF pops the call stack, resuming the caller right after its
// CALL/LOOPCALL, repeating the body again if a LOOPCALL has iterations
// left.
func (p *Processor) execENDF(inst Instruction) (int, error) {
	if len(p.callStack) == 0 {
		return 0, p.fail(ErrEmptyCallStack, nil)
	}
	top := &p.callStack[len(p.callStack)-1]
	top.loopsLeft--
	if top.loopsLeft > 0 {
		fd, err := p.functions.lookup(top.calleeID)
		if err != nil {
			return 0, err
		}
		return fd.start, nil
	}
	ret, retCode := top.returnIndex, top.returnCode
	p.callStack = p.callStack[:len(p.callStack)-1]
	p.curCode = retCode
	return ret, nil
}

// execCall implements CALL (count==1) and LOOPCALL (count from stack):
// push a call frame and jump to the function body, which may live in a
// different program's decoded Code (functions defined in fpgm/prep are
// called from glyph programs).
func (p *Processor) execCall(inst Instruction, id, count int32) (int, error) {
	if count <= 0 {
		return p.pc + 1, nil
	}
	if len(p.callStack) >= maxCallDepth {
		return 0, p.fail(ErrEmptyCallStack, errCallStackFull)
	}
	fd, err := p.functions.lookup(id)
	if err != nil {
		return 0, err
	}
	p.callStack = append(p.callStack, callFrame{
		returnCode:  p.curCode,
		returnIndex: p.pc + 1,
		loopsLeft:   count,
		calleeID:    id,
	})
	p.curCode = fd.code
	return fd.start, nil
}

var errCallStackFull = simpleError("call stack depth exceeded")
