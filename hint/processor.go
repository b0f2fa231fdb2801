// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// Processor is a bytecode hinting virtual machine for one font. Create one
// with NewProcessor, call SetResolution whenever the target PPEM changes,
// then ExecuteGlyph for each glyph at that resolution. A Processor is not
// safe for concurrent use by multiple goroutines; run one per goroutine,
// each against its own Processor (font programs may be shared by
// reference across Processor instances via NewProcessorFrom).
type Processor struct {
	font       Font
	unitsPerEm F26Dot6

	fpgmCode *Code
	prepCode *Code

	functions *functionTable
	storage   *storageArray
	cvt       *controlValueTable
	zones     zoneStore
	stack     *operandStack

	gs        GraphicsState
	defaultGS GraphicsState

	ppemX, ppemY F26Dot6
	pointSize    int32

	warnings []Warning

	// Execution context, valid only while run is on the stack.
	curProgram Program
	curCode    *Code
	pc         int
	steps      int
	callStack  []callFrame
}

const instructionBudget = 100000
const maxCallDepth = 32

// NewProcessor builds a Processor for font and runs its font program once
// (§4.9 "Font program... Runs once per font load").
func NewProcessor(font Font) (*Processor, error) {
	p := &Processor{font: font}
	return p, p.loadFont(font)
}

// NewProcessorFrom builds a Processor that reuses src's already-decoded
// font program, per §5's "constructor that copies another processor's
// already-decoded streams" — avoiding redundant decode/execute work when
// hinting the same font from multiple goroutines.
func NewProcessorFrom(src *Processor, font Font) (*Processor, error) {
	p := &Processor{font: font, fpgmCode: src.fpgmCode}
	return p, p.initFont(font, false)
}

func (p *Processor) loadFont(font Font) error {
	if err := p.initFont(font, true); err != nil {
		return err
	}
	return nil
}

func (p *Processor) initFont(font Font, decodeFpgm bool) error {
	p.unitsPerEm = F26Dot6FromInt(int32(font.UnitsPerEm()))
	p.functions = newFunctionTable()
	p.storage = newStorageArray(int(font.MaxStorage()))
	p.cvt = newControlValueTable(0)
	p.stack = newOperandStack(int(font.MaxStackElements()))
	p.gs = defaultGraphicsState()

	if decodeFpgm {
		if b := font.FontProgramBytecode(); len(b) != 0 {
			code, err := Decode(FontProgram, b)
			if err != nil {
				return err
			}
			p.fpgmCode = code
		}
	}
	if b := font.CVTProgramBytecode(); len(b) != 0 {
		code, err := Decode(CVTProgram, b)
		if err != nil {
			return err
		}
		p.prepCode = code
	}

	if p.fpgmCode != nil {
		if err := p.run(FontProgram, p.fpgmCode); err != nil {
			return err
		}
	}
	return nil
}

// Warnings returns the diagnostics accumulated since the Processor was
// created or since the last call to ClearWarnings.
func (p *Processor) Warnings() []Warning { return p.warnings }

// ClearWarnings discards accumulated diagnostics.
func (p *Processor) ClearWarnings() { p.warnings = p.warnings[:0] }

func (p *Processor) warn(msg string) {
	p.warnings = append(p.warnings, Warning{Program: p.curProgram, Offset: p.currentOffset(), Message: msg})
}

func (p *Processor) currentOffset() int {
	if p.curCode == nil || p.pc >= len(p.curCode.Instructions) {
		return -1
	}
	return p.curCode.Instructions[p.pc].Offset
}

// SetResolution reseeds Storage and the CVT for a new target PPEM/point
// size and runs the CVT program, per §4.9 step 2.
func (p *Processor) SetResolution(ppemX, ppemY, pointSize uint32) error {
	p.ppemX = F26Dot6FromInt(int32(ppemX))
	p.ppemY = F26Dot6FromInt(int32(ppemY))
	p.pointSize = int32(pointSize)

	p.storage = newStorageArray(int(p.font.MaxStorage()))
	p.cvt.seed(p.font.ControlValueTable(), p.unitsPerEm)
	p.functions.reset()
	p.gs = defaultGraphicsState()

	var runErr error
	if p.prepCode != nil {
		runErr = p.run(CVTProgram, p.prepCode)
	}
	// The graphics-state-reset and default-capture happen on both the
	// success and error paths, so a failed CVT program never leaves
	// glyph programs without a usable default (§4.9, §7).
	p.gs.resetForGlyphProgram()
	p.defaultGS = p.gs
	return runErr
}

// currentPPEM returns a single PPEM scalar along v, collapsing the
// (ppemX, ppemY) pair via weightedAverage (§4.5).
func (p *Processor) currentPPEM(v Vector) F26Dot6 {
	return weightedAverage(p.ppemX, p.ppemY, v)
}

func (p *Processor) inGlyphProgram() bool { return p.curProgram == GlyphProgram }

// run executes code as program prog to completion (or to the first
// error), implementing the fetch-dispatch loop of §4.2 and the watchdog of
// §5. The graphics state must already be seeded by the caller (font/CVT
// programs reset it fully; glyph programs copy the default then apply the
// per-glyph reset).
func (p *Processor) run(prog Program, code *Code) error {
	prevProgram, prevCode, prevPC, prevCallStack := p.curProgram, p.curCode, p.pc, p.callStack
	p.curProgram, p.curCode, p.pc = prog, code, 0
	p.callStack = p.callStack[:0]
	p.stack.clear()
	p.zones.resetTwilight(int(p.font.MaxTwilightPoints()))

	err := p.loop()

	if err == nil {
		if p.gs.Loop != 1 {
			p.warn("loop variable left non-1 after program")
		}
		if len(p.callStack) != 0 {
			p.warn("non-empty call stack after program")
		}
		if p.stack.depth() != 0 {
			p.warn("elements left on the stack after program")
		}
	}

	p.curProgram, p.curCode, p.pc, p.callStack = prevProgram, prevCode, prevPC, prevCallStack
	return err
}

func (p *Processor) loop() error {
	for p.pc < len(p.curCode.Instructions) {
		p.steps++
		if p.steps > instructionBudget {
			return p.fail(ErrInstructionBudgetExceeded, nil)
		}
		inst := p.curCode.Instructions[p.pc]
		if int(popCount[inst.Opcode]) > p.stack.depth() {
			return p.fail(ErrStackUnderflow, nil)
		}
		next, err := p.dispatch(inst)
		if err != nil {
			return err
		}
		p.pc = next
	}
	return nil
}

func (p *Processor) fail(kind Kind, detail error) *Error {
	return &Error{Program: p.curProgram, Offset: p.currentOffset(), Kind: kind, Detail: detail}
}

// jumpTo resolves a byte offset to an instruction index within the
// currently executing code, per the decoder's offset→index map (§9).
func (p *Processor) jumpTo(offset int) (int, error) {
	idx, ok := p.curCode.IndexAt(offset)
	if !ok {
		return 0, p.fail(ErrJumpOutOfRange, nil)
	}
	return idx, nil
}

// dispatch executes one instruction and returns the index of the next
// instruction to run (usually p.pc+1, but jumps and CALL/ENDF override
// this).
func (p *Processor) dispatch(inst Instruction) (int, error) {
	switch {
	case inst.Opcode >= opPUSHB000 && inst.Opcode <= opPUSHB111:
		return p.execPush(inst)
	case inst.Opcode >= opPUSHW000 && inst.Opcode <= opPUSHW111:
		return p.execPush(inst)
	case inst.Opcode == opNPUSHB || inst.Opcode == opNPUSHW:
		return p.execPush(inst)
	case inst.Opcode >= opMDRP && inst.Opcode <= opMDRPend:
		return p.execMDRP(inst)
	case inst.Opcode >= opMIRP && inst.Opcode <= opMIRPend:
		return p.execMIRP(inst)
	}

	switch inst.Opcode {
	case opSVTCA0, opSVTCA1, opSPVTCA0, opSPVTCA1, opSFVTCA0, opSFVTCA1:
		return p.execSetVectorToAxis(inst)
	case opSPVTL0, opSPVTL1, opSFVTL0, opSFVTL1, opSDPVTL0, opSDPVTL1:
		return p.execSetVectorToLine(inst)
	case opSPVFS:
		y, x := p.stack.pop(), p.stack.pop()
		if err := SetVector(&p.gs.ProjectionVector, F2Dot14(x), F2Dot14(y)); err != nil {
			return 0, err
		}
		p.gs.DualProjectionVector = p.gs.ProjectionVector
	case opSFVFS:
		y, x := p.stack.pop(), p.stack.pop()
		if err := SetVector(&p.gs.FreedomVector, F2Dot14(x), F2Dot14(y)); err != nil {
			return 0, err
		}
	case opGPV:
		p.push(int32(p.gs.ProjectionVector.X))
		p.push(int32(p.gs.ProjectionVector.Y))
	case opGFV:
		p.push(int32(p.gs.FreedomVector.X))
		p.push(int32(p.gs.FreedomVector.Y))
	case opSFVTPV:
		p.gs.FreedomVector = p.gs.ProjectionVector

	case opISECT:
		return p.execISECT(inst)

	case opSRP0, opSRP1, opSRP2:
		p.gs.RP[inst.Opcode-opSRP0] = p.stack.pop()
	case opSZP0, opSZP1, opSZP2:
		zp := p.stack.pop()
		if zp != ZoneTwilight && zp != ZoneGlyph {
			return 0, p.fail(ErrInvalidZonePointer, nil)
		}
		p.gs.ZP[inst.Opcode-opSZP0] = zp
	case opSZPS:
		zp := p.stack.pop()
		if zp != ZoneTwilight && zp != ZoneGlyph {
			return 0, p.fail(ErrInvalidZonePointer, nil)
		}
		p.gs.ZP[0], p.gs.ZP[1], p.gs.ZP[2] = zp, zp, zp

	case opSLOOP:
		p.gs.Loop = p.stack.pop()
	case opRTG:
		p.gs.setRoundState(roundStateRTG)
	case opRTHG:
		p.gs.setRoundState(roundStateRTHG)
	case opRTDG:
		p.gs.setRoundState(roundStateRTDG)
	case opRDTG:
		p.gs.setRoundState(roundStateRDTG)
	case opRUTG:
		p.gs.setRoundState(roundStateRUTG)
	case opROFF:
		p.gs.setRoundState(roundStateROFF)
	case opSROUND:
		n := p.stack.pop()
		s, err := decodeSuperRound(n, superRoundPeriods)
		if err != nil {
			return 0, err
		}
		p.gs.setRoundState(s)
	case opS45ROUND:
		n := p.stack.pop()
		s, err := decodeSuperRound(n, s45RoundPeriods)
		if err != nil {
			return 0, err
		}
		p.gs.setRoundState(s)

	case opSMD:
		p.gs.MinimumDistance = F26Dot6(p.stack.pop())
	case opSCVTCI:
		p.gs.ControlValueCutIn = F26Dot6(p.stack.pop())
	case opSSWCI:
		p.gs.SingleWidthCutIn = F26Dot6(p.stack.pop())
	case opSSW:
		p.gs.SingleWidthValue = F26Dot6(p.stack.pop())
	case opSDB:
		p.gs.DeltaBase = p.stack.pop()
	case opSDS:
		p.gs.DeltaShift = p.stack.pop()

	case opFLIPON:
		p.gs.AutoFlip = true
	case opFLIPOFF:
		p.gs.AutoFlip = false

	case opSCANCTRL, opSCANTYPE:
		// No-op apart from popping the operand: §9 design notes, these
		// only matter to a rasterizer consumer this core doesn't have.
		p.stack.pop()
	case opINSTCTRL:
		s := p.stack.pop()
		v := p.stack.pop()
		if s < 1 || s > 2 {
			p.warn("SetInstructionControl selector outside 1..2")
			break
		}
		bit := int32(1) << uint(s-1)
		if v != 0 {
			p.gs.InstructionControl |= bit
		} else {
			p.gs.InstructionControl &^= bit
		}
		if p.gs.InstructionControl&^(inhibitGridFit|ignoreCVTDefault) != 0 {
			p.warn("SetInstructionControl mask outside bits 0-1")
		}

	case opDUP:
		v, err := p.stack.at(1)
		if err != nil {
			return 0, err
		}
		p.push(v)
	case opPOP:
		p.stack.pop()
	case opCLEAR:
		p.stack.clear()
	case opSWAP:
		a := p.stack.pop()
		b := p.stack.pop()
		p.push(a)
		p.push(b)
	case opDEPTH:
		p.push(int32(p.stack.depth()))
	case opCINDEX:
		n := p.stack.pop()
		v, err := p.stack.at(int(n))
		if err != nil {
			return 0, err
		}
		p.push(v)
	case opMINDEX:
		n := p.stack.pop()
		v, err := p.stack.remove(int(n))
		if err != nil {
			return 0, err
		}
		p.push(v)
	case opROLL:
		a, err1 := p.stack.remove(3)
		b, err2 := p.stack.remove(2)
		c := p.stack.pop()
		if err1 != nil {
			return 0, err1
		}
		if err2 != nil {
			return 0, err2
		}
		p.push(b)
		p.push(a)
		p.push(c)

	case opIF:
		return p.execIf(inst)
	case opELSE:
		return p.skipToEIF(inst, false)
	case opEIF:
		// No-op when reached during fall-through.
	case opJMP:
		off := p.stack.pop()
		idx, err := p.jumpTo(inst.Offset + int(off))
		if err != nil {
			return 0, err
		}
		return idx, nil
	case opJROT:
		off := p.stack.pop()
		e := p.stack.pop()
		if e == 0 {
			return p.pc + 1, nil
		}
		idx, err := p.jumpTo(inst.Offset + int(off))
		if err != nil {
			return 0, err
		}
		return idx, nil
	case opJROF:
		off := p.stack.pop()
		e := p.stack.pop()
		if e != 0 {
			return p.pc + 1, nil
		}
		idx, err := p.jumpTo(inst.Offset + int(off))
		if err != nil {
			return 0, err
		}
		return idx, nil

	case opFDEF:
		return p.execFDEF(inst)
	case opENDF:
		return p.execENDF(inst)
	case opCALL:
		id := p.stack.pop()
		return p.execCall(inst, id, 1)
	case opLOOPCALL:
		id := p.stack.pop()
		count := p.stack.pop()
		return p.execCall(inst, id, count)
	case opIDEF:
		p.stack.pop()
		return 0, p.fail(ErrUnsupportedInstruction, nil)

	case opLT, opLTEQ, opGT, opGTEQ, opEQ, opNEQ:
		b := p.stack.pop()
		a := p.stack.pop()
		var r bool
		switch inst.Opcode {
		case opLT:
			r = a < b
		case opLTEQ:
			r = a <= b
		case opGT:
			r = a > b
		case opGTEQ:
			r = a >= b
		case opEQ:
			r = a == b
		case opNEQ:
			r = a != b
		}
		p.push(boolInt(r))
	case opODD:
		n := F26Dot6(p.stack.pop())
		i := int64(p.gs.round(n)) >> 6
		p.push(boolInt(i%2 != 0))
	case opEVEN:
		n := F26Dot6(p.stack.pop())
		i := int64(p.gs.round(n)) >> 6
		p.push(boolInt(i%2 == 0))
	case opAND:
		b := p.stack.pop()
		a := p.stack.pop()
		p.push(boolInt(a != 0 && b != 0))
	case opOR:
		b := p.stack.pop()
		a := p.stack.pop()
		p.push(boolInt(a != 0 || b != 0))
	case opNOT:
		a := p.stack.pop()
		p.push(boolInt(a == 0))

	case opADD:
		b := p.stack.pop()
		a := p.stack.pop()
		p.push(int32(F26Dot6(a) + F26Dot6(b)))
	case opSUB:
		b := p.stack.pop()
		a := p.stack.pop()
		p.push(int32(F26Dot6(a) - F26Dot6(b)))
	case opDIV:
		b := p.stack.pop()
		a := p.stack.pop()
		if b == 0 {
			return 0, p.fail(ErrInvalidRoundState, errDivideByZero)
		}
		p.push(int32(F26Dot6(a).Div(F26Dot6(b))))
	case opMUL:
		b := p.stack.pop()
		a := p.stack.pop()
		p.push(int32(F26Dot6(a).Mul(F26Dot6(b))))
	case opABS:
		a := F26Dot6(p.stack.pop())
		p.push(int32(a.Abs()))
	case opNEG:
		a := p.stack.pop()
		p.push(-a)
	case opFLOOR:
		a := F26Dot6(p.stack.pop())
		p.push(int32(a.Floor()))
	case opCEILING:
		a := F26Dot6(p.stack.pop())
		p.push(int32(a.Ceil()))
	case opMAX:
		b := p.stack.pop()
		a := p.stack.pop()
		if a > b {
			p.push(a)
		} else {
			p.push(b)
		}
	case opMIN:
		b := p.stack.pop()
		a := p.stack.pop()
		if a < b {
			p.push(a)
		} else {
			p.push(b)
		}
	case opROUND00, opROUND01, opROUND10, opROUND11,
		opNROUND00, opNROUND01, opNROUND10, opNROUND11:
		n := F26Dot6(p.stack.pop())
		if inst.Opcode >= opROUND00 && inst.Opcode <= opROUND11 {
			n = p.gs.round(n)
		}
		p.push(int32(n))

	case opWS:
		v := p.stack.pop()
		i := p.stack.pop()
		if err := p.storage.write(i, v); err != nil {
			return 0, err
		}
	case opRS:
		i := p.stack.pop()
		v, err := p.storage.read(i)
		if err != nil {
			return 0, err
		}
		p.push(v)

	case opWCVTP:
		v := F26Dot6(p.stack.pop())
		i := p.stack.pop()
		if err := p.cvt.writePixels(i, v, p.currentPPEM(p.gs.ProjectionVector), p.inGlyphProgram()); err != nil {
			return 0, err
		}
	case opWCVTF:
		v := F26Dot6FromInt(p.stack.pop())
		i := p.stack.pop()
		if err := p.cvt.writeFUnits(i, v, p.unitsPerEm, p.inGlyphProgram()); err != nil {
			return 0, err
		}
	case opRCVT:
		i := p.stack.pop()
		v, err := p.cvt.read(i, p.currentPPEM(p.gs.ProjectionVector), p.inGlyphProgram())
		if err != nil {
			return 0, err
		}
		p.push(int32(v))

	case opMPPEM:
		p.push(int32(p.currentPPEM(p.gs.ProjectionVector) >> 6))
	case opMPS:
		p.push(p.pointSize)
	case opGETINFO:
		p.stack.pop()
		p.push(37) // Rasterizer version, per §9's tunable default.
	case opDEBUG:
		p.stack.pop()

	default:
		return p.dispatchPoints(inst)
	}
	return p.pc + 1, nil
}

// push appends v to the operand stack, recording a warning (not an error)
// if it overflows the font's declared max-stack-elements (§3).
func (p *Processor) push(v int32) {
	if w := p.stack.push(v); w != nil {
		w.Program, w.Offset = p.curProgram, p.currentOffset()
		p.warnings = append(p.warnings, *w)
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

var errDivideByZero = simpleError("division by zero")

type simpleError string

func (e simpleError) Error() string { return string(e) }
