// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import (
	"reflect"
	"strings"
	"testing"
)

// testFont is a minimal Font good enough to drive a Processor without a
// real SFNT container, mirroring the teacher's bare-bones test Font in
// freetype/truetype/hint_test.go.
type testFont struct {
	unitsPerEm   uint16
	maxStorage   uint16
	maxStack     uint16
	maxTwilight  uint16
	maxFunctions uint16
	ascent       int16
	descent      int16
	fpgm, prep   []byte
	cvt          []int16
	glyphs       map[int]Glyph
}

func (f *testFont) UnitsPerEm() uint16        { return f.unitsPerEm }
func (f *testFont) MaxStorage() uint16        { return f.maxStorage }
func (f *testFont) MaxStackElements() uint16  { return f.maxStack }
func (f *testFont) MaxTwilightPoints() uint16 { return f.maxTwilight }
func (f *testFont) MaxFunctionDefs() uint16   { return f.maxFunctions }
func (f *testFont) Ascent() int16             { return f.ascent }
func (f *testFont) Descent() int16            { return f.descent }
func (f *testFont) FontProgramBytecode() []byte { return f.fpgm }
func (f *testFont) CVTProgramBytecode() []byte  { return f.prep }
func (f *testFont) ControlValueTable() []int16  { return f.cvt }

func (f *testFont) Glyph(id int) (Glyph, error) {
	g, ok := f.glyphs[id]
	if !ok {
		return Glyph{}, &Error{Kind: ErrInvalidPointIndex}
	}
	return g, nil
}

func newTestFont() *testFont {
	return &testFont{
		unitsPerEm:   1000,
		maxStorage:   32,
		maxStack:     100,
		maxTwilight:  16,
		maxFunctions: 16,
	}
}

// run decodes prog as a glyph program, loads it as glyph 0's instructions on
// a one-point glyph, and returns the processor's stack contents afterward.
// Stack laws and numeric invariants don't depend on zone contents, so the
// placeholder glyph exists only to satisfy ExecuteGlyph's loader.
func runBytecode(t *testing.T, font *testFont, prog []byte) (*Processor, []int32, error) {
	t.Helper()
	font.glyphs = map[int]Glyph{0: {Contours: [][]ContourPoint{{{X: 0, Y: 0, OnCurve: true}}}, Instructions: prog}}
	p, err := NewProcessor(font)
	if err != nil {
		return nil, nil, err
	}
	if err := p.SetResolution(10, 10, 10); err != nil {
		return nil, nil, err
	}
	if _, err := p.ExecuteGlyph(0); err != nil {
		return p, append([]int32(nil), p.stack.data...), err
	}
	return p, append([]int32(nil), p.stack.data...), nil
}

func TestBytecode(t *testing.T) {
	testCases := []struct {
		desc   string
		prog   []byte
		want   []int32
		errStr string
	}{
		{
			"underflow",
			[]byte{byte(opDUP)},
			nil,
			"stack underflow",
		},
		{
			"simple stack",
			[]byte{byte(opPUSHB001), 0x05, 0x03, byte(opADD)},
			[]int32{8},
			"",
		},
		{
			"stack ops",
			[]byte{
				byte(opPUSHB010), 10, 20, 30,
				byte(opCLEAR),
				byte(opPUSHB010), 40, 50, 60,
				byte(opSWAP),
				byte(opDUP),
				byte(opDUP),
				byte(opPOP),
				byte(opDEPTH),
				byte(opCINDEX),
				byte(opPUSHB000), 4,
				byte(opMINDEX),
			},
			[]int32{40, 50, 50, 40, 60},
			"",
		},
		{
			"dup then pop leaves the stack unchanged",
			[]byte{
				byte(opPUSHB000), 7,
				byte(opDUP),
				byte(opPOP),
			},
			[]int32{7},
			"",
		},
		{
			"swap is an involution",
			[]byte{
				byte(opPUSHB001), 3, 9,
				byte(opSWAP),
				byte(opSWAP),
			},
			[]int32{3, 9},
			"",
		},
		{
			"arithmetic ops",
			// abs((-(1 - (2*3)))/2 + 1/64) = 161 in 26.6.
			[]byte{
				byte(opPUSHB010), 1 << 6, 2 << 6, 3 << 6,
				byte(opMUL),
				byte(opSUB),
				byte(opNEG),
				byte(opPUSHB000), 2 << 6,
				byte(opDIV),
				byte(opPUSHB000), 1,
				byte(opADD),
				byte(opABS),
			},
			[]int32{161},
			"",
		},
		{
			"floor, ceiling",
			[]byte{
				byte(opPUSHB000), 96,
				byte(opFLOOR),
				byte(opPUSHB000), 96,
				byte(opCEILING),
			},
			[]int32{64, 128},
			"",
		},
		{
			"logical ops",
			[]byte{
				byte(opPUSHB010), 0, 10, 20,
				byte(opAND),
				byte(opOR),
				byte(opNOT),
			},
			[]int32{0},
			"",
		},
		{
			"jmp to the byte-offset of the next instruction advances exactly one instruction",
			[]byte{
				byte(opPUSHB000), 10, // [10]
				byte(opPUSHW000), 0x00, 0x01, // [10, 1]: JMP occupies one byte, no operand
				byte(opJMP),
				byte(opPUSHB000), 20, // [10, 20]
			},
			[]int32{10, 20},
			"",
		},
		{
			"if whose condition pops 0 leaves the stack unchanged after eif",
			[]byte{
				byte(opPUSHB000), 5,
				byte(opPUSHB000), 0,
				byte(opIF),
				byte(opPUSHB000), 99,
				byte(opEIF),
			},
			[]int32{5},
			"",
		},
		{
			"fdef/endf pair with no calls leaves state unchanged but for the function table",
			[]byte{
				byte(opPUSHB000), 1,
				byte(opFDEF),
				byte(opPUSHB000), 7,
				byte(opENDF),
				byte(opPUSHB000), 42,
			},
			[]int32{42},
			"",
		},
		{
			"round to grid",
			[]byte{
				byte(opRTG),
				byte(opPUSHW000), 0x00, 0x25, // 0x0025 = 37, ~0.578px
				byte(opROUND00), // ROUND[grey]
			},
			[]int32{64}, // 1.0px
			"",
		},
		{
			"min, max",
			[]byte{
				byte(opPUSHW000), 0xff, 0xfc, // -4
				byte(opPUSHW000), 0xff, 0xfb, // -5
				byte(opMIN),
			},
			[]int32{-5},
			"",
		},
	}

	for _, tc := range testCases {
		_, got, err := runBytecode(t, newTestFont(), tc.prog)
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		if tc.errStr != "" {
			if errStr == "" {
				t.Errorf("%s: got no error, want one containing %q", tc.desc, tc.errStr)
			} else if !strings.Contains(errStr, tc.errStr) {
				t.Errorf("%s: got error %q, want one containing %q", tc.desc, errStr, tc.errStr)
			}
			continue
		}
		if errStr != "" {
			t.Errorf("%s: got error %q, want none", tc.desc, errStr)
			continue
		}
		if len(got) < len(tc.want) {
			t.Errorf("%s: got %v, want at least %v", tc.desc, got, tc.want)
			continue
		}
		got = got[len(got)-len(tc.want):]
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.desc, got, tc.want)
		}
	}
}

// TestWatchdog covers scenario 6: a backward jump that never runs out of
// stack to feed itself (DUP re-supplies the jump offset each pass) must trip
// the instruction budget rather than loop forever.
func TestWatchdog(t *testing.T) {
	prog := []byte{
		byte(opPUSHW000), 0xff, 0xff, // push -1: offset 4 (JMP) + (-1) = offset 3 (DUP)
		byte(opDUP), // offset 3
		byte(opJMP), // offset 4
	}
	_, _, err := runBytecode(t, newTestFont(), prog)
	if err == nil {
		t.Fatal("got no error, want InstructionBudgetExceeded")
	}
	herr, ok := err.(*Error)
	if !ok || herr.Kind != ErrInstructionBudgetExceeded {
		t.Fatalf("got %v, want an ErrInstructionBudgetExceeded *Error", err)
	}
}

// TestFunctionDefineAndCall covers scenario 2: a function defined in the
// font program, called from the glyph program, leaves its pushed value on
// the stack.
func TestFunctionDefineAndCall(t *testing.T) {
	font := newTestFont()
	font.fpgm = []byte{
		byte(opPUSHB000), 1,
		byte(opFDEF),
		byte(opPUSHB000), 7,
		byte(opENDF),
	}
	_, got, err := runBytecode(t, font, []byte{
		byte(opPUSHB000), 1,
		byte(opCALL),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestRoundInvariants covers the numeric invariants of §8 that aren't
// exercised via bytecode.
func TestRoundInvariants(t *testing.T) {
	for _, tc := range []struct {
		rs   roundState
		want F26Dot6
	}{
		{roundStateRTG, 0},
		// Half-grid phases 0 onto its half-pixel phase, not onto 0.
		{roundStateRTHG, 1 << 5},
		{roundStateRTDG, 0},
		{roundStateRDTG, 0},
		{roundStateRUTG, 0},
	} {
		if got := round(0, tc.rs.period, tc.rs.phase, tc.rs.threshold); got != tc.want {
			t.Errorf("round(0, %+v) = %d, want %d", tc.rs, got, tc.want)
		}
	}
	for _, n := range []F26Dot6{0, 1, 63, 64, 65, 127, 1000, 1 << 20} {
		got := round(n, 1, 0, 1<<5)
		want := F26Dot6((int64(n) + 32))
		if got != want {
			t.Errorf("round(%d, 1, 0, 1/2) = %d, want %d", n, got, want)
		}
	}
}

// TestProjectAxisAligned covers "project(p, (1,0)) = p.x; project(p, (0,1))
// = p.y" by going through getPoint against a single zone-1 point.
func TestProjectAxisAligned(t *testing.T) {
	font := newTestFont()
	font.glyphs = map[int]Glyph{0: {Contours: [][]ContourPoint{{{X: 10, Y: 20, OnCurve: true}}}}}
	p, err := NewProcessor(font)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetResolution(uint32(font.unitsPerEm), uint32(font.unitsPerEm), 10); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ExecuteGlyph(0); err != nil {
		t.Fatal(err)
	}
	if err := SetVector(&p.gs.ProjectionVector, 1<<14, 0); err != nil {
		t.Fatal(err)
	}
	x, err := p.getPoint(ZoneGlyph, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := F26Dot6(10 << 6); x != want {
		t.Errorf("project onto (1,0) = %d, want %d", x, want)
	}
	if err := SetVector(&p.gs.ProjectionVector, 0, 1<<14); err != nil {
		t.Fatal(err)
	}
	y, err := p.getPoint(ZoneGlyph, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := F26Dot6(20 << 6); y != want {
		t.Errorf("project onto (0,1) = %d, want %d", y, want)
	}
}

// TestMDAPSnap covers scenario 4.
func TestMDAPSnap(t *testing.T) {
	font := newTestFont()
	font.unitsPerEm = 1000
	font.glyphs = map[int]Glyph{0: {Contours: [][]ContourPoint{{{X: 100, Y: 0, OnCurve: true}}}}}

	p, err := NewProcessor(font)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetResolution(20, 20, 20); err != nil {
		t.Fatal(err)
	}
	font.glyphs[0] = Glyph{
		Contours: font.glyphs[0].Contours,
		Instructions: []byte{
			byte(opPUSHB000), 0,
			byte(opMDAP1),
		},
	}
	pts, err := p.ExecuteGlyph(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := F26Dot6(128); pts[0].X != want {
		t.Errorf("current_x = %d, want %d", pts[0].X, want)
	}
}

// TestIUPLinearity covers scenario 5, calling the per-contour interpolation
// helper directly against a hand-built contour.
func TestIUPLinearity(t *testing.T) {
	pts := []GridFittedPoint{
		{OriginalX: 0, CurrentX: 0 + 4<<6, TouchedX: true},
		{OriginalX: 10 << 6, CurrentX: 10 << 6},
		{OriginalX: 20 << 6, CurrentX: 20<<6 + 8<<6, TouchedX: true},
	}
	iupContour(pts, 0, 2, true)
	want := F26Dot6(16 << 6)
	if pts[1].CurrentX != want {
		t.Errorf("point 1 current_x = %d, want %d", pts[1].CurrentX, want)
	}
}

// TestWCVTPRoundTrip covers "WCVTP(i, v) followed by RCVT(i) with unchanged
// projection vector and PPEM returns v."
func TestWCVTPRoundTrip(t *testing.T) {
	font := newTestFont()
	font.cvt = []int16{0}
	_, got, err := runBytecode(t, font, []byte{
		byte(opPUSHB000), 0, // cvt index
		byte(opPUSHW000), 0x0c, 0x80, // value 0x0c80 = 3200 (50px in 26.6)
		byte(opWCVTP),
		byte(opPUSHB000), 0,
		byte(opRCVT),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{3200}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
