// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// Opcode is a single bytecode instruction's opcode byte. Most opcodes are
// single values; eight families pack a small operand into the low bits of
// the byte (PUSHB, PUSHW, MDRP, MIRP, ROUND, NROUND, and the paired
// SVTCA/SPVTCA/SFVTCA/SPVTL/SFVTL/SDPVTL/SHP/SHC/SHZ/MDAP/MIAP/MSIRP/IUP
// axis-or-reference-point bit).
type Opcode byte

const (
	opSVTCA0  Opcode = 0x00 // SVTCA[y]
	opSVTCA1  Opcode = 0x01 // SVTCA[x]
	opSPVTCA0 Opcode = 0x02
	opSPVTCA1 Opcode = 0x03
	opSFVTCA0 Opcode = 0x04
	opSFVTCA1 Opcode = 0x05
	opSPVTL0  Opcode = 0x06
	opSPVTL1  Opcode = 0x07
	opSFVTL0  Opcode = 0x08
	opSFVTL1  Opcode = 0x09
	opSPVFS   Opcode = 0x0A
	opSFVFS   Opcode = 0x0B
	opGPV     Opcode = 0x0C
	opGFV     Opcode = 0x0D
	opSFVTPV  Opcode = 0x0E
	opISECT   Opcode = 0x0F

	opSRP0 Opcode = 0x10
	opSRP1 Opcode = 0x11
	opSRP2 Opcode = 0x12
	opSZP0 Opcode = 0x13
	opSZP1 Opcode = 0x14
	opSZP2 Opcode = 0x15
	opSZPS Opcode = 0x16
	opSLOOP Opcode = 0x17
	opRTG  Opcode = 0x18
	opRTHG Opcode = 0x19
	opSMD  Opcode = 0x1A
	opELSE Opcode = 0x1B
	opJMP  Opcode = 0x1C
	opSCVTCI Opcode = 0x1D
	opSSWCI  Opcode = 0x1E
	opSSW    Opcode = 0x1F

	opDUP      Opcode = 0x20
	opPOP      Opcode = 0x21
	opCLEAR    Opcode = 0x22
	opSWAP     Opcode = 0x23
	opDEPTH    Opcode = 0x24
	opCINDEX   Opcode = 0x25
	opMINDEX   Opcode = 0x26
	opALIGNPTS Opcode = 0x27
	opUTP      Opcode = 0x29
	opLOOPCALL Opcode = 0x2A
	opCALL     Opcode = 0x2B
	opFDEF     Opcode = 0x2C
	opENDF     Opcode = 0x2D
	opMDAP0    Opcode = 0x2E
	opMDAP1    Opcode = 0x2F

	opIUP0   Opcode = 0x30 // IUP[y]
	opIUP1   Opcode = 0x31 // IUP[x]
	opSHP0   Opcode = 0x32
	opSHP1   Opcode = 0x33
	opSHC0   Opcode = 0x34
	opSHC1   Opcode = 0x35
	opSHZ0   Opcode = 0x36
	opSHZ1   Opcode = 0x37
	opSHPIX  Opcode = 0x38
	opIP     Opcode = 0x39
	opMSIRP0 Opcode = 0x3A
	opMSIRP1 Opcode = 0x3B
	opALIGNRP Opcode = 0x3C
	opRTDG   Opcode = 0x3D
	opMIAP0  Opcode = 0x3E
	opMIAP1  Opcode = 0x3F

	opNPUSHB Opcode = 0x40
	opNPUSHW Opcode = 0x41
	opWS     Opcode = 0x42
	opRS     Opcode = 0x43
	opWCVTP  Opcode = 0x44
	opRCVT   Opcode = 0x45
	opGC0    Opcode = 0x46
	opGC1    Opcode = 0x47
	opSCFS   Opcode = 0x48
	opMD0    Opcode = 0x49
	opMD1    Opcode = 0x4A
	opMPPEM  Opcode = 0x4B
	opMPS    Opcode = 0x4C
	opFLIPON Opcode = 0x4D
	opFLIPOFF Opcode = 0x4E
	opDEBUG  Opcode = 0x4F

	opLT   Opcode = 0x50
	opLTEQ Opcode = 0x51
	opGT   Opcode = 0x52
	opGTEQ Opcode = 0x53
	opEQ   Opcode = 0x54
	opNEQ  Opcode = 0x55
	opODD  Opcode = 0x56
	opEVEN Opcode = 0x57
	opIF   Opcode = 0x58
	opEIF  Opcode = 0x59
	opAND  Opcode = 0x5A
	opOR   Opcode = 0x5B
	opNOT  Opcode = 0x5C
	opDELTAP1 Opcode = 0x5D
	opSDB  Opcode = 0x5E
	opSDS  Opcode = 0x5F

	opADD     Opcode = 0x60
	opSUB     Opcode = 0x61
	opDIV     Opcode = 0x62
	opMUL     Opcode = 0x63
	opABS     Opcode = 0x64
	opNEG     Opcode = 0x65
	opFLOOR   Opcode = 0x66
	opCEILING Opcode = 0x67
	opROUND00 Opcode = 0x68
	opROUND01 Opcode = 0x69
	opROUND10 Opcode = 0x6A
	opROUND11 Opcode = 0x6B
	opNROUND00 Opcode = 0x6C
	opNROUND01 Opcode = 0x6D
	opNROUND10 Opcode = 0x6E
	opNROUND11 Opcode = 0x6F

	opWCVTF    Opcode = 0x70
	opDELTAP2  Opcode = 0x71
	opDELTAP3  Opcode = 0x72
	opDELTAC1  Opcode = 0x73
	opDELTAC2  Opcode = 0x74
	opDELTAC3  Opcode = 0x75
	opSROUND   Opcode = 0x76
	opS45ROUND Opcode = 0x77
	opJROT     Opcode = 0x78
	opJROF     Opcode = 0x79
	opROFF     Opcode = 0x7A
	opRUTG     Opcode = 0x7C
	opRDTG     Opcode = 0x7D
	opSANGW    Opcode = 0x7E
	opAA       Opcode = 0x7F

	opFLIPPT   Opcode = 0x80
	opFLIPRGON Opcode = 0x81
	opFLIPRGOFF Opcode = 0x82
	opSCANCTRL Opcode = 0x85
	opSDPVTL0  Opcode = 0x86
	opSDPVTL1  Opcode = 0x87
	opGETINFO  Opcode = 0x88
	opIDEF     Opcode = 0x89
	opROLL     Opcode = 0x8A
	opMAX      Opcode = 0x8B
	opMIN      Opcode = 0x8C
	opSCANTYPE Opcode = 0x8D
	opINSTCTRL Opcode = 0x8E

	opPUSHB000 Opcode = 0xB0
	opPUSHB111 Opcode = 0xB7
	opPUSHW000 Opcode = 0xB8
	opPUSHW111 Opcode = 0xBF

	opMDRP Opcode = 0xC0
	opMDRPend Opcode = 0xDF
	opMIRP Opcode = 0xE0
	opMIRPend Opcode = 0xFF
)

// MDRP/MIRP flag bits, packed into the low 5 bits of the opcode byte.
const (
	mrpSetRP0    = 0x10
	mrpMinDist   = 0x08
	mrpRound     = 0x04
	mrpColorMask = 0x03
)

// SROUND/S45ROUND operand bit layout, per §4.4.
const (
	sroundPeriodShift = 6
	sroundPeriodMask  = 0xC0
	sroundPhaseShift  = 4
	sroundPhaseMask   = 0x30
	sroundThreshold   = 0x0F
)

// instructionControl mask bits (§4.3, §4.9).
const (
	inhibitGridFit  = 1 << 0
	ignoreCVTDefault = 1 << 1
)

// noPop marks an opcode byte with no defined instruction; the decoder
// rejects it before any of this table is consulted.
const noPop = 255

// popCount gives the number of stack elements each single-valued opcode
// consumes, used to check for stack underflow before dispatch. Opcodes
// whose pop count depends on a runtime value (the loop counter for
// SHP/SHC/SHZ, the argument count for DELTAP/DELTAC, the push count for
// PUSHB/PUSHW/NPUSHB/NPUSHW) are given their statically-known minimum here;
// the handler performs any further check itself.
var popCount = [256]uint8{
	opSVTCA0: 0, opSVTCA1: 0,
	opSPVTCA0: 0, opSPVTCA1: 0,
	opSFVTCA0: 0, opSFVTCA1: 0,
	opSPVTL0: 2, opSPVTL1: 2,
	opSFVTL0: 2, opSFVTL1: 2,
	opSPVFS: 2, opSFVFS: 2,
	opGPV: 0, opGFV: 0,
	opSFVTPV: 0,
	opISECT:  5,

	opSRP0: 1, opSRP1: 1, opSRP2: 1,
	opSZP0: 1, opSZP1: 1, opSZP2: 1, opSZPS: 1,
	opSLOOP: 1,
	opRTG:   0, opRTHG: 0,
	opSMD:  1,
	opELSE: 0,
	opJMP:  1,
	opSCVTCI: 1, opSSWCI: 1, opSSW: 1,

	opDUP:      1,
	opPOP:      1,
	opCLEAR:    0,
	opSWAP:     2,
	opDEPTH:    0,
	opCINDEX:   1,
	opMINDEX:   1,
	opALIGNPTS: 2,
	opUTP:      1,
	opLOOPCALL: 2,
	opCALL:     1,
	opFDEF:     1,
	opENDF:     0,
	opMDAP0:    1, opMDAP1: 1,

	opIUP0: 0, opIUP1: 0,
	opSHP0: 0, opSHP1: 0,
	opSHC0: 1, opSHC1: 1,
	opSHZ0: 1, opSHZ1: 1,
	opSHPIX:   2,
	opIP:      0,
	opMSIRP0:  2, opMSIRP1: 2,
	opALIGNRP: 0,
	opRTDG:    0,
	opMIAP0:   2, opMIAP1: 2,

	opNPUSHB: 1, opNPUSHW: 1,
	opWS:  2,
	opRS:  1,
	opWCVTP: 2,
	opRCVT:  1,
	opGC0: 1, opGC1: 1,
	opSCFS: 2,
	opMD0:  2, opMD1: 2,
	opMPPEM: 0, opMPS: 0,
	opFLIPON: 0, opFLIPOFF: 0,
	opDEBUG: 1,

	opLT: 2, opLTEQ: 2, opGT: 2, opGTEQ: 2, opEQ: 2, opNEQ: 2,
	opODD: 1, opEVEN: 1,
	opIF:  1,
	opEIF: 0,
	opAND: 2, opOR: 2, opNOT: 1,
	opDELTAP1: 1,
	opSDB:     1, opSDS: 1,

	opADD: 2, opSUB: 2, opDIV: 2, opMUL: 2,
	opABS: 1, opNEG: 1,
	opFLOOR: 1, opCEILING: 1,
	opROUND00: 1, opROUND01: 1, opROUND10: 1, opROUND11: 1,
	opNROUND00: 1, opNROUND01: 1, opNROUND10: 1, opNROUND11: 1,

	opWCVTF:   2,
	opDELTAP2: 1, opDELTAP3: 1,
	opDELTAC1: 1, opDELTAC2: 1, opDELTAC3: 1,
	opSROUND: 1, opS45ROUND: 1,
	opJROT: 2, opJROF: 2,
	opROFF: 0,
	opRUTG: 0, opRDTG: 0,
	opSANGW: 1, opAA: 1,

	opFLIPPT: 0,
	opFLIPRGON: 2, opFLIPRGOFF: 2,
	opSCANCTRL: 1,
	opSDPVTL0: 2, opSDPVTL1: 2,
	opGETINFO: 1,
	opIDEF:    1,
	opROLL:    3,
	opMAX:     2, opMIN: 2,
	opSCANTYPE: 1,
	opINSTCTRL: 2,
}

func init() {
	for b := opPUSHB000; b <= opPUSHB111; b++ {
		popCount[b] = 0
	}
	for b := opPUSHW000; b <= opPUSHW111; b++ {
		popCount[b] = 0
	}
	for b := opMDRP; b <= opMDRPend; b++ {
		popCount[b] = 1
	}
	for b := opMIRP; b <= opMIRPend; b++ {
		popCount[b] = 2
	}
}

// definedOpcode reports whether b names an instruction at all (used by the
// decoder to tell an unrecognized byte from a recognized one with a zero
// pop count).
func definedOpcode(b byte) bool {
	switch {
	case b >= byte(opPUSHB000) && b <= byte(opPUSHB111):
		return true
	case b >= byte(opPUSHW000) && b <= byte(opPUSHW111):
		return true
	case b >= byte(opMDRP) && b <= byte(opMDRPend):
		return true
	case b >= byte(opMIRP) && b <= byte(opMIRPend):
		return true
	}
	switch Opcode(b) {
	case opSVTCA0, opSVTCA1, opSPVTCA0, opSPVTCA1, opSFVTCA0, opSFVTCA1,
		opSPVTL0, opSPVTL1, opSFVTL0, opSFVTL1, opSPVFS, opSFVFS,
		opGPV, opGFV, opSFVTPV, opISECT,
		opSRP0, opSRP1, opSRP2, opSZP0, opSZP1, opSZP2, opSZPS,
		opSLOOP, opRTG, opRTHG, opSMD, opELSE, opJMP, opSCVTCI, opSSWCI, opSSW,
		opDUP, opPOP, opCLEAR, opSWAP, opDEPTH, opCINDEX, opMINDEX, opALIGNPTS,
		opUTP, opLOOPCALL, opCALL, opFDEF, opENDF, opMDAP0, opMDAP1,
		opIUP0, opIUP1, opSHP0, opSHP1, opSHC0, opSHC1, opSHZ0, opSHZ1,
		opSHPIX, opIP, opMSIRP0, opMSIRP1, opALIGNRP, opRTDG, opMIAP0, opMIAP1,
		opNPUSHB, opNPUSHW, opWS, opRS, opWCVTP, opRCVT, opGC0, opGC1, opSCFS,
		opMD0, opMD1, opMPPEM, opMPS, opFLIPON, opFLIPOFF, opDEBUG,
		opLT, opLTEQ, opGT, opGTEQ, opEQ, opNEQ, opODD, opEVEN, opIF, opEIF,
		opAND, opOR, opNOT, opDELTAP1, opSDB, opSDS,
		opADD, opSUB, opDIV, opMUL, opABS, opNEG, opFLOOR, opCEILING,
		opROUND00, opROUND01, opROUND10, opROUND11,
		opNROUND00, opNROUND01, opNROUND10, opNROUND11,
		opWCVTF, opDELTAP2, opDELTAP3, opDELTAC1, opDELTAC2, opDELTAC3,
		opSROUND, opS45ROUND, opJROT, opJROF, opROFF, opRUTG, opRDTG,
		opSANGW, opAA, opFLIPPT, opFLIPRGON, opFLIPRGOFF, opSCANCTRL,
		opSDPVTL0, opSDPVTL1, opGETINFO, opIDEF, opROLL, opMAX, opMIN,
		opSCANTYPE, opINSTCTRL:
		return true
	}
	return false
}
