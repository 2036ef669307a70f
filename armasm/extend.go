package armasm

// This file covers the ARMv6/ARMv6T2 forms codegen_arm.cpp's ARM2-era
// reference didn't need but spec.md §4.1/§4.2 does: sign/zero
// extension, bitfield insert/extract, saturation, byte reversal, PSR
// transfer, and the MOVW/MOVT 16-bit immediate pair.

// extendOp encodes the SXTB/SXTH/UXTB/UXTH family:
// cond 0110 1 U 1 X 1111 Rd rotate2 00 0111 Rm
// where U selects signed(0)/unsigned(1) and X selects byte(0)/half(1).
func extendOp(w Writer, cond Cond, signed, half bool, rd, rm Reg, rotate uint32) {
	checkReg("extendOp", rd)
	checkReg("extendOp", rm)
	if rotate != 0 && rotate != 8 && rotate != 16 && rotate != 24 {
		invariant("extendOp", "rotate must be 0, 8, 16 or 24: %d", rotate)
	}
	var uBit, xBit uint32
	if !signed {
		uBit = 1 << 22
	}
	if half {
		xBit = 1 << 20
	}
	rotate2 := rotate / 8
	word := (uint32(cond) << 28) | (0x6A << 20) | uBit | xBit | (0xF << 16) |
		(uint32(rd) << 12) | (rotate2 << 10) | (0x7 << 4) | uint32(rm)
	w.EmitWord(word)
}

func SXTB(w Writer, cond Cond, rd, rm Reg, rotate uint32) { extendOp(w, cond, true, false, rd, rm, rotate) }
func SXTH(w Writer, cond Cond, rd, rm Reg, rotate uint32) { extendOp(w, cond, true, true, rd, rm, rotate) }
func UXTB(w Writer, cond Cond, rd, rm Reg, rotate uint32) { extendOp(w, cond, false, false, rd, rm, rotate) }
func UXTH(w Writer, cond Cond, rd, rm Reg, rotate uint32) { extendOp(w, cond, false, true, rd, rm, rotate) }

// BFI inserts the low (width) bits of Rn into Rd at bit position lsb:
// cond 0111110 msb Rd lsb 001 Rn.
func BFI(w Writer, cond Cond, rd, rn Reg, lsb, width uint32) {
	checkReg("BFI", rd)
	checkReg("BFI", rn)
	if lsb > 31 || width == 0 || lsb+width > 32 {
		invariant("BFI", "invalid bitfield lsb=%d width=%d", lsb, width)
	}
	msb := lsb + width - 1
	word := (uint32(cond) << 28) | (0x3E << 21) | (msb << 16) | (uint32(rd) << 12) | (lsb << 7) | (0x1 << 4) | uint32(rn)
	w.EmitWord(word)
}

// BFC clears bits [lsb+width-1:lsb] of Rd, the Rn=PC (really the all-1s
// encoding) special case of BFI.
func BFC(w Writer, cond Cond, rd Reg, lsb, width uint32) {
	checkReg("BFC", rd)
	if lsb > 31 || width == 0 || lsb+width > 32 {
		invariant("BFC", "invalid bitfield lsb=%d width=%d", lsb, width)
	}
	msb := lsb + width - 1
	word := (uint32(cond) << 28) | (0x3E << 21) | (msb << 16) | (uint32(rd) << 12) | (lsb << 7) | (0x1 << 4) | 0xF
	w.EmitWord(word)
}

// UBFX extracts width bits at lsb from Rn, zero-extending into Rd:
// cond 0111111 widthm1 Rd lsb 101 Rn.
func UBFX(w Writer, cond Cond, rd, rn Reg, lsb, width uint32) {
	bitfieldExtract(w, cond, true, rd, rn, lsb, width)
}

// SBFX is UBFX's sign-extending sibling.
func SBFX(w Writer, cond Cond, rd, rn Reg, lsb, width uint32) {
	bitfieldExtract(w, cond, false, rd, rn, lsb, width)
}

func bitfieldExtract(w Writer, cond Cond, unsigned bool, rd, rn Reg, lsb, width uint32) {
	checkReg("bitfieldExtract", rd)
	checkReg("bitfieldExtract", rn)
	if lsb > 31 || width == 0 || width > 32 || lsb+width > 32 {
		invariant("bitfieldExtract", "invalid bitfield lsb=%d width=%d", lsb, width)
	}
	top := uint32(0x3F)
	if !unsigned {
		top = 0x3D
	}
	word := (uint32(cond) << 28) | (top << 21) | ((width - 1) << 16) | (uint32(rd) << 12) | (lsb << 7) | (0x5 << 4) | uint32(rn)
	w.EmitWord(word)
}

// PKHBT packs Rn's bottom halfword with Rm's (optionally LSL-shifted)
// top halfword: cond 01101000 Rn Rd imm5 0 01 Rm.
func PKHBT(w Writer, cond Cond, rd, rn, rm Reg, lslAmount uint32) {
	pkh(w, cond, false, rd, rn, rm, lslAmount)
}

// PKHTB packs Rn's top halfword with Rm's (optionally ASR-shifted)
// bottom halfword: cond 01101000 Rn Rd imm5 1 01 Rm.
func PKHTB(w Writer, cond Cond, rd, rn, rm Reg, asrAmount uint32) {
	pkh(w, cond, true, rd, rn, rm, asrAmount)
}

func pkh(w Writer, cond Cond, tb bool, rd, rn, rm Reg, shiftAmount uint32) {
	checkReg("pkh", rd)
	checkReg("pkh", rn)
	checkReg("pkh", rm)
	checkShiftAmount("pkh", shiftAmount)
	var tbBit uint32
	if tb {
		tbBit = 1 << 6
	}
	word := (uint32(cond) << 28) | (0x68 << 20) | (uint32(rn) << 16) | (uint32(rd) << 12) |
		(shiftAmount << 7) | tbBit | (0x1 << 4) | uint32(rm)
	w.EmitWord(word)
}

// SSAT saturates Rn to a signed satBits-bit range, storing into Rd:
// cond 0110101 satimm-1 Rd imm5 sh 01 Rn.
func SSAT(w Writer, cond Cond, rd Reg, satBits uint32, rn Reg, shiftOp ShiftType, shiftAmount uint32) {
	checkReg("SSAT", rd)
	checkReg("SSAT", rn)
	if satBits == 0 || satBits > 32 {
		invariant("SSAT", "saturation width out of range: %d", satBits)
	}
	var shBit uint32
	if shiftOp == ShiftASR {
		shBit = 1 << 6
	}
	word := (uint32(cond) << 28) | (0x35 << 21) | ((satBits - 1) << 16) | (uint32(rd) << 12) |
		(shiftAmount << 7) | shBit | (0x1 << 4) | uint32(rn)
	w.EmitWord(word)
}

// REV reverses the byte order of Rm into Rd.
func REV(w Writer, cond Cond, rd, rm Reg) {
	checkReg("REV", rd)
	checkReg("REV", rm)
	word := (uint32(cond) << 28) | 0x06BF0F30 | (uint32(rd) << 12) | uint32(rm)
	w.EmitWord(word)
}

// MRS reads the CPSR into Rd.
func MRS(w Writer, cond Cond, rd Reg) {
	checkReg("MRS", rd)
	word := (uint32(cond) << 28) | 0x010F0000 | (uint32(rd) << 12)
	w.EmitWord(word)
}

// MSR writes the condition-flag field (the _f mask) of CPSR from Rm —
// the only MSR form the flag bridge needs (spec.md §4.6).
func MSR(w Writer, cond Cond, rm Reg) {
	checkReg("MSR", rm)
	word := (uint32(cond) << 28) | 0x0128F000 | uint32(rm)
	w.EmitWord(word)
}

// MOVW loads the low 16 bits of an immediate into Rd, zeroing the rest.
// Encoding: cccc 0011 0000 iiii dddd iiii iiii iiii (imm4:Rd:imm12).
func MOVW(w Writer, cond Cond, rd Reg, imm16 uint32) {
	checkReg("MOVW", rd)
	if imm16 > 0xFFFF {
		invariant("MOVW", "immediate out of range: %#x", imm16)
	}
	imm4 := (imm16 >> 12) & 0xF
	imm12 := imm16 & 0xFFF
	word := (uint32(cond) << 28) | (0x30 << 20) | (imm4 << 16) | (uint32(rd) << 12) | imm12
	w.EmitWord(word)
}

// MOVT loads the high 16 bits of an immediate into Rd, leaving the low
// 16 bits untouched. Same field layout as MOVW with bit 22 set.
func MOVT(w Writer, cond Cond, rd Reg, imm16 uint32) {
	checkReg("MOVT", rd)
	if imm16 > 0xFFFF {
		invariant("MOVT", "immediate out of range: %#x", imm16)
	}
	imm4 := (imm16 >> 12) & 0xF
	imm12 := imm16 & 0xFFF
	word := (uint32(cond) << 28) | (0x34 << 20) | (imm4 << 16) | (uint32(rd) << 12) | imm12
	w.EmitWord(word)
}

// MOVImm32 synthesizes an arbitrary 32-bit constant into Rd via
// MOVW+MOVT, the ARMv6T2 path spec.md §4.2 prefers over a literal-pool
// load when the target supports it.
func MOVImm32(w Writer, cond Cond, rd Reg, v uint32) {
	MOVW(w, cond, rd, v&0xFFFF)
	if v>>16 != 0 {
		MOVT(w, cond, rd, v>>16)
	}
}
