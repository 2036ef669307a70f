package armasm

// VFP double-precision operations (spec.md §4.8/§4.9 layer 8). Registers
// D0-D31 are addressed as a 4-bit field plus an extension bit split
// across the word per the VFPv3 encoding (AAPCS historically only uses
// D0-D15, but codegen_arm.cpp's extended register file needs the full
// range for the scratch doubles it keeps alongside the guest FP bank).

// DReg is a VFP double-precision register, 0-31.
type DReg uint32

const (
	D0 DReg = iota
	D1
	D2
	D3
	D4
	D5
	D6
	D7
)

func checkDReg(op string, d DReg) {
	if d > 31 {
		invariant(op, "VFP register out of range: %d", d)
	}
}

// split returns the 4-bit register field and the single extension bit
// for a D register, used at the Vd/Vn/Vm position respectively.
func (d DReg) split() (field, ext uint32) {
	return uint32(d) & 0xF, (uint32(d) >> 4) & 0x1
}

// VADD computes Dd = Dn + Dm.
func VADD(w Writer, cond Cond, dd, dn, dm DReg) {
	checkDReg("VADD", dd)
	checkDReg("VADD", dn)
	checkDReg("VADD", dm)
	emitVFP3(w, cond, 0x73, dn, dd, dm, 0, false)
}

// VSUB computes Dd = Dn - Dm.
func VSUB(w Writer, cond Cond, dd, dn, dm DReg) {
	checkDReg("VSUB", dd)
	checkDReg("VSUB", dn)
	checkDReg("VSUB", dm)
	emitVFP3(w, cond, 0x73, dn, dd, dm, 1, false)
}

// VMUL computes Dd = Dn * Dm.
func VMUL(w Writer, cond Cond, dd, dn, dm DReg) {
	checkDReg("VMUL", dd)
	checkDReg("VMUL", dn)
	checkDReg("VMUL", dm)
	emitVFP3(w, cond, 0x72, dn, dd, dm, 0, false)
}

// VDIV computes Dd = Dn / Dm.
func VDIV(w Writer, cond Cond, dd, dn, dm DReg) {
	checkDReg("VDIV", dd)
	checkDReg("VDIV", dn)
	checkDReg("VDIV", dm)
	emitVFP3(w, cond, 0x70, dn, dd, dm, 0, true)
}

// emitVFP3 is the 3-register VFP data-processing shape:
// cond 11100 D op1 Vn Vd 101 1 N op2 M 0 Vm
// opByte carries the top opcode (op1 field rolled into bits[23:20]);
// op2 selects add(0)/sub(1) within the arithmetic family; isDiv flags
// VDIV, whose top nibble differs (11101 not 11100) from the rest.
func emitVFP3(w Writer, cond Cond, opByte uint32, vn, vd, vm DReg, op2 uint32, isDiv bool) {
	top5 := uint32(0x1C) // 11100
	if isDiv {
		top5 = 0x1D // 11101
	}
	vnField, vnExt := vn.split()
	vdField, vdExt := vd.split()
	vmField, vmExt := vm.split()
	word := (uint32(cond) << 28) | (top5 << 23) | ((opByte & 0xF) << 20) | (vnExt << 7) | (vdExt << 22) |
		(vnField << 16) | (vdField << 12) | (0xB << 8) | (op2 << 6) | (vmExt << 5) | vmField
	w.EmitWord(word)
}

// emitVFP1 is the 1-source-register VFP family used by VABS/VNEG/VSQRT/
// VMOV (register move) and VCVT: cond 11101 D 11 opc1 Vd 101 1 opc2 opc3 0 Vm.
func emitVFP1(w Writer, cond Cond, opc1, opc2, opc3 uint32, vd, vm DReg) {
	vdField, vdExt := vd.split()
	vmField, vmExt := vm.split()
	word := (uint32(cond) << 28) | (0x1D << 23) | (vdExt << 22) | (0x3 << 20) | (opc1 << 16) |
		(vdField << 12) | (0xB << 8) | (opc2 << 6) | (vmExt << 5) | (opc3 << 4) | vmField
	w.EmitWord(word)
}

// VABS computes Dd = |Dm|.
func VABS(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VABS", dd)
	checkDReg("VABS", dm)
	emitVFP1(w, cond, 0x0, 0x3, 1, dd, dm)
}

// VNEG computes Dd = -Dm.
func VNEG(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VNEG", dd)
	checkDReg("VNEG", dm)
	emitVFP1(w, cond, 0x1, 0x1, 1, dd, dm)
}

// VSQRT computes Dd = sqrt(Dm).
func VSQRT(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VSQRT", dd)
	checkDReg("VSQRT", dm)
	emitVFP1(w, cond, 0x1, 0x3, 1, dd, dm)
}

// VMOVReg copies Dm into Dd.
func VMOVReg(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VMOVReg", dd)
	checkDReg("VMOVReg", dm)
	emitVFP1(w, cond, 0x0, 0x1, 1, dd, dm)
}

// VMOVToCore transfers the low and high 32-bit halves of Dm into Rt,
// Rt2 — the core<->VFP path raw_fp_to_exten_mr uses to read a double's
// raw bits out for the 80-bit extended conversion.
// Encoding: cond 1100 0101 Rt2 Rt 1011 00 M1 Vm.
func VMOVToCore(w Writer, cond Cond, rt, rt2 Reg, dm DReg) {
	checkReg("VMOVToCore", rt)
	checkReg("VMOVToCore", rt2)
	checkDReg("VMOVToCore", dm)
	vmField, vmExt := dm.split()
	word := (uint32(cond) << 28) | 0x0C500B10 | (uint32(rt2) << 16) | (uint32(rt) << 12) | (vmExt << 5) | vmField
	w.EmitWord(word)
}

// VMOVFromCore is VMOVToCore's inverse: Dm = {Rt2:Rt}.
func VMOVFromCore(w Writer, cond Cond, dm DReg, rt, rt2 Reg) {
	checkReg("VMOVFromCore", rt)
	checkReg("VMOVFromCore", rt2)
	checkDReg("VMOVFromCore", dm)
	vmField, vmExt := dm.split()
	word := (uint32(cond) << 28) | 0x0C400B10 | (uint32(rt2) << 16) | (uint32(rt) << 12) | (vmExt << 5) | vmField
	w.EmitWord(word)
}

// VCVTDoubleToSignedInt truncates Dm to a signed 32-bit integer stored
// in the low word of Dd (the result must then cross via VMOVToCore).
func VCVTDoubleToSignedInt(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VCVTDoubleToSignedInt", dd)
	checkDReg("VCVTDoubleToSignedInt", dm)
	emitVFP1(w, cond, 0xD, 0x3, 1, dd, dm)
}

// VCVTSignedIntToDouble converts the signed integer held in Dm's low
// word to a double in Dd.
func VCVTSignedIntToDouble(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VCVTSignedIntToDouble", dd)
	checkDReg("VCVTSignedIntToDouble", dm)
	emitVFP1(w, cond, 0x8, 0x3, 1, dd, dm)
}

// VCMP compares Dd against Dm and sets the VFP condition flags (read
// back into APSR via VMRS). The quiet-NaN-raising form (VCMPE) is not
// needed by any raw_f* sequence, so only VCMP is exposed.
func VCMP(w Writer, cond Cond, dd, dm DReg) {
	checkDReg("VCMP", dd)
	checkDReg("VCMP", dm)
	emitVFP1(w, cond, 0x4, 0x1, 1, dd, dm)
}

// VMRS transfers the VFP FPSCR into Rt (APSR_nzcv when Rt is R15,
// matching raw_fflags_into_flags's use of the condition-code alias).
func VMRS(w Writer, cond Cond, rt Reg) {
	checkReg("VMRS", rt)
	word := (uint32(cond) << 28) | 0x0EF10A10 | (uint32(rt) << 12)
	w.EmitWord(word)
}

// VMSR transfers Rt into the VFP FPSCR — used by raw_roundingmode to
// install a new rounding-mode field.
func VMSR(w Writer, cond Cond, rt Reg) {
	checkReg("VMSR", rt)
	word := (uint32(cond) << 28) | 0x0EE10A10 | (uint32(rt) << 12)
	w.EmitWord(word)
}

// VLDR loads a double from [Rn, #imm] (imm must be a multiple of 4,
// encoded as an 8-bit word count): cond 1101 U D 01 Rn Vd 1011 imm8.
func VLDR(w Writer, cond Cond, dd DReg, rn Reg, imm int32) {
	checkDReg("VLDR", dd)
	checkReg("VLDR", rn)
	vfpMemTransfer(w, cond, true, dd, rn, imm)
}

// VSTR stores a double to [Rn, #imm].
func VSTR(w Writer, cond Cond, dd DReg, rn Reg, imm int32) {
	checkDReg("VSTR", dd)
	checkReg("VSTR", rn)
	vfpMemTransfer(w, cond, false, dd, rn, imm)
}

func vfpMemTransfer(w Writer, cond Cond, load bool, dd DReg, rn Reg, imm int32) {
	if imm%4 != 0 {
		invariant("vfpMemTransfer", "offset must be word-aligned: %d", imm)
	}
	abs := imm / 4
	var u uint32 = 1 << 23
	if abs < 0 {
		abs = -abs
		u = 0
	}
	if abs > 0xFF {
		invariant("vfpMemTransfer", "offset out of range: %d", imm)
	}
	var l uint32
	if load {
		l = 1 << 20
	}
	vdField, vdExt := dd.split()
	word := (uint32(cond) << 28) | 0x0D000B00 | u | l | (uint32(rn) << 16) |
		(vdField << 12) | (vdExt << 22) | uint32(abs)
	w.EmitWord(word)
}
