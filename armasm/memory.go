package armasm

// AddrMode is an ARM single-data-transfer addressing mode: base register
// plus an immediate or register offset, pre- or post-indexed, with
// optional writeback. The emit layer only ever needs the pre-indexed,
// no-writeback case (a plain [Rn, #imm] displacement into the guest
// register block or the stack), but the other modes are included since
// compemu_raw_pop_regs/_push_regs in codegen_arm.cpp use post-indexed
// LDM/STM-equivalent sequences built from single transfers in spots.
type AddrMode struct {
	base       Reg
	imm        int32
	offReg     Reg
	useReg     bool
	preIndexed bool
	writeback  bool
}

// Offset builds a pre-indexed immediate addressing mode [Rn, #imm].
func Offset(base Reg, imm int32) AddrMode {
	checkReg("Offset", base)
	return AddrMode{base: base, imm: imm, preIndexed: true}
}

// OffsetReg builds a pre-indexed register addressing mode [Rn, Rm].
func OffsetReg(base, offset Reg) AddrMode {
	checkReg("OffsetReg", base)
	checkReg("OffsetReg", offset)
	return AddrMode{base: base, offReg: offset, useReg: true, preIndexed: true}
}

// PostIndexed builds [Rn], #imm with writeback.
func PostIndexed(base Reg, imm int32) AddrMode {
	checkReg("PostIndexed", base)
	return AddrMode{base: base, imm: imm, writeback: true}
}

// PreIndexedWriteback builds [Rn, #imm]! (writeback after the access).
func PreIndexedWriteback(base Reg, imm int32) AddrMode {
	checkReg("PreIndexedWriteback", base)
	return AddrMode{base: base, imm: imm, preIndexed: true, writeback: true}
}

func singleTransfer(w Writer, cond Cond, load, byteXfer bool, rd Reg, m AddrMode) {
	const fixedBits = 1 << 26
	var p, u, b, wb, l uint32
	if m.preIndexed {
		p = 1 << 24
	}
	if m.imm >= 0 {
		u = 1 << 23
	}
	if byteXfer {
		b = 1 << 22
	}
	if m.writeback {
		wb = 1 << 21
	}
	if load {
		l = 1 << 20
	}
	var offsetField uint32
	var iBit uint32
	if m.useReg {
		iBit = 1 << 25
		offsetField = uint32(m.offReg)
	} else {
		abs := m.imm
		if abs < 0 {
			abs = -abs
		}
		if abs > 0xFFF {
			invariant("singleTransfer", "immediate offset out of range: %d", m.imm)
		}
		offsetField = uint32(abs) & 0xFFF
	}
	word := (uint32(cond) << 28) | fixedBits | iBit | p | u | b | wb | l |
		(uint32(m.base) << 16) | (uint32(rd) << 12) | offsetField
	w.EmitWord(word)
}

func LDR(w Writer, cond Cond, rd Reg, m AddrMode)  { singleTransfer(w, cond, true, false, rd, m) }
func STR(w Writer, cond Cond, rd Reg, m AddrMode)  { singleTransfer(w, cond, false, false, rd, m) }
func LDRB(w Writer, cond Cond, rd Reg, m AddrMode) { singleTransfer(w, cond, true, true, rd, m) }
func STRB(w Writer, cond Cond, rd Reg, m AddrMode) { singleTransfer(w, cond, false, true, rd, m) }

// halfwordTransfer encodes the extra load/store class (LDRH/STRH/LDRSB/
// LDRSH): cond 000 P U I W L Rn Rd offH 1 S H 1 offL.
func halfwordTransfer(w Writer, cond Cond, load bool, sBit, hBit uint32, rd Reg, m AddrMode) {
	var p, u, iBit, wb, l uint32
	if m.preIndexed {
		p = 1 << 24
	}
	if m.writeback {
		wb = 1 << 21
	}
	if load {
		l = 1 << 20
	}
	var offH, offL uint32
	if m.useReg {
		offL = uint32(m.offReg)
		u = 1 << 23
	} else {
		iBit = 1 << 22
		abs := m.imm
		if abs < 0 {
			abs = -abs
		}
		if abs > 0xFF {
			invariant("halfwordTransfer", "immediate offset out of range: %d", m.imm)
		}
		if m.imm >= 0 {
			u = 1 << 23
		}
		offH = (uint32(abs) >> 4) & 0xF
		offL = uint32(abs) & 0xF
	}
	word := (uint32(cond) << 28) | p | u | iBit | wb | l |
		(uint32(m.base) << 16) | (uint32(rd) << 12) | (offH << 8) |
		(1 << 7) | (sBit << 6) | (hBit << 5) | (1 << 4) | offL
	w.EmitWord(word)
}

func LDRH(w Writer, cond Cond, rd Reg, m AddrMode)  { halfwordTransfer(w, cond, true, 0, 1, rd, m) }
func STRH(w Writer, cond Cond, rd Reg, m AddrMode)  { halfwordTransfer(w, cond, false, 0, 1, rd, m) }
func LDRSB(w Writer, cond Cond, rd Reg, m AddrMode) { halfwordTransfer(w, cond, true, 1, 0, rd, m) }
func LDRSH(w Writer, cond Cond, rd Reg, m AddrMode) { halfwordTransfer(w, cond, true, 1, 1, rd, m) }

// RegList is a 16-bit register bitmap for PUSH/POP (block data
// transfer), matching codegen_arm.cpp's raw_push_regs/raw_pop_regs use
// of STMFD/LDMFD sp!.
type RegList uint16

// Add sets r in the list and returns it, so a push/pop list can be built
// with regs.Add(R4).Add(R5)....
func (l RegList) Add(r Reg) RegList {
	checkReg("RegList.Add", r)
	return l | (1 << uint32(r))
}

func blockTransfer(w Writer, cond Cond, load bool, list RegList) {
	const fixedBits = 1 << 27
	var p, u, l uint32
	if load {
		// LDMFD sp! == LDMIA sp!: P=0, U=1, W=1, L=1
		u = 1 << 23
		l = 1 << 20
	} else {
		// STMFD sp! == STMDB sp!: P=1, U=0, W=1, L=0
		p = 1 << 24
	}
	const wBit = 1 << 21
	word := (uint32(cond) << 28) | fixedBits | p | u | wBit | l | (uint32(SP) << 16) | uint32(list)
	w.EmitWord(word)
}

// PUSH emits STMDB sp!, {list}.
func PUSH(w Writer, cond Cond, list RegList) { blockTransfer(w, cond, false, list) }

// POP emits LDMIA sp!, {list}.
func POP(w Writer, cond Cond, list RegList) { blockTransfer(w, cond, true, list) }
