package armasm

// dpOpcode is the 4-bit data-processing opcode field (ARM architecture
// reference, table A5-2), named the way encoder/data_processing.go names
// its opAND..opMVN table.
type dpOpcode uint32

const (
	opAND dpOpcode = 0x0
	opEOR dpOpcode = 0x1
	opSUB dpOpcode = 0x2
	opRSB dpOpcode = 0x3
	opADD dpOpcode = 0x4
	opADC dpOpcode = 0x5
	opSBC dpOpcode = 0x6
	opRSC dpOpcode = 0x7
	opTST dpOpcode = 0x8
	opTEQ dpOpcode = 0x9
	opCMP dpOpcode = 0xA
	opCMN dpOpcode = 0xB
	opORR dpOpcode = 0xC
	opMOV dpOpcode = 0xD
	opBIC dpOpcode = 0xE
	opMVN dpOpcode = 0xF
)

// Operand2 is the ARM data-processing second operand: either a rotated
// 8-bit immediate, or a register optionally shifted by an immediate
// amount or by another register.
type Operand2 struct {
	isImm    bool
	imm      uint32 // rotated 12-bit immediate field, already packed
	reg      Reg
	shiftOp  ShiftType
	shiftImm uint32
	shiftReg Reg
	shiftIsReg bool
}

// Imm builds an immediate operand2. Panics if v has no rotated-8-bit
// encoding; callers needing the MOVW/MOVT or literal-pool fallback
// should test FitsRotatedImm8 first (spec.md §4.2).
func Imm(v uint32) Operand2 {
	enc, ok := EncodeRotatedImm8(v)
	if !ok {
		invariant("Imm", "value has no rotated-8-bit encoding: %#x", v)
	}
	return Operand2{isImm: true, imm: enc}
}

// Rm is a bare register operand2 (no shift).
func Rm(r Reg) Operand2 {
	checkReg("Rm", r)
	return Operand2{reg: r}
}

// RmShift is a register shifted by an immediate amount.
func RmShift(r Reg, op ShiftType, amount uint32) Operand2 {
	checkReg("RmShift", r)
	checkShiftAmount("RmShift", amount)
	return Operand2{reg: r, shiftOp: op, shiftImm: amount}
}

// RmShiftReg is a register shifted by the low byte of another register.
func RmShiftReg(r Reg, op ShiftType, shiftBy Reg) Operand2 {
	checkReg("RmShiftReg", r)
	checkReg("RmShiftReg", shiftBy)
	return Operand2{reg: r, shiftOp: op, shiftReg: shiftBy, shiftIsReg: true}
}

func (o Operand2) encode() uint32 {
	if o.isImm {
		return o.imm
	}
	if o.shiftIsReg {
		return (uint32(o.shiftReg) << 8) | (uint32(o.shiftOp) << 5) | (1 << 4) | uint32(o.reg)
	}
	return (o.shiftImm << 7) | (uint32(o.shiftOp) << 5) | uint32(o.reg)
}

func (o Operand2) iBit() uint32 {
	if o.isImm {
		return 1 << 25
	}
	return 0
}

func dataProc(w Writer, cond Cond, op dpOpcode, s bool, rd, rn Reg, op2 Operand2) {
	var sBit uint32
	if s {
		sBit = 1 << 20
	}
	word := (uint32(cond) << 28) | op2.iBit() | (uint32(op) << 21) | sBit |
		(uint32(rn) << 16) | (uint32(rd) << 12) | op2.encode()
	w.EmitWord(word)
}

// The S-suffixed forms set the condition flags; the non-S forms touch
// none of them. CMP/CMN/TST/TEQ are always S-form with Rd forced to 0,
// per the architecture.

func AND(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opAND, false, rd, rn, op2) }
func ANDS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opAND, true, rd, rn, op2) }
func EOR(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opEOR, false, rd, rn, op2) }
func EORS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opEOR, true, rd, rn, op2) }
func SUB(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opSUB, false, rd, rn, op2) }
func SUBS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opSUB, true, rd, rn, op2) }
func RSB(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opRSB, false, rd, rn, op2) }
func RSBS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opRSB, true, rd, rn, op2) }
func ADD(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opADD, false, rd, rn, op2) }
func ADDS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opADD, true, rd, rn, op2) }
func ADC(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opADC, false, rd, rn, op2) }
func ADCS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opADC, true, rd, rn, op2) }
func SBC(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opSBC, false, rd, rn, op2) }
func SBCS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opSBC, true, rd, rn, op2) }
func ORR(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opORR, false, rd, rn, op2) }
func ORRS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opORR, true, rd, rn, op2) }
func BIC(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opBIC, false, rd, rn, op2) }
func BICS(w Writer, cond Cond, rd, rn Reg, op2 Operand2) { dataProc(w, cond, opBIC, true, rd, rn, op2) }

func MOV(w Writer, cond Cond, rd Reg, op2 Operand2) { dataProc(w, cond, opMOV, false, rd, R0, op2) }
func MOVS(w Writer, cond Cond, rd Reg, op2 Operand2) { dataProc(w, cond, opMOV, true, rd, R0, op2) }
func MVN(w Writer, cond Cond, rd Reg, op2 Operand2) { dataProc(w, cond, opMVN, false, rd, R0, op2) }
func MVNS(w Writer, cond Cond, rd Reg, op2 Operand2) { dataProc(w, cond, opMVN, true, rd, R0, op2) }

func CMP(w Writer, cond Cond, rn Reg, op2 Operand2) { dataProc(w, cond, opCMP, true, R0, rn, op2) }
func CMN(w Writer, cond Cond, rn Reg, op2 Operand2) { dataProc(w, cond, opCMN, true, R0, rn, op2) }
func TST(w Writer, cond Cond, rn Reg, op2 Operand2) { dataProc(w, cond, opTST, true, R0, rn, op2) }
func TEQ(w Writer, cond Cond, rn Reg, op2 Operand2) { dataProc(w, cond, opTEQ, true, R0, rn, op2) }

// MUL computes Rd = Rm * Rs (the 4-operand MLA form is not needed by
// any raw_* sequence in codegen_arm.cpp, so it is omitted here).
func MUL(w Writer, cond Cond, rd, rm, rs Reg) {
	checkReg("MUL", rd)
	checkReg("MUL", rm)
	checkReg("MUL", rs)
	if rd == rm {
		invariant("MUL", "Rd and Rm must differ: both r%d", rd)
	}
	word := (uint32(cond) << 28) | (uint32(rd) << 16) | (uint32(rs) << 8) | (0x9 << 4) | uint32(rm)
	w.EmitWord(word)
}
