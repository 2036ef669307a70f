// Package flags implements the flag bridge of spec.md §4.6/§4.7: the
// handful of sequences that move the host ARM condition flags (N Z C V)
// into and out of the guest CCR slot of the register block, mirroring
// codegen_arm.cpp's raw_flags_to_reg/raw_reg_to_flags/raw_load_flagreg/
// raw_load_flagx.
//
// The guest CCR word packs its flags in 68k order (X N Z V C, bit 4
// down to bit 0), which does not match ARM's N Z C V layout in bits
// 31-28; every sequence here pays a shuffle to translate between the
// two.
package flags

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/frontend"
	"github.com/armjit/m68k-arm-emitter/regs"
)

// Guest CCR bit positions (68k SR byte convention).
const (
	ccrC = 1 << 0
	ccrV = 1 << 1
	ccrZ = 1 << 2
	ccrN = 1 << 3
	ccrX = 1 << 4
)

// ToMemory spills the host condition flags into the guest CCR slot at
// [regBase, #regs.OffCCR], notifying the front-end once the value has
// actually landed in scratch so its register-state mirror can move the
// flag holder to INMEM (raw_flags_to_reg's contract, spec.md §4.7).
//
// scratch must be a register the caller has already reserved; it is
// clobbered. hooks.ClobberFlags is not called here — by the time a
// sequence needs its own flags spilled, the front end has already
// decided to clobber, and calls ClobberFlags itself before asking for
// this.
func ToMemory(w armasm.Writer, hooks frontend.Hooks, regBase, scratch armasm.Reg, hostFlagHolder int) {
	armasm.MRS(w, armasm.CondAL, scratch)
	// ARM CPSR has N Z C V in bits 31-28; shift down to bits 3-0 so the
	// four flags land contiguously, then remap into 68k CCR bit order.
	armasm.MOV(w, armasm.CondAL, scratch, armasm.RmShift(scratch, armasm.ShiftLSR, 28))
	remapNZCVToCCR(w, scratch)
	armasm.STRB(w, armasm.CondAL, scratch, armasm.Offset(regBase, int32(regs.OffCCR)))
	hooks.MirrorFlagEviction(hostFlagHolder)
}

// cpsrCBit is the host carry flag's bit position within CPSR (bit 29 of
// N Z C V at bits 31-28).
const cpsrCBit = 1 << 29

// InvertHostCarry flips the host C flag in place. ARM's C after a
// subtract means "no borrow occurred" (set when the minuend >= the
// subtrahend); 68k SUB's own C/X borrow flag is the opposite sense, so
// every subtract-with-flags sequence must invert host C before any
// later ToMemory spill reads it (spec.md §4.4, testable property 5).
// scratch is clobbered.
func InvertHostCarry(w armasm.Writer, scratch armasm.Reg) {
	armasm.MRS(w, armasm.CondAL, scratch)
	armasm.EOR(w, armasm.CondAL, scratch, scratch, armasm.Imm(cpsrCBit))
	armasm.MSR(w, armasm.CondAL, scratch)
}

// FromMemory reloads the host condition flags from the guest CCR slot,
// the inverse of ToMemory, matching raw_reg_to_flags.
func FromMemory(w armasm.Writer, regBase, scratch armasm.Reg) {
	armasm.LDRB(w, armasm.CondAL, scratch, armasm.Offset(regBase, int32(regs.OffCCR)))
	remapCCRToNZCV(w, scratch)
	armasm.MOV(w, armasm.CondAL, scratch, armasm.RmShift(scratch, armasm.ShiftLSL, 28))
	armasm.MSR(w, armasm.CondAL, scratch)
}

// LoadFlagReg loads just the CCR byte into dst without touching the
// host flags — used when an IR op wants to read the guest flags as
// data rather than install them as the host's current condition state
// (raw_load_flagreg).
func LoadFlagReg(w armasm.Writer, regBase, dst armasm.Reg) {
	armasm.LDRB(w, armasm.CondAL, dst, armasm.Offset(regBase, int32(regs.OffCCR)))
}

// LoadFlagX loads the 68k X flag (kept in its own slot, spec.md §3's
// slot index 17, since ARM has no sixth flag bit to alias it onto) into
// the low bit of dst, matching raw_load_flagx.
func LoadFlagX(w armasm.Writer, regBase, dst armasm.Reg) {
	armasm.LDR(w, armasm.CondAL, dst, armasm.Offset(regBase, int32(regs.OffX)))
	armasm.AND(w, armasm.CondAL, dst, dst, armasm.Imm(1))
}

// StoreFlagX writes the low bit of src back into the X flag slot.
func StoreFlagX(w armasm.Writer, regBase, src armasm.Reg) {
	armasm.STR(w, armasm.CondAL, src, armasm.Offset(regBase, int32(regs.OffX)))
}

// remapNZCVToCCR takes the four ARM flag bits packed at [3:0] of reg (in
// N Z C V order, the result of an LSR #28 from CPSR) and repacks them
// into 68k CCR bit order (bit3=N bit2=Z bit1=V bit0=C — note V and C
// trade places relative to ARM's natural order).
func remapNZCVToCCR(w armasm.Writer, reg armasm.Reg) {
	// reg currently holds: bit3=N bit2=Z bit1=C bit0=V; swapping bits
	// 0 and 1 produces bit3=N bit2=Z bit1=V bit0=C, the CCR layout.
	swapLowTwoBits(w, reg)
}

func remapCCRToNZCV(w armasm.Writer, reg armasm.Reg) {
	swapLowTwoBits(w, reg)
}

// swapLowTwoBits exchanges bits 0 and 1 of reg in place using two work
// registers other than reg (Work1 and Work2, with Work3 standing in for
// whichever of them is reg), since V and C occupy swapped positions
// between ARM's natural flag order and the 68k CCR layout.
func swapLowTwoBits(w armasm.Writer, reg armasm.Reg) {
	t1, t2 := armasm.Work1, armasm.Work2
	if reg == t1 {
		t1 = armasm.Work3
	} else if reg == t2 {
		t2 = armasm.Work3
	}
	// t = (reg ^ (reg >> 1)) & 1; reg ^= (t | (t << 1))
	armasm.MOV(w, armasm.CondAL, t1, armasm.RmShift(reg, armasm.ShiftLSR, 1))
	armasm.EOR(w, armasm.CondAL, t1, t1, armasm.Rm(reg))
	armasm.AND(w, armasm.CondAL, t1, t1, armasm.Imm(1))
	armasm.ORR(w, armasm.CondAL, t2, t1, armasm.RmShift(t1, armasm.ShiftLSL, 1))
	armasm.EOR(w, armasm.CondAL, reg, reg, armasm.Rm(t2))
}

// CCRMask isolates the four well-defined 68k CCR flag bits (X N Z V C
// actually span five bits; CCR itself omits X, which lives in its own
// slot) from a loaded byte.
const CCRMask = ccrN | ccrZ | ccrV | ccrC

// XMask isolates the X flag bit within its own register-block slot.
const XMask = ccrX >> 4
