// Package vfp implements the FPU layer of spec.md §4.8/§4.9: scalar VFP
// arithmetic, integer/double and 80-bit-extended/double conversions,
// immediate-constant synthesis, the 68k FPU's two-operand remainder
// opcodes, host-library call trampolines for the transcendental
// functions VFP has no instruction for, and rounding-mode control.
// Mirrors codegen_arm.cpp's raw_fp_*/raw_f* family.
package vfp

import (
	"math"

	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/emit"
	"github.com/armjit/m68k-arm-emitter/regs"
)

// Emitter wraps the integer emit.Emitter with FPU-specific operations.
// It shares the same code buffer, front-end hooks, and register-block
// base.
type Emitter struct {
	*emit.Emitter
}

// New constructs an FPU emitter around an integer emit.Emitter, so it
// shares that emitter's buffer, hooks and register-block base.
func New(base *emit.Emitter) *Emitter {
	return &Emitter{Emitter: base}
}

func invariant(op, msg string) { panic(&emit.InvariantError{Op: op, Message: msg}) }

// notify mirrors emit.Emitter.notify for this package's own methods: it
// can't call the embedded Emitter's unexported notify directly, so it
// re-reads the same exported Buf/Sink fields.
func (e *Emitter) notify(op string) {
	if e.Sink == nil {
		return
	}
	addr := e.Buf.Target() - 4
	e.Sink.EmitEvent(addr, e.Buf.WordAt(addr), op)
}

// --- scalar arithmetic (raw_fp_add/_sub/_mul/_div/_neg/_abs/_sqrt) ---

func (e *Emitter) Add(dst, a, b armasm.DReg) {
	defer e.notify("vfp.Add")
	armasm.VADD(e.Buf, armasm.CondAL, dst, a, b)
}
func (e *Emitter) Sub(dst, a, b armasm.DReg) {
	defer e.notify("vfp.Sub")
	armasm.VSUB(e.Buf, armasm.CondAL, dst, a, b)
}
func (e *Emitter) Mul(dst, a, b armasm.DReg) {
	defer e.notify("vfp.Mul")
	armasm.VMUL(e.Buf, armasm.CondAL, dst, a, b)
}
func (e *Emitter) Div(dst, a, b armasm.DReg) {
	defer e.notify("vfp.Div")
	armasm.VDIV(e.Buf, armasm.CondAL, dst, a, b)
}
func (e *Emitter) Neg(dst, src armasm.DReg) {
	defer e.notify("vfp.Neg")
	armasm.VNEG(e.Buf, armasm.CondAL, dst, src)
}
func (e *Emitter) Abs(dst, src armasm.DReg) {
	defer e.notify("vfp.Abs")
	armasm.VABS(e.Buf, armasm.CondAL, dst, src)
}
func (e *Emitter) Sqrt(dst, src armasm.DReg) {
	defer e.notify("vfp.Sqrt")
	armasm.VSQRT(e.Buf, armasm.CondAL, dst, src)
}
func (e *Emitter) Move(dst, src armasm.DReg) {
	if dst == src {
		return
	}
	defer e.notify("vfp.Move")
	armasm.VMOVReg(e.Buf, armasm.CondAL, dst, src)
}

// --- memory and register-block access ---

// Load reads a guest FPU register (spec.md §3's FP[8] bank) into a VFP
// register (raw_fp_load).
func (e *Emitter) Load(dst armasm.DReg, slot int) {
	if slot < 0 || slot > 7 {
		invariant("Load", "FPU register slot out of range")
	}
	defer e.notify("vfp.Load")
	armasm.VLDR(e.Buf, armasm.CondAL, dst, e.RegBase, int32(regs.OffFPD[slot]))
}

// Store writes a VFP register back to the guest FPU bank
// (raw_fp_store).
func (e *Emitter) Store(slot int, src armasm.DReg) {
	if slot < 0 || slot > 7 {
		invariant("Store", "FPU register slot out of range")
	}
	defer e.notify("vfp.Store")
	armasm.VSTR(e.Buf, armasm.CondAL, src, e.RegBase, int32(regs.OffFPD[slot]))
}

// --- guest-memory access (spec.md §4.3's in-regs optimization, applied
// to the VFP double form: range ±1020 bytes, 4-byte aligned) ---

const (
	vfpMaxDisp = 1020
	vfpAlign   = 4
)

// LoadGuestDouble reads a guest double at addr into dst, using the
// in-regs R11-relative VLDR form when addr falls inside the register
// block and the resulting displacement fits VLDR's own range, and an
// absolute-address materialization otherwise.
func (e *Emitter) LoadGuestDouble(dst armasm.DReg, base regs.Base, addr uint32) {
	defer e.notify("vfp.LoadGuestDouble")
	reg, disp := e.vfpGuestAddr(base, addr, armasm.Work1)
	armasm.VLDR(e.Buf, armasm.CondAL, dst, reg, disp)
}

// StoreGuestDouble writes src to the guest double at addr.
func (e *Emitter) StoreGuestDouble(src armasm.DReg, base regs.Base, addr uint32) {
	defer e.notify("vfp.StoreGuestDouble")
	reg, disp := e.vfpGuestAddr(base, addr, armasm.Work1)
	armasm.VSTR(e.Buf, armasm.CondAL, src, reg, disp)
}

func (e *Emitter) vfpGuestAddr(base regs.Base, addr uint32, scratch armasm.Reg) (armasm.Reg, int32) {
	if off, inRegs := regs.Classify(base, addr); inRegs && off%vfpAlign == 0 && off >= -vfpMaxDisp && off <= vfpMaxDisp {
		return e.RegBase, off
	}
	e.Emitter.LoadImmediate(scratch, addr)
	return scratch, 0
}

// --- integer <-> double conversion (raw_fp_to_int / raw_fp_from_int) ---

// ToInt truncates src to a signed 32-bit integer, landing the result in
// the low word of a scratch VFP register and then across to dst via the
// core-register transfer instruction (VFP has no direct VFP-to-core
// path for a single lane without this two-step dance).
func (e *Emitter) ToInt(dst armasm.Reg, src armasm.DReg, scratch armasm.DReg) {
	armasm.VCVTDoubleToSignedInt(e.Buf, armasm.CondAL, scratch, src)
	armasm.VMOVToCore(e.Buf, armasm.CondAL, dst, dst, scratch)
}

// FromInt converts the signed 32-bit integer in src to a double in dst,
// via the same scratch-register relay as ToInt.
func (e *Emitter) FromInt(dst armasm.DReg, src armasm.Reg, scratch armasm.DReg) {
	armasm.VMOVFromCore(e.Buf, armasm.CondAL, scratch, src, src)
	armasm.VCVTSignedIntToDouble(e.Buf, armasm.CondAL, dst, scratch)
}

// --- immediate constant synthesis (raw_fp_const) ---

// LoadImmediate materializes an arbitrary float64 bit pattern into dst
// by synthesizing its two 32-bit halves through the integer emitter and
// relaying them across via VMOVFromCore, mirroring raw_fp_const's
// "build it out of general-purpose immediate loads" approach (VFP has
// no general 64-bit immediate-load instruction).
func (e *Emitter) LoadImmediate(dst armasm.DReg, v float64) {
	bits := math.Float64bits(v)
	lo := uint32(bits)
	hi := uint32(bits >> 32)
	e.Emitter.LoadImmediate(armasm.Work1, lo)
	e.Emitter.LoadImmediate(armasm.Work2, hi)
	armasm.VMOVFromCore(e.Buf, armasm.CondAL, dst, armasm.Work1, armasm.Work2)
}

// --- comparison and guest-flag synthesis (raw_fp_fcmp / raw_fp_fscc_ri) ---

// Compare runs a VFP comparison and moves the resulting FPSCR condition
// flags into APSR (raw_fflags_into_flags: VCMP then VMRS APSR_nzcv,
// FPSCR in the real encoding; this emitter always targets R15's alias
// since that is the only target the flag bridge consumes).
func (e *Emitter) Compare(a, b armasm.DReg) {
	e.Hooks.ClobberFlags()
	armasm.VCMP(e.Buf, armasm.CondAL, a, b)
	armasm.VMRS(e.Buf, armasm.CondAL, armasm.PC)
}

// Fscc sets the low byte of dst to 0xFF/0x00 according to an IEEE
// floating predicate already installed in the host condition flags by
// Compare, using cond as the (possibly synthesized, multi-condition)
// predicate test — mirroring raw_fp_fscc_ri's "set dst from the fp
// condition" contract (spec.md §4.9: BIC the low byte unconditionally,
// then ORR it to 0xFF under cond, leaving the rest of dst untouched).
// The 14 synthesized IEEE predicates that have no single ARM condition
// equivalent are expressed as two conditional ORRs by the caller using
// condA/condB (FsccOr).
func (e *Emitter) Fscc(dst armasm.Reg, condTrue armasm.Cond) {
	defer e.notify("vfp.Fscc")
	armasm.BIC(e.Buf, armasm.CondAL, dst, dst, armasm.Imm(0xFF))
	armasm.ORR(e.Buf, condTrue, dst, dst, armasm.Imm(0xFF))
}

// FsccOr is Fscc's two-condition form for the IEEE predicates that need
// the logical OR of two native ARM conditions to express (e.g.
// "unordered or equal").
func (e *Emitter) FsccOr(dst armasm.Reg, condA, condB armasm.Cond) {
	defer e.notify("vfp.FsccOr")
	armasm.BIC(e.Buf, armasm.CondAL, dst, dst, armasm.Imm(0xFF))
	armasm.ORR(e.Buf, condA, dst, dst, armasm.Imm(0xFF))
	armasm.ORR(e.Buf, condB, dst, dst, armasm.Imm(0xFF))
}

// --- host-library call trampolines (raw_fp_ffunc / raw_fp_fpowx) ---

// Ffunc calls a single-argument host math routine (sin, cos, log, …):
// the argument double is already in D0 by convention, the result is
// read back from D0 after the call (compemu_raw_call wraps the actual
// branch-and-link, preserving LR).
func (e *Emitter) Ffunc(hostFn uint32) {
	e.CallAbsolute(hostFn)
}

// Fpowx calls the host pow() routine with arguments already placed in
// D0 (base) and D1 (exponent) by the caller, per the same convention.
func (e *Emitter) Fpowx(hostFn uint32) {
	e.CallAbsolute(hostFn)
}

// Frem1 computes the IEEE remainder of a/b via a host fmod/remainder
// call, saving and restoring the VFP rounding-mode control bits around
// it since 68k FREM and host fmod disagree on rounding-mode treatment
// (raw_frem1_rr's FPSCR save/restore dance).
func (e *Emitter) Frem1(hostRemainderFn uint32) {
	e.SaveRoundingMode(armasm.Work3)
	// R12 is not preserved across a host call, so the saved FPSCR rides
	// on the stack.
	armasm.PUSH(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.Work3))
	e.CallAbsolute(hostRemainderFn)
	armasm.POP(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.Work3))
	e.RestoreRoundingMode(armasm.Work3)
}

// --- rounding mode control (raw_roundingmode) ---

// RoundingMode is the two-bit VFP FPSCR rounding-mode field (bits
// 23:22).
type RoundingMode uint32

const (
	RoundNearest RoundingMode = 0
	RoundPlusInf RoundingMode = 1
	RoundMinusInf RoundingMode = 2
	RoundTowardZero RoundingMode = 3
)

// SetRoundingMode installs mode into FPSCR[23:22], leaving the rest of
// FPSCR untouched.
func (e *Emitter) SetRoundingMode(scratch armasm.Reg, mode RoundingMode) {
	armasm.VMRS(e.Buf, armasm.CondAL, scratch)
	armasm.BIC(e.Buf, armasm.CondAL, scratch, scratch, armasm.Imm(0x3<<22))
	if mode != 0 {
		armasm.ORR(e.Buf, armasm.CondAL, scratch, scratch, armasm.Imm(uint32(mode)<<22))
	}
	armasm.VMSR(e.Buf, armasm.CondAL, scratch)
}

// SaveRoundingMode reads the full FPSCR into scratch for later restore.
func (e *Emitter) SaveRoundingMode(scratch armasm.Reg) {
	armasm.VMRS(e.Buf, armasm.CondAL, scratch)
}

// RestoreRoundingMode writes a previously saved FPSCR value back.
func (e *Emitter) RestoreRoundingMode(scratch armasm.Reg) {
	armasm.VMSR(e.Buf, armasm.CondAL, scratch)
}
