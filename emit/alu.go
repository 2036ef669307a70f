package emit

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/flags"
)

// AddL emits Rd = Rn + Rm, optionally setting the guest flags
// (codegen_arm.cpp's raw_add_l / raw_add_l_ri family, register form).
func (e *Emitter) AddL(dst, a, b armasm.Reg, setFlags bool) {
	defer e.notify("AddL")
	if setFlags {
		e.Hooks.ClobberFlags()
		armasm.ADDS(e.Buf, armasm.CondAL, dst, a, armasm.Rm(b))
		return
	}
	armasm.ADD(e.Buf, armasm.CondAL, dst, a, armasm.Rm(b))
}

// AddLImm emits Rd = Rn + imm (raw_add_l_ri), synthesizing the
// immediate through LoadImmediate when it has no rotated-8-bit form.
func (e *Emitter) AddLImm(dst, a armasm.Reg, imm uint32, setFlags bool) {
	defer e.notify("AddLImm")
	if armasm.FitsRotatedImm8(imm) {
		if setFlags {
			e.Hooks.ClobberFlags()
			armasm.ADDS(e.Buf, armasm.CondAL, dst, a, armasm.Imm(imm))
		} else {
			armasm.ADD(e.Buf, armasm.CondAL, dst, a, armasm.Imm(imm))
		}
		return
	}
	scratch := pickScratch(dst, a)
	e.LoadImmediate(scratch, imm)
	e.AddL(dst, a, scratch, setFlags)
}

// SubL emits Rd = Rn - Rm. When setFlags is true this also performs the
// 68k borrow-polarity fixup: ARM's C flag after SUBS means "no borrow
// occurred" (set when Rn >= Rm), the opposite sense of the 68k's own
// borrow flag, so spec.md §4.4 requires the host C flag inverted right
// after the SUBS, before anything (ToMemory's spill included) reads it.
func (e *Emitter) SubL(dst, a, b armasm.Reg, setFlags bool) {
	defer e.notify("SubL")
	if setFlags {
		e.Hooks.ClobberFlags()
		armasm.SUBS(e.Buf, armasm.CondAL, dst, a, armasm.Rm(b))
		flags.InvertHostCarry(e.Buf, pickScratch(dst, a, b))
		return
	}
	armasm.SUB(e.Buf, armasm.CondAL, dst, a, armasm.Rm(b))
}

// SubLImm is SubL's immediate sibling (raw_sub_l_ri).
func (e *Emitter) SubLImm(dst, a armasm.Reg, imm uint32, setFlags bool) {
	defer e.notify("SubLImm")
	if armasm.FitsRotatedImm8(imm) {
		if setFlags {
			e.Hooks.ClobberFlags()
			armasm.SUBS(e.Buf, armasm.CondAL, dst, a, armasm.Imm(imm))
			flags.InvertHostCarry(e.Buf, pickScratch(dst, a))
		} else {
			armasm.SUB(e.Buf, armasm.CondAL, dst, a, armasm.Imm(imm))
		}
		return
	}
	scratch := pickScratch(dst, a)
	e.LoadImmediate(scratch, imm)
	e.SubL(dst, a, scratch, setFlags)
}

// MovB moves the low byte of src into the low byte of dst, preserving
// the rest of dst (raw_mov_b_rr restricted to the register-to-register
// case; the memory forms live on the LeaIndexed/addressing helpers
// below). A 68k byte move must leave the destination register's upper
// 24 bits — shared with other data in the same D register — untouched.
func (e *Emitter) MovB(dst, src armasm.Reg) {
	defer e.notify("MovB")
	e.Merge(dst, src, 0, 8)
}

// MovW moves the low halfword of src into the low halfword of dst,
// preserving dst's upper 16 bits (raw_mov_w_rr).
func (e *Emitter) MovW(dst, src armasm.Reg) {
	defer e.notify("MovW")
	e.Merge(dst, src, 0, 16)
}

// MovL moves a full word, dst = src.
func (e *Emitter) MovL(dst, src armasm.Reg) {
	if dst == src {
		return
	}
	defer e.notify("MovL")
	armasm.MOV(e.Buf, armasm.CondAL, dst, armasm.Rm(src))
}

// LeaIndexed computes dst = base + (index << scale) + disp, the
// addressing-mode effective-address helper every 68k (An,Dn,scale)
// indexed mode lowers to (raw_lea with an indexed operand).
func (e *Emitter) LeaIndexed(dst, base, index armasm.Reg, scale uint32, disp int32) {
	if scale > 3 {
		invariant("LeaIndexed", "scale out of range (must be a shift of 0-3)")
	}
	defer e.notify("LeaIndexed")
	if disp == 0 {
		armasm.ADD(e.Buf, armasm.CondAL, dst, base, armasm.RmShift(index, armasm.ShiftLSL, scale))
		return
	}
	armasm.ADD(e.Buf, armasm.CondAL, dst, base, armasm.RmShift(index, armasm.ShiftLSL, scale))
	e.AddLImm(dst, dst, uint32(disp), false)
}

// Merge inserts the low width bits of src into dst at bit position lsb,
// leaving the rest of dst untouched — the raw_bfi-style helper behind
// 68k byte/word-into-register partial writes that must not disturb the
// surrounding bits of a shared D register (spec.md §4.4's "merge"
// operation).
func (e *Emitter) Merge(dst, src armasm.Reg, lsb, width uint32) {
	defer e.notify("Merge")
	armasm.BFI(e.Buf, armasm.CondAL, dst, src, lsb, width)
}

// TagMask isolates the low width bits of reg in place, the step that
// strips a translated PC down to its cache-tag-table index. A mask with
// a rotated-immediate encoding takes one AND; wider masks clear the
// upper bits with BFC on ARMv6T2, or with one BIC per byte otherwise.
func (e *Emitter) TagMask(reg armasm.Reg, width uint32) {
	defer e.notify("TagMask")
	mask := (uint32(1) << width) - 1
	switch {
	case armasm.FitsRotatedImm8(mask):
		armasm.AND(e.Buf, armasm.CondAL, reg, reg, armasm.Imm(mask))
	case e.ARMv6T2:
		armasm.BFC(e.Buf, armasm.CondAL, reg, width, 32-width)
	default:
		for shift := uint32(0); shift < 32; shift += 8 {
			if chunk := ^mask & (0xFF << shift); chunk != 0 {
				armasm.BIC(e.Buf, armasm.CondAL, reg, reg, armasm.Imm(chunk))
			}
		}
	}
}

func pickScratch(avoid ...armasm.Reg) armasm.Reg {
	for _, candidate := range []armasm.Reg{armasm.Work1, armasm.Work2, armasm.Work3} {
		clash := false
		for _, a := range avoid {
			if a == candidate {
				clash = true
				break
			}
		}
		if !clash {
			return candidate
		}
	}
	invariant("pickScratch", "no free scratch register")
	return armasm.Work1
}
