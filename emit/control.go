package emit

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
)

// branchWordOffset converts a byte displacement from a branch site to
// the word-count field ARM's B/BL encode, accounting for the PC+8
// pipeline convention.
func branchWordOffset(site, target int) int32 {
	off := int32(target - (site + 8))
	if off%4 != 0 {
		invariant("branchWordOffset", "target not word-aligned relative to site")
	}
	return off / 4
}

// BranchPlaceholder emits a branch with a zero offset and returns the
// site address for a later PatchBranch call — used for forward branches
// whose target isn't known yet (spec.md §9: never hard-code an
// instruction count, always patch from a recorded label). Not wired to
// the telemetry sink: the word at site is rewritten by PatchBranch, so
// an event emitted here would report a not-yet-real offset.
func (e *Emitter) BranchPlaceholder(cond armasm.Cond, link bool) int {
	site := e.Buf.Target()
	if link {
		armasm.BL(e.Buf, cond, 0)
	} else {
		armasm.B(e.Buf, cond, 0)
	}
	return site
}

// PatchBranch resolves a previously emitted BranchPlaceholder against
// target, preserving the branch's condition and link bit.
func (e *Emitter) PatchBranch(site int, target codebuf.Label) {
	word := e.Buf.WordAt(site)
	offset := branchWordOffset(site, target.Addr())
	word = (word &^ 0xFFFFFF) | (uint32(offset) & 0xFFFFFF)
	e.Buf.PatchWord(site, word)
}

// BranchTo emits a branch to an already-known (necessarily backward)
// target label.
func (e *Emitter) BranchTo(cond armasm.Cond, link bool, target codebuf.Label) {
	site := e.Buf.Target()
	offset := branchWordOffset(site, target.Addr())
	if link {
		armasm.BL(e.Buf, cond, offset)
	} else {
		armasm.B(e.Buf, cond, offset)
	}
}

// Jcc is the general conditional-branch helper: one branch on a single
// native ARM condition. Predicates that need more than one ARM condition
// to express (the unordered-aware IEEE ones) have no branch helper in
// this module. target, nil means "forward, patch later" and the
// returned site must be resolved with PatchBranch.
func (e *Emitter) Jcc(cond armasm.Cond, target *codebuf.Label) int {
	if target == nil {
		return e.BranchPlaceholder(cond, false)
	}
	e.BranchTo(cond, false, *target)
	return -1
}

// JumpLess emits a forward branch taken when the guest flags (already
// installed as host flags) indicate signed less-than (compemu_raw_jl).
func (e *Emitter) JumpLess() int {
	return e.BranchPlaceholder(armasm.CondLT, false)
}

// JumpAbsolute emits an unconditional forward branch (compemu_raw_jmp).
func (e *Emitter) JumpAbsolute() int {
	return e.BranchPlaceholder(armasm.CondAL, false)
}

// JumpIfNotZero emits a forward branch taken when Z is clear
// (compemu_raw_jnz), assuming the relevant compare has already run.
func (e *Emitter) JumpIfNotZero() int {
	return e.BranchPlaceholder(armasm.CondNE, false)
}

// JumpIfZeroOponly emits a forward branch taken when Z is set, without
// itself touching any flags (compemu_raw_jz_b_oponly): purely a
// condition-code consumer, unlike ops that also set flags as a
// side-effect.
func (e *Emitter) JumpIfZeroOponly() int {
	return e.BranchPlaceholder(armasm.CondEQ, false)
}

// BranchRelative emits an unconditional branch whose target is already
// known as a word displacement — the short relative form
// compemu_raw_branch uses when a sequence branches within itself rather
// than to a front-end-managed label.
func (e *Emitter) BranchRelative(wordOffset int32) {
	defer e.notify("BranchRelative")
	armasm.B(e.Buf, armasm.CondAL, wordOffset)
}

// AdjustSP adjusts the host stack pointer by delta bytes (positive
// grows down via SUB, negative via ADD), mirroring raw_dec_sp/
// raw_inc_sp's shared CHECK32-or-materialize immediate choice.
func (e *Emitter) AdjustSP(delta int32) {
	if delta == 0 {
		return
	}
	defer e.notify("AdjustSP")
	abs := delta
	sub := true
	if abs < 0 {
		abs = -abs
		sub = false
	}
	v := uint32(abs)
	if armasm.FitsRotatedImm8(v) {
		if sub {
			armasm.SUB(e.Buf, armasm.CondAL, armasm.SP, armasm.SP, armasm.Imm(v))
		} else {
			armasm.ADD(e.Buf, armasm.CondAL, armasm.SP, armasm.SP, armasm.Imm(v))
		}
		return
	}
	e.LoadImmediate(armasm.Work1, v)
	if sub {
		armasm.SUB(e.Buf, armasm.CondAL, armasm.SP, armasm.SP, armasm.Rm(armasm.Work1))
	} else {
		armasm.ADD(e.Buf, armasm.CondAL, armasm.SP, armasm.SP, armasm.Rm(armasm.Work1))
	}
}

// CallAbsolute calls a fixed host function address, preserving LR
// around the call (compemu_raw_call): PUSH {lr}; materialize target;
// BLX target; POP {lr}.
func (e *Emitter) CallAbsolute(target uint32) {
	defer e.notify("CallAbsolute")
	armasm.PUSH(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.LR))
	e.LoadImmediate(armasm.Work1, target)
	armasm.BLX(e.Buf, armasm.CondAL, armasm.Work1)
	armasm.POP(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.LR))
}

// CallRegister calls a host function whose address is already held in a
// register (compemu_raw_call_r).
func (e *Emitter) CallRegister(target armasm.Reg) {
	defer e.notify("CallRegister")
	armasm.PUSH(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.LR))
	armasm.BLX(e.Buf, armasm.CondAL, target)
	armasm.POP(e.Buf, armasm.CondAL, armasm.RegList(0).Add(armasm.LR))
}
