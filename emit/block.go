package emit

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/regs"
)

// calleeSaved is the register set the prologue/epilogue preserves
// across a translated block, matching the AAPCS callee-saved set plus
// LR/PC for the return. R11 is saved here too even though the block
// immediately overwrites it with the register-block base, so the
// caller's own R11 (frame pointer, under AAPCS) survives the call.
var calleeSaved = armasm.RegList(0).Add(armasm.R4).Add(armasm.R5).Add(armasm.R6).
	Add(armasm.R7).Add(armasm.R8).Add(armasm.R9).Add(armasm.R10).Add(armasm.R11)

// Prologue emits a translation block's entry sequence: save the host's
// callee-saved registers, then pin R11 to the guest register block base
// for the rest of the block (codegen_arm.cpp's compemu_raw_init_r_regstruct).
func (e *Emitter) Prologue(regBlockBase uint32) {
	defer e.notify("Prologue")
	armasm.PUSH(e.Buf, armasm.CondAL, calleeSaved.Add(armasm.LR))
	e.LoadImmediate(e.RegBase, regBlockBase)
}

// Epilogue emits a translation block's exit sequence: restore the
// host's callee-saved registers and return to the caller (the
// translation-cache dispatcher).
func (e *Emitter) Epilogue() {
	defer e.notify("Epilogue")
	armasm.POP(e.Buf, armasm.CondAL, calleeSaved.Add(armasm.PC))
}

// EndblockPCIsConst closes a block whose next guest PC is known at
// translation time: it stores the constant into the register block's PC
// slot, then runs the epilogue (compemu_raw_endblock_pc_isconst).
func (e *Emitter) EndblockPCIsConst(pc uint32) {
	defer e.notify("EndblockPCIsConst")
	e.LoadImmediate(armasm.Work1, pc)
	armasm.STR(e.Buf, armasm.CondAL, armasm.Work1, armasm.Offset(e.RegBase, int32(regs.OffPC)))
	e.Epilogue()
}

// EndblockPCInReg closes a block whose next guest PC was computed into
// a host register at runtime: it stores that register into the PC slot,
// then runs the epilogue (compemu_raw_endblock_pc_inreg).
func (e *Emitter) EndblockPCInReg(pcReg armasm.Reg) {
	defer e.notify("EndblockPCInReg")
	armasm.STR(e.Buf, armasm.CondAL, pcReg, armasm.Offset(e.RegBase, int32(regs.OffPC)))
	e.Epilogue()
}

// HandleExcept polls the guest register block's JitException word
// between guest opcodes and branches out to the block's shared
// exception trampoline if it is nonzero (compemu_raw_handle_except's
// inline check). It does not read or adjust Countdown. The
// exception-handler address is filled in later with ResolveExceptTarget
// once the caller knows where the trampoline lives; this function
// returns the branch site.
func (e *Emitter) HandleExcept() (branchSite int) {
	defer e.notify("HandleExcept")
	armasm.LDR(e.Buf, armasm.CondAL, armasm.Work1, armasm.Offset(e.RegBase, int32(regs.OffJitException)))
	e.Hooks.ClobberFlags()
	armasm.CMP(e.Buf, armasm.CondAL, armasm.Work1, armasm.Imm(0))
	return e.BranchPlaceholder(armasm.CondNE, false)
}

// ResolveExceptTarget patches a HandleExcept branch site to the block's
// actual exception-trampoline label, once that label exists.
func (e *Emitter) ResolveExceptTarget(site int, trampoline codebuf.Label) {
	e.PatchBranch(site, trampoline)
}
