package emit

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/regs"
)

// guestAddr resolves a guest address to either a direct R11-relative
// displacement (spec.md §4.3's "in-regs" case) or, failing that, a
// scratch register loaded with the absolute host address — the single
// decision every guest load/store below shares.
func (e *Emitter) guestAddr(base regs.Base, addr uint32, scratch armasm.Reg) (reg armasm.Reg, disp int32) {
	if off, inRegs := regs.Classify(base, addr); inRegs {
		return e.RegBase, off
	}
	e.LoadImmediate(scratch, addr)
	return scratch, 0
}

// LoadGuest reads a 32-bit guest value at addr into dst (the in-regs
// optimized form of a guest memory load).
func (e *Emitter) LoadGuest(dst armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("LoadGuest")
	scratch := pickScratch(dst)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.LDR(e.Buf, armasm.CondAL, dst, armasm.Offset(reg, disp))
}

// StoreGuest writes src to the 32-bit guest value at addr.
func (e *Emitter) StoreGuest(src armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("StoreGuest")
	scratch := pickScratch(src)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.STR(e.Buf, armasm.CondAL, src, armasm.Offset(reg, disp))
}

// LoadGuestByte/StoreGuestByte and LoadGuestHalf/StoreGuestHalf are
// LoadGuest/StoreGuest's byte and halfword siblings, per spec.md §4.3's
// "the same classification applies to byte... and half-word... forms".

func (e *Emitter) LoadGuestByte(dst armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("LoadGuestByte")
	scratch := pickScratch(dst)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.LDRB(e.Buf, armasm.CondAL, dst, armasm.Offset(reg, disp))
}

func (e *Emitter) StoreGuestByte(src armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("StoreGuestByte")
	scratch := pickScratch(src)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.STRB(e.Buf, armasm.CondAL, src, armasm.Offset(reg, disp))
}

func (e *Emitter) LoadGuestHalf(dst armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("LoadGuestHalf")
	scratch := pickScratch(dst)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.LDRH(e.Buf, armasm.CondAL, dst, armasm.Offset(reg, disp))
}

func (e *Emitter) StoreGuestHalf(src armasm.Reg, base regs.Base, addr uint32) {
	defer e.notify("StoreGuestHalf")
	scratch := pickScratch(src)
	reg, disp := e.guestAddr(base, addr, scratch)
	armasm.STRH(e.Buf, armasm.CondAL, src, armasm.Offset(reg, disp))
}
