// Package regs describes the guest register block (spec.md §3) and the
// "in-regs" addressing classification the emitter's layer 4 relies on to
// collapse a guest-register load/store into a single LDR/STR with an
// immediate displacement from R11.
package regs

import "unsafe"

// FPBank is the FPU register file embedded in the guest register block
// (spec.md §2 layer 8: "double-precision register file").
type FPBank struct {
	D [8]float64
	// FPSR mirrors the condition bits of the guest FPU status register;
	// it is separate from the host VFP FPSCR the emitter manipulates
	// directly during translated code.
	FPSR uint32
}

// Block is the fixed-layout guest register block (spec.md §3): 8 data
// registers, 8 address registers, the saved condition-code word (68k
// CCR order), the X flag, the
// instruction pointer, the cycle countdown, the guest->host memory base
// offset, and the FPU bank. All byte offsets used by the emitter are
// derived from this struct via unsafe.Offsetof rather than hand-kept
// constants, so a layout change can never desynchronize the emitted
// displacement from the real field position.
type Block struct {
	D [8]uint32 // data registers D0-D7
	A [8]uint32 // address registers A0-A7

	CCR uint32 // slot index 16: saved condition-code word
	X   uint32 // slot index 17: X flag

	PC uint32 // pc_p: current guest instruction pointer

	Countdown int32 // cycle budget remaining this block

	NatmemOffset uintptr // NATMEM_OFFSETX: guest->host address translation base

	FP FPBank

	// JitException mirrors the process-wide jit_exception flag polled by
	// handle_except between opcodes (spec.md §4.5/§7).
	JitException uint32
}

// Byte offsets of every field the emitter addresses directly. Computed
// once at init time against the real struct layout.
var (
	OffD            [8]uintptr
	OffA            [8]uintptr
	OffCCR          uintptr
	OffX            uintptr
	OffPC           uintptr
	OffCountdown    uintptr
	OffNatmem       uintptr
	OffFP           uintptr
	OffFPD          [8]uintptr
	OffFPSR         uintptr
	OffJitException uintptr
	Size            uintptr
)

func init() {
	var b Block
	for i := range b.D {
		OffD[i] = unsafe.Offsetof(b.D) + uintptr(i)*4
	}
	for i := range b.A {
		OffA[i] = unsafe.Offsetof(b.A) + uintptr(i)*4
	}
	OffCCR = unsafe.Offsetof(b.CCR)
	OffX = unsafe.Offsetof(b.X)
	OffPC = unsafe.Offsetof(b.PC)
	OffCountdown = unsafe.Offsetof(b.Countdown)
	OffNatmem = unsafe.Offsetof(b.NatmemOffset)
	OffFP = unsafe.Offsetof(b.FP)
	for i := range b.FP.D {
		OffFPD[i] = OffFP + uintptr(i)*8
	}
	OffFPSR = OffFP + unsafe.Offsetof(b.FP.FPSR)
	OffJitException = unsafe.Offsetof(b.JitException)
	Size = unsafe.Sizeof(b)
}

// SlotCCR and SlotX are the 32-bit-word slot indices spec.md §3 and §4.6
// name directly ("slot index 16", "slot index 17"); they hold for any
// build since D/A total 16 words ahead of CCR.
const (
	SlotCCR = 16
	SlotX   = 17
)

// Base is the pinned host-resident address of the single process-wide
// register block. The prologue (compemu_raw_init_r_regstruct) loads this
// into R11 once per translation block.
type Base uintptr

// Classify reports whether a guest memory address falls inside the
// register block, and if so its byte displacement from Base — the
// "in-regs" test of spec.md §4.3.
func Classify(base Base, addr uint32) (offset int32, inRegs bool) {
	lo := uint32(base)
	hi := lo + uint32(Size)
	if addr < lo || addr >= hi {
		return 0, false
	}
	return int32(addr - lo), true
}
