package emit

import (
	"testing"

	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/regs"
)

func TestLoadGuestUsesR11WhenInRegs(t *testing.T) {
	e, _ := newTestEmitter()
	base := regs.Base(0x40000000)
	addr := uint32(base) + uint32(regs.OffD[3])

	before := e.Buf.Cursor()
	e.LoadGuest(armasm.R0, base, addr)
	words := (e.Buf.Cursor() - before) / 4
	if words != 1 {
		t.Fatalf("expected a single LDR for an in-regs address, got %d words", words)
	}

	word := e.Buf.WordAt(before)
	rn := (word >> 16) & 0xF
	if armasm.Reg(rn) != armasm.RegStruct {
		t.Errorf("expected base register R11, got r%d", rn)
	}
}

func TestLoadGuestMaterializesAbsoluteAddressWhenOutOfRegs(t *testing.T) {
	e, _ := newTestEmitter()
	base := regs.Base(0x40000000)
	addr := uint32(0xDEADBEEF) // far outside the register block

	before := e.Buf.Cursor()
	e.LoadGuest(armasm.R0, base, addr)
	words := (e.Buf.Cursor() - before) / 4
	if words < 2 {
		t.Fatalf("expected an immediate load plus LDR for an out-of-regs address, got %d words", words)
	}
}

func TestStoreGuestByteAndHalfRoundTripInRegs(t *testing.T) {
	e, _ := newTestEmitter()
	base := regs.Base(0x40000000)
	addr := uint32(base) + uint32(regs.OffCCR)

	e.StoreGuestByte(armasm.R0, base, addr)
	e.StoreGuestHalf(armasm.R0, base, addr)
	if got := e.Buf.Cursor() / 4; got != 2 {
		t.Fatalf("expected 2 single-instruction stores, got %d words", got)
	}
}
