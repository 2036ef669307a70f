package emit

import (
	"testing"

	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/frontend/fake"
)

func newTestEmitter() (*Emitter, *fake.Hooks) {
	buf := codebuf.New(512)
	hooks := fake.New(buf)
	e := New(buf, hooks.Pool, hooks, armasm.RegStruct, true)
	return e, hooks
}

type recordingSink struct {
	events []string
}

func (r *recordingSink) EmitEvent(addr int, word uint32, op string) {
	r.events = append(r.events, op)
}

func TestSinkReceivesOneEventPerCall(t *testing.T) {
	e, _ := newTestEmitter()
	sink := &recordingSink{}
	e.Sink = sink

	e.LoadImmediate(armasm.R0, 5)
	e.MovL(armasm.R1, armasm.R0)

	want := []string{"LoadImmediate", "MovL"}
	if len(sink.events) != len(want) {
		t.Fatalf("expected %v, got %v", want, sink.events)
	}
	for i, op := range want {
		if sink.events[i] != op {
			t.Errorf("event %d: expected %q, got %q", i, op, sink.events[i])
		}
	}
}

func TestSinkSkippedOnNoopMovL(t *testing.T) {
	e, _ := newTestEmitter()
	sink := &recordingSink{}
	e.Sink = sink

	e.MovL(armasm.R0, armasm.R0) // dst == src, no word emitted

	if len(sink.events) != 0 {
		t.Errorf("expected no events for a no-op move, got %v", sink.events)
	}
}

func TestLoadImmediateSmallUsesSingleMOV(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.LoadImmediate(armasm.R0, 5)
	if e.Buf.Cursor()-before != 4 {
		t.Errorf("expected a single word for a trivially-encodable immediate, wrote %d bytes", e.Buf.Cursor()-before)
	}
}

func TestLoadImmediateWideUsesMOVWMOVT(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.LoadImmediate(armasm.R0, 0x12345678)
	if e.Buf.Cursor()-before != 8 {
		t.Errorf("expected MOVW+MOVT pair (8 bytes), wrote %d bytes", e.Buf.Cursor()-before)
	}
}

func TestCmpClobbersFlags(t *testing.T) {
	e, hooks := newTestEmitter()
	e.Cmp(armasm.R0, armasm.R1)
	if hooks.ClobberCalls != 1 {
		t.Errorf("expected one ClobberFlags call, got %d", hooks.ClobberCalls)
	}
}

func TestAddLImmWithNonTrivialConstant(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.AddLImm(armasm.R0, armasm.R0, 0x12345678, false)
	// MOVW+MOVT to materialize, plus the ADD itself.
	if got := e.Buf.Cursor() - before; got != 12 {
		t.Errorf("expected 12 bytes (2 immediate words + ADD), got %d", got)
	}
}

func TestForwardBranchPatches(t *testing.T) {
	e, _ := newTestEmitter()
	site := e.JumpAbsolute()
	// Emit some filler so the branch isn't to itself.
	e.LoadImmediate(armasm.R0, 1)
	e.LoadImmediate(armasm.R1, 2)
	target := e.Buf.Here()
	e.PatchBranch(site, target)

	word := e.Buf.WordAt(site)
	wantOffset := branchWordOffset(site, target.Addr())
	gotOffset := int32(word & 0xFFFFFF)
	// Sign-extend the 24-bit field for comparison.
	if gotOffset&0x800000 != 0 {
		gotOffset |= ^int32(0xFFFFFF)
	}
	if gotOffset != wantOffset {
		t.Errorf("patched branch offset = %d, want %d", gotOffset, wantOffset)
	}
}

func TestHandleExceptEmitsPollAndBranch(t *testing.T) {
	e, _ := newTestEmitter()
	site := e.HandleExcept()
	trampoline := e.Buf.Here()
	e.ResolveExceptTarget(site, trampoline)
	// The branch word's condition field must be NE (0x1).
	word := e.Buf.WordAt(site)
	if cond := word >> 28; cond != uint32(armasm.CondNE) {
		t.Errorf("expected NE-conditioned branch, got cond %d", cond)
	}
}

func TestPrologueEpilogueSaveRestoreSameSet(t *testing.T) {
	e, _ := newTestEmitter()
	e.Prologue(0x40000000)
	prologueWords := len(e.Buf.Bytes())
	e.Epilogue()
	if len(e.Buf.Bytes()) <= prologueWords {
		t.Error("epilogue did not emit anything")
	}
	push := e.Buf.WordAt(0) & 0xFFFF
	pop := e.Buf.WordAt(prologueWords) & 0xFFFF
	if push&^(1<<uint(armasm.LR)) != pop&^(1<<uint(armasm.PC)) {
		t.Errorf("prologue saves %#04x but epilogue restores %#04x", push, pop)
	}
}

func TestMovBUsesPreservingInsertNotDestructiveAnd(t *testing.T) {
	e, _ := newTestEmitter()
	e.MovB(armasm.R0, armasm.R1)
	word := e.Buf.WordAt(e.Buf.Cursor() - 4)
	// BFI's distinguishing bits (bits[27:21] = 0b0111110) rule out the
	// old AND-immediate encoding, which would have opcode field 0x0 at
	// bits[24:21].
	if (word>>21)&0x7F != 0x3E {
		t.Errorf("MovB should emit BFI (preserving dst's upper bits), word=%#08x", word)
	}
}

func TestMovWUsesPreservingInsertNotUXTH(t *testing.T) {
	e, _ := newTestEmitter()
	e.MovW(armasm.R0, armasm.R1)
	word := e.Buf.WordAt(e.Buf.Cursor() - 4)
	if (word>>21)&0x7F != 0x3E {
		t.Errorf("MovW should emit BFI (preserving dst's upper 16 bits), word=%#08x", word)
	}
}

func TestSubLSetFlagsInvertsHostCarry(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.SubL(armasm.R0, armasm.R1, armasm.R2, true)
	// SUBS, then MRS/EOR/MSR to invert the borrow-polarity C bit: 4 words.
	if got := e.Buf.Cursor() - before; got != 16 {
		t.Errorf("expected 4 words (SUBS + MRS/EOR/MSR), got %d bytes", got)
	}
}

func TestSubLNoFlagsSkipsCarryInversion(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.SubL(armasm.R0, armasm.R1, armasm.R2, false)
	if got := e.Buf.Cursor() - before; got != 4 {
		t.Errorf("expected a single SUB word with setFlags=false, got %d bytes", got)
	}
}

func TestSubLImmFitsPathInvertsHostCarry(t *testing.T) {
	e, _ := newTestEmitter()
	before := e.Buf.Cursor()
	e.SubLImm(armasm.R0, armasm.R1, 1, true)
	if got := e.Buf.Cursor() - before; got != 16 {
		t.Errorf("expected 4 words (SUBS + MRS/EOR/MSR), got %d bytes", got)
	}
}

func TestAdjustSPNegatesCorrectDirection(t *testing.T) {
	e, _ := newTestEmitter()
	e.AdjustSP(16)
	subWord := e.Buf.WordAt(e.Buf.Cursor() - 4)
	// SUB opcode field is 0x2 at bits[24:21].
	if (subWord>>21)&0xF != 0x2 {
		t.Errorf("AdjustSP(16) should emit SUB, word=%#08x", subWord)
	}

	e2, _ := newTestEmitter()
	e2.AdjustSP(-16)
	addWord := e2.Buf.WordAt(e2.Buf.Cursor() - 4)
	if (addWord>>21)&0xF != 0x4 {
		t.Errorf("AdjustSP(-16) should emit ADD, word=%#08x", addWord)
	}
}
