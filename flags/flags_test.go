package flags

import (
	"testing"

	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/frontend/fake"
)

func TestToMemoryNotifiesEviction(t *testing.T) {
	buf := codebuf.New(256)
	hooks := fake.New(buf)
	hooks.FlagHolder = 3

	ToMemory(buf, hooks, armasm.RegStruct, armasm.Work1, 3)

	if len(hooks.Evictions) != 1 || hooks.Evictions[0] != 3 {
		t.Fatalf("expected one eviction of r3, got %v", hooks.Evictions)
	}
	if hooks.FlagHolder != -1 {
		t.Errorf("FlagHolder should be cleared after eviction, got %d", hooks.FlagHolder)
	}
}

func TestToMemoryPanicsOnMirrorMismatch(t *testing.T) {
	buf := codebuf.New(256)
	hooks := fake.New(buf)
	hooks.FlagHolder = 5 // caller claims r3 holds it, mirror disagrees

	defer func() {
		if recover() == nil {
			t.Error("expected panic on flag-holder mismatch")
		}
	}()
	ToMemory(buf, hooks, armasm.RegStruct, armasm.Work1, 3)
}

func TestSwapLowTwoBitsIsInvolution(t *testing.T) {
	// swapLowTwoBits must be its own inverse: applying it twice to the
	// same ARM-order nibble returns the original value. This is a
	// property of the bit-trick, checked directly rather than through
	// emitted code.
	for v := uint32(0); v < 16; v++ {
		once := swapBitsRef(v)
		twice := swapBitsRef(once)
		if twice != v {
			t.Errorf("swap(swap(%#x)) = %#x, want %#x", v, twice, v)
		}
	}
}

// swapBitsRef mirrors swapLowTwoBits's arithmetic in plain Go, since the
// emitted version only exists as ARM words.
func swapBitsRef(reg uint32) uint32 {
	t := (reg >> 1) ^ reg
	t &= 1
	return reg ^ (t | (t << 1))
}

func TestLoadFlagXMasksToSingleBit(t *testing.T) {
	buf := codebuf.New(256)
	LoadFlagX(buf, armasm.RegStruct, armasm.Work1)
	words := buf.Bytes()
	if len(words) != 8 {
		t.Fatalf("expected LDR+AND (2 words), got %d bytes", len(words))
	}
}
