package armasm

import "testing"

// wordSink is the simplest possible Writer: it just records every word
// emitted, for asserting exact encodings against hand-derived values.
type wordSink struct {
	words []uint32
}

func (s *wordSink) EmitWord(w uint32) { s.words = append(s.words, w) }

func (s *wordSink) last() uint32 {
	if len(s.words) == 0 {
		return 0
	}
	return s.words[len(s.words)-1]
}

func TestEncodeRotatedImm8(t *testing.T) {
	tests := []struct {
		input    uint32
		wantOK   bool
	}{
		{0, true},
		{0xFF, true},
		{0xFF00, true},
		{0xFF000000, true},
		{0x000000FF, true},
		{1, true},
		{0x101, false}, // two nonzero bytes, not expressible
		{0xFFFFFFFF, false},
	}
	for _, tt := range tests {
		_, ok := EncodeRotatedImm8(tt.input)
		if ok != tt.wantOK {
			t.Errorf("EncodeRotatedImm8(%#x) ok=%v, want %v", tt.input, ok, tt.wantOK)
		}
	}
}

// decodeRotatedImm8 mirrors the ARM decode of a data-processing immediate
// operand2: ror(imm8, 2*field).
func decodeRotatedImm8(encoded uint32) uint32 {
	field := (encoded >> 8) & 0xF
	imm8 := encoded & 0xFF
	rot := (2 * field) % 32
	if rot == 0 {
		return imm8
	}
	return (imm8 >> rot) | (imm8 << (32 - rot))
}

func TestEncodeRotatedImm8RoundTrips(t *testing.T) {
	tests := []uint32{0, 0xFF, 0xFF00, 0xFF000000, 0x000000FF, 1, 0x200, 0x2000000, 0xCC000000}
	for _, v := range tests {
		encoded, ok := EncodeRotatedImm8(v)
		if !ok {
			t.Errorf("EncodeRotatedImm8(%#x) ok=false, want true", v)
			continue
		}
		if got := decodeRotatedImm8(encoded); got != v {
			t.Errorf("EncodeRotatedImm8(%#x) = %#x, decodes back to %#x", v, encoded, got)
		}
	}
}

func TestEncodeRotatedImm8KnownFields(t *testing.T) {
	// 0xFF000000 is 0xFF rotated right by 8 bits; rotating it left by 8,
	// the smallest even rotation that lands the byte in range, gives
	// field = 8/2 = 4.
	encoded, ok := EncodeRotatedImm8(0xFF000000)
	if !ok {
		t.Fatalf("EncodeRotatedImm8(0xFF000000) ok=false")
	}
	if want := uint32(0x4FF); encoded != want {
		t.Errorf("EncodeRotatedImm8(0xFF000000) = %#x, want %#x (field 4, imm8 0xFF)", encoded, want)
	}
}

func TestMOVImmediate(t *testing.T) {
	s := &wordSink{}
	MOV(s, CondAL, R0, Imm(0))
	want := uint32(0xE3A00000)
	if got := s.last(); got != want {
		t.Errorf("MOV r0, #0 = %#08x, want %#08x", got, want)
	}
}

func TestADDRegister(t *testing.T) {
	s := &wordSink{}
	ADD(s, CondAL, R0, R1, Rm(R2))
	want := uint32(0xE0810002)
	if got := s.last(); got != want {
		t.Errorf("ADD r0, r1, r2 = %#08x, want %#08x", got, want)
	}
}

func TestCMPSetsSFlag(t *testing.T) {
	s := &wordSink{}
	CMP(s, CondAL, R0, Imm(0))
	// CMP is always S-form: bit 20 must be set.
	if s.last()&(1<<20) == 0 {
		t.Errorf("CMP word %#08x missing S bit", s.last())
	}
}

func TestConditionInvert(t *testing.T) {
	tests := []struct {
		in, want Cond
	}{
		{CondEQ, CondNE},
		{CondNE, CondEQ},
		{CondGE, CondLT},
		{CondGT, CondLE},
	}
	for _, tt := range tests {
		if got := tt.in.Invert(); got != tt.want {
			t.Errorf("%v.Invert() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLDROffset(t *testing.T) {
	s := &wordSink{}
	LDR(s, CondAL, R0, Offset(RegStruct, 16))
	want := uint32(0xE59B0010)
	if got := s.last(); got != want {
		t.Errorf("LDR r0, [r11, #16] = %#08x, want %#08x", got, want)
	}
}

func TestLDRNegativeOffset(t *testing.T) {
	s := &wordSink{}
	LDR(s, CondAL, R0, Offset(RegStruct, -4))
	if s.last()&(1<<23) != 0 {
		t.Errorf("expected U bit clear for negative offset, word=%#08x", s.last())
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	s := &wordSink{}
	list := RegList(0).Add(R4).Add(R5).Add(LR)
	PUSH(s, CondAL, list)
	POP(s, CondAL, RegList(0).Add(R4).Add(R5).Add(PC))
	if len(s.words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(s.words))
	}
	// STMDB sp! has P=1,U=0,W=1,L=0; LDMIA sp! has P=0,U=1,W=1,L=1.
	push := s.words[0]
	if push&(1<<20) != 0 {
		t.Errorf("PUSH must not set L bit: %#08x", push)
	}
	pop := s.words[1]
	if pop&(1<<20) == 0 {
		t.Errorf("POP must set L bit: %#08x", pop)
	}
}

func TestBXEncoding(t *testing.T) {
	s := &wordSink{}
	BX(s, CondAL, LR)
	want := uint32(0xE12FFF1E)
	if got := s.last(); got != want {
		t.Errorf("BX lr = %#08x, want %#08x", got, want)
	}
}

func TestMOVWMOVTRoundTrip(t *testing.T) {
	s := &wordSink{}
	MOVImm32(s, CondAL, R0, 0xDEADBEEF)
	if len(s.words) != 2 {
		t.Fatalf("expected MOVW+MOVT pair, got %d words", len(s.words))
	}
	movw := s.words[0]
	if movw>>20 != 0xE30 {
		t.Errorf("MOVW top bits wrong: %#08x", movw)
	}
	movt := s.words[1]
	if movt>>20 != 0xE34 {
		t.Errorf("MOVT top bits wrong: %#08x", movt)
	}
}

func TestBitfieldRangeChecks(t *testing.T) {
	s := &wordSink{}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range bitfield")
		}
	}()
	BFI(s, CondAL, R0, R1, 30, 8)
}

func TestREVEncoding(t *testing.T) {
	s := &wordSink{}
	REV(s, CondAL, R0, R1)
	want := uint32(0xE6BF0F31)
	if got := s.last(); got != want {
		t.Errorf("REV r0, r1 = %#08x, want %#08x", got, want)
	}
}

func TestVADDEncoding(t *testing.T) {
	s := &wordSink{}
	VADD(s, CondAL, D0, D1, D2)
	if s.last()>>23&0x1F != 0x1C {
		t.Errorf("VADD top bits wrong: %#08x", s.last())
	}
}

func TestVMRSVMSRDiffer(t *testing.T) {
	s := &wordSink{}
	VMRS(s, CondAL, R0)
	VMSR(s, CondAL, R0)
	if s.words[0] == s.words[1] {
		t.Errorf("VMRS and VMSR encoded identically: %#08x", s.words[0])
	}
}
