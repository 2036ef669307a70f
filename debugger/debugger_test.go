package debugger

import (
	"testing"

	"github.com/armjit/m68k-arm-emitter/codebuf"
)

func TestWordCountAndWordAt(t *testing.T) {
	buf := codebuf.New(64)
	buf.EmitWord(0xE3A00000) // MOV r0, #0
	buf.EmitWord(0xE12FFF1E) // BX lr

	d := New(buf)
	if got := d.WordCount(); got != 2 {
		t.Fatalf("expected 2 words, got %d", got)
	}
	if got := d.WordAt(1); got != 0xE12FFF1E {
		t.Errorf("expected BX lr at index 1, got %#x", got)
	}
}

func TestDisassembleRecognizesCommonForms(t *testing.T) {
	cases := []struct {
		word uint32
		want string
	}{
		{0xE3A00000, "MOVAL r0, r0, ..."},
		{0xE12FFF1E, "BXAL r14"},
		{0xEAFFFFFE, "BAL #-8"},
	}
	for _, c := range cases {
		if got := Disassemble(c.word); got != c.want {
			t.Errorf("Disassemble(%#x) = %q, want %q", c.word, got, c.want)
		}
	}
}

func TestRegMirrorStartsEmpty(t *testing.T) {
	buf := codebuf.New(16)
	d := New(buf)
	if len(d.RegMirror) != 0 {
		t.Errorf("expected empty register mirror, got %v", d.RegMirror)
	}
}
