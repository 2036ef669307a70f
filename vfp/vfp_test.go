package vfp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/emit"
	"github.com/armjit/m68k-arm-emitter/frontend/fake"
	"github.com/armjit/m68k-arm-emitter/regs"
)

func newTestFPEmitter() (*Emitter, *fake.Hooks) {
	buf := codebuf.New(512)
	hooks := fake.New(buf)
	base := emit.New(buf, hooks.Pool, hooks, armasm.RegStruct, true)
	return New(base), hooks
}

func TestExtendedRoundTripOrdinary(t *testing.T) {
	values := []float64{1.0, -1.0, 0.5, 3.14159265358979, 123456.789, -0.000001}
	for _, v := range values {
		ext := FromFloat64(v)
		got := ext.ToFloat64()
		assert.InEpsilon(t, v, got, 1e-12, "round trip for %v", v)
	}
}

func TestExtendedRoundTripZero(t *testing.T) {
	assert.Equal(t, float64(0), FromFloat64(0).ToFloat64())
	ext := FromFloat64(math.Copysign(0, -1))
	assert.True(t, math.Signbit(ext.ToFloat64()))
}

func TestExtendedRoundTripInfinity(t *testing.T) {
	posInf := FromFloat64(math.Inf(1))
	assert.True(t, math.IsInf(posInf.ToFloat64(), 1))
	negInf := FromFloat64(math.Inf(-1))
	assert.True(t, math.IsInf(negInf.ToFloat64(), -1))
}

func TestVADDEmitsOneWord(t *testing.T) {
	e, _ := newTestFPEmitter()
	before := e.Buf.Cursor()
	e.Add(armasm.D0, armasm.D1, armasm.D2)
	assert.Equal(t, 4, e.Buf.Cursor()-before)
}

func TestLoadImmediateDoubleEmitsTwoIntsAndOneMove(t *testing.T) {
	e, _ := newTestFPEmitter()
	before := e.Buf.Cursor()
	e.LoadImmediate(armasm.D0, 2.5)
	// 2.5 fits a trivial MOV for the low word (exponent-heavy pattern
	// makes the high word require MOVW+MOVT), plus the VMOV relay.
	got := e.Buf.Cursor() - before
	assert.GreaterOrEqual(t, got, 12, "expected at least 3 words emitted")
}

func TestSetRoundingModeRoundTrip(t *testing.T) {
	e, _ := newTestFPEmitter()
	e.SetRoundingMode(armasm.Work1, RoundTowardZero)
	words := (e.Buf.Cursor()) / 4
	assert.Equal(t, 4, words, "VMRS, BIC, ORR, VMSR")
}

func TestSetRoundingModeNearestSkipsORR(t *testing.T) {
	e, _ := newTestFPEmitter()
	e.SetRoundingMode(armasm.Work1, RoundNearest)
	words := (e.Buf.Cursor()) / 4
	assert.Equal(t, 3, words, "VMRS, BIC, VMSR (no ORR needed for mode 0)")
}

func TestCompareClobbersFlags(t *testing.T) {
	e, hooks := newTestFPEmitter()
	e.Compare(armasm.D0, armasm.D1)
	assert.Equal(t, 1, hooks.ClobberCalls)
}

func TestFsccSetsLowByteToZeroOrAllOnes(t *testing.T) {
	e, _ := newTestFPEmitter()
	e.Fscc(armasm.R0, armasm.CondEQ)
	assert.Equal(t, 8, e.Buf.Cursor(), "BIC + ORRcond")

	bic := e.Buf.WordAt(0)
	orr := e.Buf.WordAt(4)
	// BIC opcode field is 0xE at bits[24:21], ORR is 0xC; both are AL
	// and EQ conditioned respectively, and both carry immediate #0xFF.
	assert.Equal(t, uint32(0xE), (bic>>21)&0xF, "expected BIC")
	assert.Equal(t, uint32(armasm.CondAL), bic>>28, "BIC must be unconditional")
	assert.Equal(t, uint32(0xC), (orr>>21)&0xF, "expected ORR")
	assert.Equal(t, uint32(armasm.CondEQ), orr>>28, "ORR must carry the caller's condition")
	assert.Equal(t, uint32(0xFF), orr&0xFF, "expected an immediate 0xFF operand")
}

type fpRecordingSink struct {
	ops []string
}

func (r *fpRecordingSink) EmitEvent(addr int, word uint32, op string) {
	r.ops = append(r.ops, op)
}

func TestSinkReceivesScalarOps(t *testing.T) {
	e, _ := newTestFPEmitter()
	sink := &fpRecordingSink{}
	e.Sink = sink

	e.Add(armasm.D0, armasm.D1, armasm.D2)
	e.Move(armasm.D0, armasm.D0) // no-op, must not notify

	assert.Equal(t, []string{"vfp.Add"}, sink.ops)
}

func TestLoadGuestDoubleUsesR11WhenInRegsAndAligned(t *testing.T) {
	e, _ := newTestFPEmitter()
	base := regs.Base(0x40000000)
	addr := uint32(base) + uint32(regs.OffFPD[2])

	before := e.Buf.Cursor()
	e.LoadGuestDouble(armasm.D0, base, addr)
	assert.Equal(t, 4, e.Buf.Cursor()-before, "expected a single VLDR word")
}

func TestLoadGuestDoubleMaterializesWhenOutOfRange(t *testing.T) {
	e, _ := newTestFPEmitter()
	base := regs.Base(0x40000000)
	addr := uint32(0xDEADBEEF)

	before := e.Buf.Cursor()
	e.LoadGuestDouble(armasm.D0, base, addr)
	assert.Greater(t, e.Buf.Cursor()-before, 4, "expected an immediate materialization plus VLDR")
}
