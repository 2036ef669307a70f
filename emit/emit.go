// Package emit is the raw operation layer of spec.md §4.4/§4.5: the main
// public surface a front-end IR walker calls to turn one guest 68k
// micro-op into a sequence of host ARM words. Every exported method
// writes through the bound code buffer and, where an op clobbers the
// host condition flags, calls back into frontend.Hooks exactly as
// codegen_arm.cpp's raw_* functions call into the register allocator.
package emit

import (
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/flags"
	"github.com/armjit/m68k-arm-emitter/frontend"
)

// EventSink receives one notification per call of a reporting emit/vfp
// method, identified by the address of the last word it wrote; a
// reporting method that calls another one yields an event for each.
// Defined locally (rather than importing api.Sink
// directly) so the emit package never pulls in the telemetry server's
// HTTP/WebSocket dependencies; api.Broadcaster satisfies this
// structurally.
type EventSink interface {
	EmitEvent(addr int, word uint32, op string)
}

// Emitter binds a code buffer, its literal pool, and the front-end
// callback contract. One Emitter exists per in-flight translation
// block.
type Emitter struct {
	Buf     *codebuf.Codebuf
	Pool    *codebuf.Pool
	Hooks   frontend.Hooks
	RegBase armasm.Reg
	// ARMv6T2 selects MOVW/MOVT immediate synthesis over literal-pool
	// loads wherever both are viable (spec.md §4.2, §9 Open Question).
	ARMv6T2 bool
	// Sink is optional; when set, reporting methods call it after
	// writing. BranchPlaceholder and the jump helpers built on it,
	// BranchTo, SpillFlags and ReloadFlags do not report.
	Sink EventSink
}

// notify reports the last word this Emitter wrote, tagged with the
// calling method's name. A no-op when no Sink is attached.
func (e *Emitter) notify(op string) {
	if e.Sink == nil {
		return
	}
	addr := e.Buf.Target() - 4
	e.Sink.EmitEvent(addr, e.Buf.WordAt(addr), op)
}

// New constructs an Emitter. regBase is almost always armasm.RegStruct
// (R11), pinned once per block by Prologue.
func New(buf *codebuf.Codebuf, pool *codebuf.Pool, hooks frontend.Hooks, regBase armasm.Reg, armv6t2 bool) *Emitter {
	return &Emitter{Buf: buf, Pool: pool, Hooks: hooks, RegBase: regBase, ARMv6T2: armv6t2}
}

// InvariantError reports an emit-time programmer error; these are
// always fatal, matching the original's abort() on a malformed op.
type InvariantError struct {
	Op      string
	Message string
}

func (e *InvariantError) Error() string { return "emit: " + e.Op + ": " + e.Message }

func invariant(op, msg string) { panic(&InvariantError{Op: op, Message: msg}) }

// LoadImmediate materializes an arbitrary 32-bit constant into dst,
// picking the cheapest available encoding in the order spec.md §4.2
// prescribes: a single MOV/MVN with a rotated-8-bit immediate, then
// MOVW(+MOVT) on an ARMv6T2 target, and finally a literal-pool load as
// the universal fallback.
func (e *Emitter) LoadImmediate(dst armasm.Reg, v uint32) {
	defer e.notify("LoadImmediate")
	if armasm.FitsRotatedImm8(v) {
		armasm.MOV(e.Buf, armasm.CondAL, dst, armasm.Imm(v))
		return
	}
	if armasm.FitsRotatedImm8(^v) {
		armasm.MVN(e.Buf, armasm.CondAL, dst, armasm.Imm(^v))
		return
	}
	if e.ARMv6T2 {
		armasm.MOVImm32(e.Buf, armasm.CondAL, dst, v)
		return
	}
	e.Pool.DataLongOffs(v)
	e.Pool.RegisterConsumer(v)
	armasm.LDR(e.Buf, armasm.CondAL, dst, armasm.Offset(armasm.PC, 0))
}

// Test emits the guest-flags-setting compare-to-zero used by 68k TST:
// ORR reg with itself into r0 is wasteful, so this is simply a TST
// reg,reg against itself, updating N and Z (codegen_arm.cpp's
// raw_test_l_rr pattern restricted to the self-test case callers need).
func (e *Emitter) Test(reg armasm.Reg) {
	defer e.notify("Test")
	e.Hooks.ClobberFlags()
	armasm.TST(e.Buf, armasm.CondAL, reg, armasm.Rm(reg))
}

// Cmp emits a 32-bit compare, clobbering the host flags.
func (e *Emitter) Cmp(a, b armasm.Reg) {
	defer e.notify("Cmp")
	e.Hooks.ClobberFlags()
	armasm.CMP(e.Buf, armasm.CondAL, a, armasm.Rm(b))
}

// CmpImm compares a register against an immediate.
func (e *Emitter) CmpImm(a armasm.Reg, v uint32) {
	defer e.notify("CmpImm")
	e.Hooks.ClobberFlags()
	if armasm.FitsRotatedImm8(v) {
		armasm.CMP(e.Buf, armasm.CondAL, a, armasm.Imm(v))
		return
	}
	scratch := armasm.Work1
	if a == scratch {
		scratch = armasm.Work2
	}
	e.LoadImmediate(scratch, v)
	armasm.CMP(e.Buf, armasm.CondAL, a, armasm.Rm(scratch))
}

// SpillFlags pushes the host condition flags into the guest CCR slot,
// completing the flag-bridge half of an op that both computes a result
// and sets the guest flags from it (spec.md §4.6).
func (e *Emitter) SpillFlags(scratch armasm.Reg, hostHolder int) {
	flags.ToMemory(e.Buf, e.Hooks, e.RegBase, scratch, hostHolder)
}

// ReloadFlags installs the host condition flags from the guest CCR slot
// ahead of a conditional op that depends on guest-visible flag state.
func (e *Emitter) ReloadFlags(scratch armasm.Reg) {
	flags.FromMemory(e.Buf, e.RegBase, scratch)
}
