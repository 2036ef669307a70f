// Package fake provides a test double for frontend.Hooks, standing in
// for the register allocator and translation-cache manager that spec.md
// §1 places out of scope. Tests across armasm, emit, and vfp construct
// one of these to drive the emitter without a real front-end.
package fake

import (
	"fmt"

	"github.com/armjit/m68k-arm-emitter/codebuf"
)

// Hooks is a minimal, order-recording frontend.Hooks implementation.
type Hooks struct {
	Buf *codebuf.Codebuf
	// ClobberCalls counts how many times ClobberFlags was invoked.
	ClobberCalls int
	// Evictions records every MirrorFlagEviction call, for asserting
	// the "exactly one eviction per flag-clobbering op" property
	// (spec.md §8 property 6).
	Evictions []int
	// FlagHolder simulates live.nat[r].nholds: the host register
	// currently believed to hold the flag mirror, or -1 if none.
	FlagHolder int
	Pool       *codebuf.Pool
}

// New creates a fake hooks implementation bound to buf.
func New(buf *codebuf.Codebuf) *Hooks {
	return &Hooks{Buf: buf, Pool: codebuf.NewPool(buf), FlagHolder: -1}
}

func (h *Hooks) ClobberFlags() { h.ClobberCalls++ }

func (h *Hooks) MirrorFlagEviction(realReg int) {
	if h.FlagHolder != realReg {
		panic(fmt.Sprintf("fake: flag eviction from r%d but mirror says r%d holds it", realReg, h.FlagHolder))
	}
	h.Evictions = append(h.Evictions, realReg)
	h.FlagHolder = -1
}

func (h *Hooks) GetTarget() int { return h.Buf.Target() }

func (h *Hooks) EmitLong(v uint32) { h.Buf.EmitLong(v) }

func (h *Hooks) SkipLong() int { return h.Buf.SkipLong() }

func (h *Hooks) WriteJmpTarget(site int, target uint32) { h.Buf.PatchWord(site, target) }

func (h *Hooks) DataLongOffs(v uint32) int32 { return h.Pool.DataLongOffs(v) }

func (h *Hooks) DataWordOffs(v uint16) int32 { return h.Pool.DataWordOffs(v) }

func (h *Hooks) DataCheckEnd(codeBytes, poolBytes int) { h.Pool.DataCheckEnd(codeBytes, poolBytes) }
