// Package debugger is a terminal inspector over a finished (or
// in-progress) code buffer: a hex/mnemonic dump, a literal-pool view,
// and a register-mirror view, adapted from the teacher's debugger
// package (which drove a running 68k/ARM2 emulation instead of a
// static translation block).
package debugger

import (
	"github.com/armjit/m68k-arm-emitter/codebuf"
)

// Debugger holds the state the TUI renders: a finished code buffer plus
// whatever the caller wants shown alongside it.
type Debugger struct {
	Buf *codebuf.Codebuf
	// Pool is optional; when set, the literal-pool view lists its
	// still-pending entries.
	Pool *codebuf.Pool
	// RegMirror is a caller-supplied snapshot of the guest register
	// block, rendered read-only (this tool never executes code).
	RegMirror map[string]uint32
	// Cursor is the currently selected word index, used by both the
	// disassembly view (to highlight a row) and the goto/search
	// commands.
	Cursor int
}

// New creates a debugger bound to a code buffer.
func New(buf *codebuf.Codebuf) *Debugger {
	return &Debugger{Buf: buf, RegMirror: make(map[string]uint32)}
}

// WordCount reports how many whole instruction words the buffer holds.
func (d *Debugger) WordCount() int {
	return len(d.Buf.Bytes()) / 4
}

// WordAt returns the word at the given word index (not byte address).
func (d *Debugger) WordAt(index int) uint32 {
	return d.Buf.WordAt(index * 4)
}
