// Package codebuf implements the linear code buffer the emitter writes
// ARM instruction words into, plus the per-block literal pool manager
// described in spec.md §4.2/§4.3.
package codebuf

import (
	"encoding/binary"
	"fmt"
)

// Codebuf is a mutable contiguous byte region with a cursor. All emission
// advances the cursor by 4 (invariant I1: the cursor is always 4-byte
// aligned).
type Codebuf struct {
	buf    []byte
	cursor int
}

// New creates an empty code buffer. Capacity is a hint only; the buffer
// grows as needed.
func New(capacity int) *Codebuf {
	return &Codebuf{buf: make([]byte, 0, capacity)}
}

// Cursor returns the current write position (byte offset from the start
// of the buffer).
func (c *Codebuf) Cursor() int {
	return c.cursor
}

// Bytes returns the buffer contents written so far.
func (c *Codebuf) Bytes() []byte {
	return c.buf
}

// Target returns the address the next emitted word will occupy. Callers
// that need a stable handle to patch later should record this and use
// PatchWord.
func (c *Codebuf) Target() int {
	return c.cursor
}

// EmitWord writes one 32-bit little-endian instruction word at the
// cursor and advances it by 4. This is the single choke point every
// armasm encoding primitive and every emit op routes through.
func (c *Codebuf) EmitWord(word uint32) {
	if c.cursor%4 != 0 {
		panic(fmt.Sprintf("codebuf: cursor %d not 4-byte aligned", c.cursor))
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], word)
	if c.cursor == len(c.buf) {
		c.buf = append(c.buf, tmp[:]...)
	} else {
		copy(c.buf[c.cursor:c.cursor+4], tmp[:])
	}
	c.cursor += 4
}

// EmitLong appends a raw literal long to the code stream without going
// through any instruction encoding — used by the literal pool and by
// raw jump-to-absolute-target sequences that embed the target inline.
func (c *Codebuf) EmitLong(v uint32) {
	c.EmitWord(v)
}

// SkipLong reserves one word of space for a value that will be patched
// in later (the front-end's "next opcode" target in handle_except, for
// instance) and returns its address for later use with PatchWord.
func (c *Codebuf) SkipLong() int {
	addr := c.cursor
	c.EmitWord(0)
	return addr
}

// PatchWord overwrites the word at a previously recorded address. Used
// by WriteJmpTarget and branch-label patching.
func (c *Codebuf) PatchWord(addr int, word uint32) {
	if addr < 0 || addr+4 > len(c.buf) {
		panic(fmt.Sprintf("codebuf: patch address %d out of range", addr))
	}
	binary.LittleEndian.PutUint32(c.buf[addr:addr+4], word)
}

// WordAt reads back a previously emitted word, used by tests and by the
// debugger's disassembly view.
func (c *Codebuf) WordAt(addr int) uint32 {
	return binary.LittleEndian.Uint32(c.buf[addr : addr+4])
}

// Snapshot returns the current cursor so a caller can roll back a failed
// or abandoned emission (§5: "callers that wish to roll back must
// snapshot the cursor before emission and rewind").
func (c *Codebuf) Snapshot() int {
	return c.cursor
}

// Rewind truncates the buffer back to a previously taken snapshot.
func (c *Codebuf) Rewind(snapshot int) {
	if snapshot < 0 || snapshot > len(c.buf) {
		panic("codebuf: invalid rewind snapshot")
	}
	c.buf = c.buf[:snapshot]
	c.cursor = snapshot
}

// Label records the current cursor as a named branch-patch site. Per
// spec.md §9's Open Question, every branch offset in this implementation
// is computed from a recorded label rather than a hard-coded instruction
// count, so the ARMv6T2 vs. classic-ARM paths (which emit different
// instruction counts) never desynchronize a nearby branch.
type Label struct {
	addr int
}

// Here returns a Label for the current cursor.
func (c *Codebuf) Here() Label {
	return Label{addr: c.cursor}
}

// OffsetFrom computes the signed byte displacement from a site (the
// address the branch instruction itself occupies, per ARM's
// PC = instruction + 8 pipeline convention handled by the caller) to a
// target label.
func (l Label) OffsetFrom(siteAddr int) int32 {
	return int32(l.addr - siteAddr)
}

// Addr exposes the raw byte address, used when embedding the label's
// location into a literal (e.g. branchadd in handle_except).
func (l Label) Addr() int {
	return l.addr
}
