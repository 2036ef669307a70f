package codebuf

import "fmt"

// maxPCRelativeReach is the ARM LDR PC-relative range: a 12-bit unsigned
// byte offset, so literals must live within ±4095 bytes of the LDR that
// reads them (spec.md §3 "Literal pool entry").
const maxPCRelativeReach = 4095

// poolEntry is one constant awaiting emission into the code stream.
type poolEntry struct {
	addr     int // placeholder address, assigned once flushed
	value32  uint32
	wide     bool // true for a 32-bit long, false for a 16-bit word
	patchLDR []int
}

// Pool is the per-block literal-pool manager described in spec.md §4.2:
// it accumulates 32-bit and 16-bit constants between code spans, emits a
// forward branch over them when flushed, and patches the PC-relative
// offset of every LDR registered against them through RegisterConsumer.
//
// Invariant I5: any LDR with a PC-relative offset to an embedded literal
// must have been preceded (in execution order) by a forward branch over
// the literal, or must follow an already-terminating branch. Pool always
// emits its own skip-branch on Flush, so callers never need to do this
// themselves.
type Pool struct {
	buf       *Codebuf
	pending   []*poolEntry
	dedup     map[uint32]*poolEntry
	pendingSz int // bytes the pending literals will occupy once flushed
}

// NewPool creates a literal pool bound to a code buffer.
func NewPool(buf *Codebuf) *Pool {
	return &Pool{buf: buf, dedup: make(map[uint32]*poolEntry)}
}

// DataLongOffs allocates (or reuses) a 32-bit literal for the LDR the
// caller emits next (codegen_arm.cpp's data_long_offs(v)). It returns 0,
// not a usable offset: a literal's address is fixed only when Flush
// places it, so the consuming LDR is registered with RegisterConsumer
// and Flush patches its offset field.
func (p *Pool) DataLongOffs(v uint32) int32 {
	if e, ok := p.dedup[v]; ok {
		return p.reserveOffset(e)
	}
	e := &poolEntry{value32: v, wide: true}
	p.dedup[v] = e
	p.pending = append(p.pending, e)
	p.pendingSz += 4
	return p.reserveOffset(e)
}

// DataWordOffs is the 16-bit sibling of DataLongOffs, used for the
// classic-ARM mov_w_ri path where only a halfword needs to round-trip
// through the pool.
func (p *Pool) DataWordOffs(v uint16) int32 {
	return p.DataLongOffs(uint32(v))
}

// reserveOffset returns a placeholder: the real PC-relative offset can
// only be computed once the pool is flushed and entries are assigned
// final addresses. We return 0 here; Flush patches every LDR
// registered against this entry through RegisterConsumer.
func (p *Pool) reserveOffset(e *poolEntry) int32 {
	return 0
}

// RegisterConsumer records that the instruction about to be emitted at
// the buffer's current cursor needs its low 12 bits patched once this
// entry's address is known. Callers use this in place of trusting the
// placeholder DataLongOffs return value when an immediate flush isn't
// forced between allocation and emission.
func (p *Pool) RegisterConsumer(v uint32) int {
	e, ok := p.dedup[v]
	if !ok {
		panic("codebuf: RegisterConsumer for value not in pool")
	}
	site := p.buf.Target()
	e.patchLDR = append(e.patchLDR, site)
	return site
}

// DataCheckEnd tells the pool manager that the next code region needs
// codeBytes of code followed by poolBytes of literals; it flushes the
// pool first if continuing would push any pending literal beyond the
// ARM PC-relative reach.
func (p *Pool) DataCheckEnd(codeBytes, poolBytes int) {
	if len(p.pending) == 0 {
		return
	}
	// Worst case, the farthest pending literal sits after everything
	// emitted since its earliest registered consumer, plus codeBytes,
	// the pool itself and poolBytes; checking against that end is
	// conservative, since the LDR's own PC (+8) is the base.
	earliest := p.buf.Target()
	for _, e := range p.pending {
		for _, site := range e.patchLDR {
			if site < earliest {
				earliest = site
			}
		}
	}
	worstOffset := (p.buf.Target() - earliest) + p.pendingSz + codeBytes + poolBytes
	if worstOffset > maxPCRelativeReach {
		p.Flush()
	}
}

// Flush emits a forward branch over the pending literals, writes them
// out, and patches every LDR that registered against them.
func (p *Pool) Flush() {
	if len(p.pending) == 0 {
		return
	}
	// Skip over the literals: one BAL over len(pending) words.
	p.emitSkipBranch(len(p.pending))

	for _, e := range p.pending {
		e.addr = p.buf.Target()
		p.buf.EmitLong(e.value32)
	}

	for _, e := range p.pending {
		for _, site := range e.patchLDR {
			p.patchLDRAt(site, e.addr)
		}
		delete(p.dedup, e.value32)
	}
	p.pending = nil
	p.pendingSz = 0
}

// emitSkipBranch emits an unconditional B over n words of literals.
func (p *Pool) emitSkipBranch(n int) {
	// B encoding is supplied by armasm; to avoid an import cycle codebuf
	// builds the word directly (AL branch, format cccc101Loooooooooooooooooooooooo).
	const condAL = 0xE
	// The target is the branch's own address + 8 + 4*offset, and the
	// first word after the literals sits at address + 4 + 4*n.
	wordOffset := uint32(n-1) & 0xFFFFFF
	instr := (uint32(condAL) << 28) | (0x5 << 25) | wordOffset
	p.buf.EmitWord(instr)
}

// patchLDRAt rewrites the 12-bit immediate offset field of a previously
// emitted LDR Rt,[PC,#off] instruction so that it reaches litAddr.
func (p *Pool) patchLDRAt(site, litAddr int) {
	instr := p.buf.WordAt(site)
	pc := site + 8 // ARM pipeline: PC reads as instruction address + 8
	offset := litAddr - pc
	u := uint32(1) << 23
	abs := offset
	if abs < 0 {
		abs = -abs
		u = 0
	}
	if abs > maxPCRelativeReach {
		panic(fmt.Sprintf("codebuf: literal unreachable: site=%#x lit=%#x offset=%d", site, litAddr, offset))
	}
	instr &^= uint32(1) << 23
	instr &^= 0xFFF
	instr |= u
	instr |= uint32(abs) & 0xFFF
	p.buf.PatchWord(site, instr)
}

// EmitNopFiller pads nbytes (rounded down to a whole word count) with
// NOP instructions — used when aligning spans ahead of a literal pool
// flush, mirroring codegen_arm.cpp's raw_emit_nop_filler.
func (p *Pool) EmitNopFiller(nbytes int) {
	const nop = 0xE1A00000 // MOV r0, r0 (AL), the canonical ARM NOP encoding pre-ARMv6K
	for n := nbytes / 4; n > 0; n-- {
		p.buf.EmitWord(nop)
	}
}

// Pending reports how many literals are currently buffered, used by
// tests and by the debugger's pool inspector view.
func (p *Pool) Pending() int {
	return len(p.pending)
}

// PendingValues returns the still-unflushed literal values, in
// allocation order, for display in the debugger's pool view.
func (p *Pool) PendingValues() []uint32 {
	values := make([]uint32, len(p.pending))
	for i, e := range p.pending {
		values[i] = e.value32
	}
	return values
}
