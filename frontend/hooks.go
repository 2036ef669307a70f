// Package frontend describes the contract between the emitter and the
// (out-of-scope, per spec.md §1) front-end register allocator and
// translation-cache manager. The emitter only ever reaches the front-end
// through this interface, avoiding the cyclic dependency spec.md §9 flags:
// "abstract the front-end behind a small callback interface".
package frontend

// Hooks is everything the emitter calls back into the front-end for.
// A concrete front-end implements this once; tests use the fake in
// frontend/fake.
type Hooks interface {
	// ClobberFlags evicts any live flag mirror before a flag-clobbering
	// op is emitted (spec.md §4.4, §4.7).
	ClobberFlags()

	// MirrorFlagEviction is called once host flags have actually been
	// spilled to memory (raw_flags_to_reg), so the front-end's
	// register-state mirror can be updated: live.state[FLAGTMP].status
	// moves to INMEM and the host register that held the flags is
	// cleared. realReg is the host register that held the flags.
	// A mismatch (the register didn't actually hold exactly one flag
	// value) is a programmer error and must panic, per spec.md §4.7.
	MirrorFlagEviction(realReg int)

	// GetTarget reads the current code-buffer cursor.
	GetTarget() int

	// EmitLong appends a raw literal long to the code stream (used by
	// absolute-jump sequences that embed their own target).
	EmitLong(v uint32)

	// SkipLong reserves a word for a later patch and returns its
	// address.
	SkipLong() int

	// WriteJmpTarget patches a previously emitted LDR-PC literal at
	// site with a resolved target address.
	WriteJmpTarget(site int, target uint32)

	// DataLongOffs / DataWordOffs allocate a literal-pool entry and
	// return the PC-relative offset the next LDR must use.
	DataLongOffs(v uint32) int32
	DataWordOffs(v uint16) int32

	// DataCheckEnd is the pool-flush hint of spec.md §4.2.
	DataCheckEnd(codeBytes, poolBytes int)
}
