package armasm

// B and BL displacements are measured in words from the branch's own
// address plus 8 (the ARM PC+8 pipeline convention): the target is
// site + 8 + 4*wordOffset. codebuf.Label.OffsetFrom has no +8 in it;
// emit.branchWordOffset does the conversion.

func branch(w Writer, cond Cond, link bool, wordOffset int32) {
	const fixedBits = 0x5 << 25
	var lBit uint32
	if link {
		lBit = 1 << 24
	}
	word := (uint32(cond) << 28) | fixedBits | lBit | (uint32(wordOffset) & 0xFFFFFF)
	w.EmitWord(word)
}

// B emits a branch to a PC-relative word offset.
func B(w Writer, cond Cond, wordOffset int32) { branch(w, cond, false, wordOffset) }

// BL emits a branch-with-link to a PC-relative word offset.
func BL(w Writer, cond Cond, wordOffset int32) { branch(w, cond, true, wordOffset) }

// BX emits a branch-and-exchange to the address in Rm.
func BX(w Writer, cond Cond, rm Reg) {
	checkReg("BX", rm)
	word := (uint32(cond) << 28) | 0x012FFF10 | uint32(rm)
	w.EmitWord(word)
}

// BLX emits a branch-with-link-and-exchange to Rm.
func BLX(w Writer, cond Cond, rm Reg) {
	checkReg("BLX", rm)
	word := (uint32(cond) << 28) | 0x012FFF30 | uint32(rm)
	w.EmitWord(word)
}
