package armasm

// EncodeRotatedImm8 attempts to express v as an 8-bit immediate rotated
// right by an even amount, the classic ARM data-processing immediate
// form. It reports ok=false when v has no such encoding, matching
// codegen_arm.cpp's CHECK32/rotate-search used before falling back to
// MOVW/MOVT or a literal-pool load.
func EncodeRotatedImm8(v uint32) (encoded uint32, ok bool) {
	for rot := uint32(0); rot < 32; rot += 2 {
		rotated := (v << rot) | (v >> (32 - rot))
		if rotated&^0xFF == 0 {
			shiftField := (rot / 2) % 16
			return (shiftField << 8) | (rotated & 0xFF), true
		}
	}
	return 0, false
}

// FitsRotatedImm8 reports whether v can be expressed as an immediate
// data-processing operand2 without a literal load.
func FitsRotatedImm8(v uint32) bool {
	_, ok := EncodeRotatedImm8(v)
	return ok
}
