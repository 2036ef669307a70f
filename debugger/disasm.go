package debugger

import "fmt"

var condNames = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "",
}

var dpOpNames = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

// Disassemble renders a best-effort mnemonic for one ARM word, enough
// for the inspector view to be readable; it is not a full disassembler
// (no VFP, no bitfield/extend forms) since the debugger only needs to
// help a human sanity-check what the emitter produced, not replace an
// ISA reference.
func Disassemble(word uint32) string {
	cond := condNames[word>>28]

	switch {
	case word&0x0E000000 == 0x0A000000:
		link := ""
		if word&(1<<24) != 0 {
			link = "L"
		}
		offset := int32(word&0xFFFFFF) << 8 >> 8 // sign-extend 24 bits
		return fmt.Sprintf("B%s%s #%d", link, cond, offset*4)

	case word&0x0FFFFFF0 == 0x012FFF10:
		return fmt.Sprintf("BX%s r%d", cond, word&0xF)

	case word&0x0C000000 == 0x00000000 && word&0x90 != 0x90:
		op := (word >> 21) & 0xF
		s := ""
		if word&(1<<20) != 0 {
			s = "S"
		}
		rd := (word >> 12) & 0xF
		rn := (word >> 16) & 0xF
		return fmt.Sprintf("%s%s%s r%d, r%d, ...", dpOpNames[op], s, cond, rd, rn)

	case word&0x0C000000 == 0x04000000:
		l := "STR"
		if word&(1<<20) != 0 {
			l = "LDR"
		}
		rd := (word >> 12) & 0xF
		rn := (word >> 16) & 0xF
		return fmt.Sprintf("%s%s r%d, [r%d, #...]", l, cond, rd, rn)

	default:
		return fmt.Sprintf(".word %#08x", word)
	}
}
