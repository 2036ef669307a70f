package vfp

import (
	"math"

	"github.com/armjit/m68k-arm-emitter/armasm"
)

// Extended80 is the 68881/68882's 96-bit-padded 80-bit extended-precision
// format: a sign bit, a 15-bit biased exponent, and an explicit 64-bit
// mantissa (no implicit leading 1, unlike IEEE double). Conversions to
// and from float64 must rebias the exponent by 15360 (the difference
// between the extended format's 16383 bias and the double's 1023 bias) per
// raw_fp_from_exten_mr / raw_fp_to_exten_mr.
type Extended80 struct {
	Sign     bool
	Exponent uint16 // biased, 15 bits
	Mantissa uint64 // explicit integer bit in position 63
}

const extendedBiasShift = 15360

// FromFloat64 converts an IEEE double into its 80-bit extended
// representation.
func FromFloat64(v float64) Extended80 {
	bits := math.Float64bits(v)
	sign := bits>>63 != 0
	exp := uint16(bits>>52) & 0x7FF
	frac := bits & ((1 << 52) - 1)

	switch {
	case exp == 0 && frac == 0:
		return Extended80{Sign: sign}
	case exp == 0x7FF:
		// Infinity or NaN: saturate the extended exponent field and
		// preserve the top mantissa bits (plus the explicit integer bit).
		mant := (uint64(1) << 63) | (frac << 11)
		return Extended80{Sign: sign, Exponent: 0x7FFF, Mantissa: mant}
	}

	extExp := uint32(exp) + extendedBiasShift
	mant := (uint64(1) << 63) | (frac << 11)
	return Extended80{Sign: sign, Exponent: uint16(extExp), Mantissa: mant}
}

// ToFloat64 converts an 80-bit extended value back to a double,
// truncating mantissa precision beyond 52 bits.
func (x Extended80) ToFloat64() float64 {
	if x.Exponent == 0 && x.Mantissa == 0 {
		return signedZero(x.Sign)
	}
	if x.Exponent == 0x7FFF {
		frac := (x.Mantissa &^ (1 << 63)) >> 11
		return math.Float64frombits(packDouble(x.Sign, 0x7FF, frac))
	}
	exp := int32(x.Exponent) - extendedBiasShift
	if exp <= 0 || exp >= 0x7FF {
		// Out of double range: flush to signed zero or infinity rather
		// than fabricate a subnormal double (no raw_* caller needs
		// subnormal round-tripping).
		if exp <= 0 {
			return signedZero(x.Sign)
		}
		return signedInf(x.Sign)
	}
	frac := (x.Mantissa &^ (1 << 63)) >> 11
	return math.Float64frombits(packDouble(x.Sign, uint64(exp), frac))
}

func packDouble(sign bool, exp uint64, frac uint64) uint64 {
	var s uint64
	if sign {
		s = 1
	}
	return (s << 63) | ((exp & 0x7FF) << 52) | (frac & ((1 << 52) - 1))
}

func signedZero(sign bool) float64 {
	if sign {
		return math.Float64frombits(1 << 63)
	}
	return 0
}

func signedInf(sign bool) float64 {
	return math.Float64frombits(packDouble(sign, 0x7FF, 0))
}

// --- emitted load/store sequences ---

// LoadExtendedFromMemory reads a 10-byte 80-bit extended value out of
// guest memory (big-endian, per 68k byte order) at [addrReg] and leaves
// the converted double in dst, relaying through a host conversion
// routine the way raw_fp_from_exten_mr ultimately does for the
// bit-exact rounding behaviour a handful of inline ARM instructions
// can't cheaply reproduce: the address goes into R0 by the host
// trampoline's calling convention, and the result comes back in D0.
func (e *Emitter) LoadExtendedFromMemory(dst armasm.DReg, addrReg armasm.Reg, hostConvertFn uint32) {
	e.MovL(armasm.R0, addrReg)
	e.CallAbsolute(hostConvertFn)
	e.Move(dst, armasm.D0)
}

// StoreExtendedToMemory is LoadExtendedFromMemory's inverse: the double
// to convert goes into D0, the destination address into R0.
func (e *Emitter) StoreExtendedToMemory(addrReg armasm.Reg, src armasm.DReg, hostConvertFn uint32) {
	e.Move(armasm.D0, src)
	e.MovL(armasm.R0, addrReg)
	e.CallAbsolute(hostConvertFn)
}
