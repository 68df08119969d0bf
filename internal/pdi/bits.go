package pdi

import "fmt"

const maxBitWidth = 64

// ExtractBits reads bitWidth bits starting at bitOffset, treating the buffer as one
// big-endian integer with offset 0 at its most significant bit.
//
// Whole-nibble ranges give the same result as parsing the matching hex substring,
// e.g. offset 32 width 16 on "01A1FF00000CFFFF" reads "000C".
func ExtractBits(buf Buffer, bitOffset, bitWidth uint) (uint64, error) {
	if bitWidth == 0 || bitWidth > maxBitWidth {
		return 0, fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidWidth, bitWidth, maxBitWidth)
	}
	end := bitOffset + bitWidth
	if end < bitOffset || end > buf.BitLen() {
		return 0, fmt.Errorf("%w: bits %d..%d of %d", ErrOutOfBounds, bitOffset, end, buf.BitLen())
	}

	var v uint64
	i := bitOffset
	// leading bits up to the next nibble boundary
	for ; i < end && i%4 != 0; i++ {
		v = v<<1 | buf.bit(i)
	}
	for ; i+4 <= end; i += 4 {
		v = v<<4 | uint64(buf.nibbles[i/4])
	}
	for ; i < end; i++ {
		v = v<<1 | buf.bit(i)
	}
	return v, nil
}

// signExtend reinterprets the low width bits of raw as a two's-complement integer.
func signExtend(raw uint64, width uint) int64 {
	if width >= 64 {
		return int64(raw)
	}
	shift := 64 - width
	return int64(raw<<shift) >> shift
}
