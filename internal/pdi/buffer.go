package pdi

import (
	"fmt"
	"strings"
)

// Buffer is a fixed-length sequence of 4-bit nibbles, most significant first,
// as delivered by the IO-Link master in a pdin/getdata response.
type Buffer struct {
	nibbles []byte
}

// ParseBuffer parses a hex string. Case is ignored, as is surrounding whitespace.
// An odd number of digits is allowed since the wire format is nibble based.
func ParseBuffer(data string) (Buffer, error) {
	data = strings.TrimSpace(data)
	nibbles := make([]byte, len(data))
	for i := 0; i < len(data); i++ {
		n, ok := hexNibble(data[i])
		if !ok {
			return Buffer{}, fmt.Errorf("%w: invalid hex digit %q at position %d", ErrInvalidBuffer, data[i], i)
		}
		nibbles[i] = n
	}
	return Buffer{nibbles: nibbles}, nil
}

// BufferFromBytes builds a buffer from raw bytes, high nibble first.
func BufferFromBytes(b []byte) Buffer {
	nibbles := make([]byte, 0, len(b)*2)
	for _, c := range b {
		nibbles = append(nibbles, c>>4, c&0x0F)
	}
	return Buffer{nibbles: nibbles}
}

// BitLen returns the buffer length in bits.
func (b Buffer) BitLen() uint {
	return uint(len(b.nibbles)) * 4
}

func (b Buffer) String() string {
	const digits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(b.nibbles))
	for _, n := range b.nibbles {
		sb.WriteByte(digits[n])
	}
	return sb.String()
}

// bit returns the bit at position i counted from the most significant bit.
func (b Buffer) bit(i uint) uint64 {
	return uint64(b.nibbles[i/4]>>(3-i%4)) & 1
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
