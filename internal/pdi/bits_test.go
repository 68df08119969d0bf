package pdi

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuffer(t *testing.T) {
	buf, err := ParseBuffer("  01a1FF0 \n")
	require.NoError(t, err)
	assert.Equal(t, uint(28), buf.BitLen())
	assert.Equal(t, "01A1FF0", buf.String())

	_, err = ParseBuffer("01G1")
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	empty, err := ParseBuffer("")
	require.NoError(t, err)
	assert.Equal(t, uint(0), empty.BitLen())
}

func TestBufferFromBytes(t *testing.T) {
	buf := BufferFromBytes([]byte{0x01, 0xA1, 0xFF})
	assert.Equal(t, "01A1FF", buf.String())
	assert.Equal(t, uint(24), buf.BitLen())
}

func TestExtractBitsMatchesHexSubstrings(t *testing.T) {
	const data = "01A1FF00000CFFFF0000"
	buf, err := ParseBuffer(data)
	require.NoError(t, err)

	for start := 0; start < len(data); start++ {
		for n := 1; n <= 16 && start+n <= len(data); n++ {
			want, err := strconv.ParseUint(data[start:start+n], 16, 64)
			require.NoError(t, err)

			got, err := ExtractBits(buf, uint(start*4), uint(n*4))
			require.NoError(t, err)
			assert.Equal(t, want, got, "nibbles %d..%d", start, start+n)
		}
	}
}

func TestExtractBitsUnaligned(t *testing.T) {
	// 0xB5 = 1011 0101
	buf, err := ParseBuffer("B5")
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset uint
		width  uint
		want   uint64
	}{
		{"first bit", 0, 1, 1},
		{"second bit", 1, 1, 0},
		{"across nibble boundary", 2, 4, 0b1101},
		{"last three bits", 5, 3, 0b101},
		{"whole byte", 0, 8, 0xB5},
		{"top six bits", 0, 6, 0b101101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBits(buf, tt.offset, tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBitsLegacyShift(t *testing.T) {
	// The old pressure decoding took the first word and shifted it right by two.
	// Reading the top 14 bits of that word is the same thing.
	buf, err := ParseBuffer("1F4B0000")
	require.NoError(t, err)

	got, err := ExtractBits(buf, 0, 14)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1F4B>>2), got)
}

func TestExtractBitsFullWidth(t *testing.T) {
	buf, err := ParseBuffer("FFFFFFFFFFFFFFFF")
	require.NoError(t, err)

	got, err := ExtractBits(buf, 0, 64)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), got)
}

func TestExtractBitsRange(t *testing.T) {
	buf, err := ParseBuffer("DEADBEEFCAFEF00D")
	require.NoError(t, err)

	for width := uint(1); width <= 64; width++ {
		for offset := uint(0); offset+width <= buf.BitLen(); offset += 3 {
			got, err := ExtractBits(buf, offset, width)
			require.NoError(t, err)
			if width < 64 {
				assert.Less(t, got, uint64(1)<<width, "offset %d width %d", offset, width)
			}
		}
	}
}

func TestExtractBitsErrors(t *testing.T) {
	buf, err := ParseBuffer("0011223344556677")
	require.NoError(t, err)

	_, err = ExtractBits(buf, 60, 8)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = ExtractBits(buf, 64, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = ExtractBits(buf, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = ExtractBits(buf, 0, 65)
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-1), signExtend(0xFFFF, 16))
	assert.Equal(t, int64(-32768), signExtend(0x8000, 16))
	assert.Equal(t, int64(32767), signExtend(0x7FFF, 16))
	assert.Equal(t, int64(-2), signExtend(0b110, 3))
	assert.Equal(t, int64(-1), signExtend(^uint64(0), 64))

	for width := uint(2); width < 64; width += 7 {
		raw := uint64(1)<<(width-1) | 1
		assert.Equal(t, int64(raw)-int64(1)<<width, signExtend(raw, width), "width %d", width)
	}
}
