// Package runeidx translates between byte offsets and rune (character)
// indices over a fixed source buffer. The external parsing engine speaks
// byte offsets; all public contracts of this module speak character
// indices, and the translation happens exactly once at the boundary.
package runeidx

import "unicode/utf8"

// Converter maps byte offsets to rune indices and back for one source
// buffer. The buffer must not be mutated after construction.
type Converter struct {
	source     []byte
	lineStarts []int  // byte offset of each line start
	runesAt    []uint // rune index at each line start
}

// New builds a Converter over the given source. Line starts and their rune
// indices are precomputed so per-offset translation only scans within one
// line.
func New(source []byte) *Converter {
	conv := &Converter{source: source}

	conv.lineStarts = append(conv.lineStarts, 0)
	conv.runesAt = append(conv.runesAt, 0)

	runes := uint(0)

	for off := 0; off < len(source); {
		r, size := utf8.DecodeRune(source[off:])
		off += size
		runes++

		if r == '\n' && off < len(source) {
			conv.lineStarts = append(conv.lineStarts, off)
			conv.runesAt = append(conv.runesAt, runes)
		}
	}

	return conv
}

// Len returns the source length in bytes.
func (c *Converter) Len() int {
	return len(c.source)
}

// RuneIndex converts a byte offset into a rune index. The offset must lie
// on a rune boundary within [0, len(source)].
func (c *Converter) RuneIndex(byteOffset uint) uint {
	off := int(byteOffset)
	if off > len(c.source) {
		panic("runeidx: byte offset out of range")
	}

	line := c.lineFor(off)
	start := c.lineStarts[line]

	return c.runesAt[line] + uint(utf8.RuneCount(c.source[start:off]))
}

// ByteOffset converts a rune index back into a byte offset. The index must
// be within [0, rune count of source].
func (c *Converter) ByteOffset(runeIndex uint) uint {
	line := c.lineForRune(runeIndex)
	off := c.lineStarts[line]
	remaining := runeIndex - c.runesAt[line]

	for remaining > 0 {
		if off >= len(c.source) {
			panic("runeidx: rune index out of range")
		}

		_, size := utf8.DecodeRune(c.source[off:])
		off += size
		remaining--
	}

	return uint(off)
}

// Column returns the rune column of a byte offset within its line,
// zero-based. Rows are unaffected by the byte/rune distinction and are
// taken from the engine as-is.
func (c *Converter) Column(byteOffset uint) uint {
	off := int(byteOffset)
	if off > len(c.source) {
		panic("runeidx: byte offset out of range")
	}

	start := c.lineStarts[c.lineFor(off)]

	return uint(utf8.RuneCount(c.source[start:off]))
}

// ByteColumn converts a rune column on the given row back into a byte
// column. The row must exist and the column must not pass the end of its
// line.
func (c *Converter) ByteColumn(row, runeColumn uint) uint {
	if int(row) >= len(c.lineStarts) {
		panic("runeidx: row out of range")
	}

	start := c.lineStarts[row]
	off := start

	for remaining := runeColumn; remaining > 0; remaining-- {
		if off >= len(c.source) || c.source[off] == '\n' {
			panic("runeidx: rune column out of range")
		}

		_, size := utf8.DecodeRune(c.source[off:])
		off += size
	}

	return uint(off - start)
}

// lineFor returns the index of the line containing the byte offset.
func (c *Converter) lineFor(off int) int {
	lo, hi := 0, len(c.lineStarts)-1

	for lo < hi {
		mid := (lo + hi + 1) / 2

		if c.lineStarts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}

// lineForRune returns the index of the line containing the rune index.
func (c *Converter) lineForRune(idx uint) int {
	lo, hi := 0, len(c.runesAt)-1

	for lo < hi {
		mid := (lo + hi + 1) / 2

		if c.runesAt[mid] <= idx {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}
