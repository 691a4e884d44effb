// Package fingerprint decodes precomputed image hashes and measures the distance between them.
package fingerprint

import (
	"fmt"
	"math/bits"
	"strings"
)

// Fingerprint is a decoded hash bit vector. Bit 0 is the most significant bit
// of the first hex digit, matching the row-major order the hashers emit.
type Fingerprint struct {
	words []uint64
	n     int
}

// Decode parses a hexadecimal fingerprint (optionally prefixed with 0x)
func Decode(s string) (Fingerprint, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return Fingerprint{}, fmt.Errorf("empty fingerprint")
	}

	f := newFingerprint(len(s) * 4)
	for i := 0; i < len(s); i++ {
		nibble, ok := hexValue(s[i])
		if !ok {
			return Fingerprint{}, fmt.Errorf("invalid hex digit %q at offset %d", s[i], i)
		}
		for b := 0; b < 4; b++ {
			if nibble&(8>>b) != 0 {
				f.set(i*4 + b)
			}
		}
	}
	return f, nil
}

// FromBits builds a fingerprint from bits in row-major order
func FromBits(bits []bool) Fingerprint {
	f := newFingerprint(len(bits))
	for i, on := range bits {
		if on {
			f.set(i)
		}
	}
	return f
}

// Len returns the number of bits
func (f Fingerprint) Len() int {
	return f.n
}

// IsZero reports whether the fingerprint was never decoded
func (f Fingerprint) IsZero() bool {
	return f.n == 0
}

// Bit returns bit i
func (f Fingerprint) Bit(i int) bool {
	return f.words[i/64]&(1<<(63-uint(i%64))) != 0
}

// String converts the bits back to lowercase hex
func (f Fingerprint) String() string {
	var hex strings.Builder
	for i := 0; i < f.n; i += 4 {
		var nibble byte
		for b := 0; b < 4 && i+b < f.n; b++ {
			if f.Bit(i + b) {
				nibble |= 8 >> b
			}
		}
		hex.WriteByte("0123456789abcdef"[nibble])
	}
	return hex.String()
}

// HammingDistance counts the differing bits. Fingerprints of different lengths
// were produced by different hashers and cannot be compared.
func HammingDistance(a, b Fingerprint) (int, error) {
	if a.n != b.n {
		return 0, fmt.Errorf("fingerprint length mismatch: %d vs %d bits", a.n, b.n)
	}

	var distance int
	for i := range a.words {
		distance += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return distance, nil
}

// GridSide returns the side of the square bit grid holding n bits, if n is a perfect square
func GridSide(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	side := 1
	for side*side < n {
		side++
	}
	return side, side*side == n
}

// Rotate turns the bit grid clockwise by the given number of quarter turns.
// Fingerprints that are not square grids are returned unchanged.
func (f Fingerprint) Rotate(quarterTurns int) Fingerprint {
	side, square := GridSide(f.n)
	quarterTurns = ((quarterTurns % 4) + 4) % 4
	if !square || quarterTurns == 0 {
		return f
	}

	out := f
	for t := 0; t < quarterTurns; t++ {
		next := newFingerprint(f.n)
		for r := 0; r < side; r++ {
			for c := 0; c < side; c++ {
				// clockwise: new[r][c] = old[side-1-c][r]
				if out.Bit((side-1-c)*side + r) {
					next.set(r*side + c)
				}
			}
		}
		out = next
	}
	return out
}

// Rotations returns the fingerprint under each quarter turn (0, 90, 180, 270 degrees).
// Non-square fingerprints only have the identity rotation.
func (f Fingerprint) Rotations() []Fingerprint {
	if _, square := GridSide(f.n); !square {
		return []Fingerprint{f}
	}
	return []Fingerprint{f, f.Rotate(1), f.Rotate(2), f.Rotate(3)}
}

// RotationalDistance returns the smallest Hamming distance between a and any
// quarter turn of b, so a picture re-saved with a different orientation still matches.
func RotationalDistance(a Fingerprint, bRotations []Fingerprint) (int, error) {
	best := -1
	for _, rotated := range bRotations {
		d, err := HammingDistance(a, rotated)
		if err != nil {
			return 0, err
		}
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no rotations to compare")
	}
	return best, nil
}

func newFingerprint(n int) Fingerprint {
	return Fingerprint{words: make([]uint64, (n+63)/64), n: n}
}

func (f Fingerprint) set(i int) {
	f.words[i/64] |= 1 << (63 - uint(i%64))
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
