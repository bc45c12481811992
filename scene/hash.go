package scene

import "math"

// FNV-1a parameters, 64-bit.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// Hasher accumulates a 64-bit FNV-1a hash over the fields that feed a
// node's geometry. The engine hashes each entity's layout inputs every
// frame; the cache compares hashes to decide which nodes to rebuild.
//
// The zero value is not ready; use NewHasher.
type Hasher struct {
	h uint64
}

// NewHasher returns a hasher seeded with the FNV-1a offset basis.
func NewHasher() Hasher {
	return Hasher{h: fnvOffset64}
}

// U8 mixes a single byte.
func (h *Hasher) U8(v uint8) {
	h.h = (h.h ^ uint64(v)) * fnvPrime64
}

// U64 mixes a 64-bit value byte by byte.
func (h *Hasher) U64(v uint64) {
	for i := 0; i < 8; i++ {
		h.h = (h.h ^ (v & 0xff)) * fnvPrime64
		v >>= 8
	}
}

// I64 mixes a signed 64-bit value.
func (h *Hasher) I64(v int64) {
	h.U64(uint64(v))
}

// F64 mixes a float by its bit pattern.
func (h *Hasher) F64(v float64) {
	h.U64(math.Float64bits(v))
}

// Str mixes a string.
func (h *Hasher) Str(s string) {
	for i := 0; i < len(s); i++ {
		h.h = (h.h ^ uint64(s[i])) * fnvPrime64
	}
	// Length terminates the run so "ab"+"c" and "a"+"bc" differ.
	h.U64(uint64(len(s)))
}

// Color mixes a packed color.
func (h *Hasher) Color(c Color) {
	h.U64(uint64(c.Packed()))
}

// Bool mixes a boolean.
func (h *Hasher) Bool(v bool) {
	if v {
		h.U8(1)
	} else {
		h.U8(0)
	}
}

// Sum returns the accumulated hash.
func (h *Hasher) Sum() uint64 {
	return h.h
}
