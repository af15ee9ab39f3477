// Package sketch provides the probabilistic distinct-count estimator that
// per-field cardinality tracking falls back to once exact tracking
// overflows. The implementation is a classic dense HyperLogLog over a
// 64-bit FNV-1a hash; the hash function is fixed so estimates are
// reproducible across runs and across merge orders.
package sketch

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/bits"
)

// DefaultPrecision gives 2^14 registers, a standard error near 0.8%.
const DefaultPrecision = 14

// HyperLogLog is a dense HLL sketch. The zero value is not usable; use New.
type HyperLogLog struct {
	precision uint8
	registers []uint8
}

// New returns an empty sketch with 2^precision registers. Precision must
// be between 4 and 18.
func New(precision uint8) (*HyperLogLog, error) {
	if precision < 4 || precision > 18 {
		return nil, fmt.Errorf("sketch: precision %d out of range [4,18]", precision)
	}
	return &HyperLogLog{
		precision: precision,
		registers: make([]uint8, 1<<precision),
	}, nil
}

// NewDefault returns an empty sketch at DefaultPrecision.
func NewDefault() *HyperLogLog {
	h, err := New(DefaultPrecision)
	if err != nil {
		panic(err)
	}
	return h
}

// AddString observes a string item.
func (h *HyperLogLog) AddString(s string) {
	f := fnv.New64a()
	f.Write([]byte(s))
	h.AddHash(f.Sum64())
}

// AddBytes observes a byte-slice item.
func (h *HyperLogLog) AddBytes(b []byte) {
	f := fnv.New64a()
	f.Write(b)
	h.AddHash(f.Sum64())
}

// AddHash observes a pre-hashed item. The hash is run through a 64-bit
// finalizer first; FNV alone leaves too little entropy in the high bits
// for short keys.
func (h *HyperLogLog) AddHash(x uint64) {
	x = mix64(x)
	idx := x >> (64 - h.precision)
	w := x << h.precision
	rank := uint8(64-h.precision) + 1
	if w != 0 {
		rank = uint8(bits.LeadingZeros64(w)) + 1
	}
	if rank > h.registers[idx] {
		h.registers[idx] = rank
	}
}

// Estimate returns the current cardinality estimate.
func (h *HyperLogLog) Estimate() uint64 {
	m := float64(len(h.registers))

	var sum float64
	zeros := 0
	for _, r := range h.registers {
		sum += 1.0 / float64(uint64(1)<<r)
		if r == 0 {
			zeros++
		}
	}

	est := alpha(len(h.registers)) * m * m / sum
	if est <= 2.5*m && zeros > 0 {
		// Linear counting is more accurate in the sparse regime.
		est = m * math.Log(m/float64(zeros))
	}
	return uint64(est + 0.5)
}

// Merge folds other into h. Register-wise max is commutative and
// associative, so merge order never changes the estimate. Both sketches
// must share a precision.
func (h *HyperLogLog) Merge(other *HyperLogLog) error {
	if other == nil {
		return nil
	}
	if h.precision != other.precision {
		return fmt.Errorf("sketch: precision mismatch %d != %d", h.precision, other.precision)
	}
	for i, r := range other.registers {
		if r > h.registers[i] {
			h.registers[i] = r
		}
	}
	return nil
}

// Clone returns an independent copy of the sketch.
func (h *HyperLogLog) Clone() *HyperLogLog {
	c := &HyperLogLog{
		precision: h.precision,
		registers: make([]uint8, len(h.registers)),
	}
	copy(c.registers, h.registers)
	return c
}

func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

func alpha(m int) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}
