// Package rng provides the seeded pseudo-random stream used by level
// generation. Identical seeds produce identical sequences on every platform.
package rng

// zeroSeedReplacement is used when a caller seeds with 0, since an all-zero
// xorshift state never leaves zero.
const zeroSeedReplacement uint32 = 0x9E3779B9

// Source is the minimal contract generation code depends on.
type Source interface {
	Next() float64
}

// XorShift is a 32-bit xorshift generator with shifts (13, 17, 5).
type XorShift struct {
	seed  uint32
	state uint32
	draws int64
}

// New creates a generator from a 32-bit seed
func New(seed uint32) *XorShift {
	state := seed
	if state == 0 {
		state = zeroSeedReplacement
	}
	return &XorShift{seed: seed, state: state}
}

// Next returns a float in [0,1)
func (r *XorShift) Next() float64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	r.draws++
	return float64(x) / 4294967296.0
}

// Seed returns the seed the generator was created with
func (r *XorShift) Seed() uint32 {
	return r.seed
}

// Draws returns how many values have been drawn so far
func (r *XorShift) Draws() int64 {
	return r.draws
}

// Intn returns an int in [0,n) drawn from src. n <= 0 yields 0 without
// consuming a value.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(src.Next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Shuffle performs a Fisher-Yates shuffle of n elements using src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := Intn(src, i+1)
		swap(i, j)
	}
}

// SeedFor derives the seed of a retry attempt from a base seed. It is a pure
// function so that retries are reproducible and independently testable.
func SeedFor(base uint32, attempt int) uint32 {
	return base + uint32(attempt)
}
