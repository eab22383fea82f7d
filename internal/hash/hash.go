package hash

import (
	"github.com/cespare/xxhash/v2"
)

const (
	// BucketSpace is the size of the position domain. Every hash value is
	// reduced modulo BucketSpace.
	BucketSpace = 1024

	// DefaultSeed is the fixed XXH64 seed. Changing it moves every key.
	DefaultSeed = 0
)

// Hasher maps data to a position in [0, BucketSpace).
type Hasher interface {
	Hash(data []byte) uint64
}

// XXHash is the default Hasher: XXH64 with a fixed seed, reduced modulo
// BucketSpace. The zero value uses DefaultSeed.
type XXHash struct {
	Seed uint64
}

// NewXXHash returns the default hasher.
func NewXXHash() *XXHash {
	return &XXHash{Seed: DefaultSeed}
}

// Hash returns the bucket position of data.
func (x *XXHash) Hash(data []byte) uint64 {
	if x.Seed == 0 {
		return xxhash.Sum64(data) % BucketSpace
	}
	d := xxhash.NewWithSeed(x.Seed)
	d.Write(data)
	return d.Sum64() % BucketSpace
}

// String hashes s without the caller converting it first.
func String(h Hasher, s string) uint64 {
	return h.Hash([]byte(s))
}

// Func adapts a plain function to the Hasher interface.
type Func func(data []byte) uint64

// Hash calls f(data).
func (f Func) Hash(data []byte) uint64 {
	return f(data)
}
