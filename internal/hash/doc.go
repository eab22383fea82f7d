// Package hash maps arbitrary byte strings into the fixed bucket space used
// by the ring. Positions and key hashes are always in [0, BucketSpace).
package hash
