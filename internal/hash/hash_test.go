package hash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXXHash_KnownValues(t *testing.T) {
	h := NewXXHash()

	tests := []struct {
		input string
		want  uint64
	}{
		{input: "", want: 409},
		{input: "a", want: 603},
		{input: "abc", want: 409},
		{input: "key2222", want: 596},
		{input: "key222222", want: 112},
		{input: "key22", want: 672},
		{input: "key2", want: 279},
		{input: "Server10", want: 18},
		{input: "Server114", want: 676},
		{input: "Server40", want: 26},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			assert.Equal(t, tt.want, h.Hash([]byte(tt.input)))
		})
	}
}

func TestXXHash_Seed(t *testing.T) {
	seeded := &XXHash{Seed: 1}
	assert.Equal(t, uint64(264), seeded.Hash([]byte("abc")))
	assert.Equal(t, uint64(609), seeded.Hash([]byte("key2222")))

	// The zero value behaves like the default hasher.
	var zero XXHash
	assert.Equal(t, NewXXHash().Hash([]byte("key2222")), zero.Hash([]byte("key2222")))
}

func TestXXHash_Range(t *testing.T) {
	h := NewXXHash()
	for i := 0; i < 10000; i++ {
		v := String(h, fmt.Sprintf("key-%d", i))
		require.Less(t, v, uint64(BucketSpace), "hash out of bucket space for key-%d", i)
	}
}

func TestXXHash_Determinism(t *testing.T) {
	h1 := NewXXHash()
	h2 := NewXXHash()
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	assert.Equal(t, h1.Hash(long), h2.Hash(long))
	assert.Equal(t, h1.Hash(long), h1.Hash(long))
}

func TestFunc(t *testing.T) {
	f := Func(func(data []byte) uint64 { return uint64(len(data)) })
	assert.Equal(t, uint64(3), String(f, "abc"))
}
