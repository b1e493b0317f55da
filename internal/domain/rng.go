package domain

import (
	"math/rand"
	"time"
)

const (
	rngModulus    = 2147483647
	rngMultiplier = 48271
	seedLength    = 16
	seedAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RNG is a seeded Park-Miller generator. The same seed yields the same
// sequence on every platform.
type RNG struct {
	state int64
}

// NewRNG folds the seed's code points into a 32-bit state
// (state = state*31 + codepoint, wrapping) and primes the generator with it.
func NewRNG(seed string) *RNG {
	var h int32
	for _, r := range seed {
		h = h*31 + int32(r)
	}
	state := int64(h) % rngModulus
	if state < 0 {
		state += rngModulus
	}
	if state == 0 {
		state = 1
	}
	return &RNG{state: state}
}

// Float64 advances the generator and returns a value in [0,1).
func (r *RNG) Float64() float64 {
	r.state = (r.state * rngMultiplier) % rngModulus
	return float64(r.state-1) / float64(rngModulus-1)
}

// Intn returns a value in [0,n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// Shuffle permutes ids in place with Fisher-Yates, walking from the end.
func (r *RNG) Shuffle(ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// GenerateSeed returns a random alphanumeric seed for a match that was
// started without one. src may be nil to use a time-seeded source.
func GenerateSeed(src *rand.Rand) string {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b := make([]byte, seedLength)
	for i := range b {
		b[i] = seedAlphabet[src.Intn(len(seedAlphabet))]
	}
	return string(b)
}
