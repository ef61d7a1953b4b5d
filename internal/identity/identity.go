// Package identity generates short job ids that are safe to use as DNS
// labels and Kubernetes resource name components.
package identity

import (
	"crypto/rand"
	"io"
)

const (
	// Length of every generated id.
	Length = 10
	// Alphabet ids are drawn from.
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// largest multiple of len(Alphabet) that fits in a byte; bytes at or above
// it are rejected so every symbol is equally likely.
const maxByte = 256 - 256%len(Alphabet)

// Generator produces job ids.
type Generator interface {
	Generate() string
}

// RandomGenerator draws ids from a cryptographic random source.
type RandomGenerator struct {
	src io.Reader
}

// NewRandomGenerator returns a generator reading from crypto/rand.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{src: rand.Reader}
}

// Generate returns a fresh id. No uniqueness check is made; at 36^10
// possibilities collisions are not a practical concern.
func (g *RandomGenerator) Generate() string {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			// crypto/rand does not fail on supported platforms
			panic("identity: random source failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out)
}

// Generate is a convenience wrapper around a crypto/rand backed generator.
func Generate() string {
	return NewRandomGenerator().Generate()
}

// Valid reports whether id has the exact shape Generate produces.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
