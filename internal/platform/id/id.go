package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// RandomHex yields Size random bytes hex encoded; zero Size means 8 bytes,
// enough to tell apart the sessions of one player.
type RandomHex struct {
	Size   int
	Prefix string
}

func (g RandomHex) New() string {
	size := g.Size
	if size <= 0 {
		size = 8
	}
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return g.Prefix + hex.EncodeToString(buf)
}
