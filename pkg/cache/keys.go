package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

// ArtifactOpts are the render parameters that participate in an artifact's
// identity. Two renders with the same routine hash and the same opts produce
// the same bytes.
type ArtifactOpts struct {
	Format string  // "svg", "png", "dot"
	Scale  float64 // raster scale, 0 for vector formats
	Theme  string  // theme content fingerprint, "" for the default theme
}

// Keyer derives cache keys for rendered artifacts.
type Keyer struct {
	prefix string
}

// NewKeyer creates a keyer. A non-empty prefix namespaces every key, so
// callers serving multiple routines from one cache directory stay isolated.
func NewKeyer(prefix string) *Keyer {
	return &Keyer{prefix: prefix}
}

// ArtifactKey generates a key for a rendered artifact.
func (k *Keyer) ArtifactKey(routineHash string, opts ArtifactOpts) string {
	return k.prefix + hashKey("artifact", routineHash, opts)
}

// RoutineHash computes a content hash over a routine and the layout
// constants it renders with. Rung order, text, and comments all participate;
// rung UUIDs do not, so reloading the same file hashes the same.
func RoutineHash(rt *ladder.Routine, cons layout.Constants) string {
	var b strings.Builder
	b.WriteString(rt.Name())
	b.WriteByte(0)
	for _, r := range rt.Rungs() {
		b.WriteString(r.Text())
		b.WriteByte(0)
		b.WriteString(r.Comment())
		b.WriteByte(0)
	}
	consData, _ := json.Marshal(cons)
	b.Write(consData)
	return Hash([]byte(b.String()))
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
