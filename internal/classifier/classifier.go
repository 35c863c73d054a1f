package classifier

import (
	"bytes"
	"sort"
	"strings"

	"github.com/aleister1102/meshhound/internal/models"
)

// Classifier decides the 3D format of a resource from its URL and, as a
// fallback, from a leading byte prefix. It holds no mutable state and is safe
// for concurrent use.
type Classifier struct {
	signatures SignatureCatalog
}

// New creates a classifier over the given signature table.
func New(signatures SignatureCatalog) *Classifier {
	return &Classifier{signatures: signatures}
}

// Default creates a classifier over the built-in table.
func Default() *Classifier {
	return New(DefaultSignatures())
}

// Signatures exposes the table the classifier was built with.
func (c *Classifier) Signatures() SignatureCatalog {
	return c.signatures
}

// Classify runs the extension pass and, if it is inconclusive and prefix is
// non-empty, the magic-byte pass.
func (c *Classifier) Classify(rawURL string, prefix []byte) (models.FormatTag, bool) {
	if format, ok := c.ByExtension(rawURL); ok {
		return format, true
	}
	if len(prefix) == 0 {
		return "", false
	}
	return c.ByMagic(prefix)
}

// ByExtension matches registered extensions anywhere in the lower-cased URL.
// Containment rather than suffix keeps "model.glb?v=2" detectable; the cost is
// that path segments such as "/assets.objects/" also match ".obj".
func (c *Classifier) ByExtension(rawURL string) (models.FormatTag, bool) {
	lower := strings.ToLower(rawURL)
	for _, entry := range c.signatures.Extensions {
		for _, ext := range entry.Extensions {
			if ext != "" && strings.Contains(lower, ext) {
				return entry.Format, true
			}
		}
	}
	return "", false
}

// ByMagic compares the prefix against each magic sequence at offset 0.
func (c *Classifier) ByMagic(prefix []byte) (models.FormatTag, bool) {
	for _, entry := range c.signatures.Magic {
		if len(entry.Magic) == 0 || len(prefix) < len(entry.Magic) {
			continue
		}
		if bytes.Equal(prefix[:len(entry.Magic)], entry.Magic) {
			return entry.Format, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
