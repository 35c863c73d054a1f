package classifier

import (
	"strings"

	"github.com/aleister1102/meshhound/internal/models"
)

// SignatureEntry pairs a format with either URL extension substrings or a
// magic byte sequence compared at offset 0.
type SignatureEntry struct {
	Format     models.FormatTag
	Extensions []string
	Magic      []byte
}

// IsMagic reports whether the entry matches on payload bytes.
func (e SignatureEntry) IsMagic() bool {
	return len(e.Magic) > 0
}

// SignatureCatalog is the ordered signature table. Order is the tie-break:
// the first matching entry wins in both passes.
type SignatureCatalog struct {
	Extensions []SignatureEntry
	Magic      []SignatureEntry
}

var defaultExtensions = []SignatureEntry{
	{Format: models.FormatGLB, Extensions: []string{".glb"}},
	{Format: models.FormatGLTF, Extensions: []string{".gltf"}},
	{Format: models.FormatSTL, Extensions: []string{".stl"}},
	{Format: models.FormatOBJ, Extensions: []string{".obj"}},
	{Format: models.FormatFBX, Extensions: []string{".fbx"}},
	{Format: models.FormatPLY, Extensions: []string{".ply"}},
	{Format: models.FormatUSDZ, Extensions: []string{".usdz"}},
}

var defaultMagic = []SignatureEntry{
	{Format: models.FormatGLB, Magic: []byte("glTF")},
	{Format: models.FormatFBX, Magic: []byte("Kaydara FBX Binary  \x00\x1a\x00")},
	{Format: models.FormatPLY, Magic: []byte("ply")},
	{Format: models.FormatSTL, Magic: []byte("solid")},                 // ASCII STL
	{Format: models.FormatUSDZ, Magic: []byte{0x50, 0x4B, 0x03, 0x04}}, // any ZIP; weak
}

// DefaultSignatures returns a deep copy of the built-in table.
func DefaultSignatures() SignatureCatalog {
	return SignatureCatalog{
		Extensions: cloneEntries(defaultExtensions),
		Magic:      cloneEntries(defaultMagic),
	}
}

// WithExtraExtensions returns a copy of the catalog with additional extension
// entries appended after the existing ones. Blank values are skipped.
func (sc SignatureCatalog) WithExtraExtensions(extra map[string]string) SignatureCatalog {
	out := SignatureCatalog{
		Extensions: cloneEntries(sc.Extensions),
		Magic:      cloneEntries(sc.Magic),
	}
	for _, ext := range sortedKeys(extra) {
		needle := strings.ToLower(strings.TrimSpace(ext))
		if needle == "" {
			continue
		}
		if !strings.HasPrefix(needle, ".") {
			needle = "." + needle
		}
		out.Extensions = append(out.Extensions, SignatureEntry{
			Format:     models.ParseFormatTag(extra[ext]),
			Extensions: []string{needle},
		})
	}
	return out
}

// ShortestMagic returns the length of the shortest magic sequence, or 0 when
// the catalog has none.
func (sc SignatureCatalog) ShortestMagic() int {
	shortest := 0
	for _, entry := range sc.Magic {
		if shortest == 0 || len(entry.Magic) < shortest {
			shortest = len(entry.Magic)
		}
	}
	return shortest
}

func cloneEntries(entries []SignatureEntry) []SignatureEntry {
	out := make([]SignatureEntry, len(entries))
	for i, e := range entries {
		out[i] = SignatureEntry{
			Format:     e.Format,
			Extensions: append([]string(nil), e.Extensions...),
			Magic:      append([]byte(nil), e.Magic...),
		}
		if len(e.Magic) == 0 {
			out[i].Magic = nil
		}
	}
	return out
}
