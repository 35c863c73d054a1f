package models

import "strings"

// FormatTag identifies a detected 3D-model format by its canonical extension.
type FormatTag string

const (
	FormatGLB     FormatTag = ".glb"
	FormatGLTF    FormatTag = ".gltf"
	FormatSTL     FormatTag = ".stl"
	FormatOBJ     FormatTag = ".obj"
	FormatFBX     FormatTag = ".fbx"
	FormatPLY     FormatTag = ".ply"
	FormatUSDZ    FormatTag = ".usdz"
	FormatUnknown FormatTag = "unknown"
)

// String returns the tag as stored in the catalog.
func (f FormatTag) String() string {
	return string(f)
}

// Badge returns the upper-case label used in listings, e.g. "GLB".
func (f FormatTag) Badge() string {
	if f == "" || f == FormatUnknown {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.TrimPrefix(string(f), "."))
}

// ParseFormatTag normalizes user or snapshot input into a FormatTag.
// Values without a leading dot are accepted ("glb" -> ".glb").
func ParseFormatTag(s string) FormatTag {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(FormatUnknown) {
		return FormatUnknown
	}
	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}
	return FormatTag(s)
}
