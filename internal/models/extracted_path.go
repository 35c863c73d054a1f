package models

// LinkKind tells a crawler whether an extracted URL is worth visiting as a
// page or only worth classifying as a resource.
type LinkKind string

const (
	LinkKindPage  LinkKind = "page"
	LinkKindAsset LinkKind = "asset"
)

// ExtractedURL is a URL found inside an HTML document or script.
type ExtractedURL struct {
	SourceURL   string   `json:"source_url"`
	RawURL      string   `json:"raw_url"`
	AbsoluteURL string   `json:"absolute_url"`
	Context     string   `json:"context"` // e.g. "model-viewer[src]", "js:fetch"
	Kind        LinkKind `json:"kind"`
}
