package catalog

import (
	"net/url"
	"sort"
	"strings"

	"github.com/aleister1102/meshhound/internal/models"
)

// SortByDiscoveredDesc returns a copy of records, newest first. Records with
// equal timestamps keep their relative order.
func SortByDiscoveredDesc(records []models.FileRecord) []models.FileRecord {
	out := append([]models.FileRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DiscoveredAt.After(out[j].DiscoveredAt)
	})
	return out
}

// Filter keeps records whose display name or URL contains query,
// case-insensitively. An empty query keeps everything.
func Filter(records []models.FileRecord, query string) []models.FileRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.FileRecord(nil), records...)
	}

	var out []models.FileRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(DisplayName(r.URL)), q) ||
			strings.Contains(strings.ToLower(r.URL), q) {
			out = append(out, r)
		}
	}
	return out
}

// DisplayName is the last path segment of the URL without its query.
func DisplayName(rawURL string) string {
	name := rawURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "Unknown File"
	}
	return name
}

// OriginHost returns the host of the origin, or "Unknown".
func OriginHost(origin string) string {
	if origin == "" || origin == models.UnknownOrigin {
		return "Unknown"
	}
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return "Unknown"
	}
	return u.Hostname()
}
