package extractor

import (
	"net/url"
	"strings"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// Extractor dispatches a response body to the HTML or JavaScript extractor
// based on its type, and runs inline scripts through the JavaScript one.
type Extractor struct {
	logger zerolog.Logger
	html   *HTMLExtractor
	js     *JSExtractor
	withJS bool
}

// NewExtractor builds an extractor. extractJS controls whether script bodies
// are analyzed at all.
func NewExtractor(extractJS bool, logger zerolog.Logger) *Extractor {
	validator := NewURLValidator(logger)
	return &Extractor{
		logger: logger.With().Str("component", "Extractor").Logger(),
		html:   NewHTMLExtractor(validator, logger),
		js:     NewJSExtractor(validator, logger),
		withJS: extractJS,
	}
}

// ExtractFromResponse returns the URLs referenced by a fetched body, deduplicated.
func (e *Extractor) ExtractFromResponse(sourceURL, contentType string, body []byte) ([]models.ExtractedURL, error) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse source URL")
	}

	switch {
	case IsHTML(contentType):
		res, err := e.html.Extract(sourceURL, body, base)
		if err != nil {
			return nil, err
		}
		urls := res.URLs
		if e.withJS {
			for _, script := range res.InlineScripts {
				urls = append(urls, e.js.Extract(sourceURL, []byte(script), base)...)
			}
		}
		return dedupe(urls), nil
	case e.withJS && IsJavaScript(sourceURL, contentType):
		return e.js.Extract(sourceURL, body, base), nil
	default:
		return nil, nil
	}
}

// IsHTML reports whether a content type is an HTML document.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

func dedupe(urls []models.ExtractedURL) []models.ExtractedURL {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, dup := seen[u.AbsoluteURL]; dup {
			continue
		}
		seen[u.AbsoluteURL] = struct{}{}
		out = append(out, u)
	}
	return out
}
