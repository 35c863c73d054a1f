package extractor

import (
	"net/url"
	"strings"

	"github.com/BishopFox/jsluice"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// JSExtractor finds URLs in JavaScript using jsluice's AST matchers, which
// catch fetch() and XHR arguments, location assignments and string literals.
type JSExtractor struct {
	logger    zerolog.Logger
	validator *URLValidator
}

// NewJSExtractor creates a new JavaScript extractor
func NewJSExtractor(validator *URLValidator, logger zerolog.Logger) *JSExtractor {
	return &JSExtractor{
		logger:    logger.With().Str("component", "JSExtractor").Logger(),
		validator: validator,
	}
}

// Extract returns the resolvable URLs in content. Everything a script
// references is treated as an asset.
func (je *JSExtractor) Extract(sourceURL string, content []byte, base *url.URL) []models.ExtractedURL {
	analyzer := jsluice.NewAnalyzer(content)
	found := analyzer.GetURLs()

	var urls []models.ExtractedURL
	seen := make(map[string]struct{}, len(found))

	for _, res := range found {
		absolute, err := je.validator.Resolve(res.URL, base)
		if err != nil {
			je.logger.Debug().Str("url", res.URL).Err(err).Msg("Skipping unresolvable URL from script")
			continue
		}
		if _, dup := seen[absolute]; dup {
			continue
		}
		seen[absolute] = struct{}{}

		kind := res.Type
		if kind == "" {
			kind = "unknown"
		}
		urls = append(urls, models.ExtractedURL{
			SourceURL:   sourceURL,
			RawURL:      res.URL,
			AbsoluteURL: absolute,
			Context:     "js:" + kind,
			Kind:        models.LinkKindAsset,
		})
	}

	je.logger.Debug().Str("source_url", sourceURL).Int("urls", len(urls)).Msg("Extracted URLs from script")
	return urls
}

var jsExtensions = []string{".js", ".mjs", ".cjs", ".jsx"}

// IsJavaScript reports whether a response should be handed to JSExtractor.
func IsJavaScript(sourceURL, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "javascript") {
		return true
	}
	path := strings.ToLower(sourceURL)
	if u, err := url.Parse(sourceURL); err == nil {
		path = strings.ToLower(u.Path)
	}
	for _, ext := range jsExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
