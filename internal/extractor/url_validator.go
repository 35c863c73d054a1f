package extractor

import (
	"net/url"
	"strings"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/rs/zerolog"
)

var skippedSchemes = []string{"javascript:", "data:", "mailto:", "tel:", "blob:", "about:"}

// URLValidator resolves extracted references against the page they came from
// and rejects anything that is not a fetchable http(s) URL.
type URLValidator struct {
	logger zerolog.Logger
}

// NewURLValidator creates a new URL validator
func NewURLValidator(logger zerolog.Logger) *URLValidator {
	return &URLValidator{
		logger: logger.With().Str("component", "URLValidator").Logger(),
	}
}

// Resolve returns the absolute form of rawURL. Fragments are dropped because
// they never change the fetched resource.
func (uv *URLValidator) Resolve(rawURL string, base *url.URL) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", common.NewValidationError("url", rawURL, "url cannot be empty")
	}

	lower := strings.ToLower(rawURL)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", common.NewValidationError("url", rawURL, "scheme is not fetchable")
		}
	}
	if strings.HasPrefix(rawURL, "#") {
		return "", common.NewValidationError("url", rawURL, "fragment-only reference")
	}

	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", common.WrapError(err, "failed to parse URL")
	}

	if !ref.IsAbs() {
		if base == nil {
			return "", common.NewValidationError("url", rawURL, "cannot resolve relative URL without a base")
		}
		ref = base.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", common.NewValidationError("scheme", ref.Scheme, "only http and https are supported")
	}
	if ref.Host == "" {
		return "", common.NewValidationError("host", rawURL, "URL has no host")
	}

	ref.Fragment = ""
	ref.RawFragment = ""
	return ref.String(), nil
}
