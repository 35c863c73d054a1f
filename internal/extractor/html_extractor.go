package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// attributeRule maps one element/attribute pair to the kind of link it holds.
type attributeRule struct {
	Selector  string
	Attribute string
	Kind      models.LinkKind
}

// defaultAttributeRules covers plain links plus the elements 3D viewers use
// to reference their models.
var defaultAttributeRules = []attributeRule{
	{"a[href]", "href", models.LinkKindPage},
	{"iframe[src]", "src", models.LinkKindPage},
	{"link[href]", "href", models.LinkKindAsset},
	{"script[src]", "src", models.LinkKindAsset},
	{"source[src]", "src", models.LinkKindAsset},
	{"embed[src]", "src", models.LinkKindAsset},
	{"object[data]", "data", models.LinkKindAsset},
	{"model-viewer[src]", "src", models.LinkKindAsset},
	{"model-viewer[ios-src]", "ios-src", models.LinkKindAsset},
	{"a-asset-item[src]", "src", models.LinkKindAsset},
	{"a-entity[gltf-model]", "gltf-model", models.LinkKindAsset},
	{"[data-src]", "data-src", models.LinkKindAsset},
	{"[data-model]", "data-model", models.LinkKindAsset},
}

// HTMLExtractor pulls link and asset references out of HTML documents.
type HTMLExtractor struct {
	logger    zerolog.Logger
	validator *URLValidator
	rules     []attributeRule
}

// NewHTMLExtractor creates an extractor with the default attribute rules.
func NewHTMLExtractor(validator *URLValidator, logger zerolog.Logger) *HTMLExtractor {
	return &HTMLExtractor{
		logger:    logger.With().Str("component", "HTMLExtractor").Logger(),
		validator: validator,
		rules:     defaultAttributeRules,
	}
}

// HTMLResult is what one document yielded.
type HTMLResult struct {
	URLs          []models.ExtractedURL
	InlineScripts []string
}

// Extract parses content and resolves every referenced URL against base.
// A <base href> in the document takes precedence over base.
func (he *HTMLExtractor) Extract(sourceURL string, content []byte, base *url.URL) (HTMLResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return HTMLResult{}, common.WrapError(err, "failed to parse HTML content")
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := he.validator.Resolve(href, base); err == nil {
			if parsed, err := url.Parse(resolved); err == nil {
				base = parsed
			}
		}
	}

	var result HTMLResult
	seen := make(map[string]struct{})

	for _, rule := range he.rules {
		doc.Find(rule.Selector).Each(func(_ int, s *goquery.Selection) {
			raw, _ := s.Attr(rule.Attribute)
			he.add(&result, seen, sourceURL, raw, base, goquery.NodeName(s)+"["+rule.Attribute+"]", rule.Kind)
		})
	}

	doc.Find("img[srcset], source[srcset]").Each(func(_ int, s *goquery.Selection) {
		for _, raw := range parseSrcset(s.AttrOr("srcset", "")) {
			he.add(&result, seen, sourceURL, raw, base, goquery.NodeName(s)+"[srcset]", models.LinkKindAsset)
		}
	})

	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			result.InlineScripts = append(result.InlineScripts, text)
		}
	})

	he.logger.Debug().
		Str("source_url", sourceURL).
		Int("urls", len(result.URLs)).
		Int("inline_scripts", len(result.InlineScripts)).
		Msg("Extracted references from HTML")

	return result, nil
}

func (he *HTMLExtractor) add(result *HTMLResult, seen map[string]struct{}, sourceURL, raw string, base *url.URL, context string, kind models.LinkKind) {
	absolute, err := he.validator.Resolve(raw, base)
	if err != nil {
		return
	}
	if _, dup := seen[absolute]; dup {
		return
	}
	seen[absolute] = struct{}{}
	result.URLs = append(result.URLs, models.ExtractedURL{
		SourceURL:   sourceURL,
		RawURL:      strings.TrimSpace(raw),
		AbsoluteURL: absolute,
		Context:     context,
		Kind:        kind,
	})
}

// parseSrcset returns the URL of each candidate in a srcset attribute.
func parseSrcset(srcset string) []string {
	var urls []string
	for _, part := range strings.Split(srcset, ",") {
		if fields := strings.Fields(part); len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
