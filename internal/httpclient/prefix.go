package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aleister1102/meshhound/internal/common"
)

// FetchPrefix returns at most limit bytes from the start of the resource.
// It asks for a byte range; servers that ignore Range and answer 200 are
// still cut off after limit bytes.
func (c *HTTPClient) FetchPrefix(ctx context.Context, url string, limit int) ([]byte, error) {
	if limit <= 0 {
		return nil, common.NewValidationError("limit", limit, "prefix limit must be positive")
	}

	req := &HTTPRequest{
		URL:    url,
		Method: http.MethodGet,
		Headers: map[string]string{
			"Range": fmt.Sprintf("bytes=0-%d", limit-1),
			// Transparent decompression would shift the magic bytes.
			"Accept-Encoding": "identity",
		},
		Context:      ctx,
		MaxBodyBytes: int64(limit),
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
	default:
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, http.StatusText(resp.StatusCode), url)
	}

	c.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("prefix_len", len(resp.Body)).
		Msg("Fetched content prefix")

	return resp.Body, nil
}
