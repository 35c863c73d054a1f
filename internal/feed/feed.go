// Package feed turns observed HTTP traffic into response descriptors and
// drives them through the detection pipeline.
package feed

import (
	"context"
	"strconv"
	"strings"

	"github.com/aleister1102/meshhound/internal/models"
)

// Source produces descriptors until it is exhausted or ctx is cancelled.
// Run must not close out; the caller owns it.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- models.ResponseDescriptor) error
}

// send delivers desc unless ctx ends first.
func send(ctx context.Context, out chan<- models.ResponseDescriptor, desc models.ResponseDescriptor) bool {
	select {
	case out <- desc:
		return true
	case <-ctx.Done():
		return false
	}
}

// parseContentLength returns nil for absent or unparsable headers.
func parseContentLength(header string) *int64 {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return models.Int64Ptr(n)
}

// bodyPrefix serves prefix fetches from a body the feed already holds.
func bodyPrefix(body []byte) models.PrefixFunc {
	if len(body) == 0 {
		return nil
	}
	return func(_ context.Context, limit int) ([]byte, error) {
		if limit > len(body) {
			limit = len(body)
		}
		return append([]byte(nil), body[:limit]...), nil
	}
}
