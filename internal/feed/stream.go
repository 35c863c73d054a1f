package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

const maxStreamLineBytes = 1024 * 1024

// StreamFeed reads one JSON descriptor per line, e.g. from a browser
// extension or a proxy log exporter. Blank and malformed lines are skipped.
type StreamFeed struct {
	reader  io.Reader
	name    string
	logger  zerolog.Logger
	skipped int
}

// NewStreamFeed creates a feed over r. name is used in logs only.
func NewStreamFeed(r io.Reader, name string, logger zerolog.Logger) *StreamFeed {
	return &StreamFeed{
		reader: r,
		name:   name,
		logger: logger.With().Str("component", "StreamFeed").Str("input", name).Logger(),
	}
}

func (sf *StreamFeed) Name() string { return "stream:" + sf.name }

// Run blocks until the reader is exhausted or ctx ends. A reader that
// blocks forever (e.g. an idle stdin) is only released by closing it.
func (sf *StreamFeed) Run(ctx context.Context, out chan<- models.ResponseDescriptor) error {
	scanner := bufio.NewScanner(sf.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineBytes)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var desc models.ResponseDescriptor
		if err := json.Unmarshal([]byte(line), &desc); err != nil {
			sf.skipped++
			sf.logger.Warn().Int("line", lineNo).Err(err).Msg("Skipping malformed descriptor line")
			continue
		}
		if !send(ctx, out, desc) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return common.WrapErrorf(err, "failed to read descriptor stream %s", sf.name)
	}
	sf.logger.Debug().Int("lines", lineNo).Int("skipped", sf.skipped).Msg("Descriptor stream exhausted")
	return nil
}

// Skipped returns the number of malformed lines seen so far.
func (sf *StreamFeed) Skipped() int {
	return sf.skipped
}
