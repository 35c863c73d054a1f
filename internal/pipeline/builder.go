package pipeline

import (
	"strings"
	"time"

	"github.com/aleister1102/meshhound/internal/catalog"
	"github.com/aleister1102/meshhound/internal/classifier"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/rs/zerolog"
)

// PipelineBuilder assembles a Pipeline with a fluent interface.
type PipelineBuilder struct {
	classifier *classifier.Classifier
	catalog    *catalog.Catalog
	fetcher    PrefixFetcher
	guard      Admitter
	notifier   DiscoveryNotifier
	events     *EventBus
	config     Config
	settings   Settings
	now        func() time.Time
	logger     zerolog.Logger
}

// NewPipelineBuilder starts from the default classifier and configuration.
func NewPipelineBuilder(logger zerolog.Logger) *PipelineBuilder {
	return &PipelineBuilder{
		config: DefaultConfig(),
		now:    time.Now,
		logger: logger,
	}
}

func (b *PipelineBuilder) WithClassifier(c *classifier.Classifier) *PipelineBuilder {
	b.classifier = c
	return b
}

func (b *PipelineBuilder) WithCatalog(c *catalog.Catalog) *PipelineBuilder {
	b.catalog = c
	return b
}

// WithFetcher sets the fallback used when a descriptor has no fetch
// capability of its own.
func (b *PipelineBuilder) WithFetcher(f PrefixFetcher) *PipelineBuilder {
	b.fetcher = f
	return b
}

func (b *PipelineBuilder) WithGuard(g Admitter) *PipelineBuilder {
	b.guard = g
	return b
}

func (b *PipelineBuilder) WithNotifier(n DiscoveryNotifier) *PipelineBuilder {
	b.notifier = n
	return b
}

func (b *PipelineBuilder) WithEventBus(bus *EventBus) *PipelineBuilder {
	b.events = bus
	return b
}

func (b *PipelineBuilder) WithConfig(cfg Config) *PipelineBuilder {
	b.config = cfg
	return b
}

func (b *PipelineBuilder) WithSettings(s Settings) *PipelineBuilder {
	b.settings = s
	return b
}

func (b *PipelineBuilder) WithClock(now func() time.Time) *PipelineBuilder {
	b.now = now
	return b
}

// Build validates the dependencies and returns the pipeline.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if b.catalog == nil {
		return nil, common.NewValidationError("catalog", nil, "catalog is required")
	}
	if b.classifier == nil {
		b.classifier = classifier.Default()
	}
	if b.events == nil {
		b.events = NewEventBus()
	}
	if b.config.PrefixBytes <= 0 {
		b.config.PrefixBytes = DefaultPrefixBytes
	}
	if b.config.FetchTimeout <= 0 {
		b.config.FetchTimeout = DefaultFetchTimeout
	}
	if b.now == nil {
		b.now = time.Now
	}

	resourceTypes := make(map[string]struct{}, len(b.config.ResourceTypes))
	for _, rt := range b.config.ResourceTypes {
		if rt = strings.ToLower(strings.TrimSpace(rt)); rt != "" {
			resourceTypes[rt] = struct{}{}
		}
	}

	p := &Pipeline{
		classifier:    b.classifier,
		catalog:       b.catalog,
		fetcher:       b.fetcher,
		guard:         b.guard,
		notifier:      b.notifier,
		events:        b.events,
		config:        b.config,
		resourceTypes: resourceTypes,
		now:           b.now,
		logger:        b.logger.With().Str("component", "DetectionPipeline").Logger(),
	}
	p.settings.store(b.settings)
	return p, nil
}
