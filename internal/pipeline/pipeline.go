package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/aleister1102/meshhound/internal/catalog"
	"github.com/aleister1102/meshhound/internal/classifier"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/deepscan"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// DefaultPrefixBytes is how much of a resource is fetched for sniffing.
const DefaultPrefixBytes = 512

// DefaultFetchTimeout bounds one prefix fetch.
const DefaultFetchTimeout = 10 * time.Second

// ErrMalformedDescriptor is returned for descriptors without a URL.
var ErrMalformedDescriptor error = common.NewValidationError("url", "", "descriptor has no URL")

// PrefixFetcher fetches the leading bytes of a URL.
type PrefixFetcher interface {
	FetchPrefix(ctx context.Context, url string, limit int) ([]byte, error)
}

// Admitter may veto a deep scan, e.g. under memory pressure.
type Admitter interface {
	Allow() bool
}

// DiscoveryNotifier receives newly catalogued files when notifications are
// enabled. It must not block.
type DiscoveryNotifier interface {
	NotifyDiscovery(event models.DiscoveryEvent)
}

// Config holds the static detection parameters.
type Config struct {
	Policy        deepscan.Policy
	PrefixBytes   int
	FetchTimeout  time.Duration
	ResourceTypes []string
}

// DefaultConfig mirrors the detection_config defaults.
func DefaultConfig() Config {
	return Config{
		Policy:        deepscan.DefaultPolicy(),
		PrefixBytes:   DefaultPrefixBytes,
		FetchTimeout:  DefaultFetchTimeout,
		ResourceTypes: append([]string(nil), config.DefaultResourceTypes...),
	}
}

// ConfigFromApp maps the detection_config section. The returned initial
// Settings carry the deep-scan toggle.
func ConfigFromApp(cfg config.DetectionConfig) Config {
	c := DefaultConfig()
	c.Policy.MaxSizeBytes = cfg.DeepScanMaxSizeBytes
	if len(cfg.GenericContentTypes) > 0 {
		c.Policy.GenericContentTypes = append([]string(nil), cfg.GenericContentTypes...)
	}
	if cfg.PrefixBytes > 0 {
		c.PrefixBytes = cfg.PrefixBytes
	}
	if cfg.FetchTimeoutSecs > 0 {
		c.FetchTimeout = cfg.FetchTimeout()
	}
	c.ResourceTypes = append([]string(nil), cfg.ResourceTypes...)
	return c
}

// Result describes how one descriptor was handled. Record is set for
// detected and duplicate outcomes.
type Result struct {
	Outcome Outcome
	Format  models.FormatTag
	Record  *models.FileRecord
}

// Pipeline classifies response descriptors and records discoveries.
type Pipeline struct {
	classifier    *classifier.Classifier
	catalog       *catalog.Catalog
	fetcher       PrefixFetcher
	guard         Admitter
	notifier      DiscoveryNotifier
	events        *EventBus
	config        Config
	resourceTypes map[string]struct{}
	settings      settingsValue
	stats         Stats
	now           func() time.Time
	logger        zerolog.Logger
}

// Handle runs one descriptor through classification. The error is non-nil
// only for malformed descriptors; every other miss is reported through the
// Result outcome.
func (p *Pipeline) Handle(ctx context.Context, desc models.ResponseDescriptor) (Result, error) {
	url := strings.TrimSpace(desc.URL)
	if url == "" {
		p.stats.record(OutcomeRejected)
		return Result{Outcome: OutcomeRejected}, ErrMalformedDescriptor
	}

	if !p.acceptsResourceType(desc.ResourceType) {
		return p.finish(Result{Outcome: OutcomeFiltered}), nil
	}

	format, ok := p.classifier.ByExtension(url)
	if !ok {
		var outcome Outcome
		format, outcome = p.deepScan(ctx, url, desc)
		if outcome != "" {
			return p.finish(Result{Outcome: outcome}), nil
		}
	}

	record := p.buildRecord(url, format, desc)
	if !p.catalog.Insert(record) {
		p.logger.Debug().Str("url", url).Msg("Already catalogued")
		return p.finish(Result{Outcome: OutcomeDuplicate, Format: format, Record: &record}), nil
	}

	if stored, found := p.catalog.Get(url); found {
		record = stored
	}
	p.announce(record)

	return p.finish(Result{Outcome: OutcomeDetected, Format: format, Record: &record}), nil
}

// deepScan returns the sniffed format, or a non-empty outcome when the scan
// was skipped or inconclusive.
func (p *Pipeline) deepScan(ctx context.Context, url string, desc models.ResponseDescriptor) (models.FormatTag, Outcome) {
	settings := p.settings.load()
	policy := p.config.Policy
	policy.Enabled = settings.DeepScanEnabled

	if !deepscan.ShouldDeepScan(policy, desc.ContentType, desc.ContentLength) {
		return "", OutcomeDeclined
	}
	if p.guard != nil && !p.guard.Allow() {
		return "", OutcomeDeclined
	}

	fetch := desc.FetchPrefix
	if fetch == nil {
		if p.fetcher == nil {
			p.logger.Debug().Str("url", url).Msg("No prefix fetcher available")
			return "", OutcomeFetchFailed
		}
		fetch = func(ctx context.Context, limit int) ([]byte, error) {
			return p.fetcher.FetchPrefix(ctx, url, limit)
		}
	}

	p.stats.DeepScans.Add(1)
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()

	prefix, err := fetch(fetchCtx, p.config.PrefixBytes)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", url).Msg("Prefix fetch failed")
		return "", OutcomeFetchFailed
	}
	if len(prefix) > p.config.PrefixBytes {
		prefix = prefix[:p.config.PrefixBytes]
	}

	format, ok := p.classifier.ByMagic(prefix)
	if !ok {
		return "", OutcomeInconclusive
	}
	p.logger.Debug().Str("url", url).Str("format", format.String()).Msg("Detected by magic bytes")
	return format, ""
}

func (p *Pipeline) buildRecord(url string, format models.FormatTag, desc models.ResponseDescriptor) models.FileRecord {
	origin := strings.TrimSpace(desc.Origin)
	if origin == "" {
		origin = models.UnknownOrigin
	}

	var sizeBytes *int64
	if desc.ContentLength != nil && *desc.ContentLength >= 0 {
		sizeBytes = models.Int64Ptr(*desc.ContentLength)
	}

	return models.FileRecord{
		URL:          url,
		Format:       format,
		Origin:       origin,
		SizeBytes:    sizeBytes,
		Size:         FormatSize(sizeBytes),
		DiscoveredAt: p.now().UTC(),
	}
}

func (p *Pipeline) announce(record models.FileRecord) {
	event := record.Event()
	p.events.Publish(event)

	p.logger.Info().
		Str("url", record.URL).
		Str("format", record.Format.String()).
		Str("origin", record.Origin).
		Str("size", record.Size).
		Msg("3D file detected")

	if p.notifier != nil && p.settings.load().NotificationsEnabled {
		p.notifier.NotifyDiscovery(event)
	}
}

func (p *Pipeline) acceptsResourceType(resourceType string) bool {
	if resourceType == "" || len(p.resourceTypes) == 0 {
		return true
	}
	_, ok := p.resourceTypes[strings.ToLower(resourceType)]
	return ok
}

func (p *Pipeline) finish(r Result) Result {
	p.stats.record(r.Outcome)
	return r
}

// Settings returns the current runtime settings.
func (p *Pipeline) Settings() Settings {
	return p.settings.load()
}

// UpdateSettings replaces the runtime settings; descriptors already past
// the decision point keep the old values.
func (p *Pipeline) UpdateSettings(s Settings) {
	p.settings.store(s)
	p.logger.Info().
		Bool("deep_scan_enabled", s.DeepScanEnabled).
		Bool("notifications_enabled", s.NotificationsEnabled).
		Msg("Detection settings updated")
}

// Events is the bus discovery events are published on.
func (p *Pipeline) Events() *EventBus {
	return p.events
}

// Catalog is the catalog discoveries are recorded in.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Stats returns the outcome counters so far.
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}
