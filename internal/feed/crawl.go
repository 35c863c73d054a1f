package feed

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/extractor"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// CrawlFeed walks pages from a set of seeds with colly. Every fetched
// response becomes a descriptor carrying its real headers, and every asset
// reference found in a page becomes a URL-only descriptor with the page as
// origin.
type CrawlFeed struct {
	seeds     []string
	config    config.CrawlerConfig
	extractor *extractor.Extractor
	logger    zerolog.Logger

	mu      sync.Mutex
	origins map[string]string
	emitted map[string]struct{}
}

// NewCrawlFeed validates the seeds and builds the feed.
func NewCrawlFeed(seeds []string, cfg config.CrawlerConfig, logger zerolog.Logger) (*CrawlFeed, error) {
	var valid []string
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		u, err := url.Parse(seed)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, common.NewValidationError("seed", seed, "seed must be an absolute http(s) URL")
		}
		valid = append(valid, u.String())
	}
	if len(valid) == 0 {
		return nil, common.NewValidationError("seeds", seeds, "at least one seed URL is required")
	}

	return &CrawlFeed{
		seeds:     valid,
		config:    cfg,
		extractor: extractor.NewExtractor(cfg.ExtractJSLinks, logger),
		logger:    logger.With().Str("component", "CrawlFeed").Logger(),
		origins:   make(map[string]string),
		emitted:   make(map[string]struct{}),
	}, nil
}

func (cf *CrawlFeed) Name() string { return "crawl" }

// Run crawls until the frontier is exhausted or ctx ends.
func (cf *CrawlFeed) Run(ctx context.Context, out chan<- models.ResponseDescriptor) error {
	collector, err := cf.newCollector()
	if err != nil {
		return err
	}

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		cf.handleResponse(ctx, r, out)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if ctx.Err() != nil {
			return
		}
		cf.logger.Debug().
			Str("url", r.Request.URL.String()).
			Int("status", r.StatusCode).
			Err(err).
			Msg("Request failed")
	})

	for _, seed := range cf.seeds {
		if err := collector.Visit(seed); err != nil {
			cf.logVisitError(seed, err)
		}
	}
	collector.Wait()

	cf.logger.Info().Int("emitted", cf.emittedCount()).Msg("Crawl finished")
	return nil
}

func (cf *CrawlFeed) newCollector() (*colly.Collector, error) {
	options := []colly.CollectorOption{
		colly.Async(true),
		colly.MaxDepth(cf.config.MaxDepth),
	}
	if ua := cf.config.UserAgent; ua != "" {
		options = append(options, colly.UserAgent(ua))
	}
	if mb := cf.config.MaxBodySizeMB; mb > 0 {
		options = append(options, colly.MaxBodySize(mb*1024*1024))
	}

	collector := colly.NewCollector(options...)
	collector.IgnoreRobotsTxt = !cf.config.RespectRobotsTxt

	if secs := cf.config.RequestTimeoutSecs; secs > 0 {
		collector.SetRequestTimeout(time.Duration(secs) * time.Second)
	}

	parallelism := cf.config.MaxConcurrentRequests
	if parallelism <= 0 {
		parallelism = config.DefaultCrawlerMaxConcurrentRequests
	}
	if err := collector.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: parallelism}); err != nil {
		return nil, common.WrapError(err, "failed to set crawl limit rule")
	}

	collector.AllowedDomains = cf.allowedDomains()
	return collector, nil
}

// allowedDomains defaults to the seed hosts.
func (cf *CrawlFeed) allowedDomains() []string {
	if len(cf.config.AllowedDomains) > 0 {
		return append([]string(nil), cf.config.AllowedDomains...)
	}
	seen := make(map[string]struct{})
	var domains []string
	for _, seed := range cf.seeds {
		u, err := url.Parse(seed)
		if err != nil {
			continue
		}
		host := u.Hostname()
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		domains = append(domains, host)
	}
	return domains
}

func (cf *CrawlFeed) handleResponse(ctx context.Context, r *colly.Response, out chan<- models.ResponseDescriptor) {
	pageURL := r.Request.URL.String()
	contentType := r.Headers.Get("Content-Type")

	resourceType := "other"
	if extractor.IsHTML(contentType) {
		resourceType = "main_frame"
		if r.Request.Depth > 1 {
			resourceType = "sub_frame"
		}
	}

	if cf.markEmitted(pageURL) {
		desc := models.ResponseDescriptor{
			URL:           pageURL,
			Origin:        cf.originOf(pageURL),
			ContentLength: parseContentLength(r.Headers.Get("Content-Length")),
			ContentType:   contentType,
			ResourceType:  resourceType,
			FetchPrefix:   bodyPrefix(r.Body),
		}
		if desc.ContentLength == nil && len(r.Body) > 0 {
			desc.ContentLength = models.Int64Ptr(int64(len(r.Body)))
		}
		if !send(ctx, out, desc) {
			return
		}
	}

	links, err := cf.extractor.ExtractFromResponse(pageURL, contentType, r.Body)
	if err != nil {
		cf.logger.Debug().Err(err).Str("url", pageURL).Msg("Failed to extract links")
		return
	}

	for _, link := range links {
		if link.Kind == models.LinkKindPage {
			cf.rememberOrigin(link.AbsoluteURL, pageURL)
			if err := r.Request.Visit(link.AbsoluteURL); err != nil {
				cf.logVisitError(link.AbsoluteURL, err)
			}
			continue
		}
		if !cf.markEmitted(link.AbsoluteURL) {
			continue
		}
		if !send(ctx, out, models.ResponseDescriptor{
			URL:          link.AbsoluteURL,
			Origin:       pageURL,
			ResourceType: "other",
		}) {
			return
		}
	}
}

func (cf *CrawlFeed) rememberOrigin(target, origin string) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if _, ok := cf.origins[target]; !ok {
		cf.origins[target] = origin
	}
}

func (cf *CrawlFeed) originOf(target string) string {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	return cf.origins[target]
}

// markEmitted reports whether url had not been emitted before.
func (cf *CrawlFeed) markEmitted(url string) bool {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if _, ok := cf.emitted[url]; ok {
		return false
	}
	cf.emitted[url] = struct{}{}
	return true
}

func (cf *CrawlFeed) emittedCount() int {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	return len(cf.emitted)
}

func (cf *CrawlFeed) logVisitError(target string, err error) {
	var alreadyVisited *colly.AlreadyVisitedError
	if errors.As(err, &alreadyVisited) ||
		errors.Is(err, colly.ErrRobotsTxtBlocked) ||
		errors.Is(err, colly.ErrForbiddenDomain) ||
		errors.Is(err, colly.ErrMaxDepth) {
		return
	}
	cf.logger.Debug().Str("url", target).Err(err).Msg("Error queueing visit")
}
