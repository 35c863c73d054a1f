package feed

import (
	"context"
	"strings"
	"time"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// resourceTypes maps DevTools resource types onto the request types the
// pipeline filters on.
var resourceTypes = map[proto.NetworkResourceType]string{
	proto.NetworkResourceTypeDocument:   "main_frame",
	proto.NetworkResourceTypeXHR:        "xmlhttprequest",
	proto.NetworkResourceTypeFetch:      "xmlhttprequest",
	proto.NetworkResourceTypeImage:      "image",
	proto.NetworkResourceTypeMedia:      "media",
	proto.NetworkResourceTypeFont:       "font",
	proto.NetworkResourceTypeScript:     "script",
	proto.NetworkResourceTypeStylesheet: "stylesheet",
	proto.NetworkResourceTypeWebSocket:  "websocket",
	proto.NetworkResourceTypePing:       "ping",
}

// BrowserFeed loads pages in a headless Chrome and reports every network
// response the page makes, which catches models that viewers fetch from
// script at runtime.
type BrowserFeed struct {
	pages  []string
	config config.BrowserConfig
	logger zerolog.Logger
}

// NewBrowserFeed creates a feed that visits pages in order.
func NewBrowserFeed(pages []string, cfg config.BrowserConfig, logger zerolog.Logger) (*BrowserFeed, error) {
	if len(pages) == 0 {
		return nil, common.NewValidationError("pages", pages, "at least one page URL is required")
	}
	return &BrowserFeed{
		pages:  pages,
		config: cfg,
		logger: logger.With().Str("component", "BrowserFeed").Logger(),
	}, nil
}

func (bf *BrowserFeed) Name() string { return "browser" }

// Run launches the browser, visits each page and tears everything down.
func (bf *BrowserFeed) Run(ctx context.Context, out chan<- models.ResponseDescriptor) error {
	l := launcher.New().Headless(bf.config.Headless)
	if bf.config.ChromePath != "" {
		l = l.Bin(bf.config.ChromePath)
	}
	if bf.config.UserDataDir != "" {
		l = l.UserDataDir(bf.config.UserDataDir)
	}
	l = l.Set("disable-gpu").Set("disable-dev-shm-usage").Set("no-first-run")

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return common.WrapError(err, "failed to launch browser")
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return common.WrapError(err, "failed to connect to browser")
	}
	defer func() {
		if err := browser.Close(); err != nil {
			bf.logger.Debug().Err(err).Msg("Failed to close browser")
		}
	}()

	for _, pageURL := range bf.pages {
		if ctx.Err() != nil {
			return nil
		}
		if err := bf.visit(ctx, browser, pageURL, out); err != nil {
			bf.logger.Warn().Err(err).Str("url", pageURL).Msg("Page visit failed")
		}
	}
	return nil
}

func (bf *BrowserFeed) visit(ctx context.Context, browser *rod.Browser, pageURL string, out chan<- models.ResponseDescriptor) error {
	timeout := time.Duration(bf.config.PageLoadTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultBrowserPageLoadTimeoutSecs) * time.Second
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Context(pageCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return common.WrapError(err, "failed to create page")
	}
	defer page.Close()

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return common.WrapError(err, "failed to enable network events")
	}

	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		desc := descriptorFromResponse(e, pageURL, page.FrameID)
		return !send(pageCtx, out, desc)
	})
	go wait()

	if err := page.Navigate(pageURL); err != nil {
		return common.WrapErrorf(err, "failed to navigate to %s", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return common.WrapErrorf(err, "page load failed for %s", pageURL)
	}

	if ms := bf.config.WaitAfterLoadMs; ms > 0 {
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
		case <-pageCtx.Done():
		}
	}
	bf.logger.Debug().Str("url", pageURL).Msg("Page visited")
	return nil
}

func descriptorFromResponse(e *proto.NetworkResponseReceived, pageURL string, mainFrame proto.PageFrameID) models.ResponseDescriptor {
	resourceType, ok := resourceTypes[e.Type]
	if !ok {
		resourceType = "other"
	}
	if resourceType == "main_frame" && e.FrameID != "" && mainFrame != "" && e.FrameID != mainFrame {
		resourceType = "sub_frame"
	}

	desc := models.ResponseDescriptor{
		ResourceType: resourceType,
	}
	if e.Response == nil {
		return desc
	}

	desc.URL = e.Response.URL
	desc.ContentType = e.Response.MIMEType
	if ct := headerValue(e.Response.Headers, "Content-Type"); ct != "" {
		desc.ContentType = ct
	}
	desc.ContentLength = parseContentLength(headerValue(e.Response.Headers, "Content-Length"))
	if desc.URL != pageURL {
		desc.Origin = pageURL
	}
	return desc
}

func headerValue(headers proto.NetworkHeaders, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v.String()
		}
	}
	return ""
}
