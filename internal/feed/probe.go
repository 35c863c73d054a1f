package feed

import (
	"context"
	"strings"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/projectdiscovery/httpx/runner"
	"github.com/rs/zerolog"
)

// ProbeFeed probes a list of URLs with httpx and reports the response
// headers of each. With the default HEAD method nothing but headers is
// transferred; the pipeline range-fetches prefixes itself when needed.
type ProbeFeed struct {
	targets []string
	config  config.ProbeConfig
	logger  zerolog.Logger
}

// NewProbeFeed creates a probe feed over targets. Blank entries are dropped.
func NewProbeFeed(targets []string, cfg config.ProbeConfig, logger zerolog.Logger) (*ProbeFeed, error) {
	var cleaned []string
	for _, t := range targets {
		if t = strings.TrimSpace(t); t != "" && !strings.HasPrefix(t, "#") {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, common.NewValidationError("targets", targets, "no probe targets given")
	}
	return &ProbeFeed{
		targets: cleaned,
		config:  cfg,
		logger:  logger.With().Str("component", "ProbeFeed").Logger(),
	}, nil
}

func (pf *ProbeFeed) Name() string { return "probe" }

// Run blocks until httpx has probed every target.
func (pf *ProbeFeed) Run(ctx context.Context, out chan<- models.ResponseDescriptor) error {
	options := pf.options(func(res runner.Result) {
		if res.Error != "" || res.Failed {
			pf.logger.Debug().Str("input", res.Input).Str("error", res.Error).Msg("Probe failed")
			return
		}
		send(ctx, out, descriptorFromResult(res))
	})

	httpxRunner, err := runner.New(options)
	if err != nil {
		return common.WrapError(err, "failed to initialize httpx runner")
	}
	defer httpxRunner.Close()

	pf.logger.Info().Int("targets", len(pf.targets)).Msg("Probing targets")
	httpxRunner.RunEnumeration()
	return nil
}

func (pf *ProbeFeed) options(onResult func(runner.Result)) *runner.Options {
	method := pf.config.Method
	if method == "" {
		method = config.DefaultProbeMethod
	}
	return &runner.Options{
		Methods:           method,
		Silent:            true,
		Timeout:           withDefault(pf.config.TimeoutSecs, config.DefaultProbeTimeoutSecs),
		Retries:           pf.config.Retries,
		Threads:           withDefault(pf.config.Threads, config.DefaultProbeThreads),
		FollowRedirects:   pf.config.FollowRedirects,
		Proxy:             pf.config.Proxy,
		InputTargetHost:   pf.targets,
		OutputContentType: true,
		ContentLength:     true,
		StatusCode:        true,
		OmitBody:          true,
		HostMaxErrors:     -1,
		OnResult:          onResult,
	}
}

func descriptorFromResult(res runner.Result) models.ResponseDescriptor {
	desc := models.ResponseDescriptor{
		URL:          res.URL,
		ContentType:  res.ContentType,
		ResourceType: "other",
	}
	if res.ContentLength > 0 {
		desc.ContentLength = models.Int64Ptr(int64(res.ContentLength))
	}
	if res.Input != "" && res.Input != res.URL {
		desc.Origin = res.Input
	}
	return desc
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
