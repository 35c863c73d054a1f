package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aleister1102/meshhound/internal/classifier"
	"github.com/aleister1102/meshhound/internal/deepscan"
	"github.com/aleister1102/meshhound/internal/feed"
	"github.com/aleister1102/meshhound/internal/httpclient"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/aleister1102/meshhound/internal/notifier"
	"github.com/aleister1102/meshhound/internal/pipeline"
	"github.com/spf13/cobra"
)

// detectionFlags are the runtime toggles shared by every feed command.
type detectionFlags struct {
	deepScan bool
	notify   bool
	workers  int
}

func (f *detectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.deepScan, "deep-scan", false, "Sniff generic binary responses (overrides detection_config)")
	cmd.Flags().BoolVar(&f.notify, "notify", false, "Send a notification per discovery (overrides notification_config)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Concurrent detections (overrides detection_config)")
}

// settings applies the flags the user set on top of the configured values.
func (f *detectionFlags) settings(cmd *cobra.Command, current pipeline.Settings) pipeline.Settings {
	if cmd.Flags().Changed("deep-scan") {
		current.DeepScanEnabled = f.deepScan
	}
	if cmd.Flags().Changed("notify") {
		current.NotificationsEnabled = f.notify
	}
	return current
}

func (a *application) buildPipeline() (*pipeline.Pipeline, *notifier.NotificationHelper, error) {
	client, err := httpclient.NewHTTPClientBuilder(a.logger).
		WithAppConfig(a.cfg.HTTPClientConfig).
		Build()
	if err != nil {
		return nil, nil, err
	}

	helper, err := notifier.NewNotificationHelperFromConfig(a.cfg.NotificationConfig, client, a.logger)
	if err != nil {
		return nil, nil, err
	}

	signatures := classifier.DefaultSignatures().WithExtraExtensions(a.cfg.DetectionConfig.ExtraExtensions)

	builder := pipeline.NewPipelineBuilder(a.logger).
		WithCatalog(a.catalog).
		WithClassifier(classifier.New(signatures)).
		WithFetcher(client).
		WithNotifier(helper).
		WithConfig(pipeline.ConfigFromApp(a.cfg.DetectionConfig)).
		WithSettings(pipeline.Settings{
			DeepScanEnabled:      a.cfg.DetectionConfig.DeepScanEnabled,
			NotificationsEnabled: a.cfg.NotificationConfig.Enabled,
		})

	if rg := a.cfg.ResourceGuardConfig; rg.Enabled {
		builder.WithGuard(deepscan.NewResourceGuard(deepscan.GuardConfig{
			MaxMemoryPercent: rg.MaxMemoryPercent,
			MaxAllocMB:       rg.MaxAllocMB,
			SampleInterval:   rg.SampleInterval(),
		}, a.logger))
	}

	p, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return p, helper, nil
}

// runFeed drives src through a fresh pipeline, printing discoveries as they
// arrive.
func (a *application) runFeed(cmd *cobra.Command, flags *detectionFlags, src feed.Source) error {
	ctx := cmd.Context()

	p, helper, err := a.buildPipeline()
	if err != nil {
		return err
	}
	if next := flags.settings(cmd, p.Settings()); next != p.Settings() {
		p.UpdateSettings(next)
	}

	events, unsubscribe := p.Events().Subscribe(256)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range events {
			printDiscovery(cmd.OutOrStdout(), ev)
		}
	}()

	workers := a.cfg.DetectionConfig.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}
	runErr := feed.NewDispatcher(p, workers, a.logger).Run(ctx, src)

	unsubscribe()
	<-printed
	p.Events().Close()

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := helper.Wait(waitCtx); err != nil {
		a.logger.Warn().Err(err).Msg("Gave up waiting for notifications")
	}

	if dropped := p.Events().Dropped(); dropped > 0 {
		a.logger.Warn().Int64("dropped", dropped).Msg("Some discoveries were not printed")
	}
	p.Stats().Log(a.logger)
	return runErr
}

func printDiscovery(out io.Writer, ev models.DiscoveryEvent) {
	fmt.Fprintf(out, "[%s] %s (size: %s, origin: %s)\n", ev.Format.Badge(), ev.URL, ev.SizeFormatted, ev.Origin)
}
