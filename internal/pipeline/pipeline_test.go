package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/meshhound/internal/catalog"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var glbPrefix = []byte{0x67, 0x6C, 0x54, 0x46, 0x02, 0x00, 0x00, 0x00}

type stubFetcher struct {
	prefix []byte
	err    error
	calls  atomic.Int32
	limits []int
	mu     sync.Mutex
}

func (f *stubFetcher) FetchPrefix(_ context.Context, _ string, limit int) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.prefix, nil
}

type stubGuard struct{ allow bool }

func (g stubGuard) Allow() bool { return g.allow }

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.DiscoveryEvent
}

func (n *recordingNotifier) NotifyDiscovery(ev models.DiscoveryEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, fetcher PrefixFetcher, settings Settings) (*Pipeline, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New(nil, zerolog.Nop())
	p, err := NewPipelineBuilder(zerolog.Nop()).
		WithCatalog(cat).
		WithFetcher(fetcher).
		WithSettings(settings).
		WithClock(func() time.Time { return fixedNow }).
		Build()
	require.NoError(t, err)
	return p, cat
}

func TestBuild_RequiresCatalog(t *testing.T) {
	_, err := NewPipelineBuilder(zerolog.Nop()).Build()
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHandle_ExtensionMatch(t *testing.T) {
	fetcher := &stubFetcher{}
	p, cat := newTestPipeline(t, fetcher, Settings{})
	events, unsub := p.Events().Subscribe(4)
	defer unsub()

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://cdn.example.com/a/model.glb?v=2",
		Origin:        "https://shop.example.com",
		ContentLength: models.Int64Ptr(2048),
		ContentType:   "model/gltf-binary",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)

	stored, ok := cat.Get("https://cdn.example.com/a/model.glb?v=2")
	require.True(t, ok)
	assert.Equal(t, models.FormatGLB, stored.Format)
	assert.Equal(t, "https://shop.example.com", stored.Origin)
	assert.Equal(t, "2 KB", stored.Size)
	assert.Equal(t, int64(2048), *stored.SizeBytes)
	assert.Equal(t, fixedNow, stored.DiscoveredAt)

	select {
	case ev := <-events:
		assert.Equal(t, stored.Event(), ev)
	default:
		t.Fatal("expected a discovery event")
	}
	assert.Equal(t, int32(0), fetcher.calls.Load(), "an extension match never fetches")
}

func TestHandle_DeepScanMagicMatch(t *testing.T) {
	fetcher := &stubFetcher{prefix: glbPrefix}
	p, cat := newTestPipeline(t, fetcher, Settings{DeepScanEnabled: true})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentLength: models.Int64Ptr(1048576),
		ContentType:   "application/octet-stream",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)

	stored, ok := cat.Get("https://x/data.bin")
	require.True(t, ok)
	assert.Equal(t, models.FormatGLB, stored.Format)
	assert.Equal(t, models.UnknownOrigin, stored.Origin)
	assert.Equal(t, "1 MB", stored.Size)
	assert.Equal(t, []int{DefaultPrefixBytes}, fetcher.limits)
	assert.Equal(t, int64(1), p.Stats().DeepScans)
}

func TestHandle_DescriptorFetcherPreferred(t *testing.T) {
	fallback := &stubFetcher{prefix: glbPrefix}
	p, cat := newTestPipeline(t, fallback, Settings{DeepScanEnabled: true})

	var own atomic.Int32
	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/blob",
		ContentLength: models.Int64Ptr(4096),
		ContentType:   "application/octet-stream",
		FetchPrefix: func(_ context.Context, limit int) ([]byte, error) {
			own.Add(1)
			return []byte("ply\nformat ascii 1.0\n"), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)
	assert.Equal(t, int32(1), own.Load())
	assert.Equal(t, int32(0), fallback.calls.Load())

	stored, _ := cat.Get("https://x/blob")
	assert.Equal(t, models.FormatPLY, stored.Format)
}

func TestHandle_Declined(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		desc     models.ResponseDescriptor
	}{
		{
			name:     "html is not generic",
			settings: Settings{DeepScanEnabled: true},
			desc:     models.ResponseDescriptor{URL: "https://x/page", ContentType: "text/html", ContentLength: models.Int64Ptr(2048)},
		},
		{
			name:     "deep scan disabled",
			settings: Settings{},
			desc:     models.ResponseDescriptor{URL: "https://x/data.bin", ContentType: "application/octet-stream", ContentLength: models.Int64Ptr(2048)},
		},
		{
			name:     "unknown size",
			settings: Settings{DeepScanEnabled: true},
			desc:     models.ResponseDescriptor{URL: "https://x/data.bin", ContentType: "application/octet-stream"},
		},
		{
			name:     "zero size",
			settings: Settings{DeepScanEnabled: true},
			desc:     models.ResponseDescriptor{URL: "https://x/data.bin", ContentType: "application/octet-stream", ContentLength: models.Int64Ptr(0)},
		},
		{
			name:     "over the bound",
			settings: Settings{DeepScanEnabled: true},
			desc:     models.ResponseDescriptor{URL: "https://x/data.bin", ContentType: "application/octet-stream", ContentLength: models.Int64Ptr(100*1024*1024 + 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{prefix: glbPrefix}
			p, cat := newTestPipeline(t, fetcher, tt.settings)

			res, err := p.Handle(context.Background(), tt.desc)
			require.NoError(t, err)
			assert.Equal(t, OutcomeDeclined, res.Outcome)
			assert.Equal(t, 0, cat.Len())
			assert.Equal(t, int32(0), fetcher.calls.Load())
		})
	}
}

func TestHandle_SizeAtBoundIsScanned(t *testing.T) {
	fetcher := &stubFetcher{prefix: glbPrefix}
	p, _ := newTestPipeline(t, fetcher, Settings{DeepScanEnabled: true})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/edge.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(100 * 1024 * 1024),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)
}

func TestHandle_GuardDeclines(t *testing.T) {
	fetcher := &stubFetcher{prefix: glbPrefix}
	cat := catalog.New(nil, zerolog.Nop())
	p, err := NewPipelineBuilder(zerolog.Nop()).
		WithCatalog(cat).
		WithFetcher(fetcher).
		WithGuard(stubGuard{allow: false}).
		WithSettings(Settings{DeepScanEnabled: true}).
		Build()
	require.NoError(t, err)

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestHandle_FetchFailureIsSoftMiss(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection reset")}
	p, cat := newTestPipeline(t, fetcher, Settings{DeepScanEnabled: true})
	events, unsub := p.Events().Subscribe(1)
	defer unsub()

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetchFailed, res.Outcome)
	assert.Equal(t, 0, cat.Len())
	assert.Empty(t, events)
	assert.Equal(t, int64(1), p.Stats().FetchFailed)
}

func TestHandle_FetchTimeout(t *testing.T) {
	cat := catalog.New(nil, zerolog.Nop())
	cfg := DefaultConfig()
	cfg.FetchTimeout = 20 * time.Millisecond
	p, err := NewPipelineBuilder(zerolog.Nop()).
		WithCatalog(cat).
		WithConfig(cfg).
		WithSettings(Settings{DeepScanEnabled: true}).
		Build()
	require.NoError(t, err)

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/slow.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
		FetchPrefix: func(ctx context.Context, _ int) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetchFailed, res.Outcome)
}

func TestHandle_NoFetcherIsSoftMiss(t *testing.T) {
	p, cat := newTestPipeline(t, nil, Settings{DeepScanEnabled: true})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetchFailed, res.Outcome)
	assert.Equal(t, 0, cat.Len())
}

func TestHandle_Inconclusive(t *testing.T) {
	fetcher := &stubFetcher{prefix: []byte("<!doctype html>")}
	p, cat := newTestPipeline(t, fetcher, Settings{DeepScanEnabled: true})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInconclusive, res.Outcome)
	assert.Equal(t, 0, cat.Len())
}

func TestHandle_Duplicate(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Settings{})
	events, unsub := p.Events().Subscribe(4)
	defer unsub()

	desc := models.ResponseDescriptor{URL: "https://x/model.stl"}
	first, err := p.Handle(context.Background(), desc)
	require.NoError(t, err)
	second, err := p.Handle(context.Background(), desc)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDetected, first.Outcome)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Len(t, events, 1)
}

func TestHandle_ConcurrentSameURLEmitsOnce(t *testing.T) {
	p, cat := newTestPipeline(t, nil, Settings{})
	events, unsub := p.Events().Subscribe(64)
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/race.glb"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cat.Len())
	assert.Len(t, events, 1)
	assert.Equal(t, int64(1), p.Stats().Detected)
	assert.Equal(t, int64(31), p.Stats().Duplicate)
}

func TestHandle_RejectsEmptyURL(t *testing.T) {
	p, cat := newTestPipeline(t, nil, Settings{})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{URL: "   ", ContentType: "model/gltf-binary"})
	assert.ErrorIs(t, err, ErrMalformedDescriptor)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, 0, cat.Len())
}

func TestHandle_FiltersResourceType(t *testing.T) {
	p, cat := newTestPipeline(t, nil, Settings{})

	res, err := p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/model.glb", ResourceType: "image"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFiltered, res.Outcome)

	res, err = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/model.glb", ResourceType: "XMLHttpRequest"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)
	assert.Equal(t, 1, cat.Len())
}

func TestHandle_NotificationToggle(t *testing.T) {
	notifier := &recordingNotifier{}
	cat := catalog.New(nil, zerolog.Nop())
	p, err := NewPipelineBuilder(zerolog.Nop()).
		WithCatalog(cat).
		WithNotifier(notifier).
		Build()
	require.NoError(t, err)

	_, err = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/quiet.glb"})
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.count())

	p.UpdateSettings(Settings{NotificationsEnabled: true})
	assert.True(t, p.Settings().NotificationsEnabled)

	_, err = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/loud.glb"})
	require.NoError(t, err)
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "https://x/loud.glb", notifier.events[0].URL)
	assert.Equal(t, models.FormatGLB, notifier.events[0].Format)

	// Duplicates never notify.
	_, err = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/loud.glb"})
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())
}

func TestUpdateSettings_TogglesDeepScan(t *testing.T) {
	fetcher := &stubFetcher{prefix: glbPrefix}
	p, _ := newTestPipeline(t, fetcher, Settings{})
	desc := models.ResponseDescriptor{
		URL:           "https://x/data.bin",
		ContentType:   "application/octet-stream",
		ContentLength: models.Int64Ptr(2048),
	}

	res, err := p.Handle(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, res.Outcome)

	p.UpdateSettings(Settings{DeepScanEnabled: true})
	res, err = p.Handle(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDetected, res.Outcome)
}

func TestStats_Total(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Settings{})
	_, _ = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/a.glb"})
	_, _ = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/a.glb"})
	_, _ = p.Handle(context.Background(), models.ResponseDescriptor{URL: "https://x/page.html"})
	_, _ = p.Handle(context.Background(), models.ResponseDescriptor{})

	snap := p.Stats()
	assert.Equal(t, int64(4), snap.Total())
	assert.Equal(t, int64(1), snap.Detected)
	assert.Equal(t, int64(1), snap.Duplicate)
	assert.Equal(t, int64(1), snap.Declined)
	assert.Equal(t, int64(1), snap.Rejected)
}

func TestConfigFromApp(t *testing.T) {
	app := config.NewDefaultDetectionConfig()
	app.PrefixBytes = 1024
	app.FetchTimeoutSecs = 3
	app.DeepScanMaxSizeBytes = 4096
	app.ResourceTypes = []string{"media"}

	cfg := ConfigFromApp(app)
	assert.Equal(t, 1024, cfg.PrefixBytes)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(4096), cfg.Policy.MaxSizeBytes)
	assert.Equal(t, []string{"media"}, cfg.ResourceTypes)
	assert.Equal(t, app.GenericContentTypes, cfg.Policy.GenericContentTypes)
}
