package deepscan

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage is one sample of memory pressure.
type ResourceUsage struct {
	AllocMB              int64   // heap allocated by this process
	SystemMemUsedPercent float64 // 0-100
}

// UsageSampler returns the current resource usage.
type UsageSampler func() (ResourceUsage, error)

// GuardConfig configures the ResourceGuard.
type GuardConfig struct {
	MaxMemoryPercent float64       // decline while system memory usage is above this (0-100)
	MaxAllocMB       int64         // decline while this process holds more heap; 0 disables
	SampleInterval   time.Duration // samples are reused for this long
}

// ResourceGuard declines deep scans while the host is under memory pressure.
// A refused scan is treated by the pipeline like a declined gate.
type ResourceGuard struct {
	config  GuardConfig
	logger  zerolog.Logger
	sampler UsageSampler

	mu         sync.Mutex
	lastSample ResourceUsage
	lastErr    error
	sampledAt  time.Time
	now        func() time.Time
}

// NewResourceGuard creates a guard using gopsutil for system memory.
func NewResourceGuard(config GuardConfig, logger zerolog.Logger) *ResourceGuard {
	return NewResourceGuardWithSampler(config, SystemUsage, logger)
}

// NewResourceGuardWithSampler creates a guard with a custom sampler.
func NewResourceGuardWithSampler(config GuardConfig, sampler UsageSampler, logger zerolog.Logger) *ResourceGuard {
	if config.MaxMemoryPercent <= 0 {
		config.MaxMemoryPercent = 90
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = 2 * time.Second
	}
	return &ResourceGuard{
		config:  config,
		logger:  logger.With().Str("component", "ResourceGuard").Logger(),
		sampler: sampler,
		now:     time.Now,
	}
}

// Allow reports whether a deep scan may start now. Sampling errors fail open:
// the guard only exists to shed load, not to block detection.
func (rg *ResourceGuard) Allow() bool {
	usage, err := rg.sample()
	if err != nil {
		rg.logger.Debug().Err(err).Msg("Resource sample failed, allowing deep scan")
		return true
	}

	if usage.SystemMemUsedPercent > rg.config.MaxMemoryPercent {
		rg.logger.Debug().
			Float64("system_mem_percent", usage.SystemMemUsedPercent).
			Float64("threshold_percent", rg.config.MaxMemoryPercent).
			Msg("System memory above threshold, skipping deep scan")
		return false
	}
	if rg.config.MaxAllocMB > 0 && usage.AllocMB > rg.config.MaxAllocMB {
		rg.logger.Debug().
			Int64("alloc_mb", usage.AllocMB).
			Int64("max_alloc_mb", rg.config.MaxAllocMB).
			Msg("Process memory above limit, skipping deep scan")
		return false
	}
	return true
}

func (rg *ResourceGuard) sample() (ResourceUsage, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	now := rg.now()
	if !rg.sampledAt.IsZero() && now.Sub(rg.sampledAt) < rg.config.SampleInterval {
		return rg.lastSample, rg.lastErr
	}

	rg.lastSample, rg.lastErr = rg.sampler()
	rg.sampledAt = now
	return rg.lastSample, rg.lastErr
}

// SystemUsage samples process heap and system memory.
func SystemUsage() (ResourceUsage, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB: int64(m.Alloc / 1024 / 1024),
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return usage, fmt.Errorf("failed to get system memory stats: %w", err)
	}
	usage.SystemMemUsedPercent = vmStat.UsedPercent
	return usage, nil
}
