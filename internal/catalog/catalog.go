package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

const defaultWriteTimeout = 10 * time.Second

// Persister writes a whole catalog snapshot.
type Persister interface {
	Save(ctx context.Context, records []models.FileRecord) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, records []models.FileRecord) error

// Save calls f.
func (f PersisterFunc) Save(ctx context.Context, records []models.FileRecord) error {
	return f(ctx, records)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithWriteTimeout bounds each background snapshot write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithClock replaces time.Now for records inserted without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// Catalog is the deduplicating store of discovered files. All mutations go
// through one mutex, so the "already present" check and the insert are atomic.
// Snapshot writes happen on a background goroutine and never block callers.
type Catalog struct {
	mu      sync.Mutex
	records map[string]models.FileRecord
	order   []string
	lastAt  time.Time

	// generation counts mutations; saved is the newest generation on disk.
	generation uint64
	saved      uint64
	lastErr    error

	persister    Persister
	writeTimeout time.Duration
	writeMu      sync.Mutex
	signal       chan struct{}
	done         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	now    func() time.Time
	logger zerolog.Logger
}

// New creates an empty catalog. A nil persister keeps the catalog in memory
// only.
func New(persister Persister, logger zerolog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		records:      make(map[string]models.FileRecord),
		persister:    persister,
		writeTimeout: defaultWriteTimeout,
		signal:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		now:          time.Now,
		logger:       logger.With().Str("component", "Catalog").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.persister != nil {
		c.wg.Add(1)
		go c.writeLoop()
	}
	return c
}

// Restore seeds the catalog from a persisted snapshot, replacing whatever it
// held. Records keep their identity and timestamps; later duplicates of a URL
// are dropped. No write is scheduled.
func (c *Catalog) Restore(records []models.FileRecord) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]models.FileRecord, len(records))
	c.order = make([]string, 0, len(records))
	for _, record := range records {
		if record.URL == "" {
			continue
		}
		if _, exists := c.records[record.URL]; exists {
			continue
		}
		c.records[record.URL] = record
		c.order = append(c.order, record.URL)
		if record.DiscoveredAt.After(c.lastAt) {
			c.lastAt = record.DiscoveredAt
		}
	}
	c.saved = c.generation

	c.logger.Info().Int("restored", len(c.order)).Msg("Catalog restored from snapshot")
	return len(c.order)
}

// Insert stores record unless its URL is empty or already present. It returns
// true only for the call that actually added the URL.
func (c *Catalog) Insert(record models.FileRecord) bool {
	if record.URL == "" {
		return false
	}

	c.mu.Lock()
	if _, exists := c.records[record.URL]; exists {
		c.mu.Unlock()
		return false
	}

	if record.DiscoveredAt.IsZero() {
		record.DiscoveredAt = c.now()
	}
	record.DiscoveredAt = record.DiscoveredAt.UTC()
	if record.DiscoveredAt.Before(c.lastAt) {
		record.DiscoveredAt = c.lastAt
	}
	c.lastAt = record.DiscoveredAt

	c.records[record.URL] = record
	c.order = append(c.order, record.URL)
	c.generation++
	c.mu.Unlock()

	c.requestWrite()
	return true
}

// List returns all records in insertion order.
func (c *Catalog) List() []models.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listLocked()
}

// Get returns the record for url, if present.
func (c *Catalog) Get(url string) (models.FileRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[url]
	return record, ok
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Clear removes every record and schedules a write of the empty state.
func (c *Catalog) Clear() {
	c.mu.Lock()
	removed := len(c.order)
	c.records = make(map[string]models.FileRecord)
	c.order = nil
	c.generation++
	c.mu.Unlock()

	c.logger.Info().Int("removed", removed).Msg("Catalog cleared")
	c.requestWrite()
}

// Dirty reports whether the newest state has not been written yet.
func (c *Catalog) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persister != nil && c.generation != c.saved
}

// LastWriteError returns the error of the most recent failed write, or nil
// once a later write succeeded.
func (c *Catalog) LastWriteError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Flush synchronously writes the current snapshot if it is dirty.
func (c *Catalog) Flush(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	return c.writeSnapshot(ctx)
}

// Close stops the background writer and flushes pending state.
func (c *Catalog) Close(ctx context.Context) error {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
	return c.Flush(ctx)
}

func (c *Catalog) listLocked() []models.FileRecord {
	out := make([]models.FileRecord, 0, len(c.order))
	for _, url := range c.order {
		out = append(out, c.records[url])
	}
	return out
}

func (c *Catalog) requestWrite() {
	if c.persister == nil {
		return
	}
	select {
	case c.signal <- struct{}{}:
	default:
		// a write is already queued and will pick up this mutation
	}
}

func (c *Catalog) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.signal:
			ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
			_ = c.writeSnapshot(ctx)
			cancel()
		}
	}
}

func (c *Catalog) writeSnapshot(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	gen := c.generation
	if gen == c.saved {
		c.mu.Unlock()
		return nil
	}
	snapshot := c.listLocked()
	c.mu.Unlock()

	err := c.persister.Save(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		c.logger.Warn().Err(err).Int("records", len(snapshot)).Msg("Snapshot write failed, will retry on next change")
		return err
	}
	if gen > c.saved {
		c.saved = gen
	}
	c.lastErr = nil
	c.logger.Debug().Int("records", len(snapshot)).Uint64("generation", gen).Msg("Snapshot written")
	return nil
}
