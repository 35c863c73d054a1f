package feed

import (
	"context"
	"sync/atomic"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/aleister1102/meshhound/internal/pipeline"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Handler classifies one descriptor. *pipeline.Pipeline satisfies it.
type Handler interface {
	Handle(ctx context.Context, desc models.ResponseDescriptor) (pipeline.Result, error)
}

// Dispatcher fans descriptors from a Source out to a bounded set of
// concurrent Handle calls.
type Dispatcher struct {
	handler   Handler
	workers   int
	logger    zerolog.Logger
	malformed atomic.Int64
}

// NewDispatcher creates a dispatcher running at most workers handlers at once.
func NewDispatcher(handler Handler, workers int, logger zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		handler: handler,
		workers: workers,
		logger:  logger.With().Str("component", "Dispatcher").Logger(),
	}
}

// Run drains src until it finishes. In-flight descriptors are always
// handled to completion; the source's error is returned.
func (d *Dispatcher) Run(ctx context.Context, src Source) error {
	descs := make(chan models.ResponseDescriptor, d.workers*2)

	producer, producerCtx := errgroup.WithContext(ctx)
	producer.Go(func() error {
		defer close(descs)
		return src.Run(producerCtx, descs)
	})

	d.logger.Info().Str("source", src.Name()).Int("workers", d.workers).Msg("Feed started")

	workers := new(errgroup.Group)
	workers.SetLimit(d.workers)
	for desc := range descs {
		workers.Go(func() error {
			if _, err := d.handler.Handle(ctx, desc); err != nil {
				d.malformed.Add(1)
				d.logger.Debug().Err(err).Msg("Rejected descriptor")
			}
			return nil
		})
	}
	_ = workers.Wait()

	err := producer.Wait()
	if err != nil && ctx.Err() == nil {
		d.logger.Error().Err(err).Str("source", src.Name()).Msg("Feed failed")
		return err
	}
	d.logger.Info().Str("source", src.Name()).Msg("Feed finished")
	return nil
}

// Malformed counts descriptors the handler rejected outright.
func (d *Dispatcher) Malformed() int64 {
	return d.malformed.Load()
}
