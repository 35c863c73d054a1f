package notifier

import (
	"context"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// LogNotifier writes alerts to the log. It is the fallback when no webhook
// is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "LogNotifier").Logger()}
}

func (ln *LogNotifier) Notify(_ context.Context, n models.Notification) error {
	ln.logger.Info().Str("title", n.Title).Str("url", n.URL).Msg(n.Message)
	return nil
}
