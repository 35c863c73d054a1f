package notifier

import (
	"context"

	"github.com/aleister1102/meshhound/internal/models"
)

// Notifier delivers a user-facing alert.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n models.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}
