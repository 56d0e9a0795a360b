package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier delivers an alert to one sink.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans an alert out to every configured sink. Nil entries are
// skipped; all delivery errors are reported together.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}
