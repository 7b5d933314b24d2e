package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogDispatcher writes notifications to the log. Used when SMTP is not
// configured, and in tests.
type LogDispatcher struct {
	Log zerolog.Logger
}

func (d *LogDispatcher) Send(ctx context.Context, ev Event) error {
	d.Log.Info().
		Str("kind", ev.Kind).
		Str("ref", ev.Ref).
		Str("to", ev.To).
		Msg(ev.Subject)
	return nil
}
