// Package widget defines the outbound signal to the home-screen widget
// collaborator. The widget's visual surface lives elsewhere; after every
// successful background refresh it is told to redraw from the persisted
// cache.
package widget

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier is the redraw signal.
type Notifier interface {
	Redraw(ctx context.Context) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context) error

func (f NotifierFunc) Redraw(ctx context.Context) error { return f(ctx) }

// LogNotifier records the signal without a widget process attached. Used as
// the default wiring.
func LogNotifier() Notifier {
	return NotifierFunc(func(context.Context) error {
		log.Debug().Msg("widget redraw signalled")
		return nil
	})
}
