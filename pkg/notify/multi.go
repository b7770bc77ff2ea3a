package notify

import (
	"context"
	"errors"

	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/model"
)

type Notifier interface {
	Notify(ctx context.Context, event model.Event) error
}

type channel struct {
	name     string
	notifier Notifier
}

// Multi delivers every event to all registered channels. One failing channel does not
// stop the others.
type Multi struct {
	channels []channel
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Add(name string, n Notifier) *Multi {
	m.channels = append(m.channels, channel{name: name, notifier: n})
	return m
}

func (m *Multi) Notify(ctx context.Context, event model.Event) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.notifier.Notify(ctx, event); err != nil {
			metrics.NotificationFailures.WithLabelValues(ch.name).Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
