package messaging

import (
	"context"
	"errors"

	contractsv1 "wishpact/contracts/gen/events/v1"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}

// Fanout publishes to every target and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	var errs []error
	for _, target := range f {
		if err := target.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
