// Package events announces committed allocations to downstream consumers
// such as the storefront catalog.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
)

type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Publisher struct {
	producer Producer
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishCommitted keys events by product and location so one location's
// commits stay ordered on a single partition.
func (p *Publisher) PublishCommitted(ctx context.Context, event *dto.CommittedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}
	key := event.ProductID + ":" + event.LocationID
	if err := p.producer.Publish(ctx, key, value); err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType, err)
	}
	return nil
}
