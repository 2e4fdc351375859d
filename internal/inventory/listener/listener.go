package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventStockReceived = "StockReceived"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consolidator is the part of the variant engine the listener drives.
type Consolidator interface {
	Consolidate(ctx context.Context, productID, locationID string) (*dto.ConsolidationReport, error)
}

// InventoryListener re-consolidates a location's variant records whenever
// stock arrives there, so the next allocation session starts from one row
// per variant.
type InventoryListener struct {
	consumer     MessageReader
	consolidator Consolidator
	logger       logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, consolidator Consolidator, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer:     consumer,
		consolidator: consolidator,
		logger:       logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   StockPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type StockPayload struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event StockEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventStockReceived {
		return
	}
	if event.Payload.ProductID == "" || event.Payload.LocationID == "" {
		l.logger.Warn("Skipping StockReceived event without product or location", zap.String("event_id", event.EventID))
		return
	}

	l.logger.Info("Processing StockReceived event",
		zap.String("event_id", event.EventID),
		zap.String("product_id", event.Payload.ProductID),
		zap.String("location_id", event.Payload.LocationID),
		zap.Int("quantity", event.Payload.Quantity),
	)

	report, err := l.consolidator.Consolidate(ctx, event.Payload.ProductID, event.Payload.LocationID)
	if errors.Is(err, variant.ErrLocationBusy) {
		// the commit holding the lease consolidates first
		l.logger.Info("Skipping consolidation, location busy",
			zap.String("product_id", event.Payload.ProductID),
			zap.String("location_id", event.Payload.LocationID),
		)
		return
	}
	if err != nil {
		l.logger.Error("Failed to consolidate variant records",
			zap.String("product_id", event.Payload.ProductID),
			zap.String("location_id", event.Payload.LocationID),
			zap.Error(err),
		)
		return
	}
	if report.Failed > 0 {
		l.logger.Warn("Consolidation left duplicate groups",
			zap.String("product_id", event.Payload.ProductID),
			zap.String("location_id", event.Payload.LocationID),
			zap.Int("failed", report.Failed),
		)
	}
}
