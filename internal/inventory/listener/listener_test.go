package listener

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockConsolidator struct {
	mock.Mock
}

func (m *mockConsolidator) Consolidate(ctx context.Context, productID, locationID string) (*dto.ConsolidationReport, error) {
	args := m.Called(ctx, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ConsolidationReport), args.Error(1)
}

// scriptedReader replays messages, then cancels the listener.
type scriptedReader struct {
	messages [][]byte
	cancel   context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return kafka.Message{Value: msg}, nil
}

func TestProcessStockReceived(t *testing.T) {
	c := new(mockConsolidator)
	c.On("Consolidate", mock.Anything, "p1", "l1").Return(&dto.ConsolidationReport{Merged: 1}, nil).Once()
	l := NewInventoryListener(nil, c, logger.NewNop())

	l.processMessage(context.Background(), []byte(`{"event_id":"e1","event_type":"StockReceived","payload":{"product_id":"p1","location_id":"l1","quantity":5}}`))

	c.AssertExpectations(t)
}

func TestProcessIgnoresOtherEvents(t *testing.T) {
	c := new(mockConsolidator)
	l := NewInventoryListener(nil, c, logger.NewNop())

	l.processMessage(context.Background(), []byte(`{"event_type":"OrderCreated","payload":{"product_id":"p1","location_id":"l1"}}`))
	l.processMessage(context.Background(), []byte(`not json`))
	l.processMessage(context.Background(), []byte(`{"event_type":"StockReceived","payload":{"product_id":"p1"}}`))

	c.AssertNotCalled(t, "Consolidate", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessConsolidationErrorIsLogged(t *testing.T) {
	c := new(mockConsolidator)
	c.On("Consolidate", mock.Anything, "p1", "l1").Return(nil, errors.New("db down"))
	l := NewInventoryListener(nil, c, logger.NewNop())

	assert.NotPanics(t, func() {
		l.processMessage(context.Background(), []byte(`{"event_type":"StockReceived","payload":{"product_id":"p1","location_id":"l1"}}`))
	})
}

func TestStartConsumesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := new(mockConsolidator)
	c.On("Consolidate", mock.Anything, "p1", "l1").Return(&dto.ConsolidationReport{}, nil).Twice()
	reader := &scriptedReader{
		messages: [][]byte{
			[]byte(`{"event_type":"StockReceived","payload":{"product_id":"p1","location_id":"l1","quantity":2}}`),
			[]byte(`{"event_type":"StockReceived","payload":{"product_id":"p1","location_id":"l1","quantity":3}}`),
		},
		cancel: cancel,
	}

	NewInventoryListener(reader, c, logger.NewNop()).Start(ctx)

	c.AssertExpectations(t)
}
