package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/controller/queue"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

// MockEventUseCase records processed messages and fails on demand
type MockEventUseCase struct {
	mu        sync.Mutex
	processed []*model.QueueMessage
	err       error
}

func (m *MockEventUseCase) ProcessMessage(ctx context.Context, msg *model.QueueMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, msg)
	return m.err
}

func (m *MockEventUseCase) ProcessBatch(ctx context.Context, bodies [][]byte) (*model.BatchResult, error) {
	return &model.BatchResult{}, nil
}

func (m *MockEventUseCase) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processed)
}

func newPubSub() *gochannel.GoChannel {
	// Persistent delivers messages published before the consumer
	// subscribes, avoiding a publish/subscribe race in these tests.
	return gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
}

func publishQueueMessage(t *testing.T, pubSub *gochannel.GoChannel, topic string, queueMsg *model.QueueMessage) {
	t.Helper()
	data, err := json.Marshal(queueMsg)
	gt.NoError(t, err)
	gt.NoError(t, pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), data)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestConsumer_ProcessesMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub()
	uc := &MockEventUseCase{}
	consumer := queue.NewConsumer(pubSub, uc, "webhook-events")

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx)
	}()

	publishQueueMessage(t, pubSub, "webhook-events", &model.QueueMessage{
		EventType:  model.EventTypePush,
		DeliveryID: "d1",
		Payload:    json.RawMessage(`{}`),
	})

	waitFor(t, func() bool { return uc.count() == 1 })

	cancel()
	gt.NoError(t, <-done)

	gt.Value(t, uc.processed[0].DeliveryID).Equal("d1")
	gt.Value(t, uc.processed[0].EventType).Equal(model.EventTypePush)
}

func TestConsumer_AcksFailureByDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub()
	uc := &MockEventUseCase{err: errors.New("dispatch failed")}
	consumer := queue.NewConsumer(pubSub, uc, "webhook-events")

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx)
	}()

	publishQueueMessage(t, pubSub, "webhook-events", &model.QueueMessage{
		EventType:  model.EventTypePush,
		DeliveryID: "d1",
		Payload:    json.RawMessage(`{}`),
	})

	// The failed message is acknowledged and not redelivered
	waitFor(t, func() bool { return uc.count() == 1 })
	time.Sleep(50 * time.Millisecond)
	gt.Number(t, uc.count()).Equal(1)

	cancel()
	gt.NoError(t, <-done)
}

func TestConsumer_SkipsMalformedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub()
	uc := &MockEventUseCase{}
	consumer := queue.NewConsumer(pubSub, uc, "webhook-events")

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx)
	}()

	gt.NoError(t, pubSub.Publish("webhook-events",
		message.NewMessage(watermill.NewUUID(), []byte(`not json`))))
	publishQueueMessage(t, pubSub, "webhook-events", &model.QueueMessage{
		EventType:  model.EventTypePush,
		DeliveryID: "d2",
		Payload:    json.RawMessage(`{}`),
	})

	// The malformed message is dropped, the valid one still arrives
	waitFor(t, func() bool { return uc.count() == 1 })
	gt.Value(t, uc.processed[0].DeliveryID).Equal("d2")

	cancel()
	gt.NoError(t, <-done)
}
