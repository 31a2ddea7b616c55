package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sutraflow/sutra/pkg/eventbus"
	"github.com/sutraflow/sutra/pkg/events"
)

// RecordingEventBus collects published events in memory so tests can assert
// on the lifecycle stream.
type RecordingEventBus struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func NewRecordingEventBus() *RecordingEventBus {
	return &RecordingEventBus{}
}

func (b *RecordingEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, event)

	return nil
}

func (b *RecordingEventBus) Subscribe(_ context.Context) error {
	return nil
}

func (b *RecordingEventBus) Handle(_ events.EventType, _ eventbus.EventHandler) error {
	return nil
}

func (b *RecordingEventBus) Close() error {
	return nil
}

func (b *RecordingEventBus) GenerateID() string {
	return uuid.New().String()
}

// Published returns a copy of the captured events in publish order.
func (b *RecordingEventBus) Published() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]eventbus.Event, len(b.published))
	copy(out, b.published)

	return out
}

// Types returns the captured event types in publish order.
func (b *RecordingEventBus) Types() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := make([]events.EventType, 0, len(b.published))
	for _, event := range b.published {
		types = append(types, event.GetType())
	}

	return types
}
