package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event 提交后对外发布的领域事件
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	ActorID    uuid.UUID              `json:"actorId"`
	ResourceID string                 `json:"resourceId"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func NewEvent(eventType string, actorID uuid.UUID, resourceID string, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		ResourceID: resourceID,
		Data:       data,
	}
}

// Publisher 领域事件发布
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher 未启用消息总线时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

// MemoryPublisher 在内存中记录事件，用于测试
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events 返回已记录事件的副本
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types 按发布顺序返回事件类型
func (p *MemoryPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
