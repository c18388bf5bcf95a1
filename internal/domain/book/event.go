package book

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// 图书事件类型,同时作为消息的routing key
const (
	EventBookCreated  = "book.created"
	EventBookUpdated  = "book.updated"
	EventBookDeleted  = "book.deleted"
	EventBookReviewed = "book.reviewed"
)

// Event 图书变更事件,在事务提交后发布
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BookID     uint      `json:"bookId"`
	ActorID    uint      `json:"actorId"`
	Category   string    `json:"category,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent 根据图书当前状态构造事件
func NewEvent(eventType string, b *Book, actorID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookID:     b.ID,
		ActorID:    actorID,
		Category:   b.Category,
		Rating:     b.Rating,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher 事件发布
// 发布失败不影响已提交的写操作,调用方只记录日志
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
