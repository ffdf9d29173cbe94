package events

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Message is the envelope written to subscribers.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster publishes typed events to a Hub.
type Broadcaster struct {
	hub    *Hub
	now    func() time.Time
	logger *slog.Logger
}

func NewBroadcaster(hub *Hub, now func() time.Time, logger *slog.Logger) *Broadcaster {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{hub: hub, now: now, logger: logger}
}

func (b *Broadcaster) Publish(eventType string, payload any) {
	data, err := json.Marshal(Message{Type: eventType, Timestamp: b.now().UTC(), Payload: payload})
	if err != nil {
		b.logger.Error("encode event", "type", eventType, "error", err)
		return
	}
	b.hub.Broadcast(data)
}
