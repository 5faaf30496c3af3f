package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
)

// AllSchools is the topic receiving every school event.
const AllSchools = "*"

// Event is one server-sent event payload.
type Event struct {
	Name     string `json:"event"`
	SchoolID string `json:"school_id"`
	Data     any    `json:"data"`
}

// Streams fans school notifications out to connected SSE clients.
// Subscribers are keyed by topic: a school id or AllSchools.
type Streams struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

var _ mediator.Module = (*Streams)(nil)

// NewStreams creates an empty Streams. A nil logger discards output.
func NewStreams(logger *slog.Logger) *Streams {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Streams{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client for topic and returns its channel and a cancel func.
func (sm *Streams) Subscribe(topic string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to every client of topic. Slow clients lose messages.
func (sm *Streams) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "topic", topic)
		}
	}
}

// Register subscribes the streams to the school notifications.
func (sm *Streams) Register(r *mediator.Registry) error {
	return errors.Join(
		mediator.SubscribeFunc(r, func(ctx context.Context, n domain.SchoolCreated) error {
			return sm.publish(Event{Name: "school.created", SchoolID: n.School.ID, Data: n})
		}),
		mediator.SubscribeFunc(r, func(ctx context.Context, n domain.SchoolRenamed) error {
			return sm.publish(Event{Name: "school.renamed", SchoolID: n.SchoolID, Data: n})
		}),
		mediator.SubscribeFunc(r, func(ctx context.Context, n domain.SchoolDeleted) error {
			return sm.publish(Event{Name: "school.deleted", SchoolID: n.SchoolID, Data: n})
		}),
	)
}

func (sm *Streams) publish(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", e.Name, err)
	}
	sm.Broadcast(AllSchools, string(payload))
	sm.Broadcast(e.SchoolID, string(payload))
	return nil
}
