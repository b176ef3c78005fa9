package streaming

import (
	"context"
	"strconv"
	"sync"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

const subscriberBuffer = 100

type subscriber struct {
	ch  chan *AnalysisEvent
	sub *Subscription
}

// EventBus fans analysis events out to NATS (when connected) and to local
// subscribers
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]subscriber
	nextID      int
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]subscriber),
	}
}

// Publish sends an event to NATS and every matching local subscriber.
// Full subscriber channels drop the event.
func (eb *EventBus) Publish(ctx context.Context, event *AnalysisEvent) error {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.PublishAnalysisEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// PublishCallVerdict publishes scam call verdicts; other verdicts are ignored
func (eb *EventBus) PublishCallVerdict(ctx context.Context, v *models.CallVerdict) error {
	if !v.IsScam {
		return nil
	}
	return eb.Publish(ctx, NewCallEvent(v))
}

// PublishSMSVerdict publishes scam message verdicts; other verdicts are ignored
func (eb *EventBus) PublishSMSVerdict(ctx context.Context, v *models.MessageVerdict) error {
	if !v.IsScam {
		return nil
	}
	return eb.Publish(ctx, NewSMSEvent(v))
}

// Subscribe registers a local subscriber and returns its channel and an
// unsubscribe function
func (eb *EventBus) Subscribe(sub *Subscription) (<-chan *AnalysisEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	ch := make(chan *AnalysisEvent, subscriberBuffer)
	eb.subscribers[id] = subscriber{ch: ch, sub: sub}
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if s, ok := eb.subscribers[id]; ok {
			close(s.ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close drops every subscriber and closes NATS
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}

	if eb.nats != nil {
		eb.nats.Close()
	}
}
