package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/pathlink/pkg/logging"
)

// PropagationHistory is how many propagation events a new subscriber
// is replayed. Document subscribers only get the current status.
const PropagationHistory = 20

// subscriberBuffer bounds each subscriber's channel; a slow client loses
// events rather than blocking a mutation.
const subscriberBuffer = 100

// topicState is the history and audience of one topic
type topicState struct {
	keep    int // Events retained for replay
	version int
	history []Event
	subs    map[*sseSubscription]struct{}
}

func (t *topicState) record(event Event) {
	t.history = append(t.history, event)
	if len(t.history) > t.keep {
		t.history = t.history[len(t.history)-t.keep:]
	}
}

// SSEPublisher fans document and propagation events out to Server-Sent
// Events clients. A new subscriber first receives the retained history
// of its topic: the latest document status, or the recent propagations.
type SSEPublisher struct {
	mu     sync.RWMutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a publisher for the document and propagation
// topics
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		topics: map[string]*topicState{
			TopicDocument:    {keep: 1, subs: make(map[*sseSubscription]struct{})},
			TopicPropagation: {keep: PropagationHistory, subs: make(map[*sseSubscription]struct{})},
		},
	}
}

// Subscribe joins a topic. Cancelling ctx ends the subscription.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}
	t, ok := p.topics[topic]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("unknown topic %q", topic)
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	// Replaying under the lock keeps history ahead of anything published
	// after the subscription exists.
	for _, event := range t.history {
		sub.events <- event
	}
	t.subs[sub] = struct{}{}
	replayed := len(t.history)
	p.mu.Unlock()

	if replayed > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", replayed)
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// PublishDocument sends a document status. It replaces the status new
// subscribers are replayed.
func (p *SSEPublisher) PublishDocument(eventType string, status DocumentStatus) error {
	return p.publish(TopicDocument, eventType, status)
}

// PublishPropagation sends the report of one mutation
func (p *SSEPublisher) PublishPropagation(eventType string, data PropagationData) error {
	return p.publish(TopicPropagation, eventType, data)
}

func (p *SSEPublisher) publish(topic, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	t := p.topics[topic]
	t.version++
	event := Event{Topic: topic, Type: eventType, Data: payload, Version: t.version}
	t.record(event)

	for sub := range t.subs {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "version", event.Version)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions to a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if t, ok := p.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}

// Close ends every subscription. Later calls to Subscribe and the
// publish methods fail.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = make(map[*sseSubscription]struct{})
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close leaves the topic. The channel is closed only by the publisher.
func (s *sseSubscription) Close() error {
	s.once.Do(func() {
		s.publisher.unsubscribe(s)
	})
	return nil
}

// WriteSSE writes one event frame: "id: {version}\nevent: {type}\ndata: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Version, event.Type, frame)
	return err
}
