package pubsub

import (
	"context"
	"encoding/json"

	"github.com/ritzau/pathlink/pkg/pathway"
)

// Topics published by the server
const (
	TopicDocument    = "document"    // Load and reload status, latest replayed
	TopicPropagation = "propagation" // One event per mutation
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "document", "propagation")
	Type    string          `json:"type"`    // Event type (e.g., "loaded", "reloaded", "move", "delete")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// PublishDocument announces a load, reload or failed reload
	PublishDocument(eventType string, status DocumentStatus) error

	// PublishPropagation announces the report of one mutation
	PublishPropagation(eventType string, data PropagationData) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// DocumentStatus is the payload of document events
type DocumentStatus struct {
	Name        string `json:"name"`
	Elements    int    `json:"elements"`
	Lines       int    `json:"lines"`
	Diagnostics int    `json:"diagnostics"`
	Message     string `json:"message,omitempty"`
}

// PropagationData is the payload of propagation events
type PropagationData struct {
	Element string         `json:"element"` // Element the mutation was applied to
	Report  pathway.Report `json:"report"`
}
