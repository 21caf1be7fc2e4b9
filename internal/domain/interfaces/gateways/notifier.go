package gateways

import "context"

// Message is a human-readable notification
type Message struct {
	Subject string
	Body    string
}

// Notifier dispatches a message to a topic. Delivery is not confirmed.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
