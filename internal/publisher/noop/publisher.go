// Package noop provides a publisher that drops every event. It is the
// default when no broker is configured.
package noop

import "context"

// Publisher discards all events.
type Publisher struct{}

// New returns a noop Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish drops the payload.
func (Publisher) Publish(context.Context, string, any) (string, error) {
	return "", nil
}
