package app

import (
	"time"

	"github.com/cesargomez89/requestline/internal/domain"
)

// Publisher fans out live events to a session's listeners.
type Publisher interface {
	Publish(ev domain.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func newEvent(t domain.EventType, sessionID string) domain.Event {
	return domain.Event{
		Type:      t,
		SessionID: sessionID,
		At:        time.Now().UTC(),
	}
}
