// Package events publishes lifecycle events to a Redis stream for
// external consumers (dashboards, audit pipelines). Publishing is
// best-effort and optional: without a Redis client it is a no-op.
package events

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/codexdev/ticketbot/src/ticketbot/data"
)

const (
	TicketCreated     = "ticket-created"
	TicketClaimed     = "ticket-claimed"
	ClaimRejected     = "claim-rejected"
	TicketClosed      = "ticket-closed"
	CloseCancelled    = "close-cancelled"
	PriorityChanged   = "priority-changed"
	RatingRequested   = "rating-requested"
	RatingSubmitted   = "rating-submitted"
	TicketTransferred = "ticket-transferred"
)

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, event string, payload map[string]interface{}) {
	if p == nil || p.rdb == nil {
		return
	}
	if err := data.PublishEvent(ctx, p.rdb, event, payload); err != nil {
		log.Printf("publish %s event: %v", event, err)
	}
}
