package port

import (
	"context"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
)

// Farmer is the read-only projection of a farmer account consumed by the
// loan core. Account management itself lives elsewhere.
type Farmer struct {
	ID          string
	Name        string
	PhoneNumber string // E.164 with leading '+'
}

// FarmerDirectory looks up farmer records.
type FarmerDirectory interface {
	FindByID(ctx context.Context, id string) (Farmer, error)
}

// CreditScorer produces an opaque 0-100 score consumed at application time.
type CreditScorer interface {
	Score(ctx context.Context, farmerID string) (int, error)
}

// HarvestCalendar supplies the expected harvest dates used for
// harvest-aligned schedules.
type HarvestCalendar interface {
	UpcomingHarvests(ctx context.Context, farmerID string) ([]time.Time, error)
}

// Notifier delivers an SMS to a farmer. Sends are fire-and-forget: a failure
// is logged by the caller and never rolls back the owning operation.
type Notifier interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
