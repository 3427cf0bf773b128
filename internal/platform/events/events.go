// Package events publishes entity-change notifications for writes with
// compliance significance. Keep the event transport-agnostic so sinks can
// fan out (memory for tests, Kafka in deployment).
package events

import (
	"time"

	"github.com/google/uuid"

	"finbase/pkg/domain"
)

// Kind labels what happened to the owning aggregate.
type Kind string

const (
	KindCustomerCreated  Kind = "customer_created"
	KindCustomerPurged   Kind = "customer_purged"
	KindConsentGranted   Kind = "consent_granted"
	KindConsentRevoked   Kind = "consent_revoked"
	KindPaymentCreated   Kind = "payment_order_created"
	KindPaymentCompleted Kind = "payment_order_completed"
	KindPaymentFailed    Kind = "payment_order_failed"
	KindPaymentCancelled Kind = "payment_order_cancelled"
)

// Event records one state change on a customer's footprint.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Kind       Kind              `json:"kind"`
	CustomerID domain.CustomerID `json:"customer_id"`
	Entity     string            `json:"entity"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent stamps an event with identity and UTC time.
func NewEvent(kind Kind, customerID domain.CustomerID, entity string) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		CustomerID: customerID,
		Entity:     entity,
		OccurredAt: time.Now().UTC(),
	}
}
