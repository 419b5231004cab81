package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rideboard/pkg/rabbitmq"
)

// Event kinds double as AMQP routing keys under the rideboard exchange.
const (
	KindWaitlistJoined    = "offering.waitlist_joined"
	KindUserAccepted      = "offering.user_accepted"
	KindUserRemoved       = "offering.user_removed"
	KindOfferingDeleted   = "offering.deleted"
	KindDepartureReminder = "offering.departure_reminder"
	KindRequestAccepted   = "request.accepted"
	KindRequestUnaccepted = "request.unaccepted"
)

type Event struct {
	Kind       string    `json:"kind"`
	OfferingID uint      `json:"offering_id,omitempty"`
	RequestID  uint      `json:"request_id,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	OwnerID    uint      `json:"owner_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher delivers notification events downstream (email sender, push
// gateway). Delivery is fire-and-forget: implementations log failures and
// never surface them to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

type amqpDispatcher struct {
	publisher *rabbitmq.Publisher
}

func NewAMQPDispatcher(publisher *rabbitmq.Publisher) Dispatcher {
	return &amqpDispatcher{publisher: publisher}
}

func (d *amqpDispatcher) Dispatch(ctx context.Context, event Event) {
	event.OccurredAt = time.Now().UTC()
	if err := d.publisher.Publish(ctx, event.Kind, event); err != nil {
		logrus.WithError(err).WithField("kind", event.Kind).Warn("notification dispatch failed")
	}
}

// Noop is used when no message broker is configured.
type Noop struct{}

func (Noop) Dispatch(context.Context, Event) {}
