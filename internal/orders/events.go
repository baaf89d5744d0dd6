package orders

import (
	"encoding/json"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/storefront/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventOrderPlaced   = "OrderPlaced"
	EventOrderPaid     = "OrderPaid"
	EventOrderCanceled = "OrderCanceled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // session reference
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID    int64  `json:"order_id"`
	SessionRef string `json:"session_ref"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

type StatusChangedPayload struct {
	SessionRef string `json:"session_ref"`
	Status     Status `json:"status"`
	Affected   int64  `json:"affected"`
}

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) bool
}

// Notifier turns lifecycle changes into envelopes. A nil Pub disables it.
type Notifier struct {
	Pub      Publisher
	Producer string
}

func (n *Notifier) OrderPlaced(orderID int64, sessionRef string, totalCents int64, currency, traceID string) {
	n.publish(TopicOrderPlaced, EventOrderPlaced, sessionRef, traceID, OrderPlacedPayload{
		OrderID:    orderID,
		SessionRef: sessionRef,
		TotalCents: totalCents,
		Currency:   currency,
	})
}

// StatusChanged announces a move into a terminal status; other statuses are not published.
func (n *Notifier) StatusChanged(sessionRef string, status Status, affected int64, traceID string) {
	if !status.IsTerminal() {
		return
	}
	topic, typ := TopicOrderPaid, EventOrderPaid
	if status == StatusCanceled {
		topic, typ = TopicOrderCanceled, EventOrderCanceled
	}
	n.publish(topic, typ, sessionRef, traceID, StatusChangedPayload{
		SessionRef: sessionRef,
		Status:     status,
		Affected:   affected,
	})
}

func (n *Notifier) publish(topic, eventType, sessionRef, traceID string, payload any) {
	if n == nil || n.Pub == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.Producer,
		TraceID:       traceID,
		CorrelationID: sessionRef,
		Payload:       kafkax.MustMarshal(payload),
	}
	n.Pub.Publish(topic, PartitionKey(sessionRef), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
