package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76/webhook"
)

// Mode tells operators whether webhook signatures are being checked.
type Mode int

const (
	ModeVerified Mode = iota
	// ModeUnverified parses payloads without authenticating them. Only for
	// local development.
	ModeUnverified
)

func (m Mode) String() string {
	if m == ModeUnverified {
		return "unverified"
	}
	return "verified"
}

const (
	typeSessionCompleted      = "checkout.session.completed"
	typeSessionExpired        = "checkout.session.expired"
	typeAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	typeAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier returns a verifier in ModeUnverified when secret is empty.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

func (v *WebhookVerifier) Mode() Mode {
	if v.secret == "" {
		return ModeUnverified
	}
	return ModeVerified
}

// VerifyEvent authenticates the payload against the Stripe-Signature header
// (skipped in ModeUnverified) and maps it to an Event.
func (v *WebhookVerifier) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	if v.Mode() == ModeVerified {
		if err := webhook.ValidatePayload(payload, sigHeader, v.secret); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
	}
	return parseEvent(payload)
}

type rawEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type rawSession struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
}

func parseEvent(payload []byte) (Event, error) {
	var ev rawEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch ev.Type {
	case typeSessionCompleted, typeAsyncPaymentSucceeded, typeSessionExpired, typeAsyncPaymentFailed:
	default:
		return Other{ID: ev.ID, Type: ev.Type}, nil
	}

	// an authentic event is acknowledged even when its session is unusable,
	// otherwise the provider keeps redelivering it
	var s rawSession
	if len(ev.Data.Object) > 0 {
		if err := json.Unmarshal(ev.Data.Object, &s); err != nil {
			return Other{ID: ev.ID, Type: ev.Type, Reason: "undecodable session object"}, nil
		}
	}
	if s.ID == "" {
		return Other{ID: ev.ID, Type: ev.Type, Reason: "missing session id"}, nil
	}

	switch ev.Type {
	case typeSessionCompleted:
		// delayed payment methods complete the session before the money arrives
		if s.PaymentStatus == "unpaid" {
			return Other{ID: ev.ID, Type: ev.Type, Reason: "payment pending"}, nil
		}
		return Completed{ID: ev.ID, Type: ev.Type, SessionRef: s.ID}, nil
	case typeAsyncPaymentSucceeded:
		return Completed{ID: ev.ID, Type: ev.Type, SessionRef: s.ID}, nil
	default:
		return Canceled{ID: ev.ID, Type: ev.Type, SessionRef: s.ID}, nil
	}
}
