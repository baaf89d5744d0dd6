package payment

// Event is a closed set: Completed, Canceled or Other.
type Event interface {
	EventID() string
	EventType() string
	isEvent()
}

// Completed means the buyer paid for the session.
type Completed struct {
	ID         string
	Type       string
	SessionRef string
}

// Canceled means the session expired or its payment failed.
type Canceled struct {
	ID         string
	Type       string
	SessionRef string
}

// Other is any event this service does not act on. Reason is set when a
// session event was recognised but could not be acted on.
type Other struct {
	ID     string
	Type   string
	Reason string
}

func (e Completed) EventID() string   { return e.ID }
func (e Completed) EventType() string { return e.Type }
func (Completed) isEvent()            {}

func (e Canceled) EventID() string   { return e.ID }
func (e Canceled) EventType() string { return e.Type }
func (Canceled) isEvent()            {}

func (e Other) EventID() string   { return e.ID }
func (e Other) EventType() string { return e.Type }
func (Other) isEvent()            {}
