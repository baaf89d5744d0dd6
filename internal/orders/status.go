package orders

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusPaid: true, StatusCanceled: true},
	StatusPaid:     {},
	StatusCanceled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}
