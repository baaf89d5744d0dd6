package orders

const (
	TopicOrderPlaced   = "order.placed"
	TopicOrderPaid     = "order.paid"
	TopicOrderCanceled = "order.canceled"
)

// Partition key = session reference, so every event of one order keeps its order.
func PartitionKey(sessionRef string) []byte { return []byte(sessionRef) }
