package events

const (
	TopicOrderCreated       = "pedido.created"
	TopicOrderStatusChanged = "pedido.status"
	TopicOrderCancelled     = "pedido.cancelled"
)

// Partition key = order id, so every event of one order keeps its ordering.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
