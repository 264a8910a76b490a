package orders

import "strings"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists the valid values in display order.
var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPending: true, StatusConfirmed: true, StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusConfirmed: {StatusConfirmed: true, StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusShipped:   {StatusConfirmed: true, StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order in `from` may move to `to`.
// DELIVERED and CANCELLED are terminal; nothing returns to PENDING.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CanCancel reports whether cancellation (a dedicated operation, not a generic
// transition) is still allowed. Once shipped, an order can no longer be
// cancelled through this path.
func CanCancel(current Status) bool {
	return current == StatusPending || current == StatusConfirmed
}

// IsTerminal reports whether no further transition exists from s.
func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// ParseStatus validates a client-supplied status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, valid := range AllStatuses {
		if s == valid {
			return s, nil
		}
	}
	return "", &ValidationError{Msg: "estado de pedido no válido. Valores permitidos: PENDING, CONFIRMED, SHIPPED, DELIVERED, CANCELLED"}
}
