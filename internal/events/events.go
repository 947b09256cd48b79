package events

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderSettled = "order.settled"

	EventOrderSettled = "OrderSettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderSettledPayload announces the outcome of one settlement attempt. Status
// is the purchase status after the attempt: FAILED for rejected gateway
// charges, PENDING for gateway charges awaiting the provider callback,
// PROCESS/SUCCESS/FAILED for wallet-path orders.
type OrderSettledPayload struct {
	OrderID   string `json:"order_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Amount    string `json:"amount"`
}

// PartitionKey keeps all events of one order on one partition, in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
