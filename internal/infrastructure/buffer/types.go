package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityOrder    = "order"
	EntityCustomer = "customer"

	OperationCreate = "create"
	OperationUpdate = "update"
)

const (
	PriorityHigh    = 1
	PriorityDefault = 3
	PriorityLow     = 5
)

// Item is a write that could not reach primary storage and waits to be replayed.
type Item struct {
	ID          string          `json:"id"`
	AggregateID string          `json:"aggregate_id"`
	Entity      string          `json:"entity"`
	Operation   string          `json:"operation"`
	Data        json.RawMessage `json:"data"`
	Priority    int             `json:"priority"`
	Retries     int             `json:"retries"`
	Timestamp   time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < PriorityHigh || i.Priority > PriorityLow {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
