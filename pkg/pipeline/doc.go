package pipeline

import (
	"context"
)

// DecodedEvent is the parsed payload of one queue delivery. The keys are
// whatever the producer published; nothing in the pipeline depends on a
// specific shape.
type DecodedEvent map[string]interface{}

// ProcessedRecord is the persisted shape of one event. Records are
// append-only, nothing mutates them after the insert.
type ProcessedRecord struct {
	Original    DecodedEvent `bson:"original" json:"original"`
	ProcessedAt float64      `bson:"processed_at" json:"processed_at"`
	Status      string       `bson:"status" json:"status"`
}

// Delivery is one in-flight message handed over by the broker. Exactly one
// of Ack or Nack settles it; the broker holds back the next delivery until
// that happens.
type Delivery interface {
	Body() []byte
	Ack() error
	Nack(requeue bool) error
}

// Repo persists processed records.
type Repo interface {
	Insert(ctx context.Context, record ProcessedRecord) (string, error)
}
