package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const StatusProcessed = "processed"

// ErrDecode marks payloads that are not valid JSON objects. Redelivery can
// never fix these, so the consumer discards them.
var ErrDecode = errors.New("payload is not a valid JSON object")

// Decode parses a raw delivery body into an event.
func Decode(body []byte) (DecodedEvent, error) {
	var event DecodedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return event, nil
}

// Process enriches a decoded event into its persisted shape. This is the
// extension point for additional transformation logic; anything added here
// must stay free of delivery concerns.
func Process(event DecodedEvent) ProcessedRecord {
	return ProcessedRecord{
		Original:    event,
		ProcessedAt: float64(time.Now().UnixNano()) / float64(time.Second),
		Status:      StatusProcessed,
	}
}
