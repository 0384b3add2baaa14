package storage

import (
	"errors"
	"fmt"

	"github.com/dolittle/data-pipeline/pkg/pipeline"
)

// Distinguished failure kinds the consumer and the query API match on with
// errors.Is. Anything else coming out of the repo is an unexpected store
// error.
var (
	// ErrUnavailable means no live store connection could be acquired.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound means the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID means the identifier is not a well-formed document id.
	ErrInvalidID = errors.New("malformed document id")
)

// Document is a persisted record plus its store-assigned identifier. The
// identifier is stringified on read only, never set on write.
type Document struct {
	ID          string                `json:"_id"`
	Original    pipeline.DecodedEvent `json:"original"`
	ProcessedAt float64               `json:"processed_at"`
	Status      string                `json:"status"`
}

// MongoURI builds a connection string with credentials embedded, the same
// shape the rest of the deployment uses.
func MongoURI(username string, password string, host string, port int, database string) string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s", username, password, host, port, database)
}
