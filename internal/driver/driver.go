// Package driver defines the automation session boundary: submitting one
// coordinate to the external query surface and retrieving a structured
// result. The orchestrator depends only on this interface; the concrete
// browser-driving implementation lives in the blast subpackage and a
// deterministic scripted implementation backs the test suite.
package driver

import (
	"context"
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/primer"
)

// Submission is one unit of work handed to a session driver.
type Submission struct {
	Index     int                   // original input index, for logging
	Accession string                // RefSeq accession resolved from the chromosome
	Coord     coordinate.Coordinate // normalized coordinate being targeted
	Params    primer.Params         // form parameters for this batch
}

// ResultPayload is the structured outcome of a successful submission. The
// engine treats it as opaque; exporters render it.
type ResultPayload struct {
	ResultURL   string    `json:"result_url"`   // URL of the results page
	JobKey      string    `json:"job_key"`      // external job identifier, when present
	SubmittedAt time.Time `json:"submitted_at"` // when the submission was accepted
}

// SessionDriver executes submissions against the external surface. Execute
// must honor ctx for its timeout and return errors classified with a
// FailureKind (see the errors package); unclassified errors are treated as
// protocol errors. Implementations need not be safe for concurrent use:
// the orchestrator gives each worker slot its own driver.
type SessionDriver interface {
	Execute(ctx context.Context, sub Submission) (*ResultPayload, error)

	// Close releases the driver's underlying session resources.
	Close() error
}

// Factory builds one SessionDriver per worker slot. Slot numbering starts
// at zero and is stable for the life of a batch.
type Factory func(ctx context.Context, slot int) (SessionDriver, error)
