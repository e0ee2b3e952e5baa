// Package export writes batch terminal records to their output formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/batch"
)

// Writer renders a full set of terminal records to an output stream.
type Writer interface {
	Write(w io.Writer, records []batch.TerminalRecord) error
}

// ForFormat returns the writer for a format name ("tsv" or "jsonl").
func ForFormat(format string) (Writer, error) {
	switch format {
	case "tsv":
		return TSVWriter{}, nil
	case "jsonl":
		return JSONLWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TSVWriter writes one tab-separated row per record with a header line.
type TSVWriter struct{}

var tsvHeader = []string{"index", "input", "final_state", "attempts", "kind", "result_url", "job_key", "detail"}

func (TSVWriter) Write(w io.Writer, records []batch.TerminalRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(tsvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Index),
			rec.Input,
			rec.FinalState.String(),
			strconv.Itoa(rec.Attempts),
			recordKind(rec),
			"",
			"",
			rec.Detail,
		}
		if rec.Payload != nil {
			row[5] = rec.Payload.ResultURL
			row[6] = rec.Payload.JobKey
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// recordKind picks the detail taxonomy for the row: the validation kind for
// lines that never ran, the failure kind for tasks that ran and failed.
func recordKind(rec batch.TerminalRecord) string {
	if rec.ValidationKind != "" {
		return string(rec.ValidationKind)
	}
	return string(rec.FailureKind)
}

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct{}

func (JSONLWriter) Write(w io.Writer, records []batch.TerminalRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
