package record

import (
	"encoding/csv"
	"io"
	"os"
	"time"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// rawDateLayout is the expected timestamp format in every raw export.
const rawDateLayout = "2006-01-02 15:04:05"

// isoDateLayout is the normalized timestamp format written to artifacts.
const isoDateLayout = "2006-01-02T15:04:05"

// Record is one normalized row: a mapping from schema field names to
// string values. Timestamp fields hold either an ISO-like string or "".
type Record map[string]string

// ReadCSV reads a headerless positional CSV file into raw string rows.
// Rows with ragged column counts are kept; quoting irregularities are
// tolerated rather than treated as errors.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewStageError("read_csv", path, apperrors.ErrSourceNotFound)
		}
		return nil, apperrors.NewStageError("read_csv", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows allowed
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip unreadable lines, matching on_bad_lines behavior of the export tooling
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Normalize pins each raw row to the schema and coerces date fields.
//
// Normalization is total: extra columns beyond the schema width are
// discarded, missing trailing columns become empty strings, and a date
// value that does not parse with the expected format becomes "" rather
// than an error. Every input row yields exactly one output record.
func Normalize(rows [][]string, schema Schema, dateFields map[string]bool) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(schema))
		for i, field := range schema {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			if dateFields[field] {
				value = coerceDate(value)
			}
			rec[field] = value
		}
		out = append(out, rec)
	}
	return out
}

// NormalizeMessages normalizes raw message rows.
//
// Rows with an empty message_id are dropped before the rest of
// normalization runs; this is the only drop rule in the normalizer.
// Each surviving record gains a "text" field holding the rendered
// payload decode result. The second return value counts payloads that
// were recovered into the parse-error placeholder, so callers can
// report them.
func NormalizeMessages(rows [][]string) ([]Record, int) {
	const messageIDIndex = 4 // position of message_id in MessagesSchema

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if messageIDIndex >= len(row) || row[messageIDIndex] == "" {
			continue
		}
		kept = append(kept, row)
	}

	records := Normalize(kept, MessagesSchema, MessagesDateFields)
	malformed := 0
	for _, rec := range records {
		payload := ParsePayload(rec["payload"])
		rec["text"] = payload.Render()
		if payload.Err() != nil {
			malformed++
		}
	}
	return records, malformed
}

// coerceDate parses value with the expected raw layout and reformats it
// as an ISO-like string. Unparseable or empty values become "".
func coerceDate(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(rawDateLayout, value)
	if err != nil {
		return ""
	}
	return t.Format(isoDateLayout)
}
