package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ForEachCSV parses r as CSV and calls fn for each data row with fields
// trimmed. When hasHeader is set the first row is skipped. fn returning
// an error stops iteration.
func ForEachCSV(r io.Reader, hasHeader bool, fn func(row []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "fetcher: read csv row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if first {
			first = false
			if hasHeader {
				continue
			}
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}
