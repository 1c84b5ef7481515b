package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadRows reads a CSV document into rows keyed by lower-cased header
// name. The first line is the header. A document that cannot be read
// or parsed at all is an ErrInputSource failure: the whole batch is
// unusable, as opposed to a row that parses but fails validation later.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrInputSource)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrInputSource, err)
	}
	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var rows []Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrInputSource, err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadRowsFile reads a CSV file from path. An unreadable file is an
// ErrInputSource failure.
func ReadRowsFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInputSource, path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadRows(f)
}
