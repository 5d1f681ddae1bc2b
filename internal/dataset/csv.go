package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CSVSource reads a dataset from a CSV file with a header row
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource creates a CSV source
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	return &CSVSource{path: path, logger: logger}
}

// Name returns the file path
func (s *CSVSource) Name() string {
	return s.path
}

// Load reads the whole file
func (s *CSVSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", s.path)
	}
	defer f.Close()

	table, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset %s", s.path)
	}
	s.logger.Info("Loaded dataset",
		zap.String("path", s.path),
		zap.Int("records", len(table.Records)),
		zap.Bool("has_body", table.HasBody))
	return table, nil
}

// Close is a no-op
func (s *CSVSource) Close() error {
	return nil
}

// ReadCSV parses CSV data with a header row
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: header, HasBody: idx.hasBody()}
	for row := 1; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}

		rec, err := idx.record(fields, row)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	if len(table.Records) == 0 {
		return nil, ErrEmpty
	}
	return table, nil
}
