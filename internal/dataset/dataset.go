// Package dataset reads labelled training emails from CSV files and SQL tables.
package dataset

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Column names understood by every source
const (
	ColumnSubject = "subject"
	ColumnURLs    = "urls"
	ColumnBody    = "body"
	ColumnLabel   = "label"
)

// RequiredColumns must be present in every dataset
var RequiredColumns = []string{ColumnSubject, ColumnURLs, ColumnLabel}

var (
	// ErrMissingColumns is returned when a required column is absent
	ErrMissingColumns = errors.New("dataset is missing required columns")
	// ErrEmpty is returned when a dataset has no rows
	ErrEmpty = errors.New("dataset is empty")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is one labelled email. Label 1 means phishing.
type Record struct {
	Subject string
	URLs    string
	Body    string
	Label   int `validate:"oneof=0 1"`
}

// Table is a fully loaded dataset
type Table struct {
	Columns []string
	Records []Record
	// HasBody is set when the source has a body column
	HasBody bool
}

// Labels returns the label column
func (t *Table) Labels() []int {
	return lo.Map(t.Records, func(r Record, _ int) int { return r.Label })
}

// Source loads a dataset
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Name() string
	Close() error
}

type columnIndex struct {
	subject, urls, body, label int
}

// indexColumns maps header names (case-insensitive, trimmed) to positions
func indexColumns(header []string) (columnIndex, error) {
	names := lo.Map(header, func(h string, _ int) string {
		return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	})

	missing := lo.Filter(RequiredColumns, func(col string, _ int) bool {
		return !lo.Contains(names, col)
	})
	if len(missing) > 0 {
		return columnIndex{}, errors.Wrapf(ErrMissingColumns, "missing %s", strings.Join(missing, ", "))
	}

	return columnIndex{
		subject: lo.IndexOf(names, ColumnSubject),
		urls:    lo.IndexOf(names, ColumnURLs),
		body:    lo.IndexOf(names, ColumnBody),
		label:   lo.IndexOf(names, ColumnLabel),
	}, nil
}

func (c columnIndex) hasBody() bool {
	return c.body >= 0
}

// record builds a validated record from one row; row is the 1-based data row number
func (c columnIndex) record(fields []string, row int) (Record, error) {
	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	label, err := parseLabel(field(c.label))
	if err != nil {
		return Record{}, errors.Wrapf(err, "row %d", row)
	}

	rec := Record{
		Subject: field(c.subject),
		URLs:    field(c.urls),
		Body:    field(c.body),
		Label:   label,
	}
	if err := validate.Struct(rec); err != nil {
		return Record{}, errors.Wrapf(err, "row %d: label must be 0 or 1, got %d", row, label)
	}
	return rec, nil
}

// parseLabel accepts integer labels, also when written as "1.0"
func parseLabel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, errors.Newf("invalid label %q", s)
	}
	return int(f), nil
}
