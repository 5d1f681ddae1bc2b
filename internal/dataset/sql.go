package dataset

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/cockroachdb/errors"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// SQLSource reads a dataset from a table in SQLite or MySQL
type SQLSource struct {
	db     *sql.DB
	driver string
	table  string
	logger *zap.Logger
}

// NewSQLiteSource opens a SQLite database file
func NewSQLiteSource(path, table string, logger *zap.Logger) (*SQLSource, error) {
	return newSQLSource("sqlite3", path, table, logger)
}

// NewMySQLSource connects to a MySQL database
func NewMySQLSource(dsn, table string, logger *zap.Logger) (*SQLSource, error) {
	return newSQLSource("mysql", dsn, table, logger)
}

func newSQLSource(driver, dsn, table string, logger *zap.Logger) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, errors.Newf("invalid table name %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	return &SQLSource{db: db, driver: driver, table: table, logger: logger}, nil
}

// Name returns driver and table
func (s *SQLSource) Name() string {
	return s.driver + ":" + s.table
}

// Load reads every row of the table
func (s *SQLSource) Load(ctx context.Context) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query table %s", s.table)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read columns")
	}
	idx, err := indexColumns(columns)
	if err != nil {
		return nil, err
	}

	values := make([]sql.NullString, len(columns))
	dest := lo.Map(values, func(_ sql.NullString, i int) any { return &values[i] })

	table := &Table{Columns: columns, HasBody: idx.hasBody()}
	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		fields := lo.Map(values, func(v sql.NullString, _ int) string { return v.String })

		rec, err := idx.record(fields, row)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate rows")
	}

	if len(table.Records) == 0 {
		return nil, ErrEmpty
	}
	s.logger.Info("Loaded dataset",
		zap.String("source", s.Name()),
		zap.Int("records", len(table.Records)),
		zap.Bool("has_body", table.HasBody))
	return table, nil
}

// Close closes the database
func (s *SQLSource) Close() error {
	return s.db.Close()
}
