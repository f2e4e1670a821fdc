package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"corpus-embed/internal/config"
)

// PostgresStream reads text rows through a server-side cursor so the table
// is never pulled into memory. Rows arrive in table order; a NULL text
// column is a malformed record and aborts the run.
type PostgresStream struct {
	db   *bun.DB
	rows *sql.Rows

	table  string
	column string
}

func NewPostgresStream(cfg *config.CorpusConfig) (*PostgresStream, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("corpus: postgres source needs a dsn")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStream{db: db, table: cfg.Table, column: cfg.Column}, nil
}

func (s *PostgresStream) Next(ctx context.Context) (Record, error) {
	if s.rows == nil {
		rows, err := s.db.NewSelect().
			Table(s.table).
			Column(s.column).
			Rows(ctx)
		if err != nil {
			return Record{}, fmt.Errorf("corpus: querying %s: %w", s.table, err)
		}
		s.rows = rows
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return Record{}, fmt.Errorf("corpus: reading rows: %w", err)
		}
		return Record{}, io.EOF
	}

	var text sql.NullString
	if err := s.rows.Scan(&text); err != nil {
		return Record{}, fmt.Errorf("corpus: scanning row: %w", err)
	}
	if !text.Valid {
		return Record{}, ErrMissingText
	}
	return Record{Text: text.String}, nil
}

func (s *PostgresStream) Close() error {
	if s.rows != nil {
		_ = s.rows.Close()
	}
	return s.db.Close()
}
