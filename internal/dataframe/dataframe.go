// Package dataframe builds immutable, schema-bearing tables inside a session
// and reads them back in insertion order.
package dataframe

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"duck-job/internal/ddl"
	"duck-job/internal/session"
)

// Row is one record of a DataFrame, values in schema order.
type Row []any

// DataFrame is an immutable table owned by a session. It must not be used
// after the session is stopped; every method then returns session.ErrStopped.
type DataFrame struct {
	sess   *session.Session
	table  string
	schema Schema
}

// Create validates rows against columns, infers the schema, and loads the
// rows into a new table of the session. Rows keep their input order.
func Create(ctx context.Context, sess *session.Session, rows [][]any, columns []string) (*DataFrame, error) {
	schema, normalized, err := InferSchema(rows, columns)
	if err != nil {
		return nil, err
	}

	conn, err := sess.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	table := "df_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	createSQL, err := ddl.CreateTable(table, schema.columnDefs())
	if err != nil {
		return nil, fmt.Errorf("build DDL: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createSQL); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	if err := appendRows(conn, table, normalized); err != nil {
		if dropSQL, dropErr := ddl.DropTable(table); dropErr == nil {
			_, _ = conn.ExecContext(ctx, dropSQL)
		}
		return nil, err
	}

	sess.Logger().Debug("dataframe created", "table", table, "schema", schema.String(), "rows", len(normalized))
	return &DataFrame{sess: sess, table: table, schema: schema}, nil
}

// appendRows bulk-loads rows through the DuckDB appender. Closing the
// appender flushes the rows in the order they were appended.
func appendRows(conn *sql.Conn, table string, rows [][]any) error {
	return conn.Raw(func(raw any) error {
		driverConn, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected raw conn type %T", raw)
		}

		appender, err := duckdb.NewAppenderFromConn(driverConn, "", table)
		if err != nil {
			return fmt.Errorf("create appender for %s: %w", table, err)
		}

		for i, row := range rows {
			values := make([]driver.Value, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := appender.AppendRow(values...); err != nil {
				_ = appender.Close()
				return fmt.Errorf("append row %d: %w", i, err)
			}
		}
		if err := appender.Close(); err != nil {
			return fmt.Errorf("flush appender for %s: %w", table, err)
		}
		return nil
	})
}

// Schema returns the ordered, typed columns.
func (df *DataFrame) Schema() Schema { return df.schema }

// Columns returns the column names in order.
func (df *DataFrame) Columns() []string { return df.schema.Names() }

// Count returns the number of rows.
func (df *DataFrame) Count(ctx context.Context) (int64, error) {
	db, err := df.sess.DB()
	if err != nil {
		return 0, err
	}
	countSQL, err := ddl.CountRows(df.table)
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Collect returns every row in insertion order.
func (df *DataFrame) Collect(ctx context.Context) ([]Row, error) {
	return df.take(ctx, 0)
}

// take returns up to limit rows in insertion order; limit <= 0 returns all.
func (df *DataFrame) take(ctx context.Context, limit int) ([]Row, error) {
	db, err := df.sess.DB()
	if err != nil {
		return nil, err
	}
	selectSQL, err := ddl.SelectOrdered(df.table, df.schema.Names(), limit)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]any, len(df.schema))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, Row(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return out, nil
}
