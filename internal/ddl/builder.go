// Package ddl builds the DuckDB statements a session issues: settings,
// dataframe tables, and the reads over them.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}

// CreateTable returns: CREATE TABLE "<table>" ("<col1>" TYPE1, "<col2>" TYPE2, ...).
func CreateTable(table string, columns []ColumnDef) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	colDefs := make([]string, 0, len(columns))
	for _, c := range columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), strings.ToUpper(c.Type)))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(colDefs, ", ")), nil
}

// DropTable returns: DROP TABLE IF EXISTS "<table>".
func DropTable(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdentifier(table)), nil
}

// SelectOrdered returns a SELECT of the given columns in insertion order
// (DuckDB's rowid). A limit of zero or less selects every row.
func SelectOrdered(table string, columns []string, limit int) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c, err)
		}
		quoted = append(quoted, QuoteIdentifier(c))
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(quoted, ", "), QuoteIdentifier(table))
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}
	return stmt, nil
}

// CountRows returns: SELECT count(*) FROM "<table>".
func CountRows(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return fmt.Sprintf("SELECT count(*) FROM %s", QuoteIdentifier(table)), nil
}

// SetThreads returns: SET threads = <n>.
func SetThreads(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("threads must be positive, got %d", n)
	}
	return fmt.Sprintf("SET threads = %d", n), nil
}

// SetMemoryLimit returns: SET memory_limit = '<limit>'.
func SetMemoryLimit(limit string) (string, error) {
	if err := ValidateMemoryLimit(limit); err != nil {
		return "", err
	}
	return "SET memory_limit = " + QuoteLiteral(strings.TrimSpace(limit)), nil
}
