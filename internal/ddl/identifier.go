package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypeRe matches the scalar DuckDB type names a dataframe column can carry.
var columnTypeRe = regexp.MustCompile(`(?i)^(VARCHAR|BIGINT|DOUBLE|BOOLEAN|TIMESTAMP|BLOB)$`)

// memoryLimitRe matches DuckDB memory sizes such as 512MB, 1.5GB or 4GiB.
var memoryLimitRe = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s*(B|KB|MB|GB|TB|KIB|MIB|GIB|TIB)$`)

const maxIdentifierLen = 128

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 128 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name %q must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, doubling any
// embedded double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, doubling any
// embedded single quotes.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValidateColumnType checks that typeName is one of the supported column types.
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not supported", typeName)
	}
	return nil
}

// ValidateMemoryLimit checks that limit is a DuckDB memory size.
func ValidateMemoryLimit(limit string) error {
	if !memoryLimitRe.MatchString(strings.TrimSpace(limit)) {
		return fmt.Errorf("memory limit %q must look like 512MB or 4GB", limit)
	}
	return nil
}
