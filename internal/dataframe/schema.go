package dataframe

import (
	"fmt"
	"math"
	"strings"
	"time"

	"duck-job/internal/ddl"
	"duck-job/internal/domain"
)

// ColumnType is the engine type of a column.
type ColumnType string

// Column types inferred from Go values.
const (
	TypeVarchar   ColumnType = "VARCHAR"
	TypeBigint    ColumnType = "BIGINT"
	TypeDouble    ColumnType = "DOUBLE"
	TypeBoolean   ColumnType = "BOOLEAN"
	TypeTimestamp ColumnType = "TIMESTAMP"
	TypeBlob      ColumnType = "BLOB"
)

// Column is a named, typed column of a schema.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is the ordered column list of a DataFrame.
type Schema []Column

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.Name + " " + string(c.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Schema) columnDefs() []ddl.ColumnDef {
	defs := make([]ddl.ColumnDef, len(s))
	for i, c := range s {
		defs[i] = ddl.ColumnDef{Name: c.Name, Type: string(c.Type)}
	}
	return defs
}

// InferSchema validates the column names and every row against them and
// derives one type per column. Rows are returned with their values
// normalised to the representation the engine's appender expects.
func InferSchema(rows [][]any, columns []string) (Schema, [][]any, error) {
	if len(columns) == 0 {
		return nil, nil, domain.ErrValidation("at least one column name is required")
	}
	seen := make(map[string]int, len(columns))
	for i, name := range columns {
		if err := ddl.ValidateIdentifier(name); err != nil {
			return nil, nil, domain.ErrValidation("column %d: %s", i, err.Error())
		}
		if prev, ok := seen[strings.ToLower(name)]; ok {
			return nil, nil, domain.ErrValidation("column %d: duplicate column name %q (also column %d)", i, name, prev)
		}
		seen[strings.ToLower(name)] = i
	}

	types := make([]ColumnType, len(columns))
	normalized := make([][]any, len(rows))
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, nil, domain.ErrValidation("row %d has %d values, expected %d (%s)",
				r, len(row), len(columns), strings.Join(columns, ", "))
		}
		out := make([]any, len(row))
		for c, v := range row {
			nv, typ, err := normalizeValue(v)
			if err != nil {
				return nil, nil, domain.ErrValidation("row %d, column %q: %s", r, columns[c], err.Error())
			}
			out[c] = nv
			if typ == "" {
				continue
			}
			if types[c] == "" {
				types[c] = typ
			} else if types[c] != typ {
				return nil, nil, domain.ErrValidation("row %d, column %q: value of type %s does not match column type %s",
					r, columns[c], typ, types[c])
			}
		}
		normalized[r] = out
	}

	schema := make(Schema, len(columns))
	for i, name := range columns {
		if types[i] == "" {
			// Nothing to infer from: no rows, or only nulls.
			if len(rows) > 0 {
				return nil, nil, domain.ErrValidation("column %q: cannot infer type, every value is null", name)
			}
			types[i] = TypeVarchar
		}
		schema[i] = Column{Name: name, Type: types[i]}
	}
	return schema, normalized, nil
}

// normalizeValue maps a Go value onto one canonical type per column type.
// A nil value yields an empty ColumnType.
func normalizeValue(v any) (any, ColumnType, error) {
	switch x := v.(type) {
	case nil:
		return nil, "", nil
	case string:
		return x, TypeVarchar, nil
	case int:
		return int64(x), TypeBigint, nil
	case int8:
		return int64(x), TypeBigint, nil
	case int16:
		return int64(x), TypeBigint, nil
	case int32:
		return int64(x), TypeBigint, nil
	case int64:
		return x, TypeBigint, nil
	case uint8:
		return int64(x), TypeBigint, nil
	case uint16:
		return int64(x), TypeBigint, nil
	case uint32:
		return int64(x), TypeBigint, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, "", fmt.Errorf("unsigned value %d overflows BIGINT", x)
		}
		return int64(x), TypeBigint, nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, "", fmt.Errorf("unsigned value %d overflows BIGINT", x)
		}
		return int64(x), TypeBigint, nil
	case float32:
		return float64(x), TypeDouble, nil
	case float64:
		return x, TypeDouble, nil
	case bool:
		return x, TypeBoolean, nil
	case time.Time:
		return x, TypeTimestamp, nil
	case []byte:
		return x, TypeBlob, nil
	default:
		return nil, "", fmt.Errorf("unsupported value type %T", v)
	}
}
