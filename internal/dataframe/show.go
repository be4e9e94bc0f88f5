package dataframe

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const minColumnWidth = 3

// ShowOptions controls the grid rendering of Show.
type ShowOptions struct {
	// NumRows is the maximum number of rows rendered. Negative counts as 0.
	NumRows int
	// Truncate cuts cells longer than this many characters and right-aligns
	// cells. Zero disables truncation and left-aligns cells.
	Truncate int
}

// DefaultShowOptions renders up to 20 rows, truncating cells to 20 characters.
func DefaultShowOptions() ShowOptions {
	return ShowOptions{NumRows: 20, Truncate: 20}
}

// Show writes the grid rendering of the DataFrame to w. Nothing is written
// when reading the rows fails.
func (df *DataFrame) Show(ctx context.Context, w io.Writer, opts ShowOptions) error {
	s, err := df.ShowString(ctx, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// ShowString returns the grid rendering of the DataFrame:
//
//	+-------+---+
//	|   name|age|
//	+-------+---+
//	|  Alice| 30|
//	+-------+---+
func (df *DataFrame) ShowString(ctx context.Context, opts ShowOptions) (string, error) {
	numRows := max(opts.NumRows, 0)

	// Fetch one extra row to learn whether the output is cut short.
	rows, err := df.take(ctx, numRows+1)
	if err != nil {
		return "", err
	}
	hasMore := len(rows) > numRows
	if hasMore {
		rows = rows[:numRows]
	}
	return renderGrid(df.Columns(), rows, opts.Truncate, hasMore, numRows), nil
}

func renderGrid(header []string, rows []Row, truncate int, hasMore bool, numRows int) string {
	cells := make([][]string, 0, len(rows)+1)
	headerCells := make([]string, len(header))
	for i, h := range header {
		headerCells[i] = truncateCell(h, truncate)
	}
	cells = append(cells, headerCells)
	for _, row := range rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = truncateCell(formatCell(v), truncate)
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(header))
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	var sb strings.Builder
	sep := separator(widths)
	sb.WriteString(sep)
	writeLine(&sb, cells[0], widths, truncate > 0)
	sb.WriteString(sep)
	for _, line := range cells[1:] {
		writeLine(&sb, line, widths, truncate > 0)
	}
	sb.WriteString(sep)

	if hasMore {
		noun := "rows"
		if numRows == 1 {
			noun = "row"
		}
		fmt.Fprintf(&sb, "only showing top %d %s\n", numRows, noun)
	}
	return sb.String()
}

func separator(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeLine(sb *strings.Builder, line []string, widths []int, alignRight bool) {
	sb.WriteByte('|')
	for i, c := range line {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
		if alignRight {
			sb.WriteString(pad)
			sb.WriteString(c)
		} else {
			sb.WriteString(c)
			sb.WriteString(pad)
		}
		sb.WriteByte('|')
	}
	sb.WriteByte('\n')
}

func truncateCell(s string, truncate int) string {
	if truncate <= 0 || utf8.RuneCountInString(s) <= truncate {
		return s
	}
	r := []rune(s)
	if truncate < 4 {
		return string(r[:truncate])
	}
	return string(r[:truncate-3]) + "..."
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".IN") {
			s += ".0"
		}
		return s
	case float32:
		return formatCell(float64(x))
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05.999999")
	case []byte:
		parts := make([]string, len(x))
		for i, b := range x {
			parts[i] = fmt.Sprintf("%02X", b)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
