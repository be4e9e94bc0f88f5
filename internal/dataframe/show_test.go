package dataframe

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-job/internal/session"
)

func TestShowString_Example(t *testing.T) {
	s, err := session.NewRegistry().GetOrCreate(context.Background(), session.Options{
		AppName: "show-test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	df, err := Create(context.Background(), s,
		[][]any{{"Alice", 30}, {"Bob", 25}, {"Charlie", 35}},
		[]string{"name", "age"})
	require.NoError(t, err)

	want := "" +
		"+-------+---+\n" +
		"|   name|age|\n" +
		"+-------+---+\n" +
		"|  Alice| 30|\n" +
		"|    Bob| 25|\n" +
		"|Charlie| 35|\n" +
		"+-------+---+\n"

	got, err := df.ShowString(context.Background(), DefaultShowOptions())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("row_limit", func(t *testing.T) {
		got, err := df.ShowString(context.Background(), ShowOptions{NumRows: 2, Truncate: 20})
		require.NoError(t, err)
		assert.Equal(t, ""+
			"+-----+---+\n"+
			"| name|age|\n"+
			"+-----+---+\n"+
			"|Alice| 30|\n"+
			"|  Bob| 25|\n"+
			"+-----+---+\n"+
			"only showing top 2 rows\n", got)
	})

	t.Run("single_row_footer", func(t *testing.T) {
		got, err := df.ShowString(context.Background(), ShowOptions{NumRows: 1, Truncate: 20})
		require.NoError(t, err)
		assert.Contains(t, got, "only showing top 1 row\n")
	})

	t.Run("exact_limit_has_no_footer", func(t *testing.T) {
		got, err := df.ShowString(context.Background(), ShowOptions{NumRows: 3, Truncate: 20})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("negative_rows_renders_header_only", func(t *testing.T) {
		got, err := df.ShowString(context.Background(), ShowOptions{NumRows: -5, Truncate: 20})
		require.NoError(t, err)
		assert.Equal(t, ""+
			"+----+---+\n"+
			"|name|age|\n"+
			"+----+---+\n"+
			"+----+---+\n"+
			"only showing top 0 rows\n", got)
	})
}

func TestRenderGrid_Alignment(t *testing.T) {
	rows := []Row{{"Al", int64(7)}}

	right := renderGrid([]string{"name", "n"}, rows, 20, false, 20)
	assert.Equal(t, ""+
		"+----+---+\n"+
		"|name|  n|\n"+
		"+----+---+\n"+
		"|  Al|  7|\n"+
		"+----+---+\n", right)

	left := renderGrid([]string{"name", "n"}, rows, 0, false, 20)
	assert.Equal(t, ""+
		"+----+---+\n"+
		"|name|n  |\n"+
		"+----+---+\n"+
		"|Al  |7  |\n"+
		"+----+---+\n", left)
}

func TestRenderGrid_MultibyteWidth(t *testing.T) {
	got := renderGrid([]string{"city"}, []Row{{"Zürich"}}, 20, false, 20)
	assert.Equal(t, ""+
		"+------+\n"+
		"|  city|\n"+
		"+------+\n"+
		"|Zürich|\n"+
		"+------+\n", got)
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		truncate int
		want     string
	}{
		{name: "disabled", in: "a very long value indeed", truncate: 0, want: "a very long value indeed"},
		{name: "short_enough", in: "Charlie", truncate: 20, want: "Charlie"},
		{name: "exact", in: "abcde", truncate: 5, want: "abcde"},
		{name: "ellipsis", in: "abcdefghijklmnopqrstuvwxyz", truncate: 20, want: "abcdefghijklmnopq..."},
		{name: "tiny_limit", in: "Charlie", truncate: 3, want: "Cha"},
		{name: "runes", in: "ääääää", truncate: 5, want: "ää..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateCell(tt.in, tt.truncate))
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "null", in: nil, want: "NULL"},
		{name: "string", in: "Bob", want: "Bob"},
		{name: "bigint", in: int64(-42), want: "-42"},
		{name: "integer", in: int32(7), want: "7"},
		{name: "double", in: 2.5, want: "2.5"},
		{name: "integral_double", in: 30.0, want: "30.0"},
		{name: "nan", in: math.NaN(), want: "NaN"},
		{name: "inf", in: math.Inf(1), want: "+Inf"},
		{name: "bool", in: true, want: "true"},
		{name: "timestamp", in: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), want: "2024-03-01 12:30:00"},
		{name: "timestamp_micros", in: time.Date(2024, 3, 1, 12, 30, 0, 1500, time.UTC), want: "2024-03-01 12:30:00.000001"},
		{name: "blob", in: []byte{0x01, 0xab}, want: "[01 AB]"},
		{name: "other", in: uint16(9), want: "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}
