package dataframe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-job/internal/dataframe"
	"duck-job/internal/domain"
	"duck-job/internal/session"
)

var ctx = context.Background()

var people = [][]any{{"Alice", 30}, {"Bob", 25}, {"Charlie", 35}}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.NewRegistry().GetOrCreate(ctx, session.Options{
		AppName: "dataframe-test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestCreate_PreservesRowsAndOrder(t *testing.T) {
	s := newTestSession(t)

	df, err := dataframe.Create(ctx, s, people, []string{"name", "age"})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, df.Columns())
	assert.Equal(t, dataframe.Schema{
		{Name: "name", Type: dataframe.TypeVarchar},
		{Name: "age", Type: dataframe.TypeBigint},
	}, df.Schema())

	n, err := df.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := df.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dataframe.Row{
		{"Alice", int64(30)},
		{"Bob", int64(25)},
		{"Charlie", int64(35)},
	}, rows)
}

func TestCreate_LargeInputKeepsOrder(t *testing.T) {
	s := newTestSession(t)

	const n = 5000
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(n - i)}
	}
	df, err := dataframe.Create(ctx, s, rows, []string{"v"})
	require.NoError(t, err)

	got, err := df.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, r := range got {
		require.Equal(t, int64(n-i), r[0], "row %d", i)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]any
		columns []string
		wantErr string
	}{
		{
			name:    "arity_too_long",
			rows:    [][]any{{"Alice", 30}, {"Bob", 25, "extra"}},
			columns: []string{"name", "age"},
			wantErr: "row 1 has 3 values, expected 2",
		},
		{
			name:    "arity_too_short",
			rows:    [][]any{{"Alice"}},
			columns: []string{"name", "age"},
			wantErr: "row 0 has 1 values, expected 2",
		},
		{
			name:    "no_columns",
			rows:    [][]any{{"Alice"}},
			wantErr: "at least one column name is required",
		},
		{
			name:    "duplicate_column",
			rows:    [][]any{{"Alice", "Smith"}},
			columns: []string{"name", "NAME"},
			wantErr: "duplicate column name",
		},
		{
			name:    "invalid_column_name",
			rows:    [][]any{{"Alice"}},
			columns: []string{"first name"},
			wantErr: "must match",
		},
		{
			name:    "mixed_types",
			rows:    [][]any{{"Alice", 30}, {"Bob", "twenty-five"}},
			columns: []string{"name", "age"},
			wantErr: `column "age": value of type VARCHAR does not match column type BIGINT`,
		},
		{
			name:    "all_null_column",
			rows:    [][]any{{"Alice", nil}, {"Bob", nil}},
			columns: []string{"name", "age"},
			wantErr: `column "age": cannot infer type`,
		},
		{
			name:    "unsupported_type",
			rows:    [][]any{{struct{}{}}},
			columns: []string{"x"},
			wantErr: "unsupported value type",
		},
		{
			name:    "uint_overflow",
			rows:    [][]any{{uint64(1 << 63)}},
			columns: []string{"x"},
			wantErr: "overflows BIGINT",
		},
	}

	s := newTestSession(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := dataframe.Create(ctx, s, tt.rows, tt.columns)
			require.Error(t, err)
			assert.Nil(t, df)
			assert.Contains(t, err.Error(), tt.wantErr)

			var valErr *domain.ValidationError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}

func TestCreate_TypeInference(t *testing.T) {
	s := newTestSession(t)
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	df, err := dataframe.Create(ctx, s, [][]any{
		{"a", int32(1), 1.5, true, ts, []byte{0x01, 0xab}},
		{nil, uint8(2), float32(2), false, nil, nil},
	}, []string{"s", "i", "f", "b", "t", "raw"})
	require.NoError(t, err)

	assert.Equal(t, dataframe.Schema{
		{Name: "s", Type: dataframe.TypeVarchar},
		{Name: "i", Type: dataframe.TypeBigint},
		{Name: "f", Type: dataframe.TypeDouble},
		{Name: "b", Type: dataframe.TypeBoolean},
		{Name: "t", Type: dataframe.TypeTimestamp},
		{Name: "raw", Type: dataframe.TypeBlob},
	}, df.Schema())
	assert.Equal(t, "(s VARCHAR, i BIGINT, f DOUBLE, b BOOLEAN, t TIMESTAMP, raw BLOB)", df.Schema().String())

	rows, err := df.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0][0])
	assert.Equal(t, int64(1), rows[0][1])
	assert.Equal(t, 1.5, rows[0][2])
	assert.Equal(t, true, rows[0][3])
	assert.True(t, ts.Equal(rows[0][4].(time.Time)))
	assert.Equal(t, []byte{0x01, 0xab}, rows[0][5])
	assert.Nil(t, rows[1][0])
	assert.Equal(t, int64(2), rows[1][1])
	assert.Nil(t, rows[1][4])
}

func TestCreate_EmptyRows(t *testing.T) {
	s := newTestSession(t)

	df, err := dataframe.Create(ctx, s, nil, []string{"name", "age"})
	require.NoError(t, err)

	n, err := df.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	out, err := df.ShowString(ctx, dataframe.DefaultShowOptions())
	require.NoError(t, err)
	assert.Equal(t, "+----+---+\n|name|age|\n+----+---+\n+----+---+\n", out)
}

func TestDataFrame_AfterSessionStop(t *testing.T) {
	s := newTestSession(t)
	df, err := dataframe.Create(ctx, s, people, []string{"name", "age"})
	require.NoError(t, err)
	require.NoError(t, s.Stop())

	_, err = df.Count(ctx)
	assert.ErrorIs(t, err, session.ErrStopped)

	_, err = df.Collect(ctx)
	assert.ErrorIs(t, err, session.ErrStopped)

	var buf bytes.Buffer
	err = df.Show(ctx, &buf, dataframe.DefaultShowOptions())
	assert.ErrorIs(t, err, session.ErrStopped)
	assert.Empty(t, buf.String())

	_, err = dataframe.Create(ctx, s, people, []string{"name", "age"})
	assert.ErrorIs(t, err, session.ErrStopped)
}
