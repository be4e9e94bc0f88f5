// Package job runs the example dataframe job: acquire a session, build a
// table from literal rows, render it, and release the session.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"duck-job/internal/dataframe"
	"duck-job/internal/session"
)

// AppName is the session name of the example job.
const AppName = "ExampleJob"

// Person is one row of the example dataset.
type Person struct {
	Name string
	Age  int64
}

// Values returns the row in column order.
func (p Person) Values() []any {
	return []any{p.Name, p.Age}
}

// Columns is the schema of the example dataset.
var Columns = []string{"name", "age"}

// People is the example dataset.
var People = []Person{
	{Name: "Alice", Age: 30},
	{Name: "Bob", Age: 25},
	{Name: "Charlie", Age: 35},
}

// Spec is the input of one run: the session name and the table to build.
type Spec struct {
	AppName string
	Columns []string
	Rows    [][]any
}

// Example returns the spec of the example job.
func Example() Spec {
	rows := make([][]any, len(People))
	for i, p := range People {
		rows[i] = p.Values()
	}
	return Spec{
		AppName: AppName,
		Columns: append([]string(nil), Columns...),
		Rows:    rows,
	}
}

// Runner executes a Spec. The zero value runs against the default registry,
// renders with the default show options, and writes to stdout.
type Runner struct {
	Registry *session.Registry      // defaults to session.Default()
	Session  session.Options        // AppName is taken from the Spec when empty
	Show     *dataframe.ShowOptions // nil uses dataframe.DefaultShowOptions()
	Out      io.Writer              // defaults to os.Stdout
	Logger   *slog.Logger           // defaults to slog.Default()
}

// Run executes the four steps in order. The session is stopped on every
// path; a failed step skips the remaining ones.
func (r *Runner) Run(ctx context.Context, spec Spec) (err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := r.Registry
	if registry == nil {
		registry = session.Default()
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	show := dataframe.DefaultShowOptions()
	if r.Show != nil {
		show = *r.Show
	}

	opts := r.Session
	if opts.AppName == "" {
		opts.AppName = spec.AppName
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}

	sess, err := registry.GetOrCreate(ctx, opts)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		if stopErr := sess.Stop(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("release session: %w", stopErr))
		}
	}()

	df, err := dataframe.Create(ctx, sess, spec.Rows, spec.Columns)
	if err != nil {
		return fmt.Errorf("create dataframe: %w", err)
	}

	if err := df.Show(ctx, out, show); err != nil {
		return fmt.Errorf("show dataframe: %w", err)
	}

	sess.Logger().Info("job completed", "rows", len(spec.Rows), "columns", len(spec.Columns))
	return nil
}
