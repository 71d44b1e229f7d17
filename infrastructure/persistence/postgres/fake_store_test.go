package postgres

import (
	"context"
	"testing"
)

type stub struct {
	rows []Row
	err  error
}

// fakeStore scripts statement results in FIFO order and records every
// statement it sees, including those inside transactions.
type fakeStore struct {
	t         *testing.T
	stubs     []stub
	calls     []executedCall
	commits   int
	rollbacks int
}

type executedCall struct {
	sql    string
	params []any
}

func newFakeStore(t *testing.T) *fakeStore {
	return &fakeStore{t: t}
}

func (f *fakeStore) returns(rows ...Row) *fakeStore {
	f.stubs = append(f.stubs, stub{rows: rows})
	return f
}

func (f *fakeStore) fails(err error) *fakeStore {
	f.stubs = append(f.stubs, stub{err: err})
	return f
}

func (f *fakeStore) Execute(_ context.Context, sqlText string, params ...any) (*Result, error) {
	f.calls = append(f.calls, executedCall{sql: sqlText, params: params})
	if len(f.stubs) == 0 {
		f.t.Fatalf("unexpected statement: %s", sqlText)
	}
	next := f.stubs[0]
	f.stubs = f.stubs[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &Result{Rows: next.rows, RowCount: len(next.rows)}, nil
}

func (f *fakeStore) WithinTransaction(ctx context.Context, fn func(tx Executor) error) error {
	if err := fn(f); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}
