package clickhouse

import (
	"context"
	"errors"
)

var errRemote = errors.New("remote said no")

type fakeInsert struct {
	table string
	block *Block
}

// fakeClient stands in for a ClickHouse session and records what it was sent.
type fakeClient struct {
	blocks    map[string]*Block
	queryErr  error
	insertErr error
	execErr   error

	queries []string
	inserts []fakeInsert
	execs   []string
	closed  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{blocks: map[string]*Block{}}
}

func (f *fakeClient) Query(_ context.Context, query string) (*Block, error) {
	f.queries = append(f.queries, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	b, ok := f.blocks[query]
	if !ok {
		return nil, errors.New("unexpected query: " + query)
	}
	return b, nil
}

func (f *fakeClient) Insert(_ context.Context, table string, block *Block) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts = append(f.inserts, fakeInsert{table: table, block: block})
	return nil
}

func (f *fakeClient) Exec(_ context.Context, stmt string) error {
	if f.execErr != nil {
		return f.execErr
	}
	f.execs = append(f.execs, stmt)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func mustBlock(names, types []string, rows ...[]any) *Block {
	b := NewBlock(names, types)
	for _, r := range rows {
		if err := b.AppendRow(r...); err != nil {
			panic(err)
		}
	}
	return b
}
