package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/relloyd/survey2sql/logger"
)

// MockConnection is a Connector that records the SQL it is given.
// Queries return the rows configured in QueryResults, keyed by SQL text.
type MockConnection struct {
	mu            sync.Mutex
	Log           logger.Logger
	DbType        string
	Dml           DmlGenerator
	Statements    []string
	Args          [][]interface{}
	QueryResults  map[string][][]interface{}
	FailExecOn    int // fail the n'th exec (counting from 1); 0 never fails.
	Committed     bool
	RolledBack    bool
	Closed        bool
	execCount     int
	statementSink chan string
}

// NewMockConnectionWithMockTx returns a MockConnection using bind style "?" and a
// channel that receives a copy of every statement executed.
func NewMockConnectionWithMockTx(log logger.Logger, dbType string) (*MockConnection, chan string) {
	ch := make(chan string, 1000)
	c := &MockConnection{
		Log:          log,
		DbType:       dbType,
		Dml:          &DmlGeneratorTxtBatch{BindStyle: BindQuestionMark},
		QueryResults: make(map[string][][]interface{}),
	}
	c.statementSink = ch
	return c, ch
}

func (c *MockConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *MockConnection) BeginTx(ctx context.Context) (Transacter, error) {
	return &MockTx{conn: c}, nil
}

func (c *MockConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *MockConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execCount++
	if c.FailExecOn > 0 && c.execCount == c.FailExecOn {
		return nil, fmt.Errorf("mock exec failure on statement %v", c.execCount)
	}
	c.Statements = append(c.Statements, query)
	c.Args = append(c.Args, args)
	if c.statementSink != nil {
		select {
		case c.statementSink <- query:
		default:
		}
	}
	return mockResult(1), nil
}

func (c *MockConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *MockConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.QueryResults[query]
	if !ok {
		return nil, fmt.Errorf("mock connection has no result for query %q", query)
	}
	return &MockRows{rows: rows, idx: -1}, nil
}

func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

func (c *MockConnection) GetType() string {
	return c.DbType
}

func (c *MockConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

// MockTx forwards statements to its MockConnection.
type MockTx struct {
	conn *MockConnection
}

func (t *MockTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.conn.ExecContext(context.Background(), query, args...)
}

func (t *MockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.conn.ExecContext(ctx, query, args...)
}

func (t *MockTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.conn.RolledBack {
		return errors.New("transaction already rolled back")
	}
	t.conn.Committed = true
	return nil
}

func (t *MockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.RolledBack = true
	return nil
}

type mockResult int64

func (r mockResult) LastInsertId() (int64, error) {
	return 0, errors.New("LastInsertId is not supported by the mock connection")
}

func (r mockResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

// MockRows iterates over a fixed set of rows.
type MockRows struct {
	rows [][]interface{}
	idx  int
}

func (r *MockRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *MockRows) Scan(dest ...interface{}) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*interface{})
		if !ok {
			return fmt.Errorf("mock rows only scan into *interface{}, got %T", d)
		}
		*p = row[i]
	}
	return nil
}

func (r *MockRows) Columns() ([]string, error) {
	if len(r.rows) == 0 {
		return nil, nil
	}
	cols := make([]string, len(r.rows[0]))
	for i := range cols {
		cols[i] = fmt.Sprintf("col%v", i+1)
	}
	return cols, nil
}

func (r *MockRows) Err() error {
	return nil
}

func (r *MockRows) Close() error {
	return nil
}
