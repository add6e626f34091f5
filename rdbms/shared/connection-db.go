package shared

import (
	"context"
	"database/sql"
	"errors"
)

// DbConnection is a wrapper around Go native sql.DB.
// It also adds the DmlGenerator interface for use in components that output records to a database.
type DbConnection struct {
	DbSql  *sql.DB
	Dml    DmlGenerator
	DbType string
}

// NewDbConnection wraps an open sql.DB whose driver uses the placeholder style bind.
func NewDbConnection(db *sql.DB, dbType string, bind BindStyle) *DbConnection {
	return &DbConnection{
		DbSql:  db,
		Dml:    &DmlGeneratorTxtBatch{BindStyle: bind},
		DbType: dbType,
	}
}

// Connector:

func (c *DbConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *DbConnection) BeginTx(ctx context.Context) (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("DbConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &DbTx{txSql: tx}, nil
}

func (c *DbConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *DbConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *DbConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *DbConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	if err != nil { // avoid returning a typed nil inside the interface.
		return nil, err
	}
	return r, nil
}

func (c *DbConnection) Close() error {
	if c.DbSql == nil {
		return nil
	}
	return c.DbSql.Close()
}

func (c *DbConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

func (c *DbConnection) GetType() string {
	return c.DbType
}

// Transacter:

type DbTx struct {
	txSql *sql.Tx
}

func (t *DbTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *DbTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *DbTx) Commit() error {
	return t.txSql.Commit()
}

func (t *DbTx) Rollback() error {
	return t.txSql.Rollback()
}
