package rdbms

import (
	"context"
	"fmt"

	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

// SqlQuery executes sqltext and passes the header and each row to i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("error fetching columns for SQL: '%v': %w", sqltext, err)
	}
	log.Debug("query columns = ", cols)
	// Scan the values dynamically.
	numCols := len(cols)
	scanPtrs := make([]interface{}, numCols)
	scanVals := make([]interface{}, numCols)
	for idx := range scanVals { // for each column...
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, numCols)
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to.
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]interface{}, numCols)
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// singleValueHandler keeps the first column of the first row.
type singleValueHandler struct {
	value interface{}
	found bool
}

func (s *singleValueHandler) HandleHeader(i []interface{}) error {
	if len(i) == 0 {
		return fmt.Errorf("query returned no columns")
	}
	return nil
}

func (s *singleValueHandler) HandleRow(i []interface{}) error {
	if !s.found {
		s.value = i[0]
		s.found = true
	}
	return nil
}

// SqlQuerySingleValue executes sqltext and returns the first column of the first row.
// found is false if the query returned no rows.
func SqlQuerySingleValue(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string) (value interface{}, found bool, err error) {
	h := &singleValueHandler{}
	if err = SqlQuery(ctx, log, db, sqltext, h); err != nil {
		return nil, false, err
	}
	return h.value, h.found, nil
}
