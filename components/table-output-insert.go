package components

import (
	"context"
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/constants"
	h "github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/stream"
)

type TableInsertConfig struct {
	Log           logger.Logger
	Name          string
	OutputSchema  string
	OutputTable   string
	TargetCols    *om.OrderedMap // ordered map of: key = record field name; value = target column name
	ExecBatchSize int            // rows per INSERT statement
	DryRun        bool           // log the INSERT and count rows without touching the database
}

// TableInsert inserts rows into the target table inside a single transaction.
// On any error or panic the transaction is rolled back and nothing is committed.
// The caller owns db and is responsible for closing it.
func TableInsert(ctx context.Context, cfg *TableInsertConfig, db shared.Connector, rows []stream.Record) (rowsInserted int, err error) {
	if cfg.TargetCols == nil || cfg.TargetCols.Len() == 0 {
		return 0, fmt.Errorf("%v: missing target column configuration", cfg.Name)
	}
	if cfg.ExecBatchSize < 1 {
		cfg.ExecBatchSize = constants.DefaultExecBatchSize
	}
	if max := shared.MaxBatchRows(db.GetType(), cfg.TargetCols.Len()); max > 0 && cfg.ExecBatchSize > max {
		cfg.Log.Warn(cfg.Name, " exec batch size ", cfg.ExecBatchSize, " is too large for ", db.GetType(), " with ",
			cfg.TargetCols.Len(), " columns; using ", max)
		cfg.ExecBatchSize = max
	}
	gen, ok := db.GetDmlGenerator().NewInsertGenerator(&shared.SqlStatementGeneratorConfig{
		Log:          cfg.Log,
		OutputSchema: cfg.OutputSchema,
		OutputTable:  cfg.OutputTable,
		TargetCols:   cfg.TargetCols,
	}).(shared.SqlStmtTxtBatcher)
	if !ok {
		return 0, fmt.Errorf("%v: connection type %v does not support batched INSERT statements", cfg.Name, db.GetType())
	}
	if len(rows) == 0 {
		cfg.Log.Info(cfg.Name, " has no rows to insert")
		return 0, nil
	}
	if cfg.DryRun {
		gen.InitBatch(1)
		cfg.Log.Info(cfg.Name, " dry run would insert ", len(rows), " rows using SQL: ", gen.GetStatement())
		return 0, nil
	}
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "unable to begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(cfg, tx)
			panic(r)
		}
		if err != nil {
			rowsInserted = 0
			rollback(cfg, tx)
		}
	}()
	numCols := cfg.TargetCols.Len()
	batchRows := 0
	exec := func() error {
		if batchRows == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, gen.GetStatement(), gen.GetValues()...); err != nil {
			return errors.Wrapf(err, "%v: error executing INSERT", cfg.Name)
		}
		rowsInserted += batchRows
		batchRows = 0
		gen.InitBatch(cfg.ExecBatchSize)
		return nil
	}
	gen.InitBatch(cfg.ExecBatchSize)
	for idx, rec := range rows { // for each output row...
		values, err := getValues(rec, cfg.TargetCols, make([]interface{}, 0, numCols))
		if err != nil {
			logRecord(cfg, rec)
			return 0, errors.Wrapf(err, "%v: row %v", cfg.Name, idx+1)
		}
		full, err := gen.AddValuesToBatch(values)
		if err != nil {
			return 0, errors.Wrapf(err, "%v: row %v", cfg.Name, idx+1)
		}
		batchRows++
		if full {
			if err = exec(); err != nil {
				return 0, err
			}
		}
	}
	if err = exec(); err != nil { // flush the final partial batch.
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "unable to commit")
	}
	cfg.Log.Info(cfg.Name, " committed ", rowsInserted, " rows to ", cfg.OutputTable)
	return rowsInserted, nil
}

// getValues appends the values of rec for each key in keys to l.
// NaN floats are converted to nil so they are stored as NULL.
func getValues(rec stream.Record, keys *om.OrderedMap, l []interface{}) ([]interface{}, error) {
	iter := keys.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		v, found := rec.Lookup(kv.Key.(string))
		if !found {
			return nil, fmt.Errorf("field %q not found", kv.Key)
		}
		if h.IsNaN(v) {
			v = nil
		}
		l = append(l, v)
	}
	return l, nil
}

// logRecord writes rec to the debug log.
func logRecord(cfg *TableInsertConfig, rec stream.Record) {
	j, err := rec.GetJson(rec.GetSortedDataMapKeys())
	if err != nil {
		cfg.Log.Debug(cfg.Name, " unable to render record: ", err)
		return
	}
	cfg.Log.Debug(cfg.Name, " failed record: ", j)
}

func rollback(cfg *TableInsertConfig, tx shared.Transacter) {
	cfg.Log.Warn(cfg.Name, " rolling back")
	if err := tx.Rollback(); err != nil {
		cfg.Log.Error(cfg.Name, " rollback failed: ", err)
	}
}
