package components

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/constants"
	h "github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

// Watermark is the latest date already loaded into the target table.
// Found is false when the table holds no dated rows.
type Watermark struct {
	Date  string // YYYY-MM-DD
	Found bool
}

// LowerBound returns the exclusive lower date bound for new survey rows.
// If no watermark was found, startDate is used, falling back to constants.DefaultStartDate.
func (w Watermark) LowerBound(startDate string) string {
	if w.Found {
		return w.Date
	}
	if startDate == "" {
		return constants.DefaultStartDate
	}
	return startDate
}

func (w Watermark) String() string {
	if !w.Found {
		return "<none>"
	}
	return w.Date
}

type WatermarkConfig struct {
	Log       logger.Logger
	Schema    string
	Table     string
	DateField string
}

// GetMaxDateSql returns the SQL used to find the watermark.
func GetMaxDateSql(schema, table, dateField string) string {
	st := rdbms.NewSchemaTable(schema, table)
	return fmt.Sprintf("select max(%v) from %v", dateField, st.String())
}

// GetWatermark fetches max(DateField) from the target table and normalises it to YYYY-MM-DD.
// Time values are not moved between zones: the stored date is the date that was written.
func GetWatermark(ctx context.Context, cfg *WatermarkConfig, db shared.Connector) (Watermark, error) {
	sqltext := GetMaxDateSql(cfg.Schema, cfg.Table, cfg.DateField)
	cfg.Log.Debug("fetching watermark using SQL: ", sqltext)
	v, found, err := rdbms.SqlQuerySingleValue(ctx, cfg.Log, db, sqltext)
	if err != nil {
		return Watermark{}, errors.Wrap(err, "unable to fetch the target table watermark")
	}
	if !found || v == nil {
		cfg.Log.Info("No watermark found in ", cfg.Table, ".", cfg.DateField)
		return Watermark{}, nil
	}
	d, err := h.NormaliseStoredDate(v)
	if err != nil {
		return Watermark{}, errors.Wrapf(err, "unexpected watermark value in %v.%v", cfg.Table, cfg.DateField)
	}
	if d == "" {
		return Watermark{}, nil
	}
	cfg.Log.Info("Found watermark ", d, " in ", cfg.Table, ".", cfg.DateField)
	return Watermark{Date: d, Found: true}, nil
}
