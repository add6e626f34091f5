package components

import (
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/stream"
)

// RowFilter decides whether rec is kept. Filters may rewrite fields of rec in place.
type RowFilter func(rec stream.Record) (keep bool, err error)

type FilterType string
type FilterMetadata string

type mapFilterFuncs map[FilterType]filterSetupFunc
type filterSetupFunc func(log logger.Logger, metadata FilterMetadata) (RowFilter, error)
