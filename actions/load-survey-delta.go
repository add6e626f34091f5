package actions

import (
	"context"
	"fmt"
	"io"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/components"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/stats"
	"github.com/relloyd/survey2sql/survey"
	"github.com/rs/xid"
)

// SurveyDeltaJob holds the options of one incremental survey load.
// It is the part of SurveyDeltaConfig that is saved to and read from job files.
type SurveyDeltaJob struct {
	// Source
	SourceConnection string `json:"sourceConnection" errorTxt:"source <connection>" mandatory:"yes"`
	SurveyID         string `json:"surveyId" errorTxt:"survey item id" mandatory:"yes"`
	SurveyDateField  string `json:"surveyDateField" errorTxt:"survey date field" mandatory:"yes"`
	SurveyLayer      int    `json:"surveyLayer"`
	SurveyPageSize   int    `json:"surveyPageSize,omitempty"`
	// Target
	TargetConnection string `json:"targetConnection" errorTxt:"target <connection>" mandatory:"yes"`
	TargetTable      string `json:"targetTable" errorTxt:"target [<schema>.]<table>" mandatory:"yes"`
	TargetDateField  string `json:"targetDateField" errorTxt:"target date field" mandatory:"yes"`
	// Reshape
	ColumnMap        string `json:"columnMap,omitempty"` // <survey field>:<target column>,...
	MultiSelectField string `json:"multiSelectField,omitempty"`
	OptionColumn     string `json:"optionColumn,omitempty"`
	JsonLogicFilter  string `json:"jsonLogicFilter,omitempty"`
	AbortAfter       int    `json:"abortAfter,omitempty"`
	// Window
	ExcludeToday bool   `json:"excludeToday"`
	StartDate    string `json:"startDate,omitempty"`
	TimeZone     string `json:"timeZone,omitempty"`
	// Sink
	ExecBatchSize      int    `json:"execBatchSize,omitempty"`
	MetricsPushGateway string `json:"metricsPushGateway,omitempty"`
}

// NewSurveyDeltaJob returns a SurveyDeltaJob with defaults applied.
func NewSurveyDeltaJob() SurveyDeltaJob {
	return SurveyDeltaJob{
		SurveyLayer:    constants.DefaultSurveyLayer,
		SurveyPageSize: constants.DefaultSurveyPageSize,
		OptionColumn:   constants.DefaultOptionColumn,
		ExcludeToday:   true,
		StartDate:      constants.DefaultStartDate,
		TimeZone:       "Local",
		ExecBatchSize:  constants.DefaultExecBatchSize,
	}
}

type SurveyDeltaConfig struct {
	SurveyDeltaJob
	SrcConnDetails           *shared.ConnectionDetails
	TgtConnDetails           *shared.ConnectionDetails
	LogLevel                 string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic         bool
	JsonLogs                 bool
	DryRun                   bool
	ExportConfigType         string
	ExportIncludeConnections bool
	// Optional overrides.
	Ctx      context.Context
	Out      io.Writer           // job definitions are written here; defaults to STDOUT
	Download survey.DownloadFunc // defaults to a survey.Client built from SrcConnDetails
	Now      func() time.Time
}

// SetupLoadSurveyDelta copies values from genericCfg (*LoadConfig) to actionCfg (*SurveyDeltaConfig).
func SetupLoadSurveyDelta(genericCfg interface{}, actionCfg interface{}) error {
	src := genericCfg.(*LoadConfig)
	tgt := actionCfg.(*SurveyDeltaConfig)
	var err error
	if tgt.SrcConnDetails, err = src.Connections.GetConnectionDetails(src.SourceString.GetConnectionName()); err != nil {
		return err
	}
	if tgt.TgtConnDetails, err = src.Connections.GetConnectionDetails(src.TargetString.GetConnectionName()); err != nil {
		return err
	}
	tgt.SurveyDeltaJob = src.SurveyDeltaJob
	// General
	tgt.LogLevel = src.LogLevel
	tgt.StackDumpOnPanic = src.StackDumpOnPanic
	tgt.JsonLogs = src.JsonLogs
	tgt.DryRun = src.DryRun
	tgt.ExportConfigType = src.ExportConfigType
	tgt.ExportIncludeConnections = src.ExportIncludeConnections
	tgt.Ctx = src.Ctx
	// Source
	tgt.SourceConnection = src.SourceString.GetConnectionName()
	tgt.SurveyID = src.SourceString.GetObject()
	// Target
	tgt.TargetConnection = src.TargetString.GetConnectionName()
	tgt.TargetTable = src.TargetString.GetObject()
	return nil
}

// RunSurveyDelta loads survey submissions dated after the target table's watermark into the target table.
func RunSurveyDelta(cfg interface{}) error {
	c := cfg.(*SurveyDeltaConfig)
	if c.ExportConfigType != "" { // if the user wants the job on STDOUT...
		c.LogLevel = "error"
	}
	if err := logger.ValidateLevel(c.LogLevel); err != nil {
		return err
	}
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	if c.SrcConnDetails == nil || c.TgtConnDetails == nil {
		return fmt.Errorf("source and target connection details are required")
	}
	if c.ExportConfigType != "" {
		j := c.GetJobDefinition(c.ExportIncludeConnections)
		return writeJobDefinition(out(c.Out), &j, c.ExportConfigType)
	}
	runId := xid.New().String()
	var log logger.Logger
	if c.JsonLogs {
		log = logger.NewJsonLogger(constants.AppName, c.LogLevel, c.StackDumpOnPanic).WithRunId(runId)
	} else {
		log = logger.NewLogger(constants.AppName, c.LogLevel, c.StackDumpOnPanic).WithRunId(runId)
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return runSurveyDelta(ctx, log, runId, c)
}

func runSurveyDelta(ctx context.Context, log logger.Logger, runId string, c *SurveyDeltaConfig) (err error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return errors.Wrapf(err, "invalid time zone %q", c.TimeZone)
	}
	startDate, err := helper.NormaliseDate(c.StartDate, loc)
	if err != nil {
		return errors.Wrap(err, "invalid start date")
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	today := helper.Today(now(), loc) // computed once per run.
	fanOutCfg := &components.FanOutConfig{
		Log:              log,
		Name:             "fan-out",
		MultiSelectField: c.MultiSelectField,
		OptionColumn:     c.OptionColumn,
		Separator:        constants.MultiSelectSeparator,
	}
	if fanOutCfg.Columns, err = getColumnMap(c.ColumnMap, c.SurveyDateField, c.TargetDateField); err != nil {
		return err
	}
	target := rdbms.SchemaTable{SchemaTable: c.TargetTable}
	runStats := stats.NewRunStats(runId, c.SurveyID, c.TargetTable)
	defer func() {
		runStats.Finish(err == nil)
		runStats.LogStats(log)
		if c.MetricsPushGateway != "" {
			if perr := runStats.Push(c.MetricsPushGateway); perr != nil {
				log.Warn(perr)
			}
		}
	}()
	// Read.
	download := c.Download
	if download == nil {
		creds, err := survey.GetCredentials(c.SrcConnDetails)
		if err != nil {
			return err
		}
		download = survey.NewClient(log, survey.Config{
			Credentials: creds,
			Layer:       c.SurveyLayer,
			PageSize:    c.SurveyPageSize,
		}).Download
	}
	rows, err := download(ctx, c.SurveyID)
	if err != nil {
		return errors.Wrapf(err, "unable to download survey %v", c.SurveyID)
	}
	runStats.AddFetched(len(rows))
	log.Info("Downloaded ", len(rows), " survey records")
	// Resolve watermark.
	db, err := rdbms.OpenDbConnection(log, *c.TgtConnDetails)
	if err != nil {
		return errors.Wrapf(err, "unable to connect to %v", c.TargetConnection)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("error closing connection ", c.TargetConnection, ": ", cerr)
		}
	}()
	watermark, err := components.GetWatermark(ctx, &components.WatermarkConfig{
		Log:       log,
		Schema:    target.GetSchema(),
		Table:     target.GetTable(),
		DateField: c.TargetDateField,
	}, db)
	if err != nil {
		return err
	}
	lower := watermark.LowerBound(startDate)
	upper := ""
	if c.ExcludeToday {
		upper = today
	}
	runStats.SetWindow(watermark.String(), lower, upper)
	log.Info("Loading survey records dated after ", lower, " and before ", upperText(upper))
	// Filter and reshape.
	filters, err := getRowFilters(log, c, lower, upper, loc)
	if err != nil {
		return err
	}
	kept, err := components.FilterRows(&components.FilterRowsConfig{Log: log, Name: "filter", Filters: filters}, rows)
	if err != nil {
		return err
	}
	runStats.AddKept(len(kept))
	out, err := components.FanOutMultiSelect(fanOutCfg, kept)
	if err != nil {
		return err
	}
	runStats.AddOutput(len(out))
	// Insert and commit.
	n, err := components.TableInsert(ctx, &components.TableInsertConfig{
		Log:           log,
		Name:          "insert",
		OutputSchema:  target.GetSchema(),
		OutputTable:   target.GetTable(),
		TargetCols:    fanOutCfg.OutputColumns(),
		ExecBatchSize: c.ExecBatchSize,
		DryRun:        c.DryRun,
	}, db, out)
	if err != nil {
		return err
	}
	runStats.AddInserted(n)
	return nil
}

func upperText(upper string) string {
	if upper == "" {
		return "<no limit>"
	}
	return upper
}

// getRowFilters returns the optional JSON Logic filter, the date window and the optional abort-after counter.
func getRowFilters(log logger.Logger, c *SurveyDeltaConfig, lower, upper string, loc *time.Location) ([]components.RowFilter, error) {
	filters := make([]components.RowFilter, 0, 3)
	if c.JsonLogicFilter != "" {
		f, err := components.NewJsonLogicFilter(log, c.JsonLogicFilter)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	filters = append(filters, components.NewDateWindowFilter(log, c.SurveyDateField, lower, upper, loc))
	if c.AbortAfter > 0 {
		f, err := components.NewRowFilter(log, components.FilterRowsAbortAfter, components.FilterMetadata(fmt.Sprint(c.AbortAfter)))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// getColumnMap parses tokens of the form <survey field>:<target column> and makes sure the survey
// date field is loaded into the target date field, adding it first if it is not mapped.
func getColumnMap(tokens string, surveyDateField string, targetDateField string) (*om.OrderedMap, error) {
	m := helper.TokensToOrderedMap(tokens)
	if v, ok := m.Get(surveyDateField); ok {
		if v.(string) != targetDateField {
			return nil, fmt.Errorf("survey date field %v must map to target date field %v, not %v", surveyDateField, targetDateField, v)
		}
		return m, nil
	}
	retval := om.NewOrderedMap()
	retval.Set(surveyDateField, targetDateField)
	iter := m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		if kv.Value.(string) == targetDateField {
			return nil, fmt.Errorf("target date field %v can only be loaded from survey date field %v", targetDateField, surveyDateField)
		}
		retval.Set(kv.Key, kv.Value)
	}
	return retval, nil
}
