package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
)

// RunStats counts the rows seen by each step of one load.
// Counters are updated atomically so they can be rendered while the run is in progress.
type RunStats struct {
	RunId       string
	SurveyId    string
	TargetTable string
	startTime   time.Time
	endTime     atomic.Value // time.Time
	fetched     int64
	kept        int64
	output      int64
	inserted    int64
	watermark   atomic.Value // string
	lowerBound  atomic.Value // string
	upperBound  atomic.Value // string
	succeeded   int32
}

// Stats is a snapshot of RunStats.
type Stats struct {
	RunId          string `json:"runId"`
	SurveyId       string `json:"surveyId"`
	TargetTable    string `json:"targetTable"`
	StatusText     string `json:"statusText"`
	StatusEmoji    string `json:"statusEmoji"`
	ElapsedTimeSec int    `json:"elapsedTimeSec"`
	RowsFetched    int64  `json:"rowsFetched"`
	RowsKept       int64  `json:"rowsKept"`
	RowsOutput     int64  `json:"rowsOutput"`
	RowsInserted   int64  `json:"rowsInserted"`
	Watermark      string `json:"watermark"`
	LowerBound     string `json:"lowerBound"`
	UpperBound     string `json:"upperBound"`
}

func NewRunStats(runId string, surveyId string, targetTable string) *RunStats {
	s := &RunStats{RunId: runId, SurveyId: surveyId, TargetTable: targetTable, startTime: time.Now()}
	s.watermark.Store("")
	s.lowerBound.Store("")
	s.upperBound.Store("")
	return s
}

func (s *RunStats) AddFetched(n int)  { atomic.AddInt64(&s.fetched, int64(n)) }
func (s *RunStats) AddKept(n int)     { atomic.AddInt64(&s.kept, int64(n)) }
func (s *RunStats) AddOutput(n int)   { atomic.AddInt64(&s.output, int64(n)) }
func (s *RunStats) AddInserted(n int) { atomic.AddInt64(&s.inserted, int64(n)) }

// SetWindow saves the watermark found in the target plus the date window applied to survey rows.
func (s *RunStats) SetWindow(watermark string, lower string, upper string) {
	s.watermark.Store(watermark)
	s.lowerBound.Store(lower)
	s.upperBound.Store(upper)
}

// Finish marks the run as complete.
func (s *RunStats) Finish(success bool) {
	s.endTime.Store(time.Now())
	if success {
		atomic.StoreInt32(&s.succeeded, 1)
	}
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (s *RunStats) RenderStats() Stats {
	end, finished := s.endTime.Load().(time.Time)
	if !finished {
		end = time.Now()
	}
	var statusText, statusEmoji string
	switch {
	case !finished:
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
	case atomic.LoadInt32(&s.succeeded) == 1:
		statusText = "complete"
		statusEmoji = "\U00002705" // green tick
	default:
		statusText = "failed"
		statusEmoji = constants.EmojiBang
	}
	return Stats{
		RunId:          s.RunId,
		SurveyId:       s.SurveyId,
		TargetTable:    s.TargetTable,
		StatusText:     statusText,
		StatusEmoji:    statusEmoji,
		ElapsedTimeSec: int(end.Sub(s.startTime).Seconds()),
		RowsFetched:    atomic.LoadInt64(&s.fetched),
		RowsKept:       atomic.LoadInt64(&s.kept),
		RowsOutput:     atomic.LoadInt64(&s.output),
		RowsInserted:   atomic.LoadInt64(&s.inserted),
		Watermark:      s.watermark.Load().(string),
		LowerBound:     s.lowerBound.Load().(string),
		UpperBound:     s.upperBound.Load().(string),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for survey %v into %v %v %v "+
			"elapsedTimeSec=%v "+
			"rowsFetched=%v "+
			"rowsKept=%v "+
			"rowsOutput=%v "+
			"rowsInserted=%v "+
			"watermark=%q "+
			"window=(%v, %v)",
		s.SurveyId, s.TargetTable, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.RowsFetched,
		s.RowsKept,
		s.RowsOutput,
		s.RowsInserted,
		s.Watermark,
		s.LowerBound, s.UpperBound)
}

// LogStats writes the current stats at info level.
func (s *RunStats) LogStats(log logger.Logger) {
	log.Info(s.RenderStats())
}

// newRegistry builds a private registry holding gauges for the current stats.
func (s *RunStats) newRegistry() *prometheus.Registry {
	st := s.RenderStats()
	reg := prometheus.NewRegistry()
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "survey2sql_rows",
		Help: "Number of rows handled by each step of the last load.",
	}, []string{"step"})
	rows.WithLabelValues("fetched").Set(float64(st.RowsFetched))
	rows.WithLabelValues("kept").Set(float64(st.RowsKept))
	rows.WithLabelValues("output").Set(float64(st.RowsOutput))
	rows.WithLabelValues("inserted").Set(float64(st.RowsInserted))
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey2sql_duration_seconds",
		Help: "Elapsed time of the last load.",
	})
	duration.Set(float64(st.ElapsedTimeSec))
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey2sql_last_success",
		Help: "1 if the last load committed, else 0.",
	})
	if st.StatusText == "complete" {
		success.Set(1)
	}
	completion := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey2sql_last_completion_timestamp_seconds",
		Help: "Unix time the last load finished.",
	})
	completion.SetToCurrentTime()
	reg.MustRegister(rows, duration, success, completion)
	return reg
}

// Push sends the current stats to the Prometheus Pushgateway at url, grouped by survey and table.
func (s *RunStats) Push(url string) error {
	err := push.New(url, constants.MetricsJobName).
		Gatherer(s.newRegistry()).
		Grouping("survey", s.SurveyId).
		Grouping("table", s.TargetTable).
		Push()
	if err != nil {
		return errors.Wrapf(err, "error pushing metrics to %v", url)
	}
	return nil
}
