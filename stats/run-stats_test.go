package stats

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestRunStats_RenderStats(t *testing.T) {
	s := NewRunStats("run1", "form1", "dbo.activity")
	s.AddFetched(10)
	s.AddKept(4)
	s.AddOutput(9)
	s.SetWindow("2021-03-01", "2021-03-01", "2021-03-15")
	st := s.RenderStats()
	if st.StatusText != "running" {
		t.Fatalf("expected running; got %v", st.StatusText)
	}
	s.AddInserted(9)
	s.Finish(true)
	st = s.RenderStats()
	if st.StatusText != "complete" || st.RowsFetched != 10 || st.RowsKept != 4 || st.RowsOutput != 9 || st.RowsInserted != 9 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if !strings.Contains(st.String(), "rowsInserted=9") || !strings.Contains(st.String(), `watermark="2021-03-01"`) {
		t.Fatalf("unexpected stats string %v", st.String())
	}
	f := NewRunStats("run2", "form1", "t")
	f.Finish(false)
	if f.RenderStats().StatusText != "failed" {
		t.Fatal("expected failed status")
	}
}

func TestRunStats_Push(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := ioutil.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		gotBody = string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	s := NewRunStats("run1", "form1", "activity")
	s.AddInserted(3)
	s.Finish(true)
	if err := s.Push(srv.URL); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !strings.HasPrefix(gotPath, "/metrics/job/survey2sql/") ||
		!strings.Contains(gotPath, "/survey/form1") ||
		!strings.Contains(gotPath, "/table/activity") {
		t.Fatalf("unexpected push path %v", gotPath)
	}
	if len(gotBody) == 0 {
		t.Fatal("expected metrics in the push body")
	}
}
