package components

import (
	"context"
	"testing"
	"time"

	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

func TestGetWatermark(t *testing.T) {
	log := newTestLogger()
	ctx := context.Background()
	db := newTestSqlite(t, log, "create table inspections (date_col text, activity_col text)")
	defer db.Close()
	cfg := &WatermarkConfig{Log: log, Table: "inspections", DateField: "date_col"}

	// Test 1
	log.Info("Test 1, an empty table has no watermark...")
	w, err := GetWatermark(ctx, cfg, db)
	if err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	if w.Found {
		t.Fatal("Test 1, expected no watermark; got ", w)
	}
	if w.LowerBound("") != constants.DefaultStartDate || w.LowerBound("2020-01-01") != "2020-01-01" {
		t.Fatal("Test 1, unexpected lower bound: ", w.LowerBound(""))
	}
	log.Info("Test 1, complete")

	// Test 2
	log.Info("Test 2, the max date is found and normalised...")
	if _, err = db.Exec("insert into inspections (date_col, activity_col) values (?, ?), (?, ?)",
		"2021-03-09", "a", "2021-03-11 00:00:00", "b"); err != nil {
		t.Fatal(err)
	}
	w, err = GetWatermark(ctx, cfg, db)
	if err != nil {
		t.Fatal("Test 2, unexpected error: ", err)
	}
	if !w.Found || w.Date != "2021-03-11" || w.LowerBound("2020-01-01") != "2021-03-11" {
		t.Fatal("Test 2, unexpected watermark: ", w)
	}
	log.Info("Test 2, complete")

	// Test 3
	log.Info("Test 3, a missing table is an error...")
	cfg.Table = "missing"
	if _, err = GetWatermark(ctx, cfg, db); err == nil {
		t.Fatal("Test 3, expected error")
	}
	log.Info("Test 3, complete")
}

func TestGetWatermarkMock(t *testing.T) {
	log := newTestLogger()
	db, _ := shared.NewMockConnectionWithMockTx(log, constants.ConnectionTypeMockSqlServer)
	sqltext := GetMaxDateSql("dbo", "t", "d")
	if sqltext != "select max(d) from dbo.t" {
		t.Fatal("unexpected SQL: ", sqltext)
	}
	// Test 1
	log.Info("Test 1, a DATE returned as midnight UTC keeps its day west of UTC...")
	db.QueryResults[sqltext] = [][]interface{}{{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}
	cfg := &WatermarkConfig{Log: log, Schema: "dbo", Table: "t", DateField: "d"}
	w, err := GetWatermark(context.Background(), cfg, db)
	if err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	if !w.Found || w.Date != "2024-05-01" {
		t.Fatal("Test 1, expected watermark 2024-05-01; got ", w)
	}
	log.Info("Test 1, complete")

	// Test 2
	log.Info("Test 2, a timestamp keeps the date in its own location...")
	nz, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		nz = time.FixedZone("NZST", 12*60*60)
	}
	db.QueryResults[sqltext] = [][]interface{}{{time.Date(2021, 3, 12, 0, 30, 0, 0, nz)}}
	if w, err = GetWatermark(context.Background(), cfg, db); err != nil {
		t.Fatal("Test 2, unexpected error: ", err)
	}
	if w.Date != "2021-03-12" {
		t.Fatal("Test 2, expected watermark 2021-03-12; got ", w.Date)
	}
	log.Info("Test 2, complete")

	// Test 3
	log.Info("Test 3, malformed values are errors...")
	db.QueryResults[sqltext] = [][]interface{}{{"garbage"}}
	if _, err = GetWatermark(context.Background(), cfg, db); err == nil {
		t.Fatal("Test 3, expected error for malformed watermark")
	}
	log.Info("Test 3, complete")
}
