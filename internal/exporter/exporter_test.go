package exporter

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/deeserv/Cafe-sales-tracker/internal/analysis"
	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

func sampleDashboard(withCost bool) *analysis.Dashboard {
	prev := model.Metrics{Quantity: 100, Revenue: 1000}
	return &analysis.Dashboard{
		Mode:            analysis.ModeCompare,
		CurrentPeriod:   "B",
		PreviousPeriod:  "A",
		DaysCurrent:     5,
		MarginAvailable: withCost,
		Current:         model.Metrics{Quantity: 120, Revenue: 1300, DailyQuantity: 24},
		Previous:        &prev,
		Delta:           &model.Delta{Quantity: 0.2},
		TopProducts:     []model.RankItem{{Label: "拿铁", Value: 70}, {Label: "美式", Value: 50}},
		Detail: []model.DetailRow{
			{Product: "拿铁", Primary: "咖啡饮品", Secondary: "奶咖家族", Quantity: 70, Revenue: 800, Profit: 500, MarginPct: 62.5, HealthTag: "正常"},
			{Product: "美式", Primary: "咖啡饮品", Secondary: "美式家族", Quantity: 50, Revenue: 500, HealthTag: "--"},
		},
	}
}

func TestExport_Sheets(t *testing.T) {
	t.Parallel()

	var stages []string
	data, err := Bytes(sampleDashboard(true), ExportOptions{Progress: func(p ProgressEvent) {
		stages = append(stages, p.Stage)
	}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(stages) == 0 || stages[len(stages)-1] != "完成" {
		t.Fatalf("progress stages: %v", stages)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetDetail {
		t.Fatalf("sheets=%v", sheets)
	}

	rows, err := f.GetRows(SheetDetail)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "商品名称" || rows[1][0] != "拿铁" || rows[1][6] != "62.5" {
		t.Fatalf("detail rows=%v", rows)
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary[0]) != 4 || summary[1][1] != "120" || summary[1][3] != "0.2" {
		t.Fatalf("summary rows=%v", summary)
	}
}

func TestExport_NoCostShowsPlaceholder(t *testing.T) {
	t.Parallel()

	f, err := Export(sampleDashboard(false), ExportOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(SheetDetail, "G2")
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if v != "--" {
		t.Fatalf("margin cell=%q", v)
	}
}

func TestExport_NilDashboard(t *testing.T) {
	t.Parallel()

	if _, err := Export(nil, ExportOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExport_ProgressMonotonic(t *testing.T) {
	t.Parallel()

	d := sampleDashboard(false)
	d.Detail = nil
	for i := 0; i < 450; i++ {
		d.Detail = append(d.Detail, model.DetailRow{Product: fmt.Sprintf("商品%03d", i), Quantity: 1, HealthTag: "--"})
	}

	var events []ProgressEvent
	if _, err := Bytes(d, ExportOptions{Progress: func(p ProgressEvent) {
		events = append(events, p)
	}}); err != nil {
		t.Fatalf("export: %v", err)
	}

	var detailSteps int
	for i, e := range events {
		if i > 0 && e.Percent <= events[i-1].Percent {
			t.Fatalf("progress not increasing: %v", events)
		}
		if e.Stage == "写入商品经营明细" && e.Percent > 5 {
			detailSteps++
		}
	}
	if detailSteps != 2 {
		t.Fatalf("detail steps=%d, events=%v", detailSteps, events)
	}
	if last := events[len(events)-1]; last.Percent != 100 {
		t.Fatalf("last event=%+v", last)
	}
}

func TestProgressReporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		percent []int
		want    []int
	}{
		{"截断越界值", []int{-5, 120}, []int{0, 100}},
		{"重复与回退不上报", []int{10, 10, 8, 20}, []int{10, 20}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []int
			p := newProgressReporter(func(e ProgressEvent) { got = append(got, e.Percent) })
			for _, v := range tt.percent {
				p.report(v, "x")
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	// 未设置回调时不应 panic
	newProgressReporter(nil).report(50, "x")
}
