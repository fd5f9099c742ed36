package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rec(period, store, product, primary, secondary string, qty, revenue, profit float64) model.SalesRecord {
	return model.SalesRecord{
		Period: period, Store: store, Product: product,
		Primary: primary, Secondary: secondary,
		Quantity: qty, Revenue: revenue, Profit: profit,
	}
}

func dataset(hasCost bool, records ...model.SalesRecord) *model.Dataset {
	return &model.Dataset{
		Sales: &model.SalesTable{Records: records},
		Cost:  model.CostReport{Available: hasCost},
	}
}

func TestBuild_TwoPeriodScenarioWithoutCost(t *testing.T) {
	t.Parallel()

	ds := dataset(false,
		rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 60, 600, 0),
		rec("A", "南山店", "美式", "咖啡饮品", "美式家族", 40, 400, 0),
		rec("B", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 70, 800, 0),
		rec("B", "南山店", "美式", "咖啡饮品", "美式家族", 50, 500, 0),
	)

	d, err := Build(ds, Query{Compare: true, DaysCurrent: 5, DaysPrevious: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Mode != ModeCompare || d.CurrentPeriod != "B" || d.PreviousPeriod != "A" {
		t.Fatalf("unexpected periods: %s %s %s", d.Mode, d.CurrentPeriod, d.PreviousPeriod)
	}
	if !floatEquals(d.Current.DailyQuantity, 24) {
		t.Fatalf("daily quantity=%v", d.Current.DailyQuantity)
	}
	if d.MarginAvailable {
		t.Fatalf("margin should be unavailable without cost")
	}
	if d.Delta == nil || !floatEquals(d.Delta.Quantity, 0.2) {
		t.Fatalf("delta=%+v", d.Delta)
	}
	if d.Quadrant != nil || d.ProfitByPrimary != nil {
		t.Fatalf("profit views should be absent without cost")
	}
	for _, row := range d.Detail {
		if row.Health != model.HealthNoCostData {
			t.Fatalf("detail health=%s", row.Health)
		}
	}
}

func TestBuild_CompareIgnoresPeriodSelection(t *testing.T) {
	t.Parallel()

	ds := dataset(false,
		rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 10, 100, 0),
		rec("B", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 20, 200, 0),
		rec("C", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 30, 300, 0),
	)

	d, err := Build(ds, Query{Compare: true, Periods: []string{"B"}, CurrentPeriod: "C", PreviousPeriod: "A"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Mode != ModeCompare {
		t.Fatalf("mode=%s, want compare", d.Mode)
	}
	if d.CurrentPeriod != "C" || d.PreviousPeriod != "A" {
		t.Fatalf("periods=%s/%s, want C/A", d.CurrentPeriod, d.PreviousPeriod)
	}
	if len(d.Periods) != 3 {
		t.Fatalf("available periods=%v", d.Periods)
	}
}

func TestBuild_SingleMode(t *testing.T) {
	t.Parallel()

	ds := dataset(true,
		rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 10, 200, 140),
		rec("B", "福田店", "柠檬茶", "非咖啡饮品", "手打柠", 5, 100, 10),
	)

	d, err := Build(ds, Query{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Mode != ModeSingle || d.Previous != nil || d.Delta != nil {
		t.Fatalf("expected single mode: %+v", d)
	}
	if d.DaysCurrent != DefaultOperatingDays || d.RowCount != 2 {
		t.Fatalf("days=%d rows=%d", d.DaysCurrent, d.RowCount)
	}
	if d.Quadrant == nil || len(d.Quadrant.Items) != 2 {
		t.Fatalf("quadrant=%+v", d.Quadrant)
	}
	if len(d.ProfitByPrimary) != 2 || d.ProfitByPrimary[0].Label != "咖啡饮品" {
		t.Fatalf("profit by primary=%+v", d.ProfitByPrimary)
	}
	if d.TopProducts[0].Label != "拿铁" {
		t.Fatalf("top products=%+v", d.TopProducts)
	}
	// 柠檬茶毛利率 10% 低于默认阈值
	for _, row := range d.Detail {
		if row.Product == "柠檬茶" && row.Health != model.HealthLowMargin {
			t.Fatalf("柠檬茶 health=%s", row.Health)
		}
	}
}

func TestBuild_CompareNeedsTwoPeriods(t *testing.T) {
	t.Parallel()

	ds := dataset(false, rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 10, 200, 0))
	d, err := Build(ds, Query{Compare: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Mode != ModeSingle || d.Delta != nil {
		t.Fatalf("one period must fall back to single mode")
	}
}

func TestBuild_ExplicitPeriods(t *testing.T) {
	t.Parallel()

	ds := dataset(false,
		rec("A", "南山店", "拿铁", "", "", 10, 100, 0),
		rec("B", "南山店", "拿铁", "", "", 20, 200, 0),
		rec("C", "南山店", "拿铁", "", "", 30, 300, 0),
	)
	d, err := Build(ds, Query{Compare: true, CurrentPeriod: "B", PreviousPeriod: "C"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.CurrentPeriod != "B" || d.PreviousPeriod != "C" || d.Current.Quantity != 20 || d.Previous.Quantity != 30 {
		t.Fatalf("unexpected: %s/%s %+v", d.CurrentPeriod, d.PreviousPeriod, d.Current)
	}

	// 上期与本期相同时回退为第一个其他周期
	d, err = Build(ds, Query{Compare: true, CurrentPeriod: "C", PreviousPeriod: "C"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.PreviousPeriod != "A" {
		t.Fatalf("previous=%s", d.PreviousPeriod)
	}
}

func TestBuild_EmptySelectionAndNoData(t *testing.T) {
	t.Parallel()

	ds := dataset(false, rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 10, 200, 0))
	if _, err := Build(ds, Query{Stores: []string{"不存在的门店"}}); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := Build(dataset(false), Query{}); !errors.Is(err, model.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := Build(nil, Query{}); !errors.Is(err, model.ErrNoData) {
		t.Fatalf("expected ErrNoData for nil dataset, got %v", err)
	}
}

func TestBuild_ProductSearch(t *testing.T) {
	t.Parallel()

	ds := dataset(false,
		rec("A", "南山店", "拿铁", "咖啡饮品", "奶咖家族", 10, 300, 0),
		rec("A", "福田店", "美式", "咖啡饮品", "美式家族", 10, 100, 0),
	)
	d, err := Build(ds, Query{Products: []string{"拿铁"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Search == nil || !floatEquals(d.Search.Contribution, 0.75) {
		t.Fatalf("search=%+v", d.Search)
	}
}

func TestQueryWithDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       Query
		wantCur  int
		wantPrev int
	}{
		{name: "默认值", in: Query{}, wantCur: 5, wantPrev: 5},
		{name: "上期沿用本期", in: Query{DaysCurrent: 7}, wantCur: 7, wantPrev: 7},
		{name: "超上限", in: Query{DaysCurrent: 40, DaysPrevious: 99}, wantCur: 31, wantPrev: 31},
		{name: "负数", in: Query{DaysCurrent: -1, DaysPrevious: 3}, wantCur: 1, wantPrev: 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.WithDefaults()
			if got.DaysCurrent != tt.wantCur || got.DaysPrevious != tt.wantPrev || got.TopN != DefaultTopN {
				t.Fatalf("got %+v", got)
			}
		})
	}
}
