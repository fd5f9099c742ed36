package calculator

import (
	"testing"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

func sampleRecords() []model.SalesRecord {
	return []model.SalesRecord{
		{Product: "拿铁", Store: "南山店", Primary: "咖啡饮品", Secondary: "奶咖家族", Quantity: 10, Revenue: 200, Profit: 120},
		{Product: "美式", Store: "南山店", Primary: "咖啡饮品", Secondary: "美式家族", Quantity: 30, Revenue: 300, Profit: 240},
		{Product: "拿铁", Store: "福田店", Primary: "咖啡饮品", Secondary: "奶咖家族", Quantity: 5, Revenue: 100, Profit: 60},
		{Product: "柠檬茶", Store: "福田店", Primary: "非咖啡饮品", Secondary: "手打柠", Quantity: 8, Revenue: 120, Profit: 120},
	}
}

func TestAggregateByProduct(t *testing.T) {
	agg := AggregateByProduct(sampleRecords())
	if len(agg) != 3 {
		t.Fatalf("products=%d", len(agg))
	}
	if agg[0].Product != "拿铁" || agg[0].Quantity != 15 || agg[0].Revenue != 300 {
		t.Fatalf("拿铁: %+v", agg[0])
	}
}

func TestSumByAndTopN(t *testing.T) {
	items := SumBy(sampleRecords(), ByProduct, QuantityOf)
	if items[0].Label != "美式" || items[0].Value != 30 {
		t.Fatalf("top item: %+v", items[0])
	}
	if top := TopN(items, 2); len(top) != 2 {
		t.Fatalf("TopN len=%d", len(top))
	}
	if all := TopN(items, 0); len(all) != 3 {
		t.Fatalf("TopN(0) len=%d", len(all))
	}
}

func TestDailyChangeBy(t *testing.T) {
	cur := []model.SalesRecord{{Secondary: "奶咖家族", Quantity: 50}, {Secondary: "新品", Quantity: 10}}
	prev := []model.SalesRecord{{Secondary: "奶咖家族", Quantity: 40}, {Secondary: "停售", Quantity: 20}}

	items := DailyChangeBy(cur, prev, 5, 4, BySecondary, QuantityOf)
	got := make(map[string]float64)
	for _, it := range items {
		got[it.Label] = it.Value
	}
	if len(items) != 3 {
		t.Fatalf("items=%v", items)
	}
	if !floatEquals(got["奶咖家族"], 0) || !floatEquals(got["新品"], 0) || !floatEquals(got["停售"], 0) {
		t.Fatalf("changes=%v", got)
	}
}

func TestDailyChangeBy_OneSidedIsZero(t *testing.T) {
	cur := []model.SalesRecord{{Secondary: "美式家族", Quantity: 10}, {Secondary: "新品", Quantity: 5}}
	prev := []model.SalesRecord{{Secondary: "美式家族", Quantity: 5}, {Secondary: "停售", Quantity: 20}}

	items := DailyChangeBy(cur, prev, 5, 5, BySecondary, QuantityOf)
	got := make(map[string]float64)
	for _, it := range items {
		got[it.Label] = it.Value
	}
	if !floatEquals(got["美式家族"], 1) {
		t.Fatalf("美式家族=%v", got["美式家族"])
	}
	for _, label := range []string{"新品", "停售"} {
		v, ok := got[label]
		if !ok || !floatEquals(v, 0) {
			t.Fatalf("%s: expected 0, got %v (present=%v)", label, v, ok)
		}
	}
	if items[len(items)-1].Label != "美式家族" {
		t.Fatalf("expected ascending order, got %v", items)
	}
}

func TestHeatmap(t *testing.T) {
	cur := []model.SalesRecord{{Store: "南山店", Primary: "咖啡饮品", Quantity: 60}}
	prev := []model.SalesRecord{{Store: "南山店", Primary: "咖啡饮品", Quantity: 50}, {Store: "福田店", Primary: "咖啡饮品", Quantity: 10}}

	cells := Heatmap(cur, prev, 5, 5)
	if len(cells) != 2 {
		t.Fatalf("cells=%v", cells)
	}
	byStore := map[string]model.HeatCell{}
	for _, c := range cells {
		byStore[c.Store] = c
	}
	if !floatEquals(byStore["南山店"].Delta, 0.2) {
		t.Fatalf("南山店 delta=%v", byStore["南山店"].Delta)
	}
	if !floatEquals(byStore["福田店"].Delta, -1) {
		t.Fatalf("福田店 delta=%v", byStore["福田店"].Delta)
	}
}

func TestDetailRows(t *testing.T) {
	rows := DetailRows(sampleRecords(), HealthRule{HasCost: true, LowMarginPct: 30})
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0].Product != "美式" {
		t.Fatalf("not sorted by quantity desc: %v", rows)
	}
	for _, r := range rows {
		if r.Product == "柠檬茶" && r.Health != model.HealthMissingCost {
			t.Fatalf("柠檬茶 health=%s", r.Health)
		}
		if r.Product == "拿铁" && r.MarginPct != 60 {
			t.Fatalf("拿铁 margin=%v", r.MarginPct)
		}
	}
}

func TestSearchProducts(t *testing.T) {
	res := SearchProducts(sampleRecords(), []string{"拿铁"}, 720)
	if res == nil {
		t.Fatalf("expected search result")
	}
	if res.Quantity != 15 || res.Revenue != 300 {
		t.Fatalf("search: %+v", res)
	}
	if !floatEquals(res.Contribution, 300.0/720) {
		t.Fatalf("contribution=%v", res.Contribution)
	}
	if len(res.StoreRank) != 2 || res.StoreRank[0].Label != "南山店" {
		t.Fatalf("store rank=%v", res.StoreRank)
	}
	if SearchProducts(sampleRecords(), nil, 1) != nil {
		t.Fatalf("empty search should be nil")
	}
}
