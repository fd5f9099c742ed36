package importer

import (
	"testing"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
	"github.com/deeserv/Cafe-sales-tracker/internal/parser"
)

func salesFixture() *model.SalesTable {
	return &model.SalesTable{
		Columns: map[string]bool{model.ColProduct: true, model.ColQuantity: true, model.ColRevenue: true},
		Records: []model.SalesRecord{
			{Product: "拿铁", Quantity: 10, Revenue: 200},
			{Product: "美式", Quantity: 5, Revenue: 75},
			{Product: "拿铁", Quantity: 2, Revenue: 40},
			{Product: "新品", Quantity: 1, Revenue: 30},
		},
	}
}

func TestBuildCostTable_AveragesDuplicates(t *testing.T) {
	t.Parallel()

	ct := BuildCostTable(&parser.Table{
		Headers: []string{"产品", "成本"},
		Rows: [][]string{
			{"拿铁", "6"},
			{"拿铁", "8"},
			{"美式", "abc"},
			{"", "3"},
		},
	})
	if ct == nil {
		t.Fatalf("expected cost table")
	}
	if ct.Len() != 2 {
		t.Fatalf("entries=%d", ct.Len())
	}
	if e, ok := ct.Lookup("拿铁"); !ok || e.UnitCost != 7 {
		t.Fatalf("拿铁 cost=%v ok=%v", e.UnitCost, ok)
	}
	if e, ok := ct.Lookup("美式"); !ok || e.UnitCost != 0 {
		t.Fatalf("美式 invalid cost should be 0: %v ok=%v", e.UnitCost, ok)
	}
}

func TestBuildCostTable_MissingColumns(t *testing.T) {
	t.Parallel()

	if ct := BuildCostTable(&parser.Table{Headers: []string{"产品", "售价"}}); ct != nil {
		t.Fatalf("expected nil without cost column")
	}
	if ct := BuildCostTable(nil); ct != nil {
		t.Fatalf("expected nil for nil table")
	}
}

func TestMergeCost_LeftJoinConservesRows(t *testing.T) {
	t.Parallel()

	st := salesFixture()
	before := len(st.Records)
	ct := BuildCostTable(&parser.Table{
		Headers: []string{"商品名称", "成本"},
		Rows:    [][]string{{"拿铁", "6"}, {"拿铁", "8"}, {"美式", "5"}},
	})

	report := MergeCost(st, ct)

	if len(st.Records) != before {
		t.Fatalf("row count changed: %d -> %d", before, len(st.Records))
	}
	if !report.Available || report.MatchedRows != 3 || report.MissingRows != 1 || report.DuplicateKeys != 1 {
		t.Fatalf("report=%+v", report)
	}
	if got := st.Records[0].Profit; got != 200-10*7 {
		t.Fatalf("拿铁 profit=%v", got)
	}
	if r := st.Records[3]; r.UnitCost != 0 || r.Profit != r.Revenue || r.CostMatched {
		t.Fatalf("unmatched row: %+v", r)
	}
	if len(report.MissingProducts) != 1 || report.MissingProducts[0] != "新品" {
		t.Fatalf("missing=%v", report.MissingProducts)
	}
}

func TestMergeCost_NoCostTable(t *testing.T) {
	t.Parallel()

	st := salesFixture()
	report := MergeCost(st, nil)
	if report.Available {
		t.Fatalf("report should mark cost unavailable")
	}
	for _, r := range st.Records {
		if r.Profit != 0 || r.UnitCost != 0 {
			t.Fatalf("expected zero cost/profit: %+v", r)
		}
	}
}

func TestMergeCost_FullWidthKey(t *testing.T) {
	t.Parallel()

	st := &model.SalesTable{Records: []model.SalesRecord{{Product: "ＳＯＥ冷萃", Quantity: 1, Revenue: 20}}}
	ct := BuildCostTable(&parser.Table{Headers: []string{"产品", "成本"}, Rows: [][]string{{"SOE冷萃 ", "5"}}})
	MergeCost(st, ct)
	if !st.Records[0].CostMatched || st.Records[0].Profit != 15 {
		t.Fatalf("full-width key not matched: %+v", st.Records[0])
	}
}
