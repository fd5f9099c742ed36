package category

import (
	"testing"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

func TestBuiltin_LoadsEmbeddedTaxonomy(t *testing.T) {
	t.Parallel()

	tx := Builtin()
	if tx.Len() != 22 {
		t.Fatalf("taxonomy entries=%d, want 22", tx.Len())
	}
	e, ok := tx.Lookup("  奶咖家族 ")
	if !ok || e.Primary != "咖啡饮品" {
		t.Fatalf("lookup 奶咖家族: %+v ok=%v", e, ok)
	}
	if got := tx.Primaries(); len(got) != 2 {
		t.Fatalf("primaries=%v", got)
	}
}

func TestNewTaxonomy_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	tx := NewTaxonomy([]Entry{
		{Primary: "A", Secondary: "冷萃"},
		{Primary: "B", Secondary: " 冷萃 "},
	})
	if tx.Len() != 1 {
		t.Fatalf("len=%d", tx.Len())
	}
	if e, _ := tx.Lookup("冷萃"); e.Primary != "A" {
		t.Fatalf("primary=%q, want A", e.Primary)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	t.Parallel()

	tx := NewTaxonomy([]Entry{{Primary: "A", Secondary: "x"}})
	entries := tx.Entries()
	entries[0].Primary = "mutated"
	if e, _ := tx.Lookup("x"); e.Primary != "A" {
		t.Fatalf("taxonomy mutated through Entries()")
	}
}

func TestApply_MatchedAndUnclassified(t *testing.T) {
	t.Parallel()

	st := &model.SalesTable{
		Columns: map[string]bool{model.ColCategory: true},
		Records: []model.SalesRecord{
			{Product: "拿铁", RawCategory: " 奶咖家族"},
			{Product: "可颂", RawCategory: "烘焙"},
			{Product: "水", RawCategory: ""},
		},
	}
	Apply(st, Builtin())

	if len(st.Records) != 3 {
		t.Fatalf("rows changed: %d", len(st.Records))
	}
	if r := st.Records[0]; r.Primary != "咖啡饮品" || r.Secondary != "奶咖家族" {
		t.Fatalf("matched row: %+v", r)
	}
	if r := st.Records[1]; r.Primary != model.Unclassified || r.Secondary != "烘焙" {
		t.Fatalf("unmatched row: %+v", r)
	}
	for i, r := range st.Records {
		if r.Primary == "" || r.Secondary == "" {
			t.Fatalf("row %d has empty category: %+v", i, r)
		}
	}
}

func TestApply_NoCategoryColumn(t *testing.T) {
	t.Parallel()

	st := &model.SalesTable{Records: []model.SalesRecord{{Product: "拿铁"}}}
	Apply(st, Builtin())
	if r := st.Records[0]; r.Primary != model.Unclassified || r.Secondary != model.Unclassified {
		t.Fatalf("row: %+v", r)
	}
	if !st.HasColumn(model.ColPrimary) {
		t.Fatalf("primary column not recorded")
	}
}
