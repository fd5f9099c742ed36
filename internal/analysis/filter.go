package analysis

import (
	"sort"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// Options 筛选面板可选值
type Options struct {
	Stores      []string `json:"stores"`
	Primaries   []string `json:"primaries"`
	Secondaries []string `json:"secondaries"`
	Periods     []string `json:"periods"`
}

// BuildOptions 汇总可选值；二级分类随已选一级分类联动（未选时为全部）
func BuildOptions(st *model.SalesTable, selectedPrimaries []string) Options {
	opts := Options{Stores: []string{}, Primaries: []string{}, Secondaries: []string{}, Periods: []string{}}
	if st == nil {
		return opts
	}
	primarySet := toSet(selectedPrimaries)

	stores := map[string]bool{}
	primaries := map[string]bool{}
	secondaries := map[string]bool{}
	periods := map[string]bool{}
	for _, r := range st.Records {
		if r.Store != "" {
			stores[r.Store] = true
		}
		if r.Period != "" {
			periods[r.Period] = true
		}
		primaries[r.Primary] = true
		if primarySet == nil || primarySet[r.Primary] {
			secondaries[r.Secondary] = true
		}
	}
	opts.Stores = sortedKeys(stores)
	opts.Primaries = sortedKeys(primaries)
	opts.Secondaries = sortedKeys(secondaries)
	opts.Periods = sortedKeys(periods)
	return opts
}

// Filter 按门店/分类/周期过滤
func Filter(records []model.SalesRecord, q Query) []model.SalesRecord {
	stores := toSet(q.Stores)
	primaries := toSet(q.Primaries)
	secondaries := toSet(q.Secondaries)
	periods := toSet(q.Periods)

	out := make([]model.SalesRecord, 0, len(records))
	for _, r := range records {
		if stores != nil && !stores[r.Store] {
			continue
		}
		if primaries != nil && !primaries[r.Primary] {
			continue
		}
		if secondaries != nil && !secondaries[r.Secondary] {
			continue
		}
		if periods != nil && !periods[r.Period] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func byPeriod(records []model.SalesRecord, period string) []model.SalesRecord {
	out := make([]model.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

func distinctPeriods(records []model.SalesRecord) []string {
	set := map[string]bool{}
	for _, r := range records {
		if r.Period != "" {
			set[r.Period] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
