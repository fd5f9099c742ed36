package analysis

import (
	"github.com/deeserv/Cafe-sales-tracker/internal/calculator"
	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// 看板模式
const (
	ModeSingle  = "single"
	ModeCompare = "compare"
)

// Dashboard 看板计算结果
type Dashboard struct {
	Mode           string   `json:"mode"`
	CurrentPeriod  string   `json:"currentPeriod,omitempty"`
	PreviousPeriod string   `json:"previousPeriod,omitempty"`
	Periods        []string `json:"periods"`
	DaysCurrent    int      `json:"daysCurrent"`
	DaysPrevious   int      `json:"daysPrevious,omitempty"`
	RowCount       int      `json:"rowCount"`

	Current         model.Metrics  `json:"current"`
	Previous        *model.Metrics `json:"previous,omitempty"`
	Delta           *model.Delta   `json:"delta,omitempty"`
	MarginAvailable bool           `json:"marginAvailable"`

	TopProducts          []model.RankItem      `json:"topProducts"`
	ProfitByPrimary      []model.RankItem      `json:"profitByPrimary,omitempty"`
	ProfitBySecondary    []model.RankItem      `json:"profitBySecondary,omitempty"`
	SecondaryDailyChange []model.RankItem      `json:"secondaryDailyChange,omitempty"`
	Heatmap              []model.HeatCell      `json:"heatmap,omitempty"`
	Search               *model.ProductSearch  `json:"search,omitempty"`
	Quadrant             *model.QuadrantMatrix `json:"quadrant,omitempty"`
	Detail               []model.DetailRow     `json:"detail"`

	Cost model.CostReport `json:"cost"`
}

// Build 按查询条件计算看板
//
// 对比模式需要请求 Compare 且筛选后至少两个统计周期（此时忽略 Periods）：本期默认最后一个周期，
// 上期默认第一个与本期不同的周期。其他情况为单期模式，Previous/Delta 为 nil
func Build(ds *model.Dataset, q Query) (*Dashboard, error) {
	if ds == nil || ds.Sales == nil || ds.Sales.Len() == 0 {
		return nil, model.ErrNoData
	}
	q = q.WithDefaults()
	if q.Compare {
		// 对比模式由本期/上期决定周期，忽略周期多选
		q.Periods = nil
	}

	base := Filter(ds.Sales.Records, q)
	periods := distinctPeriods(base)

	d := &Dashboard{
		Mode:            ModeSingle,
		Periods:         periods,
		DaysCurrent:     q.DaysCurrent,
		MarginAvailable: ds.HasCost(),
		Cost:            ds.Cost,
	}

	current := base
	var previous []model.SalesRecord
	if q.Compare && len(periods) >= 2 {
		cur, prev := pickPeriods(periods, q.CurrentPeriod, q.PreviousPeriod)
		d.Mode = ModeCompare
		d.CurrentPeriod = cur
		d.PreviousPeriod = prev
		d.DaysPrevious = q.DaysPrevious
		current = byPeriod(base, cur)
		previous = byPeriod(base, prev)
	}
	if len(current) == 0 {
		return nil, ErrEmptySelection
	}
	d.RowCount = len(current)

	d.Current = calculator.Calculate(current, q.DaysCurrent)
	if d.Mode == ModeCompare {
		prev := calculator.Calculate(previous, q.DaysPrevious)
		d.Previous = &prev
		d.Delta = calculator.Compare(&d.Current, d.Previous)
		d.SecondaryDailyChange = calculator.DailyChangeBy(current, previous, q.DaysCurrent, q.DaysPrevious,
			calculator.BySecondary, calculator.QuantityOf)
		d.Heatmap = calculator.Heatmap(current, previous, q.DaysCurrent, q.DaysPrevious)
	}

	d.TopProducts = calculator.TopN(calculator.SumBy(current, calculator.ByProduct, calculator.QuantityOf), q.TopN)
	if d.MarginAvailable {
		d.ProfitByPrimary = calculator.SumBy(current, calculator.ByPrimary, calculator.ProfitOf)
		d.ProfitBySecondary = calculator.SumBy(current, calculator.BySecondary, calculator.ProfitOf)
		matrix := calculator.Classify(calculator.AggregateByProduct(current), q.DaysCurrent)
		d.Quadrant = &matrix
	}
	d.Search = calculator.SearchProducts(current, q.Products, d.Current.Revenue)
	d.Detail = calculator.DetailRows(current, calculator.HealthRule{
		HasCost:      d.MarginAvailable,
		LowMarginPct: q.LowMarginPct,
	})
	return d, nil
}

// pickPeriods 确定本期与上期；指定值不在可选周期内时回退默认
func pickPeriods(periods []string, current, previous string) (string, string) {
	has := func(p string) bool {
		for _, v := range periods {
			if v == p {
				return true
			}
		}
		return false
	}
	if !has(current) {
		current = periods[len(periods)-1]
	}
	if !has(previous) || previous == current {
		previous = ""
		for _, p := range periods {
			if p != current {
				previous = p
				break
			}
		}
	}
	return current, previous
}
