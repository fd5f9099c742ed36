package calculator

import (
	"math"
	"sort"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// AggregateByProduct 按商品汇总；分类取该商品首次出现的记录，输出保持首次出现顺序
func AggregateByProduct(records []model.SalesRecord) []model.ProductAggregate {
	index := make(map[string]int)
	var out []model.ProductAggregate
	for _, r := range records {
		i, ok := index[r.Product]
		if !ok {
			i = len(out)
			index[r.Product] = i
			out = append(out, model.ProductAggregate{
				Product:   r.Product,
				Primary:   r.Primary,
				Secondary: r.Secondary,
			})
		}
		out[i].Quantity += r.Quantity
		out[i].Revenue += r.Revenue
		out[i].Profit += r.Profit
	}
	return out
}

// SumBy 按维度汇总数值，结果按数值降序（相同数值按标签排序）
func SumBy(records []model.SalesRecord, key func(model.SalesRecord) string, value func(model.SalesRecord) float64) []model.RankItem {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[key(r)] += value(r)
	}
	return sortedItems(sums)
}

// TopN 取前 n 项，n <= 0 时返回全部
func TopN(items []model.RankItem, n int) []model.RankItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// DailyChangeBy 按维度计算日均值变化（本期日均 - 上期日均）。
// 只在一期出现的维度值仍然列出，变动记为 0
func DailyChangeBy(current, previous []model.SalesRecord, daysCurrent, daysPrevious int,
	key func(model.SalesRecord) string, value func(model.SalesRecord) float64) []model.RankItem {
	cur := perDay(current, daysCurrent, key, value)
	prev := perDay(previous, daysPrevious, key, value)

	diff := make(map[string]float64, len(cur)+len(prev))
	for k, v := range cur {
		if p, ok := prev[k]; ok {
			diff[k] = v - p
		} else {
			diff[k] = 0
		}
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			diff[k] = 0
		}
	}

	items := sortedItems(diff)
	// 涨跌图按变动值升序展示
	sort.SliceStable(items, func(i, j int) bool { return items[i].Value < items[j].Value })
	return items
}

// Heatmap 门店 x 一级分类 的日均销量变化
func Heatmap(current, previous []model.SalesRecord, daysCurrent, daysPrevious int) []model.HeatCell {
	type cellKey struct{ store, category string }
	cur := make(map[cellKey]float64)
	prev := make(map[cellKey]float64)
	var keys []cellKey
	seen := make(map[cellKey]bool)

	add := func(dst map[cellKey]float64, records []model.SalesRecord) {
		for _, r := range records {
			k := cellKey{r.Store, r.Primary}
			dst[k] += r.Quantity
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	add(cur, current)
	add(prev, previous)

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].store != keys[j].store {
			return keys[i].store < keys[j].store
		}
		return keys[i].category < keys[j].category
	})

	cells := make([]model.HeatCell, 0, len(keys))
	for _, k := range keys {
		c := model.HeatCell{Store: k.store, Category: k.category}
		if daysCurrent > 0 {
			c.Current = cur[k] / float64(daysCurrent)
		}
		if daysPrevious > 0 {
			c.Previous = prev[k] / float64(daysPrevious)
		}
		c.Delta = calcRate(c.Current, c.Previous)
		cells = append(cells, c)
	}
	return cells
}

// DetailRows 商品经营明细：按销量降序，数值保留两位小数
func DetailRows(records []model.SalesRecord, rule HealthRule) []model.DetailRow {
	products := AggregateByProduct(records)
	rows := make([]model.DetailRow, 0, len(products))
	for _, p := range products {
		margin := marginPct(p.Profit, p.Revenue)
		flag := rule.Flag(margin, p.Revenue)
		rows = append(rows, model.DetailRow{
			Product:   p.Product,
			Primary:   p.Primary,
			Secondary: p.Secondary,
			Quantity:  round2(p.Quantity),
			Revenue:   round2(p.Revenue),
			Profit:    round2(p.Profit),
			MarginPct: round2(margin),
			Health:    flag,
			HealthTag: flag.Label(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Quantity > rows[j].Quantity })
	return rows
}

// SearchProducts 选中商品的透视：销量、营收、营收贡献占比及门店销量排行
func SearchProducts(records []model.SalesRecord, products []string, totalRevenue float64) *model.ProductSearch {
	if len(products) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(products))
	for _, p := range products {
		wanted[p] = true
	}

	res := &model.ProductSearch{Products: products}
	var selected []model.SalesRecord
	for _, r := range records {
		if !wanted[r.Product] {
			continue
		}
		selected = append(selected, r)
		res.Quantity += r.Quantity
		res.Revenue += r.Revenue
	}
	if totalRevenue > 0 {
		res.Contribution = res.Revenue / totalRevenue
	}
	res.StoreRank = SumBy(selected, byStore, quantityOf)
	return res
}

func perDay(records []model.SalesRecord, days int, key func(model.SalesRecord) string, value func(model.SalesRecord) float64) map[string]float64 {
	out := make(map[string]float64)
	if days <= 0 {
		return out
	}
	for _, r := range records {
		out[key(r)] += value(r)
	}
	for k, v := range out {
		out[k] = v / float64(days)
	}
	return out
}

func sortedItems(sums map[string]float64) []model.RankItem {
	items := make([]model.RankItem, 0, len(sums))
	for k, v := range sums {
		items = append(items, model.RankItem{Label: k, Value: v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Label < items[j].Label
	})
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func byStore(r model.SalesRecord) string     { return r.Store }
func quantityOf(r model.SalesRecord) float64 { return r.Quantity }

// 维度与度量选择器
var (
	ByProduct   = func(r model.SalesRecord) string { return r.Product }
	ByStore     = byStore
	ByPrimary   = func(r model.SalesRecord) string { return r.Primary }
	BySecondary = func(r model.SalesRecord) string { return r.Secondary }

	QuantityOf = quantityOf
	RevenueOf  = func(r model.SalesRecord) float64 { return r.Revenue }
	ProfitOf   = func(r model.SalesRecord) float64 { return r.Profit }
)
