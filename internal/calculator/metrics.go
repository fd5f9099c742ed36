package calculator

import "github.com/deeserv/Cafe-sales-tracker/internal/model"

// Calculate 汇总销量、营收、毛利并计算派生指标
// 输入为空或营业天数 <= 0 时返回全 0
func Calculate(records []model.SalesRecord, days int) model.Metrics {
	if len(records) == 0 || days <= 0 {
		return model.Metrics{}
	}

	var m model.Metrics
	for _, r := range records {
		m.Quantity += r.Quantity
		m.Revenue += r.Revenue
		m.Profit += r.Profit
	}
	fillDerived(&m, days)
	return m
}

// FromAggregate 由已汇总的数值计算派生指标
func FromAggregate(quantity, revenue, profit float64, days int) model.Metrics {
	if days <= 0 {
		return model.Metrics{}
	}
	m := model.Metrics{Quantity: quantity, Revenue: revenue, Profit: profit}
	fillDerived(&m, days)
	return m
}

func fillDerived(m *model.Metrics, days int) {
	if m.Quantity > 0 {
		m.UnitPrice = m.Revenue / m.Quantity
	}
	m.MarginPct = marginPct(m.Profit, m.Revenue)
	m.DailyQuantity = m.Quantity / float64(days)
	m.DailyRevenue = m.Revenue / float64(days)
}

// marginPct 毛利率（%），营收 <= 0 时为 0
func marginPct(profit, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return profit / revenue * 100
}
