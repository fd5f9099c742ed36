package calculator

import "github.com/deeserv/Cafe-sales-tracker/internal/model"

// Compare 计算本期相对上期的变化。previous 为 nil 表示未开启对比，返回 nil
func Compare(current, previous *model.Metrics) *model.Delta {
	if current == nil || previous == nil {
		return nil
	}
	return &model.Delta{
		Quantity:      calcRate(current.Quantity, previous.Quantity),
		Revenue:       calcRate(current.Revenue, previous.Revenue),
		UnitPrice:     calcRate(current.UnitPrice, previous.UnitPrice),
		MarginPoints:  current.MarginPct - previous.MarginPct,
		DailyQuantity: calcRate(current.DailyQuantity, previous.DailyQuantity),
		DailyRevenue:  calcRate(current.DailyRevenue, previous.DailyRevenue),
	}
}

// calcRate 计算变化率，上期为 0 时返回 0
func calcRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous
}
