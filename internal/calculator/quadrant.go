package calculator

import "github.com/deeserv/Cafe-sales-tracker/internal/model"

// Classify 按毛利率与日均销量划分商品四象限
//
// 阈值为当前筛选范围内所有商品的算术平均值，不可外部配置；
// 筛选范围变化会改变均值，从而可能改变商品所在象限。
func Classify(products []model.ProductAggregate, days int) model.QuadrantMatrix {
	matrix := model.QuadrantMatrix{Items: make([]model.QuadrantResult, 0, len(products))}
	if len(products) == 0 {
		return matrix
	}

	for _, p := range products {
		item := model.QuadrantResult{
			Product:   p.Product,
			MarginPct: marginPct(p.Profit, p.Revenue),
			Revenue:   p.Revenue,
		}
		if days > 0 {
			item.DailyVolume = p.Quantity / float64(days)
		}
		matrix.MeanMarginPct += item.MarginPct
		matrix.MeanDailyVolume += item.DailyVolume
		matrix.Items = append(matrix.Items, item)
	}
	n := float64(len(matrix.Items))
	matrix.MeanMarginPct /= n
	matrix.MeanDailyVolume /= n

	for i := range matrix.Items {
		it := &matrix.Items[i]
		it.Quadrant = quadrantOf(it.MarginPct, it.DailyVolume, matrix.MeanMarginPct, matrix.MeanDailyVolume)
	}
	return matrix
}

func quadrantOf(margin, volume, meanMargin, meanVolume float64) model.Quadrant {
	highVolume := volume >= meanVolume
	highMargin := margin >= meanMargin
	switch {
	case highVolume && highMargin:
		return model.QuadrantStars
	case highVolume:
		return model.QuadrantCashCows
	case highMargin:
		return model.QuadrantQuestionMarks
	default:
		return model.QuadrantDogs
	}
}
