package calculator

import "github.com/deeserv/Cafe-sales-tracker/internal/model"

// DefaultLowMarginPct 低毛利阈值（%）
const DefaultLowMarginPct = 30.0

// missingCostMarginPct 毛利率达到 100% 视为成本缺失
const missingCostMarginPct = 100.0

// HealthRule 健康标记规则
type HealthRule struct {
	HasCost      bool    // 是否加载了成本表
	LowMarginPct float64 // 低毛利阈值
}

// Flag 根据毛利率给出健康标记
func (r HealthRule) Flag(marginPct, revenue float64) model.HealthFlag {
	if !r.HasCost {
		return model.HealthNoCostData
	}
	low := r.LowMarginPct
	if low <= 0 {
		low = DefaultLowMarginPct
	}
	switch {
	case revenue > 0 && marginPct >= missingCostMarginPct-1e-9:
		return model.HealthMissingCost
	case marginPct < 0:
		return model.HealthLoss
	case marginPct < low:
		return model.HealthLowMargin
	}
	return model.HealthOK
}
