package calculator

import (
	"testing"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// TestCalcRate 测试变化率计算
func TestCalcRate(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		expected float64
	}{
		{"正增长", 120, 100, 0.2},
		{"负增长", 80, 100, -0.2},
		{"零增长", 100, 100, 0},
		{"上期为零", 100, 0, 0},
		{"翻倍增长", 200, 100, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calcRate(tt.current, tt.previous)
			if !floatEquals(result, tt.expected) {
				t.Errorf("calcRate(%v, %v) = %v, want %v", tt.current, tt.previous, result, tt.expected)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	cur := &model.Metrics{Quantity: 120, Revenue: 1300, UnitPrice: 13, MarginPct: 62.5, DailyQuantity: 24, DailyRevenue: 260}
	prev := &model.Metrics{Quantity: 100, Revenue: 1000, UnitPrice: 10, MarginPct: 60, DailyQuantity: 20, DailyRevenue: 0}

	d := Compare(cur, prev)
	if d == nil {
		t.Fatalf("expected delta")
	}
	if !floatEquals(d.Quantity, 0.2) || !floatEquals(d.Revenue, 0.3) || !floatEquals(d.UnitPrice, 0.3) {
		t.Errorf("ratio deltas: %+v", d)
	}
	if !floatEquals(d.MarginPoints, 2.5) {
		t.Errorf("MarginPoints=%v, want 2.5 (percentage points)", d.MarginPoints)
	}
	if !floatEquals(d.DailyQuantity, 0.2) {
		t.Errorf("DailyQuantity=%v", d.DailyQuantity)
	}
	if d.DailyRevenue != 0 {
		t.Errorf("DailyRevenue with zero previous = %v, want 0", d.DailyRevenue)
	}
}

func TestCompare_NoComparison(t *testing.T) {
	cur := &model.Metrics{Quantity: 1}
	if d := Compare(cur, nil); d != nil {
		t.Fatalf("expected nil delta without comparison, got %+v", d)
	}
	zero := Compare(&model.Metrics{}, &model.Metrics{})
	if zero == nil || *zero != (model.Delta{}) {
		t.Fatalf("zero comparison should be a zero delta, got %+v", zero)
	}
}
