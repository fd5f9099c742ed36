package analysis

import (
	"errors"

	"github.com/deeserv/Cafe-sales-tracker/internal/config"
)

// ErrEmptySelection 筛选后当前数据集为空
var ErrEmptySelection = errors.New("empty selection")

// DefaultOperatingDays 默认营业天数
const DefaultOperatingDays = 5

// DefaultTopN 默认排行条数
const DefaultTopN = 10

// Query 看板查询条件；空切片表示不过滤该维度
type Query struct {
	Stores      []string `json:"stores"`
	Primaries   []string `json:"primaries"`
	Secondaries []string `json:"secondaries"`
	Periods     []string `json:"periods"`

	Compare        bool   `json:"compare"`
	CurrentPeriod  string `json:"currentPeriod"`
	PreviousPeriod string `json:"previousPeriod"`

	DaysCurrent  int `json:"daysCurrent"`
	DaysPrevious int `json:"daysPrevious"`

	Products     []string `json:"products"` // 商品搜索
	TopN         int      `json:"topN"`
	LowMarginPct float64  `json:"lowMarginPct"`
}

// WithDefaults 补齐默认值并修正越界参数
func (q Query) WithDefaults() Query {
	if q.DaysCurrent == 0 {
		q.DaysCurrent = DefaultOperatingDays
	}
	if q.DaysPrevious == 0 {
		q.DaysPrevious = q.DaysCurrent
	}
	q.DaysCurrent = config.ClampDays(q.DaysCurrent)
	q.DaysPrevious = config.ClampDays(q.DaysPrevious)
	if q.TopN <= 0 {
		q.TopN = DefaultTopN
	}
	return q
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
