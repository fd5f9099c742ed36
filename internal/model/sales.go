package model

import "errors"

// ErrNoData 仓库中没有可用的销售数据
var ErrNoData = errors.New("no sales data")

// 规范列名（门店收银系统导出口径）
const (
	ColProduct   = "商品名称"
	ColStore     = "门店名称"
	ColPeriod    = "统计周期"
	ColCategory  = "商品类别"
	ColQuantity  = "销售数量"
	ColRevenue   = "销售金额"
	ColUnitCost  = "成本"
	ColPrimary   = "一级分类"
	ColSecondary = "二级分类"
	ColProfit    = "商品毛利"
)

// Unclassified 未匹配到分类字典时的兜底分类
const Unclassified = "未分类"

// SalesRecord 单条商品销售记录（清洗后）
type SalesRecord struct {
	Product     string  `json:"product"`
	Store       string  `json:"store"`
	Period      string  `json:"period"`
	RawCategory string  `json:"rawCategory"`
	Quantity    float64 `json:"quantity"`
	Revenue     float64 `json:"revenue"`

	// 以下为派生列：分类匹配、成本合并后追加
	Primary     string  `json:"primary"`
	Secondary   string  `json:"secondary"`
	UnitCost    float64 `json:"unitCost"`
	Profit      float64 `json:"profit"`
	CostMatched bool    `json:"costMatched"`

	SourceFile string `json:"sourceFile"`
	RowNo      int    `json:"rowNo"`
}

// SalesTable 清洗后的销售明细
// Columns 记录源文件中实际出现过的规范列，缺失的列不会被补造
type SalesTable struct {
	Columns map[string]bool `json:"columns"`
	Records []SalesRecord   `json:"records"`
}

// HasColumn 判断规范列是否存在
func (t *SalesTable) HasColumn(name string) bool {
	if t == nil || t.Columns == nil {
		return false
	}
	return t.Columns[name]
}

// Len 记录数
func (t *SalesTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// CostEntry 商品单位成本
type CostEntry struct {
	Product  string  `json:"product"`
	UnitCost float64 `json:"unitCost"`
}

// CostReport 成本合并结果
type CostReport struct {
	Available       bool     `json:"available"`       // 是否提供了成本表
	Entries         int      `json:"entries"`         // 去重后的成本条目数
	DuplicateKeys   int      `json:"duplicateKeys"`   // 重复商品（已取均值）
	MatchedRows     int      `json:"matchedRows"`     // 匹配到成本的销售行
	MissingRows     int      `json:"missingRows"`     // 未匹配到成本的销售行
	MissingProducts []string `json:"missingProducts"` // 未匹配到成本的商品
}

// Dataset 一次完整加载后的分析数据集
type Dataset struct {
	Sales *SalesTable `json:"-"`
	Cost  CostReport  `json:"cost"`
}

// HasCost 是否有成本数据（无成本时毛利相关指标展示为 "--"）
func (d *Dataset) HasCost() bool {
	return d != nil && d.Cost.Available
}
