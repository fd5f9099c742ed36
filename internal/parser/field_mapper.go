package parser

import (
	"strings"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// headerRule 列名匹配规则：精确别名优先，其次正则
type headerRule struct {
	field   string
	aliases []string
	pattern string
}

// salesHeaderRules 销售导出表列名映射
// 商品实收 / 商品销量 为收银系统导出的原始列名
var salesHeaderRules = []headerRule{
	{field: model.ColProduct, aliases: []string{"商品名称", "商品", "品名", "product", "productname"}},
	{field: model.ColStore, aliases: []string{"门店名称", "门店", "店铺名称", "store", "storename"}},
	{field: model.ColPeriod, aliases: []string{"统计周期", "周期", "统计时间", "period"}},
	{field: model.ColCategory, aliases: []string{"商品类别", "商品分类", "类别", "category"}},
	{field: model.ColQuantity, aliases: []string{"销售数量", "商品销量", "销量", "数量", "quantity", "qty"}},
	{field: model.ColRevenue, aliases: []string{"销售金额", "商品实收", "实收金额", "revenue", "amount"}, pattern: `^商品实收[(（].*[)）]$`},
}

// costHeaderRules 成本表列名映射
var costHeaderRules = []headerRule{
	{field: model.ColProduct, aliases: []string{"商品名称", "产品", "商品", "品名", "product"}},
	{field: model.ColUnitCost, aliases: []string{"成本", "单位成本", "单杯成本", "cost", "unitcost"}, pattern: `^成本[(（].*[)）]$`},
}

// FieldMapper 列名映射器
type FieldMapper struct {
	rules []headerRule
}

// NewSalesFieldMapper 创建销售表映射器
func NewSalesFieldMapper() *FieldMapper {
	return &FieldMapper{rules: salesHeaderRules}
}

// NewCostFieldMapper 创建成本表映射器
func NewCostFieldMapper() *FieldMapper {
	return &FieldMapper{rules: costHeaderRules}
}

// Map 返回 规范列名 → 列索引。
// 同一规范列命中多次时保留第一次出现的列
func (m *FieldMapper) Map(headers []string) map[string]int {
	mappings := make(map[string]int)
	for idx, h := range headers {
		col := NormalizeColumnName(h)
		if col == "" {
			continue
		}
		field := m.match(col)
		if field == "" {
			continue
		}
		if _, exists := mappings[field]; exists {
			continue
		}
		mappings[field] = idx
	}
	return mappings
}

func (m *FieldMapper) match(col string) string {
	lower := strings.ToLower(col)
	for _, r := range m.rules {
		for _, alias := range r.aliases {
			if lower == alias || col == alias {
				return r.field
			}
		}
	}
	for _, r := range m.rules {
		if r.pattern != "" && MatchPattern(col, r.pattern) {
			return r.field
		}
	}
	return ""
}
