package parser

import (
	"strings"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// totalRowKeywords 汇总行标记（防止数据翻倍）
var totalRowKeywords = []string{"合计", "总计", "小计", "total"}

// NormalizeOptions 清洗选项
type NormalizeOptions struct {
	DropTotalRows bool // 剔除商品名称含 合计/总计 的汇总行
}

// DefaultNormalizeOptions 默认清洗选项
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{DropTotalRows: true}
}

// salesColumnOrder 输出列顺序
var salesColumnOrder = []string{
	model.ColPeriod,
	model.ColStore,
	model.ColProduct,
	model.ColCategory,
	model.ColQuantity,
	model.ColRevenue,
}

// NormalizeSales 合并并清洗多份销售导出
//
// 处理顺序：按文件顺序拼接 → 统计周期/门店名称向下填充 → 列名归一 →
// 剔除汇总行与空商品行 → 金额/数量去货币符号并转数值（非法值记 0）
func NormalizeSales(tables []*Table, opts NormalizeOptions) *model.SalesTable {
	out := &model.SalesTable{Columns: make(map[string]bool)}
	if len(tables) == 0 {
		return out
	}

	mapper := NewSalesFieldMapper()
	mappings := make([]map[string]int, len(tables))
	for i, t := range tables {
		mappings[i] = mapper.Map(t.Headers)
		for field := range mappings[i] {
			out.Columns[field] = true
		}
	}

	// 向下填充在拼接后的整批数据上进行，只维护最近一次非空值
	var lastPeriod, lastStore string
	for ti, t := range tables {
		m := mappings[ti]
		for ri, row := range t.Rows {
			rec := model.SalesRecord{
				Product:     cellOf(t, row, m, model.ColProduct),
				Store:       cellOf(t, row, m, model.ColStore),
				Period:      cellOf(t, row, m, model.ColPeriod),
				RawCategory: cellOf(t, row, m, model.ColCategory),
				SourceFile:  t.Name,
				RowNo:       ri + 2,
			}

			// 仅在当前表含该列时填充，不向缺列的文件补造周期/门店
			if _, ok := m[model.ColPeriod]; ok {
				if rec.Period == "" {
					rec.Period = lastPeriod
				} else {
					lastPeriod = rec.Period
				}
			}
			if _, ok := m[model.ColStore]; ok {
				if rec.Store == "" {
					rec.Store = lastStore
				} else {
					lastStore = rec.Store
				}
			}

			if out.Columns[model.ColProduct] {
				if rec.Product == "" {
					continue
				}
				if opts.DropTotalRows && IsTotalRow(rec.Product) {
					continue
				}
			}

			if idx, ok := m[model.ColQuantity]; ok {
				rec.Quantity = ParseAmount(t.Cell(row, idx))
			}
			if idx, ok := m[model.ColRevenue]; ok {
				rec.Revenue = ParseAmount(t.Cell(row, idx))
			}
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// IsTotalRow 商品名称是否为汇总行标记
func IsTotalRow(product string) bool {
	return ContainsAny(strings.ToLower(product), totalRowKeywords)
}

// ToTable 将清洗结果还原为规范表头的表格（仅包含源数据中存在的列）
func ToTable(name string, st *model.SalesTable) *Table {
	t := &Table{Name: name, Format: "csv", Encoding: "utf-8"}
	for _, col := range salesColumnOrder {
		if st.HasColumn(col) {
			t.Headers = append(t.Headers, col)
		}
	}
	for _, rec := range st.Records {
		row := make([]string, 0, len(t.Headers))
		for _, col := range t.Headers {
			switch col {
			case model.ColPeriod:
				row = append(row, rec.Period)
			case model.ColStore:
				row = append(row, rec.Store)
			case model.ColProduct:
				row = append(row, rec.Product)
			case model.ColCategory:
				row = append(row, rec.RawCategory)
			case model.ColQuantity:
				row = append(row, FormatAmount(rec.Quantity))
			case model.ColRevenue:
				row = append(row, FormatAmount(rec.Revenue))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cellOf(t *Table, row []string, m map[string]int, field string) string {
	idx, ok := m[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.Cell(row, idx))
}
