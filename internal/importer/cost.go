package importer

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
	"github.com/deeserv/Cafe-sales-tracker/internal/parser"
)

// CostTable 去重后的成本档案
type CostTable struct {
	byKey         map[string]model.CostEntry
	duplicateKeys int
}

// BuildCostTable 从原始成本表构建成本档案
//
// 产品列归一为商品名称，成本列转数值（非法值记 0），
// 同一商品出现多次时取成本均值。缺少商品名称或成本列时返回 nil
func BuildCostTable(t *parser.Table) *CostTable {
	if t == nil {
		return nil
	}
	m := parser.NewCostFieldMapper().Map(t.Headers)
	productCol, ok := m[model.ColProduct]
	if !ok {
		return nil
	}
	costCol, ok := m[model.ColUnitCost]
	if !ok {
		return nil
	}

	type acc struct {
		name  string
		sum   float64
		count int
	}
	sums := make(map[string]*acc)
	var order []string
	for _, row := range t.Rows {
		name := strings.TrimSpace(t.Cell(row, productCol))
		if name == "" {
			continue
		}
		key := productKey(name)
		a, exists := sums[key]
		if !exists {
			a = &acc{name: name}
			sums[key] = a
			order = append(order, key)
		}
		a.sum += parser.ParseAmount(t.Cell(row, costCol))
		a.count++
	}

	ct := &CostTable{byKey: make(map[string]model.CostEntry, len(order))}
	for _, key := range order {
		a := sums[key]
		if a.count > 1 {
			ct.duplicateKeys++
		}
		ct.byKey[key] = model.CostEntry{Product: a.name, UnitCost: a.sum / float64(a.count)}
	}
	return ct
}

// Lookup 查询商品单位成本
func (c *CostTable) Lookup(product string) (model.CostEntry, bool) {
	if c == nil {
		return model.CostEntry{}, false
	}
	e, ok := c.byKey[productKey(product)]
	return e, ok
}

// Len 去重后的条目数
func (c *CostTable) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byKey)
}

// MergeCost 将单位成本合并到销售记录并计算毛利
//
// 无成本档案时成本、毛利均为 0；未匹配的商品成本记 0，毛利 = 销售金额。
// 左连接：记录条数不变
func MergeCost(st *model.SalesTable, ct *CostTable) model.CostReport {
	report := model.CostReport{}
	if st == nil {
		return report
	}
	if st.Columns == nil {
		st.Columns = make(map[string]bool)
	}
	st.Columns[model.ColUnitCost] = true
	st.Columns[model.ColProfit] = true

	if ct == nil {
		for i := range st.Records {
			st.Records[i].UnitCost = 0
			st.Records[i].Profit = 0
			st.Records[i].CostMatched = false
		}
		return report
	}

	report.Available = true
	report.Entries = ct.Len()
	report.DuplicateKeys = ct.duplicateKeys

	missing := make(map[string]bool)
	for i := range st.Records {
		rec := &st.Records[i]
		entry, ok := ct.Lookup(rec.Product)
		rec.CostMatched = ok
		rec.UnitCost = entry.UnitCost
		rec.Profit = rec.Revenue - rec.Quantity*rec.UnitCost
		if ok {
			report.MatchedRows++
			continue
		}
		report.MissingRows++
		missing[rec.Product] = true
	}
	for p := range missing {
		report.MissingProducts = append(report.MissingProducts, p)
	}
	sort.Strings(report.MissingProducts)
	return report
}

// productKey 商品连接键：去空白并做 NFKC 归一（全角/半角字符视为相同）
func productKey(name string) string {
	return norm.NFKC.String(strings.TrimSpace(name))
}
