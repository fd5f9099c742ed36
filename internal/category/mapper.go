package category

import (
	"strings"

	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// Apply 为每条销售记录匹配一级/二级分类
//
// 匹配成功：一级分类取字典值，二级分类取字典中的标准名称；
// 未匹配：一级分类为 "未分类"，二级分类保留原始类别名称。
// 源数据没有商品类别列时，一级/二级均为 "未分类"。
func Apply(st *model.SalesTable, t *Taxonomy) {
	if st == nil {
		return
	}
	if st.Columns == nil {
		st.Columns = make(map[string]bool)
	}
	hasCategory := st.HasColumn(model.ColCategory)

	for i := range st.Records {
		rec := &st.Records[i]
		if !hasCategory {
			rec.Primary = model.Unclassified
			rec.Secondary = model.Unclassified
			continue
		}
		if e, ok := t.Lookup(rec.RawCategory); ok {
			rec.Primary = e.Primary
			rec.Secondary = e.Secondary
			continue
		}
		rec.Primary = model.Unclassified
		rec.Secondary = strings.TrimSpace(rec.RawCategory)
		if rec.Secondary == "" {
			rec.Secondary = model.Unclassified
		}
	}
	st.Columns[model.ColPrimary] = true
	st.Columns[model.ColSecondary] = true
}
