package exporter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/deeserv/Cafe-sales-tracker/internal/analysis"
	"github.com/deeserv/Cafe-sales-tracker/internal/model"
)

// 导出工作表名
const (
	SheetDetail  = "商品经营明细"
	SheetSummary = "核心指标"
	SheetRanking = "销量排行"
)

var detailHeaders = []interface{}{"商品名称", "一级分类", "二级分类", "销售数量", "销售金额", "商品毛利", "毛利率(%)", "健康状态"}

// ExportOptions 导出选项
type ExportOptions struct {
	Progress func(ProgressEvent) // 可为 nil
}

// Export 将看板结果写入新工作簿：明细、核心指标、销量排行
func Export(d *analysis.Dashboard, opts ExportOptions) (*excelize.File, error) {
	if d == nil {
		return nil, errors.New("dashboard is nil")
	}
	f := excelize.NewFile()
	progress := newProgressReporter(opts.Progress)

	progress.report(5, "写入商品经营明细")
	// 新工作簿自带 Sheet1，重命名为明细表
	if err := f.SetSheetName(f.GetSheetName(0), SheetDetail); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeDetail(f, d, progress); err != nil {
		_ = f.Close()
		return nil, err
	}

	progress.report(60, "写入核心指标")
	if err := writeSummary(f, d); err != nil {
		_ = f.Close()
		return nil, err
	}

	progress.report(85, "写入销量排行")
	if err := writeRanking(f, d.TopProducts); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	progress.report(100, "完成")
	return f, nil
}

// Bytes 导出为 xlsx 字节
func Bytes(d *analysis.Dashboard, opts ExportOptions) ([]byte, error) {
	f, err := Export(d, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var buf *bytes.Buffer
	if buf, err = f.WriteToBuffer(); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDetail(f *excelize.File, d *analysis.Dashboard, progress *progressReporter) error {
	if err := f.SetSheetRow(SheetDetail, "A1", &detailHeaders); err != nil {
		return fmt.Errorf("write detail header: %w", err)
	}
	for i, row := range d.Detail {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.Product, row.Primary, row.Secondary,
			row.Quantity, row.Revenue,
			marginCell(d.MarginAvailable, row.Profit),
			marginCell(d.MarginAvailable, row.MarginPct),
			row.HealthTag,
		}
		if err := f.SetSheetRow(SheetDetail, cell, &values); err != nil {
			return fmt.Errorf("write detail row %d: %w", i+1, err)
		}
		if (i+1)%detailProgressStep == 0 {
			progress.span(5, 55, i+1, len(d.Detail), "写入商品经营明细")
		}
	}
	_ = f.SetColWidth(SheetDetail, "A", "C", 18)
	_ = f.SetColWidth(SheetDetail, "D", "H", 12)
	return f.SetPanes(SheetDetail, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, d *analysis.Dashboard) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header := []interface{}{"指标", "本期"}
	if d.Previous != nil {
		header = append(header, "上期", "变化")
	}
	if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return err
	}

	type line struct {
		label    string
		cur      float64
		prev     float64
		delta    float64
		isMargin bool
	}
	var prev model.Metrics
	var delta model.Delta
	if d.Previous != nil {
		prev = *d.Previous
	}
	if d.Delta != nil {
		delta = *d.Delta
	}
	lines := []line{
		{label: "总销量", cur: d.Current.Quantity, prev: prev.Quantity, delta: delta.Quantity},
		{label: "总营收", cur: d.Current.Revenue, prev: prev.Revenue, delta: delta.Revenue},
		{label: "杯单价", cur: d.Current.UnitPrice, prev: prev.UnitPrice, delta: delta.UnitPrice},
		{label: "毛利率(%)", cur: d.Current.MarginPct, prev: prev.MarginPct, delta: delta.MarginPoints, isMargin: true},
		{label: "日均杯数", cur: d.Current.DailyQuantity, prev: prev.DailyQuantity, delta: delta.DailyQuantity},
		{label: "日均营收", cur: d.Current.DailyRevenue, prev: prev.DailyRevenue, delta: delta.DailyRevenue},
	}
	for i, l := range lines {
		row := []interface{}{l.label}
		if l.isMargin {
			row = append(row, marginCell(d.MarginAvailable, l.cur))
		} else {
			row = append(row, l.cur)
		}
		if d.Previous != nil {
			if l.isMargin {
				row = append(row, marginCell(d.MarginAvailable, l.prev), marginCell(d.MarginAvailable, l.delta))
			} else {
				row = append(row, l.prev, l.delta)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary row %s: %w", l.label, err)
		}
	}

	meta := [][]interface{}{
		{"营业天数", d.DaysCurrent},
		{"统计周期", periodLabel(d)},
	}
	for i, m := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, len(lines)+3+i)
		row := m
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "D", 14)
}

func writeRanking(f *excelize.File, items []model.RankItem) error {
	if _, err := f.NewSheet(SheetRanking); err != nil {
		return fmt.Errorf("create ranking sheet: %w", err)
	}
	header := []interface{}{"排名", "商品名称", "销售数量"}
	if err := f.SetSheetRow(SheetRanking, "A1", &header); err != nil {
		return err
	}
	for i, it := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{i + 1, it.Label, it.Value}
		if err := f.SetSheetRow(SheetRanking, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// marginCell 无成本数据时毛利相关单元格显示 "--"
func marginCell(available bool, v float64) interface{} {
	if !available {
		return "--"
	}
	return v
}

func periodLabel(d *analysis.Dashboard) string {
	switch {
	case d.Mode == analysis.ModeCompare:
		return d.CurrentPeriod + " vs " + d.PreviousPeriod
	case len(d.Periods) == 1:
		return d.Periods[0]
	case len(d.Periods) > 1:
		return fmt.Sprintf("%s ~ %s", d.Periods[0], d.Periods[len(d.Periods)-1])
	}
	return "全部"
}
