// cafe-report 离线读取数据目录并生成经营明细 xlsx
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/deeserv/Cafe-sales-tracker/internal/analysis"
	"github.com/deeserv/Cafe-sales-tracker/internal/config"
	"github.com/deeserv/Cafe-sales-tracker/internal/exporter"
	"github.com/deeserv/Cafe-sales-tracker/internal/importer"
	"github.com/deeserv/Cafe-sales-tracker/internal/store"
	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

var (
	dataDir  = flag.String("dataDir", "", "数据目录 (默认取 config.toml / CAFE_DATA_DIR)")
	out      = flag.String("out", "report.xlsx", "输出文件")
	compare  = flag.Bool("compare", false, "对比最后两个统计周期")
	days     = flag.Int("days", 0, "本期营业天数 (1-31)")
	prevDays = flag.Int("prevDays", 0, "上期营业天数 (1-31)")
	stores   = flag.String("stores", "", "门店，逗号分隔")
	keepSum  = flag.Bool("keepTotals", false, "保留合计/总计行")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	dir := *dataDir
	if dir == "" {
		exeDir, err := config.GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dir = config.ResolveDataDir(cfg, exeDir)
	}

	w, err := warehouse.Open(dir)
	if err != nil {
		log.Fatalf("打开数据目录失败: %v", err)
	}
	st, err := store.New(filepath.Join(dir, "cafe.db"))
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	defer func() { _ = st.Close() }()

	coord := importer.NewCoordinator(w, st, nil)
	ds, report, err := coord.Load(importer.Selection{DropTotalRows: cfg.Business.DropTotalRows && !*keepSum})
	if err != nil {
		log.Fatalf("加载数据失败: %v", err)
	}
	for _, f := range report.Files {
		fmt.Printf("%-8s %-30s %-8s %6d 行 %s\n", f.Kind, f.Name, f.Status, f.Rows, f.Error)
	}

	q := analysis.Query{
		Compare:      *compare,
		DaysCurrent:  *days,
		DaysPrevious: *prevDays,
		TopN:         cfg.Business.TopN,
		LowMarginPct: cfg.Business.LowMarginPct,
	}
	if q.DaysCurrent == 0 {
		q.DaysCurrent = cfg.Business.OperatingDays
	}
	if *stores != "" {
		q.Stores = strings.Split(*stores, ",")
	}

	d, err := analysis.Build(ds, q)
	if err != nil {
		log.Fatalf("计算失败: %v", err)
	}

	data, err := exporter.Bytes(d, exporter.ExportOptions{Progress: func(p exporter.ProgressEvent) {
		fmt.Printf("[%3d%%] %s\n", p.Percent, p.Stage)
	}})
	if err != nil {
		log.Fatalf("导出失败: %v", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("写入 %s 失败: %v", *out, err)
	}

	fmt.Printf("总销量 %.0f 杯, 总营收 %.2f, 日均 %.2f 杯\n", d.Current.Quantity, d.Current.Revenue, d.Current.DailyQuantity)
	if d.Delta != nil {
		fmt.Printf("%s vs %s: 销量 %+.2f%%\n", d.CurrentPeriod, d.PreviousPeriod, d.Delta.Quantity*100)
	}
	fmt.Println("报告已生成:", *out)
}
