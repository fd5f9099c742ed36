package importer

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/deeserv/Cafe-sales-tracker/internal/category"
	"github.com/deeserv/Cafe-sales-tracker/internal/model"
	"github.com/deeserv/Cafe-sales-tracker/internal/parser"
	"github.com/deeserv/Cafe-sales-tracker/internal/store"
	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

// Coordinator 导入协调器：仓库文件 → 读取 → 清洗 → 合并成本 → 分类映射
type Coordinator struct {
	warehouse *warehouse.Warehouse
	store     *store.Store // 可为 nil，此时不写导入日志
	taxonomy  *category.Taxonomy
}

// NewCoordinator 创建导入协调器；taxonomy 为 nil 时使用内置分类字典
func NewCoordinator(w *warehouse.Warehouse, st *store.Store, taxonomy *category.Taxonomy) *Coordinator {
	if taxonomy == nil {
		taxonomy = category.Builtin()
	}
	return &Coordinator{
		warehouse: w,
		store:     st,
		taxonomy:  taxonomy,
	}
}

// Selection 本次加载的文件与清洗选项
type Selection struct {
	Files         []string `json:"files"` // 为空表示全部销售文件
	DropTotalRows bool     `json:"dropTotalRows"`
}

// 文件处理状态
const (
	FileLoaded  = "loaded"
	FileFailed  = "failed"
	FileSkipped = "skipped"
)

// FileResult 单个文件的处理结果
type FileResult struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Encoding string `json:"encoding,omitempty"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
}

// ImportReport 加载报告
type ImportReport struct {
	BatchID     string           `json:"batchId"`
	Files       []FileResult     `json:"files"`
	LoadedFiles int              `json:"loadedFiles"`
	FailedFiles int              `json:"failedFiles"`
	TotalRows   int              `json:"totalRows"`
	Cost        model.CostReport `json:"cost"`
	Duration    time.Duration    `json:"duration"`
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/file_done/warning/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// loadContext 一次加载的上下文
type loadContext struct {
	report *ImportReport
	emit   func(ProgressEvent)
	start  time.Time
	logIDs map[string]int64
}

// Load 同步执行完整流水线
//
// 仓库中没有销售文件或全部文件读取失败时返回 model.ErrNoData，
// 此时报告仍然有效（记录了失败原因）
func (c *Coordinator) Load(sel Selection) (*model.Dataset, *ImportReport, error) {
	return c.run(sel, func(ProgressEvent) {})
}

// LoadStream 异步执行流水线，返回进度通道（用于 SSE）
func (c *Coordinator) LoadStream(sel Selection) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		emit := func(evt ProgressEvent) { c.sendProgress(progressChan, evt) }
		_, report, err := c.run(sel, emit)
		if err != nil {
			emit(ProgressEvent{
				Type:      "error",
				Message:   fmt.Sprintf("加载失败: %v", err),
				Data:      report,
				Timestamp: time.Now(),
			})
			return
		}
		emit(ProgressEvent{
			Type:      "done",
			Message:   "加载完成",
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

func (c *Coordinator) run(sel Selection, emit func(ProgressEvent)) (*model.Dataset, *ImportReport, error) {
	ctx := &loadContext{
		report: &ImportReport{BatchID: uuid.New().String(), Files: []FileResult{}},
		emit:   emit,
		start:  time.Now(),
	}
	defer func() { ctx.report.Duration = time.Since(ctx.start) }()

	files, err := c.warehouse.LoadSales(sel.Files)
	if err != nil {
		return nil, ctx.report, fmt.Errorf("failed to read warehouse: %w", err)
	}
	if len(files) == 0 {
		return nil, ctx.report, model.ErrNoData
	}

	emit(ProgressEvent{
		Type:    "start",
		Message: fmt.Sprintf("开始加载 %d 个销售文件", len(files)),
		Data: map[string]interface{}{
			"batch_id": ctx.report.BatchID,
			"files":    len(files),
		},
		Timestamp: time.Now(),
	})

	tables := c.loadSales(ctx, files)
	if tables == nil {
		return nil, ctx.report, model.ErrNoData
	}

	opts := parser.NormalizeOptions{DropTotalRows: sel.DropTotalRows}
	sales := parser.NormalizeSales(tables, opts)
	c.countRows(ctx, sales)

	ctx.report.Cost = MergeCost(sales, c.loadCost(ctx))
	category.Apply(sales, c.taxonomy)

	if !ctx.report.Cost.Available {
		emit(ProgressEvent{
			Type:      "warning",
			Message:   "未找到成本档案，毛利相关指标不可用",
			Timestamp: time.Now(),
		})
	} else if ctx.report.Cost.MissingRows > 0 {
		emit(ProgressEvent{
			Type:    "warning",
			Message: fmt.Sprintf("%d 个商品缺少成本", len(ctx.report.Cost.MissingProducts)),
			Data: map[string]interface{}{
				"products": ctx.report.Cost.MissingProducts,
			},
			Timestamp: time.Now(),
		})
	}

	return &model.Dataset{Sales: sales, Cost: ctx.report.Cost}, ctx.report, nil
}

// loadSales 逐个读取销售文件；全部失败时返回 nil
func (c *Coordinator) loadSales(ctx *loadContext, files []parser.NamedFile) []*parser.Table {
	logIDs := make(map[string]int64, len(files))
	for _, f := range files {
		logIDs[f.Name] = c.openLog(ctx, f, store.KindSales)
	}

	tables, failures := parser.LoadBatch(files)

	for _, fe := range failures {
		c.recordFile(ctx, logIDs[fe.Name], FileResult{
			Name:   fe.Name,
			Kind:   store.KindSales,
			Status: FileFailed,
			Error:  fe.Err.Error(),
		})
		ctx.emit(ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("跳过文件 %s: %v", fe.Name, fe.Err),
			Timestamp: time.Now(),
		})
	}
	for _, t := range tables {
		// 行数在清洗后回填
		ctx.report.Files = append(ctx.report.Files, FileResult{
			Name:     t.Name,
			Kind:     store.KindSales,
			Status:   FileLoaded,
			Encoding: t.Encoding,
		})
		ctx.report.LoadedFiles++
	}
	ctx.logIDs = logIDs
	return tables
}

// countRows 按来源文件统计清洗后的行数并完成导入日志
func (c *Coordinator) countRows(ctx *loadContext, sales *model.SalesTable) {
	perFile := make(map[string]int)
	for _, rec := range sales.Records {
		perFile[rec.SourceFile]++
	}
	ctx.report.TotalRows = sales.Len()

	for i := range ctx.report.Files {
		fr := &ctx.report.Files[i]
		if fr.Kind != store.KindSales || fr.Status != FileLoaded {
			continue
		}
		fr.Rows = perFile[fr.Name]
		c.finishLog(ctx.logIDs[fr.Name], *fr)
		ctx.emit(ProgressEvent{
			Type:    "file_done",
			Message: fmt.Sprintf("%s 读取成功: %d 行", fr.Name, fr.Rows),
			Data: map[string]interface{}{
				"name":     fr.Name,
				"encoding": fr.Encoding,
				"rows":     fr.Rows,
			},
			Timestamp: time.Now(),
		})
	}
}

// loadCost 读取成本档案；不存在或无法使用时返回 nil
func (c *Coordinator) loadCost(ctx *loadContext) *CostTable {
	f, err := c.warehouse.LoadCost()
	if err != nil {
		ctx.report.Files = append(ctx.report.Files, FileResult{
			Name: warehouse.CostFileBase, Kind: store.KindCost, Status: FileFailed, Error: err.Error(),
		})
		return nil
	}
	if f == nil {
		return nil
	}

	id := c.openLog(ctx, *f, store.KindCost)
	t, err := parser.LoadFile(f.Name, f.Data)
	if err != nil {
		c.recordFile(ctx, id, FileResult{Name: f.Name, Kind: store.KindCost, Status: FileFailed, Error: err.Error()})
		return nil
	}
	ct := BuildCostTable(t)
	if ct == nil {
		c.recordFile(ctx, id, FileResult{
			Name:     f.Name,
			Kind:     store.KindCost,
			Status:   FileFailed,
			Encoding: t.Encoding,
			Error:    "成本档案缺少商品名称或成本列",
		})
		return nil
	}
	c.recordFile(ctx, id, FileResult{
		Name:     f.Name,
		Kind:     store.KindCost,
		Status:   FileLoaded,
		Encoding: t.Encoding,
		Rows:     len(t.Rows),
	})
	return ct
}

// recordFile 记录文件结果（失败文件计入 FailedFiles）
func (c *Coordinator) recordFile(ctx *loadContext, logID int64, fr FileResult) {
	ctx.report.Files = append(ctx.report.Files, fr)
	if fr.Status == FileFailed && fr.Kind == store.KindSales {
		ctx.report.FailedFiles++
	}
	c.finishLog(logID, fr)
}

func (c *Coordinator) openLog(ctx *loadContext, f parser.NamedFile, kind string) int64 {
	if c.store == nil {
		return 0
	}
	id, err := c.store.CreateImportLog(ctx.report.BatchID, f.Name, kind, int64(len(f.Data)), warehouse.Checksum(f.Data))
	if err != nil {
		ctx.emit(ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("写入导入日志失败: %v", err),
			Timestamp: time.Now(),
		})
		return 0
	}
	return id
}

func (c *Coordinator) finishLog(id int64, fr FileResult) {
	if c.store == nil || id == 0 {
		return
	}
	status := store.ImportStatusSuccess
	if fr.Status == FileFailed {
		status = store.ImportStatusFailed
	}
	if err := c.store.FinishImportLog(id, status, fr.Encoding, fr.Rows, fr.Error); err != nil {
		log.Printf("更新导入日志失败 %s: %v", fr.Name, err)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
