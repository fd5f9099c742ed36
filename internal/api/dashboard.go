package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/analysis"
	"github.com/deeserv/Cafe-sales-tracker/internal/importer"
	"github.com/deeserv/Cafe-sales-tracker/internal/model"
	"github.com/deeserv/Cafe-sales-tracker/internal/store"
)

// 看板响应状态
const (
	StateOK             = "ok"
	StateNoData         = "no_data"
	StateEmptySelection = "empty_selection"
)

// DashboardRequest 看板请求：文件选择 + 查询条件
type DashboardRequest struct {
	Files         []string `json:"files"`
	DropTotalRows *bool    `json:"dropTotalRows"`
	analysis.Query
}

// DashboardResponse 看板响应
type DashboardResponse struct {
	State     string                 `json:"state"`
	Dashboard *analysis.Dashboard    `json:"dashboard,omitempty"`
	Report    *importer.ImportReport `json:"report,omitempty"`
}

// GetOptions 筛选可选值
// GET /api/options?primary=咖啡饮品&primary=非咖啡饮品
func (h *Handler) GetOptions(c *gin.Context) {
	settings := h.settings()
	sel := importer.Selection{Files: c.QueryArray("file"), DropTotalRows: settings.DropTotalRows}
	ds, _, err := h.coordinator.Load(sel)
	if err != nil {
		h.respondLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":   StateOK,
		"options": analysis.BuildOptions(ds.Sales, c.QueryArray("primary")),
	})
}

// Dashboard 计算看板
// POST /api/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	var req DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	d, report, err := h.buildDashboard(req)
	if err != nil {
		h.respondLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{State: StateOK, Dashboard: d, Report: report})
}

// LoadStream 重新加载仓库数据（SSE 流式进度）
// POST /api/load/stream
func (h *Handler) LoadStream(c *gin.Context) {
	var req DashboardRequest
	// 请求体可选
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
			return
		}
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for event := range h.coordinator.LoadStream(h.selection(req)) {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

func (h *Handler) buildDashboard(req DashboardRequest) (*analysis.Dashboard, *importer.ImportReport, error) {
	settings := h.settings()
	ds, report, err := h.coordinator.Load(h.selection(req))
	if err != nil {
		return nil, report, err
	}

	q := req.Query
	if q.DaysCurrent == 0 {
		q.DaysCurrent = settings.OperatingDays
	}
	if q.TopN == 0 {
		q.TopN = settings.TopN
	}
	if q.LowMarginPct == 0 {
		q.LowMarginPct = settings.LowMarginPct
	}
	q.Products = trimAll(q.Products)

	d, err := analysis.Build(ds, q)
	return d, report, err
}

func (h *Handler) selection(req DashboardRequest) importer.Selection {
	sel := importer.Selection{Files: req.Files, DropTotalRows: h.settings().DropTotalRows}
	if req.DropTotalRows != nil {
		sel.DropTotalRows = *req.DropTotalRows
	}
	return sel
}

// settings 当前看板参数（读取失败时退回配置文件默认值）
func (h *Handler) settings() store.Settings {
	s, err := h.store.LoadSettings(h.defaults)
	if err != nil {
		log.Printf("读取看板参数失败: %v", err)
		return h.defaults
	}
	return s
}

// respondLoadError 空数据/空筛选为正常状态，其余为错误
func (h *Handler) respondLoadError(c *gin.Context, err error) {
	if state := loadErrorState(err); state != "" {
		c.JSON(http.StatusOK, gin.H{"state": state})
		return
	}
	log.Printf("看板计算失败: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// loadErrorState 空数据/空筛选对应的响应状态，其他错误返回空串
func loadErrorState(err error) string {
	switch {
	case errors.Is(err, model.ErrNoData):
		return StateNoData
	case errors.Is(err, analysis.ErrEmptySelection):
		return StateEmptySelection
	}
	return ""
}

func trimAll(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
