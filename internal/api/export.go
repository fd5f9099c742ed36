package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/exporter"
)

// downloadTTL 下载链接有效期
const downloadTTL = 10 * time.Minute

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Export 导出商品经营明细，返回一次性下载地址
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	d, _, err := h.buildDashboard(req)
	if err != nil {
		h.respondLoadError(c, err)
		return
	}

	data, err := exporter.Bytes(d, exporter.ExportOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	downloadURL, fileName, err := h.publishExport(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入导出文件失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":       StateOK,
		"downloadUrl": downloadURL,
		"fileName":    fileName,
	})
}

// ExportStream 导出 Excel（SSE 进度 + 完成后提供下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
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

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(eventType, message string, data interface{}) {
		b, err := json.Marshal(exportProgressEvent{
			Type:      eventType,
			Message:   message,
			Data:      data,
			Timestamp: time.Now(),
		})
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send("start", "开始导出", map[string]any{})

	d, _, err := h.buildDashboard(req)
	if err != nil {
		state := loadErrorState(err)
		if state == "" {
			log.Printf("导出计算失败: %v", err)
			send("error", "导出失败: "+err.Error(), map[string]any{})
			return
		}
		send("error", "没有可导出的数据", map[string]any{"state": state})
		return
	}

	data, err := exporter.Bytes(d, exporter.ExportOptions{Progress: func(p exporter.ProgressEvent) {
		send("progress", p.Stage, map[string]any{"percent": p.Percent})
	}})
	if err != nil {
		send("error", "导出失败: "+err.Error(), map[string]any{})
		return
	}

	downloadURL, fileName, err := h.publishExport(data)
	if err != nil {
		send("error", "写入导出文件失败: "+err.Error(), map[string]any{})
		return
	}

	send("done", "导出完成", map[string]any{
		"percent":     100,
		"downloadUrl": downloadURL,
		"fileName":    fileName,
	})
}

// publishExport 写入 exports/ 并登记一次性下载 token
func (h *Handler) publishExport(data []byte) (string, string, error) {
	now := time.Now()
	fileName := fmt.Sprintf("商品经营明细_%s.xlsx", now.Format("20060102_150405"))
	stored := fmt.Sprintf("export_%d_%d.xlsx", now.UnixNano(), os.Getpid())
	path, err := h.warehouse.SaveExport(stored, data)
	if err != nil {
		return "", "", err
	}
	token := h.downloads.put(path, fileName, downloadTTL)
	return "/api/export/download/" + token, fileName, nil
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(item.fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}

// buildContentDisposition 中文文件名使用 RFC 5987 编码，同时给出 ASCII 兜底名
func buildContentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="export.xlsx"; filename*=UTF-8''%s`, url.PathEscape(name))
}
