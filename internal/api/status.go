package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool                `json:"initialized"`    // 是否已有销售文件
	SalesFiles     int                 `json:"salesFiles"`     // 销售文件数
	CostFile       *warehouse.FileInfo `json:"costFile"`       // 成本档案
	LastImportTime string              `json:"lastImportTime"` // 最近一次导入时间
	Database       string              `json:"database"`       // ok / 错误信息
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	files, err := h.warehouse.ListSales()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取数据目录失败"})
		return
	}

	resp := StatusResponse{
		Initialized: len(files) > 0,
		SalesFiles:  len(files),
	}
	if info, ok := h.warehouse.CostFile(); ok {
		resp.CostFile = &info
	}
	resp.Database = "ok"
	if err := h.store.Ping(); err != nil {
		log.Printf("数据库连接异常: %v", err)
		resp.Database = err.Error()
	} else if logs, err := h.store.ListImportLogs(1); err == nil && len(logs) > 0 {
		resp.LastImportTime = logs[0].CreatedAt.Local().Format("2006-01-02 15:04:05")
	}

	c.JSON(http.StatusOK, resp)
}
