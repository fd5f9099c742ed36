package api

import (
	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/importer"
	"github.com/deeserv/Cafe-sales-tracker/internal/store"
	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

// Handler 看板 API 处理器
type Handler struct {
	warehouse   *warehouse.Warehouse
	store       *store.Store
	coordinator *importer.Coordinator
	defaults    store.Settings // config.toml 中的默认参数，数据库未保存时使用
	downloads   *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(w *warehouse.Warehouse, st *store.Store, defaults store.Settings) *Handler {
	return &Handler{
		warehouse:   w,
		store:       st,
		coordinator: importer.NewCoordinator(w, st, nil),
		defaults:    defaults,
		downloads:   newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据仓库
	router.GET("/files", h.ListFiles)
	router.POST("/files/sales", h.UploadSales)
	router.POST("/files/cost", h.UploadCost)
	router.DELETE("/files/sales/:name", h.DeleteSales)

	// 导入记录与加载进度
	router.GET("/imports", h.ListImports)
	router.POST("/load/stream", h.LoadStream)

	// 看板
	router.GET("/options", h.GetOptions)
	router.POST("/dashboard", h.Dashboard)

	// 数据导出
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)

	// 看板参数
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)
}
