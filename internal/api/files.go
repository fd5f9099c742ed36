package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deeserv/Cafe-sales-tracker/internal/store"
	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

// maxUploadSize 单个上传文件上限
const maxUploadSize = 50 << 20

// UploadResult 上传结果
type UploadResult struct {
	Saved  []warehouse.FileInfo `json:"saved"`
	Failed []UploadFailure      `json:"failed"`
}

// UploadFailure 上传失败的文件
type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ListFiles 列出仓库文件
// GET /api/files
func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.warehouse.ListSales()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取数据目录失败"})
		return
	}
	resp := gin.H{"sales": files, "cost": nil}
	if info, ok := h.warehouse.CostFile(); ok {
		resp["cost"] = info
	}
	c.JSON(http.StatusOK, resp)
}

// UploadSales 上传销售文件（multipart，字段 file 可多个）
// POST /api/files/sales
func (h *Handler) UploadSales(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	batchID := uuid.New().String()
	result := UploadResult{Saved: []warehouse.FileInfo{}, Failed: []UploadFailure{}}
	for _, fh := range files {
		info, err := h.saveUpload(batchID, store.KindSales, fh, h.warehouse.SaveSales)
		if err != nil {
			result.Failed = append(result.Failed, UploadFailure{Name: fh.Filename, Error: err.Error()})
			continue
		}
		result.Saved = append(result.Saved, info)
	}

	status := http.StatusOK
	if len(result.Saved) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

// UploadCost 上传成本档案（替换已有档案）
// POST /api/files/cost
func (h *Handler) UploadCost(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	info, err := h.saveUpload(uuid.New().String(), store.KindCost, fh, h.warehouse.SaveCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// DeleteSales 删除销售文件
// DELETE /api/files/sales/:name
func (h *Handler) DeleteSales(c *gin.Context) {
	if err := h.warehouse.DeleteSales(c.Param("name")); err != nil {
		switch {
		case errors.Is(err, warehouse.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		case errors.Is(err, warehouse.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "非法文件名"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// ListImports 导入记录
// GET /api/imports?limit=50
func (h *Handler) ListImports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取导入记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// saveUpload 读取上传内容、写入仓库并记录导入日志
func (h *Handler) saveUpload(batchID, kind string, fh *multipart.FileHeader,
	save func(string, []byte) (warehouse.FileInfo, error)) (warehouse.FileInfo, error) {
	if fh.Size > maxUploadSize {
		return warehouse.FileInfo{}, errors.New("文件过大")
	}
	src, err := fh.Open()
	if err != nil {
		return warehouse.FileInfo{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return warehouse.FileInfo{}, err
	}

	logID, logErr := h.store.CreateImportLog(batchID, fh.Filename, kind, int64(len(data)), warehouse.Checksum(data))
	info, err := save(fh.Filename, data)
	if logErr == nil {
		status, msg := store.ImportStatusSuccess, ""
		if err != nil {
			status, msg = store.ImportStatusFailed, err.Error()
		}
		_ = h.store.FinishImportLog(logID, status, "", 0, msg)
	}
	return info, err
}
