package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/config"
)

// UpdateConfigRequest 更新看板参数（字段为空表示不修改）
type UpdateConfigRequest struct {
	OperatingDays *int     `json:"operatingDays"`
	DropTotalRows *bool    `json:"dropTotalRows"`
	LowMarginPct  *float64 `json:"lowMarginPct"`
	TopN          *int     `json:"topN"`
}

// GetConfig 获取看板参数
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	s, err := h.store.LoadSettings(h.defaults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateConfig 更新看板参数
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	s, err := h.store.LoadSettings(h.defaults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}

	if req.OperatingDays != nil {
		if *req.OperatingDays < config.MinOperatingDays || *req.OperatingDays > config.MaxOperatingDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "营业天数需在 1-31 之间"})
			return
		}
		s.OperatingDays = *req.OperatingDays
	}
	if req.DropTotalRows != nil {
		s.DropTotalRows = *req.DropTotalRows
	}
	if req.LowMarginPct != nil {
		if *req.LowMarginPct < 0 || *req.LowMarginPct > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "低毛利阈值需在 0-100 之间"})
			return
		}
		s.LowMarginPct = *req.LowMarginPct
	}
	if req.TopN != nil {
		if *req.TopN <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "排行条数需大于 0"})
			return
		}
		s.TopN = *req.TopN
	}

	if err := h.store.SaveSettings(s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新配置失败"})
		return
	}
	c.JSON(http.StatusOK, s)
}
