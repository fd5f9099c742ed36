package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/deeserv/Cafe-sales-tracker/internal/api"
	"github.com/deeserv/Cafe-sales-tracker/internal/config"
	"github.com/deeserv/Cafe-sales-tracker/internal/store"
	"github.com/deeserv/Cafe-sales-tracker/internal/warehouse"
)

// Server HTTP服务器
type Server struct {
	router    *gin.Engine
	store     *store.Store
	warehouse *warehouse.Warehouse
	api       *api.Handler
}

// NewServer 创建服务器；dataDir 为已解析的数据目录
func NewServer(cfg *config.AppConfig, dataDir string) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	w, err := warehouse.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}

	// 初始化 SQLite Store
	sqliteStore, err := store.New(filepath.Join(dataDir, "cafe.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		store:     sqliteStore,
		warehouse: w,
		api:       api.NewHandler(w, sqliteStore, SettingsFromConfig(cfg)),
	}
	s.setupRoutes()
	return s, nil
}

// SettingsFromConfig 配置文件中的看板默认参数
func SettingsFromConfig(cfg *config.AppConfig) store.Settings {
	return store.Settings{
		OperatingDays: cfg.Business.OperatingDays,
		DropTotalRows: cfg.Business.DropTotalRows,
		LowMarginPct:  cfg.Business.LowMarginPct,
		TopN:          cfg.Business.TopN,
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	group := s.router.Group("/api")
	{
		s.api.RegisterRoutes(group)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
