package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 营业天数取值范围
const (
	MinOperatingDays = 1
	MaxOperatingDays = 31
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Business BusinessConfig `toml:"business"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// BusinessConfig 看板默认参数
type BusinessConfig struct {
	OperatingDays int     `toml:"operating_days"`  // 默认营业天数
	DropTotalRows bool    `toml:"drop_total_rows"` // 剔除合计/总计行
	LowMarginPct  float64 `toml:"low_margin_pct"`  // 低毛利预警线（%）
	TopN          int     `toml:"top_n"`           // 排行榜条数
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	ConfigPath    string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Business: BusinessConfig{
			OperatingDays: 5,
			DropTotalRows: true,
			LowMarginPct:  30,
			TopN:          10,
		},
	}
}

// ClampDays 营业天数限制在 1-31
func ClampDays(days int) int {
	if days < MinOperatingDays {
		return MinOperatingDays
	}
	if days > MaxOperatingDays {
		return MaxOperatingDays
	}
	return days
}

// Normalize 修正越界的业务参数
func (c *AppConfig) Normalize() {
	def := DefaultConfig()
	if c.Business.OperatingDays == 0 {
		c.Business.OperatingDays = def.Business.OperatingDays
	}
	c.Business.OperatingDays = ClampDays(c.Business.OperatingDays)
	if c.Business.TopN <= 0 {
		c.Business.TopN = def.Business.TopN
	}
	if c.Business.LowMarginPct < 0 || c.Business.LowMarginPct > 100 {
		c.Business.LowMarginPct = def.Business.LowMarginPct
	}
	if c.Data.DataDir == "" {
		c.Data.DataDir = def.Data.DataDir
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadFromDir(exeDir)
}

// LoadFromDir 从指定目录加载 .env 与 config.toml
//
// 优先级：默认值 < config.toml < CAFE_* 环境变量
func LoadFromDir(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{ConfigPath: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	// .env 可选，已存在的环境变量不会被覆盖
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, info, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(info.ConfigPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", info.ConfigPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	config.Normalize()
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// applyEnv 环境变量覆盖
func applyEnv(c *AppConfig, info *LoadConfigInfo) error {
	if v := env("CAFE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CAFE_PORT %q: %w", v, err)
		}
		c.Server.Port = port
		info.PortSpecified = true
	}
	if v := env("CAFE_DEV_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CAFE_DEV_MODE %q: %w", v, err)
		}
		c.Server.DevMode = b
	}
	if v := env("CAFE_DATA_DIR"); v != "" {
		c.Data.DataDir = v
	}
	if v := env("CAFE_OPERATING_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CAFE_OPERATING_DAYS %q: %w", v, err)
		}
		c.Business.OperatingDays = days
	}
	if v := env("CAFE_DROP_TOTAL_ROWS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CAFE_DROP_TOTAL_ROWS %q: %w", v, err)
		}
		c.Business.DropTotalRows = b
	}
	if v := env("CAFE_LOW_MARGIN_PCT"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CAFE_LOW_MARGIN_PCT %q: %w", v, err)
		}
		c.Business.LowMarginPct = pct
	}
	if v := env("CAFE_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CAFE_TOP_N %q: %w", v, err)
		}
		c.Business.TopN = n
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// ResolveDataDir 数据目录：绝对路径直接使用，相对路径基于 baseDir
func ResolveDataDir(config *AppConfig, baseDir string) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
// 相对路径的数据目录位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := ResolveDataDir(config, exeDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports", "backups"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
