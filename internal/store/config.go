package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// 看板参数配置键
const (
	KeyOperatingDays = "operating_days"
	KeyDropTotalRows = "drop_total_rows"
	KeyLowMarginPct  = "low_margin_pct"
	KeyTopN          = "top_n"
)

// Settings 持久化的看板默认参数
type Settings struct {
	OperatingDays int     `json:"operatingDays"`
	DropTotalRows bool    `json:"dropTotalRows"`
	LowMarginPct  float64 `json:"lowMarginPct"`
	TopN          int     `json:"topN"`
}

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt 获取整数配置项
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetConfigFloat 获取浮点数配置项
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// GetConfigBool 获取布尔配置项
func (s *Store) GetConfigBool(key string) (bool, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigInt 设置整数配置项
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// SetConfigFloat 设置浮点数配置项
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// SetConfigBool 设置布尔配置项
func (s *Store) SetConfigBool(key string, value bool) error {
	return s.SetConfig(key, strconv.FormatBool(value))
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// LoadSettings 读取看板参数，未保存或无法解析的项使用 defaults
func (s *Store) LoadSettings(defaults Settings) (Settings, error) {
	out := defaults

	if v, err := s.GetConfigInt(KeyOperatingDays); err == nil {
		out.OperatingDays = v
	} else if !errors.Is(err, ErrConfigNotFound) && !isParseErr(err) {
		return defaults, err
	}
	if v, err := s.GetConfigBool(KeyDropTotalRows); err == nil {
		out.DropTotalRows = v
	} else if !errors.Is(err, ErrConfigNotFound) && !isParseErr(err) {
		return defaults, err
	}
	if v, err := s.GetConfigFloat(KeyLowMarginPct); err == nil {
		out.LowMarginPct = v
	} else if !errors.Is(err, ErrConfigNotFound) && !isParseErr(err) {
		return defaults, err
	}
	if v, err := s.GetConfigInt(KeyTopN); err == nil {
		out.TopN = v
	} else if !errors.Is(err, ErrConfigNotFound) && !isParseErr(err) {
		return defaults, err
	}
	return out, nil
}

// SaveSettings 保存看板参数（单事务）
func (s *Store) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	values := map[string]string{
		KeyOperatingDays: strconv.Itoa(settings.OperatingDays),
		KeyDropTotalRows: strconv.FormatBool(settings.DropTotalRows),
		KeyLowMarginPct:  strconv.FormatFloat(settings.LowMarginPct, 'f', -1, 64),
		KeyTopN:          strconv.Itoa(settings.TopN),
	}
	for key, value := range values {
		if _, err := tx.Exec(`
			INSERT INTO config (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
		`, key, value, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func isParseErr(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr)
}
