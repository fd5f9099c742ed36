package store

import (
	"database/sql"
	"fmt"
	"time"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusSuccess    = "success"
	ImportStatusFailed     = "failed"
)

// 文件类别
const (
	KindSales = "sales"
	KindCost  = "cost"
)

// ImportLog 导入日志
type ImportLog struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batchId"`
	Filename     string     `json:"filename"`
	Kind         string     `json:"kind"`
	FileSize     int64      `json:"fileSize"`
	FileHash     string     `json:"fileHash"`
	Status       string     `json:"status"`
	Encoding     string     `json:"encoding"`
	RowCount     int        `json:"rowCount"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(batchID, filename, kind string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (batch_id, filename, kind, file_size, file_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, batchID, filename, kind, fileSize, fileHash, ImportStatusProcessing, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// FinishImportLog 完成导入日志更新
func (s *Store) FinishImportLog(id int64, status, encoding string, rowCount int, errorMessage string) error {
	res, err := s.db.Exec(`
		UPDATE import_logs SET
			status = ?,
			encoding = ?,
			row_count = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, status, encoding, rowCount, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import log %d not found", id)
	}
	return nil
}

// ListImportLogs 最近的导入日志（新的在前），limit <= 0 时返回全部
func (s *Store) ListImportLogs(limit int) ([]ImportLog, error) {
	query := `
		SELECT id, batch_id, filename, kind, file_size, file_hash, status,
		       encoding, row_count, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	logs := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		var completed sql.NullTime
		if err := rows.Scan(&l.ID, &l.BatchID, &l.Filename, &l.Kind, &l.FileSize, &l.FileHash,
			&l.Status, &l.Encoding, &l.RowCount, &l.ErrorMessage, &l.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListBatch 某次导入批次的全部日志（按写入顺序）
func (s *Store) ListBatch(batchID string) ([]ImportLog, error) {
	all, err := s.ListImportLogs(0)
	if err != nil {
		return nil, err
	}
	var out []ImportLog
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].BatchID == batchID {
			out = append(out, all[i])
		}
	}
	return out, nil
}
