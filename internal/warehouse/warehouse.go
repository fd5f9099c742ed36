package warehouse

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deeserv/Cafe-sales-tracker/internal/parser"
)

// CostFileBase 成本档案文件名（不含扩展名），仓库中最多一份
const CostFileBase = "cost_data"

var (
	// ErrNotFound 文件不存在
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName 非法文件名
	ErrInvalidName = errors.New("invalid file name")
	// ErrUnsupported 不支持的文件类型
	ErrUnsupported = errors.New("unsupported file type")
)

// FileInfo 仓库文件信息
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	SHA256  string    `json:"sha256,omitempty"`
}

// Warehouse 本地数据仓库：uploads/ 存放销售文件与成本档案，exports/ 存放导出文件
type Warehouse struct {
	dataDir string
	mu      sync.RWMutex
}

// Open 打开数据目录（不存在则创建）
func Open(dataDir string) (*Warehouse, error) {
	if dataDir == "" {
		return nil, errors.New("dataDir is required")
	}
	w := &Warehouse{dataDir: dataDir}
	for _, dir := range []string{w.UploadsDir(), w.ExportsDir()} {
		if err := ensureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return w, nil
}

// DataDir 数据根目录
func (w *Warehouse) DataDir() string { return w.dataDir }

// UploadsDir 上传目录
func (w *Warehouse) UploadsDir() string { return filepath.Join(w.dataDir, "uploads") }

// ExportsDir 导出目录
func (w *Warehouse) ExportsDir() string { return filepath.Join(w.dataDir, "exports") }

// SanitizeName 只保留文件名部分，拒绝空名与目录跳转
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := filepath.Base(name)
	switch base {
	case "", ".", "..", "/":
		return "", ErrInvalidName
	}
	if strings.HasPrefix(base, ".") {
		return "", ErrInvalidName
	}
	return base, nil
}

func isCostFile(name string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == CostFileBase
}

// SaveSales 保存销售文件，同名覆盖
func (w *Warehouse) SaveSales(name string, data []byte) (FileInfo, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return FileInfo{}, err
	}
	if !parser.IsSupported(base) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrUnsupported, base)
	}
	if isCostFile(base) {
		return FileInfo{}, fmt.Errorf("%w: %s is reserved for the cost file", ErrInvalidName, base)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	path := filepath.Join(w.UploadsDir(), base)
	if err := writeFileAtomic(path, data); err != nil {
		return FileInfo{}, fmt.Errorf("failed to save %s: %w", base, err)
	}
	return statFile(path, data)
}

// SaveCost 保存成本档案为 cost_data.<原扩展名>，并移除其他扩展名的旧档案
func (w *Warehouse) SaveCost(name string, data []byte) (FileInfo, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return FileInfo{}, err
	}
	if !parser.IsSupported(base) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrUnsupported, base)
	}
	target := CostFileBase + strings.ToLower(filepath.Ext(base))

	w.mu.Lock()
	defer w.mu.Unlock()
	if old, ok := w.costNameLocked(); ok && old != target {
		if err := os.Remove(filepath.Join(w.UploadsDir(), old)); err != nil && !os.IsNotExist(err) {
			return FileInfo{}, fmt.Errorf("failed to remove old cost file: %w", err)
		}
	}
	path := filepath.Join(w.UploadsDir(), target)
	if err := writeFileAtomic(path, data); err != nil {
		return FileInfo{}, fmt.Errorf("failed to save cost file: %w", err)
	}
	return statFile(path, data)
}

// ListSales 列出销售文件（按文件名排序，不含成本档案）
func (w *Warehouse) ListSales() ([]FileInfo, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entries, err := os.ReadDir(w.UploadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, err
	}
	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || isCostFile(e.Name()) || !parser.IsSupported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// DeleteSales 删除销售文件
func (w *Warehouse) DeleteSales(name string) error {
	base, err := SanitizeName(name)
	if err != nil {
		return err
	}
	if isCostFile(base) {
		return fmt.Errorf("%w: %s", ErrInvalidName, base)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.Remove(filepath.Join(w.UploadsDir(), base)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, base)
		}
		return err
	}
	return nil
}

// Read 读取 uploads 中的文件
func (w *Warehouse) Read(name string) ([]byte, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	data, err := os.ReadFile(filepath.Join(w.UploadsDir(), base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, base)
		}
		return nil, err
	}
	return data, nil
}

// CostFile 当前成本档案
func (w *Warehouse) CostFile() (FileInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name, ok := w.costNameLocked()
	if !ok {
		return FileInfo{}, false
	}
	st, err := os.Stat(filepath.Join(w.UploadsDir(), name))
	if err != nil {
		return FileInfo{}, false
	}
	return FileInfo{Name: name, Size: st.Size(), ModTime: st.ModTime()}, true
}

// CostPath 成本档案路径，不存在时返回空串
func (w *Warehouse) CostPath() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name, ok := w.costNameLocked()
	if !ok {
		return ""
	}
	return filepath.Join(w.UploadsDir(), name)
}

func (w *Warehouse) costNameLocked() (string, bool) {
	entries, err := os.ReadDir(w.UploadsDir())
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && isCostFile(e.Name()) && parser.IsSupported(e.Name()) {
			return e.Name(), true
		}
	}
	return "", false
}

// LoadSales 读取选中的销售文件；names 为空时读取全部
func (w *Warehouse) LoadSales(names []string) ([]parser.NamedFile, error) {
	if len(names) == 0 {
		all, err := w.ListSales()
		if err != nil {
			return nil, err
		}
		for _, f := range all {
			names = append(names, f.Name)
		}
	}
	files := make([]parser.NamedFile, 0, len(names))
	for _, name := range names {
		data, err := w.Read(name)
		if err != nil {
			return nil, err
		}
		files = append(files, parser.NamedFile{Name: name, Data: data})
	}
	return files, nil
}

// LoadCost 读取成本档案，没有时返回 nil
func (w *Warehouse) LoadCost() (*parser.NamedFile, error) {
	info, ok := w.CostFile()
	if !ok {
		return nil, nil
	}
	data, err := w.Read(info.Name)
	if err != nil {
		return nil, err
	}
	return &parser.NamedFile{Name: info.Name, Data: data}, nil
}

// SaveExport 写入导出文件，返回完整路径
func (w *Warehouse) SaveExport(name string, data []byte) (string, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.ExportsDir(), base)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}
	return path, nil
}

// HasSales 是否存在销售文件
func (w *Warehouse) HasSales() bool {
	files, err := w.ListSales()
	return err == nil && len(files) > 0
}

// Checksum 内容 sha256
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func statFile(path string, data []byte) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    filepath.Base(path),
		Size:    st.Size(),
		ModTime: st.ModTime(),
		SHA256:  Checksum(data),
	}, nil
}
