package parser

// Table 原始表格（保留源文件表头）
type Table struct {
	Name     string     `json:"name"`     // 源文件名
	Format   string     `json:"format"`   // xlsx / csv
	Encoding string     `json:"encoding"` // 文本文件实际使用的编码
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"-"`
}

// ColumnIndex 返回表头所在列，未找到返回 -1
func (t *Table) ColumnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell 安全取值（行长度不足时返回空串）
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// NamedFile 上传的文件内容
type NamedFile struct {
	Name string
	Data []byte
}

// FileError 单个文件读取失败
type FileError struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}
