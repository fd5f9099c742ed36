package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// ErrUnreadable 所有候选编码均无法解析
var ErrUnreadable = errors.New("无法识别文件编码或格式")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textDecoder 文本解码候选
type textDecoder struct {
	name   string
	decode func(data []byte) (string, bool)
}

// delimitedEncodings 文本文件编码尝试顺序
var delimitedEncodings = []textDecoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "utf-8-sig", decode: decodeUTF8BOM},
	{name: "gbk", decode: decodeWith(simplifiedchinese.GBK)},
	{name: "gb18030", decode: decodeWith(simplifiedchinese.GB18030)},
	{name: "big5", decode: decodeWith(traditionalchinese.Big5)},
	{name: "windows-1252", decode: decodeWith(charmap.Windows1252)},
}

// IsSpreadsheet 是否按表格文件解析
func IsSpreadsheet(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm", ".xls":
		return true
	}
	return false
}

// IsSupported 仓库接受的销售/成本文件类型
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return IsSpreadsheet(filename) || ext == ".csv" || ext == ".txt" || ext == ".tsv"
}

// LoadFile 读取单个上传文件
func LoadFile(name string, data []byte) (*Table, error) {
	if IsSpreadsheet(name) {
		return loadSpreadsheet(name, data)
	}
	return loadDelimited(name, data)
}

// LoadBatch 批量读取；单个文件失败只记录告警，不影响其他文件。
// 全部失败时返回的表格列表为 nil
func LoadBatch(files []NamedFile) ([]*Table, []FileError) {
	var tables []*Table
	var failures []FileError
	for _, f := range files {
		t, err := LoadFile(f.Name, f.Data)
		if err != nil {
			log.Printf("跳过文件 %s: %v", f.Name, err)
			failures = append(failures, FileError{Name: f.Name, Err: err})
			continue
		}
		tables = append(tables, t)
	}
	return tables, failures
}

func loadSpreadsheet(name string, data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return buildTable(name, "xlsx", "", rows)
}

func loadDelimited(name string, data []byte) (*Table, error) {
	for _, enc := range delimitedEncodings {
		text, ok := enc.decode(data)
		if !ok {
			continue
		}
		records, err := readDelimited(text)
		if err != nil {
			continue
		}
		t, err := buildTable(name, "csv", enc.name, records)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrUnreadable
}

func readDelimited(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sniffDelimiter 表头行中制表符多于逗号时按 TSV 处理
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return '\t'
	}
	return ','
}

func buildTable(name, format, enc string, rows [][]string) (*Table, error) {
	// 跳过表头前的空行
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, errors.New("empty sheet")
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Name:     name,
		Format:   format,
		Encoding: enc,
		Headers:  headers,
		Rows:     make([][]string, 0, len(rows)-start-1),
	}
	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func decodeUTF8(data []byte) (string, bool) {
	if bytes.HasPrefix(data, utf8BOM) || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeUTF8BOM(data []byte) (string, bool) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", false
	}
	rest := data[len(utf8BOM):]
	if !utf8.Valid(rest) {
		return "", false
	}
	return string(rest), true
}

// decodeWith x/text 解码器遇到非法字节会替换为 U+FFFD，据此判定解码失败
func decodeWith(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		if bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}
