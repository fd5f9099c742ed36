package category

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Entry 一条分类映射
type Entry struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

type taxonomyFile struct {
	Categories []Entry `yaml:"categories"`
}

// Taxonomy 二级分类 → 一级分类 字典，构建后只读
type Taxonomy struct {
	bySecondary map[string]Entry
	entries     []Entry
}

// builtin 内置分类字典，随程序编译，运行期不可修改
var builtin = mustParse(taxonomyYAML)

// Builtin 返回内置分类字典
func Builtin() *Taxonomy {
	return builtin
}

// NewTaxonomy 由条目构建字典：按去空白后的二级分类去重，首次出现为准
func NewTaxonomy(entries []Entry) *Taxonomy {
	t := &Taxonomy{bySecondary: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := strings.TrimSpace(e.Secondary)
		if key == "" {
			continue
		}
		if _, exists := t.bySecondary[key]; exists {
			continue
		}
		entry := Entry{Primary: strings.TrimSpace(e.Primary), Secondary: key}
		t.bySecondary[key] = entry
		t.entries = append(t.entries, entry)
	}
	return t
}

// Parse 解析 YAML 格式的分类字典
func Parse(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	return NewTaxonomy(f.Categories), nil
}

func mustParse(data []byte) *Taxonomy {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup 按二级分类查找（入参会先去空白）
func (t *Taxonomy) Lookup(secondary string) (Entry, bool) {
	e, ok := t.bySecondary[strings.TrimSpace(secondary)]
	return e, ok
}

// Len 去重后的条目数
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Entries 返回条目副本（按定义顺序）
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Primaries 一级分类列表（排序）
func (t *Taxonomy) Primaries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range t.entries {
		if !seen[e.Primary] {
			seen[e.Primary] = true
			out = append(out, e.Primary)
		}
	}
	sort.Strings(out)
	return out
}
