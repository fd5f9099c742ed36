package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	currencyRe   = regexp.MustCompile(`[¥$,￥\s]`)
)

// NormalizeColumnName 规范化列名，去除空格、换行和制表符
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MatchPattern 使用正则匹配
func MatchPattern(text, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// ParseAmount 去除货币符号与千分位后解析数值，无法解析时返回 0
func ParseAmount(s string) float64 {
	s = currencyRe.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// FormatAmount 数值转回文本（无多余小数位）
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
