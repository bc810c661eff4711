// Package binding 把 JSON 数据代入稿件文本中的 ${path} 占位符，
// 例如经名、卷次等在多节中重复出现的内容。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/duizhao/errs"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 把 text 中的 ${a.b.0} 替换为 data 中对应的值。
// 路径段为数字时按数组下标取值。data 为 nil 时原样返回；
// 任一占位符无法解析时返回配置错误。
func Interpolate(text string, data any) (string, error) {
	if data == nil || !strings.Contains(text, "${") {
		return text, nil
	}
	var missing []string
	out := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		val, ok := Lookup(data, path)
		if !ok {
			missing = append(missing, path)
			return match
		}
		return fmt.Sprint(val)
	})
	if len(missing) > 0 {
		return text, errs.Configf("binding", "无法解析占位符: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// InterpolateAll 对每一节调用 Interpolate，错误信息带上节号。
func InterpolateAll(sections []string, data any) ([]string, error) {
	out := make([]string, len(sections))
	for i, s := range sections {
		v, err := Interpolate(s, data)
		if err != nil {
			return nil, fmt.Errorf("第 %d 节: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// Lookup 沿点分路径在解码后的 JSON 值中取值。
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := data
	for _, seg := range strings.Split(path, ".") {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			current = c[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
