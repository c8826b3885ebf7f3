package article

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonObjectPattern 贪婪匹配第一个大括号包裹的片段，允许跨行
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseJSONObject 将模型返回的文本解析为JSON对象。
// 模型输出不保证格式良好：token上限会截断对象，模型有时会包裹markdown代码块，
// 因此按顺序尝试多级修复，第一个成功的策略生效，全部失败返回ParseError。
func ParseJSONObject(raw string) (map[string]interface{}, error) {
	// 策略1：去除首尾空白和代码块标记后直接解析
	cleaned := stripCodeFences(raw)
	if obj, err := parseStrict(cleaned); err == nil {
		return obj, nil
	}

	// 策略2：大括号平衡修复，截断最后一个配平点之后的残缺内容
	repaired := truncateToBalanced(cleaned)
	if repaired != cleaned {
		if obj, err := parseStrict(repaired); err == nil {
			return obj, nil
		}
	}

	// 策略3：引号修复，补上被截断字符串缺失的结束引号
	if countUnescapedQuotes(repaired)%2 == 1 {
		if obj, err := parseStrict(repaired + `"`); err == nil {
			return obj, nil
		}
	}

	// 策略4：正则从原始文本中提取大括号片段
	if span := jsonObjectPattern.FindString(raw); span != "" {
		if obj, err := parseStrict(span); err == nil {
			return obj, nil
		}
	}

	return nil, NewParseError(raw)
}

// stripCodeFences 去除markdown代码块标记，容忍json语言标签
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

// parseStrict 严格解析JSON对象，顶层不是对象视为失败
func parseStrict(text string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("not a JSON object")
	}

	return obj, nil
}

// truncateToBalanced 按大括号深度截断文本，丢弃最后一个配平点之后的内容。
// 扫描不区分字符串字面量内的大括号，字符串值本身含大括号时可能错误配平，
// 这是已知限制：没有完整的JSON扫描器无法可靠区分两者。
func truncateToBalanced(text string) string {
	depth := 0
	seenOpen := false
	lastBalanced := -1

	for i, r := range text {
		switch r {
		case '{':
			depth++
			seenOpen = true
		case '}':
			depth--
			if seenOpen && depth == 0 {
				lastBalanced = i + 1
			}
		}
	}

	if lastBalanced < 0 {
		return text
	}

	return text[:lastBalanced]
}

// countUnescapedQuotes 统计未转义的双引号数量，奇数说明字符串被截断
func countUnescapedQuotes(text string) int {
	count := 0
	escaped := false

	for _, r := range text {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			count++
		}
	}

	return count
}
