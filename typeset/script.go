package typeset

import (
	"fmt"
)

// Script 是段落的文种。它是一个封闭的枚举，文种相关的行为都记录在 scriptRules 表中。
type Script uint8

const (
	Chinese Script = iota
	Latin
)

// rules 描述一个文种的排版规则。
type rules struct {
	name string
	lang string
	// tokenize 把规范化后的文本切分成记号。
	tokenize func(string) []Token
	// breakBetween 报告相邻两个记号之间是否额外允许断行（空格、逗号等通用断点之外）。
	breakBetween func(prev, next Token) bool
	// hyphenate 表示允许在单词内部按连字符规则断行。
	hyphenate bool
	// justify 表示在 Justify 模式下进行两端对齐。
	justify bool
	// refine 表示执行孤行、寡行、行密度等后处理。
	refine bool
}

var scriptRules = [...]rules{
	Chinese: {
		name:         "chinese",
		lang:         "zh",
		tokenize:     tokenizeChinese,
		breakBetween: chineseBreakBetween,
	},
	Latin: {
		name:      "latin",
		lang:      "en",
		tokenize:  tokenizeLatin,
		hyphenate: true,
		justify:   true,
		refine:    true,
	},
}

// Scripts 列出全部文种。
var Scripts = []Script{Chinese, Latin}

// Valid 报告 s 是否是已知文种。
func (s Script) Valid() bool { return int(s) < len(scriptRules) }

func (s Script) rules() rules { return scriptRules[s] }

func (s Script) String() string {
	if !s.Valid() {
		return fmt.Sprintf("script(%d)", uint8(s))
	}
	return scriptRules[s].name
}

// Lang 返回 BCP 47 语言标签。
func (s Script) Lang() string {
	if !s.Valid() {
		return ""
	}
	return scriptRules[s].lang
}

// MarshalText 使 Script 在调试 JSON 中以语言标签出现。
func (s Script) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("未知文种 %d", uint8(s))
	}
	return []byte(s.Lang()), nil
}

// UnmarshalText 解析 "zh"/"en" 或文种名。
func (s *Script) UnmarshalText(b []byte) error {
	switch string(b) {
	case "zh", "chinese":
		*s = Chinese
	case "en", "latin":
		*s = Latin
	default:
		return fmt.Errorf("未知文种 %q", string(b))
	}
	return nil
}
