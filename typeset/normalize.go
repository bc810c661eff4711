package typeset

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// NormalizePunctuation 在一次从左到右的扫描中完成标点美化：
// 直引号按前一个字符决定开闭（前面是空白或位于开头时为开引号，其余为闭引号），
// "..." 变为省略号，"--" 变为破折号。
func NormalizePunctuation(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		opening := i == 0 || unicode.IsSpace(runes[i-1])
		switch {
		case r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.':
			b.WriteRune('…')
			i += 2
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			b.WriteRune('—')
			i++
		case r == '"' && opening:
			b.WriteRune('“')
		case r == '"':
			b.WriteRune('”')
		case r == '\'' && opening:
			b.WriteRune('‘')
		case r == '\'':
			b.WriteRune('’')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// prepare 依次做 NFC 规范化、标点美化与双向文本分析。
func prepare(text string) string {
	s := norm.NFC.String(text)
	s = NormalizePunctuation(s)
	return bidiPass(s)
}

// bidiPass 以从左到右为基础方向分析双向文本。
// 目前不做视觉重排，混排的从右到左文字保持逻辑顺序输出。
func bidiPass(s string) string {
	if s == "" {
		return s
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		trace().Debugf("bidi analysis skipped: %v", err)
		return s
	}
	order, err := p.Order()
	if err != nil {
		trace().Debugf("bidi ordering skipped: %v", err)
		return s
	}
	if order.NumRuns() > 1 {
		trace().Infof("mixed-direction text with %d runs kept in logical order", order.NumRuns())
	}
	return s
}
