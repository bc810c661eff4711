package pdfrenderer

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ByLCY/duizhao/layout"
	"github.com/ByLCY/duizhao/typeset"
)

// contentStream 生成一页的内容流。每个段落一个 BT/ET，每行用 Tm 定位后以 TJ 输出。
func (doc *document) contentStream(page layout.Page) ([]byte, error) {
	var buf bytes.Buffer
	for _, b := range page.Blocks {
		p := b.Paragraph
		if p == nil || len(p.Lines) == 0 {
			continue
		}
		if !p.Script.Valid() {
			return nil, fmt.Errorf("段落文种非法: %d", uint8(p.Script))
		}
		res := latinResource
		if p.Script == typeset.Chinese {
			res = chineseResource
		}
		fmt.Fprintf(&buf, "BT\n/%s %s Tf\n", res, num(p.FontSize))
		for _, line := range p.Lines {
			x := p.X + line.X
			y := page.Height - (p.Y + line.Baseline)
			fmt.Fprintf(&buf, "1 0 0 1 %s %s Tm\n", num(x), num(y))
			doc.writeTJ(&buf, line, p.FontSize)
			buf.WriteString(" TJ\n")
		}
		buf.WriteString("ET\n")
	}
	return buf.Bytes(), nil
}

// glyph 是 TJ 数组中的一个字符及其后面的字间调整。
type glyph struct {
	code   []byte
	adjust float64 // 千分之一 em，正值减少前进宽度
}

// writeTJ 输出一行的 TJ 数组。相邻字符之间的调整量为
// −(字偶距×1000/字号 + 字距 + 额外空格宽×1000/字号)，与排版测量一致：
// 字偶距只作用于记号内部，字距作用于所有相邻字符，额外空格宽只作用于两端对齐拉伸的空格。
func (doc *document) writeTJ(buf *bytes.Buffer, line typeset.Line, size float64) {
	glyphs := doc.glyphs(line, size)
	buf.WriteByte('[')
	for i, g := range glyphs {
		if line.Script == typeset.Chinese {
			fmt.Fprintf(buf, "<%X>", g.code)
		} else {
			writeLiteral(buf, g.code)
		}
		if i < len(glyphs)-1 && g.adjust != 0 {
			buf.WriteByte(' ')
			buf.WriteString(num(g.adjust))
			buf.WriteByte(' ')
		}
	}
	buf.WriteByte(']')
}

func (doc *document) glyphs(line typeset.Line, size float64) []glyph {
	m := doc.faces[line.Script].Metrics
	tracking := doc.opts.Tracking(line.Script)
	tokens := line.Tokens
	if tokens == nil && line.Text != "" {
		tokens = []typeset.Token{typeset.WordToken(line.Text)}
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].Kind == typeset.Space {
		tokens = tokens[:len(tokens)-1]
	}

	var out []glyph
	pos := 0
	for ti, t := range tokens {
		text := t.String()
		var prev rune
		for i, r := range text {
			if i > 0 && len(out) > 0 {
				if k, ok := m.Kern(prev, r, size); ok {
					out[len(out)-1].adjust -= k * 1000 / size
				}
			}
			out = append(out, glyph{code: encode(line.Script, r)})
			g := &out[len(out)-1]
			last := ti == len(tokens)-1 && i+utf8.RuneLen(r) == len(text)
			if !last {
				g.adjust -= tracking
			}
			if t.Kind == typeset.Space {
				if extra, ok := line.Adjustment(pos); ok {
					g.adjust -= extra * 1000 / size
				}
			}
			prev = r
			pos++
		}
	}
	return out
}

// encode 返回字符在对应字体中的编码：中文为两字节大端 CID，英文为 WinAnsi 单字节。
func encode(script typeset.Script, r rune) []byte {
	if script == typeset.Chinese {
		c := cid(r)
		return []byte{byte(c >> 8), byte(c)}
	}
	b, ok := charmap.Windows1252.EncodeRune(r)
	if !ok {
		b = '?'
	}
	return []byte{b}
}

func writeLiteral(buf *bytes.Buffer, code []byte) {
	buf.WriteByte('(')
	for _, c := range code {
		switch {
		case c == '(' || c == ')' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(buf, "\\%03o", c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

// num 以最多三位小数输出数字。
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	s = trimDot(s)
	if s == "-0" {
		return "0"
	}
	return s
}

func trimDot(s string) string {
	if s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}
