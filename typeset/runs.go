package typeset

import (
	"math"
	"unicode/utf8"
)

// Run 是行内一段连续字形：西文为一个词（含粘连的标点与连字符），中文为一个字。
// X 相对行首，已计入两端对齐的空格伸长。
type Run struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// runs 用与断行相同的测量切分行内字形段。
func runs(l Line, ms measurer) []Run {
	var out []Run
	var x float64
	pos := 0
	open := false
	for i, t := range trimTrailingSpaces(l.Tokens) {
		step := ms.step(t, i > 0)
		s := t.String()
		switch {
		case t.Kind == Space:
			extra, _ := l.Adjustment(pos)
			open = false
			x += step + extra
		case open && l.Script != Chinese:
			cur := &out[len(out)-1]
			cur.Text += s
			cur.Width = x + step - cur.X
			x += step
		default:
			lead := 0.0
			if i > 0 {
				lead = ms.trackingPt()
			}
			out = append(out, Run{Text: s, X: x + lead, Width: math.Max(0, step-lead)})
			open = true
			x += step
		}
		pos += utf8.RuneCountInString(s)
	}
	return out
}
