package typeset

import "unicode/utf8"

// justify 把除首行外的各行撑满 maxWidth：余量平均分给行内空格，
// 每个空格的伸长不超过空格宽度的 clamp 倍。
func justify(lines []Line, ms measurer, maxWidth, clamp float64) []Line {
	base := ms.spaceWidth()
	out := append([]Line(nil), lines...)
	for i := 1; i < len(out); i++ {
		out[i] = justifyLine(out[i], base, maxWidth, clamp)
	}
	return out
}

func justifyLine(l Line, base, maxWidth, clamp float64) Line {
	slack := maxWidth - l.Natural
	if slack <= eps || base <= 0 {
		return l
	}
	positions := spacePositions(l.Tokens)
	if len(positions) == 0 {
		return l
	}
	extra := slack / float64(len(positions))
	ratio := extra / base
	if ratio > clamp {
		ratio = clamp
		extra = base * clamp
	}
	spaces := make([]SpaceAdjustment, len(positions))
	for i, p := range positions {
		spaces[i] = SpaceAdjustment{
			Position:      p,
			BaseWidth:     base,
			AdjustedWidth: base + extra,
			Ratio:         ratio,
		}
	}
	l.Spaces = spaces
	l.Width = l.Natural + extra*float64(len(positions))
	l.Justified = true
	return l
}

// spacePositions 返回行内空格（不含行尾空格）在行文本中的码位下标。
func spacePositions(tokens []Token) []int {
	var pos []int
	idx := 0
	for _, t := range trimTrailingSpaces(tokens) {
		if t.Kind == Space {
			pos = append(pos, idx)
		}
		idx += utf8.RuneCountInString(t.String())
	}
	return pos
}

// Adjustment 返回行文本第 pos 个码位上空格的额外伸长量（pt）。
func (l Line) Adjustment(pos int) (float64, bool) {
	for _, s := range l.Spaces {
		if s.Position == pos {
			return s.AdjustedWidth - s.BaseWidth, true
		}
	}
	return 0, false
}
