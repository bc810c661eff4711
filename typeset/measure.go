package typeset

import (
	"math"

	"github.com/ByLCY/duizhao/fonts"
)

// eps 吸收宽度比较中的浮点误差。
const eps = 1e-9

// measurer 以 pt 为单位测量记号宽度：字形前进宽度、记号内部的字偶距与字距（tracking）。
type measurer struct {
	m        fonts.Metrics
	size     float64
	tracking float64 // 千分之一 em
}

// trackingPt 是相邻字符之间的字距，单位 pt。
func (ms measurer) trackingPt() float64 {
	return ms.tracking * ms.size / 1000
}

// text 测量一段文本：前进宽度之和，加上相邻字符间的字偶距与字距。
func (ms measurer) text(s string) float64 {
	var w float64
	var prev rune
	first := true
	for _, r := range s {
		if !first {
			w += ms.trackingPt()
			if k, ok := ms.m.Kern(prev, r, ms.size); ok {
				w += k
			}
		}
		w += ms.m.AdvanceWidth(r, ms.size)
		prev = r
		first = false
	}
	return w
}

// step 是把记号追加到序列末尾时增加的宽度，非首个记号还要加一次字距。结果不小于 0。
func (ms measurer) step(t Token, follows bool) float64 {
	w := ms.text(t.String())
	if follows {
		w += ms.trackingPt()
	}
	return math.Max(0, w)
}

// width 测量记号序列。每个记号的贡献非负，因此追加记号不会使宽度变小。
func (ms measurer) width(tokens []Token) float64 {
	var w float64
	for i, t := range tokens {
		w += ms.step(t, i > 0)
	}
	return w
}

// lineWidth 是不计尾随空格的行宽。
func (ms measurer) lineWidth(tokens []Token) float64 {
	return ms.width(trimTrailingSpaces(tokens))
}

// spaceWidth 是一个空格的宽度。
func (ms measurer) spaceWidth() float64 {
	return math.Max(0, ms.text(" "))
}
