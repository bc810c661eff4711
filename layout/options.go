package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/typeset"
)

// Justification 是西文段落的对齐方式。
type Justification uint8

const (
	JustifyLeft Justification = iota
	JustifyFull
)

func (j Justification) String() string {
	switch j {
	case JustifyLeft:
		return "left"
	case JustifyFull:
		return "justify"
	default:
		return fmt.Sprintf("justification(%d)", uint8(j))
	}
}

// ParseJustification 解析 left/justify。
func ParseJustification(s string) (Justification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "ragged":
		return JustifyLeft, nil
	case "justify", "full":
		return JustifyFull, nil
	}
	return 0, errs.Configf("options", "未知对齐方式 %q", s)
}

// Mode 是双语版式。
type Mode uint8

const (
	Alternating Mode = iota // 中文段落与英文段落上下交替
	SideBySide              // 中文在左栏、英文在右栏
)

func (m Mode) String() string {
	switch m {
	case Alternating:
		return "alternating"
	case SideBySide:
		return "side-by-side"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode 解析 alternating/side-by-side。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alternating", "alternate":
		return Alternating, nil
	case "side-by-side", "sidebyside", "parallel":
		return SideBySide, nil
	}
	return 0, errs.Configf("options", "未知版式 %q", s)
}

// Options 是一次生成使用的全部排版参数，长度单位均为 pt。
type Options struct {
	PageWidth        float64       `json:"pageWidth"`
	PageHeight       float64       `json:"pageHeight"`
	Margin           Margin        `json:"margin"`
	ChineseSize      float64       `json:"chineseSize"`
	LatinSize        float64       `json:"latinSize"`
	LineSpacing      float64       `json:"lineSpacing"`
	ChineseTracking  float64       `json:"chineseTracking"` // 千分之一 em
	LatinTracking    float64       `json:"latinTracking"`   // 千分之一 em
	ParagraphSpacing float64       `json:"paragraphSpacing"`
	Justification    Justification `json:"justification"`
	Mode             Mode          `json:"mode"`
}

// DefaultOptions 返回 A4 纸、72pt 边距的默认参数。
func DefaultOptions() Options {
	return Options{
		PageWidth:        595,
		PageHeight:       842,
		Margin:           UniformMargin(72),
		ChineseSize:      13,
		LatinSize:        12,
		LineSpacing:      1.4,
		ChineseTracking:  12,
		LatinTracking:    8,
		ParagraphSpacing: 0.6,
		Justification:    JustifyFull,
		Mode:             Alternating,
	}
}

// Validate 检查几何参数与枚举值，失败时返回配置错误。
func (o Options) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"页面宽度", o.PageWidth},
		{"页面高度", o.PageHeight},
		{"中文字号", o.ChineseSize},
		{"西文字号", o.LatinSize},
		{"行高倍数", o.LineSpacing},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return errs.Configf("options", "%s非法: %g", p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"上边距", o.Margin.Top},
		{"右边距", o.Margin.Right},
		{"下边距", o.Margin.Bottom},
		{"左边距", o.Margin.Left},
		{"段间距", o.ParagraphSpacing},
	}
	for _, p := range nonNegative {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v < 0 {
			return errs.Configf("options", "%s非法: %g", p.name, p.v)
		}
	}
	for _, v := range []float64{o.ChineseTracking, o.LatinTracking} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Configf("options", "字距非法: %g", v)
		}
	}
	if o.Justification > JustifyFull {
		return errs.Configf("options", "未知对齐方式 %d", uint8(o.Justification))
	}
	if o.Mode > SideBySide {
		return errs.Configf("options", "未知版式 %d", uint8(o.Mode))
	}
	return nil
}

// Size 返回文种的字号。
func (o Options) Size(script typeset.Script) float64 {
	if script == typeset.Chinese {
		return o.ChineseSize
	}
	return o.LatinSize
}

// Tracking 返回文种的字距。
func (o Options) Tracking(script typeset.Script) float64 {
	if script == typeset.Chinese {
		return o.ChineseTracking
	}
	return o.LatinTracking
}

// LineHeight 是字号乘以行高倍数，不含行距下限，用于段间距与栏行高。
func (o Options) LineHeight(script typeset.Script) float64 {
	return o.Size(script) * o.LineSpacing
}

// Style 返回文种的排版参数。
func (o Options) Style(script typeset.Script) typeset.Style {
	return typeset.Style{
		Size:        o.Size(script),
		Tracking:    o.Tracking(script),
		LineSpacing: o.LineSpacing,
		Justify:     o.Justification == JustifyFull,
	}
}

const (
	safeInset   = 10
	minSafeSide = 120
	gutter      = 24
	minColumn   = 120
)

// SafeArea 返回内容区：页面去掉边距后每边再内缩 10pt，宽高各不小于 120pt。
func (o Options) SafeArea() Rect {
	w := o.PageWidth - o.Margin.Left - o.Margin.Right - 2*safeInset
	h := o.PageHeight - o.Margin.Top - o.Margin.Bottom - 2*safeInset
	return Rect{
		X:      o.Margin.Left + safeInset,
		Y:      o.Margin.Top + safeInset,
		Width:  math.Max(w, minSafeSide),
		Height: math.Max(h, minSafeSide),
	}
}

// ColumnWidth 是左右对照时每栏的宽度。
func (o Options) ColumnWidth() float64 {
	return math.Max((o.SafeArea().Width-gutter)/2, minColumn)
}
