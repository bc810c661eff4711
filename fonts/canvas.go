package fonts

import (
	"fmt"

	"github.com/tdewolff/canvas"
)

// canvasMetrics 基于 tdewolff/canvas 加载的字体实现 Metrics。
type canvasMetrics struct {
	font *canvas.Font
	upem int
}

var _ Metrics = (*canvasMetrics)(nil)

// LoadFace 通过 canvas 解析字体字节并构造 Face。
// name 为空时使用字体 name 表中的全名。
func LoadFace(name string, data []byte) (*Face, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("字体数据为空")
	}
	family := canvas.NewFontFamily(familyName(name))
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	sample := family.Face(12.0, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	if sample == nil || sample.Font == nil {
		return nil, fmt.Errorf("字体 %s 无法创建字面", name)
	}
	upem := int(sample.Font.Head.UnitsPerEm)
	if upem <= 0 {
		return nil, fmt.Errorf("字体 %s 的 unitsPerEm 非法: %d", name, upem)
	}
	m := &canvasMetrics{
		font: sample.Font,
		upem: upem,
	}

	format := DetectFormat(data)
	if name == "" {
		if info, err := Inspect(data); err == nil {
			name = info.FullName
		}
	}
	trace().Debugf("loaded face %q format=%s upem=%d", name, format, upem)
	return &Face{
		Name:    name,
		Program: data,
		Format:  format,
		Metrics: m,
	}, nil
}

func (m *canvasMetrics) AdvanceWidth(r rune, size float64) float64 {
	gid := m.font.GlyphIndex(r)
	return float64(m.font.GlyphAdvance(gid)) * size / float64(m.upem)
}

func (m *canvasMetrics) Kern(left, right rune, size float64) (float64, bool) {
	units := m.font.Kerning(m.font.GlyphIndex(left), m.font.GlyphIndex(right))
	if units == 0 {
		return 0, false
	}
	return float64(units) * size / float64(m.upem), true
}

func (m *canvasMetrics) GlyphIndex(r rune) uint16 {
	return m.font.GlyphIndex(r)
}

func (m *canvasMetrics) UnitsPerEm() int {
	return m.upem
}

func familyName(name string) string {
	if name == "" {
		return "duizhao"
	}
	return name
}
