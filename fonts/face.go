// Package fonts 提供排版核心所需的字体能力：字形度量、字体程序字节与格式提示。
//
// 核心从不自行解析字体程序，而是通过 Metrics 接口消费度量结果；
// Face 另外携带原始字节（用于嵌入）与格式提示（仅用于判断能否嵌入）。
package fonts

import (
	"github.com/ByLCY/duizhao/errs"
)

// Metrics 是字体度量服务的边界接口。size 单位为 pt，返回值同为 pt。
type Metrics interface {
	AdvanceWidth(r rune, size float64) float64
	Kern(left, right rune, size float64) (float64, bool)
	GlyphIndex(r rune) uint16
	UnitsPerEm() int
}

// Format 是字体程序的容器格式提示。
type Format int

const (
	FormatUnknown    Format = iota
	FormatTrueType          // 单个 glyf 轮廓字体，可作为 FontFile2 嵌入
	FormatOpenType          // CFF 轮廓
	FormatCollection        // TTC/OTC 集合
)

func (f Format) String() string {
	switch f {
	case FormatTrueType:
		return "truetype"
	case FormatOpenType:
		return "opentype"
	case FormatCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Face 是一个已加载的字体：名称、原始字节、格式提示与度量。
// Program 在克隆之间共享，调用方不得修改。
type Face struct {
	Name    string
	Program []byte
	Format  Format
	Metrics Metrics
}

// Embeddable 报告字体程序能否原样嵌入为 CIDFontType2 的 FontFile2。
func (f *Face) Embeddable() bool {
	return f != nil && f.Format == FormatTrueType && len(f.Program) > 0
}

// Check 校验字体是否具备排版所需的最小能力。
func (f *Face) Check(script string) error {
	if f == nil {
		return errs.Resourcef("fonts", "缺少%s字体", script)
	}
	if f.Metrics == nil {
		return errs.Resourcef("fonts", "%s字体 %q 没有度量数据", script, f.Name)
	}
	if f.Metrics.UnitsPerEm() <= 0 {
		return errs.Resourcef("fonts", "%s字体 %q 的 unitsPerEm 非法", script, f.Name)
	}
	return nil
}
