package layout

import (
	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/typeset"
)

// 该文件定义排版结果，供 PDF 输出、校样渲染与调试 JSON 共用。坐标单位为 pt，原点在页面左上角。

// Result 保存分页后的版面。
type Result struct {
	Pages   []Page       `json:"pages"`
	Meta    DocumentMeta `json:"meta"`
	Options Options      `json:"options"`
}

// Page 记录页面尺寸、内容区与放置在本页的段落。
type Page struct {
	Number  int     `json:"number"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margin  Margin  `json:"margin"`
	Content Rect    `json:"content"`
	Blocks  []Block `json:"blocks"`
}

// Column 标明段落所在的栏。
type Column uint8

const (
	ColumnFull Column = iota
	ColumnLeft
	ColumnRight
)

func (c Column) String() string {
	switch c {
	case ColumnLeft:
		return "left"
	case ColumnRight:
		return "right"
	default:
		return "full"
	}
}

// MarshalText 让栏位在 JSON 中以名称出现。
func (c Column) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText 解析 full/left/right。
func (c *Column) UnmarshalText(b []byte) error {
	switch string(b) {
	case "full":
		*c = ColumnFull
	case "left":
		*c = ColumnLeft
	case "right":
		*c = ColumnRight
	default:
		return errs.Formatf("layout", "未知栏位 %q", string(b))
	}
	return nil
}

// Block 是放置好的一个段落。Rect 是段落框，Paragraph.Y 是首行基线。
type Block struct {
	Section   int                `json:"section"`
	Column    Column             `json:"column"`
	Rect      Rect               `json:"rect"`
	Paragraph *typeset.Paragraph `json:"paragraph"`
}

// LineRect 返回第 i 行的外框：从基线向上一个字号，高为行距。
func (b Block) LineRect(i int) Rect {
	p := b.Paragraph
	l := p.Lines[i]
	return Rect{
		X:      p.X + l.X,
		Y:      p.Y + l.Baseline - p.FontSize,
		Width:  l.Width,
		Height: l.Height,
	}
}

// Rect 是轴对齐矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom 返回矩形下边的 y。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// UniformMargin 返回四边相同的边距。
func UniformMargin(v float64) Margin {
	return Margin{Top: v, Right: v, Bottom: v, Left: v}
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
