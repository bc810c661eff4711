package fonts

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Info 是从字体 name/head/hhea/OS2 表中读取的描述信息，度量单位为千分之一 em。
type Info struct {
	FullName       string
	PostScriptName string
	UnitsPerEm     int
	Ascent         int
	Descent        int // 基线以下为负
	CapHeight      int
	ItalicAngle    float64
	BBox           [4]int
}

// DefaultInfo 是无法读取字体表时使用的 CJK 常用描述值。
var DefaultInfo = Info{
	UnitsPerEm: 1000,
	Ascent:     880,
	Descent:    -120,
	CapHeight:  700,
	BBox:       [4]int{0, -300, 1000, 1000},
}

// DetectFormat 根据文件头魔数判断字体容器格式。
func DetectFormat(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}
	switch {
	case bytes.Equal(data[:4], []byte("ttcf")):
		return FormatCollection
	case bytes.Equal(data[:4], []byte("OTTO")):
		return FormatOpenType
	case bytes.Equal(data[:4], []byte{0x00, 0x01, 0x00, 0x00}), bytes.Equal(data[:4], []byte("true")):
		return FormatTrueType
	default:
		return FormatUnknown
	}
}

// FormatFromPath 用扩展名推断格式，供魔数无法识别时兜底。
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf":
		return FormatTrueType
	case ".otf":
		return FormatOpenType
	case ".ttc", ".otc":
		return FormatCollection
	default:
		return FormatUnknown
	}
}

// Inspect 用 x/image/font/sfnt 读取名称与描述度量。集合文件读取第一个字体。
func Inspect(data []byte) (Info, error) {
	font, err := parseFirst(data)
	if err != nil {
		return DefaultInfo, err
	}
	upem := font.UnitsPerEm()
	if upem == 0 {
		return DefaultInfo, fmt.Errorf("unitsPerEm 为 0")
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(upem << 6)

	info := DefaultInfo
	info.UnitsPerEm = int(upem)
	if name, err := font.Name(buf, sfnt.NameIDFull); err == nil {
		info.FullName = strings.TrimSpace(name)
	}
	if ps, err := font.Name(buf, sfnt.NameIDPostScript); err == nil {
		info.PostScriptName = strings.TrimSpace(ps)
	}
	if post := font.PostTable(); post != nil {
		info.ItalicAngle = post.ItalicAngle
	}
	if metrics, err := font.Metrics(buf, ppem, xfont.HintingNone); err == nil {
		if a := scaleFixed(metrics.Ascent, upem); a > 0 {
			info.Ascent = a
		}
		if d := scaleFixed(metrics.Descent, upem); d > 0 {
			info.Descent = -d
		}
		if c := scaleFixed(metrics.CapHeight, upem); c > 0 {
			info.CapHeight = c
		}
	}
	if bounds, err := font.Bounds(buf, ppem, xfont.HintingNone); err == nil {
		// sfnt 的 y 轴向下，需要翻转到 PDF 坐标
		bbox := [4]int{
			scaleFixed(bounds.Min.X, upem),
			-scaleFixed(bounds.Max.Y, upem),
			scaleFixed(bounds.Max.X, upem),
			-scaleFixed(bounds.Min.Y, upem),
		}
		if bbox[2] > bbox[0] && bbox[3] > bbox[1] {
			info.BBox = bbox
		}
	}
	return info, nil
}

func parseFirst(data []byte) (*sfnt.Font, error) {
	if DetectFormat(data) == FormatCollection {
		c, err := sfnt.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体集合失败: %w", err)
		}
		return c.Font(0)
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	return font, nil
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) int {
	return int(math.Round(float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))))
}
