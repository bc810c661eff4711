package pdfrenderer

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/pdf"

	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/typeset"
)

// CIDToGIDMap 覆盖整个基本多文种平面。
const cidCount = 1 << 16

// 常见中文字体的规范 PostScript 名。
var canonicalFontNames = map[string]string{
	"Source Han Sans TC Regular": "SourceHanSansTC-Regular",
	"Microsoft JhengHei":         "MicrosoftJhengHei",
	"Microsoft YaHei":            "MicrosoftYaHei",
	"SimSun":                     "SimSun",
	"SimSun Bold":                "SimSun-Bold",
}

// SanitizeFontName 把字体名转换为合法的 PDF 名称：保留字母、数字、'-' 与 '_'，
// 空白替换为 '-'，其余字符丢弃；结果为空时返回 "CJKFont"。
func SanitizeFontName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := canonicalFontNames[name]; ok {
		return canonical
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "CJKFont"
	}
	return b.String()
}

func (doc *document) addFonts(used map[rune]bool) error {
	zh, err := doc.addChineseFont(used)
	if err != nil {
		return fmt.Errorf("写入中文字体失败: %w", err)
	}
	en, err := doc.addLatinFont()
	if err != nil {
		return fmt.Errorf("写入英文字体失败: %w", err)
	}
	doc.resource = pdf.Dict{chineseResource: zh, latinResource: en}
	return nil
}

// addChineseFont 写入 Type0 → CIDFontType2 → FontDescriptor 链。
// 只有可嵌入的 TrueType 字体才写 FontFile2 与 CIDToGIDMap 流，
// 否则使用 /Identity，由阅读器自行解析系统字体。
func (doc *document) addChineseFont(used map[rune]bool) (pdf.Reference, error) {
	face := doc.faces[typeset.Chinese]
	info, err := fonts.Inspect(face.Program)
	if err != nil {
		trace().Infof("font %q: using default descriptor (%v)", face.Name, err)
	}
	baseFont := pdf.Name(SanitizeFontName(face.Name))
	embed := face.Embeddable()

	descriptor := pdf.Dict{
		"Type":     pdf.Name("FontDescriptor"),
		"FontName": baseFont,
		"Flags":    pdf.Integer(4),
		"FontBBox": pdf.Array{
			pdf.Integer(info.BBox[0]), pdf.Integer(info.BBox[1]),
			pdf.Integer(info.BBox[2]), pdf.Integer(info.BBox[3]),
		},
		"ItalicAngle": pdf.Real(info.ItalicAngle),
		"Ascent":      pdf.Integer(info.Ascent),
		"Descent":     pdf.Integer(info.Descent),
		"CapHeight":   pdf.Integer(info.CapHeight),
		"StemV":       pdf.Integer(80),
	}
	if embed {
		fileRef := doc.data.Alloc()
		if err := doc.writeStream(fileRef, pdf.Dict{"Length1": pdf.Integer(len(face.Program))}, face.Program); err != nil {
			return 0, err
		}
		descriptor["FontFile2"] = fileRef
	}
	descriptorRef := doc.data.Alloc()
	if err := doc.data.Put(descriptorRef, descriptor); err != nil {
		return 0, err
	}

	cidFont := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("CIDFontType2"),
		"BaseFont": baseFont,
		"CIDSystemInfo": pdf.Dict{
			"Registry":   pdf.String("Adobe"),
			"Ordering":   pdf.String("Identity"),
			"Supplement": pdf.Integer(0),
		},
		"FontDescriptor": descriptorRef,
		"DW":             pdf.Integer(1000),
	}
	if w := cidWidths(face.Metrics, used); len(w) > 0 {
		cidFont["W"] = w
	}
	if embed {
		mapRef := doc.data.Alloc()
		if err := doc.writeStream(mapRef, nil, cidToGIDMap(face.Metrics)); err != nil {
			return 0, err
		}
		cidFont["CIDToGIDMap"] = mapRef
	} else {
		cidFont["CIDToGIDMap"] = pdf.Name("Identity")
	}
	cidRef := doc.data.Alloc()
	if err := doc.data.Put(cidRef, cidFont); err != nil {
		return 0, err
	}

	toUnicodeRef := doc.data.Alloc()
	if err := doc.writeStream(toUnicodeRef, nil, []byte(identityToUnicode())); err != nil {
		return 0, err
	}

	fontRef := doc.data.Alloc()
	err = doc.data.Put(fontRef, pdf.Dict{
		"Type":            pdf.Name("Font"),
		"Subtype":         pdf.Name("Type0"),
		"BaseFont":        baseFont,
		"Encoding":        pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{cidRef},
		"ToUnicode":       toUnicodeRef,
	})
	trace().Debugf("chinese font %s embedded=%t, %d cids", baseFont, embed, len(used))
	return fontRef, err
}

// addLatinFont 写入 Times-Roman。Widths 取自英文度量，使阅读器的前进宽度与排版一致。
func (doc *document) addLatinFont() (pdf.Reference, error) {
	m := doc.faces[typeset.Latin].Metrics
	widths := make(pdf.Array, 0, 224)
	for code := 32; code <= 255; code++ {
		r := charmap.Windows1252.DecodeByte(byte(code))
		var w float64
		if r != utf8.RuneError {
			w = m.AdvanceWidth(r, 1000)
		}
		widths = append(widths, pdf.Integer(math.Round(w)))
	}
	ref := doc.data.Alloc()
	err := doc.data.Put(ref, pdf.Dict{
		"Type":      pdf.Name("Font"),
		"Subtype":   pdf.Name("Type1"),
		"BaseFont":  pdf.Name("Times-Roman"),
		"Encoding":  pdf.Name("WinAnsiEncoding"),
		"FirstChar": pdf.Integer(32),
		"LastChar":  pdf.Integer(255),
		"Widths":    widths,
	})
	return ref, err
}

// cidWidths 为用到的 CID 生成 W 数组，连续的 CID 合并为 c [w1 w2 ...]。
func cidWidths(m fonts.Metrics, used map[rune]bool) pdf.Array {
	cids := make([]int, 0, len(used))
	for r := range used {
		cids = append(cids, cid(r))
	}
	slices.Sort(cids)
	cids = slices.Compact(cids)

	var out pdf.Array
	var run pdf.Array
	start := -1
	for i, c := range cids {
		if i == 0 || c != cids[i-1]+1 {
			if run != nil {
				out = append(out, pdf.Integer(start), run)
			}
			run, start = nil, c
		}
		run = append(run, pdf.Integer(math.Round(m.AdvanceWidth(rune(c), 1000))))
	}
	if run != nil {
		out = append(out, pdf.Integer(start), run)
	}
	return out
}

// cid 把码位映射为 CID。超出基本多文种平面的字符映射为 0。
func cid(r rune) int {
	if r < 0 || r >= cidCount || utf16.IsSurrogate(r) {
		return 0
	}
	return int(r)
}

// cidToGIDMap 按码位查找字形，每项为大端 uint16，找不到的为 0。
func cidToGIDMap(m fonts.Metrics) []byte {
	buf := make([]byte, 2*cidCount)
	for c := 1; c < cidCount; c++ {
		if utf16.IsSurrogate(rune(c)) {
			continue
		}
		gid := m.GlyphIndex(rune(c))
		buf[2*c] = byte(gid >> 8)
		buf[2*c+1] = byte(gid)
	}
	return buf
}

// identityToUnicode 生成 CID 到 UTF-16 的恒等映射。bfrange 每块最多 100 项，
// 每个范围不跨越高字节。
func identityToUnicode() string {
	var b strings.Builder
	b.WriteString(`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
`)
	const perBlock = 100
	for hi := 0; hi < 256; hi += perBlock {
		n := min(perBlock, 256-hi)
		fmt.Fprintf(&b, "%d beginbfrange\n", n)
		for h := hi; h < hi+n; h++ {
			fmt.Fprintf(&b, "<%02X00> <%02XFF> <%02X00>\n", h, h, h)
		}
		b.WriteString("endbfrange\n")
	}
	b.WriteString(`endcmap
CMapName currentdict /CMap defineresource pop
end
end
`)
	return b.String()
}

func (doc *document) writeStream(ref pdf.Reference, dict pdf.Dict, data []byte) error {
	stm, err := doc.data.OpenStream(ref, dict, pdf.FilterCompress{})
	if err != nil {
		return err
	}
	if _, err := stm.Write(data); err != nil {
		return err
	}
	return stm.Close()
}
