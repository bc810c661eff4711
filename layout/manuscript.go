package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/duizhao/dsl"
	"github.com/ByLCY/duizhao/errs"
)

// Manuscript 是从稿件文件读出的全部输入。
type Manuscript struct {
	Meta        DocumentMeta
	ChineseFont string
	LatinFont   string
	Options     Options
	Chinese     []string
	English     []string
}

// FromDocument 把稿件 AST 转换为 Manuscript。未写出的选项取 DefaultOptions。
func FromDocument(doc *dsl.Document) (*Manuscript, error) {
	if doc == nil {
		return nil, errs.Formatf("manuscript", "稿件为空")
	}
	m := &Manuscript{Options: DefaultOptions()}
	for _, block := range doc.Blocks {
		var err error
		switch {
		case block.Meta != nil:
			m.collectMeta(block.Meta)
		case block.Fonts != nil:
			err = m.collectFonts(block.Fonts)
		case block.Options != nil:
			err = m.Options.apply(block.Options)
		case block.Section != nil:
			err = m.collectSection(block.Section)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := m.Options.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manuscript) collectMeta(f *dsl.Fields) {
	for _, a := range f.Assignments {
		switch strings.ToLower(a.Key) {
		case "title":
			m.Meta.Title = a.Value.Text()
		case "author":
			m.Meta.Author = a.Value.Text()
		case "subject":
			m.Meta.Subject = a.Value.Text()
		case "creator":
			m.Meta.Creator = a.Value.Text()
		case "keywords":
			m.Meta.Keywords = a.Value.Strings()
		}
	}
}

func (m *Manuscript) collectFonts(f *dsl.Fields) error {
	for _, a := range f.Assignments {
		switch strings.ToLower(a.Key) {
		case "zh", "chinese":
			m.ChineseFont = a.Value.Text()
		case "en", "latin", "english":
			m.LatinFont = a.Value.Text()
		default:
			return errs.Configf("manuscript", "%s: 未知字体键 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func (m *Manuscript) collectSection(f *dsl.Fields) error {
	var zh, en string
	for _, a := range f.Assignments {
		switch strings.ToLower(a.Key) {
		case "zh", "chinese":
			zh = a.Value.Text()
		case "en", "english":
			en = a.Value.Text()
		default:
			return errs.Configf("manuscript", "%s: 未知分节键 %q", a.Pos, a.Key)
		}
	}
	m.Chinese = append(m.Chinese, zh)
	m.English = append(m.English, en)
	return nil
}

// apply 按出现顺序把 options 块中的赋值与 page 命令写入 o。
func (o *Options) apply(block *dsl.OptionsBlock) error {
	var lineHeight *LineHeightSpec
	for _, item := range block.Items {
		if item.Page != nil {
			if err := o.applyPage(item.Page.Args); err != nil {
				return fmt.Errorf("%s: %w", item.Page.Pos, err)
			}
			continue
		}
		key := strings.ToLower(item.Assign.Key)
		val := item.Assign.Value.Text()
		if key == "line-spacing" || key == "line-height" {
			lh, err := ParseLineHeight(val)
			if err != nil {
				return err
			}
			lineHeight = &lh
			continue
		}
		if err := o.set(key, val); err != nil {
			return err
		}
	}
	if lineHeight != nil {
		// 绝对行高按中文字号换算为倍数
		o.LineSpacing = lineHeight.Multiplier(o.ChineseSize)
	}
	return nil
}

var pagePresets = map[string][2]float64{
	"A4":     {595, 842},
	"A5":     {420, 595},
	"B5":     {499, 709},
	"LETTER": {612, 792},
}

func resolvePageSize(args []string) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(args[0])]
	if !ok {
		return 0, 0, errs.Configf("manuscript", "暂不支持的纸张尺寸：%s", args[0])
	}
	width, height := base[0], base[1]
	for _, token := range args[1:] {
		if token == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin 读取 margin 后的 1 到 4 个长度，按 CSS 规则展开。
func resolveMargin(params []string) (Margin, bool) {
	for i := 0; i < len(params); i++ {
		if params[i] != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			l, err := ParseLength(params[j])
			if err != nil {
				break
			}
			vals = append(vals, l.ToPT())
		}
		switch len(vals) {
		case 1:
			return UniformMargin(vals[0]), true
		case 2:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, true
		case 3:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, true
		case 4:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
		}
	}
	return Margin{}, false
}
