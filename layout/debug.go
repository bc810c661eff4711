package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ByLCY/duizhao/typeset"
)

// Geometry 是页、段落、行、字形段四级外框，供外部的可检索文本层（hOCR 等）使用。
type Geometry struct {
	Pages []PageGeometry `json:"pages"`
}

// PageGeometry 是一页的外框信息。
type PageGeometry struct {
	Number int             `json:"number"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Blocks []BlockGeometry `json:"blocks"`
}

// BlockGeometry 是一个段落的外框与其中各行。
type BlockGeometry struct {
	Section int            `json:"section"`
	Column  Column         `json:"column"`
	Script  typeset.Script `json:"script"`
	Rect    Rect           `json:"rect"`
	Lines   []LineGeometry `json:"lines"`
}

// LineGeometry 是一行的外框与文本。
type LineGeometry struct {
	Text       string        `json:"text"`
	Rect       Rect          `json:"rect"`
	Baseline   float64       `json:"baseline"`
	FontSize   float64       `json:"fontSize"`
	Justified  bool          `json:"justified,omitempty"`
	Hyphenated bool          `json:"hyphenated,omitempty"`
	Runs       []RunGeometry `json:"runs,omitempty"`
}

// RunGeometry 是行内一个字形段（西文词或单个汉字）的外框。
type RunGeometry struct {
	Text string `json:"text"`
	Rect Rect   `json:"rect"`
}

// Geometry 汇总版面的外框。
func (res *Result) Geometry() Geometry {
	var g Geometry
	for _, page := range res.Pages {
		pg := PageGeometry{Number: page.Number, Width: page.Width, Height: page.Height}
		for _, b := range page.Blocks {
			bg := BlockGeometry{Section: b.Section, Column: b.Column, Script: b.Paragraph.Script, Rect: b.Rect}
			for i, l := range b.Paragraph.Lines {
				lr := b.LineRect(i)
				lg := LineGeometry{
					Text:       l.Text,
					Rect:       lr,
					Baseline:   b.Paragraph.Y + l.Baseline,
					FontSize:   l.FontSize,
					Justified:  l.Justified,
					Hyphenated: l.Hyphenated,
				}
				for _, r := range l.Runs {
					lg.Runs = append(lg.Runs, RunGeometry{
						Text: r.Text,
						Rect: Rect{X: lr.X + r.X, Y: lr.Y, Width: r.Width, Height: lr.Height},
					})
				}
				bg.Lines = append(bg.Lines, lg)
			}
			pg.Blocks = append(pg.Blocks, bg)
		}
		g.Pages = append(g.Pages, pg)
	}
	return g
}

// WriteDebugJSON 将版面外框输出为 JSON，便于调试或生成文本层。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res.Geometry(), "", "  ")
	if err != nil {
		return fmt.Errorf("序列化版面失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Fill 返回版面的填充率：各页已用高度之和除以页数乘内容区高度，取值 [0, 1]。
// 没有页面时返回 1。
func (res *Result) Fill() float64 {
	if res == nil || len(res.Pages) == 0 {
		return 1
	}
	var used, total float64
	for _, page := range res.Pages {
		bottom := page.Content.Y
		for _, b := range page.Blocks {
			if y := b.Rect.Bottom(); y > bottom {
				bottom = y
			}
		}
		used += bottom - page.Content.Y
		total += page.Content.Height
	}
	if total <= 0 {
		return 1
	}
	return min(max(used/total, 0), 1)
}
