package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/typeset"
)

func trace() tracing.Trace {
	return tracing.Select("duizhao.layout")
}

// Composer 负责把一段文本排成段落。*typeset.Composer 满足该接口。
type Composer interface {
	Compose(text string, x, y, maxWidth float64, script typeset.Script) (*typeset.Paragraph, error)
}

// Compositor 把排好的段落按版式放进页面。段落从不跨页拆分。
type Compositor struct {
	opts     Options
	composer Composer
	area     Rect
}

// NewCompositor 校验参数并创建 Compositor。
func NewCompositor(opts Options, composer Composer) (*Compositor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if composer == nil {
		return nil, errs.Configf("compositor", "缺少排版器")
	}
	return &Compositor{opts: opts, composer: composer, area: opts.SafeArea()}, nil
}

// Place 按 Options.Mode 排出全部分节。chinese 与 english 必须等长。
func (c *Compositor) Place(chinese, english []string) (*Result, error) {
	if len(chinese) != len(english) {
		return nil, errs.Configf("compositor", "中英文分节数不一致: %d 与 %d", len(chinese), len(english))
	}
	pc := newPageCollector(c.opts, c.area)
	var err error
	switch c.opts.Mode {
	case Alternating:
		err = c.placeAlternating(pc, chinese, english)
	case SideBySide:
		err = c.placeSideBySide(pc, chinese, english)
	default:
		err = errs.Configf("compositor", "未知版式 %d", uint8(c.opts.Mode))
	}
	if err != nil {
		return nil, err
	}
	pages := pc.pages()
	trace().Infof("placed %d sections on %d pages (%s)", len(chinese), len(pages), c.opts.Mode)
	return &Result{Pages: pages, Options: c.opts}, nil
}

// compose 在块顶 top 处排版，首行基线下移一个字号，字形落在块内。
func (c *Compositor) compose(text string, x, top, width float64, script typeset.Script) (*typeset.Paragraph, error) {
	p, err := c.composer.Compose(text, x, top+c.opts.Size(script), width, script)
	if err != nil {
		return nil, fmt.Errorf("排版%s段落失败: %w", script, err)
	}
	return p, nil
}

func (c *Compositor) placeAlternating(pc *pageCollector, chinese, english []string) error {
	gap := c.opts.LineHeight(typeset.Chinese) * 0.5
	flow := &flowContext{collector: pc, cursorY: pc.contentTop()}
	for i := range chinese {
		items := []struct {
			text   string
			script typeset.Script
		}{
			{chinese[i], typeset.Chinese},
			{english[i], typeset.Latin},
		}
		for _, item := range items {
			if isBlank(item.text) {
				continue
			}
			p, err := c.compose(item.text, c.area.X, flow.cursorY, c.area.Width, item.script)
			if err != nil {
				return err
			}
			if flow.ensureSpace(p.Height) {
				if p, err = c.compose(item.text, c.area.X, flow.cursorY, c.area.Width, item.script); err != nil {
					return err
				}
			}
			flow.place(Block{
				Section:   i,
				Column:    ColumnFull,
				Rect:      Rect{X: c.area.X, Y: flow.cursorY, Width: c.area.Width, Height: p.Height},
				Paragraph: p,
			})
			flow.cursorY += p.Height + gap
		}
		if i < len(chinese)-1 {
			flow.cursorY += 2 * gap
		}
	}
	return nil
}

// row 是左右对照中的一行，空的一侧为 nil。
type row struct {
	zh, en *typeset.Paragraph
	height float64
}

func (c *Compositor) composeRow(zh, en string, top float64) (row, error) {
	colW := c.opts.ColumnWidth()
	var r row
	var err error
	if !isBlank(zh) {
		if r.zh, err = c.compose(zh, c.area.X, top, colW, typeset.Chinese); err != nil {
			return row{}, err
		}
	}
	if !isBlank(en) {
		if r.en, err = c.compose(en, c.area.X+colW+gutter, top, colW, typeset.Latin); err != nil {
			return row{}, err
		}
	}
	if r.zh == nil && r.en == nil {
		return r, nil
	}
	r.height = c.opts.LineHeight(typeset.Chinese)
	if r.zh != nil {
		r.height = math.Max(r.height, r.zh.Height)
	}
	if r.en != nil {
		r.height = math.Max(r.height, r.en.Height)
	}
	return r, nil
}

func (c *Compositor) placeSideBySide(pc *pageCollector, chinese, english []string) error {
	colW := c.opts.ColumnWidth()
	rowGap := math.Max(c.opts.LineHeight(typeset.Chinese)*math.Max(c.opts.ParagraphSpacing, 0.2), 4)
	flow := &flowContext{collector: pc, cursorY: pc.contentTop()}
	for i := range chinese {
		r, err := c.composeRow(chinese[i], english[i], flow.cursorY)
		if err != nil {
			return err
		}
		if r.height == 0 {
			continue
		}
		if flow.ensureSpace(r.height) {
			// 换页后按新位置重新排版整行
			if r, err = c.composeRow(chinese[i], english[i], flow.cursorY); err != nil {
				return err
			}
		}
		if r.zh != nil {
			flow.place(Block{
				Section:   i,
				Column:    ColumnLeft,
				Rect:      Rect{X: c.area.X, Y: flow.cursorY, Width: colW, Height: r.zh.Height},
				Paragraph: r.zh,
			})
		}
		if r.en != nil {
			flow.place(Block{
				Section:   i,
				Column:    ColumnRight,
				Rect:      Rect{X: c.area.X + colW + gutter, Y: flow.cursorY, Width: colW, Height: r.en.Height},
				Paragraph: r.en,
			})
		}
		flow.cursorY += r.height + rowGap
	}
	return nil
}

// pageCollector 依次收集页面。
type pageCollector struct {
	width  float64
	height float64
	margin Margin
	area   Rect
	accs   []*Page
}

func newPageCollector(opts Options, area Rect) *pageCollector {
	pc := &pageCollector{
		width:  opts.PageWidth,
		height: opts.PageHeight,
		margin: opts.Margin,
		area:   area,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *Page {
	p := &Page{
		Number:  len(pc.accs) + 1,
		Width:   pc.width,
		Height:  pc.height,
		Margin:  pc.margin,
		Content: pc.area,
	}
	pc.accs = append(pc.accs, p)
	return p
}

func (pc *pageCollector) curr() *Page {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[len(pc.accs)-1]
}

func (pc *pageCollector) contentTop() float64 { return pc.area.Y }

func (pc *pageCollector) contentBottom() float64 { return pc.area.Bottom() }

// pages 返回收集到的页面。没有任何内容时不产生页面。
func (pc *pageCollector) pages() []Page {
	out := make([]Page, 0, len(pc.accs))
	for _, p := range pc.accs {
		if len(p.Blocks) == 0 {
			continue
		}
		out = append(out, *p)
	}
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

// flowContext 维护当前页内的纵向游标。
type flowContext struct {
	collector *pageCollector
	cursorY   float64
}

// ensureSpace 在当前页放不下 height 时换页，并报告游标是否移动。
// 空页总是从顶部接受内容，超过一整页的段落因此单独占一页。
func (ctx *flowContext) ensureSpace(height float64) bool {
	if ctx.cursorY+height <= ctx.collector.contentBottom() {
		return false
	}
	if len(ctx.collector.curr().Blocks) == 0 {
		if top := ctx.collector.contentTop(); ctx.cursorY != top {
			ctx.cursorY = top
			return true
		}
		if height > ctx.collector.area.Height {
			trace().Infof("paragraph of height %.1f exceeds page content height %.1f; placed alone", height, ctx.collector.area.Height)
		}
		return false
	}
	ctx.pageBreak()
	return true
}

func (ctx *flowContext) pageBreak() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
}

func (ctx *flowContext) place(b Block) {
	p := ctx.collector.curr()
	p.Blocks = append(p.Blocks, b)
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
