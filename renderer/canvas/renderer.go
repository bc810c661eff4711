// Package canvasrenderer 用 tdewolff/canvas 输出校样 PDF：按排版坐标绘制各行文字，
// 并描出内容区、段落框与行框，用于目测检查版面几何。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/layout"
	"github.com/ByLCY/duizhao/renderer"
	"github.com/ByLCY/duizhao/typeset"
)

const boxStrokeWidth = 0.1 // mm

var (
	contentColor   = canvas.Hex("#c8c8c8")
	paragraphColor = canvas.Hex("#0f62fe")
	lineColor      = canvas.Hex("#ff832b")
	textColor      = canvas.RGBA(30.0/255, 30.0/255, 30.0/255, 1)
)

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	faces [2]*fonts.Face

	// LineBoxes 为真时额外描出每一行的外框。
	LineBoxes bool

	fontMu       sync.Mutex
	fontFamilies map[typeset.Script]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a proof renderer drawing with the given faces.
func NewRenderer(chinese, latin *fonts.Face) *Renderer {
	return &Renderer{
		faces:        [2]*fonts.Face{typeset.Chinese: chinese, typeset.Latin: latin},
		fontFamilies: map[typeset.Script]*canvas.FontFamily{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, errs.Configf("proof", "渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, errs.Configf("proof", "缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入校样 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	r.strokeRect(ctx, page.Content, contentColor)
	for _, b := range page.Blocks {
		r.strokeRect(ctx, b.Rect, paragraphColor)
		if err := r.drawBlock(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawBlock(ctx *canvas.Context, b layout.Block) error {
	p := b.Paragraph
	face, err := r.fontFace(p.Script, p.FontSize)
	if err != nil {
		return err
	}
	for i, line := range p.Lines {
		if r.LineBoxes {
			r.strokeRect(ctx, b.LineRect(i), lineColor)
		}
		text := strings.TrimRight(line.Text, " ")
		if text == "" {
			continue
		}
		textLine := canvas.NewTextLine(face, text, canvas.Left)
		// 基线位置：段落原点加行内基线
		ctx.DrawText(toMm(p.X+line.X), toMm(p.Y+line.Baseline), textLine)
	}
	return nil
}

func (r *Renderer) strokeRect(ctx *canvas.Context, rc layout.Rect, col color.Color) {
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(boxStrokeWidth)
	ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
}

func (r *Renderer) fontFace(script typeset.Script, size float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(script)
	if err != nil {
		return nil, err
	}
	return family.Face(size, textColor, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(script typeset.Script) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[script]; ok {
		return family, nil
	}
	if !script.Valid() {
		return nil, errs.Configf("proof", "未知文种 %s", script)
	}
	face := r.faces[script]
	if face == nil || len(face.Program) == 0 {
		return nil, errs.Resourcef("proof", "缺少%s字体", script)
	}
	family := canvas.NewFontFamily(script.String())
	if err := family.LoadFont(face.Program, 0, canvas.FontRegular); err != nil {
		return nil, errs.E(errs.Resource, "proof", fmt.Errorf("加载字体 %s 失败: %w", face.Name, err))
	}
	r.fontFamilies[script] = family
	return family, nil
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
