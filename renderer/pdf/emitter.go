// Package pdfrenderer 把排版结果写成可印刷的 PDF。
//
// 中文使用 Type0/CIDFontType2 复合字体（Identity-H 编码，码位即 CID），
// 英文使用非嵌入的 Type1 Times-Roman（WinAnsi 编码）。对象图保存在
// seehuhn.de/go/pdf 的 *pdf.Data 中，最后一次性序列化。
package pdfrenderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"seehuhn.de/go/pdf"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/layout"
	"github.com/ByLCY/duizhao/renderer"
	"github.com/ByLCY/duizhao/typeset"
)

func trace() tracing.Trace {
	return tracing.Select("duizhao.pdf")
}

const (
	// Producer 与 Creator 写入文档信息字典。
	Producer = "CBETA Bilingual PDF Creator"
	Creator  = "CBETA Project"
)

// 页面资源中的字体名。
const (
	chineseResource pdf.Name = "F1"
	latinResource   pdf.Name = "F2"
)

// Emitter 把 layout.Result 输出为 PDF。每次 Render 构建独立的对象图。
type Emitter struct {
	faces [2]*fonts.Face
}

var _ renderer.Renderer = (*Emitter)(nil)

// NewEmitter 创建输出器。两个字体都必须带有度量。
func NewEmitter(chinese, latin *fonts.Face) (*Emitter, error) {
	if err := chinese.Check("中文"); err != nil {
		return nil, err
	}
	if err := latin.Check("英文"); err != nil {
		return nil, err
	}
	return &Emitter{faces: [2]*fonts.Face{typeset.Chinese: chinese, typeset.Latin: latin}}, nil
}

// Render 构建对象图并序列化为 PDF 字节。
func (e *Emitter) Render(result *layout.Result) ([]byte, error) {
	doc, err := e.build(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("序列化 PDF 失败: %w", err)
	}
	trace().Infof("emitted %d pages, %d bytes", len(result.Pages), buf.Len())
	return buf.Bytes(), nil
}

// document 是一次输出过程中的对象图与字体引用。
type document struct {
	data     *pdf.Data
	pages    pdf.Reference
	resource pdf.Dict
	opts     layout.Options
	faces    [2]*fonts.Face
}

func (e *Emitter) build(result *layout.Result) (*pdf.Data, error) {
	if result == nil {
		return nil, errs.Configf("emit", "排版结果为空")
	}
	doc := &document{
		data:  pdf.NewData(pdf.V1_7),
		opts:  result.Options,
		faces: e.faces,
	}
	doc.pages = doc.data.Alloc()
	if err := doc.data.Put(doc.pages, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  pdf.Array{},
		"Count": pdf.Integer(0),
	}); err != nil {
		return nil, err
	}
	meta := doc.data.GetMeta()
	meta.Catalog.Pages = doc.pages
	meta.Info = documentInfo(result.Meta)

	if err := doc.addFonts(usedRunes(result)); err != nil {
		return nil, err
	}
	for _, page := range result.Pages {
		if err := doc.addPage(page); err != nil {
			return nil, fmt.Errorf("输出第 %d 页失败: %w", page.Number, err)
		}
	}
	return doc.data, nil
}

// documentInfo 生成信息字典。稿件未写 creator 时使用 Creator。
func documentInfo(meta layout.DocumentMeta) *pdf.Info {
	creator := meta.Creator
	if creator == "" {
		creator = Creator
	}
	return &pdf.Info{
		Title:    pdf.TextString(meta.Title),
		Author:   pdf.TextString(meta.Author),
		Subject:  pdf.TextString(meta.Subject),
		Keywords: pdf.TextString(strings.Join(meta.Keywords, ", ")),
		Creator:  pdf.TextString(creator),
		Producer: Producer,
	}
}

func (doc *document) addPage(page layout.Page) error {
	content, err := doc.contentStream(page)
	if err != nil {
		return err
	}
	contentRef := doc.data.Alloc()
	if err := doc.writeStream(contentRef, nil, content); err != nil {
		return err
	}

	pageRef := doc.data.Alloc()
	err = doc.data.Put(pageRef, pdf.Dict{
		"Type":   pdf.Name("Page"),
		"Parent": doc.pages,
		"MediaBox": pdf.Array{
			pdf.Integer(0), pdf.Integer(0),
			pdf.Real(page.Width), pdf.Real(page.Height),
		},
		"Resources": pdf.Dict{"Font": doc.resource},
		"Contents":  contentRef,
	})
	if err != nil {
		return err
	}
	return doc.appendPage(pageRef)
}

// appendPage 先读出页树当前的 Kids，追加后把 Count 设为新长度。
func (doc *document) appendPage(pageRef pdf.Reference) error {
	obj, err := doc.data.Get(doc.pages, false)
	if err != nil {
		return err
	}
	tree, ok := obj.(pdf.Dict)
	if !ok {
		return errs.Formatf("emit", "页树节点不是字典: %T", obj)
	}
	var kids pdf.Array
	if raw, present := tree["Kids"]; present && raw != nil {
		kids, ok = raw.(pdf.Array)
		if !ok {
			return errs.Formatf("emit", "页树 Kids 不是数组: %T", raw)
		}
	}
	kids = append(kids, pageRef)
	tree["Kids"] = kids
	tree["Count"] = pdf.Integer(len(kids))
	return doc.data.Put(doc.pages, tree)
}

// usedRunes 收集中文段落用到的码位，用于生成 W 数组。
func usedRunes(result *layout.Result) map[rune]bool {
	used := map[rune]bool{}
	for _, page := range result.Pages {
		for _, b := range page.Blocks {
			if b.Paragraph == nil || b.Paragraph.Script != typeset.Chinese {
				continue
			}
			for _, l := range b.Paragraph.Lines {
				for _, r := range l.Text {
					used[r] = true
				}
			}
		}
	}
	return used
}
