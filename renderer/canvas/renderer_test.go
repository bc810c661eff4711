package canvasrenderer

import (
	"bytes"
	"errors"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/layout"
	"github.com/ByLCY/duizhao/typeset"
)

func goFace(t *testing.T) *fonts.Face {
	t.Helper()
	face, err := fonts.LoadFace("Go", goregular.TTF)
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	return face
}

func buildResult(t *testing.T, face *fonts.Face, sections int) *layout.Result {
	t.Helper()
	opts := layout.DefaultOptions()
	composer := typeset.NewComposer(
		typeset.Setting{Metrics: face.Metrics, Style: opts.Style(typeset.Chinese)},
		typeset.Setting{Metrics: face.Metrics, Style: opts.Style(typeset.Latin)},
	)
	c, err := layout.NewCompositor(opts, composer)
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	zh := make([]string, sections)
	en := make([]string, sections)
	for i := range zh {
		zh[i] = "ABC DEF GHI"
		en[i] = "The quick brown fox jumps over the lazy dog again and again."
	}
	res, err := c.Place(zh, en)
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	res.Meta = layout.DocumentMeta{Title: "校样", Keywords: []string{"proof"}}
	return res
}

func TestRenderProducesReadablePDF(t *testing.T) {
	face := goFace(t)
	res := buildResult(t, face, 60)
	if len(res.Pages) < 2 {
		t.Fatalf("期望多页版面，实际 %d 页", len(res.Pages))
	}

	r := NewRenderer(face, face)
	r.LineBoxes = true
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("输出不是 PDF")
	}

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("读取校样失败: %v", err)
	}
	if got := reader.NumPage(); got != len(res.Pages) {
		t.Fatalf("页数不符: 期望 %d，实际 %d", len(res.Pages), got)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(nil, nil)
	if _, err := r.Render(nil); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("nil 结果应返回配置错误，实际 %v", err)
	}
	if _, err := r.Render(&layout.Result{}); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("无页面的结果应返回配置错误，实际 %v", err)
	}
}

func TestRenderMissingFaceIsResourceError(t *testing.T) {
	face := goFace(t)
	res := buildResult(t, face, 1)
	r := NewRenderer(nil, face)
	if _, err := r.Render(res); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("缺少中文字体应返回资源错误，实际 %v", err)
	}
}

func TestFontFamilyIsCached(t *testing.T) {
	face := goFace(t)
	r := NewRenderer(face, face)
	a, err := r.ensureFontFamily(typeset.Latin)
	if err != nil {
		t.Fatalf("加载字体族失败: %v", err)
	}
	b, err := r.ensureFontFamily(typeset.Latin)
	if err != nil {
		t.Fatalf("加载字体族失败: %v", err)
	}
	if a != b {
		t.Fatalf("同一文种的字体族应被缓存")
	}
}
