package generator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/layout"
	"github.com/ByLCY/duizhao/typeset"
)

func testContext(t *testing.T) FontContext {
	t.Helper()
	face, err := fonts.LoadFace("Go Regular", goregular.TTF)
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	return NewFontContext(face, face)
}

func TestScenarioAlternatingSinglePage(t *testing.T) {
	fc := testContext(t)
	out := filepath.Join(t.TempDir(), "a.pdf")
	res, err := Generate([]string{"如是我聞。"}, []string{"Thus have I heard."}, fc, out)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("期望 1 页，实际 %d", len(res.Pages))
	}
	blocks := res.Pages[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("期望 2 个段落，实际 %d", len(blocks))
	}
	zh, en := blocks[0], blocks[1]
	if zh.Paragraph.Script != typeset.Chinese || en.Paragraph.Script != typeset.Latin {
		t.Fatalf("段落顺序应为中文在前、英文在后")
	}
	if gap := en.Rect.Y - zh.Rect.Bottom(); gap <= 0 {
		t.Fatalf("中英文段落之间应有段间距，实际 %g", gap)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("输出不是有效 PDF: %v", err)
	}
	if r.NumPage() != 1 {
		t.Fatalf("PDF 应只有 1 页，实际 %d", r.NumPage())
	}
}

// halfEm 让西文字符宽半个字号、汉字宽一个字号，行数因此可以手算。
type halfEm struct{}

func (halfEm) AdvanceWidth(r rune, size float64) float64 {
	if r < 0x2000 {
		return size / 2
	}
	return size
}

func (halfEm) Kern(_, _ rune, _ float64) (float64, bool) { return 0, false }

func (halfEm) GlyphIndex(rune) uint16 { return 1 }

func (halfEm) UnitsPerEm() int { return 1000 }

func TestScenarioAlternatingFourLinesInOrder(t *testing.T) {
	face := &fonts.Face{Name: "Go Regular", Program: goregular.TTF, Format: fonts.FormatTrueType, Metrics: halfEm{}}
	fc := NewFontContext(face, face)
	// 内容区宽 431pt：40 个汉字排成 32 + 8 两行；20 个 sutra 排成 11 + 9 两行
	zh := strings.Repeat("經", 40)
	en := strings.TrimSpace(strings.Repeat("sutra ", 20))
	out := filepath.Join(t.TempDir(), "a4.pdf")
	res, err := Generate([]string{zh}, []string{en}, fc, out)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("期望 1 页，实际 %d", len(res.Pages))
	}
	var scripts []string
	prev := -1.0
	for _, b := range res.Pages[0].Blocks {
		for _, l := range b.Paragraph.Lines {
			baseline := b.Paragraph.Y + l.Baseline
			if baseline <= prev {
				t.Fatalf("行基线应自上而下递增: %g <= %g", baseline, prev)
			}
			prev = baseline
			scripts = append(scripts, l.Script.String())
		}
	}
	if got := strings.Join(scripts, ","); got != "chinese,chinese,latin,latin" {
		t.Fatalf("期望中文两行后接英文两行，实际 %s", got)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("应生成 PDF 文件: %v", err)
	}
}

func TestScenarioMismatchedSectionsWritesNothing(t *testing.T) {
	fc := testContext(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "b.pdf")
	_, err := Generate([]string{"一", "二"}, []string{"one", "two", "three"}, fc, out)
	if !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("期望配置错误，实际 %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("出错时不应写入任何文件，实际 %d 个", len(entries))
	}
}

func TestScenarioSideBySideEmptyChinese(t *testing.T) {
	fc := testContext(t)
	fc.Options.Mode = layout.SideBySide
	res, err := Layout([]string{""}, []string{"Only English here."}, fc)
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	if len(res.Pages) != 1 || len(res.Pages[0].Blocks) != 1 {
		t.Fatalf("期望 1 页 1 个段落，实际 %+v", res.Pages)
	}
	b := res.Pages[0].Blocks[0]
	if b.Column != layout.ColumnRight || b.Paragraph.Script != typeset.Latin {
		t.Fatalf("只应有右栏的英文段落，实际 %s/%s", b.Column, b.Paragraph.Script)
	}
	if b.Rect.Height != b.Paragraph.Height {
		t.Fatalf("段落框高度应等于段落高度")
	}
}

func TestInvalidOptionsIsConfigError(t *testing.T) {
	fc := testContext(t)
	fc.Options.PageWidth = -1
	out := filepath.Join(t.TempDir(), "x.pdf")
	if _, err := Generate([]string{"一"}, []string{"one"}, fc, out); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("期望配置错误，实际 %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("出错时不应生成文件")
	}
}

func TestMissingFaceIsResourceError(t *testing.T) {
	fc := testContext(t)
	fc.Latin = nil
	out := filepath.Join(t.TempDir(), "x.pdf")
	if _, err := Generate([]string{"一"}, []string{"one"}, fc, out); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("期望资源错误，实际 %v", err)
	}
}

func TestWriteFileAtomicReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Fatalf("目标文件内容应被替换，实际 %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("不应残留临时文件，实际 %d 个文件", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.pdf")
	if err := WriteFileAtomic(path, []byte("x")); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("期望资源错误，实际 %v", err)
	}
}

func TestAutoFitPicksCandidateInRange(t *testing.T) {
	fc := testContext(t)
	en := make([]string, 20)
	zh := make([]string, 20)
	for i := range en {
		en[i] = "The quick brown fox jumps over the lazy dog while the typesetter measures every line twice."
	}
	fitted, fit, err := AutoFit(zh, en, fc, FitConfig{MinSize: 3, MaxSize: 14, Target: 0.5})
	if err != nil {
		t.Fatalf("自动字号失败: %v", err)
	}
	if fit.ChineseSize < 7 || fit.ChineseSize > 14 {
		t.Fatalf("字号应在 [7, 14] 内，实际 %g", fit.ChineseSize)
	}
	// 有英文时中英文字号相同
	if fit.LatinSize != fit.ChineseSize {
		t.Fatalf("有英文时中英文字号应相同: %g / %g", fit.ChineseSize, fit.LatinSize)
	}
	if fitted.Options.ChineseSize != fit.ChineseSize || fitted.Options.LatinSize != fit.LatinSize {
		t.Fatalf("返回的上下文未设置字号")
	}
	if fc.Options.ChineseSize != layout.DefaultOptions().ChineseSize {
		t.Fatalf("AutoFit 不应修改传入的上下文")
	}
	if fit.Fill <= 0 || fit.Fill > 1 {
		t.Fatalf("填充率应在 (0, 1]，实际 %g", fit.Fill)
	}
}

func TestAutoFitChineseOnlyShrinksLatin(t *testing.T) {
	fc := testContext(t)
	_, fit, err := AutoFit([]string{"一二三"}, []string{""}, fc, FitConfig{MinSize: 7, MaxSize: 7, Target: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if fit.ChineseSize != 7 || fit.LatinSize != 7 {
		t.Fatalf("英文字号不低于 7pt: %g / %g", fit.ChineseSize, fit.LatinSize)
	}
	_, fit, err = AutoFit([]string{"一二三"}, []string{""}, fc, FitConfig{MinSize: 12, MaxSize: 12, Target: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if fit.LatinSize != 11 {
		t.Fatalf("没有英文时英文字号比中文小 1pt，实际 %g", fit.LatinSize)
	}
}

func TestDefaultAndLockedSizes(t *testing.T) {
	if zh, en := DefaultSizes([]string{"hi"}, false); zh != 12 || en != 12 {
		t.Fatalf("有英文时默认 12/12，实际 %g/%g", zh, en)
	}
	if zh, en := DefaultSizes([]string{" "}, false); zh != 13 || en != 11 {
		t.Fatalf("无英文时默认 13/11，实际 %g/%g", zh, en)
	}
	if zh, en := DefaultSizes(nil, true); zh != 11 || en != 11 {
		t.Fatalf("锁定时取较小字号，实际 %g/%g", zh, en)
	}
	locked := LockSizes(testContext(t))
	if locked.Options.ChineseSize != 12 || locked.Options.LatinSize != 12 {
		t.Fatalf("LockSizes 应取 min(13, 12)，实际 %g/%g", locked.Options.ChineseSize, locked.Options.LatinSize)
	}
}

func TestRegistryMoveOutOnRelease(t *testing.T) {
	reg := NewRegistry()
	fc := testContext(t)
	h := reg.Open(fc)
	got, err := reg.Get(h)
	if err != nil {
		t.Fatalf("获取失败: %v", err)
	}
	got.Options.ChineseSize = 99
	again, _ := reg.Get(h)
	if again.Options.ChineseSize == 99 {
		t.Fatalf("Get 应返回副本")
	}
	if _, err := reg.Release(h); err != nil {
		t.Fatalf("释放失败: %v", err)
	}
	if _, err := reg.Release(h); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("重复释放应返回配置错误，实际 %v", err)
	}
	if _, err := reg.Get(h); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("使用已释放句柄应返回配置错误，实际 %v", err)
	}
	if _, err := reg.Get(0); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("零句柄无效")
	}
}

func TestRegistryConcurrentOpenRelease(t *testing.T) {
	reg := NewRegistry()
	fc := testContext(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := reg.Open(fc)
			if _, err := reg.Release(h); err != nil {
				t.Errorf("释放失败: %v", err)
			}
		}()
	}
	wg.Wait()
	if reg.Len() != 0 {
		t.Fatalf("全部释放后应为空，实际 %d", reg.Len())
	}
}
