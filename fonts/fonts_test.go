package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/duizhao/errs"
)

func TestLoadFaceFromGoRegular(t *testing.T) {
	face, err := LoadFace("", goregular.TTF)
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	if face.Format != FormatTrueType {
		t.Fatalf("期望 truetype 格式，实际 %s", face.Format)
	}
	if !face.Embeddable() {
		t.Fatalf("TrueType 字体应可嵌入")
	}
	if face.Name == "" {
		t.Fatalf("应从 name 表读取字体名")
	}
	if err := face.Check("英文"); err != nil {
		t.Fatalf("字体检查失败: %v", err)
	}

	m := face.Metrics
	w := m.AdvanceWidth('m', 12)
	if w <= 0 || w > 12 {
		t.Fatalf("m 的前进宽度不合理: %g", w)
	}
	// 前进宽度随字号线性缩放
	if w2 := m.AdvanceWidth('m', 24); w2 < 2*w-1e-9 || w2 > 2*w+1e-9 {
		t.Fatalf("宽度未按字号线性缩放: 12pt=%g 24pt=%g", w, w2)
	}
	if m.GlyphIndex('A') == 0 {
		t.Fatalf("A 应能找到字形")
	}
	if m.GlyphIndex('中') != 0 {
		t.Fatalf("Go 字体不含汉字，应映射到 0 号字形")
	}
}

// TestKernMatchesKernTable 用 x/image 独立读取 kern 表，核对字偶距的数值与符号。
func TestKernMatchesKernTable(t *testing.T) {
	face, err := LoadFace("Go Regular", goregular.TTF)
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	f, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("解析字体失败: %v", err)
	}
	upem := face.Metrics.UnitsPerEm()
	var buf sfnt.Buffer
	for _, pair := range []string{"AV", "To", "LT", "oo"} {
		l, r := rune(pair[0]), rune(pair[1])
		gl, _ := f.GlyphIndex(&buf, l)
		gr, _ := f.GlyphIndex(&buf, r)
		want := 0.0
		// ppem 取 unitsPerEm 时结果就是字体单位
		if k, err := f.Kern(&buf, gl, gr, fixed.I(upem), font.HintingNone); err == nil {
			want = float64(k) / 64 * 12 / float64(upem)
		}
		got, ok := face.Metrics.Kern(l, r, 12)
		if ok != (want != 0) {
			t.Fatalf("%s: 是否有字偶距不一致: got %g (%v), want %g", pair, got, ok, want)
		}
		if d := got - want; d < -1e-6 || d > 1e-6 {
			t.Fatalf("%s: 字偶距 %g，kern 表为 %g", pair, got, want)
		}
	}
}

func TestInspectGoRegular(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatalf("读取字体信息失败: %v", err)
	}
	if info.PostScriptName == "" {
		t.Fatalf("缺少 PostScript 名称")
	}
	if info.Ascent <= 0 || info.Descent >= 0 {
		t.Fatalf("上升/下降值方向错误: ascent=%d descent=%d", info.Ascent, info.Descent)
	}
	if info.BBox[2] <= info.BBox[0] || info.BBox[3] <= info.BBox[1] {
		t.Fatalf("包围盒非法: %v", info.BBox)
	}
}

func TestInspectGarbageFallsBack(t *testing.T) {
	info, err := Inspect([]byte("not a font at all"))
	if err == nil {
		t.Fatalf("非法字体应返回错误")
	}
	if info != DefaultInfo {
		t.Fatalf("失败时应返回默认描述值，实际 %+v", info)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		head []byte
		want Format
	}{
		{[]byte("ttcf\x00\x01"), FormatCollection},
		{[]byte("OTTO\x00"), FormatOpenType},
		{[]byte{0, 1, 0, 0, 0}, FormatTrueType},
		{[]byte("true"), FormatTrueType},
		{[]byte("wOFF"), FormatUnknown},
		{[]byte("tt"), FormatUnknown},
	}
	for _, c := range cases {
		if got := DetectFormat(c.head); got != c.want {
			t.Fatalf("DetectFormat(%q) = %s, 期望 %s", c.head, got, c.want)
		}
	}
	if FormatFromPath("a/b/SimSun.TTC") != FormatCollection {
		t.Fatalf("扩展名 .TTC 应识别为集合")
	}
}

func TestLoadMissingFileIsResourceError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ttf"))
	if !errors.Is(err, errs.ErrResource) {
		t.Fatalf("缺失字体应为资源错误，实际 %v", err)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("写入临时字体失败: %v", err)
	}
	face, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if !face.Embeddable() {
		t.Fatalf("磁盘上的 ttf 应可嵌入")
	}
}

type countingMetrics struct {
	advanceCalls int
	kernCalls    int
}

func (c *countingMetrics) AdvanceWidth(r rune, size float64) float64 {
	c.advanceCalls++
	return size / 2
}

func (c *countingMetrics) Kern(left, right rune, size float64) (float64, bool) {
	c.kernCalls++
	return 0, false
}

func (c *countingMetrics) GlyphIndex(r rune) uint16 { return uint16(r) }
func (c *countingMetrics) UnitsPerEm() int          { return 1000 }

func TestMemoCachesPerRuneAndSize(t *testing.T) {
	inner := &countingMetrics{}
	memo := NewMemo(inner)
	for i := 0; i < 5; i++ {
		memo.AdvanceWidth('a', 12)
		memo.Kern('a', 'v', 12)
	}
	memo.AdvanceWidth('a', 13)
	if inner.advanceCalls != 2 {
		t.Fatalf("同一码位同一字号只应查询一次，实际调用 %d 次", inner.advanceCalls)
	}
	if inner.kernCalls != 1 {
		t.Fatalf("字偶距应被缓存，实际调用 %d 次", inner.kernCalls)
	}
	if memo.Len() != 2 {
		t.Fatalf("缓存条目数期望 2，实际 %d", memo.Len())
	}
	// 两个 Memo 互不共享
	other := NewMemo(inner)
	other.AdvanceWidth('a', 12)
	if inner.advanceCalls != 3 {
		t.Fatalf("新的 Memo 不应复用旧缓存")
	}
}

func TestCheckRejectsMissingMetrics(t *testing.T) {
	var nilFace *Face
	if err := nilFace.Check("中文"); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("空字体应为资源错误: %v", err)
	}
	if err := (&Face{Name: "x"}).Check("中文"); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("无度量字体应为资源错误: %v", err)
	}
}
