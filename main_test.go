package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/duizhao/dsl"
	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/layout"
)

func TestLoadFaceMissingPathIsResourceError(t *testing.T) {
	if _, err := loadFace("", "中文"); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("未指定字体应返回资源错误，实际 %v", err)
	}
	if _, err := loadFace(filepath.Join(t.TempDir(), "none.ttf"), "英文"); !errors.Is(err, errs.ErrResource) {
		t.Fatalf("字体文件不存在应返回资源错误，实际 %v", err)
	}
}

func TestPickPrefersFlagThenManuscriptDir(t *testing.T) {
	if got := pick("/a/zh.ttf", "b.ttf", "/doc"); got != "/a/zh.ttf" {
		t.Fatalf("命令行路径应优先，实际 %s", got)
	}
	if got := pick("", "fonts/b.ttf", "/doc"); got != filepath.Join("/doc", "fonts/b.ttf") {
		t.Fatalf("稿件路径应相对稿件目录，实际 %s", got)
	}
	if got := pick("", "", "/doc"); got != "" {
		t.Fatalf("都未指定时应为空，实际 %s", got)
	}
}

func TestSampleManuscriptNeedsFontFlags(t *testing.T) {
	f, err := os.Open("examples/heart-sutra.dz")
	if err != nil {
		t.Fatalf("打开示例稿件失败: %v", err)
	}
	defer f.Close()
	doc, err := dsl.Parse(f)
	if err != nil {
		t.Fatalf("解析示例稿件失败: %v", err)
	}
	ms, err := layout.FromDocument(doc)
	if err != nil {
		t.Fatalf("读取示例稿件失败: %v", err)
	}
	if len(ms.Chinese) != 2 || len(ms.English) != 2 {
		t.Fatalf("示例稿件应有 2 节，实际 %d/%d", len(ms.Chinese), len(ms.English))
	}
	// 仓库不附带字体，示例不应指向不存在的文件
	if ms.ChineseFont != "" || ms.LatinFont != "" {
		t.Fatalf("示例稿件不应写死字体路径: %q %q", ms.ChineseFont, ms.LatinFont)
	}
	err = run(config{input: "examples/heart-sutra.dz", output: filepath.Join(t.TempDir(), "out.pdf")})
	if !errors.Is(err, errs.ErrResource) {
		t.Fatalf("缺少字体参数时应返回资源错误，实际 %v", err)
	}
}
