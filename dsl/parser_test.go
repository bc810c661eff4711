package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/duizhao/dsl"
)

const sampleDSL = "\n" + `doc Sutra v1 {
  meta {
    title: "金刚经"
    keywords: [
      "sutra"
      "bilingual"
    ]
  }

  fonts {
    zh: "fonts/NotoSansSC-Regular.ttf"
    en: "fonts/Times.ttf"
  }

  options {
    page A4 landscape margin 20mm 15mm
    zh-size: 13pt
    line-spacing: 1.4
    mode: side-by-side
    en-tracking: -20
  }

  section {
    zh: "如是我闻。一时，佛在舍卫国。"
    en: ` + "`Thus have I heard. At one time the Buddha was in \"Sravasti\".`" + `
  }

  section {
    zh: ""
    en: "Only English here."
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if doc.Name != "Sutra" || doc.Version != "v1" {
		t.Fatalf("文档头不符: %s %s", doc.Name, doc.Version)
	}
	kinds := make([]string, len(doc.Blocks))
	for i, b := range doc.Blocks {
		kinds[i] = b.Kind()
	}
	if got := strings.Join(kinds, ","); got != "meta,fonts,options,section,section" {
		t.Fatalf("块类型不符: %s", got)
	}

	meta := doc.Blocks[0].Meta
	if title, ok := meta.Get("title"); !ok || title.Text() != "金刚经" {
		t.Fatalf("标题解析错误: %+v", meta.Assignments[0])
	}
	if kw, _ := meta.Get("keywords"); strings.Join(kw.Strings(), ",") != "sutra,bilingual" {
		t.Fatalf("关键词数组解析错误: %q", kw.Strings())
	}

	if zh, _ := doc.Blocks[1].Fonts.Get("zh"); zh.Text() != "fonts/NotoSansSC-Regular.ttf" {
		t.Fatalf("中文字体路径错误: %s", zh.Text())
	}

	items := doc.Blocks[2].Options.Items
	if len(items) != 5 {
		t.Fatalf("期望 5 个选项，实际 %d", len(items))
	}
	if items[0].Page == nil || strings.Join(items[0].Page.Args, " ") != "A4 landscape margin 20mm 15mm" {
		t.Fatalf("page 命令解析错误: %+v", items[0])
	}
	size := items[1].Assign
	if size == nil || size.Key != "zh-size" || size.Value.Number == nil || *size.Value.Number != "13pt" {
		t.Fatalf("字号解析错误: %+v", items[1])
	}
	if mode := items[3].Assign; mode.Value.Word == nil || *mode.Value.Word != "side-by-side" {
		t.Fatalf("模式解析错误: %+v", mode.Value)
	}
	if tr := items[4].Assign; tr.Key != "en-tracking" || tr.Value.Text() != "-20" {
		t.Fatalf("负数解析错误: %+v", tr.Value)
	}

	first := doc.Blocks[3].Section
	if en, _ := first.Get("en"); en.Text() != `Thus have I heard. At one time the Buddha was in "Sravasti".` {
		t.Fatalf("反引号字符串应原样保留，实际 %q", en.Text())
	}
	if zh, ok := doc.Blocks[4].Section.Get("zh"); !ok || zh.Text() != "" {
		t.Fatalf("空字符串解析错误: %q", zh.Text())
	}
}

func TestParseInlineSeparators(t *testing.T) {
	src := "doc X v1 {\n  options { page A5 margin 10mm; zh-size: 12pt }\n  meta { keywords: [\"a\", \"b\",] }\n}\n"
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if n := len(doc.Blocks[0].Options.Items); n != 2 {
		t.Fatalf("分号分隔的选项应有 2 个，实际 %d", n)
	}
	if kw, _ := doc.Blocks[1].Meta.Get("keywords"); len(kw.Strings()) != 2 {
		t.Fatalf("逗号分隔数组解析错误: %q", kw.Strings())
	}
}

func TestParseRejectsUnknownBlock(t *testing.T) {
	if _, err := dsl.ParseString("doc X v1 {\n  page A4 {\n  }\n}\n"); err == nil {
		t.Fatalf("未知块应解析失败")
	}
	if _, err := dsl.ParseString("doc X v1 {\n  section {\n    \"bare text\"\n  }\n}\n"); err == nil {
		t.Fatalf("分节中只允许赋值")
	}
}
