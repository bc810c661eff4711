package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/duizhao/binding"
	"github.com/ByLCY/duizhao/dsl"
	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/generator"
	"github.com/ByLCY/duizhao/layout"
	canvasrenderer "github.com/ByLCY/duizhao/renderer/canvas"
)

// config 汇总命令行参数。
type config struct {
	input    string
	output   string
	zhFont   string
	enFont   string
	mode     string
	debug    string
	proof    string
	dataJSON string
	autoFit  bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/heart-sutra.dz", "稿件文件路径")
	flag.StringVar(&cfg.output, "out", "output/heart-sutra.pdf", "PDF 输出路径")
	flag.StringVar(&cfg.zhFont, "zh-font", "", "中文字体文件，覆盖稿件 fonts 中的设置")
	flag.StringVar(&cfg.enFont, "en-font", "", "英文度量字体文件，覆盖稿件 fonts 中的设置")
	flag.StringVar(&cfg.mode, "layout", "", "版式：alternating 或 side-by-side，覆盖稿件设置")
	flag.StringVar(&cfg.debug, "debug", "", "版面外框 JSON 输出路径")
	flag.StringVar(&cfg.proof, "proof", "", "校样 PDF 输出路径（带段落框）")
	flag.StringVar(&cfg.dataJSON, "data", "", "代入稿件 ${...} 占位符的 JSON 数据")
	flag.BoolVar(&cfg.autoFit, "auto-fit", false, "自动选择字号使版面填充率接近目标")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", cfg.output)
}

// run 串联解析、排版与输出。
func run(cfg config) error {
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开稿件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析稿件失败: %w", err)
	}
	ms, err := layout.FromDocument(doc)
	if err != nil {
		return fmt.Errorf("读取稿件失败: %w", err)
	}
	if err := bindData(ms, cfg.dataJSON); err != nil {
		return err
	}
	if cfg.mode != "" {
		if ms.Options.Mode, err = layout.ParseMode(cfg.mode); err != nil {
			return err
		}
	}

	base := filepath.Dir(cfg.input)
	zh, err := loadFace(pick(cfg.zhFont, ms.ChineseFont, base), "中文")
	if err != nil {
		return err
	}
	en, err := loadFace(pick(cfg.enFont, ms.LatinFont, base), "英文")
	if err != nil {
		return err
	}
	fc := generator.FontContext{Chinese: zh, Latin: en, Options: ms.Options}

	if cfg.autoFit {
		var fit generator.FitResult
		fc, fit, err = generator.AutoFit(ms.Chinese, ms.English, fc, generator.DefaultFitConfig())
		if err != nil {
			return fmt.Errorf("自动字号失败: %w", err)
		}
		fmt.Printf("自动字号：中文 %.1fpt，英文 %.1fpt，填充率 %.0f%%\n", fit.ChineseSize, fit.LatinSize, fit.Fill*100)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	result, err := generator.GenerateWithMeta(ms.Chinese, ms.English, fc, cfg.output, ms.Meta)
	if err != nil {
		return err
	}

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}
	if cfg.proof != "" && len(result.Pages) > 0 {
		data, err := canvasrenderer.NewRenderer(zh, en).Render(result)
		if err != nil {
			return fmt.Errorf("渲染校样失败: %w", err)
		}
		if err := generator.WriteFileAtomic(cfg.proof, data); err != nil {
			return err
		}
	}
	return nil
}

// bindData 把 -data 中的 JSON 代入各节文本与标题。
func bindData(ms *layout.Manuscript, raw string) error {
	if raw == "" {
		return nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	var err error
	if ms.Meta.Title, err = binding.Interpolate(ms.Meta.Title, data); err != nil {
		return err
	}
	if ms.Chinese, err = binding.InterpolateAll(ms.Chinese, data); err != nil {
		return err
	}
	ms.English, err = binding.InterpolateAll(ms.English, data)
	return err
}

// pick 优先使用命令行给出的路径，否则使用稿件中相对于稿件目录的路径。
func pick(flagPath, manuscriptPath, base string) string {
	if flagPath != "" {
		return flagPath
	}
	if manuscriptPath == "" || filepath.IsAbs(manuscriptPath) {
		return manuscriptPath
	}
	return filepath.Join(base, manuscriptPath)
}

func loadFace(path, script string) (*fonts.Face, error) {
	if path == "" {
		return nil, errs.Resourcef("main", "缺少%s字体，请在稿件 fonts 中设置或使用 -zh-font / -en-font", script)
	}
	return fonts.Load(path)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
