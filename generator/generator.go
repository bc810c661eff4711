// Package generator 串起整个流程：校验参数与字体，排版段落，分页，输出 PDF，
// 最后以原子方式写入目标文件。
package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
	"github.com/ByLCY/duizhao/layout"
	pdfrenderer "github.com/ByLCY/duizhao/renderer/pdf"
	"github.com/ByLCY/duizhao/typeset"
)

func trace() tracing.Trace {
	return tracing.Select("duizhao.generator")
}

// FontContext 是一次生成所需的字体与版式选项。
type FontContext struct {
	Chinese *fonts.Face
	Latin   *fonts.Face
	Options layout.Options
}

// NewFontContext 使用默认选项创建 FontContext。
func NewFontContext(chinese, latin *fonts.Face) FontContext {
	return FontContext{Chinese: chinese, Latin: latin, Options: layout.DefaultOptions()}
}

// Clone 复制选项，字体程序字节在副本之间共享。
func (fc FontContext) Clone() FontContext {
	out := fc
	if fc.Chinese != nil {
		face := *fc.Chinese
		out.Chinese = &face
	}
	if fc.Latin != nil {
		face := *fc.Latin
		out.Latin = &face
	}
	return out
}

// check 校验字体是否齐备。
func (fc FontContext) check() error {
	if err := fc.Chinese.Check("中文"); err != nil {
		return err
	}
	return fc.Latin.Check("英文")
}

// place 为本次调用创建度量缓存与排版器，排出全部分节。
func (fc FontContext) place(chinese, english []string) (*layout.Result, error) {
	composer := typeset.NewComposer(
		typeset.Setting{Metrics: fonts.NewMemo(fc.Chinese.Metrics), Style: fc.Options.Style(typeset.Chinese)},
		typeset.Setting{Metrics: fonts.NewMemo(fc.Latin.Metrics), Style: fc.Options.Style(typeset.Latin)},
	)
	compositor, err := layout.NewCompositor(fc.Options, composer)
	if err != nil {
		return nil, err
	}
	return compositor.Place(chinese, english)
}

// Layout 校验参数并排版，不输出文件。
func Layout(chinese, english []string, fc FontContext) (*layout.Result, error) {
	if len(chinese) != len(english) {
		return nil, errs.Configf("generate", "中英文分节数不一致: %d 与 %d", len(chinese), len(english))
	}
	if err := fc.Options.Validate(); err != nil {
		return nil, err
	}
	if err := fc.check(); err != nil {
		return nil, err
	}
	return fc.place(chinese, english)
}

// Generate 排版并把 PDF 写到 outPath。任何一步失败都不会留下输出文件。
func Generate(chinese, english []string, fc FontContext, outPath string) (*layout.Result, error) {
	return GenerateWithMeta(chinese, english, fc, outPath, layout.DocumentMeta{})
}

// GenerateWithMeta 同 Generate，并把 meta 写入文档信息字典。
func GenerateWithMeta(chinese, english []string, fc FontContext, outPath string, meta layout.DocumentMeta) (*layout.Result, error) {
	if outPath == "" {
		return nil, errs.Configf("generate", "缺少输出路径")
	}
	res, err := Layout(chinese, english, fc)
	if err != nil {
		return nil, err
	}
	res.Meta = meta

	emitter, err := pdfrenderer.NewEmitter(fc.Chinese, fc.Latin)
	if err != nil {
		return nil, err
	}
	data, err := emitter.Render(res)
	if err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	if err := WriteFileAtomic(outPath, data); err != nil {
		return nil, err
	}
	trace().Infof("wrote %s (%d pages)", outPath, len(res.Pages))
	return res, nil
}

// WriteFileAtomic 先写入同目录下的临时文件并同步到磁盘，再改名为目标文件。
// 失败时删除临时文件，目标文件保持原样。
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("创建临时文件失败: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("写入临时文件失败: %w", err))
	}
	if err = tmp.Sync(); err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("同步文件失败: %w", err))
	}
	if err = tmp.Close(); err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("关闭临时文件失败: %w", err))
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("设置文件权限失败: %w", err))
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errs.E(errs.Resource, "write", fmt.Errorf("写入 %s 失败: %w", path, err))
	}
	return nil
}
