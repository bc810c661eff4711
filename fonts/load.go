package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/duizhao/errs"
)

func trace() tracing.Trace {
	return tracing.Select("duizhao.fonts")
}

// Load 从磁盘读取字体文件并构造 Face。读取或解析失败均视为资源错误。
// 魔数无法识别格式时按扩展名兜底，例如 "fonts/SourceHanSansTC-Regular.ttf"。
func Load(path string) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.E(errs.Resource, "fonts", fmt.Errorf("读取字体 %s 失败: %w", path, err))
	}
	face, err := LoadFace("", data)
	if err != nil {
		return nil, errs.E(errs.Resource, "fonts", fmt.Errorf("字体 %s: %w", path, err))
	}
	if face.Format == FormatUnknown {
		face.Format = FormatFromPath(path)
	}
	if face.Name == "" {
		face.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return face, nil
}
