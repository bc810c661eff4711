package generator

import (
	"math"
	"strings"

	"github.com/ByLCY/duizhao/errs"
)

// 自动字号的取值范围。
const (
	minFitSize   = 7
	minFitTarget = 0.60
	maxFitTarget = 0.98
	fitSteps     = 30
)

// FitConfig 控制自动字号搜索。
type FitConfig struct {
	MinSize float64 // 中文字号下限，不小于 7pt
	MaxSize float64 // 中文字号上限
	Target  float64 // 目标填充率，限制在 [0.60, 0.98]
	Lock    bool    // 中英文使用同一字号
}

// DefaultFitConfig 是 CLI 使用的搜索范围。
func DefaultFitConfig() FitConfig {
	return FitConfig{MinSize: 9, MaxSize: 16, Target: 0.85}
}

// normalize 修正越界的参数。
func (cfg FitConfig) normalize() FitConfig {
	cfg.MinSize = math.Max(cfg.MinSize, minFitSize)
	cfg.MaxSize = math.Max(cfg.MaxSize, cfg.MinSize)
	cfg.Target = min(max(cfg.Target, minFitTarget), maxFitTarget)
	return cfg
}

// DefaultSizes 返回未指定字号时的中英文字号：有英文时都为 12pt，否则中文 13pt、英文 11pt。
func DefaultSizes(english []string, lock bool) (zh, en float64) {
	zh, en = 13, 11
	if hasText(english) {
		zh, en = 12, 12
	}
	if lock {
		same := math.Min(zh, en)
		return same, same
	}
	return zh, en
}

// LockSizes 把中英文字号设为两者中较小的一个。
func LockSizes(fc FontContext) FontContext {
	out := fc.Clone()
	same := math.Min(out.Options.ChineseSize, out.Options.LatinSize)
	out.Options.ChineseSize, out.Options.LatinSize = same, same
	return out
}

// FitResult 是自动字号搜索的结论。
type FitResult struct {
	ChineseSize float64
	LatinSize   float64
	Fill        float64
}

// AutoFit 在 [MinSize, MaxSize] 间等分取 31 个中文字号，逐一排版，
// 选出填充率最接近目标的一组字号。返回的 FontContext 已设置好字号。
func AutoFit(chinese, english []string, fc FontContext, cfg FitConfig) (FontContext, FitResult, error) {
	if len(chinese) != len(english) {
		return fc, FitResult{}, errs.Configf("autofit", "中英文分节数不一致: %d 与 %d", len(chinese), len(english))
	}
	if err := fc.check(); err != nil {
		return fc, FitResult{}, err
	}
	cfg = cfg.normalize()
	includeEnglish := hasText(english)

	best := FitResult{ChineseSize: cfg.MinSize, LatinSize: cfg.MinSize}
	bestScore := math.Inf(1)
	for step := 0; step <= fitSteps; step++ {
		zh := cfg.MinSize + (cfg.MaxSize-cfg.MinSize)*float64(step)/fitSteps
		en := zh
		if !cfg.Lock && !includeEnglish {
			en = math.Max(zh-1, minFitSize)
		}
		candidate := fc.Clone()
		candidate.Options.ChineseSize, candidate.Options.LatinSize = zh, en
		if err := candidate.Options.Validate(); err != nil {
			return fc, FitResult{}, err
		}
		res, err := candidate.place(chinese, english)
		if err != nil {
			return fc, FitResult{}, err
		}
		fill := res.Fill()
		score := math.Abs(fill - cfg.Target)
		trace().Debugf("autofit zh=%.2f en=%.2f pages=%d fill=%.3f", zh, en, len(res.Pages), fill)
		if score < bestScore {
			bestScore = score
			best = FitResult{ChineseSize: zh, LatinSize: en, Fill: fill}
		}
	}

	out := fc.Clone()
	out.Options.ChineseSize, out.Options.LatinSize = best.ChineseSize, best.LatinSize
	trace().Infof("autofit chose zh=%.2f en=%.2f (fill %.3f, target %.2f)", best.ChineseSize, best.LatinSize, best.Fill, cfg.Target)
	return out, best, nil
}

func hasText(sections []string) bool {
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
