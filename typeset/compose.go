// Package typeset 实现段落排版：把原始 Unicode 文本排成带坐标的行。
//
// 流程依次为：NFC 规范化、标点美化、双向文本分析、分词、断点发现、
// 贪心填行（含西文断字）、后处理（孤行、寡行、行密度、连续连字符、参差修整）、
// 两端对齐与基线分配。排版结果只依赖输入与字体度量，同样的输入总得到同样的输出。
package typeset

import (
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/duizhao/errs"
	"github.com/ByLCY/duizhao/fonts"
)

func trace() tracing.Trace {
	return tracing.Select("duizhao.typeset")
}

// SpaceAdjustment 记录两端对齐时一个空格的调整量。Position 是空格在行文本中的码位下标。
type SpaceAdjustment struct {
	Position      int     `json:"position"`
	BaseWidth     float64 `json:"baseWidth"`
	AdjustedWidth float64 `json:"adjustedWidth"`
	Ratio         float64 `json:"ratio"`
}

// Line 是排好的一行。X 与 Baseline 相对于所属段落的原点。
type Line struct {
	Text       string            `json:"text"`
	X          float64           `json:"x"`
	Baseline   float64           `json:"baseline"`
	Width      float64           `json:"width"`
	Natural    float64           `json:"natural"`
	Height     float64           `json:"height"`
	Script     Script            `json:"script"`
	FontSize   float64           `json:"fontSize"`
	Tokens     []Token           `json:"-"`
	Spaces     []SpaceAdjustment `json:"spaces,omitempty"`
	Runs       []Run             `json:"runs,omitempty"`
	Justified  bool              `json:"justified,omitempty"`
	Hyphenated bool              `json:"hyphenated,omitempty"`
}

// WordCount 返回行内单词记号数。
func (l Line) WordCount() int { return WordCount(l.Tokens) }

// Paragraph 是排好的段落。Y 是首行基线所在的位置。
type Paragraph struct {
	Lines       []Line  `json:"lines"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Script      Script  `json:"script"`
	FontSize    float64 `json:"fontSize"`
	LineSpacing float64 `json:"lineSpacing"`
	Leading     float64 `json:"leading"`
}

// Style 是一个文种的排版参数。
type Style struct {
	Size        float64 // 字号，pt
	Tracking    float64 // 字距，千分之一 em
	LineSpacing float64 // 行高倍数
	Justify     bool    // 两端对齐，仅对允许对齐的文种生效
}

// Setting 把一个文种的度量与排版参数绑在一起。
type Setting struct {
	Metrics fonts.Metrics
	Style   Style
}

// Composer 按文种排版段落。Composer 不做同步，度量缓存也不应在并发调用间共享。
type Composer struct {
	settings [len(scriptRules)]Setting
	Policy   Policy
}

// NewComposer 用中文与西文的设置创建 Composer，后处理阈值取 DefaultPolicy。
func NewComposer(chinese, latin Setting) *Composer {
	return &Composer{
		settings: [len(scriptRules)]Setting{Chinese: chinese, Latin: latin},
		Policy:   DefaultPolicy(),
	}
}

// Setting 返回文种对应的设置。
func (c *Composer) Setting(script Script) Setting {
	if !script.Valid() {
		return Setting{}
	}
	return c.settings[script]
}

// Leading 返回基线间距：max(字号 × 行高倍数, 字号 + LeadingFloor)。
func (c *Composer) Leading(script Script) float64 {
	st := c.Setting(script).Style
	return math.Max(st.Size*st.LineSpacing, st.Size+c.Policy.LeadingFloor)
}

// Measure 测量记号序列在该文种下的宽度。
func (c *Composer) Measure(script Script, tokens []Token) float64 {
	return c.measurer(script).width(tokens)
}

// Tokenize 返回文本经规范化后的记号。
func (c *Composer) Tokenize(text string, script Script) []Token {
	if !script.Valid() {
		return nil
	}
	return trimSpaces(script.rules().tokenize(prepare(text)))
}

func (c *Composer) measurer(script Script) measurer {
	st := c.settings[script]
	return measurer{m: st.Metrics, size: st.Style.Size, tracking: st.Style.Tracking}
}

// Compose 在宽度 maxWidth 内排版 text，段落原点为 (x, y)。
// 只在几何参数非法（非有限或非正）时失败。
func (c *Composer) Compose(text string, x, y, maxWidth float64, script Script) (*Paragraph, error) {
	if !script.Valid() {
		return nil, errs.Configf("compose", "未知文种 %d", uint8(script))
	}
	st := c.settings[script]
	if st.Metrics == nil {
		return nil, errs.Resourcef("compose", "%s 文种缺少字体度量", script)
	}
	switch {
	case !finitePositive(maxWidth):
		return nil, errs.Configf("compose", "行宽非法: %g", maxWidth)
	case !finitePositive(st.Style.Size):
		return nil, errs.Configf("compose", "%s 字号非法: %g", script, st.Style.Size)
	case !finitePositive(st.Style.LineSpacing):
		return nil, errs.Configf("compose", "%s 行高倍数非法: %g", script, st.Style.LineSpacing)
	case !finite(st.Style.Tracking), !finite(x), !finite(y):
		return nil, errs.Configf("compose", "%s 段落原点或字距非有限", script)
	}

	rl := script.rules()
	ms := c.measurer(script)
	leading := c.Leading(script)
	tokens := c.Tokenize(text, script)

	b := lineBuilder{ms: ms, script: script, size: st.Style.Size, leading: leading, maxWidth: maxWidth}
	var lines []Line
	for _, seg := range c.fill(tokens, rl, ms, maxWidth) {
		lines = append(lines, b.line(seg))
	}

	if rl.refine && len(lines) >= 2 {
		lines = c.refine(lines, b, st.Style.Justify && rl.justify)
	}
	if st.Style.Justify && rl.justify {
		lines = justify(lines, ms, maxWidth, c.Policy.JustifyClamp)
	}
	for i := range lines {
		lines[i].X = 0
		lines[i].Baseline = float64(i) * leading
		lines[i].Height = leading
		lines[i].Runs = runs(lines[i], ms)
	}

	height := leading
	if n := len(lines); n > 0 {
		height = lines[n-1].Baseline - lines[0].Baseline + leading
	}
	trace().Debugf("composed %s paragraph: %d tokens, %d lines, width %.2f", script, len(tokens), len(lines), maxWidth)
	return &Paragraph{
		Lines:       lines,
		X:           x,
		Y:           y,
		Width:       maxWidth,
		Height:      height,
		Script:      script,
		FontSize:    st.Style.Size,
		LineSpacing: st.Style.LineSpacing,
		Leading:     leading,
	}, nil
}

// fill 贪心填行，返回每行的记号。西文单词溢出时先尝试在词内断字。
func (c *Composer) fill(tokens []Token, rl rules, ms measurer, maxWidth float64) [][]Token {
	var lines [][]Token
	start := 0
	for start < len(tokens) {
		var total float64
		best := -1
		end := start
		for end < len(tokens) {
			step := ms.step(tokens[end], end > start)
			if tokens[end].Kind != Space && total+step > maxWidth+eps {
				break
			}
			total += step
			end++
			if breakAt(tokens, end, rl) {
				best = end
			}
		}
		if end == len(tokens) {
			lines = append(lines, tokens[start:])
			break
		}

		// 溢出词内的断字点总在已记录断点之后，能放下就优先使用
		if rl.hyphenate {
			if head, tail, ok := hyphenSplit(tokens[end], ms, total, end > start, maxWidth); ok {
				next := make([]Token, 0, len(tokens)+2)
				next = append(next, tokens[:end]...)
				next = append(next, WordToken(head), softHyphenToken, WordToken(tail))
				next = append(next, tokens[end+1:]...)
				tokens = next
				lines = append(lines, tokens[start:end+2])
				start = end + 2
				continue
			}
		}

		cut := best
		if cut <= start {
			// 没有合法断点：在溢出位置强制断行
			cut = end
		}
		if cut <= start {
			// 单个记号就超宽，也至少放一个以保证前进
			cut = start + 1
		}
		lines = append(lines, tokens[start:cut])
		start = cut
	}
	return lines
}

// breakAt 报告 p（tokens[p-1] 与 tokens[p] 之间）是否是合法断点。段落末尾总是合法断点。
func breakAt(tokens []Token, p int, rl rules) bool {
	if p >= len(tokens) {
		return true
	}
	if p <= 0 {
		return false
	}
	prev := tokens[p-1]
	switch prev.Kind {
	case Space, SoftHyphen:
		return true
	case Punct:
		if prev.Text == "," || prev.Text == ";" {
			return true
		}
	}
	if tokens[p].Kind == Space {
		return false
	}
	return rl.breakBetween != nil && rl.breakBetween(prev, tokens[p])
}

// hyphenSplit 在 tok 内找最靠后的断字点，使 "前半 + 连字符" 仍能放进当前行。
// used 是当前行已占用的宽度（含尾随空格）。
func hyphenSplit(tok Token, ms measurer, used float64, follows bool, maxWidth float64) (head, tail string, ok bool) {
	if tok.Kind != Word {
		return "", "", false
	}
	points := FindHyphenationPoints(tok.Text)
	runes := []rune(tok.Text)
	for i := len(points) - 1; i >= 0; i-- {
		h := string(runes[:points[i]])
		w := used + ms.step(WordToken(h), follows) + ms.step(softHyphenToken, true)
		if w <= maxWidth+eps {
			return h, string(runes[points[i]:]), true
		}
	}
	return "", "", false
}

// lineBuilder 从记号重新推导一行的文本、宽度与标志。
type lineBuilder struct {
	ms       measurer
	script   Script
	size     float64
	leading  float64
	maxWidth float64
}

func (b lineBuilder) line(tokens []Token) Line {
	own := dropInteriorSoftHyphens(tokens)
	w := b.ms.lineWidth(own)
	return Line{
		Text:       JoinTokens(own),
		Width:      w,
		Natural:    w,
		Height:     b.leading,
		Script:     b.script,
		FontSize:   b.size,
		Tokens:     own,
		Hyphenated: endsWithHyphen(own),
	}
}

// fits 报告记号序列是否放得进一行。
func (b lineBuilder) fits(tokens []Token) bool {
	return b.ms.lineWidth(dropInteriorSoftHyphens(tokens)) <= b.maxWidth+eps
}

// dropInteriorSoftHyphens 复制记号并去掉不在行尾的软连字符：它们只在断行处显示。
func dropInteriorSoftHyphens(tokens []Token) []Token {
	last := len(trimTrailingSpaces(tokens)) - 1
	out := make([]Token, 0, len(tokens))
	for i, t := range tokens {
		if t.Kind == SoftHyphen && i != last {
			continue
		}
		out = append(out, t)
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finitePositive(v float64) bool { return finite(v) && v > 0 }
