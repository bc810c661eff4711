package typeset

import "math"

// Policy 是后处理与对齐使用的可调阈值。它们是经验值，不是排版规范的硬性规定。
type Policy struct {
	MinWords     int     // 少于该词数的行尝试把末词推给下一行
	MaxWords     int     // 多于该词数的行尝试从下一行拉一个词
	RagClamp     float64 // 参差修整对记录宽度的最大调整比例
	JustifyClamp float64 // 两端对齐时每个空格的最大伸缩比例
	LeadingFloor float64 // 行距至少为字号加上该值，pt
}

// DefaultPolicy 返回默认阈值。
func DefaultPolicy() Policy {
	return Policy{
		MinWords:     5,
		MaxWords:     15,
		RagClamp:     0.05,
		JustifyClamp: 0.5,
		LeadingFloor: 4,
	}
}

// refiner 执行后处理。每一步都返回新的行列表，不修改传入的行。
// 词的迁移总是整体进行，连同相邻空格；放不下的迁移直接跳过。
type refiner struct {
	b      lineBuilder
	policy Policy
}

func (c *Composer) refine(lines []Line, b lineBuilder, justified bool) []Line {
	r := refiner{b: b, policy: c.Policy}
	lines = r.widows(lines)
	lines = r.orphans(lines)
	lines = r.density(lines)
	lines = r.stackedHyphens(lines)
	if !justified && len(lines) >= 3 {
		lines = r.rag(lines)
	}
	return lines
}

// widows 在末行只有一个词时尝试把它并入上一行。
func (r refiner) widows(lines []Line) []Line {
	n := len(lines)
	if n < 2 || lines[n-1].WordCount() != 1 {
		return lines
	}
	out, _ := r.pull(lines, n-2)
	return out
}

// orphans 在首行只有一个词时尝试把它推到第二行。
func (r refiner) orphans(lines []Line) []Line {
	if len(lines) < 2 || lines[0].WordCount() != 1 {
		return lines
	}
	out, _ := r.push(lines, 0)
	return out
}

// density 对过疏或过密的行各尝试一次相邻迁移。
// 让出词的一行若因此只剩一个词，则不迁移。
func (r refiner) density(lines []Line) []Line {
	for i := 0; i+1 < len(lines); i++ {
		wc := lines[i].WordCount()
		switch {
		case wc > 0 && wc < r.policy.MinWords:
			if k, ok := trailingWord(lines[i].Tokens); ok && WordCount(lines[i].Tokens[:k]) != 1 {
				lines, _ = r.push(lines, i)
			}
		case wc > r.policy.MaxWords:
			if n, ok := leadingWord(lines[i+1].Tokens); ok && WordCount(lines[i+1].Tokens[n:]) != 1 {
				lines, _ = r.pull(lines, i)
			}
		}
	}
	return lines
}

// stackedHyphens 在相邻两行都以连字符结尾时，尝试从后一行拉一个词到前一行。
func (r refiner) stackedHyphens(lines []Line) []Line {
	for i := 1; i < len(lines); i++ {
		if lines[i-1].Hyphenated && lines[i].Hyphenated {
			lines, _ = r.pull(lines, i-1)
		}
	}
	return lines
}

// rag 修整参差：宽度处于单调序列中间的行，把记录宽度向两邻行的均值靠拢，
// 调整量不超过自身宽度的 RagClamp。只改 Width，不重排记号。
func (r refiner) rag(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	for i := 1; i+1 < len(lines); i++ {
		prev, curr, next := lines[i-1].Width, lines[i].Width, lines[i+1].Width
		if !(prev < curr && curr < next) && !(prev > curr && curr > next) {
			continue
		}
		limit := curr * r.policy.RagClamp
		delta := math.Max(-limit, math.Min(limit, (prev+next)/2-curr))
		out[i].Width = curr + delta
	}
	return out
}

// pull 把第 i+1 行开头的词并到第 i 行末尾。第 i+1 行被拉空时删除。
func (r refiner) pull(lines []Line, i int) ([]Line, bool) {
	if i < 0 || i+1 >= len(lines) {
		return lines, false
	}
	n, ok := leadingWord(lines[i+1].Tokens)
	if !ok {
		return lines, false
	}
	merged := concat(lines[i].Tokens, lines[i+1].Tokens[:n])
	if !r.b.fits(merged) {
		return lines, false
	}
	rest := lines[i+1].Tokens[n:]
	out := make([]Line, 0, len(lines))
	out = append(out, lines[:i]...)
	out = append(out, r.b.line(merged))
	if len(trimSpaces(rest)) > 0 {
		out = append(out, r.b.line(rest))
	}
	out = append(out, lines[i+2:]...)
	return out, true
}

// push 把第 i 行末尾的词移到第 i+1 行开头。第 i 行被推空时删除。
func (r refiner) push(lines []Line, i int) ([]Line, bool) {
	if i < 0 || i+1 >= len(lines) {
		return lines, false
	}
	k, ok := trailingWord(lines[i].Tokens)
	if !ok {
		return lines, false
	}
	merged := concat(lines[i].Tokens[k:], lines[i+1].Tokens)
	if !r.b.fits(merged) {
		return lines, false
	}
	keep := lines[i].Tokens[:k]
	out := make([]Line, 0, len(lines))
	out = append(out, lines[:i]...)
	if len(trimSpaces(keep)) > 0 {
		out = append(out, r.b.line(keep))
	}
	out = append(out, r.b.line(merged))
	out = append(out, lines[i+2:]...)
	return out, true
}

// leadingWord 返回开头第一个词（连续的非空格记号，至少含一个单词）连同其前后空格的记号数。
func leadingWord(tokens []Token) (int, bool) {
	i := 0
	for i < len(tokens) && tokens[i].Kind == Space {
		i++
	}
	start := i
	for i < len(tokens) && tokens[i].Kind != Space {
		i++
	}
	if WordCount(tokens[start:i]) == 0 {
		return 0, false
	}
	for i < len(tokens) && tokens[i].Kind == Space {
		i++
	}
	return i, true
}

// trailingWord 返回最后一个词（连同行尾空格）的起始下标。
func trailingWord(tokens []Token) (int, bool) {
	i := len(tokens)
	for i > 0 && tokens[i-1].Kind == Space {
		i--
	}
	end := i
	for i > 0 && tokens[i-1].Kind != Space {
		i--
	}
	if WordCount(tokens[i:end]) == 0 {
		return 0, false
	}
	return i, true
}

func concat(a, b []Token) []Token {
	out := make([]Token, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
