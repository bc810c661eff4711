package fonts

// Memo 是单次生成调用私有的度量缓存，按码位（和字号）记忆结果。
// 它不做同步：每个生成调用各自创建一个 Memo，不在并发调用之间共享。
type Memo struct {
	m       Metrics
	advance map[sizedRune]float64
	kern    map[sizedPair]kernEntry
}

type sizedRune struct {
	r    rune
	size float64
}

type sizedPair struct {
	left, right rune
	size        float64
}

type kernEntry struct {
	v  float64
	ok bool
}

var _ Metrics = (*Memo)(nil)

// NewMemo 包装 m。
func NewMemo(m Metrics) *Memo {
	return &Memo{
		m:       m,
		advance: make(map[sizedRune]float64),
		kern:    make(map[sizedPair]kernEntry),
	}
}

func (c *Memo) AdvanceWidth(r rune, size float64) float64 {
	key := sizedRune{r, size}
	if w, ok := c.advance[key]; ok {
		return w
	}
	w := c.m.AdvanceWidth(r, size)
	c.advance[key] = w
	return w
}

func (c *Memo) Kern(left, right rune, size float64) (float64, bool) {
	key := sizedPair{left, right, size}
	if e, ok := c.kern[key]; ok {
		return e.v, e.ok
	}
	v, ok := c.m.Kern(left, right, size)
	c.kern[key] = kernEntry{v, ok}
	return v, ok
}

func (c *Memo) GlyphIndex(r rune) uint16 { return c.m.GlyphIndex(r) }

func (c *Memo) UnitsPerEm() int { return c.m.UnitsPerEm() }

// Len 返回已缓存的前进宽度条目数。
func (c *Memo) Len() int { return len(c.advance) }
