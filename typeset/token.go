package typeset

import (
	"strings"
	"unicode"
)

// Kind 是记号的类别。
type Kind uint8

const (
	Word Kind = iota
	Space
	Punct
	SoftHyphen
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Space:
		return "space"
	case Punct:
		return "punct"
	case SoftHyphen:
		return "soft-hyphen"
	default:
		return "?"
	}
}

// Token 是排版的最小单位。Word 的 Text 是单词本身，Punct 的 Text 是单个标点。
type Token struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
}

const softHyphenRune = '\u00ad'

// String 返回记号在行文本中的样子。
func (t Token) String() string {
	switch t.Kind {
	case Space:
		return " "
	case SoftHyphen:
		return "-"
	default:
		return t.Text
	}
}

// WordToken 构造单词记号。
func WordToken(s string) Token { return Token{Kind: Word, Text: s} }

// PunctToken 构造标点记号。
func PunctToken(r rune) Token { return Token{Kind: Punct, Text: string(r)} }

var (
	spaceToken      = Token{Kind: Space}
	softHyphenToken = Token{Kind: SoftHyphen}
)

// JoinTokens 按顺序拼接记号文本。
func JoinTokens(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

// WordCount 统计单词记号数。
func WordCount(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if t.Kind == Word {
			n++
		}
	}
	return n
}

// 中文标点集合。
const (
	cjkPunct   = "，。；：？！「」『』（）"
	cjkOpening = "「『（"
	cjkClosing = "，。；：？！」』）"
	// 西文 ASCII 标点，撇号与连字符属于单词。
	asciiPunct = "!\"#$%&()*+,./:;<=>?@[\\]^_`{|}~"
)

// tokenizeChinese 把每个非标点、非空白的码位作为一个单词记号，不做跨字符合并。
func tokenizeChinese(s string) []Token {
	var out []Token
	for _, r := range s {
		switch {
		case r == softHyphenRune:
			out = append(out, softHyphenToken)
		case unicode.IsSpace(r):
			out = appendSpace(out)
		case strings.ContainsRune(cjkPunct, r):
			out = append(out, PunctToken(r))
		default:
			out = append(out, WordToken(string(r)))
		}
	}
	return out
}

func tokenizeLatin(s string) []Token {
	var out []Token
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			out = append(out, WordToken(word.String()))
			word.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == softHyphenRune:
			flush()
			out = append(out, softHyphenToken)
		case unicode.IsSpace(r):
			flush()
			out = appendSpace(out)
		case r < 0x80 && strings.ContainsRune(asciiPunct, r):
			flush()
			out = append(out, PunctToken(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return out
}

// appendSpace 合并连续空白。
func appendSpace(tokens []Token) []Token {
	if n := len(tokens); n > 0 && tokens[n-1].Kind == Space {
		return tokens
	}
	return append(tokens, spaceToken)
}

// chineseBreakBetween 允许在任意两个汉字之间断行，但行首不放闭合标点，行尾不放开启标点。
func chineseBreakBetween(prev, next Token) bool {
	if next.Kind == Punct && strings.Contains(cjkClosing, next.Text) {
		return false
	}
	if prev.Kind == Punct && strings.Contains(cjkOpening, prev.Text) {
		return false
	}
	return true
}

// trimSpaces 去掉首尾的空格记号。
func trimSpaces(tokens []Token) []Token {
	start, end := 0, len(tokens)
	for start < end && tokens[start].Kind == Space {
		start++
	}
	for end > start && tokens[end-1].Kind == Space {
		end--
	}
	return tokens[start:end]
}

// trimTrailingSpaces 去掉行尾空格记号，行宽不计尾随空格。
func trimTrailingSpaces(tokens []Token) []Token {
	end := len(tokens)
	for end > 0 && tokens[end-1].Kind == Space {
		end--
	}
	return tokens[:end]
}

// endsWithHyphen 报告最后一个非空格记号是否为连字符或软连字符。
func endsWithHyphen(tokens []Token) bool {
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i].Kind {
		case Space:
			continue
		case SoftHyphen:
			return true
		case Punct:
			return tokens[i].Text == "-"
		default:
			return strings.HasSuffix(tokens[i].Text, "-")
		}
	}
	return false
}
