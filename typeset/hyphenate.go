package typeset

import (
	"strings"
	"unicode"
)

const (
	minHyphenWord = 6
	hyphenMargin  = 3
	hyphenVowels  = "aeiouy"
)

// FindHyphenationPoints 返回 word 中可断开的位置（以码位计的偏移，断在该偏移之前）。
// 少于 6 个码位或以大写字母开头（多为专有名词）的单词不断开；
// 候选位置位于第 3 个码位之后、倒数第 3 个码位之前，且紧跟在元音之后。
func FindHyphenationPoints(word string) []int {
	runes := []rune(word)
	if len(runes) < minHyphenWord || unicode.IsUpper(runes[0]) {
		return nil
	}
	var points []int
	for i := hyphenMargin; i < len(runes)-hyphenMargin; i++ {
		if strings.ContainsRune(hyphenVowels, unicode.ToLower(runes[i-1])) {
			points = append(points, i)
		}
	}
	return points
}
