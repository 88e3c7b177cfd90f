package document

import (
	"strings"
	"unicode"
)

// 判决书中常见的缩写，句点之后不视为句子结束
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "no": {}, "nos": {}, "vs": {}, "v": {},
	"hon": {}, "ble": {}, "j": {}, "jj": {}, "sec": {}, "secs": {}, "art": {},
	"arts": {}, "s": {}, "ss": {}, "co": {}, "ltd": {}, "pvt": {}, "etc": {},
	"i.e": {}, "e.g": {}, "viz": {}, "cl": {}, "para": {}, "paras": {}, "pp": {},
	"p": {}, "ors": {}, "anr": {}, "st": {}, "govt": {}, "dept": {}, "u.s": {},
	"r": {}, "rs": {}, "o": {}, "sr": {}, "jr": {}, "cf": {}, "ibid": {},
}

var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true, '。': true, '！': true, '？': true, '；': true,
}

// 句末标点之后可以跟随的闭合符号
var sentenceClosers = map[rune]bool{
	'"': true, '\'': true, ')': true, ']': true, '”': true, '’': true, '」': true,
}

// SplitSentences 将文本切分为句子
// 句末标点需后接空白或文本结束才会切分，缩写、单字母姓名缩写以及
// 下一个词以小写字母开头的情况不切分
func SplitSentences(text string) []string {
	runes := []rune(text)
	n := len(runes)

	var sentences []string
	start := 0

	emit := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < n; i++ {
		r := runes[i]
		if !sentenceTerminators[r] {
			continue
		}

		// 连续的标点（如 "?!" 或 "..."）作为一个整体
		end := i + 1
		for end < n && sentenceTerminators[runes[end]] {
			end++
		}
		for end < n && sentenceClosers[runes[end]] {
			end++
		}

		// 中文标点不需要后接空白
		if isCJKTerminator(r) {
			emit(end)
			i = end - 1
			continue
		}

		if end < n && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}

		if r == '.' && end-i == 1 {
			if isAbbreviation(runes, i) || nextStartsLowercase(runes, end) {
				continue
			}
		}

		emit(end)
		i = end - 1
	}
	emit(n)

	return sentences
}

func isCJKTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？' || r == '；'
}

// isAbbreviation 判断位置dot处的句点前的词是否是已知缩写或单个大写字母
func isAbbreviation(runes []rune, dot int) bool {
	j := dot
	for j > 0 && !unicode.IsSpace(runes[j-1]) && runes[j-1] != '(' && runes[j-1] != '"' {
		j--
	}
	word := string(runes[j:dot])
	if word == "" {
		return false
	}

	wr := []rune(word)
	if len(wr) == 1 && unicode.IsUpper(wr[0]) {
		return true
	}

	_, ok := abbreviations[strings.ToLower(word)]
	return ok
}

// nextStartsLowercase 判断下一个词是否以小写字母开头
func nextStartsLowercase(runes []rune, from int) bool {
	for k := from; k < len(runes); k++ {
		if unicode.IsSpace(runes[k]) {
			continue
		}
		return unicode.IsLower(runes[k])
	}
	return false
}
