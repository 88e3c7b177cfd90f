package document

import (
	"strings"
	"unicode"
)

// TextStats 文本统计信息
type TextStats struct {
	CharCount            int     `json:"char_count"`
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	AvgWordsPerSentence  float64 `json:"avg_words_per_sentence"`
	AvgCharsPerWord      float64 `json:"avg_chars_per_word"`
	FleschReadingEase    float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade   float64 `json:"flesch_kincaid_grade"`
	ReadabilityAvailable bool    `json:"readability_available"`
}

// Stats 计算文本的基础统计和可读性指标
// 没有单词时可读性指标无意义，ReadabilityAvailable为false
func Stats(text string) TextStats {
	stats := TextStats{
		CharCount: len([]rune(text)),
	}

	tokens := WordPunctTokens(text)
	stats.WordCount = len(tokens)
	stats.SentenceCount = len(SplitSentences(text))

	stats.AvgWordsPerSentence = float64(stats.WordCount) / float64(max(stats.SentenceCount, 1))
	stats.AvgCharsPerWord = float64(stats.CharCount) / float64(max(stats.WordCount, 1))

	words := Words(text)
	if len(words) == 0 {
		return stats
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}

	sentences := float64(max(stats.SentenceCount, 1))
	wordsPerSentence := float64(len(words)) / sentences
	syllablesPerWord := float64(syllables) / float64(len(words))

	stats.FleschReadingEase = 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	stats.FleschKincaidGrade = 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	stats.ReadabilityAvailable = true

	return stats
}

// CountSyllables 按元音组估算英文单词的音节数，至少为1
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// 词尾不发音的e
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
