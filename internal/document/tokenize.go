package document

import (
	"regexp"
	"strings"
)

var (
	// 与TfidfVectorizer默认token_pattern等价：两个及以上的词字符
	analyzerTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
	// 词与标点分开，保留 don't / well-known 这类内部连接
	wordPunctRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)
	wordRe      = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*`)
)

// AnalyzerTokens 返回用于向量化的小写词元
func AnalyzerTokens(text string) []string {
	return analyzerTokenRe.FindAllString(strings.ToLower(text), -1)
}

// WordPunctTokens 返回小写的词和标点序列，用于文本统计
func WordPunctTokens(text string) []string {
	return wordPunctRe.FindAllString(strings.ToLower(text), -1)
}

// Words 返回文本中的单词（保留大小写，不含标点）
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// NGrams 将词序列拼接为n元组，元素之间以单个空格连接
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}
