package summarizer

import (
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/legal-summary/internal/document"
)

const (
	// MaxKeyPoints 最多返回的要点数量
	MaxKeyPoints = 10
	// minKeyPointLength 要点句子的最小字符数（不含）
	minKeyPointLength = 50
)

// keyIndicators 表示法律推理结论的提示短语
var keyIndicators = []string{
	"held that", "decided that", "ruled that", "concluded that",
	"important to note", "it is clear that", "we find that",
	"court observed", "bench held", "judgment states",
	"ratio decidendi", "obiter dicta",
}

// ExtractKeyPoints 提取包含推理提示短语的句子，按原文顺序最多返回10条
func ExtractKeyPoints(chunks []string) []string {
	points := []string{}
	if len(chunks) == 0 {
		return points
	}

	for _, sentence := range document.SplitSentences(strings.Join(chunks, " ")) {
		if utf8.RuneCountInString(sentence) <= minKeyPointLength {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, indicator := range keyIndicators {
			if strings.Contains(lower, indicator) {
				points = append(points, sentence)
				break
			}
		}
		if len(points) == MaxKeyPoints {
			break
		}
	}

	return points
}
