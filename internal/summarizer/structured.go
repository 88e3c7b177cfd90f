package summarizer

import (
	"strings"

	"github.com/fyerfyer/legal-summary/internal/document"
)

// StructuredSummary 分段摘要：开头三分之一概述案情，末尾三分之一给出裁决
type StructuredSummary struct {
	Overview string `json:"overview"`
	Decision string `json:"decision"`
}

const (
	overviewSentences    = 3
	decisionSentences    = 2
	maxDecisionSentences = 3
)

// Structured 生成概述和裁决两部分摘要
// 句子不足三句时概述为空，裁决取全部句子
func (s *Summarizer) Structured(text string) StructuredSummary {
	sentences := document.SplitSentences(text)
	n := len(sentences)

	overview := s.summarizeSection(sentences[:n/3], overviewSentences)
	decision := s.summarizeSection(sentences[2*n/3:], decisionSentences)

	decisionParts := document.SplitSentences(decision)
	if len(decisionParts) > maxDecisionSentences {
		decision = strings.Join(decisionParts[:maxDecisionSentences], " ")
	}

	return StructuredSummary{Overview: overview, Decision: decision}
}

// summarizeSection 对一段句子做抽取式摘要，空段返回空字符串
func (s *Summarizer) summarizeSection(sentences []string, k int) string {
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= k {
		return strings.Join(sentences, " ")
	}
	return s.selectSentences(sentences, k).Text
}
