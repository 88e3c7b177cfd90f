package loader

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/legal-summary/internal/document"
)

// Strategy 分块策略
type Strategy string

const (
	// Semantic 语义分块
	Semantic Strategy = "semantic"
	// TokenWise 按词元数分块
	TokenWise Strategy = "tokenwise"
	// Recursive 递归字符分块
	Recursive Strategy = "recursive"
)

// Strategies 固定的策略顺序，排名并列时以此顺序为准
var Strategies = []Strategy{Semantic, TokenWise, Recursive}

// ParseStrategy 解析策略名称，忽略大小写
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Semantic, TokenWise, Recursive:
		return st, nil
	default:
		return "", fmt.Errorf("chunk strategy must be 'semantic', 'tokenwise', or 'recursive', got %q", s)
	}
}

// Dir 策略对应的数据目录
func (s Strategy) Dir() string {
	switch s {
	case Semantic:
		return "Semantic"
	case TokenWise:
		return "TokenWise"
	case Recursive:
		return "Recursive"
	}
	return ""
}

// FilePrefix 分块文件名前缀
func (s Strategy) FilePrefix() string {
	switch s {
	case Semantic:
		return "Semantic-Chunker-"
	case TokenWise:
		return "Token-Chunker-"
	case Recursive:
		return "Recursive-Chunker-"
	}
	return ""
}

// FileName 指定案件的分块文件相对路径
func (s Strategy) FileName(caseID string) string {
	return s.Dir() + "/" + s.FilePrefix() + caseID + ".txt"
}

// Index 策略在固定顺序中的位置
func (s Strategy) Index() int {
	for i, st := range Strategies {
		if st == s {
			return i
		}
	}
	return len(Strategies)
}

// SplitterConfig 为没有预分块的原文生成该策略分块时使用的配置
// 语义分块以句子为单位聚合，词元分块按cl100k词元窗口，递归分块从段落开始逐级细分
func (s Strategy) SplitterConfig() document.SplitterConfig {
	switch s {
	case Semantic:
		return document.SplitterConfig{SplitType: document.BySentence, ChunkSize: 1000}
	case TokenWise:
		return document.SplitterConfig{SplitType: document.ByToken, ChunkSize: 200, ChunkOverlap: 20}
	default:
		return document.SplitterConfig{SplitType: document.ByParagraph, ChunkSize: 1000, ChunkOverlap: 200}
	}
}
