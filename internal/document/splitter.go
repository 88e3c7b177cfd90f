package document

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/textsplitter"
)

// TokenEncoding ByToken计数使用的tiktoken编码
const TokenEncoding = "cl100k_base"

// SplitType 文本分块的方式
type SplitType string

const (
	// ByParagraph 递归字符切分，依次尝试段落、换行、空格
	ByParagraph SplitType = "paragraph"
	// BySentence 按句子切分后合并到ChunkSize以内
	BySentence SplitType = "sentence"
	// ByLength 按字符长度切分
	ByLength SplitType = "length"
	// ByToken 按tiktoken词元切分，ChunkSize和ChunkOverlap以词元计
	ByToken SplitType = "token"
)

// SplitterConfig 分块器配置
type SplitterConfig struct {
	SplitType    SplitType // 分割类型
	ChunkSize    int       // 分块大小（ByToken时为词元数，其余为字符数）
	ChunkOverlap int       // 分块重叠大小
	MaxChunks    int       // 最大分块数量（0表示不限制）
}

// DefaultSplitterConfig 返回默认分块器配置
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		SplitType:    ByParagraph,
		ChunkSize:    1000,
		ChunkOverlap: 200,
		MaxChunks:    0,
	}
}

// TextSplitter 文本分块器
// 用于为没有预先分块的判决书生成三种策略的分块文件
type TextSplitter struct {
	config SplitterConfig
}

// NewTextSplitter 创建新的文本分块器
func NewTextSplitter(config SplitterConfig) *TextSplitter {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultSplitterConfig().ChunkSize
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = 0
	}
	return &TextSplitter{config: config}
}

// Split 将文本切分为分块
func (s *TextSplitter) Split(text string) ([]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	var chunks []string
	var err error

	switch s.config.SplitType {
	case ByParagraph:
		chunks, err = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(s.config.ChunkSize),
			textsplitter.WithChunkOverlap(s.config.ChunkOverlap),
		).SplitText(text)
	case BySentence:
		chunks = s.mergeSmallChunks(SplitSentences(text))
		chunks = s.handleLargeChunks(chunks)
	case ByLength:
		chunks = s.splitByLength(text)
	case ByToken:
		chunks, err = textsplitter.NewTokenSplitter(
			textsplitter.WithChunkSize(s.config.ChunkSize),
			textsplitter.WithChunkOverlap(s.config.ChunkOverlap),
			textsplitter.WithEncodingName(TokenEncoding),
		).SplitText(text)
	default:
		return nil, fmt.Errorf("unknown split type: %s", s.config.SplitType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to split text by %s: %w", s.config.SplitType, err)
	}

	result := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			result = append(result, c)
		}
	}

	if s.config.MaxChunks > 0 && len(result) > s.config.MaxChunks {
		result = result[:s.config.MaxChunks]
	}
	return result, nil
}

// splitByLength 按字符数切分，尽量在空白处断开
func (s *TextSplitter) splitByLength(text string) []string {
	runes := []rune(text)
	size := s.config.ChunkSize
	step := size - s.config.ChunkOverlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := min(i+size, len(runes))

		if end < len(runes) {
			cut := end
			for cut > i && !unicode.IsSpace(runes[cut]) {
				cut--
			}
			// 找不到空白就在原位置截断
			if cut > i {
				end = cut
			}
		}

		chunks = append(chunks, strings.TrimSpace(string(runes[i:end])))
		if end == len(runes) {
			break
		}
		if end-i < step {
			// 在空白处提前断开时从断点继续，避免漏掉文本
			i = end - step
		}
	}
	return chunks
}

// mergeSmallChunks 合并相邻的小块，合并后不超过ChunkSize
func (s *TextSplitter) mergeSmallChunks(chunks []string) []string {
	if len(chunks) <= 1 {
		return chunks
	}

	var result []string
	var current strings.Builder
	currentLen := 0

	for _, chunk := range chunks {
		l := runeLen(chunk)
		if currentLen > 0 && currentLen+1+l > s.config.ChunkSize {
			result = append(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(chunk)
		currentLen += l
	}

	if currentLen > 0 {
		result = append(result, current.String())
	}
	return result
}

// handleLargeChunks 对仍然超长的块按长度再切分
func (s *TextSplitter) handleLargeChunks(chunks []string) []string {
	var result []string
	for _, chunk := range chunks {
		if runeLen(chunk) > s.config.ChunkSize {
			result = append(result, s.splitByLength(chunk)...)
		} else {
			result = append(result, chunk)
		}
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}
