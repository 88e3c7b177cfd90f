package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// previewLength 报告中摘要预览的字符数
const previewLength = 200

// StrategySection 报告中某个分块策略的小节
type StrategySection struct {
	Strategy   string `json:"strategy"`
	ChunkCount int    `json:"chunk_count"`
	WordCount  int    `json:"word_count"`
	Summary    string `json:"summary"`
}

// CaseReport 单个案件的综合分析报告
type CaseReport struct {
	CaseID      string            `json:"case_id"`
	Metadata    string            `json:"metadata,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Sections    []StrategySection `json:"sections"`
}

// Markdown 渲染Markdown格式的报告
func Markdown(r CaseReport) string {
	var sb strings.Builder

	sb.WriteString("# COMPREHENSIVE LEGAL ANALYSIS REPORT\n")
	fmt.Fprintf(&sb, "## Case Number: %s\n", r.CaseID)
	fmt.Fprintf(&sb, "Generated on: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	if r.Metadata != "" {
		sb.WriteString("## Case Metadata\n\n")
		sb.WriteString(r.Metadata)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Chunking Strategy Analysis\n\n")
	if len(r.Sections) == 0 {
		sb.WriteString("No chunked data is available for this case.\n")
	}
	for _, sec := range r.Sections {
		fmt.Fprintf(&sb, "### %s Chunking\n", title(sec.Strategy))
		fmt.Fprintf(&sb, "- Number of chunks: %d\n", sec.ChunkCount)
		fmt.Fprintf(&sb, "- Total words: %s\n", groupThousands(sec.WordCount))
		fmt.Fprintf(&sb, "- Summary: %s...\n\n", preview(sec.Summary, previewLength))
	}

	return sb.String()
}

// HTML 将Markdown报告渲染为HTML页面
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Legal Analysis Report",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// preview 截取前n个字符
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// groupThousands 千分位格式化
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
