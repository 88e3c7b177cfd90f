package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown文档解析器
// 部分判决书以Markdown格式整理，解析时只保留正文文字
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown文件并提取文本内容
func (p *MarkdownParser) Parse(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open markdown file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader 从Reader解析Markdown内容
func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown content: %w", err)
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse(content, mdParser)

	return strings.TrimSpace(collectText(doc)), nil
}

// collectText 遍历AST收集叶子节点中的文字
// 块级节点结束时插入换行，保证句子切分时段落之间有边界
func collectText(root ast.Node) string {
	var sb strings.Builder

	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TableRow:
			if !entering {
				sb.WriteString("\n\n")
			}
			return ast.GoToNext
		case *ast.CodeBlock:
			// 代码块是叶子节点，只会以entering=true访问一次
			sb.Write(n.Literal)
			sb.WriteString("\n\n")
			return ast.GoToNext
		case *ast.Softbreak, *ast.Hardbreak:
			sb.WriteString("\n")
			return ast.GoToNext
		}

		if entering {
			if leaf := node.AsLeaf(); leaf != nil {
				sb.Write(leaf.Literal)
			}
		}
		return ast.GoToNext
	})

	// 合并多余的空行
	text := sb.String()
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}
