package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserReaderImplementations(t *testing.T) {
	// 测试纯文本解析器
	t.Run("PlainText", func(t *testing.T) {
		content := "The appellant was convicted under Section 302."
		reader := strings.NewReader(content)

		parser := NewPlainTextParser()
		result, err := parser.ParseReader(reader, "case.txt")

		assert.NoError(t, err)
		assert.Equal(t, content, result)
	})

	// 测试Markdown解析器
	t.Run("Markdown", func(t *testing.T) {
		content := "# Heading\n\nThis is **markdown** text."
		reader := strings.NewReader(content)

		parser := NewMarkdownParser()
		result, err := parser.ParseReader(reader, "case.md")

		assert.NoError(t, err)
		assert.Contains(t, result, "Heading")
		assert.Contains(t, result, "This is markdown text.")
	})
}

func TestPlainTextParserReaderNormalizes(t *testing.T) {
	parser := NewPlainTextParser()

	// BOM和Windows换行
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Line one.\r\nLine two.")...)
	result, err := parser.ParseReader(bytes.NewReader(raw), "case.txt")
	assert.NoError(t, err)
	assert.Equal(t, "Line one.\nLine two.", result)

	// 非法UTF-8字节被替换
	result, err = parser.ParseReader(bytes.NewReader([]byte{'a', 0xff, 'b'}), "case.txt")
	assert.NoError(t, err)
	assert.Equal(t, "a b", result)
}
