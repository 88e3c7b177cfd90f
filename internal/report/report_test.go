package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	long := strings.Repeat("a", 250)
	md := Markdown(CaseReport{
		CaseID:      "12",
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Sections: []StrategySection{
			{Strategy: "semantic", ChunkCount: 4, WordCount: 12345, Summary: "The appeal is dismissed."},
			{Strategy: "tokenwise", ChunkCount: 9, WordCount: 999, Summary: long},
		},
	})

	assert.Contains(t, md, "## Case Number: 12")
	assert.Contains(t, md, "Generated on: 2024-03-01 10:00:00")
	assert.Contains(t, md, "### Semantic Chunking")
	assert.Contains(t, md, "- Total words: 12,345")
	assert.Contains(t, md, "- Summary: The appeal is dismissed....")
	assert.Contains(t, md, "- Summary: "+strings.Repeat("a", 200)+"...\n")
	assert.NotContains(t, md, strings.Repeat("a", 201))
}

func TestMarkdownNoSections(t *testing.T) {
	md := Markdown(CaseReport{CaseID: "3", Metadata: "Case 3: State v. Ram"})
	assert.Contains(t, md, "Case 3: State v. Ram")
	assert.Contains(t, md, "No chunked data")
}

func TestHTML(t *testing.T) {
	out := string(HTML("# Title\n\n- item"))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<li>item</li>")
	assert.Contains(t, out, "<html")
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "-1,234,567", groupThousands(-1234567))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	doc := SummaryDocument{
		CaseID:    "7",
		Summary:   "The court held that the conviction cannot stand.",
		KeyPoints: []string{"The bench held that the confession was involuntary and inadmissible."},
	}
	require.NoError(t, WritePDF(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, renderPDF(&buf, doc, false))
	text, err := document.NewPDFParser().ParseReader(bytes.NewReader(buf.Bytes()), "report.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Case Number: 7")
	assert.Contains(t, text, "Key Legal Points")
	assert.Contains(t, text, "1. The bench held")
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "case_7_summary.pdf", PDFFileName("7"))
}
