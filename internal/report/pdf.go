package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// SummaryDocument PDF摘要报告的内容
type SummaryDocument struct {
	CaseID    string
	Summary   string
	KeyPoints []string
}

// WritePDF 将摘要和要点写成PDF
func WritePDF(w io.Writer, doc SummaryDocument) error {
	return renderPDF(w, doc, true)
}

func renderPDF(w io.Writer, doc SummaryDocument, compress bool) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// 核心字体只支持cp1252，先做转换
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Case Number: %s", doc.CaseID)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.CellFormat(0, 8, "Summary:", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(doc.Summary), "", "L", false)

	if len(doc.KeyPoints) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Key Legal Points:", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for i, point := range doc.KeyPoints {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, point)), "", "L", false)
			pdf.Ln(1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// PDFFileName 案件PDF报告的文件名
func PDFFileName(caseID string) string {
	return fmt.Sprintf("case_%s_summary.pdf", caseID)
}
