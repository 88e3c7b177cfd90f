package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser PDF文档解析器
// 文字提取交给ledongthuc/pdf，它按字体编码和ToUnicode映射解码字面量与十六进制字符串；
// 直接读取失败时（加密、交叉引用表损坏）先用pdfcpu重写一遍再提取
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件并提取其文本内容
func (p *PDFParser) Parse(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF file: %w", err)
	}
	return extractPDF(data)
}

// ParseReader 从Reader解析PDF
// 上传接口拿到的是multipart流，两个库都需要随机访问，所以先读入内存
func (p *PDFParser) ParseReader(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF content: %w", err)
	}
	return extractPDF(data)
}

func extractPDF(data []byte) (string, error) {
	text, err := plainText(data)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, ErrEmptyContent) {
		return "", err
	}

	rewritten, rerr := rewritePDF(data, errors.Is(err, pdf.ErrInvalidPassword))
	if rerr != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", errors.Join(err, rerr))
	}
	text, err = plainText(rewritten)
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			return "", err
		}
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}
	return text, nil
}

// plainText 逐页提取文字，页与页之间用空行分隔
func plainText(data []byte) (result string, err error) {
	// ledongthuc/pdf遇到畸形对象会panic
	defer func() {
		if r := recover(); r != nil {
			result, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var allText strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if allText.Len() > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(pageText)
	}

	text := strings.TrimSpace(allText.String())
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

// rewritePDF 用pdfcpu重新读写文件，读取时会重建损坏的交叉引用表
// encrypted为true时以空密码解密，只设了权限密码的判决书可以这样打开
func rewritePDF(data []byte, encrypted bool) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	var err error
	if encrypted {
		err = api.Decrypt(bytes.NewReader(data), &out, conf)
	} else {
		err = api.Optimize(bytes.NewReader(data), &out, conf)
	}
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
