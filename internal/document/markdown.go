package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// markdown渲染为HTML后参与抽取的块级元素
const markdownBlockSelector = "p, h1, h2, h3, h4, h5, h6, li, pre"

// MarkdownParser Markdown文档解析器
type MarkdownParser struct{}

// NewMarkdownParser 创建一个新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown文件
func (p *MarkdownParser) Parse(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open markdown file: %v", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader 从Reader读取并解析Markdown内容
func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown content: %v", err)
	}

	text, err := extractMarkdownText(content)
	if err != nil {
		return "", fmt.Errorf("failed to extract markdown text: %v", err)
	}

	return text, nil
}

// extractMarkdownText 将Markdown渲染为HTML后按块级元素抽取纯文本，
// 块与块之间保留空行，供后续分段使用
func extractMarkdownText(content []byte) (string, error) {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	htmlFlags := html.CommonFlags
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	htmlContent := markdown.ToHTML(content, mdParser, renderer)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var blocks []string
	doc.Find(markdownBlockSelector).Each(func(i int, sel *goquery.Selection) {
		text := normalizeBlockText(sel.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	return strings.Join(blocks, "\n\n"), nil
}

// normalizeBlockText 折叠块内空白为单个空格
func normalizeBlockText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
