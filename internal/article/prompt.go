package article

import (
	"strings"
)

// SummaryPromptTemplate 全文摘要提示词模板
// 包含变量：
// {{.Article}} - 文章全文
const SummaryPromptTemplate = `Please read the following article and create a summary with 3-5 key points. Use simple English vocabulary that intermediate learners can understand.

Format your response as a bullet point list, with each point being 1-2 sentences.

Article:
{{.Article}}

Respond with ONLY the bullet points, no additional text.`

// ParagraphPromptTemplate 段落学习内容提示词模板
// 包含变量：
// {{.Paragraph}} - 段落原文
const ParagraphPromptTemplate = `Analyze this paragraph and create learning content in JSON format:

Paragraph:
{{.Paragraph}}

Create a JSON response with exactly this structure:
{
  "translation": "中文翻譯 (translate the paragraph to Traditional Chinese)",
  "simpleSummary": "A simple English summary using basic vocabulary (2-3 sentences)",
  "simpleSummaryTranslation": "簡單英文總結的中文翻譯",
  "questions": [
    {
      "question": "Discussion question in English",
      "questionTranslation": "問題的中文翻譯",
      "answer": "Sample answer in English (2-3 sentences)",
      "answerTranslation": "答案的中文翻譯"
    },
    {
      "question": "Second question in English",
      "questionTranslation": "第二個問題的中文翻譯",
      "answer": "Sample answer in English",
      "answerTranslation": "答案的中文翻譯"
    },
    {
      "question": "Third question in English",
      "questionTranslation": "第三個問題的中文翻譯",
      "answer": "Sample answer in English",
      "answerTranslation": "答案的中文翻譯"
    }
  ]
}

Important:
- Use simple, clear English for the summary and questions
- Questions should encourage discussion and thinking
- Provide helpful sample answers that use vocabulary from the paragraph
- All translations should be in Traditional Chinese
- Return ONLY valid JSON, no markdown formatting`

// 系统指令，约束模型的身份和输出格式
const (
	// SummarySystemPrompt 摘要生成的系统指令
	SummarySystemPrompt = "You are an English learning assistant. Create summaries using simple, easy-to-understand vocabulary suitable for intermediate English learners."

	// ParagraphSystemPrompt 段落内容生成的系统指令
	ParagraphSystemPrompt = "You are an English learning assistant helping intermediate learners understand English articles. Always respond in valid JSON format."
)

// 输入截断标记
const (
	articleTruncationMarker   = "\n\n[Article truncated for length]"
	paragraphTruncationMarker = "..."
)

// PromptConfig 提示词构建配置
type PromptConfig struct {
	SummaryTemplate   string // 摘要提示词模板
	ParagraphTemplate string // 段落提示词模板
	MaxArticleChars   int    // 摘要输入的字符预算
	MaxParagraphChars int    // 段落输入的字符预算
}

// DefaultPromptConfig 返回默认提示词配置
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		SummaryTemplate:   SummaryPromptTemplate,
		ParagraphTemplate: ParagraphPromptTemplate,
		MaxArticleChars:   8000,
		MaxParagraphChars: 2000,
	}
}

// PromptBuilder 构建大模型提示词
type PromptBuilder struct {
	config *PromptConfig
}

// PromptOption 提示词配置选项函数类型
type PromptOption func(*PromptConfig)

// WithSummaryTemplate 设置摘要提示词模板
func WithSummaryTemplate(template string) PromptOption {
	return func(c *PromptConfig) {
		c.SummaryTemplate = template
	}
}

// WithParagraphTemplate 设置段落提示词模板
func WithParagraphTemplate(template string) PromptOption {
	return func(c *PromptConfig) {
		c.ParagraphTemplate = template
	}
}

// WithMaxArticleChars 设置摘要输入的字符预算
func WithMaxArticleChars(limit int) PromptOption {
	return func(c *PromptConfig) {
		c.MaxArticleChars = limit
	}
}

// WithMaxParagraphChars 设置段落输入的字符预算
func WithMaxParagraphChars(limit int) PromptOption {
	return func(c *PromptConfig) {
		c.MaxParagraphChars = limit
	}
}

// NewPromptBuilder 创建新的提示词构建器
func NewPromptBuilder(opts ...PromptOption) *PromptBuilder {
	cfg := DefaultPromptConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &PromptBuilder{
		config: cfg,
	}
}

// SummaryPrompt 构建全文摘要提示词
// 超出字符预算的文章会被截断并附加可见的截断标记
func (b *PromptBuilder) SummaryPrompt(articleText string) string {
	truncated := truncateRunes(articleText, b.config.MaxArticleChars, articleTruncationMarker)
	return strings.ReplaceAll(b.config.SummaryTemplate, "{{.Article}}", truncated)
}

// ParagraphPrompt 构建段落学习内容提示词
// 超出字符预算的段落会被截断并附加省略号标记
func (b *PromptBuilder) ParagraphPrompt(paragraph string) string {
	truncated := truncateRunes(paragraph, b.config.MaxParagraphChars, paragraphTruncationMarker)
	return strings.ReplaceAll(b.config.ParagraphTemplate, "{{.Paragraph}}", truncated)
}

// truncateRunes 按字符数截断文本并附加标记，避免截断多字节字符
func truncateRunes(text string, limit int, marker string) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + marker
}
