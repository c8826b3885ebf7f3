package article

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSummaryPrompt 测试摘要提示词的构建
func TestSummaryPrompt(t *testing.T) {
	builder := NewPromptBuilder()

	t.Run("article embedded", func(t *testing.T) {
		prompt := builder.SummaryPrompt("GlobalWarming is changing coastal cities.")

		assert.Contains(t, prompt, "GlobalWarming is changing coastal cities.")
		assert.Contains(t, prompt, "3-5 key points")
		assert.Contains(t, prompt, "ONLY the bullet points")
		assert.NotContains(t, prompt, "{{.Article}}", "模板变量必须被替换")
		assert.NotContains(t, prompt, "[Article truncated for length]")
	})

	t.Run("long article truncated", func(t *testing.T) {
		article := strings.Repeat("word ", 2000) // 10000字符

		prompt := builder.SummaryPrompt(article)
		assert.Contains(t, prompt, "[Article truncated for length]")
		assert.Less(t, len(prompt), len(article), "截断后的提示词应该比原文短")
	})
}

// TestParagraphPrompt 测试段落提示词的构建
func TestParagraphPrompt(t *testing.T) {
	builder := NewPromptBuilder()

	t.Run("paragraph embedded", func(t *testing.T) {
		prompt := builder.ParagraphPrompt("The quick brown fox jumps over the lazy dog.")

		assert.Contains(t, prompt, "The quick brown fox jumps over the lazy dog.")
		assert.Contains(t, prompt, `"translation"`)
		assert.Contains(t, prompt, `"simpleSummary"`)
		assert.Contains(t, prompt, `"simpleSummaryTranslation"`)
		assert.Contains(t, prompt, `"questions"`)
		assert.Contains(t, prompt, "Traditional Chinese")
		assert.Contains(t, prompt, "Return ONLY valid JSON")
		assert.NotContains(t, prompt, "{{.Paragraph}}", "模板变量必须被替换")
	})

	t.Run("long paragraph truncated with ellipsis", func(t *testing.T) {
		paragraph := strings.Repeat("x", 2500)

		prompt := builder.ParagraphPrompt(paragraph)
		assert.Contains(t, prompt, strings.Repeat("x", 2000)+"...")
		assert.NotContains(t, prompt, strings.Repeat("x", 2001))
	})

	t.Run("multibyte text truncated on rune boundary", func(t *testing.T) {
		paragraph := strings.Repeat("學", 2100)

		prompt := builder.ParagraphPrompt(paragraph)
		assert.True(t, utf8.ValidString(prompt), "截断不能破坏多字节字符")
		assert.Contains(t, prompt, strings.Repeat("學", 2000)+"...")
	})
}

// TestPromptBuilderOptions 测试提示词配置选项
func TestPromptBuilderOptions(t *testing.T) {
	t.Run("custom limits", func(t *testing.T) {
		builder := NewPromptBuilder(
			WithMaxArticleChars(10),
			WithMaxParagraphChars(5),
		)

		summary := builder.SummaryPrompt("0123456789ABC")
		assert.Contains(t, summary, "0123456789"+"\n\n[Article truncated for length]")

		paragraph := builder.ParagraphPrompt("0123456789")
		assert.Contains(t, paragraph, "01234...")
	})

	t.Run("custom templates", func(t *testing.T) {
		builder := NewPromptBuilder(
			WithSummaryTemplate("Summarize: {{.Article}}"),
			WithParagraphTemplate("Analyze: {{.Paragraph}}"),
		)

		assert.Equal(t, "Summarize: hello", builder.SummaryPrompt("hello"))
		assert.Equal(t, "Analyze: world", builder.ParagraphPrompt("world"))
	})

	t.Run("defaults", func(t *testing.T) {
		config := DefaultPromptConfig()
		require.NotNil(t, config)
		assert.Equal(t, 8000, config.MaxArticleChars)
		assert.Equal(t, 2000, config.MaxParagraphChars)
		assert.Equal(t, SummaryPromptTemplate, config.SummaryTemplate)
		assert.Equal(t, ParagraphPromptTemplate, config.ParagraphTemplate)
	})
}

// TestSystemPrompts 测试系统指令常量
func TestSystemPrompts(t *testing.T) {
	assert.Contains(t, SummarySystemPrompt, "English learning assistant")
	assert.Contains(t, ParagraphSystemPrompt, "valid JSON format")
}
