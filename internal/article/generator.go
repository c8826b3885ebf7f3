package article

import (
	"context"
	"fmt"

	"github.com/fyerfyer/english-practice-api/internal/llm"
)

// questionCount 每个段落固定的讨论问题数量
const questionCount = 3

// 重试耗尽时使用的固定回退文案
const (
	fallbackTranslation        = "（翻譯暫時無法使用，請稍後再試。）"
	fallbackSimpleSummary      = "This paragraph could not be analyzed automatically. Please read the original text above."
	fallbackSummaryTranslation = "（本段落暫時無法自動分析，請閱讀上方原文。）"
)

// GeneratorConfig 段落内容生成器配置
type GeneratorConfig struct {
	MaxRetries       int // 解析或校验失败后的额外重试次数
	MaxTokens        int // 段落内容生成的token上限
	SummaryMaxTokens int // 全文摘要生成的token上限
}

// DefaultGeneratorConfig 返回默认生成器配置
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		MaxRetries:       2,
		MaxTokens:        2048,
		SummaryMaxTokens: 1024,
	}
}

// GeneratorOption 生成器配置选项
type GeneratorOption func(*GeneratorConfig)

// WithMaxRetries 设置解析失败后的重试次数
func WithMaxRetries(maxRetries int) GeneratorOption {
	return func(c *GeneratorConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithMaxTokens 设置段落内容生成的token上限
func WithMaxTokens(maxTokens int) GeneratorOption {
	return func(c *GeneratorConfig) {
		c.MaxTokens = maxTokens
	}
}

// WithSummaryMaxTokens 设置摘要生成的token上限
func WithSummaryMaxTokens(maxTokens int) GeneratorOption {
	return func(c *GeneratorConfig) {
		c.SummaryMaxTokens = maxTokens
	}
}

// Generator 段落学习内容生成器，调用模型并解析校验其输出
type Generator struct {
	client  llm.Client
	prompts *PromptBuilder
	config  *GeneratorConfig
}

// NewGenerator 创建段落内容生成器
func NewGenerator(client llm.Client, prompts *PromptBuilder, opts ...GeneratorOption) *Generator {
	config := DefaultGeneratorConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Generator{
		client:  client,
		prompts: prompts,
		config:  config,
	}
}

// attemptOutcome 单次生成尝试的结果类型
type attemptOutcome int

const (
	attemptSuccess attemptOutcome = iota
	attemptParseFailure
	attemptValidationFailure
	attemptTransportFailure
)

// attemptResult 单次生成尝试的结果，重试循环据此决定下一步
type attemptResult struct {
	outcome attemptOutcome
	content *ParagraphContent
	err     error
}

// Summarize 生成全文要点摘要，模型调用失败返回GenerationError
func (g *Generator) Summarize(ctx context.Context, text string) (string, error) {
	prompt := g.prompts.SummaryPrompt(text)

	resp, err := g.client.Generate(ctx, prompt,
		llm.WithGenerateSystem(SummarySystemPrompt),
		llm.WithGenerateMaxTokens(g.config.SummaryMaxTokens))
	if err != nil {
		return "", NewGenerationError("summary", err)
	}

	return resp.Text, nil
}

// Generate 为单个段落生成学习内容。
// 解析或校验失败按配置重试，重试耗尽后返回固定回退内容；
// 模型调用本身失败立即返回GenerationError，不做重试。
func (g *Generator) Generate(ctx context.Context, paragraph string, index int) (*ParagraphContent, error) {
	prompt := g.prompts.ParagraphPrompt(paragraph)

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		result := g.attempt(ctx, prompt, paragraph, index)
		switch result.outcome {
		case attemptSuccess:
			return result.content, nil
		case attemptTransportFailure:
			return nil, NewGenerationError("paragraph", result.err)
		case attemptParseFailure, attemptValidationFailure:
			// 输出格式问题重试可能解决，进入下一轮
		}
	}

	return FallbackContent(paragraph, index), nil
}

// attempt 执行单次生成尝试：调用模型、解析响应、校验结构
func (g *Generator) attempt(ctx context.Context, prompt, paragraph string, index int) attemptResult {
	resp, err := g.client.Generate(ctx, prompt,
		llm.WithGenerateSystem(ParagraphSystemPrompt),
		llm.WithGenerateMaxTokens(g.config.MaxTokens))
	if err != nil {
		return attemptResult{outcome: attemptTransportFailure, err: err}
	}

	fields, err := ParseJSONObject(resp.Text)
	if err != nil {
		return attemptResult{outcome: attemptParseFailure, err: err}
	}

	content, err := buildParagraphContent(fields, paragraph, index)
	if err != nil {
		return attemptResult{outcome: attemptValidationFailure, err: err}
	}

	return attemptResult{outcome: attemptSuccess, content: content}
}

// buildParagraphContent 从解析出的字段逐项构造段落内容，缺失或类型错误返回ValidationError
func buildParagraphContent(fields map[string]interface{}, paragraph string, index int) (*ParagraphContent, error) {
	translation, err := stringField(fields, "translation")
	if err != nil {
		return nil, err
	}

	simpleSummary, err := stringField(fields, "simpleSummary")
	if err != nil {
		return nil, err
	}

	simpleSummaryTranslation, err := stringField(fields, "simpleSummaryTranslation")
	if err != nil {
		return nil, err
	}

	questions, err := questionFields(fields)
	if err != nil {
		return nil, err
	}

	return &ParagraphContent{
		Index:                    index,
		Original:                 paragraph,
		Translation:              translation,
		SimpleSummary:            simpleSummary,
		SimpleSummaryTranslation: simpleSummaryTranslation,
		Questions:                questions,
	}, nil
}

// stringField 取出指定的字符串字段
func stringField(fields map[string]interface{}, key string) (string, error) {
	value, ok := fields[key]
	if !ok {
		return "", NewValidationError("missing field: " + key)
	}

	text, ok := value.(string)
	if !ok {
		return "", NewValidationError("field is not a string: " + key)
	}

	return text, nil
}

// questionFields 取出并校验讨论问题列表，多余的问题截断，只保留前3个
func questionFields(fields map[string]interface{}) ([]Question, error) {
	value, ok := fields["questions"]
	if !ok {
		return nil, NewValidationError("missing field: questions")
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, NewValidationError("field is not an array: questions")
	}

	if len(items) < questionCount {
		return nil, NewValidationError(fmt.Sprintf("expected at least %d questions, got %d", questionCount, len(items)))
	}

	questions := make([]Question, 0, questionCount)
	for i, item := range items[:questionCount] {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, NewValidationError(fmt.Sprintf("question %d is not an object", i+1))
		}

		question := Question{}
		if question.Question, ok = entry["question"].(string); !ok {
			return nil, NewValidationError(fmt.Sprintf("question %d: missing or invalid field: question", i+1))
		}
		if question.QuestionTranslation, ok = entry["questionTranslation"].(string); !ok {
			return nil, NewValidationError(fmt.Sprintf("question %d: missing or invalid field: questionTranslation", i+1))
		}
		if question.Answer, ok = entry["answer"].(string); !ok {
			return nil, NewValidationError(fmt.Sprintf("question %d: missing or invalid field: answer", i+1))
		}
		if question.AnswerTranslation, ok = entry["answerTranslation"].(string); !ok {
			return nil, NewValidationError(fmt.Sprintf("question %d: missing or invalid field: answerTranslation", i+1))
		}

		questions = append(questions, question)
	}

	return questions, nil
}

// FallbackContent 构造固定的占位段落内容，保留原文和序号。
// 重试全部耗尽时使用，保证处理结果始终是完整结构。
func FallbackContent(paragraph string, index int) *ParagraphContent {
	return &ParagraphContent{
		Index:                    index,
		Original:                 paragraph,
		Translation:              fallbackTranslation,
		SimpleSummary:            fallbackSimpleSummary,
		SimpleSummaryTranslation: fallbackSummaryTranslation,
		Questions: []Question{
			{
				Question:            "What is the main idea of this paragraph?",
				QuestionTranslation: "這段文字的主要想法是什麼？",
				Answer:              "The main idea is described in the original text above. Try to find the key sentence.",
				AnswerTranslation:   "主要想法在上方原文中。試著找出關鍵句子。",
			},
			{
				Question:            "Which words in this paragraph are new to you?",
				QuestionTranslation: "這段文字中哪些單字對你來說是新的？",
				Answer:              "Pick two or three unfamiliar words and look them up in a dictionary.",
				AnswerTranslation:   "挑出兩三個不熟悉的單字，查字典了解它們的意思。",
			},
			{
				Question:            "Can you say the same thing in your own words?",
				QuestionTranslation: "你能用自己的話說出相同的內容嗎？",
				Answer:              "Try to explain the paragraph in one or two simple sentences.",
				AnswerTranslation:   "試著用一兩個簡單的句子解釋這段文字。",
			},
		},
	}
}
