package article

import "fmt"

// parseErrorSnippetLen 解析错误中保留的原始响应长度
const parseErrorSnippetLen = 200

// ParseError 模型响应无法解析为JSON对象
type ParseError struct {
	Snippet string // 原始响应的前200个字符
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %s", e.Snippet)
}

// NewParseError 创建解析错误，截取响应开头便于排查
func NewParseError(raw string) *ParseError {
	runes := []rune(raw)
	if len(runes) > parseErrorSnippetLen {
		runes = runes[:parseErrorSnippetLen]
	}

	return &ParseError{Snippet: string(runes)}
}

// ValidationError 解析成功但内容结构不完整
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model response failed validation: %s", e.Reason)
}

// NewValidationError 创建结构校验错误
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// GenerationError 调用模型失败，无法获取响应
type GenerationError struct {
	Stage string // 失败阶段，如 summary、paragraph
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("content generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError 创建生成错误
func NewGenerationError(stage string, err error) *GenerationError {
	return &GenerationError{Stage: stage, Err: err}
}
