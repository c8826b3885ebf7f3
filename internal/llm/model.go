package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色，内容会作为系统指令发送
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`    // 角色
	Content string      `json:"content"` // 内容
}

// AnthropicRequest Anthropic Messages API请求结构
type AnthropicRequest struct {
	Model         string             `json:"model"`                    // 模型名称
	System        string             `json:"system,omitempty"`         // 系统指令
	Messages      []AnthropicMessage `json:"messages"`                 // 消息列表
	MaxTokens     int                `json:"max_tokens"`               // 最大生成Token数(必填)
	Temperature   *float32           `json:"temperature,omitempty"`    // 采样温度
	TopP          *float32           `json:"top_p,omitempty"`          // 核采样概率阈值
	TopK          *int               `json:"top_k,omitempty"`          // 生成候选集大小
	StopSequences []string           `json:"stop_sequences,omitempty"` // 停止序列
}

// AnthropicMessage 请求中的单条消息，角色只能是user或assistant
type AnthropicMessage struct {
	Role    string `json:"role"`    // 角色
	Content string `json:"content"` // 内容
}

// AnthropicResponse Anthropic Messages API响应结构
type AnthropicResponse struct {
	ID           string             `json:"id"`              // 消息ID
	Type         string             `json:"type"`            // 响应类型，message或error
	Role         string             `json:"role"`            // 角色
	Model        string             `json:"model"`           // 实际使用的模型
	Content      []AnthropicContent `json:"content"`         // 内容块列表
	StopReason   string             `json:"stop_reason"`     // 结束原因
	StopSequence *string            `json:"stop_sequence"`   // 命中的停止序列(如果有)
	Usage        AnthropicUsage     `json:"usage"`           // 资源使用情况
	Error        *AnthropicAPIError `json:"error,omitempty"` // 错误信息(type为error时)
}

// AnthropicContent 响应内容块
type AnthropicContent struct {
	Type string `json:"type"` // 内容类型，通常为text
	Text string `json:"text"` // 文本内容
}

// AnthropicUsage 资源使用情况
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`  // 输入token数
	OutputTokens int `json:"output_tokens"` // 输出token数
}

// AnthropicAPIError API错误详情
type AnthropicAPIError struct {
	Type    string `json:"type"`    // 错误类型标识
	Message string `json:"message"` // 错误描述
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// Model 常用模型名称
const (
	ModelClaudeSonnet4  = "claude-sonnet-4-20250514"   // Claude Sonnet 4（平衡速度和能力）
	ModelClaudeOpus4    = "claude-opus-4-20250514"     // Claude Opus 4（高级能力，速度较慢）
	ModelClaude37Sonnet = "claude-3-7-sonnet-20250219" // Claude 3.7 Sonnet
	ModelClaude35Haiku  = "claude-3-5-haiku-20241022"  // Claude 3.5 Haiku（较快，基础能力）
)
