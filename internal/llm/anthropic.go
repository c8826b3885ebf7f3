package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// Anthropic Messages API端点
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"

	// API版本号，通过anthropic-version请求头发送
	anthropicVersion = "2023-06-01"

	// max_tokens为必填字段，未配置时使用该值
	fallbackMaxTokens = 1024
)

// AnthropicClient Anthropic大模型客户端实现
type AnthropicClient struct {
	apiKey      string       // API密钥
	baseURL     string       // API端点
	model       string       // 模型名称
	httpClient  *http.Client // HTTP客户端
	maxRetries  int          // 最大重试次数
	maxTokens   int          // 最大生成Token数
	temperature float32      // 温度参数
	topP        float32      // topP参数
}

// NewAnthropicClient 创建新的Anthropic大模型客户端
func NewAnthropicClient(opts ...Option) (Client, error) {
	// 创建配置
	cfg := NewConfig(opts...)

	// 验证API密钥
	if cfg.APIKey == "" {
		return nil, NewLLMError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	// 确定API端点
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicEndpoint
	}

	// 创建HTTP客户端，设置超时
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	client := &AnthropicClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		httpClient:  httpClient,
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}

	return client, nil
}

// Name 返回模型名称
func (c *AnthropicClient) Name() string {
	return c.model
}

// Generate 根据提示词生成回答
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	// 应用生成选项
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	// 将单个提示转换为消息格式进行调用
	var messages []Message
	if opts.System != "" {
		messages = append(messages, Message{
			Role:    RoleSystem,
			Content: opts.System,
		})
	}
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: prompt,
	})

	// 转换GenerateOptions为ChatOptions
	var chatOpts []ChatOption
	if opts.MaxTokens != nil {
		chatOpts = append(chatOpts, WithChatMaxTokens(*opts.MaxTokens))
	}
	if opts.Temperature != nil {
		chatOpts = append(chatOpts, WithChatTemperature(*opts.Temperature))
	}
	if opts.TopP != nil {
		chatOpts = append(chatOpts, WithChatTopP(*opts.TopP))
	}
	if opts.TopK != nil {
		chatOpts = append(chatOpts, WithChatTopK(*opts.TopK))
	}

	// 复用Chat方法
	return c.Chat(ctx, messages, chatOpts...)
}

// Chat 进行多轮对话
// 消息列表中的system消息会被提取为请求的system字段
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	// 应用选项
	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	// 拆分system消息，Messages API要求system作为顶层字段传递
	var systemParts []string
	var chatMessages []AnthropicMessage
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, AnthropicMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	if len(chatMessages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages must contain at least one user message")
	}

	// 确定max_tokens，该字段为API必填项
	maxTokens := fallbackMaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	} else if c.maxTokens > 0 {
		maxTokens = c.maxTokens
	}

	// 创建请求
	req := &AnthropicRequest{
		Model:     c.model,
		System:    strings.Join(systemParts, "\n"),
		Messages:  chatMessages,
		MaxTokens: maxTokens,
	}

	// 如果提供了选项，则使用
	if opts.Temperature != nil {
		req.Temperature = opts.Temperature
	} else if c.temperature > 0 {
		temp := c.temperature
		req.Temperature = &temp
	}

	if opts.TopP != nil {
		req.TopP = opts.TopP
	} else if c.topP > 0 {
		topP := c.topP
		req.TopP = &topP
	}

	if opts.TopK != nil {
		req.TopK = opts.TopK
	}

	// 发送请求
	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	// 解析响应
	return c.processResponse(resp)
}

// sendRequest 发送API请求并解析响应
func (c *AnthropicClient) sendRequest(ctx context.Context, req *AnthropicRequest) (*AnthropicResponse, error) {
	// 将请求数据转换为JSON
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	// 使用重试机制发送请求
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避重试
			select {
			case <-ctx.Done():
				return nil, NewLLMError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
				// 等待后继续
			}
		}

		// 每次尝试都重新创建请求，避免请求体被上次读取耗尽
		httpReq, reqErr := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL,
			bytes.NewReader(jsonData),
		)
		if reqErr != nil {
			return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", reqErr))
		}

		// 设置请求头
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)
		httpReq.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			// 成功或客户端错误，不需要重试；429和5xx重试
			break
		}

		if err != nil {
			lastErr = err
		} else if attempt < c.maxRetries {
			// 还会重试，关闭本次响应体避免泄露；最后一次留给后续读取
			resp.Body.Close()
		}
	}

	if err != nil {
		return nil, NewLLMError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	// 读取响应体
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	// 解析JSON响应
	var apiResp AnthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, NewLLMError(ErrCodeServerError,
				fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
		}
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("failed to parse response: %v", err))
	}

	// 检查API返回的错误
	if apiResp.Type == "error" || apiResp.Error != nil {
		if apiResp.Error != nil {
			return nil, NewLLMError(errorCodeForAPIType(apiResp.Error.Type),
				fmt.Sprintf("API error: %s (%s)", apiResp.Error.Message, apiResp.Error.Type))
		}
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	return &apiResp, nil
}

// processResponse 处理Anthropic的响应
func (c *AnthropicClient) processResponse(resp *AnthropicResponse) (*Response, error) {
	result := &Response{
		ModelName:  c.model,
		TokenCount: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		FinishTime: time.Now(),
	}
	if resp.Model != "" {
		result.ModelName = resp.Model
	}

	// 拼接文本内容块
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	result.Text = sb.String()

	if result.Text == "" {
		return nil, NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	result.Messages = append(result.Messages, Message{
		Role:    RoleAssistant,
		Content: result.Text,
	})

	return result, nil
}

// 在包初始化时注册Anthropic客户端
func init() {
	RegisterClient("anthropic", NewAnthropicClient)
}
