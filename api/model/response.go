package model

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// FetchURLResponse URL抓取响应
type FetchURLResponse struct {
	Content string `json:"content"`         // 清洗后的正文文本
	Title   string `json:"title,omitempty"` // 页面标题，可能为空
}

// SummaryResponse 全文摘要响应
type SummaryResponse struct {
	Summary string `json:"summary"` // 要点式摘要文本
}

// ExtractFileResponse 文章文件导入响应
type ExtractFileResponse struct {
	Content string `json:"content"` // 提取出的正文文本
	Title   string `json:"title"`   // 原始文件名(去扩展名)
}
