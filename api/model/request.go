package model

import (
	"mime/multipart"
)

// FetchURLRequest 抓取文章URL请求
type FetchURLRequest struct {
	URL string `json:"url" binding:"required,url"` // 文章页面地址
}

// GenerateSummaryRequest 全文摘要生成请求
type GenerateSummaryRequest struct {
	Article string `json:"article" binding:"required"` // 文章全文
}

// GenerateParagraphRequest 段落学习内容生成请求
type GenerateParagraphRequest struct {
	Paragraph string `json:"paragraph" binding:"required"`   // 段落原文
	Index     int    `json:"index" binding:"required,min=1"` // 段落序号，从1开始
}

// ProcessArticleRequest 整篇文章处理请求
// article与url至少填一个，两者都有时以article为准
type ProcessArticleRequest struct {
	Article string `json:"article" binding:"omitempty"` // 文章全文
	URL     string `json:"url" binding:"omitempty,url"` // 文章页面地址
}

// ExtractFileRequest 文章文件导入请求
type ExtractFileRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 上传的文章文件
}
