package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/english-practice-api/internal/article"
	"github.com/fyerfyer/english-practice-api/internal/fetcher"
)

// ArticleService 文章学习内容服务
// 负责编排网页抓取、文章分块、摘要和逐段学习内容生成
type ArticleService struct {
	fetcher   *fetcher.Fetcher   // 网页抓取器
	chunker   *article.Chunker   // 文章分块器
	generator *article.Generator // 学习内容生成器
	logger    *logrus.Logger     // 日志记录器
}

// ArticleOption 文章服务配置选项
type ArticleOption func(*ArticleService)

// NewArticleService 创建文章服务实例
func NewArticleService(fetcher *fetcher.Fetcher, chunker *article.Chunker, generator *article.Generator, opts ...ArticleOption) *ArticleService {
	// 创建服务实例
	service := &ArticleService{
		fetcher:   fetcher,
		chunker:   chunker,
		generator: generator,
		logger:    logrus.New(),
	}

	// 应用配置选项
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithArticleLogger 设置日志记录器
func WithArticleLogger(logger *logrus.Logger) ArticleOption {
	return func(s *ArticleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// FetchArticle 抓取URL并提取文章正文和标题
func (s *ArticleService) FetchArticle(ctx context.Context, url string) (*fetcher.Result, error) {
	if url == "" {
		return nil, errors.New("url cannot be empty")
	}

	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.WithError(err).WithField("url", url).Error("Failed to fetch article")
		return nil, fmt.Errorf("failed to fetch article: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"url":   url,
		"title": result.Title,
		"chars": len(result.Content),
	}).Info("Article fetched")

	return result, nil
}

// Summarize 生成全文要点摘要
func (s *ArticleService) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("article text cannot be empty")
	}

	summary, err := s.generator.Summarize(ctx, text)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate article summary")
		return "", fmt.Errorf("failed to generate article summary: %w", err)
	}

	return summary, nil
}

// GenerateParagraph 为单个段落生成学习内容
// 模型输出无法解析时生成器内部重试并最终回退，只有模型调用失败才返回错误
func (s *ArticleService) GenerateParagraph(ctx context.Context, paragraph string, index int) (*article.ParagraphContent, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, errors.New("paragraph text cannot be empty")
	}

	content, err := s.generator.Generate(ctx, paragraph, index)
	if err != nil {
		s.logger.WithError(err).WithField("index", index).Error("Failed to generate paragraph content")
		return nil, fmt.Errorf("failed to generate paragraph content: %w", err)
	}

	return content, nil
}

// ProcessArticle 处理整篇文章：生成摘要、分块、逐段生成学习内容。
// 摘要生成失败中止整个处理；单个段落失败以回退内容代替，不影响其余段落。
func (s *ArticleService) ProcessArticle(ctx context.Context, text string) (*article.ArticleResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("article text cannot be empty")
	}

	startTime := time.Now()

	summary, err := s.generator.Summarize(ctx, text)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate article summary")
		return nil, fmt.Errorf("failed to generate article summary: %w", err)
	}

	chunks := s.chunker.Chunk(text)
	s.logger.WithField("paragraphs", len(chunks)).Info("Article split into paragraphs")

	// 严格按原文顺序逐段处理
	paragraphs := make([]article.ParagraphContent, 0, len(chunks))
	for i, chunk := range chunks {
		index := i + 1

		content, err := s.generator.Generate(ctx, chunk, index)
		if err != nil {
			// 单个段落的模型调用失败不中断整篇处理，改用回退内容
			s.logger.WithError(err).WithField("index", index).Warn("Paragraph generation failed, using fallback content")
			content = article.FallbackContent(chunk, index)
		}

		paragraphs = append(paragraphs, *content)
	}

	s.logger.WithFields(logrus.Fields{
		"paragraphs": len(paragraphs),
		"elapsed":    time.Since(startTime).String(),
	}).Info("Article processed")

	return &article.ArticleResult{
		Summary:    summary,
		Paragraphs: paragraphs,
	}, nil
}
