package handler

import (
	"net/http"
	"strings"

	"github.com/fyerfyer/english-practice-api/api/middleware"
	"github.com/fyerfyer/english-practice-api/api/model"
	"github.com/fyerfyer/english-practice-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ArticleHandler 处理文章学习内容相关的API请求
type ArticleHandler struct {
	articleService *services.ArticleService // 文章处理服务
	logger         *logrus.Logger           // 日志记录器
}

// NewArticleHandler 创建新的文章处理器
func NewArticleHandler(articleService *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         middleware.GetLogger(),
	}
}

// FetchURL 抓取文章页面并提取正文
// POST /api/articles/fetch-url
func (h *ArticleHandler) FetchURL(c *gin.Context) {
	// 绑定请求参数
	var req model.FetchURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid fetch-url request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	ctx := c.Request.Context()

	h.logger.WithField("url", req.URL).Info("Fetching article URL")

	result, err := h.articleService.FetchArticle(ctx, req.URL)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"url":   req.URL,
		}).Warn("Failed to fetch article URL")

		middleware.HandleError(c, err)
		return
	}

	// 构建响应
	resp := model.FetchURLResponse{
		Content: result.Content,
		Title:   result.Title,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GenerateSummary 生成全文要点摘要
// POST /api/articles/generate-summary
func (h *ArticleHandler) GenerateSummary(c *gin.Context) {
	// 绑定请求参数
	var req model.GenerateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid generate-summary request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	ctx := c.Request.Context()

	h.logger.WithField("chars", len(req.Article)).Info("Generating article summary")

	summary, err := h.articleService.Summarize(ctx, req.Article)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to generate summary")

		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SummaryResponse{
		Summary: summary,
	}))
}

// GenerateParagraphContent 生成单个段落的学习内容
// POST /api/articles/generate-paragraph-content
func (h *ArticleHandler) GenerateParagraphContent(c *gin.Context) {
	// 绑定请求参数
	var req model.GenerateParagraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid generate-paragraph request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	ctx := c.Request.Context()

	h.logger.WithField("index", req.Index).Info("Generating paragraph content")

	content, err := h.articleService.GenerateParagraph(ctx, req.Paragraph, req.Index)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"index": req.Index,
		}).Error("Failed to generate paragraph content")

		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(content))
}

// ProcessArticle 处理整篇文章，产出摘要和逐段学习内容
// POST /api/articles/process-article
func (h *ArticleHandler) ProcessArticle(c *gin.Context) {
	// 绑定请求参数
	var req model.ProcessArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid process-article request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	// article与url至少要有一个
	text := strings.TrimSpace(req.Article)
	if text == "" && req.URL == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"article和url至少需要提供一个",
		))
		return
	}

	ctx := c.Request.Context()

	// 只给了URL时先抓取正文
	if text == "" {
		h.logger.WithField("url", req.URL).Info("Processing article from URL")

		fetched, err := h.articleService.FetchArticle(ctx, req.URL)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"error": err.Error(),
				"url":   req.URL,
			}).Warn("Failed to fetch article for processing")

			middleware.HandleError(c, err)
			return
		}
		text = fetched.Content
	}

	result, err := h.articleService.ProcessArticle(ctx, text)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to process article")

		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}
