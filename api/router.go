package api

import (
	"os"
	"time"

	"github.com/fyerfyer/english-practice-api/api/handler"
	"github.com/fyerfyer/english-practice-api/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	articleHandler *handler.ArticleHandler,
	docHandler *handler.DocumentHandler,
) *gin.Engine {
	// 创建默认的Gin路由引擎
	router := gin.Default()

	// 跨域放开给任意前端调用
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Trace-ID")
	router.Use(cors.New(corsConfig))

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	// 创建API分组
	api := router.Group("/api")
	{
		// 文章处理API
		articleGroup := api.Group("/articles")
		{
			// 抓取URL正文 - POST /api/articles/fetch-url
			articleGroup.POST("/fetch-url", articleHandler.FetchURL)

			// 生成全文摘要 - POST /api/articles/generate-summary
			articleGroup.POST("/generate-summary", articleHandler.GenerateSummary)

			// 生成段落学习内容 - POST /api/articles/generate-paragraph-content
			articleGroup.POST("/generate-paragraph-content", articleHandler.GenerateParagraphContent)

			// 处理整篇文章 - POST /api/articles/process-article
			articleGroup.POST("/process-article", articleHandler.ProcessArticle)

			// 导入文章文件 - POST /api/articles/extract-file
			articleGroup.POST("/extract-file", docHandler.ExtractFile)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
	}

	// 静态前端目录存在时挂载
	if _, err := os.Stat("./static"); err == nil {
		router.Static("/static", "./static")
	}

	return router
}
