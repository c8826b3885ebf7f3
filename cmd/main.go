package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/english-practice-api/api"
	"github.com/fyerfyer/english-practice-api/api/handler"
	"github.com/fyerfyer/english-practice-api/api/middleware"
	appconfig "github.com/fyerfyer/english-practice-api/config"
	"github.com/fyerfyer/english-practice-api/internal/article"
	"github.com/fyerfyer/english-practice-api/internal/fetcher"
	"github.com/fyerfyer/english-practice-api/internal/llm"
	"github.com/fyerfyer/english-practice-api/internal/services"
	"github.com/fyerfyer/english-practice-api/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// 解析命令行参数，命令行的值优先于配置文件
	configFile := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	mode := flag.String("mode", "", "Run mode: debug or release (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug/info/warn/error (overrides config)")
	flag.Parse()

	// 加载配置
	cfg, err := appconfig.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化日志
	logger := setupLogger(cfg.Logging)
	logger.Info("Starting English Practice API...")

	// 创建大语言模型客户端
	// 缺少API密钥属于配置错误，启动时直接失败
	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// 创建导入文件存储
	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 组装文章处理服务
	chunker := article.NewChunker(article.ChunkerConfig{
		MinWords: cfg.Article.MinWords,
		MaxWords: cfg.Article.MaxWords,
	})

	generator := article.NewGenerator(llmClient, article.NewPromptBuilder(),
		article.WithMaxRetries(cfg.Article.MaxRetries),
		article.WithMaxTokens(cfg.LLM.MaxTokens),
		article.WithSummaryMaxTokens(cfg.LLM.SummaryMaxTokens),
	)

	webFetcher := fetcher.NewFetcher(
		fetcher.WithTimeout(cfg.Fetcher.Timeout),
		fetcher.WithUserAgent(cfg.Fetcher.UserAgent),
	)

	articleService := services.NewArticleService(
		webFetcher,
		chunker,
		generator,
		services.WithArticleLogger(logger),
	)

	// 初始化API处理器
	articleHandler := handler.NewArticleHandler(articleService)
	docHandler := handler.NewDocumentHandler(fileStorage)

	// 设置路由
	r := api.SetupRouter(articleHandler, docHandler)

	// 启动HTTP服务器
	// 整篇文章会逐段调用模型，写超时要足够宽
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	// 优雅关闭
	go func() {
		// 启动服务
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LoggingConfig) *logrus.Logger {
	logger := middleware.GetLogger()

	// 设置日志级别
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 配置了日志文件时使用滚动输出
	if cfg.File != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	return logger
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg *appconfig.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("missing Anthropic API key: set ANTHROPIC_API_KEY or llm.api_key")
	}

	return llm.NewClient("anthropic",
		llm.WithAPIKey(cfg.LLM.APIKey),
		llm.WithModel(cfg.LLM.Model),
		llm.WithBaseURL(cfg.LLM.Endpoint),
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	)
}

// setupStorage 设置导入文件存储
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type: cfg.Storage.Type,
		Local: storage.LocalConfig{
			Path: cfg.Storage.Path,
		},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		},
	})
}
