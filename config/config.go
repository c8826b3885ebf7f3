package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Article ArticleConfig `mapstructure:"article"`
	Fetcher FetcherConfig `mapstructure:"fetcher"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
	Mode string `mapstructure:"mode"` // gin运行模式：debug 或 release
}

// StorageConfig 导入文件存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Model            string        `mapstructure:"model"`              // 模型名称
	APIKey           string        `mapstructure:"api_key"`            // API密钥
	Endpoint         string        `mapstructure:"endpoint"`           // API端点
	Timeout          time.Duration `mapstructure:"timeout"`            // 请求超时时间
	MaxTokens        int           `mapstructure:"max_tokens"`         // 段落生成最大token数
	SummaryMaxTokens int           `mapstructure:"summary_max_tokens"` // 摘要生成最大token数
}

// ArticleConfig 文章处理配置
type ArticleConfig struct {
	MinWords   int `mapstructure:"min_words"`   // 段落分块词数下限
	MaxWords   int `mapstructure:"max_words"`   // 段落分块词数上限
	MaxRetries int `mapstructure:"max_retries"` // 模型输出无法解析时的重试次数
}

// FetcherConfig 网页抓取配置
type FetcherConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`    // 抓取超时时间
	UserAgent string        `mapstructure:"user_agent"` // 请求User-Agent
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	File       string `mapstructure:"file"`         // 日志文件路径，为空时输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件上限(MB)
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 日志保留天数
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 存在.env文件时先加载
	_ = godotenv.Load()

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，创建一个默认配置文件
		if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
			// 创建默认配置文件
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 处理配置项中的环境变量
	resConfig := processEnvironmentVariables(&config)

	return resConfig, nil
}

// processEnvironmentVariables 处理配置项中的环境变量引用和约定的环境变量
func processEnvironmentVariables(cfg *Config) *Config {
	// 处理${VAR}形式的LLM API密钥
	if strings.HasPrefix(cfg.LLM.APIKey, "${") && strings.HasSuffix(cfg.LLM.APIKey, "}") {
		envVar := cfg.LLM.APIKey[2 : len(cfg.LLM.APIKey)-1]
		cfg.LLM.APIKey = os.Getenv(envVar)
	}

	// 配置中没有密钥时回退到约定的环境变量
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	// CLAUDE_MODEL环境变量优先于配置文件
	if model := os.Getenv("CLAUDE_MODEL"); model != "" {
		cfg.LLM.Model = model
	}

	return cfg
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "articles")
	v.SetDefault("storage.use_ssl", false)

	// LLM默认配置
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.endpoint", "https://api.anthropic.com/v1/messages")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.summary_max_tokens", 1024)

	// 文章处理默认配置
	v.SetDefault("article.min_words", 50)
	v.SetDefault("article.max_words", 150)
	v.SetDefault("article.max_retries", 2)

	// 抓取默认配置
	v.SetDefault("fetcher.timeout", "30s")
	v.SetDefault("fetcher.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	// 日志默认配置
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}
