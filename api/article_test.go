package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fyerfyer/english-practice-api/api/handler"
	"github.com/fyerfyer/english-practice-api/api/model"
	"github.com/fyerfyer/english-practice-api/internal/article"
	"github.com/fyerfyer/english-practice-api/internal/fetcher"
	"github.com/fyerfyer/english-practice-api/internal/llm"
	"github.com/fyerfyer/english-practice-api/internal/services"
	"github.com/fyerfyer/english-practice-api/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient 按脚本顺序返回应答的LLM客户端
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (*llm.Response, error) {
	i := c.calls
	c.calls++

	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}

	reply := ""
	if i < len(c.replies) {
		reply = c.replies[i]
	}

	return &llm.Response{
		Text:       reply,
		ModelName:  "scripted-model",
		FinishTime: time.Now(),
	}, nil
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llm.Message, opts ...llm.ChatOption) (*llm.Response, error) {
	return nil, llm.NewLLMError(llm.ErrCodeInvalidRequest, "chat not scripted")
}

func (c *scriptedClient) Name() string {
	return "scripted"
}

// paragraphReply 构造一个合法的段落内容JSON应答
func paragraphReply(translation string) string {
	return fmt.Sprintf(`{
		"translation": %q,
		"simpleSummary": "A short summary.",
		"simpleSummaryTranslation": "簡短的摘要。",
		"questions": [
			{"question": "Q1?", "questionTranslation": "問題一？", "answer": "A1.", "answerTranslation": "答案一。"},
			{"question": "Q2?", "questionTranslation": "問題二？", "answer": "A2.", "answerTranslation": "答案二。"},
			{"question": "Q3?", "questionTranslation": "問題三？", "answer": "A3.", "answerTranslation": "答案三。"}
		]
	}`, translation)
}

// 测试环境配置
type testEnv struct {
	Router  *gin.Engine
	LLM     *scriptedClient
	Storage storage.Storage
}

// 创建测试环境
func setupTestEnv(t *testing.T, client *scriptedClient) *testEnv {
	// 设置测试模式
	gin.SetMode(gin.TestMode)

	// 创建临时目录作为导入文件存储
	tempDir, err := os.MkdirTemp("", "article_api_test_*")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	fileStorage, err := storage.NewLocalStorage(storage.LocalConfig{
		Path: tempDir,
	})
	require.NoError(t, err)

	// 小词数上限便于用短文本构造多段
	chunker := article.NewChunker(article.ChunkerConfig{
		MinWords: 2,
		MaxWords: 5,
	})

	generator := article.NewGenerator(client, article.NewPromptBuilder())

	articleService := services.NewArticleService(
		fetcher.NewFetcher(),
		chunker,
		generator,
	)

	// 创建API处理器
	articleHandler := handler.NewArticleHandler(articleService)
	docHandler := handler.NewDocumentHandler(fileStorage)

	// 设置路由
	router := SetupRouter(articleHandler, docHandler)

	return &testEnv{
		Router:  router,
		LLM:     client,
		Storage: fileStorage,
	}
}

// postJSON 发送JSON请求并返回响应记录器
func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResponse 解析通用响应结构
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *model.Response {
	var resp model.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return &resp
}

// serveArticlePage 启动一个返回固定HTML的测试服务器
func serveArticlePage(t *testing.T, html string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)
	return server
}

// articlePageHTML 正文长度超过内容选择器的最小字符要求
func articlePageHTML(title string) string {
	body := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 5)
	return fmt.Sprintf(`<html><head><title>%s</title></head>
		<body><nav>Menu</nav><article><p>%s</p></article></body></html>`, title, body)
}

// TestHealthEndpoint 测试健康检查接口
func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, health["time"])
}

// TestProcessArticleEndpoint 测试整篇文章处理接口
func TestProcessArticleEndpoint(t *testing.T) {
	t.Run("article text", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			replies: []string{
				"- Point one.\n- Point two.",
				paragraphReply("第一段翻譯"),
				paragraphReply("第二段翻譯"),
			},
		})

		w := postJSON(t, env.Router, "/api/articles/process-article", gin.H{
			"article": "alpha beta gamma delta\n\nepsilon zeta eta theta",
		})

		assert.Equal(t, http.StatusOK, w.Code, "请求应该成功")

		resp := decodeResponse(t, w)
		assert.Equal(t, 0, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok, "响应数据应该是对象")
		assert.Equal(t, "- Point one.\n- Point two.", data["summary"])

		paragraphs, ok := data["paragraphs"].([]interface{})
		require.True(t, ok, "paragraphs应该是数组")
		require.Len(t, paragraphs, 2, "两个自然段应该产出两个段落")

		first, ok := paragraphs[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), first["index"])
		assert.Equal(t, "alpha beta gamma delta", first["original"])
		assert.Equal(t, "第一段翻譯", first["translation"])

		second, ok := paragraphs[1].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(2), second["index"])

		assert.Equal(t, 3, env.LLM.calls, "一次摘要加两次段落生成")
	})

	t.Run("url input", func(t *testing.T) {
		server := serveArticlePage(t, articlePageHTML("Fox News"))

		env := setupTestEnv(t, &scriptedClient{
			replies: []string{
				"- Fox summary.",
				paragraphReply("狐狸段落翻譯"),
			},
		})

		w := postJSON(t, env.Router, "/api/articles/process-article", gin.H{
			"url": server.URL,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "- Fox summary.", data["summary"])

		paragraphs, ok := data["paragraphs"].([]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, paragraphs)
	})

	t.Run("missing article and url", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/process-article", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.LLM.calls, "参数校验失败不应该调用模型")
	})

	t.Run("summary transport failure aborts", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			errs: []error{llm.NewLLMError(llm.ErrCodeNetworkError, "connection refused")},
		})

		w := postJSON(t, env.Router, "/api/articles/process-article", gin.H{
			"article": "alpha beta gamma delta",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		resp := decodeResponse(t, w)
		assert.NotEqual(t, 0, resp.Code)
		assert.Equal(t, 1, env.LLM.calls, "摘要传输失败后不应该继续处理段落")
	})
}

// TestFetchURLEndpoint 测试URL抓取接口
func TestFetchURLEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := serveArticlePage(t, articlePageHTML("Test Article"))
		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/fetch-url", gin.H{
			"url": server.URL,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, 0, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Test Article", data["title"])
		assert.Contains(t, data["content"], "quick brown fox")
	})

	t.Run("upstream not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		t.Cleanup(server.Close)

		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/fetch-url", gin.H{
			"url": server.URL,
		})

		// 抓取失败属于客户端错误
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Contains(t, resp.Message, "status code 404")
	})

	t.Run("invalid request body", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/fetch-url", gin.H{
			"url": "not-a-valid-url",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestGenerateSummaryEndpoint 测试全文摘要接口
func TestGenerateSummaryEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			replies: []string{"- First point.\n- Second point."},
		})

		w := postJSON(t, env.Router, "/api/articles/generate-summary", gin.H{
			"article": "Some article text for the summary.",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "- First point.\n- Second point.", data["summary"])
	})

	t.Run("transport failure", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			errs: []error{llm.NewLLMError(llm.ErrCodeTimeout, "request timed out")},
		})

		w := postJSON(t, env.Router, "/api/articles/generate-summary", gin.H{
			"article": "Some article text.",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		resp := decodeResponse(t, w)
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("missing article", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/generate-summary", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestGenerateParagraphContentEndpoint 测试段落学习内容接口
func TestGenerateParagraphContentEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			replies: []string{paragraphReply("這是翻譯")},
		})

		w := postJSON(t, env.Router, "/api/articles/generate-paragraph-content", gin.H{
			"paragraph": "The quick brown fox jumps over the lazy dog.",
			"index":     2,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(2), data["index"])
		assert.Equal(t, "The quick brown fox jumps over the lazy dog.", data["original"])
		assert.Equal(t, "這是翻譯", data["translation"])

		questions, ok := data["questions"].([]interface{})
		require.True(t, ok)
		assert.Len(t, questions, 3)
	})

	t.Run("malformed replies fall back instead of failing", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{
			replies: []string{"not json", "still not json", "nope"},
		})

		w := postJSON(t, env.Router, "/api/articles/generate-paragraph-content", gin.H{
			"paragraph": "Some paragraph.",
			"index":     1,
		})

		// 解析失败由兜底内容吸收，不应该变成5xx
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, 0, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Some paragraph.", data["original"])

		fallback := article.FallbackContent("Some paragraph.", 1)
		assert.Equal(t, fallback.Translation, data["translation"])
		assert.Equal(t, 3, env.LLM.calls, "重试预算应该耗尽")
	})

	t.Run("missing index", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postJSON(t, env.Router, "/api/articles/generate-paragraph-content", gin.H{
			"paragraph": "Some paragraph.",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestExtractFileEndpoint 测试文章文件导入接口
func TestExtractFileEndpoint(t *testing.T) {
	// postFile 构造multipart上传请求
	postFile := func(t *testing.T, router *gin.Engine, filename, content string) *httptest.ResponseRecorder {
		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/articles/extract-file", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("plain text file", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postFile(t, env.Router, "my-article.txt", "First paragraph.\n\nSecond paragraph.")

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "my-article", data["title"])
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", data["content"])

		// 上传的文件应该留档
		files, err := env.Storage.List()
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("markdown file", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postFile(t, env.Router, "notes.md", "# Heading\n\nBody paragraph here.")

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "notes", data["title"])
		assert.Contains(t, data["content"], "Heading")
		assert.Contains(t, data["content"], "Body paragraph here.")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		w := postFile(t, env.Router, "article.docx", "binary-ish content")

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Contains(t, resp.Message, "不支持的文件类型")
	})

	t.Run("missing file field", func(t *testing.T) {
		env := setupTestEnv(t, &scriptedClient{})

		req := httptest.NewRequest(http.MethodPost, "/api/articles/extract-file", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")

		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestTraceIDHeader 测试追踪ID注入
func TestTraceIDHeader(t *testing.T) {
	env := setupTestEnv(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"), "响应应该带上追踪ID")

	// 请求带了追踪ID时应该原样返回
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Trace-ID", "trace-abc-123")
	w = httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc-123", w.Header().Get("X-Trace-ID"))
}
