package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/english-practice-api/api/middleware"
	"github.com/fyerfyer/english-practice-api/api/model"
	"github.com/fyerfyer/english-practice-api/internal/document"
	"github.com/fyerfyer/english-practice-api/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DocumentHandler 处理文章文件导入相关的API请求
type DocumentHandler struct {
	fileStorage storage.Storage // 导入文件留档存储
	logger      *logrus.Logger  // 日志记录器
}

// NewDocumentHandler 创建新的文件导入处理器
func NewDocumentHandler(fileStorage storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		fileStorage: fileStorage,
		logger:      middleware.GetLogger(),
	}
}

// ExtractFile 接收上传的文章文件，留档后提取正文
// POST /api/articles/extract-file
func (h *DocumentHandler) ExtractFile(c *gin.Context) {
	// 绑定请求参数
	var req model.ExtractFileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid extract-file request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数，请上传文件",
		))
		return
	}

	filename := filepath.Base(req.File.Filename)

	// 按扩展名选择解析器，不支持的类型直接拒绝
	parser, err := document.ParserFactory(filename)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"不支持的文件类型，仅支持pdf、markdown和txt",
			))
			return
		}

		middleware.HandleError(c, err)
		return
	}

	src, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to open uploaded file")

		middleware.HandleError(c, err)
		return
	}
	defer src.Close()

	// 先落盘留档，再从存储读出解析
	fileInfo, err := h.fileStorage.Save(src, filename)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to save uploaded file")

		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"file_id":  fileInfo.ID,
		"filename": filename,
		"size":     fileInfo.Size,
	}).Info("Article file saved")

	reader, err := h.fileStorage.Get(fileInfo.ID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":   err.Error(),
			"file_id": fileInfo.ID,
		}).Error("Failed to read stored file")

		middleware.HandleError(c, err)
		return
	}
	defer reader.Close()

	content, err := parser.ParseReader(reader, filename)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Warn("Failed to parse uploaded file")

		// 解析失败基本都是文件本身的问题
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无法解析上传的文件: "+err.Error(),
		))
		return
	}

	// 构建响应，标题取文件名去掉扩展名
	resp := model.ExtractFileResponse{
		Content: content,
		Title:   strings.TrimSuffix(filename, filepath.Ext(filename)),
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}
