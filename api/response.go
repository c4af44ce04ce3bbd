package api

import (
	"errors"
	"net/http"

	"incometracker/config"
	"incometracker/view"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 带提示文案的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// respondError 把页面操作的错误映射为 HTTP 响应：
// 输入错误 400，记录不存在 404（包括存储层更新时记录已被删除），其余（存储错误）500。
func respondError(c *gin.Context, err error, fallback string) {
	var verr *view.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Message)
	case errors.Is(err, view.ErrIncomeNotFound):
		NotFound(c, "Income not found")
	case errors.Is(err, view.ErrNoteNotFound):
		NotFound(c, "Note not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "Record not found")
	default:
		InternalError(c, config.SafeErrorMessage(err, fallback))
	}
}

// respondUserLookupError 用户不存在 404，其余查询错误 500
func respondUserLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "User not found")
		return
	}
	InternalError(c, config.SafeErrorMessage(err, "query user failed"))
}
