// Package handler 提供 HTTP 请求处理器
// 本文件实现统一响应封装
// 响应信封固定为 {success, message, data}，HTTP 状态码由业务错误码映射
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"habitlink_server/pkg/errorx"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// HandleCreated 返回创建成功响应（201）
func HandleCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, ResponseData{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// httpStatus 业务错误码到 HTTP 状态码的映射
func httpStatus(code int) int {
	switch code {
	case errorx.CodeInvalidArgument:
		return http.StatusBadRequest
	case errorx.CodeInvalidPassword, errorx.CodeUnauthorized:
		return http.StatusUnauthorized
	case errorx.CodeForbidden:
		return http.StatusForbidden
	case errorx.CodeNotFound:
		return http.StatusNotFound
	case errorx.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 通用错误处理方法
// 业务错误按错误码映射 HTTP 状态并返回业务消息；
// 系统错误记录日志后统一返回 500 服务繁忙
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code != errorx.CodeDBError && codeErr.Code != errorx.CodeCacheError {
		c.JSON(httpStatus(codeErr.Code), ResponseData{
			Success: false,
			Message: codeErr.Msg,
			Data:    nil,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ResponseData{
		Success: false,
		Message: errorx.ErrServerBusy.Msg,
		Data:    nil,
	})
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		translated := RemoveTopStruct(validationErrs.Translate(Trans))
		msgs := make([]string, 0, len(translated))
		for _, msg := range translated {
			msgs = append(msgs, msg)
		}
		c.JSON(http.StatusBadRequest, ResponseData{
			Success: false,
			Message: strings.Join(msgs, "; "),
			Data:    nil,
		})
		return
	}

	zap.L().Warn("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, ResponseData{
		Success: false,
		Message: errorx.ErrInvalidArgument.Msg,
		Data:    nil,
	})
}
