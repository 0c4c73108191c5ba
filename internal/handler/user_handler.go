// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/service"
)

// RegisterHandler 用户注册
// POST /auth/register
// 请求体: request.RegisterRequest
// 响应: respond.LoginRespond
func RegisterHandler(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.User.Register(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// LoginHandler 用户登录
// POST /auth/login
// 请求体: request.LoginRequest
// 响应: respond.LoginRespond
func LoginHandler(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.User.Login(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RefreshTokenHandler 刷新令牌
// POST /auth/refresh
// 请求体: request.RefreshTokenRequest
// 响应: respond.TokenRespond
func RefreshTokenHandler(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.User.RefreshToken(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
