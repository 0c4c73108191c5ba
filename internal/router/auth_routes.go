// Package router 提供 HTTP 路由注册
// 本文件定义认证相关路由，无需登录即可访问
package router

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/handler"
)

// RegisterAuthRoutes 注册认证相关路由
func RegisterAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.RegisterHandler)
		auth.POST("/login", handler.LoginHandler)
		auth.POST("/refresh", handler.RefreshTokenHandler)
	}
}
