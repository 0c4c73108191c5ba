// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 路由
// 认证在握手前由 Handler 自行完成（令牌经 query 或 Authorization 头传入）
package router

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/handler"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由
func RegisterWebSocketRoutes(r *gin.Engine) {
	// 请求示例: ws://host:port/ws?token=xxx
	r.GET("/ws", handler.WsHandler)
}
