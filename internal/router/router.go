// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func RegisterRoutes(r *gin.Engine) {
	RegisterAuthRoutes(r)      // 认证路由（注册/登录/刷新令牌）
	RegisterFriendRoutes(r)    // 好友关系路由
	RegisterChatRoutes(r)      // 会话与消息路由
	RegisterWebSocketRoutes(r) // WebSocket 路由
}
