// Package router 提供 HTTP 路由注册
// 本文件定义会话与消息相关路由，全部需要 JWT 认证
package router

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/handler"
	"habitlink_server/internal/infrastructure/middleware"
)

// RegisterChatRoutes 注册会话与消息相关路由
func RegisterChatRoutes(r *gin.Engine) {
	chat := r.Group("/chat", middleware.JWTAuth())
	{
		chat.GET("/conversations", handler.ListConversationsHandler)
		chat.POST("/conversations", handler.CreateConversationHandler)
		chat.GET("/conversations/:id/messages", handler.GetMessageListHandler)
		chat.POST("/conversations/:id/read", handler.MarkAsReadHandler)

		chat.POST("/messages", handler.SendMessageHandler)
		chat.PUT("/messages/:id", handler.EditMessageHandler)
		chat.DELETE("/messages/:id", handler.DeleteMessageHandler)
	}
}
