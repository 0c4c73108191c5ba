// Package router 提供 HTTP 路由注册
// 本文件定义好友关系相关路由，全部需要 JWT 认证
package router

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/handler"
	"habitlink_server/internal/infrastructure/middleware"
)

// RegisterFriendRoutes 注册好友关系相关路由
func RegisterFriendRoutes(r *gin.Engine) {
	friends := r.Group("/api/friends", middleware.JWTAuth())
	{
		friends.GET("", handler.ListFriendsHandler)
		friends.POST("/request", handler.SendFriendRequestHandler)
		friends.GET("/requests", handler.ListFriendRequestsHandler)
		friends.POST("/requests/:id", handler.RespondFriendRequestHandler)
		friends.DELETE("/:id", handler.RemoveFriendHandler)
		friends.PUT("/:id/settings", handler.UpdateFriendSettingsHandler)
		friends.POST("/:id/block", handler.BlockFriendHandler)
		friends.POST("/:id/unblock", handler.UnblockFriendHandler)
		friends.GET("/notifications", handler.ListNotificationsHandler)
		friends.POST("/notifications/read", handler.MarkNotificationsReadHandler)
	}
}
