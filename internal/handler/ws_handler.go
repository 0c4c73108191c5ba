// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接入口
// 握手前完成 JWT 校验：令牌无效时升级连接、下发 auth_error 帧后立即关闭，
// 便于浏览器端拿到具体的失败原因
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"habitlink_server/internal/service/chat"
	"habitlink_server/pkg/util/jwt"
)

// WsHandler 建立 WebSocket 连接
// GET /ws?token=xxx（也支持 Authorization: Bearer 头）
func WsHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		chat.RejectClient(c, "令牌无效或已过期")
		return
	}

	chat.NewClientInit(c, claims.UserID)
}
