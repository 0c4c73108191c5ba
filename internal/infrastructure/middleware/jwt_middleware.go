package middleware

import (
	"net/http"
	"strings"

	"habitlink_server/pkg/errorx"
	"habitlink_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 UID 存入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "请先登录",
				"data":    nil,
			})
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token 格式错误，请使用 Bearer Token",
				"data":    nil,
			})
			return
		}

		// 3. 验证 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token 已过期或无效，请重新登录",
				"data":    nil,
			})
			return
		}

		// 4. 验证是否为 Access Token
		if claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "请使用 Access Token 访问此接口",
				"data":    nil,
			})
			return
		}

		// 5. 将用户 UID 存入上下文，供后续 Handler 使用
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// CurrentUserID 从上下文取出 JWTAuth 写入的用户 UID
func CurrentUserID(c *gin.Context) (string, error) {
	uid := c.GetString("user_id")
	if uid == "" {
		return "", errorx.ErrUnauthorized
	}
	return uid, nil
}
