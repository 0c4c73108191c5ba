// Package handler 提供 HTTP 请求处理器
// 本文件处理好友关系相关的 API 请求
// 所有接口均在 JWT 认证之后，当前用户从上下文取出
package handler

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/infrastructure/middleware"
	"habitlink_server/internal/service"
)

// SendFriendRequestHandler 发送好友申请
// POST /api/friends/request
// 请求体: request.SendFriendRequest
// 响应: respond.FriendRequestRespond
func SendFriendRequestHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.SendFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Friend.SendRequest(userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// ListFriendRequestsHandler 待处理申请列表
// GET /api/friends/requests?type=received|sent
// 响应: []respond.FriendRequestRespond
func ListFriendRequestsHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	data, err := service.Svc.Friend.ListRequests(userId, c.Query("type"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RespondFriendRequestHandler 处理好友申请
// POST /api/friends/requests/:id
// 请求体: request.RespondFriendRequest
// 响应: {"conversation_uuid": string}，拒绝时为空串
func RespondFriendRequestHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.RespondFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	conversationUuid, err := service.Svc.Friend.RespondToRequest(userId, c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"conversation_uuid": conversationUuid})
}

// ListFriendsHandler 好友列表
// GET /api/friends
// 响应: []respond.FriendRespond
func ListFriendsHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	data, err := service.Svc.Friend.ListFriends(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveFriendHandler 删除好友
// DELETE /api/friends/:id
// 响应: nil
func RemoveFriendHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := service.Svc.Friend.RemoveFriend(userId, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateFriendSettingsHandler 更新备注名/星标/免打扰
// PUT /api/friends/:id/settings
// 请求体: request.UpdateFriendSettingsRequest
// 响应: nil
func UpdateFriendSettingsHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.UpdateFriendSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Friend.UpdateSettings(userId, c.Param("id"), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// BlockFriendHandler 拉黑好友
// POST /api/friends/:id/block
// 响应: nil
func BlockFriendHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := service.Svc.Friend.Block(userId, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UnblockFriendHandler 取消拉黑
// POST /api/friends/:id/unblock
// 响应: nil
func UnblockFriendHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := service.Svc.Friend.Unblock(userId, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListNotificationsHandler 好友通知列表
// GET /api/friends/notifications?unread=true
// 响应: []respond.NotificationRespond
func ListNotificationsHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	onlyUnread := c.Query("unread") == "true"
	data, err := service.Svc.Friend.ListNotifications(userId, onlyUnread)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkNotificationsReadHandler 标记通知已读
// POST /api/friends/notifications/read
// 请求体: request.MarkNotificationsReadRequest（uuids 为空标记全部）
// 响应: {"updated": int64}
func MarkNotificationsReadHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	updated, err := service.Svc.Friend.MarkNotificationsRead(userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"updated": updated})
}
