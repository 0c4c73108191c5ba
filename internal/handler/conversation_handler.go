// Package handler 提供 HTTP 请求处理器
// 本文件处理会话相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/infrastructure/middleware"
	"habitlink_server/internal/service"
	"habitlink_server/internal/service/chat"
)

// ListConversationsHandler 会话列表
// GET /chat/conversations
// 响应: []respond.ConversationRespond
func ListConversationsHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	data, err := service.Svc.Conversation.ListConversations(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateConversationHandler 创建会话
// POST /chat/conversations
// 请求体: request.CreateConversationRequest
// 响应: respond.ConversationRespond（私聊重复创建返回已有会话）
func CreateConversationHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Conversation.CreateConversation(userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// MarkAsReadHandler 标记会话已读
// POST /chat/conversations/:id/read
// 推进已读水位并向会话成员广播 message_status_update
// 响应: {"last_read_at": string}
func MarkAsReadHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	conversationUuid := c.Param("id")
	readAt, err := service.Svc.Conversation.MarkAsRead(userId, conversationUuid)
	if err != nil {
		HandleError(c, err)
		return
	}

	lastReadAt := readAt.Format("2006-01-02 15:04:05.000")
	if chat.GlobalChatServer != nil {
		if recipients, err := service.Svc.Conversation.ActiveParticipantIds(conversationUuid); err == nil {
			chat.GlobalChatServer.BroadcastEvent(recipients, chat.EventMessageStatusUpdate, chat.StatusUpdateData{
				ConversationUuid: conversationUuid,
				Uid:              userId,
				LastReadAt:       lastReadAt,
			}, 0)
		}
	}
	HandleSuccess(c, gin.H{"last_read_at": lastReadAt})
}
