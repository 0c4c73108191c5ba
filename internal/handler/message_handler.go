// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
// 落库由 MessageService 完成，实时推送经由聊天服务器扇出
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/infrastructure/middleware"
	"habitlink_server/internal/service"
	"habitlink_server/internal/service/chat"
	"habitlink_server/pkg/errorx"
)

// SendMessageHandler 发送消息
// POST /chat/messages
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond（与 WebSocket new_message 推送同一结构）
func SendMessageHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, recipients, err := service.Svc.Message.SendMessage(userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}

	if chat.GlobalChatServer != nil {
		messageUuid, _ := strconv.ParseInt(rsp.Uuid, 10, 64)
		chat.GlobalChatServer.BroadcastEvent(recipients, chat.EventNewMessage, rsp, messageUuid)
	}
	HandleCreated(c, rsp)
}

// GetMessageListHandler 分页拉取会话消息
// GET /chat/conversations/:id/messages?page=1&size=20
// 响应: respond.MessageListRespond
func GetMessageListHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.GetMessageList(userId, c.Param("id"), req.Page, req.Size)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// EditMessageHandler 编辑消息
// PUT /chat/messages/:id
// 请求体: request.EditMessageRequest
// 响应: respond.MessageRespond，在线成员收到 message_status_update 推送
func EditMessageHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	messageUuid, err := parseMessageUuid(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, recipients, err := service.Svc.Message.EditMessage(userId, messageUuid, req)
	if err != nil {
		HandleError(c, err)
		return
	}

	if chat.GlobalChatServer != nil {
		chat.GlobalChatServer.BroadcastEvent(recipients, chat.EventMessageStatusUpdate, rsp, 0)
	}
	HandleSuccess(c, rsp)
}

// DeleteMessageHandler 删除消息（软删除）
// DELETE /chat/messages/:id
// 响应: respond.MessageRespond（is_revoked 为 true，内容已隐藏），
// 在线成员收到 message_status_update 推送
func DeleteMessageHandler(c *gin.Context) {
	userId, err := middleware.CurrentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	messageUuid, err := parseMessageUuid(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, recipients, err := service.Svc.Message.DeleteMessage(userId, messageUuid)
	if err != nil {
		HandleError(c, err)
		return
	}

	if chat.GlobalChatServer != nil {
		chat.GlobalChatServer.BroadcastEvent(recipients, chat.EventMessageStatusUpdate, rsp, 0)
	}
	HandleSuccess(c, rsp)
}

// parseMessageUuid 解析路径中的消息雪花 ID
func parseMessageUuid(raw string) (int64, error) {
	uuid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorx.New(errorx.CodeInvalidArgument, "消息 ID 格式错误")
	}
	return uuid, nil
}
