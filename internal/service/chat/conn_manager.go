// Package chat 实现实时消息网关
// conn_manager.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 UserConn，管理读写协程 (Read/Write Loop)
// 3. 读协程：客户端事件 -> 包上发送者身份 -> 投递给 Broker
//    写协程：Broker 扇出的帧 -> 推送给客户端，并更新消息投递状态
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	dao "habitlink_server/internal/dao/postgres"
	"habitlink_server/pkg/constants"
	"habitlink_server/pkg/enum/message/message_status_enum"
)

// MessageBack Broker 扇出给写协程的消息帧
type MessageBack struct {
	Message []byte
	Uuid    int64 // 关联消息的雪花 ID，0 表示无关联消息
}

// UserConn 一条 WebSocket 连接
type UserConn struct {
	Conn     *websocket.Conn
	Uuid     string            // 用户 UID
	SendTo   chan []byte       // Broker 满载时的本地缓冲
	SendBack chan *MessageBack // Broker -> 客户端

	// closed 下行通道是否已关闭
	// 登出和扇出可能并发，投递前必须在锁内检查，
	// 否则会向已关闭的通道发送导致 panic
	closeMu sync.Mutex
	closed  bool
}

// Deliver 非阻塞投递一帧给写协程
// 通道已关闭或缓冲已满时丢弃并返回 false
func (c *UserConn) Deliver(mb *MessageBack) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.SendBack <- mb:
		return true
	default:
		return false
	}
}

// CloseSend 关闭下行通道，终止写协程，幂等
func (c *UserConn) CloseSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.SendBack)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var ctx = context.Background()

// Read 读协程：消费客户端上行帧
// join/leave 只影响本进程房间，直接处理；
// 其余事件包成信封交给 Broker（Kafka 模式下经由消息队列）
func (c *UserConn) Read() {
	defer ClientLogout(c.Uuid)
	zap.L().Info("ws read goroutine start", zap.String("uid", c.Uuid))
	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws read error", zap.String("uid", c.Uuid), zap.Error(err))
			}
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(frame, &event); err != nil {
			c.sendEvent(EventError, ErrorData{Message: "消息格式错误"})
			continue
		}

		switch event.Event {
		case EventJoinConversation:
			c.handleJoin(event.Data)
		case EventLeaveConversation:
			c.handleLeave(event.Data)
		case EventSendMessage, EventMarkAsRead, EventTyping:
			c.publish(Envelope{Sender: c.Uuid, Event: event.Event, Data: event.Data})
		default:
			c.sendEvent(EventError, ErrorData{Message: "未知事件: " + event.Event})
		}
	}
}

// handleJoin 显式加入会话房间，仅限在场成员
func (c *UserConn) handleJoin(data json.RawMessage) {
	var req ConversationEventData
	if err := json.Unmarshal(data, &req); err != nil || req.ConversationUuid == "" {
		c.sendEvent(EventError, ErrorData{Message: "消息格式错误"})
		return
	}
	uids, err := GlobalChatServer.svc.Conversation.ActiveParticipantIds(req.ConversationUuid)
	if err != nil {
		c.sendEvent(EventError, ErrorData{Message: errorMessage(err)})
		return
	}
	for _, uid := range uids {
		if uid == c.Uuid {
			GlobalChatServer.Broker.JoinRoom(req.ConversationUuid, c.Uuid)
			return
		}
	}
	c.sendEvent(EventError, ErrorData{Message: "不是该会话的成员"})
}

// handleLeave 离开会话房间
func (c *UserConn) handleLeave(data json.RawMessage) {
	var req ConversationEventData
	if err := json.Unmarshal(data, &req); err != nil || req.ConversationUuid == "" {
		return
	}
	GlobalChatServer.Broker.LeaveRoom(req.ConversationUuid, c.Uuid)
}

// publish 把信封投递给 Broker
// Broker 满载时先进本地缓冲，缓冲也满则告知客户端稍后重试
func (c *UserConn) publish(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		zap.L().Error("marshal envelope error", zap.Error(err))
		return
	}

	// 先尝试清空本地缓冲，保持帧序
	for len(c.SendTo) > 0 {
		buffered := <-c.SendTo
		if err := GlobalChatServer.Broker.Publish(ctx, buffered); err != nil {
			c.SendTo <- buffered
			break
		}
	}

	if err := GlobalChatServer.Broker.Publish(ctx, data); err != nil {
		select {
		case c.SendTo <- data:
		default:
			c.sendEvent(EventError, ErrorData{Message: "当前发送消息的用户过多，请稍后重试"})
		}
	}
}

// sendEvent 直接给本连接下发一帧（不经过 Broker）
func (c *UserConn) sendEvent(event string, payload any) {
	frame, err := json.Marshal(ServerEvent{Event: event, Data: payload})
	if err != nil {
		return
	}
	c.Deliver(&MessageBack{Message: frame})
}

// Write 写协程：把 Broker 扇出的帧推送给客户端
// 推送成功且帧关联消息时，把消息状态置为已推送
func (c *UserConn) Write() {
	zap.L().Info("ws write goroutine start", zap.String("uid", c.Uuid))
	for messageBack := range c.SendBack {
		if err := c.Conn.WriteMessage(websocket.TextMessage, messageBack.Message); err != nil {
			zap.L().Warn("ws write error", zap.String("uid", c.Uuid), zap.Error(err))
			return
		}
		if messageBack.Uuid != 0 && dao.Repos != nil {
			if err := dao.Repos.Message.UpdateFields(messageBack.Uuid, map[string]any{
				"status": message_status_enum.Sent,
			}); err != nil {
				zap.L().Error("update message status error", zap.Error(err))
			}
		}
	}
}

// NewClientInit 认证通过后建立 WebSocket 连接
// 注册到 Broker、标记在线，随后由 Broker 主循环自动加入全部会话房间
func NewClientInit(c *gin.Context, clientId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade error", zap.Error(err))
		return
	}
	client := &UserConn{
		Conn:     conn,
		Uuid:     clientId,
		SendTo:   make(chan []byte, constants.CHANNEL_SIZE),
		SendBack: make(chan *MessageBack, constants.CHANNEL_SIZE),
	}
	GlobalChatServer.Broker.RegisterClient(client)
	if GlobalChatServer.Presence != nil {
		if err := GlobalChatServer.Presence.SetOnline(ctx, clientId); err != nil {
			zap.L().Warn("presence set online error", zap.Error(err))
		}
	}
	go client.Read()
	go client.Write()
	zap.L().Info("ws connected", zap.String("uid", clientId))
}

// RejectClient 认证失败时的处理
// 仍然完成升级，下发 auth_error 帧后关闭，让客户端拿到失败原因
func RejectClient(c *gin.Context, message string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("ws upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()
	frame, err := json.Marshal(ServerEvent{Event: EventAuthError, Data: ErrorData{Message: message}})
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, frame)
}

// ClientLogout 连接断开时清理
// 下行通道由 Broker 主循环在把客户端移出映射表之后关闭，
// 这里只负责注销、下线标记和断开底层连接
func ClientLogout(clientId string) {
	client := GlobalChatServer.Broker.GetClient(clientId)
	if client == nil {
		return
	}
	GlobalChatServer.Broker.UnregisterClient(client)
	if GlobalChatServer.Presence != nil {
		if err := GlobalChatServer.Presence.SetOffline(ctx, clientId); err != nil {
			zap.L().Warn("presence set offline error", zap.Error(err))
		}
	}
	_ = client.Conn.Close()
}
