// Package chat 实现实时消息网关
// channel_broker.go
// 核心职责：单机模式下的消息代理实现
// 1. 维护在线客户端映射和会话房间
// 2. 消费 Transmit 通道中的消息信封，调用业务层后扇出
// 3. 不依赖外部消息队列，为默认运行模式
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/service"
	"habitlink_server/pkg/constants"
	"habitlink_server/pkg/errorx"
)

// ChannelBroker 单机消息代理
type ChannelBroker struct {
	// Clients 在线客户端映射表，Key 为用户 UID，Value 为 *UserConn
	// 使用 sync.Map 实现并发安全，无需手动加锁
	Clients sync.Map
	// Transmit 消息信封通道，Start 循环从这里消费
	Transmit chan []byte
	// Login 客户端登录通道
	Login chan *UserConn
	// Logout 客户端登出通道
	Logout chan *UserConn

	// rooms 会话房间：conversationUuid -> uid -> 连接
	// typing 这类房间事件只发给房间内成员
	rooms   map[string]map[string]*UserConn
	roomsMu sync.RWMutex

	// svc 业务层（依赖注入）
	svc *service.Services

	closeOnce sync.Once
}

// NewChannelBroker 创建单机消息代理实例
func NewChannelBroker(svc *service.Services) *ChannelBroker {
	return &ChannelBroker{
		Transmit: make(chan []byte, constants.CHANNEL_SIZE),
		Login:    make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout:   make(chan *UserConn, constants.CHANNEL_SIZE),
		rooms:    make(map[string]map[string]*UserConn),
		svc:      svc,
	}
}

// Start 启动主循环
// 1. Login/Logout：维护在线客户端映射表和房间
// 2. Transmit：处理消息信封（业务 + 扇出）
func (b *ChannelBroker) Start() {
	for {
		select {
		case client, ok := <-b.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			b.Clients.Store(client.Uuid, client)
			b.autoJoinRooms(client)
			zap.L().Debug("ws client online", zap.String("uid", client.Uuid))

		case client, ok := <-b.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			b.Clients.Delete(client.Uuid)
			b.leaveAllRooms(client.Uuid)
			// 先移出映射表再关闭下行通道，扇出路径由 Deliver 兜底
			client.CloseSend()
			zap.L().Info("ws client offline", zap.String("uid", client.Uuid))

		case data, ok := <-b.Transmit:
			if !ok {
				return
			}
			b.HandleEnvelope(data)
		}
	}
}

// HandleEnvelope 处理一条消息信封
// Kafka 模式的消费循环也调用此方法，业务逻辑两种模式共用
func (b *ChannelBroker) HandleEnvelope(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		zap.L().Error("unmarshal envelope error", zap.Error(err))
		return
	}

	switch env.Event {
	case EventSendMessage:
		b.handleSendMessage(env)
	case EventMarkAsRead:
		b.handleMarkAsRead(env)
	case EventTyping:
		b.handleTyping(env)
	case EventBroadcast:
		b.handleBroadcast(env)
	default:
		b.sendError(env.Sender, "未知事件: "+env.Event)
	}
}

// handleSendMessage 处理 send_message 事件
// 业务校验和落库交给 MessageService，成功后向全部在场成员扇出 new_message
func (b *ChannelBroker) handleSendMessage(env Envelope) {
	var req request.SendMessageRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		b.sendError(env.Sender, "消息格式错误")
		return
	}

	rsp, recipients, err := b.svc.Message.SendMessage(env.Sender, req)
	if err != nil {
		zap.L().Warn("ws send message rejected",
			zap.String("sender", env.Sender), zap.Error(err))
		b.sendError(env.Sender, errorMessage(err))
		return
	}

	messageUuid, _ := strconv.ParseInt(rsp.Uuid, 10, 64)
	if err := b.Broadcast(recipients, EventNewMessage, rsp, messageUuid); err != nil {
		zap.L().Error("broadcast new message error", zap.Error(err))
	}
}

// handleMarkAsRead 处理 mark_as_read 事件
// 推进已读水位后把新水位广播给会话成员（双勾型已读回执）
func (b *ChannelBroker) handleMarkAsRead(env Envelope) {
	var data ConversationEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		b.sendError(env.Sender, "消息格式错误")
		return
	}

	readAt, err := b.svc.Conversation.MarkAsRead(env.Sender, data.ConversationUuid)
	if err != nil {
		b.sendError(env.Sender, errorMessage(err))
		return
	}
	recipients, err := b.svc.Conversation.ActiveParticipantIds(data.ConversationUuid)
	if err != nil {
		zap.L().Error("load participants error", zap.Error(err))
		return
	}
	_ = b.Broadcast(recipients, EventMessageStatusUpdate, StatusUpdateData{
		ConversationUuid: data.ConversationUuid,
		Uid:              env.Sender,
		LastReadAt:       readAt.Format("2006-01-02 15:04:05.000"),
	}, 0)
}

// handleTyping 处理 typing 事件
// 不落库，只发给已加入该会话房间的其他成员
func (b *ChannelBroker) handleTyping(env Envelope) {
	var data ConversationEventData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return
	}

	b.roomsMu.RLock()
	room := b.rooms[data.ConversationUuid]
	recipients := make([]string, 0, len(room))
	for uid := range room {
		if uid != env.Sender {
			recipients = append(recipients, uid)
		}
	}
	b.roomsMu.RUnlock()

	_ = b.Broadcast(recipients, EventUserTyping, TypingData{
		ConversationUuid: data.ConversationUuid,
		Uid:              env.Sender,
	}, 0)
}

// handleBroadcast 处理内部 broadcast 信封（REST 路径的扇出）
func (b *ChannelBroker) handleBroadcast(env Envelope) {
	var data BroadcastData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		zap.L().Error("unmarshal broadcast error", zap.Error(err))
		return
	}
	_ = b.Broadcast(data.Recipients, data.Event, data.Payload, data.MessageUuid)
}

// Broadcast 把事件扇出给指定用户中当前在线的那些
// 不在线的用户没有任何动作（上线后通过 REST 拉取历史补齐）
func (b *ChannelBroker) Broadcast(recipients []string, event string, payload any, messageUuid int64) error {
	frame, err := json.Marshal(ServerEvent{Event: event, Data: payload})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "marshal server event")
	}
	for _, uid := range recipients {
		value, ok := b.Clients.Load(uid)
		if !ok {
			continue
		}
		client := value.(*UserConn)
		// 客户端缓冲满或正在登出时丢弃本帧，历史仍可通过 REST 拉取
		if !client.Deliver(&MessageBack{Message: frame, Uuid: messageUuid}) {
			zap.L().Warn("client unavailable, drop frame",
				zap.String("uid", uid), zap.String("event", event))
		}
	}
	return nil
}

// Publish 实现 MessageBroker 接口：投递信封到 Transmit 通道
// 通道满时返回错误，调用方决定缓冲或降级
func (b *ChannelBroker) Publish(ctx context.Context, msg []byte) error {
	select {
	case b.Transmit <- msg:
		return nil
	default:
		return errorx.New(errorx.CodeServerBusy, "消息通道已满")
	}
}

// RegisterClient 实现 MessageBroker 接口：注册客户端
func (b *ChannelBroker) RegisterClient(client *UserConn) {
	b.Login <- client
}

// UnregisterClient 实现 MessageBroker 接口：注销客户端
func (b *ChannelBroker) UnregisterClient(client *UserConn) {
	b.Logout <- client
}

// GetClient 获取客户端
func (b *ChannelBroker) GetClient(userId string) *UserConn {
	value, ok := b.Clients.Load(userId)
	if !ok {
		return nil
	}
	return value.(*UserConn)
}

// JoinRoom 把用户加入会话房间
func (b *ChannelBroker) JoinRoom(conversationUuid, userId string) {
	client := b.GetClient(userId)
	if client == nil {
		return
	}
	b.roomsMu.Lock()
	defer b.roomsMu.Unlock()
	room, ok := b.rooms[conversationUuid]
	if !ok {
		room = make(map[string]*UserConn)
		b.rooms[conversationUuid] = room
	}
	room[userId] = client
}

// autoJoinRooms 上线时自动加入用户在场的全部会话房间
func (b *ChannelBroker) autoJoinRooms(client *UserConn) {
	uuids, err := b.svc.Conversation.ActiveConversationUuids(client.Uuid)
	if err != nil {
		zap.L().Warn("auto join rooms error",
			zap.String("uid", client.Uuid), zap.Error(err))
		return
	}
	b.roomsMu.Lock()
	defer b.roomsMu.Unlock()
	for _, uuid := range uuids {
		room, ok := b.rooms[uuid]
		if !ok {
			room = make(map[string]*UserConn)
			b.rooms[uuid] = room
		}
		room[client.Uuid] = client
	}
}

// LeaveRoom 把用户移出会话房间
func (b *ChannelBroker) LeaveRoom(conversationUuid, userId string) {
	b.roomsMu.Lock()
	defer b.roomsMu.Unlock()
	if room, ok := b.rooms[conversationUuid]; ok {
		delete(room, userId)
		if len(room) == 0 {
			delete(b.rooms, conversationUuid)
		}
	}
}

// leaveAllRooms 客户端下线时清理其全部房间成员关系
func (b *ChannelBroker) leaveAllRooms(userId string) {
	b.roomsMu.Lock()
	defer b.roomsMu.Unlock()
	for uuid, room := range b.rooms {
		delete(room, userId)
		if len(room) == 0 {
			delete(b.rooms, uuid)
		}
	}
}

// sendError 给指定用户下发错误事件
func (b *ChannelBroker) sendError(userId, message string) {
	_ = b.Broadcast([]string{userId}, EventError, ErrorData{Message: message}, 0)
}

// errorMessage 提取业务错误消息，非业务错误统一提示
func errorMessage(err error) string {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return "服务繁忙"
}

// Close 关闭服务通道
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.Login)
		close(b.Logout)
		close(b.Transmit)
	})
}
