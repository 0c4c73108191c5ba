package chat

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitlink_server/internal/dao/postgres/repository/repostub"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
	"habitlink_server/internal/model"
	"habitlink_server/internal/service"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
)

const (
	uidAlice = "10000000001"
	uidBob   = "10000000002"
	uidCarol = "10000000003"

	convPrivate = "C2501010000000000001"
)

// newTestBroker 构造桩仓储上的单机消息代理并启动主循环
// 预置：爱丽丝和鲍勃是好友并共处一个私聊会话
func newTestBroker(t *testing.T) *ChannelBroker {
	t.Helper()
	store := repostub.NewStore()
	store.User.Seed(&model.UserInfo{Uid: uidAlice, Username: "alice", Nickname: "爱丽丝", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidBob, Username: "bob", Nickname: "鲍勃", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidCarol, Username: "carol", Nickname: "卡罗尔", IsActive: true})
	require.NoError(t, store.Friendship.Create(&model.Friendship{
		Uuid:             "F2501010000000000001",
		RequesterId:      uidAlice,
		AddresseeId:      uidBob,
		Status:           friendship_status_enum.ACCEPTED,
		ConversationUuid: convPrivate,
	}))
	require.NoError(t, store.Conversation.Create(&model.Conversation{
		Uuid: convPrivate, Type: conversation_type_enum.PRIVATE, CreatorId: uidAlice, IsActive: true,
	}))
	now := time.Now()
	require.NoError(t, store.Participant.CreateBatch([]model.ConversationParticipant{
		{ConversationUuid: convPrivate, UserId: uidAlice, JoinedAt: now},
		{ConversationUuid: convPrivate, UserId: uidBob, JoinedAt: now},
	}))

	svc := service.NewServices(store.Repositories(), myredis.NewMemoryPresenceTracker())
	broker := NewChannelBroker(svc)
	go broker.Start()
	t.Cleanup(broker.Close)
	return broker
}

// connectClient 注册一个无底层连接的客户端并等待上线完成
func connectClient(t *testing.T, broker *ChannelBroker, uid string) *UserConn {
	t.Helper()
	client := &UserConn{
		Uuid:     uid,
		SendTo:   make(chan []byte, 16),
		SendBack: make(chan *MessageBack, 16),
	}
	broker.RegisterClient(client)
	require.Eventually(t, func() bool {
		return broker.GetClient(uid) != nil
	}, time.Second, 5*time.Millisecond, "client %s not registered", uid)
	return client
}

// recvFrame 从客户端写缓冲读一帧并解析事件名
func recvFrame(t *testing.T, client *UserConn) (string, json.RawMessage, int64) {
	t.Helper()
	select {
	case back := <-client.SendBack:
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(back.Message, &frame))
		return frame.Event, frame.Data, back.Uuid
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return "", nil, 0
	}
}

func envelope(t *testing.T, sender, event string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env, err := json.Marshal(Envelope{Sender: sender, Event: event, Data: raw})
	require.NoError(t, err)
	return env
}

func TestSendMessageFansOutToParticipants(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)

	broker.HandleEnvelope(envelope(t, uidAlice, EventSendMessage, request.SendMessageRequest{
		ConversationUuid: convPrivate,
		Content:          "你好，鲍勃",
	}))

	for _, client := range []*UserConn{alice, bob} {
		event, data, messageUuid := recvFrame(t, client)
		assert.Equal(t, EventNewMessage, event)

		var msg respond.MessageRespond
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "你好，鲍勃", msg.Content)
		assert.Equal(t, uidAlice, msg.SendId)
		assert.Equal(t, convPrivate, msg.ConversationUuid)

		// 帧上携带雪花 ID，写协程据此回写投递状态
		parsed, err := strconv.ParseInt(msg.Uuid, 10, 64)
		require.NoError(t, err)
		assert.Equal(t, parsed, messageUuid)
	}
}

func TestSendMessageRejectedOnlySenderNotified(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)

	broker.HandleEnvelope(envelope(t, uidAlice, EventSendMessage, request.SendMessageRequest{
		ConversationUuid: convPrivate,
		Content:          "",
	}))

	event, data, _ := recvFrame(t, alice)
	assert.Equal(t, EventError, event)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(data, &errData))
	assert.Equal(t, "消息内容不能为空", errData.Message)

	assert.Empty(t, bob.SendBack)
}

func TestMarkAsReadBroadcastsWatermark(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)

	broker.HandleEnvelope(envelope(t, uidBob, EventMarkAsRead, ConversationEventData{
		ConversationUuid: convPrivate,
	}))

	for _, client := range []*UserConn{alice, bob} {
		event, data, _ := recvFrame(t, client)
		assert.Equal(t, EventMessageStatusUpdate, event)

		var status StatusUpdateData
		require.NoError(t, json.Unmarshal(data, &status))
		assert.Equal(t, convPrivate, status.ConversationUuid)
		assert.Equal(t, uidBob, status.Uid)
		assert.NotEmpty(t, status.LastReadAt)
	}
}

func TestTypingReachesRoomMembersOnly(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)
	// 卡罗尔不是会话成员，上线不会进入这个房间
	carol := connectClient(t, broker, uidCarol)

	broker.HandleEnvelope(envelope(t, uidAlice, EventTyping, ConversationEventData{
		ConversationUuid: convPrivate,
	}))

	event, data, _ := recvFrame(t, bob)
	assert.Equal(t, EventUserTyping, event)
	var typing TypingData
	require.NoError(t, json.Unmarshal(data, &typing))
	assert.Equal(t, uidAlice, typing.Uid)

	// 输入中事件不回发给本人，也不发给房间外的用户
	assert.Empty(t, alice.SendBack)
	assert.Empty(t, carol.SendBack)
}

func TestBroadcastSkipsOfflineRecipients(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)

	err := broker.Broadcast([]string{uidAlice, "19999999999"}, EventNewMessage, ErrorData{}, 0)
	require.NoError(t, err)

	event, _, _ := recvFrame(t, alice)
	assert.Equal(t, EventNewMessage, event)
}

func TestPublishDrivesStartLoop(t *testing.T) {
	broker := newTestBroker(t)
	_ = connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)

	err := broker.Publish(context.Background(), envelope(t, uidAlice, EventSendMessage, request.SendMessageRequest{
		ConversationUuid: convPrivate,
		Content:          "经由通道投递",
	}))
	require.NoError(t, err)

	event, data, _ := recvFrame(t, bob)
	assert.Equal(t, EventNewMessage, event)
	var msg respond.MessageRespond
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "经由通道投递", msg.Content)
}

func TestUnknownEvent(t *testing.T) {
	broker := newTestBroker(t)
	alice := connectClient(t, broker, uidAlice)

	broker.HandleEnvelope(envelope(t, uidAlice, "dance", nil))

	event, data, _ := recvFrame(t, alice)
	assert.Equal(t, EventError, event)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(data, &errData))
	assert.Contains(t, errData.Message, "未知事件")
}

func TestLogoutRemovesClientAndRooms(t *testing.T) {
	broker := newTestBroker(t)
	_ = connectClient(t, broker, uidAlice)
	bob := connectClient(t, broker, uidBob)

	broker.UnregisterClient(bob)
	require.Eventually(t, func() bool {
		return broker.GetClient(uidBob) == nil
	}, time.Second, 5*time.Millisecond)

	// 下线后 typing 不再送达
	broker.HandleEnvelope(envelope(t, uidAlice, EventTyping, ConversationEventData{
		ConversationUuid: convPrivate,
	}))
	assert.Empty(t, bob.SendBack)
}

func TestLogoutClosesSendChannel(t *testing.T) {
	broker := newTestBroker(t)
	bob := connectClient(t, broker, uidBob)

	broker.UnregisterClient(bob)
	require.Eventually(t, func() bool {
		return broker.GetClient(uidBob) == nil
	}, time.Second, 5*time.Millisecond)

	// 主循环移出映射表后关闭下行通道，写协程随之退出
	select {
	case _, ok := <-bob.SendBack:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	assert.NotPanics(t, func() {
		assert.NoError(t, broker.Broadcast([]string{uidBob}, EventNewMessage, ErrorData{}, 0))
	})
}

func TestBroadcastDuringLogoutDoesNotPanic(t *testing.T) {
	broker := newTestBroker(t)
	bob := connectClient(t, broker, uidBob)

	// 登出竞态：下行通道已关闭，但主循环尚未把客户端移出映射表
	bob.CloseSend()
	require.NotNil(t, broker.GetClient(uidBob))

	assert.NotPanics(t, func() {
		assert.NoError(t, broker.Broadcast([]string{uidBob}, EventNewMessage, ErrorData{}, 0))
	})

	// 重复关闭幂等
	assert.NotPanics(t, bob.CloseSend)
}
