package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitlink_server/internal/dao/postgres/repository/repostub"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/handler"
	"habitlink_server/internal/router"
	"habitlink_server/internal/service"
	"habitlink_server/internal/service/chat"
	"habitlink_server/pkg/util/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret-for-unit-tests-only!!", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// envelope 统一响应信封
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer 桩仓储 + 完整路由的测试服务器
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	store := repostub.NewStore()
	service.InitServices(store.Repositories(), myredis.NewMemoryPresenceTracker())
	engine := gin.New()
	router.RegisterRoutes(engine)
	return engine
}

// perform 发起一次请求，token 非空时带上 Bearer 认证头
func perform(t *testing.T, engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

// registerUser 注册用户并返回 uid 和 access token
func registerUser(t *testing.T, engine *gin.Engine, username string) (uid, token string) {
	t.Helper()
	w, env := perform(t, engine, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var data struct {
		Uid         string `json:"uid"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Uid, data.AccessToken
}

func TestAuthFlow(t *testing.T) {
	engine := newTestServer(t)

	uid, _ := registerUser(t, engine, "alice")
	assert.Len(t, uid, 11)

	// 正确密码登录
	w, env := perform(t, engine, http.MethodPost, "/auth/login", "", gin.H{
		"login": "alice", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var login struct {
		Uid          string `json:"uid"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, uid, login.Uid)

	// 错误密码
	w, env = perform(t, engine, http.MethodPost, "/auth/login", "", gin.H{
		"login": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	// 刷新令牌
	w, env = perform(t, engine, http.MethodPost, "/auth/refresh", "", gin.H{
		"refresh_token": login.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestRegisterValidation(t *testing.T) {
	engine := newTestServer(t)

	// 密码太短，校验错误被翻译后放进 message
	w, env := perform(t, engine, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestServer(t)

	w, env := perform(t, engine, http.MethodGet, "/api/friends", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = perform(t, engine, http.MethodGet, "/chat/conversations", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFriendAndMessageFlow(t *testing.T) {
	engine := newTestServer(t)

	_, aliceToken := registerUser(t, engine, "alice")
	bobUid, bobToken := registerUser(t, engine, "bob")

	// 爱丽丝发好友申请
	w, env := perform(t, engine, http.MethodPost, "/api/friends/request", aliceToken, gin.H{
		"addressee_id": bobUid, "message": "交个朋友",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var created struct {
		Uuid string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// 重复申请冲突
	w, _ = perform(t, engine, http.MethodPost, "/api/friends/request", aliceToken, gin.H{
		"addressee_id": bobUid,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 鲍勃查看收到的申请
	w, env = perform(t, engine, http.MethodGet, "/api/friends/requests", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var requests []struct {
		Uuid    string `json:"uuid"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &requests))
	require.Len(t, requests, 1)
	assert.Equal(t, created.Uuid, requests[0].Uuid)
	assert.Equal(t, "交个朋友", requests[0].Message)

	// 鲍勃通过申请，派生私聊会话
	w, env = perform(t, engine, http.MethodPost, "/api/friends/requests/"+created.Uuid, bobToken, gin.H{
		"action": "accept",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var accepted struct {
		ConversationUuid string `json:"conversation_uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	require.NotEmpty(t, accepted.ConversationUuid)

	// 双方好友列表各有一个好友，且挂着同一个会话
	w, env = perform(t, engine, http.MethodGet, "/api/friends", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []struct {
		Uid              string `json:"uid"`
		ConversationUuid string `json:"conversation_uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bobUid, friends[0].Uid)
	assert.Equal(t, accepted.ConversationUuid, friends[0].ConversationUuid)

	// 爱丽丝发消息
	w, env = perform(t, engine, http.MethodPost, "/chat/messages", aliceToken, gin.H{
		"conversation_uuid": accepted.ConversationUuid,
		"content":           "你好，鲍勃",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var sent struct {
		Uuid    string `json:"uuid"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.NotEmpty(t, sent.Uuid)

	// 鲍勃的会话列表：一条会话，一条未读
	w, env = perform(t, engine, http.MethodGet, "/chat/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conversations []struct {
		Uuid        string `json:"uuid"`
		UnreadCount int64  `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conversations))
	require.Len(t, conversations, 1)
	assert.Equal(t, int64(1), conversations[0].UnreadCount)

	// 鲍勃拉取历史
	w, env = perform(t, engine, http.MethodGet,
		"/chat/conversations/"+accepted.ConversationUuid+"/messages?page=1&size=20", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total    int64 `json:"total"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "你好，鲍勃", page.Messages[0].Content)

	// 鲍勃标记已读后未读清零
	w, _ = perform(t, engine, http.MethodPost,
		"/chat/conversations/"+accepted.ConversationUuid+"/read", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = perform(t, engine, http.MethodGet, "/chat/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &conversations))
	require.Len(t, conversations, 1)
	assert.Equal(t, int64(0), conversations[0].UnreadCount)
}

// wsConn 注册一个无底层连接的客户端用于观察推送帧
func wsConn(t *testing.T, server *chat.ChatServer, uid string) *chat.UserConn {
	t.Helper()
	conn := &chat.UserConn{
		Uuid:     uid,
		SendTo:   make(chan []byte, 16),
		SendBack: make(chan *chat.MessageBack, 16),
	}
	server.Broker.RegisterClient(conn)
	require.Eventually(t, func() bool {
		return server.Broker.GetClient(uid) != nil
	}, time.Second, 5*time.Millisecond)
	return conn
}

// recvEvent 从客户端写缓冲读一帧并返回事件名
func recvEvent(t *testing.T, conn *chat.UserConn) string {
	t.Helper()
	select {
	case back := <-conn.SendBack:
		var frame struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(back.Message, &frame))
		return frame.Event
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return ""
	}
}

func TestEditAndDeleteFanOutStatusUpdate(t *testing.T) {
	engine := newTestServer(t)
	server := chat.InitChatServer(chat.ChatServerConfig{
		Mode:     "channel",
		Services: service.Svc,
		Presence: myredis.NewMemoryPresenceTracker(),
	})
	go server.Start()
	t.Cleanup(func() {
		server.Close()
		chat.GlobalChatServer = nil
	})

	_, aliceToken := registerUser(t, engine, "alice")
	bobUid, bobToken := registerUser(t, engine, "bob")

	w, env := perform(t, engine, http.MethodPost, "/api/friends/request", aliceToken, gin.H{
		"addressee_id": bobUid,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var created struct {
		Uuid string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = perform(t, engine, http.MethodPost, "/api/friends/requests/"+created.Uuid, bobToken, gin.H{
		"action": "accept",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var accepted struct {
		ConversationUuid string `json:"conversation_uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &accepted))

	bobConn := wsConn(t, server, bobUid)

	// 发送消息推送 new_message
	w, env = perform(t, engine, http.MethodPost, "/chat/messages", aliceToken, gin.H{
		"conversation_uuid": accepted.ConversationUuid,
		"content":           "第一版",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var sent struct {
		Uuid string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, chat.EventNewMessage, recvEvent(t, bobConn))

	// 编辑和删除推送的是状态变化，不是新消息
	w, _ = perform(t, engine, http.MethodPut, "/chat/messages/"+sent.Uuid, aliceToken, gin.H{
		"content": "改过了",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, chat.EventMessageStatusUpdate, recvEvent(t, bobConn))

	w, _ = perform(t, engine, http.MethodDelete, "/chat/messages/"+sent.Uuid, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, chat.EventMessageStatusUpdate, recvEvent(t, bobConn))
}

func TestSendMessageToStranger(t *testing.T) {
	engine := newTestServer(t)

	_, aliceToken := registerUser(t, engine, "alice")
	bobUid, _ := registerUser(t, engine, "bob")

	// 没有好友关系时不能建立私聊
	w, env := perform(t, engine, http.MethodPost, "/chat/conversations", aliceToken, gin.H{
		"type": "private", "target_uid": bobUid,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
}
