package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitlink_server/internal/dao/postgres/repository/repostub"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/enum/participant/participant_role_enum"
	"habitlink_server/pkg/errorx"
)

const (
	uidAlice = "10000000001"
	uidBob   = "10000000002"
	uidCarol = "10000000003"
)

func newTestService(t *testing.T) (*conversationService, *repostub.Store) {
	t.Helper()
	store := repostub.NewStore()
	store.User.Seed(&model.UserInfo{Uid: uidAlice, Username: "alice", Nickname: "爱丽丝", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidBob, Username: "bob", Nickname: "鲍勃", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidCarol, Username: "carol", Nickname: "卡罗尔", IsActive: true})
	return NewConversationService(store.Repositories()), store
}

// seedFriendship 直接放入一条好友关系记录
func seedFriendship(t *testing.T, store *repostub.Store, requester, addressee string, status int8) *model.Friendship {
	t.Helper()
	f := &model.Friendship{
		Uuid:        "F2501010000000000001",
		RequesterId: requester,
		AddresseeId: addressee,
		Status:      status,
	}
	require.NoError(t, store.Friendship.Create(f))
	return f
}

func TestCreatePrivateRequiresFriendship(t *testing.T) {
	svc, store := newTestService(t)

	// 没有任何关系
	_, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "private", TargetUid: uidBob,
	})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 申请尚未通过
	seedFriendship(t, store, uidAlice, uidBob, friendship_status_enum.PENDING)
	_, err = svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "private", TargetUid: uidBob,
	})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestCreatePrivateInvalidTarget(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{Type: "private"})
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))

	_, err = svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "private", TargetUid: uidAlice,
	})
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))
}

func TestCreatePrivateIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	f := seedFriendship(t, store, uidAlice, uidBob, friendship_status_enum.ACCEPTED)

	rsp, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "private", TargetUid: uidBob,
	})
	require.NoError(t, err)
	require.Len(t, rsp.Uuid, 20)
	assert.Equal(t, byte('C'), rsp.Uuid[0])
	assert.Equal(t, conversation_type_enum.PRIVATE, rsp.Type)
	// 私聊条目显示对方昵称
	assert.Equal(t, uidBob, rsp.PeerUid)
	assert.Equal(t, "鲍勃", rsp.Name)

	// 会话 uuid 回填到好友关系
	updated, err := store.Friendship.FindByUuid(f.Uuid)
	require.NoError(t, err)
	assert.Equal(t, rsp.Uuid, updated.ConversationUuid)

	// 双方都是成员
	_, err = store.Participant.FindByConversationAndUser(rsp.Uuid, uidAlice)
	assert.NoError(t, err)
	_, err = store.Participant.FindByConversationAndUser(rsp.Uuid, uidBob)
	assert.NoError(t, err)

	// 任一侧重复创建都返回同一会话
	again, err := svc.CreateConversation(uidBob, request.CreateConversationRequest{
		Type: "private", TargetUid: uidAlice,
	})
	require.NoError(t, err)
	assert.Equal(t, rsp.Uuid, again.Uuid)
}

func TestCreateGroup(t *testing.T) {
	svc, store := newTestService(t)

	// 成员列表中的重复项和创建者本人都会被去重
	rsp, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type:      "group",
		Name:      "周末爬山",
		MemberIds: []string{uidBob, uidBob, uidAlice, uidCarol},
	})
	require.NoError(t, err)
	assert.Equal(t, conversation_type_enum.GROUP, rsp.Type)
	assert.Equal(t, "周末爬山", rsp.Name)

	members, err := store.Participant.FindActiveByConversation(rsp.Uuid)
	require.NoError(t, err)
	require.Len(t, members, 3)
	owner, err := store.Participant.FindByConversationAndUser(rsp.Uuid, uidAlice)
	require.NoError(t, err)
	assert.Equal(t, participant_role_enum.OWNER, owner.Role)
	member, err := store.Participant.FindByConversationAndUser(rsp.Uuid, uidBob)
	require.NoError(t, err)
	assert.Equal(t, participant_role_enum.MEMBER, member.Role)
}

func TestCreateGroupValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{Type: "group"})
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))

	_, err = svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "测试群", MemberIds: []string{"19999999999"},
	})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = svc.CreateConversation(uidAlice, request.CreateConversationRequest{Type: "ai"})
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))
}

func TestListConversationsOrderAndUnread(t *testing.T) {
	svc, store := newTestService(t)

	older, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "旧群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)
	newer, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "新群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)
	pinned, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "置顶群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Conversation.UpdateFields(older.Uuid, map[string]any{"last_message_at": base}))
	require.NoError(t, store.Conversation.UpdateFields(newer.Uuid, map[string]any{"last_message_at": base.Add(10 * time.Minute)}))
	require.NoError(t, store.Participant.UpdateFields(pinned.Uuid, uidAlice, map[string]any{"is_pinned": true}))

	// 旧群里鲍勃发了两条爱丽丝没读过的消息
	for i, uuid := range []int64{101, 102} {
		require.NoError(t, store.Message.Create(&model.Message{
			Uuid:             uuid,
			ConversationUuid: older.Uuid,
			SendId:           uidBob,
			Content:          "喂",
			SentAt:           base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := svc.ListConversations(uidAlice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// 置顶优先，其余按最近消息时间倒序
	assert.Equal(t, pinned.Uuid, list[0].Uuid)
	assert.True(t, list[0].IsPinned)
	assert.Equal(t, newer.Uuid, list[1].Uuid)
	assert.Equal(t, older.Uuid, list[2].Uuid)
	assert.Equal(t, int64(2), list[2].UnreadCount)
	assert.Equal(t, "喂", list[2].LastMessage)
}

func TestListConversationsSkipsInactive(t *testing.T) {
	svc, store := newTestService(t)

	rsp, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "解散的群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)
	require.NoError(t, store.Conversation.UpdateFields(rsp.Uuid, map[string]any{"is_active": false}))

	list, err := svc.ListConversations(uidAlice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkAsRead(t *testing.T) {
	svc, store := newTestService(t)

	rsp, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "测试群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)

	// 非成员不能推进水位
	_, err = svc.MarkAsRead(uidCarol, rsp.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	readAt, err := svc.MarkAsRead(uidAlice, rsp.Uuid)
	require.NoError(t, err)
	p, err := store.Participant.FindByConversationAndUser(rsp.Uuid, uidAlice)
	require.NoError(t, err)
	require.True(t, p.LastReadAt.Valid)
	assert.Equal(t, readAt, p.LastReadAt.Time)
}

func TestActiveParticipantLookups(t *testing.T) {
	svc, _ := newTestService(t)

	rsp, err := svc.CreateConversation(uidAlice, request.CreateConversationRequest{
		Type: "group", Name: "测试群", MemberIds: []string{uidBob},
	})
	require.NoError(t, err)

	uids, err := svc.ActiveParticipantIds(rsp.Uuid)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{uidAlice, uidBob}, uids)

	uuids, err := svc.ActiveConversationUuids(uidBob)
	require.NoError(t, err)
	assert.Equal(t, []string{rsp.Uuid}, uuids)
}
