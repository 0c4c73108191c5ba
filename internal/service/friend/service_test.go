package friend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitlink_server/internal/dao/postgres/repository/repostub"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/enum/notification/notification_type_enum"
	"habitlink_server/pkg/errorx"
)

const (
	uidAlice = "10000000001"
	uidBob   = "10000000002"
	uidCarol = "10000000003"
)

// newTestService 构造桩仓储上的好友服务
func newTestService(t *testing.T) (*friendService, *repostub.Store, myredis.PresenceTracker) {
	t.Helper()
	store := repostub.NewStore()
	store.User.Seed(&model.UserInfo{Uid: uidAlice, Username: "alice", Nickname: "爱丽丝", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidBob, Username: "bob", Nickname: "鲍勃", IsActive: true})
	store.User.Seed(&model.UserInfo{Uid: uidCarol, Username: "carol", Nickname: "卡罗尔", IsActive: true})
	presence := myredis.NewMemoryPresenceTracker()
	return NewFriendService(store.Repositories(), presence), store, presence
}

func acceptReq() request.RespondFriendRequest {
	return request.RespondFriendRequest{Action: "accept"}
}

func declineReq(reason string) request.RespondFriendRequest {
	return request.RespondFriendRequest{Action: "decline", Reason: reason}
}

func TestSendRequestCreatesPendingAndNotification(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{
		AddresseeId: uidBob,
		Message:     "我是爱丽丝",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", rsp.Direction)
	assert.Equal(t, uidBob, rsp.Uid)
	assert.Len(t, rsp.Uuid, 20)
	assert.Equal(t, byte('F'), rsp.Uuid[0])

	f, err := store.Friendship.FindBetween(uidAlice, uidBob)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.PENDING, f.Status)
	assert.Equal(t, uidAlice, f.RequesterId)
	assert.Equal(t, "我是爱丽丝", f.RequestMessage)

	notifications := store.Notification.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, uidBob, notifications[0].RecipientId)
	assert.Equal(t, notification_type_enum.REQUEST, notifications[0].Kind)
}

func TestSendRequestToSelf(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidAlice})
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))
}

func TestSendRequestToUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: "19999999999"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestSendRequestDuplicateBothDirections(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)

	// 同向重复
	_, err = svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 反向也算重复，应去处理已有申请
	_, err = svc.SendRequest(uidBob, request.SendFriendRequest{AddresseeId: uidAlice})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestSendRequestReusesDeclinedRecord(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, declineReq("不认识"))
	require.NoError(t, err)

	// 拒绝后反向重新申请，复用同一条记录且方向重置
	rsp2, err := svc.SendRequest(uidBob, request.SendFriendRequest{AddresseeId: uidAlice, Message: "再试一次"})
	require.NoError(t, err)
	assert.Equal(t, rsp.Uuid, rsp2.Uuid)

	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.PENDING, f.Status)
	assert.Equal(t, uidBob, f.RequesterId)
	assert.Equal(t, uidAlice, f.AddresseeId)
	assert.Equal(t, "再试一次", f.RequestMessage)
	assert.Empty(t, f.RejectReason)
}

func TestRespondToRequestAcceptCreatesConversation(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)

	convUuid, err := svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)
	require.Len(t, convUuid, 20)
	assert.Equal(t, byte('C'), convUuid[0])

	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.ACCEPTED, f.Status)
	assert.Equal(t, convUuid, f.ConversationUuid)

	// 双方都是会话成员
	_, err = store.Participant.FindByConversationAndUser(convUuid, uidAlice)
	assert.NoError(t, err)
	_, err = store.Participant.FindByConversationAndUser(convUuid, uidBob)
	assert.NoError(t, err)

	// 申请方收到通过通知
	notifications := store.Notification.All()
	last := notifications[len(notifications)-1]
	assert.Equal(t, uidAlice, last.RecipientId)
	assert.Equal(t, notification_type_enum.ACCEPTED, last.Kind)
}

func TestRespondToRequestOnlyAddressee(t *testing.T) {
	svc, _, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)

	// 申请人自己不能处理
	_, err = svc.RespondToRequest(uidAlice, rsp.Uuid, acceptReq())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 无关用户更不能处理
	_, err = svc.RespondToRequest(uidCarol, rsp.Uuid, acceptReq())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestRespondToRequestAlreadyHandled(t *testing.T) {
	svc, _, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestRemoveFriendThenReapplyReusesConversation(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	convUuid, err := svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	// 设置备注后删除，设置应被清空
	alias := "小鲍"
	require.NoError(t, svc.UpdateSettings(uidAlice, rsp.Uuid, request.UpdateFriendSettingsRequest{Alias: &alias}))
	require.NoError(t, svc.RemoveFriend(uidAlice, rsp.Uuid))

	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.DECLINED, f.Status)
	assert.Empty(t, f.RequesterAlias)

	// 重新申请并通过，会话复用，历史消息得以延续
	rsp2, err := svc.SendRequest(uidBob, request.SendFriendRequest{AddresseeId: uidAlice})
	require.NoError(t, err)
	convUuid2, err := svc.RespondToRequest(uidAlice, rsp2.Uuid, acceptReq())
	require.NoError(t, err)
	assert.Equal(t, convUuid, convUuid2)
}

func TestRemoveFriendRequiresAccepted(t *testing.T) {
	svc, _, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)

	err = svc.RemoveFriend(uidAlice, rsp.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	err = svc.RemoveFriend(uidCarol, rsp.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestBlockAndUnblock(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	require.NoError(t, svc.Block(uidAlice, rsp.Uuid))
	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.BLOCKED, f.Status)
	assert.Equal(t, uidAlice, f.BlockedBy)

	// 被拉黑方不能取消拉黑
	err = svc.Unblock(uidBob, rsp.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	require.NoError(t, svc.Unblock(uidAlice, rsp.Uuid))
	f, err = store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.ACCEPTED, f.Status)
	assert.Empty(t, f.BlockedBy)
}

func TestBlockFromPending(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)

	// 被申请人可以不处理直接拉黑
	require.NoError(t, svc.Block(uidBob, rsp.Uuid))
	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, friendship_status_enum.BLOCKED, f.Status)

	// 拉黑状态不能重复拉黑
	err = svc.Block(uidAlice, rsp.Uuid)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestUpdateSettingsSideSpecific(t *testing.T) {
	svc, store, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	alias := "小鲍"
	starred := true
	require.NoError(t, svc.UpdateSettings(uidAlice, rsp.Uuid, request.UpdateFriendSettingsRequest{
		Alias:   &alias,
		Starred: &starred,
	}))

	f, err := store.Friendship.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, "小鲍", f.RequesterAlias)
	assert.True(t, f.RequesterStarred)
	// 对方那一侧不受影响
	assert.Empty(t, f.AddresseeAlias)
	assert.False(t, f.AddresseeStarred)
}

func TestListFriends(t *testing.T) {
	svc, _, presence := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	alias := "小鲍"
	require.NoError(t, svc.UpdateSettings(uidAlice, rsp.Uuid, request.UpdateFriendSettingsRequest{Alias: &alias}))
	require.NoError(t, presence.SetOnline(context.Background(), uidBob))

	list, err := svc.ListFriends(uidAlice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uidBob, list[0].Uid)
	assert.Equal(t, "鲍勃", list[0].Nickname)
	assert.Equal(t, "小鲍", list[0].Alias)
	assert.True(t, list[0].Online)
	assert.NotEmpty(t, list[0].ConversationUuid)

	// 对端视角没有备注，且对方（爱丽丝）不在线
	list, err = svc.ListFriends(uidBob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uidAlice, list[0].Uid)
	assert.Empty(t, list[0].Alias)
	assert.False(t, list[0].Online)
}

func TestListRequests(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob, Message: "你好"})
	require.NoError(t, err)

	received, err := svc.ListRequests(uidBob, "")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "received", received[0].Direction)
	assert.Equal(t, uidAlice, received[0].Uid)
	assert.Equal(t, "你好", received[0].Message)

	sent, err := svc.ListRequests(uidAlice, "sent")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, uidBob, sent[0].Uid)

	_, err = svc.ListRequests(uidAlice, "both")
	assert.Equal(t, errorx.CodeInvalidArgument, errorx.GetCode(err))
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	svc, _, _ := newTestService(t)

	rsp, err := svc.SendRequest(uidAlice, request.SendFriendRequest{AddresseeId: uidBob})
	require.NoError(t, err)
	_, err = svc.RespondToRequest(uidBob, rsp.Uuid, acceptReq())
	require.NoError(t, err)

	// 爱丽丝收到"已通过"通知
	list, err := svc.ListNotifications(uidAlice, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notification_type_enum.ACCEPTED, list[0].Kind)
	assert.Equal(t, "鲍勃", list[0].SenderNickname)

	affected, err := svc.MarkNotificationsRead(uidAlice, request.MarkNotificationsReadRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	list, err = svc.ListNotifications(uidAlice, true)
	require.NoError(t, err)
	assert.Empty(t, list)
}
