// Package friend 好友关系业务逻辑
// 实现好友状态机的全部迁移：
// PENDING -> {ACCEPTED, DECLINED}; ACCEPTED <-> BLOCKED
// 申请通过时在同一事务内派生私聊会话
package friend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habitlink_server/internal/dao/postgres/repository"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/enum/notification/notification_type_enum"
	"habitlink_server/pkg/errorx"
	"habitlink_server/pkg/util/random"
)

// friendService 好友关系业务逻辑实现
type friendService struct {
	repos    *repository.Repositories
	presence myredis.PresenceTracker
}

// NewFriendService 构造函数
func NewFriendService(repos *repository.Repositories, presence myredis.PresenceTracker) *friendService {
	return &friendService{repos: repos, presence: presence}
}

// newFriendshipUuid 生成好友关系 uuid，F + 19 位
func newFriendshipUuid() string {
	return "F" + random.GetNowAndLenRandomString(13)
}

// newNotificationUuid 生成通知 uuid，N + 19 位
func newNotificationUuid() string {
	return "N" + random.GetNowAndLenRandomString(13)
}

// newConversationUuid 生成会话 uuid，C + 19 位
func newConversationUuid() string {
	return "C" + random.GetNowAndLenRandomString(13)
}

// SendRequest 发送好友申请
// 已拒绝（或已删除）的记录复用重置为申请中，方向随新申请人；
// 申请中/已通过返回 Conflict，已拉黑返回 Forbidden
func (s *friendService) SendRequest(requesterId string, req request.SendFriendRequest) (*respond.FriendRequestRespond, error) {
	if requesterId == req.AddresseeId {
		return nil, errorx.New(errorx.CodeInvalidArgument, "不能添加自己为好友")
	}

	addressee, err := s.repos.User.FindByUid(req.AddresseeId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
		}
		return nil, err
	}

	existing, err := s.repos.Friendship.FindBetween(requesterId, req.AddresseeId)
	if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error("find friendship error", zap.Error(err))
		return nil, err
	}

	var friendshipUuid string
	txErr := s.repos.Transaction(func(tx *repository.Repositories) error {
		if existing == nil {
			friendship := &model.Friendship{
				Uuid:           newFriendshipUuid(),
				RequesterId:    requesterId,
				AddresseeId:    req.AddresseeId,
				Status:         friendship_status_enum.PENDING,
				RequestMessage: req.Message,
			}
			if err := tx.Friendship.Create(friendship); err != nil {
				return err
			}
			friendshipUuid = friendship.Uuid
		} else {
			switch existing.Status {
			case friendship_status_enum.PENDING:
				// 双向都算重复：对方已申请时应去处理申请而不是反向再发
				return errorx.New(errorx.CodeConflict, "已有待处理的好友申请")
			case friendship_status_enum.ACCEPTED:
				return errorx.New(errorx.CodeConflict, "已经是好友")
			case friendship_status_enum.BLOCKED:
				return errorx.New(errorx.CodeForbidden, "无法发送好友申请")
			case friendship_status_enum.DECLINED:
				// 复用原记录，方向重置为本次申请人
				if err := tx.Friendship.UpdateFields(existing.Uuid, map[string]any{
					"requester_id":    requesterId,
					"addressee_id":    req.AddresseeId,
					"status":          friendship_status_enum.PENDING,
					"request_message": req.Message,
					"reject_reason":   "",
					"blocked_by":      "",
				}); err != nil {
					return err
				}
				friendshipUuid = existing.Uuid
			}
		}

		return tx.FriendNotification.Create(&model.FriendNotification{
			Uuid:           newNotificationUuid(),
			FriendshipUuid: friendshipUuid,
			RecipientId:    req.AddresseeId,
			SenderId:       requesterId,
			Kind:           notification_type_enum.REQUEST,
			Message:        req.Message,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("friend request sent",
		zap.String("requester", requesterId),
		zap.String("addressee", req.AddresseeId),
		zap.String("friendship", friendshipUuid))

	return &respond.FriendRequestRespond{
		Uuid:      friendshipUuid,
		Direction: "sent",
		Uid:       addressee.Uid,
		Username:  addressee.Username,
		Nickname:  addressee.Nickname,
		Avatar:    addressee.Avatar,
		Message:   req.Message,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// RespondToRequest 处理好友申请，仅被申请人可调用
// 通过时在同一事务内：改状态、建（或复用）私聊会话、加双方成员、写通知。
// 同一对好友删除后再次通过会复用之前派生的会话，消息历史得以延续
func (s *friendService) RespondToRequest(userId, friendshipUuid string, req request.RespondFriendRequest) (string, error) {
	friendship, err := s.repos.Friendship.FindByUuid(friendshipUuid)
	if err != nil {
		return "", err
	}
	if friendship.AddresseeId != userId {
		return "", errorx.New(errorx.CodeForbidden, "只有被申请人可以处理该申请")
	}
	if friendship.Status != friendship_status_enum.PENDING {
		return "", errorx.New(errorx.CodeConflict, "该申请已被处理")
	}

	accept := req.IsAccept()
	var conversationUuid string

	txErr := s.repos.Transaction(func(tx *repository.Repositories) error {
		if !accept {
			if err := tx.Friendship.UpdateFields(friendshipUuid, map[string]any{
				"status":        friendship_status_enum.DECLINED,
				"reject_reason": req.Reason,
			}); err != nil {
				return err
			}
			return tx.FriendNotification.Create(&model.FriendNotification{
				Uuid:           newNotificationUuid(),
				FriendshipUuid: friendshipUuid,
				RecipientId:    friendship.RequesterId,
				SenderId:       userId,
				Kind:           notification_type_enum.DECLINED,
				Message:        req.Reason,
			})
		}

		conversationUuid = friendship.ConversationUuid
		if conversationUuid == "" {
			// 历史上可能已有这对用户的私聊（删除好友后重加）
			if conv, err := tx.Conversation.FindPrivateByPair(friendship.RequesterId, friendship.AddresseeId); err == nil {
				conversationUuid = conv.Uuid
			} else if !errorx.IsNotFound(err) {
				return err
			}
		}
		if conversationUuid == "" {
			conversationUuid = newConversationUuid()
			if err := tx.Conversation.Create(&model.Conversation{
				Uuid:      conversationUuid,
				Type:      conversation_type_enum.PRIVATE,
				CreatorId: friendship.RequesterId,
				IsActive:  true,
			}); err != nil {
				return err
			}
			now := time.Now()
			if err := tx.Participant.CreateBatch([]model.ConversationParticipant{
				{ConversationUuid: conversationUuid, UserId: friendship.RequesterId, JoinedAt: now},
				{ConversationUuid: conversationUuid, UserId: friendship.AddresseeId, JoinedAt: now},
			}); err != nil {
				return err
			}
		}

		if err := tx.Friendship.UpdateFields(friendshipUuid, map[string]any{
			"status":            friendship_status_enum.ACCEPTED,
			"conversation_uuid": conversationUuid,
		}); err != nil {
			return err
		}
		return tx.FriendNotification.Create(&model.FriendNotification{
			Uuid:           newNotificationUuid(),
			FriendshipUuid: friendshipUuid,
			RecipientId:    friendship.RequesterId,
			SenderId:       userId,
			Kind:           notification_type_enum.ACCEPTED,
		})
	})
	if txErr != nil {
		return "", txErr
	}

	zap.L().Info("friend request responded",
		zap.String("friendship", friendshipUuid),
		zap.Bool("accept", accept),
		zap.String("conversation", conversationUuid))
	return conversationUuid, nil
}

// RemoveFriend 删除好友
// 记录重置为 DECLINED（每对用户只有一条记录，不物理删除），
// 会话及消息历史保留，之后可重新申请
func (s *friendService) RemoveFriend(userId, friendshipUuid string) error {
	friendship, err := s.repos.Friendship.FindByUuid(friendshipUuid)
	if err != nil {
		return err
	}
	if !friendship.Involves(userId) {
		return errorx.New(errorx.CodeForbidden, "无权操作该好友关系")
	}
	if friendship.Status != friendship_status_enum.ACCEPTED {
		return errorx.New(errorx.CodeConflict, "当前不是好友关系")
	}

	return s.repos.Friendship.UpdateFields(friendshipUuid, map[string]any{
		"status":            friendship_status_enum.DECLINED,
		"requester_alias":   "",
		"addressee_alias":   "",
		"requester_starred": false,
		"addressee_starred": false,
		"requester_muted":   false,
		"addressee_muted":   false,
	})
}

// Block 拉黑好友
// 拉黑后双方均无法互发消息，仅拉黑发起方可取消
func (s *friendService) Block(userId, friendshipUuid string) error {
	friendship, err := s.repos.Friendship.FindByUuid(friendshipUuid)
	if err != nil {
		return err
	}
	if !friendship.Involves(userId) {
		return errorx.New(errorx.CodeForbidden, "无权操作该好友关系")
	}
	if friendship.Status != friendship_status_enum.ACCEPTED && friendship.Status != friendship_status_enum.PENDING {
		return errorx.New(errorx.CodeConflict, "当前状态不允许拉黑")
	}

	return s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Friendship.UpdateFields(friendshipUuid, map[string]any{
			"status":     friendship_status_enum.BLOCKED,
			"blocked_by": userId,
		}); err != nil {
			return err
		}
		return tx.FriendNotification.Create(&model.FriendNotification{
			Uuid:           newNotificationUuid(),
			FriendshipUuid: friendshipUuid,
			RecipientId:    friendship.OtherSide(userId),
			SenderId:       userId,
			Kind:           notification_type_enum.BLOCKED,
		})
	})
}

// Unblock 取消拉黑，仅拉黑发起方可调用，恢复为 ACCEPTED
func (s *friendService) Unblock(userId, friendshipUuid string) error {
	friendship, err := s.repos.Friendship.FindByUuid(friendshipUuid)
	if err != nil {
		return err
	}
	if friendship.Status != friendship_status_enum.BLOCKED {
		return errorx.New(errorx.CodeConflict, "该好友未被拉黑")
	}
	if friendship.BlockedBy != userId {
		return errorx.New(errorx.CodeForbidden, "只有拉黑发起方可以取消拉黑")
	}

	return s.repos.Friendship.UpdateFields(friendshipUuid, map[string]any{
		"status":     friendship_status_enum.ACCEPTED,
		"blocked_by": "",
	})
}

// UpdateSettings 更新备注名/星标/免打扰
// 每侧设置独立存储，只写调用方自己那一侧的字段
func (s *friendService) UpdateSettings(userId, friendshipUuid string, req request.UpdateFriendSettingsRequest) error {
	friendship, err := s.repos.Friendship.FindByUuid(friendshipUuid)
	if err != nil {
		return err
	}
	if !friendship.Involves(userId) {
		return errorx.New(errorx.CodeForbidden, "无权操作该好友关系")
	}

	isRequester := friendship.RequesterId == userId
	fields := make(map[string]any)
	if req.Alias != nil {
		if isRequester {
			fields["requester_alias"] = *req.Alias
		} else {
			fields["addressee_alias"] = *req.Alias
		}
	}
	if req.Starred != nil {
		if isRequester {
			fields["requester_starred"] = *req.Starred
		} else {
			fields["addressee_starred"] = *req.Starred
		}
	}
	if req.Muted != nil {
		if isRequester {
			fields["requester_muted"] = *req.Muted
		} else {
			fields["addressee_muted"] = *req.Muted
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return s.repos.Friendship.UpdateFields(friendshipUuid, fields)
}

// ListFriends 好友列表
// 视角归一化：每条记录转换为"对方资料 + 我这一侧的设置"，
// 附带在线状态（presence）和推导的未读数
func (s *friendService) ListFriends(userId string) ([]respond.FriendRespond, error) {
	friendships, err := s.repos.Friendship.FindFriendsByUser(userId, friendship_status_enum.ACCEPTED)
	if err != nil {
		return nil, err
	}
	if len(friendships) == 0 {
		return []respond.FriendRespond{}, nil
	}

	otherIds := make([]string, 0, len(friendships))
	for _, f := range friendships {
		otherIds = append(otherIds, f.OtherSide(userId))
	}
	users, err := s.repos.User.FindByUids(otherIds)
	if err != nil {
		return nil, err
	}
	userByUid := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		userByUid[u.Uid] = u
	}

	onlineSet := make(map[string]bool)
	if s.presence != nil {
		if online, err := s.presence.FilterOnline(context.Background(), otherIds); err == nil {
			for _, uid := range online {
				onlineSet[uid] = true
			}
		} else {
			zap.L().Warn("filter online error", zap.Error(err))
		}
	}

	list := make([]respond.FriendRespond, 0, len(friendships))
	for _, f := range friendships {
		otherUid := f.OtherSide(userId)
		other := userByUid[otherUid]
		isRequester := f.RequesterId == userId

		item := respond.FriendRespond{
			FriendshipUuid:   f.Uuid,
			Uid:              other.Uid,
			Username:         other.Username,
			Nickname:         other.Nickname,
			Avatar:           other.Avatar,
			Online:           onlineSet[otherUid],
			ConversationUuid: f.ConversationUuid,
		}
		if isRequester {
			item.Alias = f.RequesterAlias
			item.Starred = f.RequesterStarred
			item.Muted = f.RequesterMuted
		} else {
			item.Alias = f.AddresseeAlias
			item.Starred = f.AddresseeStarred
			item.Muted = f.AddresseeMuted
		}
		if f.LastMessageAt.Valid {
			item.LastMessageAt = f.LastMessageAt.Time.Format("2006-01-02 15:04:05")
		}
		if f.ConversationUuid != "" {
			item.UnreadCount = s.unreadCount(f.ConversationUuid, userId)
		}
		list = append(list, item)
	}
	return list, nil
}

// unreadCount 推导未读数：已读水位之后且非本人发送的消息条数
func (s *friendService) unreadCount(conversationUuid, userId string) int64 {
	participant, err := s.repos.Participant.FindByConversationAndUser(conversationUuid, userId)
	if err != nil {
		return 0
	}
	var after time.Time
	if participant.LastReadAt.Valid {
		after = participant.LastReadAt.Time
	}
	count, err := s.repos.Message.CountUnread(conversationUuid, userId, after)
	if err != nil {
		zap.L().Warn("count unread error", zap.Error(err))
		return 0
	}
	return count
}

// ListRequests 待处理申请列表
// direction: received 我收到的，sent 我发出的
func (s *friendService) ListRequests(userId, direction string) ([]respond.FriendRequestRespond, error) {
	var friendships []model.Friendship
	var err error
	switch direction {
	case "", "received":
		direction = "received"
		friendships, err = s.repos.Friendship.FindPendingReceived(userId)
	case "sent":
		friendships, err = s.repos.Friendship.FindPendingSent(userId)
	default:
		return nil, errorx.New(errorx.CodeInvalidArgument, "direction 必须是 received 或 sent")
	}
	if err != nil {
		return nil, err
	}
	if len(friendships) == 0 {
		return []respond.FriendRequestRespond{}, nil
	}

	otherIds := make([]string, 0, len(friendships))
	for _, f := range friendships {
		otherIds = append(otherIds, f.OtherSide(userId))
	}
	users, err := s.repos.User.FindByUids(otherIds)
	if err != nil {
		return nil, err
	}
	userByUid := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		userByUid[u.Uid] = u
	}

	list := make([]respond.FriendRequestRespond, 0, len(friendships))
	for _, f := range friendships {
		other := userByUid[f.OtherSide(userId)]
		list = append(list, respond.FriendRequestRespond{
			Uuid:      f.Uuid,
			Direction: direction,
			Uid:       other.Uid,
			Username:  other.Username,
			Nickname:  other.Nickname,
			Avatar:    other.Avatar,
			Message:   f.RequestMessage,
			CreatedAt: f.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return list, nil
}

// ListNotifications 好友通知列表，按时间倒序
func (s *friendService) ListNotifications(userId string, onlyUnread bool) ([]respond.NotificationRespond, error) {
	notifications, err := s.repos.FriendNotification.FindByRecipient(userId, onlyUnread)
	if err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return []respond.NotificationRespond{}, nil
	}

	senderIds := make([]string, 0, len(notifications))
	for _, n := range notifications {
		senderIds = append(senderIds, n.SenderId)
	}
	users, err := s.repos.User.FindByUids(senderIds)
	if err != nil {
		return nil, err
	}
	nicknameByUid := make(map[string]string, len(users))
	for _, u := range users {
		nicknameByUid[u.Uid] = u.Nickname
	}

	list := make([]respond.NotificationRespond, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, respond.NotificationRespond{
			Uuid:           n.Uuid,
			FriendshipUuid: n.FriendshipUuid,
			SenderId:       n.SenderId,
			SenderNickname: nicknameByUid[n.SenderId],
			Kind:           n.Kind,
			Message:        n.Message,
			IsRead:         n.IsRead,
			CreatedAt:      n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return list, nil
}

// MarkNotificationsRead 标记通知已读，uuids 为空标记全部
func (s *friendService) MarkNotificationsRead(userId string, req request.MarkNotificationsReadRequest) (int64, error) {
	return s.repos.FriendNotification.MarkRead(userId, req.Uuids, time.Now())
}
