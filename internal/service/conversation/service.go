// Package conversation 会话业务逻辑
// 会话是有序消息日志的容器：私聊由好友关系派生（幂等），群聊显式创建
package conversation

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"habitlink_server/internal/dao/postgres/repository"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/enum/message/message_type_enum"
	"habitlink_server/pkg/enum/participant/participant_role_enum"
	"habitlink_server/pkg/errorx"
	"habitlink_server/pkg/util/random"
)

// conversationService 会话业务逻辑实现
type conversationService struct {
	repos *repository.Repositories
}

// NewConversationService 构造函数
func NewConversationService(repos *repository.Repositories) *conversationService {
	return &conversationService{repos: repos}
}

// newConversationUuid 生成会话 uuid，C + 19 位
func newConversationUuid() string {
	return "C" + random.GetNowAndLenRandomString(13)
}

// CreateConversation 创建会话
// 私聊：双方必须是好友（ACCEPTED），重复创建返回已有会话（幂等）；
// 群聊：创建者为 OWNER，member_ids 为初始成员
func (s *conversationService) CreateConversation(userId string, req request.CreateConversationRequest) (*respond.ConversationRespond, error) {
	switch req.Type {
	case "private":
		return s.createPrivate(userId, req.TargetUid)
	case "group":
		return s.createGroup(userId, req)
	}
	return nil, errorx.New(errorx.CodeInvalidArgument, "不支持的会话类型")
}

// createPrivate 创建（或返回已有）私聊会话
func (s *conversationService) createPrivate(userId, targetUid string) (*respond.ConversationRespond, error) {
	if targetUid == "" {
		return nil, errorx.New(errorx.CodeInvalidArgument, "私聊会话必须指定对方")
	}
	if targetUid == userId {
		return nil, errorx.New(errorx.CodeInvalidArgument, "不能和自己建立私聊")
	}

	friendship, err := s.repos.Friendship.FindBetween(userId, targetUid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "只能和好友建立私聊")
		}
		return nil, err
	}
	if friendship.Status != friendship_status_enum.ACCEPTED {
		return nil, errorx.New(errorx.CodeForbidden, "只能和好友建立私聊")
	}

	// 好友关系通过时已派生会话，这里只是兜底幂等返回
	if friendship.ConversationUuid != "" {
		conv, err := s.repos.Conversation.FindByUuid(friendship.ConversationUuid)
		if err == nil {
			return s.buildRespond(conv, userId), nil
		}
		if !errorx.IsNotFound(err) {
			return nil, err
		}
	}
	if conv, err := s.repos.Conversation.FindPrivateByPair(userId, targetUid); err == nil {
		return s.buildRespond(conv, userId), nil
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	var conv *model.Conversation
	txErr := s.repos.Transaction(func(tx *repository.Repositories) error {
		conv = &model.Conversation{
			Uuid:      newConversationUuid(),
			Type:      conversation_type_enum.PRIVATE,
			CreatorId: userId,
			IsActive:  true,
		}
		if err := tx.Conversation.Create(conv); err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Participant.CreateBatch([]model.ConversationParticipant{
			{ConversationUuid: conv.Uuid, UserId: userId, JoinedAt: now},
			{ConversationUuid: conv.Uuid, UserId: targetUid, JoinedAt: now},
		}); err != nil {
			return err
		}
		return tx.Friendship.UpdateFields(friendship.Uuid, map[string]any{
			"conversation_uuid": conv.Uuid,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("private conversation created",
		zap.String("conversation", conv.Uuid),
		zap.String("user", userId),
		zap.String("target", targetUid))
	return s.buildRespond(conv, userId), nil
}

// createGroup 创建群聊会话
func (s *conversationService) createGroup(userId string, req request.CreateConversationRequest) (*respond.ConversationRespond, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.CodeInvalidArgument, "群聊名称不能为空")
	}

	memberIds := make([]string, 0, len(req.MemberIds))
	seen := map[string]bool{userId: true}
	for _, uid := range req.MemberIds {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		memberIds = append(memberIds, uid)
	}
	if len(memberIds) > 0 {
		users, err := s.repos.User.FindByUids(memberIds)
		if err != nil {
			return nil, err
		}
		if len(users) != len(memberIds) {
			return nil, errorx.New(errorx.CodeNotFound, "部分成员不存在")
		}
	}

	var conv *model.Conversation
	txErr := s.repos.Transaction(func(tx *repository.Repositories) error {
		conv = &model.Conversation{
			Uuid:        newConversationUuid(),
			Type:        conversation_type_enum.GROUP,
			Name:        req.Name,
			Description: req.Description,
			CreatorId:   userId,
			IsActive:    true,
		}
		if err := tx.Conversation.Create(conv); err != nil {
			return err
		}
		now := time.Now()
		participants := []model.ConversationParticipant{
			{ConversationUuid: conv.Uuid, UserId: userId, Role: participant_role_enum.OWNER, JoinedAt: now},
		}
		for _, uid := range memberIds {
			participants = append(participants, model.ConversationParticipant{
				ConversationUuid: conv.Uuid,
				UserId:           uid,
				Role:             participant_role_enum.MEMBER,
				JoinedAt:         now,
			})
		}
		return tx.Participant.CreateBatch(participants)
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("group conversation created",
		zap.String("conversation", conv.Uuid),
		zap.String("creator", userId),
		zap.Int("members", len(memberIds)+1))
	return s.buildRespond(conv, userId), nil
}

// ListConversations 会话列表，按最近消息时间倒序
// 未读数由已读水位实时推导，私聊条目填充对方资料
func (s *conversationService) ListConversations(userId string) ([]respond.ConversationRespond, error) {
	participants, err := s.repos.Participant.FindActiveByUser(userId)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return []respond.ConversationRespond{}, nil
	}

	uuids := make([]string, 0, len(participants))
	participantByConv := make(map[string]model.ConversationParticipant, len(participants))
	for _, p := range participants {
		uuids = append(uuids, p.ConversationUuid)
		participantByConv[p.ConversationUuid] = p
	}
	conversations, err := s.repos.Conversation.FindByUuids(uuids)
	if err != nil {
		return nil, err
	}

	list := make([]respond.ConversationRespond, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		if !conv.IsActive {
			continue
		}
		item := *s.buildRespond(conv, userId)
		p := participantByConv[conv.Uuid]
		item.IsMuted = p.IsMuted
		item.IsPinned = p.IsPinned

		var after time.Time
		if p.LastReadAt.Valid {
			after = p.LastReadAt.Time
		}
		if count, err := s.repos.Message.CountUnread(conv.Uuid, userId, after); err == nil {
			item.UnreadCount = count
		}
		// 最近一条消息预览，已删除的消息不展示
		if msgs, err := s.repos.Message.FindPageByConversation(conv.Uuid, 1, 1); err == nil && len(msgs) > 0 && !msgs[0].IsRevoked {
			if msgs[0].Type == message_type_enum.Text {
				item.LastMessage = msgs[0].Content
			} else {
				item.LastMessage = msgs[0].FileName
			}
		}
		list = append(list, item)
	}

	// 置顶优先，其余按最近消息时间倒序
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsPinned != list[j].IsPinned {
			return list[i].IsPinned
		}
		return list[i].LastMessageAt > list[j].LastMessageAt
	})
	return list, nil
}

// MarkAsRead 推进已读水位到当前时间
// 水位只前进不后退，返回新水位供 WebSocket 状态广播使用
func (s *conversationService) MarkAsRead(userId, conversationUuid string) (time.Time, error) {
	if _, err := s.repos.Participant.FindByConversationAndUser(conversationUuid, userId); err != nil {
		if errorx.IsNotFound(err) {
			return time.Time{}, errorx.New(errorx.CodeForbidden, "不是该会话的成员")
		}
		return time.Time{}, err
	}
	readAt := time.Now()
	if err := s.repos.Participant.UpdateLastRead(conversationUuid, userId, readAt); err != nil {
		return time.Time{}, err
	}
	return readAt, nil
}

// ActiveParticipantIds 会话在场成员 UID 列表
func (s *conversationService) ActiveParticipantIds(conversationUuid string) ([]string, error) {
	participants, err := s.repos.Participant.FindActiveByConversation(conversationUuid)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(participants))
	for _, p := range participants {
		uids = append(uids, p.UserId)
	}
	return uids, nil
}

// ActiveConversationUuids 用户在场的会话 uuid 列表
func (s *conversationService) ActiveConversationUuids(userId string) ([]string, error) {
	participants, err := s.repos.Participant.FindActiveByUser(userId)
	if err != nil {
		return nil, err
	}
	uuids := make([]string, 0, len(participants))
	for _, p := range participants {
		uuids = append(uuids, p.ConversationUuid)
	}
	return uuids, nil
}

// buildRespond 组装会话响应，私聊填充对方资料
func (s *conversationService) buildRespond(conv *model.Conversation, userId string) *respond.ConversationRespond {
	item := &respond.ConversationRespond{
		Uuid:   conv.Uuid,
		Type:   conv.Type,
		Name:   conv.Name,
		Avatar: conv.Avatar,
	}
	if conv.LastMessageAt.Valid {
		item.LastMessageAt = conv.LastMessageAt.Time.Format("2006-01-02 15:04:05")
	}

	if conv.Type == conversation_type_enum.PRIVATE {
		if participants, err := s.repos.Participant.FindActiveByConversation(conv.Uuid); err == nil {
			for _, p := range participants {
				if p.UserId != userId {
					item.PeerUid = p.UserId
					break
				}
			}
		}
		if item.PeerUid != "" {
			if peer, err := s.repos.User.FindByUid(item.PeerUid); err == nil {
				item.Name = peer.Nickname
				item.Avatar = peer.Avatar
			}
		}
	}
	return item
}
