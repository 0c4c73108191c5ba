// Package message 消息业务逻辑
// 消息 ID 用雪花算法生成，排序键为 (sent_at, uuid)；
// 发送前校验会话成员资格和好友拉黑状态
package message

import (
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"habitlink_server/internal/dao/postgres/repository"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/constants"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/enum/message/message_status_enum"
	"habitlink_server/pkg/enum/message/message_type_enum"
	"habitlink_server/pkg/errorx"
	"habitlink_server/pkg/util/snowflake"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos *repository.Repositories
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories) *messageService {
	return &messageService{repos: repos}
}

// SendMessage 发送消息
// 校验链：会话存在 -> 发送者是在场成员 -> （私聊）好友关系未被拉黑
// 落库后返回统一消息表示和应接收推送的成员 UID 列表
func (s *messageService) SendMessage(senderId string, req request.SendMessageRequest) (*respond.MessageRespond, []string, error) {
	if req.Type == message_type_enum.Text {
		if req.Content == "" {
			return nil, nil, errorx.New(errorx.CodeInvalidArgument, "消息内容不能为空")
		}
		if len(req.Content) > constants.CONTENT_MAX_LEN {
			return nil, nil, errorx.New(errorx.CodeInvalidArgument, "消息内容过长")
		}
	}

	conv, err := s.repos.Conversation.FindByUuid(req.ConversationUuid)
	if err != nil {
		return nil, nil, err
	}
	if !conv.IsActive {
		return nil, nil, errorx.New(errorx.CodeForbidden, "会话已失效")
	}

	participant, err := s.repos.Participant.FindByConversationAndUser(conv.Uuid, senderId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil, errorx.New(errorx.CodeForbidden, "不是该会话的成员")
		}
		return nil, nil, err
	}
	if !participant.Active() {
		return nil, nil, errorx.New(errorx.CodeForbidden, "不是该会话的成员")
	}

	participants, err := s.repos.Participant.FindActiveByConversation(conv.Uuid)
	if err != nil {
		return nil, nil, err
	}
	recipients := make([]string, 0, len(participants))
	for _, p := range participants {
		recipients = append(recipients, p.UserId)
	}

	// 私聊额外校验好友状态：拉黑双向禁止发送
	var friendship *model.Friendship
	if conv.Type == conversation_type_enum.PRIVATE {
		peerUid := ""
		for _, uid := range recipients {
			if uid != senderId {
				peerUid = uid
				break
			}
		}
		if peerUid != "" {
			friendship, err = s.repos.Friendship.FindBetween(senderId, peerUid)
			if err != nil && !errorx.IsNotFound(err) {
				return nil, nil, err
			}
			if friendship != nil && friendship.Status == friendship_status_enum.BLOCKED {
				return nil, nil, errorx.New(errorx.CodeForbidden, "无法发送消息")
			}
			if friendship == nil || friendship.Status != friendship_status_enum.ACCEPTED {
				return nil, nil, errorx.New(errorx.CodeForbidden, "只能给好友发送消息")
			}
		}
	}

	var replyTo int64
	if req.ReplyTo != "" {
		replyTo, err = strconv.ParseInt(req.ReplyTo, 10, 64)
		if err != nil {
			return nil, nil, errorx.New(errorx.CodeInvalidArgument, "reply_to 格式错误")
		}
	}
	mentions := ""
	if len(req.Mentions) > 0 {
		if b, err := json.Marshal(req.Mentions); err == nil {
			mentions = string(b)
		}
	}

	msg := &model.Message{
		Uuid:             snowflake.GenerateID(),
		ConversationUuid: conv.Uuid,
		SendId:           senderId,
		Content:          req.Content,
		Type:             req.Type,
		Url:              req.Url,
		FileName:         req.FileName,
		FileSize:         req.FileSize,
		ReplyTo:          replyTo,
		Mentions:         mentions,
		Status:           message_status_enum.Unsent,
		SentAt:           time.Now(),
	}

	txErr := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		if err := tx.Conversation.UpdateFields(conv.Uuid, map[string]any{
			"last_message_at": msg.SentAt,
		}); err != nil {
			return err
		}
		// 发送者已读自己刚发的消息
		if err := tx.Participant.UpdateLastRead(conv.Uuid, senderId, msg.SentAt); err != nil {
			return err
		}
		if friendship != nil {
			return tx.Friendship.UpdateFields(friendship.Uuid, map[string]any{
				"last_message_at": msg.SentAt,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	zap.L().Debug("message sent",
		zap.Int64("uuid", msg.Uuid),
		zap.String("conversation", conv.Uuid),
		zap.String("sender", senderId))

	rsp := s.buildRespond(msg, nil)
	if sender, err := s.repos.User.FindByUid(senderId); err == nil {
		rsp.SenderNickname = sender.Nickname
		rsp.SenderAvatar = sender.Avatar
	}
	return rsp, recipients, nil
}

// GetMessageList 分页拉取会话消息，仅会话成员可调用
// 按 (sent_at, uuid) 倒序，最新的在前
func (s *messageService) GetMessageList(userId, conversationUuid string, page, size int) (*respond.MessageListRespond, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = constants.MESSAGE_PAGE_SIZE
	}
	if size > constants.MESSAGE_PAGE_MAX_SIZE {
		size = constants.MESSAGE_PAGE_MAX_SIZE
	}

	if _, err := s.repos.Participant.FindByConversationAndUser(conversationUuid, userId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "不是该会话的成员")
		}
		return nil, err
	}

	messages, err := s.repos.Message.FindPageByConversation(conversationUuid, page, size)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Message.CountByConversation(conversationUuid)
	if err != nil {
		return nil, err
	}

	// 批量拉取发送者资料
	senderIds := make([]string, 0, len(messages))
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.SendId != "" && !seen[m.SendId] {
			seen[m.SendId] = true
			senderIds = append(senderIds, m.SendId)
		}
	}
	users, err := s.repos.User.FindByUids(senderIds)
	if err != nil {
		return nil, err
	}
	userByUid := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		userByUid[u.Uid] = u
	}

	list := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		list = append(list, *s.buildRespond(&messages[i], userByUid))
	}
	return &respond.MessageListRespond{
		Messages: list,
		Page:     page,
		Size:     size,
		Total:    total,
	}, nil
}

// EditMessage 编辑消息文本，仅发送者可编辑自己的文本消息
func (s *messageService) EditMessage(userId string, messageUuid int64, req request.EditMessageRequest) (*respond.MessageRespond, []string, error) {
	msg, err := s.repos.Message.FindByUuid(messageUuid)
	if err != nil {
		return nil, nil, err
	}
	if msg.SendId != userId {
		return nil, nil, errorx.New(errorx.CodeForbidden, "只能编辑自己发送的消息")
	}
	if msg.IsRevoked {
		return nil, nil, errorx.New(errorx.CodeConflict, "消息已被删除")
	}
	if msg.Type != message_type_enum.Text {
		return nil, nil, errorx.New(errorx.CodeInvalidArgument, "只能编辑文本消息")
	}
	if len(req.Content) > constants.CONTENT_MAX_LEN {
		return nil, nil, errorx.New(errorx.CodeInvalidArgument, "消息内容过长")
	}

	now := time.Now()
	if err := s.repos.Message.UpdateFields(messageUuid, map[string]any{
		"content":   req.Content,
		"is_edited": true,
		"edited_at": now,
	}); err != nil {
		return nil, nil, err
	}
	msg.Content = req.Content
	msg.IsEdited = true

	recipients, err := s.activeRecipients(msg.ConversationUuid)
	if err != nil {
		return nil, nil, err
	}
	return s.buildRespond(msg, nil), recipients, nil
}

// DeleteMessage 删除消息
// 软删除：消息保留排序位置，内容对外隐藏
func (s *messageService) DeleteMessage(userId string, messageUuid int64) (*respond.MessageRespond, []string, error) {
	msg, err := s.repos.Message.FindByUuid(messageUuid)
	if err != nil {
		return nil, nil, err
	}
	if msg.SendId != userId {
		return nil, nil, errorx.New(errorx.CodeForbidden, "只能删除自己发送的消息")
	}
	if msg.IsRevoked {
		return nil, nil, errorx.New(errorx.CodeConflict, "消息已被删除")
	}

	now := time.Now()
	if err := s.repos.Message.UpdateFields(messageUuid, map[string]any{
		"is_revoked": true,
		"revoked_at": now,
	}); err != nil {
		return nil, nil, err
	}
	msg.IsRevoked = true

	recipients, err := s.activeRecipients(msg.ConversationUuid)
	if err != nil {
		return nil, nil, err
	}
	return s.buildRespond(msg, nil), recipients, nil
}

// activeRecipients 会话在场成员 UID 列表
func (s *messageService) activeRecipients(conversationUuid string) ([]string, error) {
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

// buildRespond 将消息模型转换为统一对外表示
// 已删除的消息不暴露原文；userByUid 非空时填充发送者资料
func (s *messageService) buildRespond(msg *model.Message, userByUid map[string]model.UserInfo) *respond.MessageRespond {
	rsp := &respond.MessageRespond{
		Uuid:             strconv.FormatInt(msg.Uuid, 10),
		ConversationUuid: msg.ConversationUuid,
		SendId:           msg.SendId,
		Content:          msg.Content,
		Type:             msg.Type,
		Url:              msg.Url,
		FileName:         msg.FileName,
		FileSize:         msg.FileSize,
		Mentions:         msg.Mentions,
		IsEdited:         msg.IsEdited,
		IsRevoked:        msg.IsRevoked,
		Status:           msg.Status,
		SentAt:           msg.SentAt.Format("2006-01-02 15:04:05.000"),
	}
	if msg.ReplyTo != 0 {
		rsp.ReplyTo = strconv.FormatInt(msg.ReplyTo, 10)
	}
	if msg.IsRevoked {
		rsp.Content = ""
		rsp.Url = ""
		rsp.FileName = ""
	}
	if userByUid != nil {
		if u, ok := userByUid[msg.SendId]; ok {
			rsp.SenderNickname = u.Nickname
			rsp.SenderAvatar = u.Avatar
		}
	}
	return rsp
}
