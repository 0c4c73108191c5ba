// Package repostub 提供 Repository 接口的内存桩实现
// 仅供 Service 层单元测试使用，不连接数据库；
// 语义（双向查询、唯一约束、已读水位只前进）与 GORM 实现保持一致
package repostub

import (
	"database/sql"
	"sort"
	"time"

	"habitlink_server/internal/dao/postgres/repository"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"
	"habitlink_server/pkg/errorx"
)

// 编译期接口检查
var (
	_ repository.UserRepository               = (*UserRepo)(nil)
	_ repository.FriendshipRepository         = (*FriendshipRepo)(nil)
	_ repository.FriendNotificationRepository = (*NotificationRepo)(nil)
	_ repository.ConversationRepository       = (*ConversationRepo)(nil)
	_ repository.ParticipantRepository        = (*ParticipantRepo)(nil)
	_ repository.MessageRepository            = (*MessageRepo)(nil)
)

// Store 聚合全部内存桩，模拟同一个数据库实例
type Store struct {
	User         *UserRepo
	Friendship   *FriendshipRepo
	Notification *NotificationRepo
	Conversation *ConversationRepo
	Participant  *ParticipantRepo
	Message      *MessageRepo
}

// NewStore 创建互相关联的内存桩集合
func NewStore() *Store {
	s := &Store{
		User:         &UserRepo{users: make(map[string]*model.UserInfo)},
		Friendship:   &FriendshipRepo{items: make(map[string]*model.Friendship)},
		Notification: &NotificationRepo{},
		Participant:  &ParticipantRepo{},
		Message:      &MessageRepo{},
	}
	s.Conversation = &ConversationRepo{
		items:        make(map[string]*model.Conversation),
		participants: s.Participant,
	}
	return s
}

// Repositories 组装成 Service 层使用的聚合对象
// db 为 nil，Transaction 会直接执行回调（无回滚）
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:               s.User,
		Friendship:         s.Friendship,
		FriendNotification: s.Notification,
		Conversation:       s.Conversation,
		Participant:        s.Participant,
		Message:            s.Message,
	}
}

func notFound() error {
	return errorx.New(errorx.CodeNotFound, "record not found")
}

// UserRepo UserRepository 的内存桩
type UserRepo struct {
	users map[string]*model.UserInfo
}

// Seed 直接放入一个用户（绕过 Create 的唯一性检查）
func (r *UserRepo) Seed(user *model.UserInfo) {
	r.users[user.Uid] = user
}

func (r *UserRepo) Create(user *model.UserInfo) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errorx.New(errorx.CodeConflict, "duplicated key")
		}
	}
	// GORM 会在写库前执行 BeforeSave（密码加密），桩实现保持同样行为
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	user.CreatedAt = time.Now()
	r.users[user.Uid] = user
	return nil
}

func (r *UserRepo) FindByUid(uid string) (*model.UserInfo, error) {
	if u, ok := r.users[uid]; ok {
		return u, nil
	}
	return nil, notFound()
}

func (r *UserRepo) FindByLogin(login string) (*model.UserInfo, error) {
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return nil, notFound()
}

func (r *UserRepo) FindByUids(uids []string) ([]model.UserInfo, error) {
	list := make([]model.UserInfo, 0, len(uids))
	for _, uid := range uids {
		if u, ok := r.users[uid]; ok {
			list = append(list, *u)
		}
	}
	return list, nil
}

func (r *UserRepo) UpdateFields(uid string, fields map[string]any) error {
	u, ok := r.users[uid]
	if !ok {
		return notFound()
	}
	for k, v := range fields {
		switch k {
		case "nickname":
			u.Nickname = v.(string)
		case "avatar":
			u.Avatar = v.(string)
		case "is_active":
			u.IsActive = v.(bool)
		case "last_online_at":
			u.LastOnlineAt = sql.NullTime{Time: v.(time.Time), Valid: true}
		}
	}
	return nil
}

// FriendshipRepo FriendshipRepository 的内存桩
type FriendshipRepo struct {
	items map[string]*model.Friendship
}

func (r *FriendshipRepo) Create(friendship *model.Friendship) error {
	for _, f := range r.items {
		if f.RequesterId == friendship.RequesterId && f.AddresseeId == friendship.AddresseeId {
			return errorx.New(errorx.CodeConflict, "duplicated key")
		}
	}
	friendship.CreatedAt = time.Now()
	r.items[friendship.Uuid] = friendship
	return nil
}

func (r *FriendshipRepo) FindByUuid(uuid string) (*model.Friendship, error) {
	if f, ok := r.items[uuid]; ok {
		return f, nil
	}
	return nil, notFound()
}

func (r *FriendshipRepo) FindBetween(a, b string) (*model.Friendship, error) {
	for _, f := range r.items {
		if (f.RequesterId == a && f.AddresseeId == b) || (f.RequesterId == b && f.AddresseeId == a) {
			return f, nil
		}
	}
	return nil, notFound()
}

func (r *FriendshipRepo) FindFriendsByUser(uid string, status int8) ([]model.Friendship, error) {
	var list []model.Friendship
	for _, f := range r.items {
		if f.Status == status && f.Involves(uid) {
			list = append(list, *f)
		}
	}
	return list, nil
}

func (r *FriendshipRepo) FindPendingReceived(uid string) ([]model.Friendship, error) {
	var list []model.Friendship
	for _, f := range r.items {
		if f.Status == friendship_status_enum.PENDING && f.AddresseeId == uid {
			list = append(list, *f)
		}
	}
	return list, nil
}

func (r *FriendshipRepo) FindPendingSent(uid string) ([]model.Friendship, error) {
	var list []model.Friendship
	for _, f := range r.items {
		if f.Status == friendship_status_enum.PENDING && f.RequesterId == uid {
			list = append(list, *f)
		}
	}
	return list, nil
}

func (r *FriendshipRepo) UpdateFields(uuid string, fields map[string]any) error {
	f, ok := r.items[uuid]
	if !ok {
		return notFound()
	}
	for k, v := range fields {
		switch k {
		case "requester_id":
			f.RequesterId = v.(string)
		case "addressee_id":
			f.AddresseeId = v.(string)
		case "status":
			f.Status = v.(int8)
		case "request_message":
			f.RequestMessage = v.(string)
		case "reject_reason":
			f.RejectReason = v.(string)
		case "blocked_by":
			f.BlockedBy = v.(string)
		case "conversation_uuid":
			f.ConversationUuid = v.(string)
		case "last_message_at":
			f.LastMessageAt = sql.NullTime{Time: v.(time.Time), Valid: true}
		case "requester_alias":
			f.RequesterAlias = v.(string)
		case "addressee_alias":
			f.AddresseeAlias = v.(string)
		case "requester_starred":
			f.RequesterStarred = v.(bool)
		case "addressee_starred":
			f.AddresseeStarred = v.(bool)
		case "requester_muted":
			f.RequesterMuted = v.(bool)
		case "addressee_muted":
			f.AddresseeMuted = v.(bool)
		}
	}
	return nil
}

// NotificationRepo FriendNotificationRepository 的内存桩
type NotificationRepo struct {
	items []*model.FriendNotification
}

// All 返回全部通知（断言用）
func (r *NotificationRepo) All() []*model.FriendNotification {
	return r.items
}

func (r *NotificationRepo) Create(notification *model.FriendNotification) error {
	notification.CreatedAt = time.Now()
	r.items = append(r.items, notification)
	return nil
}

func (r *NotificationRepo) FindByRecipient(recipientId string, onlyUnread bool) ([]model.FriendNotification, error) {
	var list []model.FriendNotification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.RecipientId != recipientId {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		list = append(list, *n)
	}
	return list, nil
}

func (r *NotificationRepo) MarkRead(recipientId string, uuids []string, readAt time.Time) (int64, error) {
	wanted := make(map[string]bool, len(uuids))
	for _, uuid := range uuids {
		wanted[uuid] = true
	}
	var affected int64
	for _, n := range r.items {
		if n.RecipientId != recipientId || n.IsRead {
			continue
		}
		if len(uuids) > 0 && !wanted[n.Uuid] {
			continue
		}
		n.IsRead = true
		n.ReadAt = sql.NullTime{Time: readAt, Valid: true}
		affected++
	}
	return affected, nil
}

// ConversationRepo ConversationRepository 的内存桩
type ConversationRepo struct {
	items        map[string]*model.Conversation
	participants *ParticipantRepo
}

func (r *ConversationRepo) Create(conversation *model.Conversation) error {
	if _, ok := r.items[conversation.Uuid]; ok {
		return errorx.New(errorx.CodeConflict, "duplicated key")
	}
	conversation.CreatedAt = time.Now()
	r.items[conversation.Uuid] = conversation
	return nil
}

func (r *ConversationRepo) FindByUuid(uuid string) (*model.Conversation, error) {
	if c, ok := r.items[uuid]; ok {
		return c, nil
	}
	return nil, notFound()
}

func (r *ConversationRepo) FindByUuids(uuids []string) ([]model.Conversation, error) {
	list := make([]model.Conversation, 0, len(uuids))
	for _, uuid := range uuids {
		if c, ok := r.items[uuid]; ok {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (r *ConversationRepo) FindPrivateByPair(a, b string) (*model.Conversation, error) {
	for _, c := range r.items {
		if c.Type != conversation_type_enum.PRIVATE {
			continue
		}
		if r.participants.isMember(c.Uuid, a) && r.participants.isMember(c.Uuid, b) {
			return c, nil
		}
	}
	return nil, notFound()
}

func (r *ConversationRepo) UpdateFields(uuid string, fields map[string]any) error {
	c, ok := r.items[uuid]
	if !ok {
		return notFound()
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "description":
			c.Description = v.(string)
		case "avatar":
			c.Avatar = v.(string)
		case "is_active":
			c.IsActive = v.(bool)
		case "last_message_at":
			c.LastMessageAt = sql.NullTime{Time: v.(time.Time), Valid: true}
		}
	}
	return nil
}

// ParticipantRepo ParticipantRepository 的内存桩
type ParticipantRepo struct {
	items []*model.ConversationParticipant
}

func (r *ParticipantRepo) isMember(conversationUuid, userId string) bool {
	for _, p := range r.items {
		if p.ConversationUuid == conversationUuid && p.UserId == userId {
			return true
		}
	}
	return false
}

func (r *ParticipantRepo) Create(participant *model.ConversationParticipant) error {
	if r.isMember(participant.ConversationUuid, participant.UserId) {
		return errorx.New(errorx.CodeConflict, "duplicated key")
	}
	participant.CreatedAt = time.Now()
	r.items = append(r.items, participant)
	return nil
}

func (r *ParticipantRepo) CreateBatch(participants []model.ConversationParticipant) error {
	for i := range participants {
		p := participants[i]
		if err := r.Create(&p); err != nil {
			return err
		}
	}
	return nil
}

func (r *ParticipantRepo) FindByConversationAndUser(conversationUuid, userId string) (*model.ConversationParticipant, error) {
	for _, p := range r.items {
		if p.ConversationUuid == conversationUuid && p.UserId == userId {
			return p, nil
		}
	}
	return nil, notFound()
}

func (r *ParticipantRepo) FindActiveByConversation(conversationUuid string) ([]model.ConversationParticipant, error) {
	var list []model.ConversationParticipant
	for _, p := range r.items {
		if p.ConversationUuid == conversationUuid && p.Active() {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (r *ParticipantRepo) FindActiveByUser(userId string) ([]model.ConversationParticipant, error) {
	var list []model.ConversationParticipant
	for _, p := range r.items {
		if p.UserId == userId && p.Active() {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (r *ParticipantRepo) UpdateLastRead(conversationUuid, userId string, readAt time.Time) error {
	for _, p := range r.items {
		if p.ConversationUuid != conversationUuid || p.UserId != userId {
			continue
		}
		// 水位只前进不后退
		if !p.LastReadAt.Valid || p.LastReadAt.Time.Before(readAt) {
			p.LastReadAt = sql.NullTime{Time: readAt, Valid: true}
		}
		return nil
	}
	return nil
}

func (r *ParticipantRepo) UpdateFields(conversationUuid, userId string, fields map[string]any) error {
	for _, p := range r.items {
		if p.ConversationUuid != conversationUuid || p.UserId != userId {
			continue
		}
		for k, v := range fields {
			switch k {
			case "role":
				p.Role = v.(int8)
			case "is_muted":
				p.IsMuted = v.(bool)
			case "is_pinned":
				p.IsPinned = v.(bool)
			case "left_at":
				p.LeftAt = sql.NullTime{Time: v.(time.Time), Valid: true}
			}
		}
		return nil
	}
	return notFound()
}

// MessageRepo MessageRepository 的内存桩
type MessageRepo struct {
	items []*model.Message
}

// All 返回全部消息（断言用）
func (r *MessageRepo) All() []*model.Message {
	return r.items
}

func (r *MessageRepo) Create(message *model.Message) error {
	for _, m := range r.items {
		if m.Uuid == message.Uuid {
			return errorx.New(errorx.CodeConflict, "duplicated key")
		}
	}
	message.CreatedAt = time.Now()
	r.items = append(r.items, message)
	return nil
}

func (r *MessageRepo) FindByUuid(uuid int64) (*model.Message, error) {
	for _, m := range r.items {
		if m.Uuid == uuid {
			return m, nil
		}
	}
	return nil, notFound()
}

func (r *MessageRepo) FindPageByConversation(conversationUuid string, page, size int) ([]model.Message, error) {
	var list []model.Message
	for _, m := range r.items {
		if m.ConversationUuid == conversationUuid {
			list = append(list, *m)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].SentAt.Equal(list[j].SentAt) {
			return list[i].SentAt.After(list[j].SentAt)
		}
		return list[i].Uuid > list[j].Uuid
	})
	offset := (page - 1) * size
	if offset >= len(list) {
		return []model.Message{}, nil
	}
	end := offset + size
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *MessageRepo) CountByConversation(conversationUuid string) (int64, error) {
	var count int64
	for _, m := range r.items {
		if m.ConversationUuid == conversationUuid {
			count++
		}
	}
	return count, nil
}

func (r *MessageRepo) CountUnread(conversationUuid, userId string, after time.Time) (int64, error) {
	var count int64
	for _, m := range r.items {
		if m.ConversationUuid != conversationUuid || m.SendId == userId {
			continue
		}
		if !after.IsZero() && !m.SentAt.After(after) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MessageRepo) UpdateFields(uuid int64, fields map[string]any) error {
	m, err := r.FindByUuid(uuid)
	if err != nil {
		return err
	}
	for k, v := range fields {
		switch k {
		case "content":
			m.Content = v.(string)
		case "is_edited":
			m.IsEdited = v.(bool)
		case "edited_at":
			m.EditedAt = sql.NullTime{Time: v.(time.Time), Valid: true}
		case "is_revoked":
			m.IsRevoked = v.(bool)
		case "revoked_at":
			m.RevokedAt = sql.NullTime{Time: v.(time.Time), Valid: true}
		case "status":
			m.Status = v.(int8)
		}
	}
	return nil
}
