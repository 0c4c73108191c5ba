// Package repository 提供各实体的数据访问实现
// 本文件实现会话数据访问
package repository

import (
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/conversation/conversation_type_enum"

	"gorm.io/gorm"
)

// conversationRepository ConversationRepository 的 GORM 实现
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话 Repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 创建会话
func (r *conversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return wrapDBError(err, "创建会话失败")
	}
	return nil
}

// FindByUuid 按会话 uuid 查询
func (r *conversationRepository) FindByUuid(uuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("uuid = ?", uuid).First(&conversation).Error; err != nil {
		return nil, wrapDBError(err, "会话不存在")
	}
	return &conversation, nil
}

// FindByUuids 批量按会话 uuid 查询
func (r *conversationRepository) FindByUuids(uuids []string) ([]model.Conversation, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var conversations []model.Conversation
	if err := r.db.Where("uuid IN ?", uuids).Find(&conversations).Error; err != nil {
		return nil, wrapDBError(err, "查询会话失败")
	}
	return conversations, nil
}

// FindPrivateByPair 查询两个用户之间的私聊会话
// 通过成员表两次自连接筛出同时包含双方的私聊会话，
// 私聊幂等创建依赖这条查询
func (r *conversationRepository) FindPrivateByPair(a, b string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.
		Joins("JOIN conversation_participant p1 ON p1.conversation_uuid = conversation.uuid AND p1.user_id = ?", a).
		Joins("JOIN conversation_participant p2 ON p2.conversation_uuid = conversation.uuid AND p2.user_id = ?", b).
		Where("conversation.type = ?", conversation_type_enum.PRIVATE).
		First(&conversation).Error
	if err != nil {
		return nil, wrapDBError(err, "私聊会话不存在")
	}
	return &conversation, nil
}

// UpdateFields 按会话 uuid 更新指定字段
func (r *conversationRepository) UpdateFields(uuid string, fields map[string]any) error {
	if err := r.db.Model(&model.Conversation{}).Where("uuid = ?", uuid).Updates(fields).Error; err != nil {
		return wrapDBError(err, "更新会话失败")
	}
	return nil
}
