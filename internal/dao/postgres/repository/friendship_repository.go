// Package repository 提供各实体的数据访问实现
// 本文件实现好友关系数据访问
package repository

import (
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/friendship/friendship_status_enum"

	"gorm.io/gorm"
)

// friendshipRepository FriendshipRepository 的 GORM 实现
type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建好友关系 Repository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create 创建好友关系记录
// 同一对用户并发重复申请时由 idx_friend_pair 唯一索引兜底，返回 Conflict
func (r *friendshipRepository) Create(friendship *model.Friendship) error {
	if err := r.db.Create(friendship).Error; err != nil {
		return wrapDBError(err, "创建好友关系失败")
	}
	return nil
}

// FindByUuid 按关系 uuid 查询
func (r *friendshipRepository) FindByUuid(uuid string) (*model.Friendship, error) {
	var friendship model.Friendship
	if err := r.db.Where("uuid = ?", uuid).First(&friendship).Error; err != nil {
		return nil, wrapDBError(err, "好友关系不存在")
	}
	return &friendship, nil
}

// FindBetween 双向查询两个用户间的关系记录
// 唯一索引只约束 (requester_id, addressee_id) 这个有序对，
// 所以"是否已有关系"必须查两个方向
func (r *friendshipRepository) FindBetween(a, b string) (*model.Friendship, error) {
	var friendship model.Friendship
	err := r.db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		a, b, b, a,
	).First(&friendship).Error
	if err != nil {
		return nil, wrapDBError(err, "好友关系不存在")
	}
	return &friendship, nil
}

// FindFriendsByUser 查询 uid 参与且处于指定状态的所有关系
// 按最近消息时间倒序，供好友列表展示
func (r *friendshipRepository) FindFriendsByUser(uid string, status int8) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.Where("(requester_id = ? OR addressee_id = ?) AND status = ?", uid, uid, status).
		Order("last_message_at DESC NULLS LAST, updated_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, wrapDBError(err, "查询好友列表失败")
	}
	return friendships, nil
}

// FindPendingReceived 查询 uid 收到的待处理申请
func (r *friendshipRepository) FindPendingReceived(uid string) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.Where("addressee_id = ? AND status = ?", uid, friendship_status_enum.PENDING).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, wrapDBError(err, "查询好友申请失败")
	}
	return friendships, nil
}

// FindPendingSent 查询 uid 发出的待处理申请
func (r *friendshipRepository) FindPendingSent(uid string) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.Where("requester_id = ? AND status = ?", uid, friendship_status_enum.PENDING).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, wrapDBError(err, "查询好友申请失败")
	}
	return friendships, nil
}

// UpdateFields 按关系 uuid 更新指定字段
func (r *friendshipRepository) UpdateFields(uuid string, fields map[string]any) error {
	if err := r.db.Model(&model.Friendship{}).Where("uuid = ?", uuid).Updates(fields).Error; err != nil {
		return wrapDBError(err, "更新好友关系失败")
	}
	return nil
}
