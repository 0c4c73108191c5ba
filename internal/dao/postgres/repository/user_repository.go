// Package repository 提供各实体的数据访问实现
// 本文件实现用户数据访问
package repository

import (
	"habitlink_server/internal/model"

	"gorm.io/gorm"
)

// userRepository UserRepository 的 GORM 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
// 用户名/邮箱重复时由唯一索引兜底，返回 Conflict
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户失败")
	}
	return nil
}

// FindByUid 按对外 UID 查询用户
func (r *userRepository) FindByUid(uid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "用户不存在")
	}
	return &user, nil
}

// FindByLogin 按用户名或邮箱查询用户
func (r *userRepository) FindByLogin(login string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "用户不存在")
	}
	return &user, nil
}

// FindByUids 批量按 UID 查询用户
func (r *userRepository) FindByUids(uids []string) ([]model.UserInfo, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	var users []model.UserInfo
	if err := r.db.Where("uid IN ?", uids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "查询用户失败")
	}
	return users, nil
}

// UpdateFields 按 UID 更新指定字段
func (r *userRepository) UpdateFields(uid string, fields map[string]any) error {
	if err := r.db.Model(&model.UserInfo{}).Where("uid = ?", uid).Updates(fields).Error; err != nil {
		return wrapDBError(err, "更新用户失败")
	}
	return nil
}
