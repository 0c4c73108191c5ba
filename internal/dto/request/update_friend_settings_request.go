package request

// UpdateFriendSettingsRequest 更新好友个人设置请求
// 指针字段为 nil 表示不修改，仅影响发起方自己的一侧
// 使用位置:
//   - handler/friend_handler.go: UpdateFriendSettingsHandler
type UpdateFriendSettingsRequest struct {
	Alias   *string `json:"alias" binding:"omitempty,max=30"`
	Starred *bool   `json:"starred"`
	Muted   *bool   `json:"muted"`
}
