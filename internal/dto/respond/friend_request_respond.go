package respond

// FriendRequestRespond 好友申请条目响应
// Direction 标识申请相对查询方的方向：received 或 sent
// 使用位置:
//   - service/friend/service.go: ListRequests
type FriendRequestRespond struct {
	Uuid      string `json:"uuid"`
	Direction string `json:"direction"`
	Uid       string `json:"uid"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
