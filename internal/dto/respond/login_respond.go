package respond

// LoginRespond 登录/注册响应
// 使用位置:
//   - service/user/service.go: Register, Login
type LoginRespond struct {
	Uid          string `json:"uid"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar"`
	CreatedAt    string `json:"created_at"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
