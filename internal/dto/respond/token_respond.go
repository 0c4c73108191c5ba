package respond

// TokenRespond 令牌刷新响应
// 使用位置:
//   - service/user/service.go: RefreshToken
type TokenRespond struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
