package request

// LoginRequest 用户登录请求
// Login 可以是用户名或邮箱
// 使用位置:
//   - handler/user_handler.go: LoginHandler
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}
