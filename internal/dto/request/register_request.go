package request

// RegisterRequest 用户注册请求
// 使用位置:
//   - handler/user_handler.go: RegisterHandler
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname" binding:"max=30"`
}
