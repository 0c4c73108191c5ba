// Package user 用户业务逻辑
// 处理注册、登录、令牌刷新
package user

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"habitlink_server/internal/dao/postgres/repository"
	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
	"habitlink_server/internal/model"
	"habitlink_server/pkg/enum/user_info/user_role_enum"
	"habitlink_server/pkg/errorx"
	"habitlink_server/pkg/util/jwt"
	"habitlink_server/pkg/util/random"
)

// userService 用户业务逻辑实现
type userService struct {
	repos *repository.Repositories
}

// NewUserService 构造函数
func NewUserService(repos *repository.Repositories) *userService {
	return &userService{repos: repos}
}

// generateUid 生成 11 位数字 UID
// 首位固定为 1，避免前导零
func generateUid() string {
	return "1" + strconv.FormatInt(random.GetRandomInt(10), 10)
}

// Register 用户注册
// 用户名/邮箱重复由数据库唯一索引兜底，返回 Conflict
func (s *userService) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}

	user := &model.UserInfo{
		Uid:         generateUid(),
		Username:    req.Username,
		Email:       req.Email,
		Nickname:    nickname,
		Role:        user_role_enum.USER,
		IsActive:    true,
		RawPassword: req.Password, // BeforeSave Hook 中加密
	}
	if err := s.repos.User.Create(user); err != nil {
		if errorx.IsConflict(err) {
			return nil, errorx.New(errorx.CodeConflict, "用户名或邮箱已被注册")
		}
		zap.L().Error("register create user error", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user registered", zap.String("uid", user.Uid), zap.String("username", user.Username))
	return s.buildLoginRespond(user)
}

// Login 用户名/邮箱 + 密码登录
// 用户不存在与密码错误返回同一错误，避免账号探测
func (s *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByLogin(req.Login)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidPassword, "账号或密码错误")
		}
		zap.L().Error("login find user error", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被停用")
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "账号或密码错误")
	}

	_ = s.repos.User.UpdateFields(user.Uid, map[string]any{"last_online_at": time.Now()})
	return s.buildLoginRespond(user)
}

// RefreshToken 用 Refresh Token 换取新的令牌对
func (s *userService) RefreshToken(req request.RefreshTokenRequest) (*respond.TokenRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "refresh token 无效")
	}
	if claims.Subject != "refresh_token" {
		return nil, errorx.New(errorx.CodeUnauthorized, "refresh token 无效")
	}

	user, err := s.repos.User.FindByUid(claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "用户不存在")
	}
	if !user.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被停用")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uid)
	if err != nil {
		zap.L().Error("generate access token error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, _, err := jwt.GenerateRefreshToken(user.Uid)
	if err != nil {
		zap.L().Error("generate refresh token error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &respond.TokenRespond{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// buildLoginRespond 组装登录态响应（注册/登录共用）
func (s *userService) buildLoginRespond(user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uid)
	if err != nil {
		zap.L().Error("generate access token error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, _, err := jwt.GenerateRefreshToken(user.Uid)
	if err != nil {
		zap.L().Error("generate refresh token error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &respond.LoginRespond{
		Uid:          user.Uid,
		Username:     user.Username,
		Email:        user.Email,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt.Format("2006-01-02 15:04:05"),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
