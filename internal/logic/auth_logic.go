package logic

import (
	"context"
	"errors"
	"time"

	"madmin/server/internal/auth"
	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/logger"
	"madmin/server/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 登录口径上对"用户不存在"与"密码错误"返回同一提示，避免撞库探测
var errBadCredentials = errors.New("用户名或密码错误")

// AuthLogic 认证逻辑
type AuthLogic struct {
	svc     *svc.ServiceContext
	captcha *CaptchaLogic
}

// NewAuthLogic 创建认证逻辑
func NewAuthLogic(svcCtx *svc.ServiceContext) *AuthLogic {
	return &AuthLogic{svc: svcCtx, captcha: NewCaptchaLogic(svcCtx)}
}

// Login 账号密码登录，签发令牌对
func (l *AuthLogic) Login(ctx context.Context, req *types.LoginRequest, ip, userAgent string) (*types.LoginResponse, error) {
	if l.svc.Config.Captcha.Enabled {
		if err := l.captcha.Verify(ctx, req.CaptchaID, req.VerifyCode); err != nil {
			return nil, err
		}
	}

	var user model.User
	err := l.svc.DB.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if user.Password != utils.EncodePassword(req.Password, user.Salt) {
		l.recordLoginLog(&user, ip, userAgent, 0, "密码错误")
		return nil, errBadCredentials
	}
	if user.Status != 1 {
		l.recordLoginLog(&user, ip, userAgent, 0, "账号已禁用")
		return nil, errors.New("账号已被禁用")
	}

	// 单端登录模式下先踢掉已在线的会话
	if !l.svc.Config.Security.MultiDeviceLogin {
		if err := l.kickUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	// 重置密码版本并签发令牌
	if err := l.svc.Token.ResetPV(ctx, user.ID); err != nil {
		return nil, err
	}
	roleIDs, err := l.svc.Perm.GetRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	pair, err := l.svc.Token.GenerateTokenPair(ctx, user.ID, model.InitialPasswordVersion, roleIDs, ip, userAgent)
	if err != nil {
		return nil, err
	}

	// 预热权限缓存，失败不影响登录
	if _, err := l.svc.Perm.CachePermissions(ctx, user.ID); err != nil {
		logger.Warn("登录后预热权限缓存失败", zap.Uint("uid", user.ID), zap.Error(err))
	}

	l.recordLoginLog(&user, ip, userAgent, 1, "登录成功")
	return &types.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Register 用户注册，绑定默认角色
func (l *AuthLogic) Register(ctx context.Context, req *types.RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return errors.New("两次密码输入不一致")
	}
	if len(req.Username) < 4 || len(req.Username) > 20 {
		return errors.New("用户名长度应为4-20个字符")
	}
	if len(req.Password) < 6 || len(req.Password) > 20 {
		return errors.New("密码长度应为6-20个字符")
	}

	var count int64
	err := l.svc.DB.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", req.Username).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("用户名已存在")
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}
	salt := utils.RandomSalt()
	user := &model.User{
		Username: req.Username,
		Password: utils.EncodePassword(req.Password, salt),
		Salt:     salt,
		Nickname: nickname,
		Email:    req.Email,
		Status:   1,
	}

	return l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// 绑定注册默认角色
		var defaultRole model.Role
		err := tx.Where("`default` = ? AND status = 1", true).First(&defaultRole).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Create(&model.UserRole{UserID: user.ID, RoleID: defaultRole.ID}).Error
	})
}

// Logout 登出：拉黑当前令牌并清理登录记录
func (l *AuthLogic) Logout(ctx context.Context, identity *auth.Identity, tokenValue string) error {
	record, err := l.svc.Token.FindByValue(ctx, tokenValue)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 剩余有效期内拉黑，令牌立即不可用
	if record != nil {
		if err := l.svc.Blacklist.Add(ctx, tokenValue, time.Until(record.ExpiredAt.Time())); err != nil {
			return err
		}
	}

	// 多端模式只下线当前设备，单端模式清理全部记录
	if l.svc.Config.Security.MultiDeviceLogin {
		if record != nil {
			if err := l.svc.Token.Remove(ctx, record); err != nil {
				return err
			}
		}
	} else {
		if err := l.svc.Token.RemoveAllForUser(ctx, identity.UID); err != nil {
			return err
		}
		if err := l.svc.Token.ClearPV(ctx, identity.UID); err != nil {
			return err
		}
	}

	return l.svc.Perm.ClearPermissions(ctx, identity.UID)
}

// RefreshToken 用刷新令牌换发新令牌对，旧令牌对作废
func (l *AuthLogic) RefreshToken(ctx context.Context, refreshValue string) (*types.LoginResponse, error) {
	if _, err := l.svc.Token.ParseRefresh(refreshValue); err != nil {
		return nil, errors.New("刷新令牌无效或已过期")
	}

	record, err := l.svc.Token.FindByRefreshValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("刷新令牌无效或已过期")
		}
		return nil, err
	}

	var user model.User
	if err := l.svc.DB.WithContext(ctx).First(&user, record.UserID).Error; err != nil {
		return nil, err
	}
	if user.Status != 1 {
		return nil, errors.New("账号已被禁用")
	}

	// 旧访问令牌拉黑并移除记录
	if err := l.svc.Blacklist.Add(ctx, record.Value, time.Until(record.ExpiredAt.Time())); err != nil {
		return nil, err
	}
	if err := l.svc.Token.Remove(ctx, record); err != nil {
		return nil, err
	}

	pv, err := l.svc.Token.GetPV(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if pv == 0 {
		pv = model.InitialPasswordVersion
		if err := l.svc.Token.ResetPV(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	roleIDs, err := l.svc.Perm.GetRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	pair, err := l.svc.Token.GenerateTokenPair(ctx, user.ID, pv, roleIDs, record.IP, record.UserAgent)
	if err != nil {
		return nil, err
	}
	return &types.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// kickUser 下线用户的全部在线会话
func (l *AuthLogic) kickUser(ctx context.Context, uid uint) error {
	records, err := l.svc.Token.ListForUser(ctx, uid)
	if err != nil {
		return err
	}
	for i := range records {
		if err := l.svc.Blacklist.Add(ctx, records[i].Value, time.Until(records[i].ExpiredAt.Time())); err != nil {
			return err
		}
	}
	return l.svc.Token.RemoveAllForUser(ctx, uid)
}

// recordLoginLog 异步记录登录日志，失败只打日志
func (l *AuthLogic) recordLoginLog(user *model.User, ip, userAgent string, status int8, message string) {
	ua := utils.ParseUserAgent(userAgent)
	entry := &model.LoginLog{
		UserID:   user.ID,
		Username: user.Username,
		IP:       ip,
		Location: utils.ResolveIPLocation(ip),
		Browser:  ua.Browser,
		OS:       ua.Os,
		Status:   status,
		Message:  message,
	}
	db := l.svc.DB
	utils.SafeGo(func() {
		if err := db.Create(entry).Error; err != nil {
			logger.Error("登录日志写入失败", zap.Error(err))
		}
	})
}
