package logic

import (
	"context"
	"errors"
	"time"

	"madmin/server/internal/auth"
	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
	"madmin/server/pkg/utils"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// UserLogic 用户管理逻辑
type UserLogic struct {
	svc *svc.ServiceContext
}

// NewUserLogic 创建用户逻辑
func NewUserLogic(svcCtx *svc.ServiceContext) *UserLogic {
	return &UserLogic{svc: svcCtx}
}

// List 分页查询用户
func (l *UserLogic) List(ctx context.Context, req *types.ListUsersRequest) ([]model.User, int64, error) {
	req.Normalize()
	q := l.svc.DB.WithContext(ctx).Model(&model.User{})
	if req.Username != "" {
		q = q.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.Nickname != "" {
		q = q.Where("nickname LIKE ?", "%"+req.Nickname+"%")
	}
	if req.DeptID > 0 {
		q = q.Where("dept_id = ?", req.DeptID)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	err := q.Preload("Roles").Preload("Dept").
		Offset(req.Offset()).Limit(req.PageSize).
		Order("id ASC").Find(&users).Error
	return users, total, err
}

// Get 查询用户详情
func (l *UserLogic) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := l.svc.DB.WithContext(ctx).Preload("Roles").Preload("Dept").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户并绑定角色
func (l *UserLogic) Create(ctx context.Context, req *types.CreateUserRequest) error {
	var count int64
	err := l.svc.DB.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", req.Username).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("用户名已存在")
	}

	salt := utils.RandomSalt()
	user := &model.User{
		Username: req.Username,
		Password: utils.EncodePassword(req.Password, salt),
		Salt:     salt,
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		QQ:       req.QQ,
		DeptID:   req.DeptID,
		Status:   req.Status,
		Remark:   req.Remark,
	}
	if user.Nickname == "" {
		user.Nickname = user.Username
	}

	return l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return bindUserRoles(tx, user.ID, req.RoleIDs)
	})
}

// Update 更新用户信息与角色绑定
func (l *UserLogic) Update(ctx context.Context, req *types.UpdateUserRequest) error {
	user, err := l.Get(ctx, req.ID)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"nickname": req.Nickname,
		"avatar":   req.Avatar,
		"email":    req.Email,
		"phone":    req.Phone,
		"qq":       req.QQ,
		"dept_id":  req.DeptID,
		"remark":   req.Remark,
	}
	disabled := false
	if req.Status != nil {
		if user.IsRoot() && *req.Status != 1 {
			return errors.New("不能禁用系统初始管理员")
		}
		updates["status"] = *req.Status
		disabled = *req.Status != 1
	}

	err = l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", req.ID).Updates(updates).Error; err != nil {
			return err
		}
		if req.RoleIDs != nil {
			if err := tx.Where("user_id = ?", req.ID).Delete(&model.UserRole{}).Error; err != nil {
				return err
			}
			if err := bindUserRoles(tx, req.ID, req.RoleIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 禁用即下线；角色变更则刷新权限缓存
	if disabled {
		return l.teardownSessions(ctx, req.ID)
	}
	if req.RoleIDs != nil {
		if _, err := l.svc.Perm.CachePermissions(ctx, req.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除用户及其关联数据
func (l *UserLogic) Delete(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if id == model.RootUserID {
			return errors.New("不能删除系统初始管理员")
		}
	}
	if len(ids) == 0 {
		return nil
	}

	err := l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id IN ?", ids).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, ids).Error
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := l.teardownSessions(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ChangePassword 修改本人密码，旧令牌全部失效
func (l *UserLogic) ChangePassword(ctx context.Context, uid uint, req *types.ChangePasswordRequest) error {
	user, err := l.Get(ctx, uid)
	if err != nil {
		return err
	}
	if user.Password != utils.EncodePassword(req.OldPassword, user.Salt) {
		return errors.New("原密码错误")
	}
	if len(req.NewPassword) < 6 || len(req.NewPassword) > 20 {
		return errors.New("密码长度应为6-20个字符")
	}
	return l.resetPassword(ctx, user, req.NewPassword)
}

// ResetPassword 管理员重置用户密码
func (l *UserLogic) ResetPassword(ctx context.Context, uid uint, newPassword string) error {
	user, err := l.Get(ctx, uid)
	if err != nil {
		return err
	}
	return l.resetPassword(ctx, user, newPassword)
}

func (l *UserLogic) resetPassword(ctx context.Context, user *model.User, newPassword string) error {
	salt := utils.RandomSalt()
	err := l.svc.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password": utils.EncodePassword(newPassword, salt),
			"salt":     salt,
		}).Error
	if err != nil {
		return err
	}
	// 密码版本递增使所有已签发令牌失效
	if _, err := l.svc.Token.BumpPV(ctx, user.ID); err != nil {
		return err
	}
	return l.teardownSessions(ctx, user.ID)
}

// Profile 当前用户信息，含角色与权限
func (l *UserLogic) Profile(ctx context.Context, uid uint) (*types.UserInfo, error) {
	user, err := l.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	perms, err := l.svc.Perm.CachedPermissions(ctx, uid)
	if err != nil {
		return nil, err
	}

	info := &types.UserInfo{Permissions: perms}
	if err := copier.Copy(info, user); err != nil {
		return nil, err
	}
	info.Roles = make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		info.Roles = append(info.Roles, r.Value)
	}
	return info, nil
}

// UpdateProfile 更新个人资料
func (l *UserLogic) UpdateProfile(ctx context.Context, uid uint, req *types.UpdateProfileRequest) error {
	return l.svc.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", uid).
		Updates(map[string]any{
			"nickname": req.Nickname,
			"avatar":   req.Avatar,
			"email":    req.Email,
			"phone":    req.Phone,
			"qq":       req.QQ,
			"remark":   req.Remark,
		}).Error
}

// Online 在线用户列表
func (l *UserLogic) Online(ctx context.Context, currentToken string) ([]types.OnlineUser, error) {
	var records []model.AccessToken
	err := l.svc.DB.WithContext(ctx).
		Where("expired_at > ?", time.Now()).
		Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]types.OnlineUser, 0, len(records))
	for i := range records {
		r := &records[i]
		var user model.User
		if err := l.svc.DB.WithContext(ctx).Select("id", "username").First(&user, r.UserID).Error; err != nil {
			continue
		}
		ua := utils.ParseUserAgent(r.UserAgent)
		out = append(out, types.OnlineUser{
			TokenID:   r.ID,
			UserID:    r.UserID,
			Username:  user.Username,
			IP:        r.IP,
			Browser:   ua.Browser,
			OS:        ua.Os,
			LoginAt:   r.CreatedAt.String(),
			ExpiredAt: r.ExpiredAt.String(),
			Current:   r.Value == currentToken,
		})
	}
	return out, nil
}

// Kick 强制下线一条登录记录
func (l *UserLogic) Kick(ctx context.Context, operator *auth.Identity, tokenID uint) error {
	var record model.AccessToken
	err := l.svc.DB.WithContext(ctx).First(&record, tokenID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if record.UserID == model.RootUserID && operator.UID != model.RootUserID {
		return errors.New("不能下线系统初始管理员")
	}
	if record.UserID == operator.UID {
		return errors.New("不能下线自己，请使用退出登录")
	}

	if err := l.svc.Blacklist.Add(ctx, record.Value, time.Until(record.ExpiredAt.Time())); err != nil {
		return err
	}
	return l.svc.Token.Remove(ctx, &record)
}

// teardownSessions 拉黑并清理用户的全部会话与权限缓存
func (l *UserLogic) teardownSessions(ctx context.Context, uid uint) error {
	records, err := l.svc.Token.ListForUser(ctx, uid)
	if err != nil {
		return err
	}
	for i := range records {
		if err := l.svc.Blacklist.Add(ctx, records[i].Value, time.Until(records[i].ExpiredAt.Time())); err != nil {
			return err
		}
	}
	if err := l.svc.Token.RemoveAllForUser(ctx, uid); err != nil {
		return err
	}
	return l.svc.Perm.ClearPermissions(ctx, uid)
}

// bindUserRoles 写入用户角色关联
func bindUserRoles(tx *gorm.DB, uid uint, roleIDs []uint) error {
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]model.UserRole, 0, len(roleIDs))
	for _, rid := range roleIDs {
		rows = append(rows, model.UserRole{UserID: uid, RoleID: rid})
	}
	return tx.Create(&rows).Error
}
