package logic

import (
	"context"
	"errors"

	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"

	"gorm.io/gorm"
)

// RoleLogic 角色管理逻辑
type RoleLogic struct {
	svc *svc.ServiceContext
}

// NewRoleLogic 创建角色逻辑
func NewRoleLogic(svcCtx *svc.ServiceContext) *RoleLogic {
	return &RoleLogic{svc: svcCtx}
}

// List 分页查询角色
func (l *RoleLogic) List(ctx context.Context, req *types.ListRolesRequest) ([]model.Role, int64, error) {
	req.Normalize()
	q := l.svc.DB.WithContext(ctx).Model(&model.Role{})
	if req.Name != "" {
		q = q.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Value != "" {
		q = q.Where("value LIKE ?", "%"+req.Value+"%")
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var roles []model.Role
	err := q.Offset(req.Offset()).Limit(req.PageSize).Order("id ASC").Find(&roles).Error
	return roles, total, err
}

// All 全部启用角色，供下拉选择
func (l *RoleLogic) All(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := l.svc.DB.WithContext(ctx).Where("status = 1").Order("id ASC").Find(&roles).Error
	return roles, err
}

// Get 查询角色详情，含绑定的菜单
func (l *RoleLogic) Get(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	err := l.svc.DB.WithContext(ctx).Preload("Menus").First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("角色不存在")
		}
		return nil, err
	}
	return &role, nil
}

// Create 创建角色并绑定菜单
func (l *RoleLogic) Create(ctx context.Context, req *types.CreateRoleRequest) error {
	var count int64
	err := l.svc.DB.WithContext(ctx).Model(&model.Role{}).
		Where("name = ? OR value = ?", req.Name, req.Value).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("角色名称或标识已存在")
	}

	role := &model.Role{
		Name:    req.Name,
		Value:   req.Value,
		Default: req.Default,
		Status:  req.Status,
		Remark:  req.Remark,
	}
	return l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return bindRoleMenus(tx, role.ID, req.MenuIDs)
	})
}

// Update 更新角色，菜单绑定变化后广播刷新在线用户权限
func (l *RoleLogic) Update(ctx context.Context, req *types.UpdateRoleRequest) error {
	if _, err := l.Get(ctx, req.ID); err != nil {
		return err
	}

	updates := map[string]any{"remark": req.Remark}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Value != "" {
		if req.ID == model.RootRoleID {
			return errors.New("不能修改超级管理员角色标识")
		}
		updates["value"] = req.Value
	}
	if req.Default != nil {
		updates["default"] = *req.Default
	}
	if req.Status != nil {
		if req.ID == model.RootRoleID && *req.Status != 1 {
			return errors.New("不能禁用超级管理员角色")
		}
		updates["status"] = *req.Status
	}

	err := l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Role{}).Where("id = ?", req.ID).Updates(updates).Error; err != nil {
			return err
		}
		if req.MenuIDs != nil {
			if err := tx.Where("role_id = ?", req.ID).Delete(&model.RoleMenu{}).Error; err != nil {
				return err
			}
			if err := bindRoleMenus(tx, req.ID, req.MenuIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if req.MenuIDs != nil || req.Status != nil {
		// 权限来源已变化，响应前同步刷新在线用户缓存
		return l.svc.Perm.RefreshOnlineUserPerms(ctx)
	}
	return nil
}

// Delete 删除角色，使用中的角色不可删除
func (l *RoleLogic) Delete(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if id == model.RootRoleID {
			return errors.New("不能删除超级管理员角色")
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var count int64
	err := l.svc.DB.WithContext(ctx).Model(&model.UserRole{}).
		Where("role_id IN ?", ids).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("角色已分配给用户，无法删除")
	}

	err = l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id IN ?", ids).Delete(&model.RoleMenu{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Role{}, ids).Error
	})
	if err != nil {
		return err
	}

	return l.svc.Perm.RefreshOnlineUserPerms(ctx)
}

// bindRoleMenus 写入角色菜单关联
func bindRoleMenus(tx *gorm.DB, roleID uint, menuIDs []uint) error {
	if len(menuIDs) == 0 {
		return nil
	}
	rows := make([]model.RoleMenu, 0, len(menuIDs))
	for _, mid := range menuIDs {
		rows = append(rows, model.RoleMenu{RoleID: roleID, MenuID: mid})
	}
	return tx.Create(&rows).Error
}
