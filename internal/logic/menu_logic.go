package logic

import (
	"context"
	"errors"

	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"

	"gorm.io/gorm"
)

// MenuLogic 菜单管理逻辑
type MenuLogic struct {
	svc *svc.ServiceContext
}

// NewMenuLogic 创建菜单逻辑
func NewMenuLogic(svcCtx *svc.ServiceContext) *MenuLogic {
	return &MenuLogic{svc: svcCtx}
}

// List 菜单列表(平铺)，带筛选
func (l *MenuLogic) List(ctx context.Context, req *types.ListMenusRequest) ([]model.Menu, error) {
	q := l.svc.DB.WithContext(ctx).Model(&model.Menu{})
	if req.Name != "" {
		q = q.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Path != "" {
		q = q.Where("path LIKE ?", "%"+req.Path+"%")
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	var menus []model.Menu
	err := q.Order("order_no ASC, id ASC").Find(&menus).Error
	return menus, err
}

// Tree 完整菜单树，管理界面使用
func (l *MenuLogic) Tree(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	err := l.svc.DB.WithContext(ctx).Order("order_no ASC, id ASC").Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return buildMenuTree(menus, 0), nil
}

// UserRoutes 当前用户的前端路由树
func (l *MenuLogic) UserRoutes(ctx context.Context, uid uint) ([]types.MenuRoute, error) {
	menus, err := l.svc.Perm.GetMenus(ctx, uid)
	if err != nil {
		return nil, err
	}
	return buildRouteTree(menus, 0), nil
}

// validate 校验菜单的层级规则
func (l *MenuLogic) validate(ctx context.Context, id, parentID uint, menuType int8) error {
	switch menuType {
	case model.MenuTypeDirectory, model.MenuTypeMenu, model.MenuTypeButton:
	default:
		return errors.New("非法的菜单类型")
	}
	if id != 0 && id == parentID {
		return errors.New("父级菜单不能是自己")
	}
	if menuType == model.MenuTypeButton && parentID == 0 {
		return errors.New("按钮必须挂在菜单下")
	}
	if parentID == 0 {
		return nil
	}

	var parent model.Menu
	err := l.svc.DB.WithContext(ctx).First(&parent, parentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("父级菜单不存在")
		}
		return err
	}
	switch menuType {
	case model.MenuTypeMenu:
		if !parent.IsDirectory() {
			return errors.New("菜单的父级必须是目录")
		}
	case model.MenuTypeButton:
		if parent.Type != model.MenuTypeMenu {
			return errors.New("按钮的父级必须是菜单")
		}
	case model.MenuTypeDirectory:
		if !parent.IsDirectory() {
			return errors.New("目录的父级必须是目录")
		}
	}
	return nil
}

// Create 创建菜单
func (l *MenuLogic) Create(ctx context.Context, req *types.CreateMenuRequest) error {
	if err := l.validate(ctx, 0, req.ParentID, req.Type); err != nil {
		return err
	}
	menu := &model.Menu{
		ParentID:   req.ParentID,
		Name:       req.Name,
		Type:       req.Type,
		Path:       req.Path,
		Component:  req.Component,
		Permission: req.Permission,
		Icon:       req.Icon,
		OrderNo:    req.OrderNo,
		Show:       req.Show,
		KeepAlive:  req.KeepAlive,
		External:   req.External,
		Status:     req.Status,
	}
	if err := l.svc.DB.WithContext(ctx).Create(menu).Error; err != nil {
		return err
	}
	// 权限来源已变化，响应前同步刷新在线用户缓存
	return l.svc.Perm.RefreshOnlineUserPerms(ctx)
}

// Update 更新菜单
func (l *MenuLogic) Update(ctx context.Context, req *types.UpdateMenuRequest) error {
	var menu model.Menu
	err := l.svc.DB.WithContext(ctx).First(&menu, req.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("菜单不存在")
		}
		return err
	}
	if err := l.validate(ctx, req.ID, req.ParentID, req.Type); err != nil {
		return err
	}

	updates := map[string]any{
		"parent_id":  req.ParentID,
		"name":       req.Name,
		"type":       req.Type,
		"path":       req.Path,
		"component":  req.Component,
		"permission": req.Permission,
		"icon":       req.Icon,
		"order_no":   req.OrderNo,
		"show":       req.Show,
		"keep_alive": req.KeepAlive,
		"external":   req.External,
		"status":     req.Status,
	}
	if err := l.svc.DB.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", req.ID).Updates(updates).Error; err != nil {
		return err
	}
	return l.svc.Perm.RefreshOnlineUserPerms(ctx)
}

// Delete 删除菜单及其全部子孙节点
func (l *MenuLogic) Delete(ctx context.Context, id uint) error {
	var menus []model.Menu
	err := l.svc.DB.WithContext(ctx).Select("id", "parent_id").Find(&menus).Error
	if err != nil {
		return err
	}
	ids := collectSubtreeIDs(menus, id)

	err = l.svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id IN ?", ids).Delete(&model.RoleMenu{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Menu{}, ids).Error
	})
	if err != nil {
		return err
	}
	return l.svc.Perm.RefreshOnlineUserPerms(ctx)
}

// Permissions 路由层登记的全部权限标识
func (l *MenuLogic) Permissions() []string {
	return l.svc.Registry.List()
}

// collectSubtreeIDs 收集节点及其全部子孙的ID
func collectSubtreeIDs(menus []model.Menu, rootID uint) []uint {
	children := make(map[uint][]uint, len(menus))
	for i := range menus {
		children[menus[i].ParentID] = append(children[menus[i].ParentID], menus[i].ID)
	}
	ids := []uint{rootID}
	queue := []uint{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids
}

// buildMenuTree 平铺记录组装为树
func buildMenuTree(menus []model.Menu, parentID uint) []model.Menu {
	tree := make([]model.Menu, 0)
	for i := range menus {
		if menus[i].ParentID != parentID {
			continue
		}
		node := menus[i]
		node.Children = buildMenuTree(menus, node.ID)
		tree = append(tree, node)
	}
	return tree
}

// buildRouteTree 组装前端路由树，目录节点重定向到首个子路由
func buildRouteTree(menus []model.Menu, parentID uint) []types.MenuRoute {
	tree := make([]types.MenuRoute, 0)
	for i := range menus {
		m := &menus[i]
		if m.ParentID != parentID {
			continue
		}
		node := types.MenuRoute{
			ID:        m.ID,
			ParentID:  m.ParentID,
			Name:      m.Name,
			Path:      m.Path,
			Component: m.Component,
			Icon:      m.Icon,
			OrderNo:   m.OrderNo,
			Show:      m.Show,
			KeepAlive: m.KeepAlive,
			External:  m.External,
		}
		node.Children = buildRouteTree(menus, m.ID)
		if m.IsDirectory() && len(node.Children) > 0 {
			node.Redirect = node.Children[0].Path
		}
		tree = append(tree, node)
	}
	return tree
}
