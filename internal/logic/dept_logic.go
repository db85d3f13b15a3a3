package logic

import (
	"context"
	"errors"

	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"

	"gorm.io/gorm"
)

// DeptLogic 部门管理逻辑
type DeptLogic struct {
	svc *svc.ServiceContext
}

// NewDeptLogic 创建部门逻辑
func NewDeptLogic(svcCtx *svc.ServiceContext) *DeptLogic {
	return &DeptLogic{svc: svcCtx}
}

// Tree 部门树
func (l *DeptLogic) Tree(ctx context.Context, req *types.ListDeptsRequest) ([]model.Dept, error) {
	q := l.svc.DB.WithContext(ctx).Model(&model.Dept{})
	if req.Name != "" {
		q = q.Where("name LIKE ?", "%"+req.Name+"%")
	}
	var depts []model.Dept
	if err := q.Order("order_no ASC, id ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	// 有筛选条件时返回平铺结果
	if req.Name != "" {
		return depts, nil
	}
	return buildDeptTree(depts, 0), nil
}

// Create 创建部门
func (l *DeptLogic) Create(ctx context.Context, req *types.CreateDeptRequest) error {
	if req.ParentID != 0 {
		if err := l.exists(ctx, req.ParentID); err != nil {
			return errors.New("上级部门不存在")
		}
	}
	dept := &model.Dept{
		ParentID: req.ParentID,
		Name:     req.Name,
		OrderNo:  req.OrderNo,
		Remark:   req.Remark,
	}
	return l.svc.DB.WithContext(ctx).Create(dept).Error
}

// Update 更新部门
func (l *DeptLogic) Update(ctx context.Context, req *types.UpdateDeptRequest) error {
	if err := l.exists(ctx, req.ID); err != nil {
		return errors.New("部门不存在")
	}
	if req.ParentID == req.ID {
		return errors.New("上级部门不能是自己")
	}
	if req.ParentID != 0 {
		if err := l.exists(ctx, req.ParentID); err != nil {
			return errors.New("上级部门不存在")
		}
	}
	return l.svc.DB.WithContext(ctx).Model(&model.Dept{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"parent_id": req.ParentID,
			"name":      req.Name,
			"order_no":  req.OrderNo,
			"remark":    req.Remark,
		}).Error
}

// Delete 删除部门，存在下级或在用时不可删除
func (l *DeptLogic) Delete(ctx context.Context, id uint) error {
	var count int64
	err := l.svc.DB.WithContext(ctx).Model(&model.Dept{}).
		Where("parent_id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("存在下级部门，无法删除")
	}

	err = l.svc.DB.WithContext(ctx).Model(&model.User{}).
		Where("dept_id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("部门下存在用户，无法删除")
	}

	return l.svc.DB.WithContext(ctx).Delete(&model.Dept{}, id).Error
}

func (l *DeptLogic) exists(ctx context.Context, id uint) error {
	var dept model.Dept
	err := l.svc.DB.WithContext(ctx).Select("id").First(&dept, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("部门不存在")
	}
	return err
}

// buildDeptTree 平铺记录组装为树
func buildDeptTree(depts []model.Dept, parentID uint) []model.Dept {
	tree := make([]model.Dept, 0)
	for i := range depts {
		if depts[i].ParentID != parentID {
			continue
		}
		node := depts[i]
		node.Children = buildDeptTree(depts, node.ID)
		tree = append(tree, node)
	}
	return tree
}
