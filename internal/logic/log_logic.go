package logic

import (
	"context"
	"time"

	"madmin/server/internal/model"
	"madmin/server/internal/svc"
	"madmin/server/internal/types"
)

// LogLogic 日志查询逻辑
type LogLogic struct {
	svc *svc.ServiceContext
}

// NewLogLogic 创建日志逻辑
func NewLogLogic(svcCtx *svc.ServiceContext) *LogLogic {
	return &LogLogic{svc: svcCtx}
}

// LoginLogs 分页查询登录日志
func (l *LogLogic) LoginLogs(ctx context.Context, req *types.ListLoginLogsRequest) ([]model.LoginLog, int64, error) {
	req.Normalize()
	q := l.svc.DB.WithContext(ctx).Model(&model.LoginLog{})
	if req.Username != "" {
		q = q.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.IP != "" {
		q = q.Where("ip LIKE ?", "%"+req.IP+"%")
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.LoginLog
	err := q.Offset(req.Offset()).Limit(req.PageSize).Order("id DESC").Find(&logs).Error
	return logs, total, err
}

// OperationLogs 分页查询操作日志
func (l *LogLogic) OperationLogs(ctx context.Context, req *types.ListOperationLogsRequest) ([]model.OperationLog, int64, error) {
	req.Normalize()
	q := l.svc.DB.WithContext(ctx).Model(&model.OperationLog{})
	if req.Path != "" {
		q = q.Where("path LIKE ?", "%"+req.Path+"%")
	}
	if req.Method != "" {
		q = q.Where("method = ?", req.Method)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.OperationLog
	err := q.Offset(req.Offset()).Limit(req.PageSize).Order("id DESC").Find(&logs).Error
	return logs, total, err
}

// PurgeBefore 清理保留期之外的日志，返回删除条数
func (l *LogLogic) PurgeBefore(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	res := l.svc.DB.WithContext(ctx).Unscoped().
		Where("created_at < ?", cutoff).Delete(&model.LoginLog{})
	if res.Error != nil {
		return 0, res.Error
	}
	total := res.RowsAffected

	res = l.svc.DB.WithContext(ctx).Unscoped().
		Where("created_at < ?", cutoff).Delete(&model.OperationLog{})
	if res.Error != nil {
		return total, res.Error
	}
	return total + res.RowsAffected, nil
}
