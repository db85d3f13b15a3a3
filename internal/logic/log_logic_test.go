package logic

import (
	"testing"
	"time"

	"madmin/server/internal/model"
	"madmin/server/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogsFilters(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewLogLogic(svcCtx)
	require.NoError(t, svcCtx.DB.Create(&model.LoginLog{Username: "alice", IP: "10.0.0.1", Status: 1}).Error)
	require.NoError(t, svcCtx.DB.Create(&model.LoginLog{Username: "bob", IP: "10.0.0.2", Status: 0}).Error)

	logs, total, err := l.LoginLogs(testCtx(), &types.ListLoginLogsRequest{Username: "ali"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "alice", logs[0].Username)

	failed := int8(0)
	logs, total, err = l.LoginLogs(testCtx(), &types.ListLoginLogsRequest{Status: &failed})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bob", logs[0].Username)
}

func TestOperationLogsFilters(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewLogLogic(svcCtx)
	require.NoError(t, svcCtx.DB.Create(&model.OperationLog{Path: "/api/system/users", Method: "POST", Status: 1}).Error)
	require.NoError(t, svcCtx.DB.Create(&model.OperationLog{Path: "/api/system/roles", Method: "DELETE", Status: 0}).Error)

	logs, total, err := l.OperationLogs(testCtx(), &types.ListOperationLogsRequest{Method: "DELETE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "/api/system/roles", logs[0].Path)
}

func TestPurgeBefore(t *testing.T) {
	svcCtx := newTestSvc(t)
	l := NewLogLogic(svcCtx)
	require.NoError(t, svcCtx.DB.Create(&model.LoginLog{Username: "old", Status: 1}).Error)
	require.NoError(t, svcCtx.DB.Create(&model.LoginLog{Username: "fresh", Status: 1}).Error)
	require.NoError(t, svcCtx.DB.Create(&model.OperationLog{Path: "/api/old", Method: "POST", Status: 1}).Error)

	// 把一部分记录的时间拨回保留期之外
	stale := time.Now().AddDate(0, 0, -120)
	require.NoError(t, svcCtx.DB.Model(&model.LoginLog{}).
		Where("username = ?", "old").Update("created_at", stale).Error)
	require.NoError(t, svcCtx.DB.Model(&model.OperationLog{}).
		Where("path = ?", "/api/old").Update("created_at", stale).Error)

	deleted, err := l.PurgeBefore(testCtx(), 90)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var remaining []model.LoginLog
	require.NoError(t, svcCtx.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Username)
}
