package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestActivityLog(t *testing.T) *ActivityLogService {
	t.Helper()
	db, err := config.OpenActivityDB(config.ActivityLogConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "activity.db"),
	}, "production", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { config.CloseActivityDB(db) })

	svc := NewActivityLogService(db, logger.NewNop())
	require.NoError(t, svc.Migrate(context.Background()))
	return svc
}

func TestActivityLogRecordsAndLists(t *testing.T) {
	svc := newTestActivityLog(t)
	ctx := context.Background()
	admin := models.Principal{ID: primitive.NewObjectID().Hex(), Platform: models.PlatformAdmin}

	svc.Log(ctx, LogActivityRequest{
		Principal: admin,
		Action:    models.ActionCreate,
		Resource:  "state",
		RecordID:  "abc",
		Changes:   Changes(nil, map[string]any{"stateName": "Goa"}),
	})
	svc.Log(ctx, LogActivityRequest{Principal: admin, Action: models.ActionDelete, Resource: "city", Status: models.StatusFailed})
	svc.Log(ctx, LogActivityRequest{Principal: admin, Action: models.ActionDelete, Resource: "state"})

	logs, meta, err := svc.List(ctx, ActivityLogQuery{Resource: "state"})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)
	require.Len(t, logs, 2)

	logs, meta, err = svc.List(ctx, ActivityLogQuery{Action: models.ActionCreate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.StatusSuccess, logs[0].Status)
	assert.Equal(t, admin.ID, logs[0].PrincipalID)
	assert.Equal(t, map[string]any{"stateName": "Goa"}, logs[0].Changes["after"])
	assert.Equal(t, 1, meta.TotalPages)

	_, meta, err = svc.List(ctx, ActivityLogQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Total)
	assert.True(t, meta.HasPrevPage)
	assert.False(t, meta.HasNextPage)
}

func TestActivityLogDisabled(t *testing.T) {
	svc := NewActivityLogService(nil, logger.NewNop())
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.Migrate(context.Background()))
	svc.Log(context.Background(), LogActivityRequest{Action: models.ActionCreate})

	logs, meta, err := svc.List(context.Background(), ActivityLogQuery{Limit: 500})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, 100, meta.Limit)
}
