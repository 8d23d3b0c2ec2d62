package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newActivityService(t *testing.T) *services.ActivityLogService {
	t.Helper()
	db, err := config.OpenActivityDB(config.ActivityLogConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "activity.db"),
	}, "production", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { config.CloseActivityDB(db) })

	svc := services.NewActivityLogService(db, logger.NewNop())
	require.NoError(t, svc.Migrate(context.Background()))
	return svc
}

func TestActivityLogSnapshotsRecord(t *testing.T) {
	ctx := context.Background()
	activity := newActivityService(t)
	coll := store.NewMemoryStore().Collection("state")
	rec, err := coll.Create(ctx, models.Record{"stateName": "Goa"})
	require.NoError(t, err)
	id, _ := rec.ID()

	admin := models.Principal{ID: primitive.NewObjectID().Hex(), Platform: models.PlatformAdmin}
	r := gin.New()
	r.Use(func(c *gin.Context) { SetPrincipal(c, admin) })
	r.PUT("/state/update/:id", ActivityLog(activity, "state", coll, models.ActionUpdate), func(c *gin.Context) {
		filter, _ := store.IDFilter(c.Param("id"))
		_, err := coll.UpdateOne(c.Request.Context(), filter, models.Record{"stateName": "Kerala"})
		require.NoError(t, err)
		models.Respond(c, models.KindSuccess, "", nil)
	})
	r.PUT("/state/fail/:id", ActivityLog(activity, "state", coll, models.ActionUpdate), func(c *gin.Context) {
		models.Respond(c, models.KindValidationError, "bad", nil)
	})

	req := httptest.NewRequest(http.MethodPut, "/state/update/"+id.Hex(), nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/state/fail/"+id.Hex(), nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	logs, meta, err := activity.List(ctx, services.ActivityLogQuery{Resource: "state"})
	require.NoError(t, err)
	require.Equal(t, 2, meta.Total)

	failed, ok := findLog(logs, models.StatusFailed)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, failed.StatusCode)
	assert.Nil(t, failed.Changes["after"])

	updated, ok := findLog(logs, models.StatusSuccess)
	require.True(t, ok)
	assert.Equal(t, admin.ID, updated.PrincipalID)
	assert.Equal(t, id.Hex(), updated.RecordID)
	assert.Equal(t, "Chrome", updated.Browser)
	assert.Equal(t, "Windows", updated.OS)
	before, _ := updated.Changes["before"].(map[string]any)
	after, _ := updated.Changes["after"].(map[string]any)
	assert.Equal(t, "Goa", before["stateName"])
	assert.Equal(t, "Kerala", after["stateName"])
}

func TestActivityLogDisabled(t *testing.T) {
	disabled := services.NewActivityLogService(nil, logger.NewNop())
	r := gin.New()
	r.POST("/x", ActivityLog(disabled, "state", nil, models.ActionCreate), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func findLog(logs []models.ActivityLogResponse, status string) (models.ActivityLogResponse, bool) {
	for _, l := range logs {
		if l.Status == status {
			return l, true
		}
	}
	return models.ActivityLogResponse{}, false
}
