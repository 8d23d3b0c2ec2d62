package services

import (
	"context"
	"encoding/json"
	"math"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/utils"
	"gorm.io/gorm"
)

// ActivityLogService records admin mutations in the activity database. A
// service built with a nil *gorm.DB is disabled: Log is a no-op and List
// reports an empty page.
type ActivityLogService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogService(db *gorm.DB, log *logger.Logger) *ActivityLogService {
	return &ActivityLogService{db: db, log: log.Named("activity-log")}
}

// Enabled reports whether an activity database is attached.
func (s *ActivityLogService) Enabled() bool {
	return s != nil && s.db != nil
}

// Migrate creates or updates the activity_logs table.
func (s *ActivityLogService) Migrate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.db.WithContext(ctx).AutoMigrate(&models.ActivityLog{})
}

// LogActivityRequest contains the parameters for logging an activity
type LogActivityRequest struct {
	Principal  models.Principal
	Action     string
	Resource   string
	RecordID   string
	Changes    *models.ActivityChanges
	Status     string
	StatusCode int
	Client     utils.ClientInfo
}

// Log stores one entry. Failures are logged and swallowed so a broken
// activity database never fails the request being recorded.
func (s *ActivityLogService) Log(ctx context.Context, req LogActivityRequest) {
	if !s.Enabled() {
		return
	}

	var changesJSON []byte
	if req.Changes != nil {
		data, err := json.Marshal(req.Changes)
		if err != nil {
			s.log.Warnw("failed to marshal changes", "action", req.Action, "error", err)
			data = []byte("{}")
		}
		changesJSON = data
	}

	entry := models.ActivityLog{
		PrincipalID: req.Principal.ID,
		Platform:    req.Principal.Platform,
		Action:      req.Action,
		Resource:    req.Resource,
		RecordID:    req.RecordID,
		Changes:     changesJSON,
		Status:      req.Status,
		StatusCode:  req.StatusCode,
		IPAddress:   req.Client.IP,
		UserAgent:   req.Client.UserAgent,
		DeviceType:  req.Client.DeviceType,
		Browser:     req.Client.Browser,
		OS:          req.Client.OS,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Errorw("failed to create activity log", "action", req.Action, "resource", req.Resource, "error", err)
		return
	}
	s.log.Debugw("activity logged", "action", req.Action, "resource", req.Resource, "record", req.RecordID, "principal", req.Principal.ID)
}

// ActivityLogQuery filters and pages a listing.
type ActivityLogQuery struct {
	Page        int
	Limit       int
	Action      string
	Resource    string
	PrincipalID string
}

func (q *ActivityLogQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// List returns matching entries newest first.
func (s *ActivityLogService) List(ctx context.Context, q ActivityLogQuery) ([]models.ActivityLogResponse, *models.Pagination, error) {
	q.normalize()
	if !s.Enabled() {
		return []models.ActivityLogResponse{}, &models.Pagination{Page: q.Page, Limit: q.Limit}, nil
	}

	base := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if q.Action != "" {
		base = base.Where("action = ?", q.Action)
	}
	if q.Resource != "" {
		base = base.Where("resource = ?", q.Resource)
	}
	if q.PrincipalID != "" {
		base = base.Where("principal_id = ?", q.PrincipalID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, ierr.Database(err)
	}

	var rows []models.ActivityLog
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&rows).Error; err != nil {
		return nil, nil, ierr.Database(err)
	}

	out := make([]models.ActivityLogResponse, len(rows))
	for i := range rows {
		out[i] = rows[i].ToResponse()
	}

	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
	meta := &models.Pagination{
		Page:        q.Page,
		Limit:       q.Limit,
		Total:       int(total),
		TotalPages:  totalPages,
		HasPrevPage: q.Page > 1,
		HasNextPage: q.Page < totalPages,
	}
	return out, meta, nil
}

// Changes builds the snapshot stored with an entry.
func Changes(before, after map[string]any) *models.ActivityChanges {
	if before == nil && after == nil {
		return nil
	}
	return &models.ActivityChanges{Before: before, After: after}
}
