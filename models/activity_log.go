package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is one recorded mutation made through the admin API
type ActivityLog struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PrincipalID string         `json:"principal_id" gorm:"not null;index:idx_activity_principal_date,sort:desc"`
	Platform    string         `json:"platform" gorm:"not null"`
	Action      string         `json:"action" gorm:"not null;index"`                                             // create, update, soft_delete, ...
	Resource    string         `json:"resource_type" gorm:"not null;index:idx_activity_resource_date,sort:desc"` // state, product, order
	RecordID    string         `json:"resource_id" gorm:"index"`                                                 // empty for bulk operations
	Changes     datatypes.JSON `json:"changes"`                                                                  // {before: {...}, after: {...}}
	Status      string         `json:"status" gorm:"not null"`
	StatusCode  int            `json:"status_code"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	DeviceType  string         `json:"device_type"`
	Browser     string         `json:"browser"`
	OS          string         `json:"os"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index:idx_activity_principal_date,sort:desc;index:idx_activity_resource_date,sort:desc"`
}

// BeforeCreate hook - auto-generate UUID v7
func (al *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.Must(uuid.NewV7())
	}
	if al.Status == "" {
		al.Status = StatusSuccess
	}
	return nil
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// ActivityChanges is the before/after snapshot of the touched record.
type ActivityChanges struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// ActivityLogResponse is the API shape of an activity log row
type ActivityLogResponse struct {
	ID          uuid.UUID      `json:"id"`
	PrincipalID string         `json:"principal_id"`
	Platform    string         `json:"platform"`
	Action      string         `json:"action"`
	Resource    string         `json:"resource_type"`
	RecordID    string         `json:"resource_id,omitempty"`
	Changes     map[string]any `json:"changes"`
	Status      string         `json:"status"`
	StatusCode  int            `json:"status_code"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	DeviceType  string         `json:"device_type,omitempty"`
	Browser     string         `json:"browser,omitempty"`
	OS          string         `json:"os,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (al *ActivityLog) ToResponse() ActivityLogResponse {
	changes := make(map[string]any)
	if al.Changes != nil {
		_ = json.Unmarshal(al.Changes, &changes)
	}

	return ActivityLogResponse{
		ID:          al.ID,
		PrincipalID: al.PrincipalID,
		Platform:    al.Platform,
		Action:      al.Action,
		Resource:    al.Resource,
		RecordID:    al.RecordID,
		Changes:     changes,
		Status:      al.Status,
		StatusCode:  al.StatusCode,
		IPAddress:   al.IPAddress,
		UserAgent:   al.UserAgent,
		DeviceType:  al.DeviceType,
		Browser:     al.Browser,
		OS:          al.OS,
		CreatedAt:   al.CreatedAt,
	}
}

// Actions recorded for resource operations.
const (
	ActionCreate         = "create"
	ActionCreateMany     = "create_many"
	ActionUpdate         = "update"
	ActionPartialUpdate  = "partial_update"
	ActionUpdateMany     = "update_many"
	ActionSoftDelete     = "soft_delete"
	ActionSoftDeleteMany = "soft_delete_many"
	ActionDelete         = "delete"
	ActionDeleteMany     = "delete_many"
	ActionUpload         = "upload"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)
