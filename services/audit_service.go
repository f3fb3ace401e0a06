package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

const (
	EntityOrder   = "order"
	EntityKitchen = "kitchen"
	EntityUser    = "user"
)

// AuditRecorder appends audit log entries. Failures are logged, never returned,
// so auditing cannot fail the action being audited.
type AuditRecorder struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{DB: db, Now: time.Now}
}

// AuditEntry describes one audited action.
type AuditEntry struct {
	Actor      Actor
	Action     string
	EntityType string
	EntityID   uint
	Detail     string
	IPAddress  string
}

type clientIPKey struct{}

// WithClientIP attaches the caller's address so audit entries recorded under
// ctx carry it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func (r *AuditRecorder) Record(ctx context.Context, e AuditEntry) {
	if r == nil || r.DB == nil {
		return
	}
	if e.IPAddress == "" {
		e.IPAddress, _ = ctx.Value(clientIPKey{}).(string)
	}

	entry := models.AuditLog{
		Username:   e.Actor.Username,
		Action:     e.Action,
		EntityType: e.EntityType,
		Detail:     e.Detail,
		IPAddress:  e.IPAddress,
		CreatedAt:  r.Now(),
	}
	if e.Actor.UserID != 0 {
		id := e.Actor.UserID
		entry.UserID = &id
	}
	if e.EntityID != 0 {
		id := e.EntityID
		entry.EntityID = &id
	}

	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"action": e.Action,
			"actor":  e.Actor.String(),
		}).Errorf("audit log write failed: %v", err)
	}
}

// Recent returns up to limit entries, newest first.
func (r *AuditRecorder) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.AuditLog
	err := r.DB.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
