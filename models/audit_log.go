package models

import (
	"time"
)

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	Username   string    `gorm:"type:varchar(100);index" json:"username"`
	Action     string    `gorm:"type:varchar(100);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(50);index:idx_audit_entity" json:"entity_type,omitempty"`
	EntityID   *uint     `gorm:"index:idx_audit_entity" json:"entity_id,omitempty"`
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	IPAddress  string    `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
