package models

import "time"

// AuditLog records who did what to which resource (webhook settlements,
// cancellations). Write-only from the application's point of view.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileID  *uint     `gorm:"index" json:"profile_id"`
	Action     string    `gorm:"size:100;not null;index" json:"action"`
	Resource   string    `gorm:"size:100;index" json:"resource"`
	ResourceID string    `gorm:"size:100;index" json:"resource_id"`
	IP         string    `gorm:"size:45" json:"ip"`
	UserAgent  string    `gorm:"size:512" json:"user_agent"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
