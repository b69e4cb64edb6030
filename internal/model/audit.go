package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditEvent struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ActorID    *uuid.UUID `json:"actorId,omitempty" gorm:"type:uuid;index"`
	ActorRole  string     `json:"actorRole" gorm:"size:20"`
	Action     string     `json:"action" gorm:"size:50;not null;index"`
	Resource   string     `json:"resource" gorm:"size:50;not null;index"`
	ResourceID string     `json:"resourceId" gorm:"size:64;index"`
	IPAddress  string     `json:"ipAddress" gorm:"size:50"`
	UserAgent  string     `json:"userAgent" gorm:"type:text"`
	Details    JSONMap    `json:"details"`
	Result     string     `json:"result" gorm:"size:20;not null"`
	ErrorMsg   string     `json:"errorMsg,omitempty" gorm:"type:text"`
	Timestamp  time.Time  `json:"timestamp" gorm:"autoCreateTime;index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

func (a *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
